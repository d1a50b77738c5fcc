package entity

import (
	"fmt"
	"strings"
)

// OrderStatus is the fulfillment status of an order. It is independent
// of PaymentStatus.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// orderTransitions is the fulfillment transition graph. CANCELLED and
// DELIVERED are terminal. The privileged override path bypasses this
// graph on purpose; the graph itself is authoritative for guarded
// transitions such as Cancel.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

// ParseOrderStatus normalizes an arbitrarily-cased status string to the
// canonical enum. Stored documents written by older code paths may not
// be canonically cased, so all boundaries parse through here.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := orderTransitions[st]; !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

// CanTransition reports whether moving to next is allowed by the graph.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// Cancellable reports whether a guarded customer cancel is allowed from
// this status.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderConfirmed
}

// PaymentStatus records where a payment stands. No transition graph is
// enforced between payment states: the engine is a recorder, not a
// payment state machine, and any value may overwrite any other.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "PENDING"
	PaymentProcessing        PaymentStatus = "PROCESSING"
	PaymentPaid              PaymentStatus = "PAID"
	PaymentCompleted         PaymentStatus = "COMPLETED"
	PaymentFailed            PaymentStatus = "FAILED"
	PaymentPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentRefunded          PaymentStatus = "REFUNDED"
)

var paymentStatuses = map[PaymentStatus]struct{}{
	PaymentPending:           {},
	PaymentProcessing:        {},
	PaymentPaid:              {},
	PaymentCompleted:         {},
	PaymentFailed:            {},
	PaymentPartiallyRefunded: {},
	PaymentRefunded:          {},
}

// ParsePaymentStatus normalizes and validates a payment status string.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	st := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := paymentStatuses[st]; !ok {
		return "", fmt.Errorf("unknown payment status %q", s)
	}
	return st, nil
}
