package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/selliq/order-engine/internal/orders/core/domain/entity"
	"github.com/selliq/order-engine/internal/orders/core/ports"
)

// PaymentTracker records payment statuses. It is deliberately a thin
// recorder, not a payment state machine: no ordering is enforced
// between payment states and nothing is verified against a processor.
// Whether that lack of a validated payment graph is intended by the
// upstream system is unclear; this engine preserves the behavior
// rather than inventing rules.
type PaymentTracker struct {
	store ports.OrderStore
}

func NewPaymentTracker(store ports.OrderStore) *PaymentTracker {
	return &PaymentTracker{store: store}
}

// SetStatus overwrites the payment status, independent of fulfillment
// status. Fails only when the order does not exist.
func (t *PaymentTracker) SetStatus(ctx context.Context, orderID string, status entity.PaymentStatus) (*entity.Order, error) {
	o, err := t.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := o.PaymentStatus
	o.PaymentStatus = status
	o.UpdatedAt = time.Now().UTC()
	if err := t.store.Update(ctx, o); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "payment status recorded",
		"order_id", orderID, "from", previous, "to", status)
	return o, nil
}
