package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/selliq/order-engine/internal/orders/core/domain/entity"
	"github.com/selliq/order-engine/internal/orders/core/ports"
)

// StatusMachine governs fulfillment-status mutations on a single
// order. Two capability-scoped operations exist on purpose:
//
//   - Cancel is the guarded customer-facing transition, the only one
//     with a precondition check.
//   - Override is the privileged operator escape hatch. It bypasses
//     the transition graph unconditionally and is therefore audited.
//
// Both are read-then-write against one document with no version guard;
// two concurrent mutations of the same order race, last write wins.
type StatusMachine struct {
	store ports.OrderStore
}

func NewStatusMachine(store ports.OrderStore) *StatusMachine {
	return &StatusMachine{store: store}
}

// Cancel cancels an order if its current status allows it. Only
// PENDING and CONFIRMED orders may be cancelled; CANCELLED is terminal.
// The stored status is parsed case-insensitively: documents written by
// older code paths may not be canonically cased.
func (m *StatusMachine) Cancel(ctx context.Context, orderID string) (*entity.Order, error) {
	o, err := m.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	current, err := entity.ParseOrderStatus(string(o.OrderStatus))
	if err != nil {
		return nil, fmt.Errorf("order %s has corrupt status: %w", orderID, err)
	}

	if !current.Cancellable() {
		return nil, &InvalidStateError{Current: current, Op: "cancel"}
	}

	o.OrderStatus = entity.OrderCancelled
	o.UpdatedAt = time.Now().UTC()
	if err := m.store.Update(ctx, o); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order cancelled", "order_id", orderID, "from", current)
	return o, nil
}

// Override overwrites the fulfillment status unconditionally, ignoring
// the transition graph. actor identifies the operator for the audit
// trail; every use is logged at WARN because this path can put an
// order into any state, including ones the graph forbids.
func (m *StatusMachine) Override(ctx context.Context, orderID string, status entity.OrderStatus, actor string) (*entity.Order, error) {
	o, err := m.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := o.OrderStatus
	o.OrderStatus = status
	o.UpdatedAt = time.Now().UTC()
	if err := m.store.Update(ctx, o); err != nil {
		return nil, err
	}

	slog.WarnContext(ctx, "order status overridden",
		"order_id", orderID, "from", previous, "to", status, "actor", actor)
	return o, nil
}
