package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/selliq/order-engine/internal/orders/core/domain/entity"
	"github.com/selliq/order-engine/internal/orders/core/ports"
)

// compensationNote is appended to an order cancelled by split rollback
// so an operator can tell a compensated sibling from a customer cancel.
const compensationNote = "Cancelled: sibling order creation failed during multi-seller split"

// CreateOrderStep persists one per-seller order of a split checkout.
type CreateOrderStep struct {
	store ports.OrderStore
	order *entity.Order
}

func NewCreateOrderStep(store ports.OrderStore, order *entity.Order) *CreateOrderStep {
	return &CreateOrderStep{store: store, order: order}
}

func (s *CreateOrderStep) Name() string {
	return "create_order:" + s.order.OrderNumber
}

// OrderID returns the store-assigned document id, empty before Execute.
func (s *CreateOrderStep) OrderID() string {
	return s.order.ID
}

func (s *CreateOrderStep) Execute(ctx context.Context) error {
	if err := s.store.Create(ctx, s.order); err != nil {
		return fmt.Errorf("create order %s: %w", s.order.OrderNumber, err)
	}
	return nil
}

// Compensate marks the created order CANCELLED. Orders are never
// physically deleted by this engine, so rollback is a status write
// plus an explanatory note.
func (s *CreateOrderStep) Compensate(ctx context.Context) error {
	if s.order.ID == "" {
		// Create never happened, nothing to undo.
		return nil
	}
	return CancelSplitOrder(ctx, s.store, s.order.ID)
}

// CancelSplitOrder loads an order and cancels it as split compensation.
// Shared with the reconciler, which performs the same rollback from the
// journal after a crash. Orders that already progressed past PENDING
// are left alone: by then someone has acted on them and an automated
// rollback would destroy real state.
func CancelSplitOrder(ctx context.Context, store ports.OrderStore, orderID string) error {
	o, err := store.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load order %s for compensation: %w", orderID, err)
	}
	if o.OrderStatus != entity.OrderPending {
		return nil
	}

	o.OrderStatus = entity.OrderCancelled
	if o.Notes != "" {
		o.Notes += "\n"
	}
	o.Notes += compensationNote
	o.UpdatedAt = nowUTC()

	if err := store.Update(ctx, o); err != nil {
		return fmt.Errorf("cancel order %s during compensation: %w", orderID, err)
	}
	return nil
}
