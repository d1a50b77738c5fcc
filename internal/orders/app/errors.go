package app

import (
	"fmt"

	"github.com/selliq/order-engine/internal/orders/core/domain/entity"
	"github.com/selliq/order-engine/internal/orders/core/ports"
)

// ErrNotFound is re-exported so callers of the app layer do not need
// to import the ports package to classify failures.
var ErrNotFound = ports.ErrNotFound

// ValidationError rejects malformed checkout input. It is raised
// before any side effect occurs.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError rejects a status transition disallowed by the
// fulfillment graph, e.g. cancelling a SHIPPED order.
type InvalidStateError struct {
	Current entity.OrderStatus
	Op      string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s order in status %s", e.Op, e.Current)
}
