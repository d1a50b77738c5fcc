package ports

import (
	"context"
	"errors"

	"github.com/selliq/order-engine/internal/orders/core/domain/entity"
)

// ErrNotFound is returned by stores when no order matches the given id.
var ErrNotFound = errors.New("order not found")

// Query filters and paginates order lookups. The zero value matches
// every order, newest first.
type Query struct {
	// CustomerID, when set, matches orders created by that customer.
	CustomerID string

	// SellerID, when set, matches orders containing at least one line
	// item belonging to that seller. This is a membership predicate
	// over items, not an equality check on Order.SellerID: it is
	// evaluated per document and requires a scan.
	SellerID string

	// Page/Limit paginate the result after filtering. Limit <= 0
	// disables pagination.
	Page  int
	Limit int
}

// Offset returns the number of matching orders to skip.
func (q Query) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// OrderStore is the persistence port for the Order aggregate. It is a
// document store: each operation touches a single document atomically,
// and no multi-document transaction is available. Cross-document
// consistency (the multi-seller split) is the coordinator's problem.
type OrderStore interface {
	// Create persists a new order, assigning its ID if empty.
	Create(ctx context.Context, o *entity.Order) error

	// FindByID returns the order with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*entity.Order, error)

	// FindByQuery returns matching orders, newest first.
	FindByQuery(ctx context.Context, q Query) ([]*entity.Order, error)

	// Update overwrites the document with the given order's id, or
	// returns ErrNotFound. Last write wins: there is no version guard,
	// so two concurrent mutations of the same order race.
	Update(ctx context.Context, o *entity.Order) error

	// Count returns the number of orders matching the query, ignoring
	// pagination.
	Count(ctx context.Context, q Query) (int64, error)
}
