package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/selliq/order-engine/internal/coordinator"
	"github.com/selliq/order-engine/internal/coordinator/splitlog"
	"github.com/selliq/order-engine/internal/orders/core/domain/entity"
	"github.com/selliq/order-engine/internal/orders/core/ports"
)

// CheckoutItem is one cart line of a checkout request. SellerID may be
// empty; such items fall into the sentinel "default" bucket.
type CheckoutItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       float64
	SellerID    string
}

// Checkout is the input to Split. Subtotal/tax/shipping/discount/total
// are supplied figures — this engine does not compute tax or validate
// coupons, it only allocates the given amounts.
type Checkout struct {
	CustomerID      string
	CustomerEmail   string
	Items           []CheckoutItem
	Subtotal        float64
	Tax             float64
	Shipping        float64
	Discount        float64
	CouponCode      string
	Total           float64
	PaymentMethod   string
	ShippingAddress entity.Address
	Notes           string
}

// SplitResult is the outcome of one checkout. Orders[0] is the order
// returned to single-order-expecting callers.
type SplitResult struct {
	Orders []*entity.Order
	Count  int
}

// Splitter converts a checkout into one order per seller, allocating
// shared costs proportionally by seller subtotal share, and persists
// the orders through the split saga.
type Splitter struct {
	store   ports.OrderStore
	seq     ports.NumberSequence
	journal splitlog.Repository
}

// NewSplitter builds a Splitter. journal may be nil; split transitions
// are then not persisted and crash recovery is unavailable.
func NewSplitter(store ports.OrderStore, seq ports.NumberSequence, journal splitlog.Repository) *Splitter {
	return &Splitter{store: store, seq: seq, journal: journal}
}

// sellerGroup collects the items of one seller in cart order.
type sellerGroup struct {
	seller string
	items  []entity.OrderItem
}

// Split validates the checkout, groups items by seller and writes one
// order per group. Validation failures reject the whole operation
// before any write. A write failure rolls back already-created sibling
// orders via the saga.
func (s *Splitter) Split(ctx context.Context, req Checkout) (*SplitResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	groups := groupBySeller(req.Items)
	orders := buildOrders(req, groups, s.seq.Batch(len(groups)))

	steps := make([]coordinator.Step, len(orders))
	for i, o := range orders {
		steps[i] = coordinator.NewCreateOrderStep(s.store, o)
	}

	// The split id doubles as the saga id so journal rows can be joined
	// with business data and the active trace.
	splitID := uuid.NewString()
	payload, _ := json.Marshal(req)

	saga := coordinator.NewOrchestrator(splitID, steps, s.journal, string(payload))
	if err := saga.Start(ctx); err != nil {
		return nil, fmt.Errorf("split %s: %w", splitID, err)
	}

	slog.InfoContext(ctx, "checkout split",
		"split_id", splitID, "customer_id", req.CustomerID, "orders", len(orders))

	return &SplitResult{Orders: orders, Count: len(orders)}, nil
}

func validate(req Checkout) error {
	if req.CustomerID == "" {
		return validationf("customerId is required")
	}
	if req.CustomerEmail == "" {
		return validationf("customerEmail is required")
	}
	if len(req.Items) == 0 {
		return validationf("at least one item is required")
	}
	for i, it := range req.Items {
		if it.ProductID == "" {
			return validationf("items[%d].productId is required", i)
		}
		if it.Quantity < 1 {
			return validationf("items[%d].quantity must be at least 1", i)
		}
		if it.Price < 0 {
			return validationf("items[%d].price must not be negative", i)
		}
	}
	if req.Subtotal < 0 || req.Tax < 0 || req.Shipping < 0 || req.Discount < 0 {
		return validationf("monetary figures must not be negative")
	}
	return nil
}

// groupBySeller buckets items by seller, preserving cart order both
// across groups (first appearance) and within a group.
func groupBySeller(items []CheckoutItem) []sellerGroup {
	index := make(map[string]int)
	var groups []sellerGroup
	for _, it := range items {
		seller := it.SellerID
		if seller == "" {
			seller = entity.DefaultSellerID
		}
		line := entity.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
			SellerID:    seller,
			Subtotal:    entity.Round2(it.Price * float64(it.Quantity)),
		}
		i, ok := index[seller]
		if !ok {
			index[seller] = len(groups)
			groups = append(groups, sellerGroup{seller: seller})
			i = len(groups) - 1
		}
		groups[i].items = append(groups[i].items, line)
	}
	return groups
}

// buildOrders materializes one order per seller group. A single-group
// checkout carries the original figures unchanged; a multi-group
// checkout allocates tax/shipping/discount proportionally by each
// group's share of the cart subtotal.
func buildOrders(req Checkout, groups []sellerGroup, numbers []string) []*entity.Order {
	now := time.Now().UTC()

	if len(groups) == 1 {
		o := newOrder(req, groups[0], numbers[0], now)
		o.Subtotal = entity.Round2(req.Subtotal)
		o.Tax = entity.Round2(req.Tax)
		o.Shipping = entity.Round2(req.Shipping)
		o.Discount = entity.Round2(req.Discount)
		o.Total = entity.Round2(req.Total)
		return []*entity.Order{o}
	}

	orders := make([]*entity.Order, len(groups))
	for i, g := range groups {
		var sellerSubtotal float64
		for _, it := range g.items {
			sellerSubtotal += it.Subtotal
		}
		sellerSubtotal = entity.Round2(sellerSubtotal)

		// Zero-subtotal carts cannot allocate by share; fall back to an
		// even 1/n split.
		proportion := 1 / float64(len(groups))
		if req.Subtotal != 0 {
			proportion = sellerSubtotal / req.Subtotal
		}

		o := newOrder(req, g, numbers[i], now)
		o.Subtotal = sellerSubtotal
		o.Tax = entity.Round2(req.Tax * proportion)
		o.Shipping = entity.Round2(req.Shipping * proportion)
		o.Discount = entity.Round2(req.Discount * proportion)
		o.Total = entity.Round2(o.Subtotal + o.Tax + o.Shipping - o.Discount)

		note := fmt.Sprintf("Split from a %d-seller checkout; this order covers seller %q (%.1f%% of cart subtotal)",
			len(groups), g.seller, proportion*100)
		if o.Notes != "" {
			o.Notes += "\n"
		}
		o.Notes += note

		orders[i] = o
	}
	return orders
}

func newOrder(req Checkout, g sellerGroup, number string, now time.Time) *entity.Order {
	sellerID := g.seller
	if sellerID == entity.DefaultSellerID {
		// The sentinel bucket is not a real seller; the document's
		// primary seller stays unset.
		sellerID = ""
	}
	return &entity.Order{
		OrderNumber:     number,
		CustomerID:      req.CustomerID,
		CustomerEmail:   strings.ToLower(req.CustomerEmail),
		SellerID:        sellerID,
		Items:           g.items,
		CouponCode:      req.CouponCode,
		OrderStatus:     entity.OrderPending,
		PaymentStatus:   entity.PaymentPending,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
