package app

import (
	"context"
	"sort"
	"time"

	"github.com/selliq/order-engine/internal/orders/core/domain/entity"
	"github.com/selliq/order-engine/internal/orders/core/ports"
)

// DefaultCommissionRate is the platform's cut of seller revenue when
// the caller does not supply one.
const DefaultCommissionRate = 0.10

// SellerStats summarizes a seller's order book.
//
// CompletionRate and SuccessRate share one formula
// (completed/total × 100) at different display precisions — 1 decimal
// vs whole percent — mirroring the upstream contract.
type SellerStats struct {
	SellerID         string  `json:"sellerId"`
	TotalRevenue     float64 `json:"totalRevenue"`
	TotalOrders      int     `json:"totalOrders"`
	PendingOrders    int     `json:"pendingOrders"`
	ProcessingOrders int     `json:"processingOrders"`
	CompletedOrders  int     `json:"completedOrders"`
	CompletionRate   float64 `json:"completionRate"`
	AvgOrderValue    float64 `json:"avgOrderValue"`
	SuccessRate      float64 `json:"successRate"`
}

// MonthlyEarnings is one settlement period of an earnings report.
type MonthlyEarnings struct {
	Month      string  `json:"month"`  // YYYY-MM
	Period     string  `json:"period"` // human-readable, e.g. "March 2026"
	Revenue    float64 `json:"revenue"`
	Orders     int     `json:"orders"`
	Commission float64 `json:"commission"`
	Payout     float64 `json:"payout"`
}

// EarningsSummary is the grand total across all periods.
type EarningsSummary struct {
	Revenue    float64 `json:"revenue"`
	Orders     int     `json:"orders"`
	Commission float64 `json:"commission"`
	Payout     float64 `json:"payout"`
}

// EarningsReport buckets seller revenue by calendar month, newest
// first, with commission-based payouts.
type EarningsReport struct {
	SellerID       string            `json:"sellerId"`
	CommissionRate float64           `json:"commissionRate"`
	Months         []MonthlyEarnings `json:"months"`
	Summary        EarningsSummary   `json:"summary"`
}

// PlatformStats is the admin-facing, unfiltered equivalent of
// SellerStats.
type PlatformStats struct {
	TotalRevenue     float64 `json:"totalRevenue"`
	TotalOrders      int     `json:"totalOrders"`
	PendingOrders    int     `json:"pendingOrders"`
	ProcessingOrders int     `json:"processingOrders"`
	CompletedOrders  int     `json:"completedOrders"`
	CancelledOrders  int     `json:"cancelledOrders"`
	CompletionRate   float64 `json:"completionRate"`
	AvgOrderValue    float64 `json:"avgOrderValue"`
	Sellers          int     `json:"sellers"`
}

// Aggregator derives seller-scoped settlement figures from the order
// book. It is read-only: reports are full scans filtered by a
// seller-membership predicate, never locking out concurrent writers,
// so a report may trail in-flight mutations by a moment.
//
// Revenue is always recomputed from the items matching the seller,
// even though the splitter produces single-seller documents — orders
// created by other paths may mix sellers, so the aggregator never
// trusts Order.SellerID.
type Aggregator struct {
	store ports.OrderStore
}

func NewAggregator(store ports.OrderStore) *Aggregator {
	return &Aggregator{store: store}
}

// SellerStats scans the orders containing at least one item of the
// seller. A seller with no orders gets zeroed aggregates, not an error.
func (a *Aggregator) SellerStats(ctx context.Context, sellerID string) (*SellerStats, error) {
	orders, err := a.store.FindByQuery(ctx, ports.Query{SellerID: sellerID})
	if err != nil {
		return nil, err
	}

	stats := &SellerStats{SellerID: sellerID}
	var revenue float64
	for _, o := range orders {
		stats.TotalOrders++
		revenue += o.SellerSubtotal(sellerID)
		switch o.OrderStatus {
		case entity.OrderPending, entity.OrderConfirmed:
			stats.PendingOrders++
		case entity.OrderProcessing, entity.OrderShipped:
			stats.ProcessingOrders++
		case entity.OrderDelivered:
			stats.CompletedOrders++
		}
	}

	stats.TotalRevenue = entity.Round2(revenue)
	if stats.TotalOrders > 0 {
		rate := float64(stats.CompletedOrders) / float64(stats.TotalOrders) * 100
		stats.CompletionRate = entity.Round1(rate)
		stats.SuccessRate = entity.Round0(rate)
		stats.AvgOrderValue = entity.Round2(stats.TotalRevenue / float64(stats.TotalOrders))
	}
	return stats, nil
}

// SellerEarnings buckets the seller's revenue by the calendar month of
// order creation and applies the commission rate to each bucket.
func (a *Aggregator) SellerEarnings(ctx context.Context, sellerID string, commissionRate float64) (*EarningsReport, error) {
	orders, err := a.store.FindByQuery(ctx, ports.Query{SellerID: sellerID})
	if err != nil {
		return nil, err
	}

	type bucket struct {
		revenue float64
		orders  int
		first   time.Time
	}
	buckets := make(map[string]*bucket)
	for _, o := range orders {
		key := o.CreatedAt.Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{first: o.CreatedAt}
			buckets[key] = b
		}
		b.revenue += o.SellerSubtotal(sellerID)
		b.orders++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	report := &EarningsReport{
		SellerID:       sellerID,
		CommissionRate: commissionRate,
		Months:         make([]MonthlyEarnings, 0, len(keys)),
	}
	for _, k := range keys {
		b := buckets[k]
		revenue := entity.Round2(b.revenue)
		commission := entity.Round2(revenue * commissionRate)
		report.Months = append(report.Months, MonthlyEarnings{
			Month:      k,
			Period:     b.first.Format("January 2006"),
			Revenue:    revenue,
			Orders:     b.orders,
			Commission: commission,
			Payout:     entity.Round2(revenue - commission),
		})
		report.Summary.Revenue += revenue
		report.Summary.Orders += b.orders
		report.Summary.Commission += commission
	}
	report.Summary.Revenue = entity.Round2(report.Summary.Revenue)
	report.Summary.Commission = entity.Round2(report.Summary.Commission)
	report.Summary.Payout = entity.Round2(report.Summary.Revenue - report.Summary.Commission)

	return report, nil
}

// PlatformStats aggregates the whole order book, unfiltered.
func (a *Aggregator) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	orders, err := a.store.FindByQuery(ctx, ports.Query{})
	if err != nil {
		return nil, err
	}

	stats := &PlatformStats{}
	sellers := make(map[string]struct{})
	var revenue float64
	for _, o := range orders {
		stats.TotalOrders++
		revenue += o.Subtotal
		for _, it := range o.Items {
			sellers[it.Seller()] = struct{}{}
		}
		switch o.OrderStatus {
		case entity.OrderPending, entity.OrderConfirmed:
			stats.PendingOrders++
		case entity.OrderProcessing, entity.OrderShipped:
			stats.ProcessingOrders++
		case entity.OrderDelivered:
			stats.CompletedOrders++
		case entity.OrderCancelled:
			stats.CancelledOrders++
		}
	}

	stats.TotalRevenue = entity.Round2(revenue)
	stats.Sellers = len(sellers)
	if stats.TotalOrders > 0 {
		stats.CompletionRate = entity.Round1(float64(stats.CompletedOrders) / float64(stats.TotalOrders) * 100)
		stats.AvgOrderValue = entity.Round2(stats.TotalRevenue / float64(stats.TotalOrders))
	}
	return stats, nil
}
