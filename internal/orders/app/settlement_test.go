package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selliq/order-engine/internal/orders/core/domain/entity"
	"github.com/selliq/order-engine/internal/orders/core/ports"
	"github.com/selliq/order-engine/internal/orders/infra/store/memory"
)

func seedSellerOrder(t *testing.T, store ports.OrderStore, sellerID string, subtotal float64, status entity.OrderStatus, createdAt time.Time) {
	t.Helper()
	o := &entity.Order{
		OrderNumber:   "ORD-" + createdAt.Format("20060102150405.000000000"),
		CustomerID:    "cust-1",
		CustomerEmail: "buyer@example.com",
		SellerID:      sellerID,
		Items: []entity.OrderItem{
			{ProductID: "p", Quantity: 1, Price: subtotal, SellerID: sellerID, Subtotal: subtotal},
		},
		Subtotal:      subtotal,
		Total:         subtotal,
		OrderStatus:   status,
		PaymentStatus: entity.PaymentPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	require.NoError(t, store.Create(context.Background(), o))
}

func TestSellerStatsBucketsAndRates(t *testing.T) {
	store := memory.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	seedSellerOrder(t, store, "S1", 10, entity.OrderPending, now)
	seedSellerOrder(t, store, "S1", 20, entity.OrderConfirmed, now)
	seedSellerOrder(t, store, "S1", 30, entity.OrderProcessing, now)
	seedSellerOrder(t, store, "S1", 40, entity.OrderShipped, now)
	seedSellerOrder(t, store, "S1", 50, entity.OrderDelivered, now)
	seedSellerOrder(t, store, "S1", 60, entity.OrderDelivered, now)
	seedSellerOrder(t, store, "S2", 999, entity.OrderDelivered, now) // other seller, excluded

	stats, err := NewAggregator(store).SellerStats(context.Background(), "S1")
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalOrders)
	assert.Equal(t, 210.0, stats.TotalRevenue)
	assert.Equal(t, 2, stats.PendingOrders)
	assert.Equal(t, 2, stats.ProcessingOrders)
	assert.Equal(t, 2, stats.CompletedOrders)
	// 2/6 × 100 = 33.333…: one decimal for completionRate, whole
	// percent for successRate.
	assert.Equal(t, 33.3, stats.CompletionRate)
	assert.Equal(t, 33.0, stats.SuccessRate)
	assert.Equal(t, 35.0, stats.AvgOrderValue)
}

func TestSellerStatsIdempotent(t *testing.T) {
	store := memory.New()
	now := time.Now().UTC()
	seedSellerOrder(t, store, "S1", 25, entity.OrderDelivered, now)
	agg := NewAggregator(store)

	first, err := agg.SellerStats(context.Background(), "S1")
	require.NoError(t, err)
	second, err := agg.SellerStats(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSellerStatsZeroOrders(t *testing.T) {
	stats, err := NewAggregator(memory.New()).SellerStats(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalOrders)
	assert.Equal(t, 0.0, stats.TotalRevenue)
	assert.Equal(t, 0.0, stats.CompletionRate)
	assert.Equal(t, 0.0, stats.AvgOrderValue)
	assert.Equal(t, 0.0, stats.SuccessRate)
}

func TestSellerStatsRefiltersMixedDocuments(t *testing.T) {
	// A document holding several sellers' items must contribute only
	// the matching items' subtotals, regardless of Order.SellerID.
	store := memory.New()
	o := &entity.Order{
		OrderNumber:   "ORD-mixed",
		CustomerID:    "cust-1",
		CustomerEmail: "buyer@example.com",
		SellerID:      "someone-else",
		Items: []entity.OrderItem{
			{ProductID: "p1", Quantity: 1, Price: 40, SellerID: "S1", Subtotal: 40},
			{ProductID: "p2", Quantity: 1, Price: 60, SellerID: "S2", Subtotal: 60},
		},
		Subtotal:      100,
		Total:         100,
		OrderStatus:   entity.OrderDelivered,
		PaymentStatus: entity.PaymentPaid,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.Create(context.Background(), o))

	stats, err := NewAggregator(store).SellerStats(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, 40.0, stats.TotalRevenue)
}

func TestSellerEarningsMonthlyBuckets(t *testing.T) {
	store := memory.New()
	jan := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)

	seedSellerOrder(t, store, "S1", 100, entity.OrderDelivered, jan)
	seedSellerOrder(t, store, "S1", 50, entity.OrderDelivered, jan)
	seedSellerOrder(t, store, "S1", 200, entity.OrderShipped, feb)

	report, err := NewAggregator(store).SellerEarnings(context.Background(), "S1", 0.10)
	require.NoError(t, err)
	require.Len(t, report.Months, 2)
	assert.Equal(t, 0.10, report.CommissionRate)

	// Newest first.
	assert.Equal(t, "2026-02", report.Months[0].Month)
	assert.Equal(t, "February 2026", report.Months[0].Period)
	assert.Equal(t, 200.0, report.Months[0].Revenue)
	assert.Equal(t, 1, report.Months[0].Orders)
	assert.Equal(t, 20.0, report.Months[0].Commission)
	assert.Equal(t, 180.0, report.Months[0].Payout)

	assert.Equal(t, "2026-01", report.Months[1].Month)
	assert.Equal(t, 150.0, report.Months[1].Revenue)
	assert.Equal(t, 2, report.Months[1].Orders)

	// Commission conservation per bucket and in the summary.
	for _, m := range report.Months {
		assert.InDelta(t, m.Revenue, m.Payout+m.Commission, 0.01)
		assert.InDelta(t, m.Revenue*0.10, m.Commission, 0.01)
	}
	assert.Equal(t, 350.0, report.Summary.Revenue)
	assert.Equal(t, 3, report.Summary.Orders)
	assert.Equal(t, 35.0, report.Summary.Commission)
	assert.Equal(t, 315.0, report.Summary.Payout)
}

func TestSellerEarningsEmpty(t *testing.T) {
	report, err := NewAggregator(memory.New()).SellerEarnings(context.Background(), "ghost", 0.15)
	require.NoError(t, err)
	assert.Empty(t, report.Months)
	assert.Equal(t, 0.15, report.CommissionRate)
	assert.Equal(t, 0.0, report.Summary.Revenue)
}

func TestPlatformStats(t *testing.T) {
	store := memory.New()
	now := time.Now().UTC()
	seedSellerOrder(t, store, "S1", 10, entity.OrderDelivered, now)
	seedSellerOrder(t, store, "S2", 20, entity.OrderCancelled, now)
	seedSellerOrder(t, store, "S3", 30, entity.OrderPending, now)

	stats, err := NewAggregator(store).PlatformStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 60.0, stats.TotalRevenue)
	assert.Equal(t, 1, stats.CompletedOrders)
	assert.Equal(t, 1, stats.CancelledOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 3, stats.Sellers)
	assert.Equal(t, 33.3, stats.CompletionRate)
	assert.Equal(t, 20.0, stats.AvgOrderValue)
}
