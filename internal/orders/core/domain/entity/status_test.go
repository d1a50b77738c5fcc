package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    OrderStatus
		wantErr bool
	}{
		{"PENDING", OrderPending, false},
		{"pending", OrderPending, false},
		{"  Shipped ", OrderShipped, false},
		{"cancelled", OrderCancelled, false},
		{"REFUNDED", "", true},
		{"", "", true},
		{"bogus", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOrderStatus(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderPending.CanTransition(OrderConfirmed))
	assert.True(t, OrderPending.CanTransition(OrderCancelled))
	assert.True(t, OrderConfirmed.CanTransition(OrderProcessing))
	assert.True(t, OrderConfirmed.CanTransition(OrderCancelled))
	assert.True(t, OrderProcessing.CanTransition(OrderShipped))
	assert.True(t, OrderShipped.CanTransition(OrderDelivered))

	assert.False(t, OrderPending.CanTransition(OrderShipped))
	assert.False(t, OrderProcessing.CanTransition(OrderCancelled))
	assert.False(t, OrderDelivered.CanTransition(OrderPending))
	assert.False(t, OrderCancelled.CanTransition(OrderPending))

	assert.True(t, OrderDelivered.Terminal())
	assert.True(t, OrderCancelled.Terminal())
	assert.False(t, OrderShipped.Terminal())
}

func TestOrderStatusCancellable(t *testing.T) {
	assert.True(t, OrderPending.Cancellable())
	assert.True(t, OrderConfirmed.Cancellable())
	assert.False(t, OrderProcessing.Cancellable())
	assert.False(t, OrderShipped.Cancellable())
	assert.False(t, OrderDelivered.Cancellable())
	assert.False(t, OrderCancelled.Cancellable())
}

func TestParsePaymentStatus(t *testing.T) {
	got, err := ParsePaymentStatus("partially_refunded")
	require.NoError(t, err)
	assert.Equal(t, PaymentPartiallyRefunded, got)

	_, err = ParsePaymentStatus("DECLINED")
	assert.Error(t, err)
}
