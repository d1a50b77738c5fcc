package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRounding(t *testing.T) {
	assert.Equal(t, 2.35, Round2(2.346))
	assert.Equal(t, 2.34, Round2(2.344))
	assert.Equal(t, 3.14, Round2(3.14159))
	assert.Equal(t, 66.7, Round1(66.66))
	assert.Equal(t, float64(67), Round0(66.66))
}

func TestSellerHelpers(t *testing.T) {
	o := &Order{Items: []OrderItem{
		{ProductID: "p1", SellerID: "s1", Subtotal: 20},
		{ProductID: "p2", SellerID: "s2", Subtotal: 30},
		{ProductID: "p3", Subtotal: 5}, // no seller: sentinel bucket
		{ProductID: "p4", SellerID: "s1", Subtotal: 10.01},
	}}

	assert.True(t, o.HasSellerItem("s1"))
	assert.True(t, o.HasSellerItem("s2"))
	assert.True(t, o.HasSellerItem(DefaultSellerID))
	assert.False(t, o.HasSellerItem("s3"))

	assert.Equal(t, 30.01, o.SellerSubtotal("s1"))
	assert.Equal(t, 30.0, o.SellerSubtotal("s2"))
	assert.Equal(t, 5.0, o.SellerSubtotal(DefaultSellerID))
	assert.Equal(t, 0.0, o.SellerSubtotal("s3"))

	assert.Equal(t, 2, o.SellerItemCount("s1"))
	assert.Equal(t, 1, o.SellerItemCount(DefaultSellerID))
	assert.True(t, o.MultiSeller())

	single := &Order{Items: []OrderItem{
		{ProductID: "p1", SellerID: "s1"},
		{ProductID: "p2", SellerID: "s1"},
	}}
	assert.False(t, single.MultiSeller())
	assert.False(t, (&Order{}).MultiSeller())
}

func TestClone(t *testing.T) {
	o := &Order{ID: "a", Items: []OrderItem{{ProductID: "p1"}}}
	cp := o.Clone()
	cp.Items[0].ProductID = "changed"
	cp.ID = "b"
	assert.Equal(t, "p1", o.Items[0].ProductID)
	assert.Equal(t, "a", o.ID)
}
