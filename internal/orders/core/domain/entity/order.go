package entity

import "time"

// DefaultSellerID is the sentinel bucket for items that carry no seller.
const DefaultSellerID = "default"

// OrderItem is a line item embedded in an Order. Product name and unit
// price are snapshots taken at order time.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	SellerID    string  `json:"sellerId,omitempty"`
	Subtotal    float64 `json:"subtotal"`
}

// Seller returns the item's seller, mapping an absent seller to the
// sentinel bucket.
func (i OrderItem) Seller() string {
	if i.SellerID == "" {
		return DefaultSellerID
	}
	return i.SellerID
}

// Address is the shipping destination snapshot on an order.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// Order is the aggregate root. Once created it is owned by the store;
// mutations go through a read-then-write of the whole document.
type Order struct {
	ID            string  `json:"id"`
	OrderNumber   string  `json:"orderNumber"`
	CustomerID    string  `json:"customerId"`
	CustomerEmail string  `json:"customerEmail"`
	// SellerID is the primary seller for this document. Empty when the
	// sentinel bucket was used.
	SellerID string      `json:"sellerId,omitempty"`
	Items    []OrderItem `json:"items"`

	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`

	CouponCode      string        `json:"couponCode,omitempty"`
	OrderStatus     OrderStatus   `json:"orderStatus"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	PaymentMethod   string        `json:"paymentMethod"`
	ShippingAddress Address       `json:"shippingAddress"`
	Notes           string        `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasSellerItem reports whether at least one line item belongs to the
// given seller. Items without a seller match the sentinel bucket.
func (o *Order) HasSellerItem(sellerID string) bool {
	for _, it := range o.Items {
		if it.Seller() == sellerID {
			return true
		}
	}
	return false
}

// SellerSubtotal sums the subtotals of the items belonging to the given
// seller, re-filtering per item rather than trusting Order.SellerID —
// documents created by other paths may mix sellers.
func (o *Order) SellerSubtotal(sellerID string) float64 {
	var sum float64
	for _, it := range o.Items {
		if it.Seller() == sellerID {
			sum += it.Subtotal
		}
	}
	return Round2(sum)
}

// SellerItemCount counts the line items belonging to the given seller.
func (o *Order) SellerItemCount(sellerID string) int {
	n := 0
	for _, it := range o.Items {
		if it.Seller() == sellerID {
			n++
		}
	}
	return n
}

// MultiSeller reports whether the document contains items from more
// than one seller.
func (o *Order) MultiSeller() bool {
	if len(o.Items) == 0 {
		return false
	}
	first := o.Items[0].Seller()
	for _, it := range o.Items[1:] {
		if it.Seller() != first {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Stores hand out copies so callers cannot
// mutate the persisted document behind the store's back.
func (o *Order) Clone() *Order {
	cp := *o
	cp.Items = make([]OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}
