package httpx

import (
	"github.com/selliq/order-engine/internal/orders/app"
	"github.com/selliq/order-engine/internal/orders/core/domain/entity"
)

type checkoutRequest struct {
	CustomerID      string            `json:"customerId"`
	CustomerEmail   string            `json:"customerEmail"`
	Items           []checkoutItemDTO `json:"items"`
	Subtotal        float64           `json:"subtotal"`
	Tax             float64           `json:"tax"`
	Shipping        float64           `json:"shipping"`
	Discount        float64           `json:"discount"`
	CouponCode      string            `json:"couponCode"`
	Total           float64           `json:"total"`
	PaymentMethod   string            `json:"paymentMethod"`
	ShippingAddress entity.Address    `json:"shippingAddress"`
	Notes           string            `json:"notes"`
}

type checkoutItemDTO struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	SellerID    string  `json:"sellerId"`
}

func (r checkoutRequest) toCheckout() app.Checkout {
	items := make([]app.CheckoutItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = app.CheckoutItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
			SellerID:    it.SellerID,
		}
	}
	return app.Checkout{
		CustomerID:      r.CustomerID,
		CustomerEmail:   r.CustomerEmail,
		Items:           items,
		Subtotal:        r.Subtotal,
		Tax:             r.Tax,
		Shipping:        r.Shipping,
		Discount:        r.Discount,
		CouponCode:      r.CouponCode,
		Total:           r.Total,
		PaymentMethod:   r.PaymentMethod,
		ShippingAddress: r.ShippingAddress,
		Notes:           r.Notes,
	}
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

type paymentUpdateRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type orderResponse struct {
	Success bool          `json:"success"`
	Order   *entity.Order `json:"order"`
}

type createResponse struct {
	Success    bool            `json:"success"`
	Order      *entity.Order   `json:"order"`
	Orders     []*entity.Order `json:"orders"`
	OrderCount int             `json:"orderCount"`
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type listResponse struct {
	Success    bool            `json:"success"`
	Orders     []*entity.Order `json:"orders"`
	Pagination pagination      `json:"pagination"`
}

// sellerOrderView annotates an order with the caller-seller's share of
// the document, for the seller-facing listing.
type sellerOrderView struct {
	*entity.Order
	SellerSubtotal     float64 `json:"sellerSubtotal"`
	SellerItemCount    int     `json:"sellerItemCount"`
	TotalItemCount     int     `json:"totalItemCount"`
	IsMultiSellerOrder bool    `json:"isMultiSellerOrder"`
}

type sellerListResponse struct {
	Success    bool              `json:"success"`
	Orders     []sellerOrderView `json:"orders"`
	Pagination pagination        `json:"pagination"`
}

type statsResponse struct {
	Success bool             `json:"success"`
	Stats   *app.SellerStats `json:"stats"`
}

type earningsResponse struct {
	Success  bool                `json:"success"`
	Earnings *app.EarningsReport `json:"earnings"`
}

type adminStatsResponse struct {
	Success bool               `json:"success"`
	Stats   *app.PlatformStats `json:"stats"`
}
