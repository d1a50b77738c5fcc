package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/selliq/order-engine/internal/orders/app"
	"github.com/selliq/order-engine/internal/orders/core/domain/entity"
	"github.com/selliq/order-engine/internal/orders/core/ports"
	"github.com/selliq/order-engine/internal/orders/infra/httpx/middlewares"
	"github.com/selliq/order-engine/internal/pkg/cache"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100

	// Settlement reports are full scans; a short cache keeps dashboard
	// polling from re-scanning the order book on every refresh.
	reportCacheTTL = 30 * time.Second
)

// Handler handles incoming HTTP requests for the order engine.
type Handler struct {
	splitter *app.Splitter
	statuses *app.StatusMachine
	payments *app.PaymentTracker
	reports  *app.Aggregator
	store    ports.OrderStore
	cache    cache.Cache // nil-safe: report caching skipped if nil
}

// NewHandler wires the handler with its domain services. c may be nil
// — settlement reports are then computed on every request.
func NewHandler(
	splitter *app.Splitter,
	statuses *app.StatusMachine,
	payments *app.PaymentTracker,
	reports *app.Aggregator,
	store ports.OrderStore,
	c cache.Cache,
) *Handler {
	return &Handler{
		splitter: splitter,
		statuses: statuses,
		payments: payments,
		reports:  reports,
		store:    store,
		cache:    c,
	}
}

// CreateOrder submits a checkout; items from several sellers produce
// several orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	result, err := h.splitter.Split(r.Context(), req.toCheckout())
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{
		Success:    true,
		Order:      result.Orders[0],
		Orders:     result.Orders,
		OrderCount: result.Count,
	})
}

// GetOrder fetches one order by id.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Success: true, Order: o})
}

// ListCustomerOrders returns a customer's orders, paginated.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	page, limit := paginationParams(r)
	q := ports.Query{CustomerID: chi.URLParam(r, "customerId"), Page: page, Limit: limit}

	orders, err := h.store.FindByQuery(r.Context(), q)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	total, err := h.store.Count(r.Context(), ports.Query{CustomerID: q.CustomerID})
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}

	if orders == nil {
		orders = []*entity.Order{}
	}
	writeJSON(w, http.StatusOK, listResponse{
		Success:    true,
		Orders:     orders,
		Pagination: paginate(page, limit, total),
	})
}

// ListSellerOrders returns the orders containing at least one of the
// seller's items, each annotated with the seller's share of the
// document.
func (h *Handler) ListSellerOrders(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "sellerId")
	page, limit := paginationParams(r)
	q := ports.Query{SellerID: sellerID, Page: page, Limit: limit}

	orders, err := h.store.FindByQuery(r.Context(), q)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	total, err := h.store.Count(r.Context(), ports.Query{SellerID: sellerID})
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}

	views := make([]sellerOrderView, len(orders))
	for i, o := range orders {
		views[i] = sellerOrderView{
			Order:              o,
			SellerSubtotal:     o.SellerSubtotal(sellerID),
			SellerItemCount:    o.SellerItemCount(sellerID),
			TotalItemCount:     len(o.Items),
			IsMultiSellerOrder: o.MultiSeller(),
		}
	}
	writeJSON(w, http.StatusOK, sellerListResponse{
		Success:    true,
		Orders:     views,
		Pagination: paginate(page, limit, total),
	})
}

// OverrideStatus is the privileged, unchecked status write. The route
// is admin-gated; the transition graph is bypassed by design.
func (h *Handler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	status, err := entity.ParseOrderStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := ""
	if id, ok := middlewares.IdentityFromContext(r.Context()); ok {
		actor = id.ID
	}

	o, err := h.statuses.Override(r.Context(), chi.URLParam(r, "id"), status, actor)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Success: true, Order: o})
}

// RecordPayment records a payment status. No ordering between payment
// states is enforced.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	status, err := entity.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.payments.SetStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Success: true, Order: o})
}

// CancelOrder is the guarded cancel: only PENDING or CONFIRMED orders
// may be cancelled.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.statuses.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Success: true, Order: o})
}

// SellerStats serves the seller's aggregate figures.
func (h *Handler) SellerStats(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "sellerId")
	key := h.cacheKey("seller-stats", sellerID)
	if h.serveCached(w, r, key) {
		return
	}

	stats, err := h.reports.SellerStats(r.Context(), sellerID)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	h.writeCached(w, r, key, statsResponse{Success: true, Stats: stats})
}

// SellerEarnings serves the seller's monthly commission report.
func (h *Handler) SellerEarnings(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "sellerId")
	rate := commissionRate(r)
	key := h.cacheKey("seller-earnings", sellerID+":"+strconv.FormatFloat(rate, 'f', -1, 64))
	if h.serveCached(w, r, key) {
		return
	}

	earnings, err := h.reports.SellerEarnings(r.Context(), sellerID, rate)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	h.writeCached(w, r, key, earningsResponse{Success: true, Earnings: earnings})
}

// AdminStats serves the platform-wide aggregates. Admin-gated.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	key := h.cacheKey("admin-stats", "all")
	if h.serveCached(w, r, key) {
		return
	}

	stats, err := h.reports.PlatformStats(r.Context())
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	h.writeCached(w, r, key, adminStatsResponse{Success: true, Stats: stats})
}

// writeMappedError maps the app-layer error taxonomy to HTTP codes.
// Internal error text is never sent to callers on 500s.
func (h *Handler) writeMappedError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *app.ValidationError
	var sErr *app.InvalidStateError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Message)
	case errors.As(err, &sErr):
		writeError(w, http.StatusBadRequest, sErr.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) cacheKey(op, key string) string {
	if h.cache == nil {
		return ""
	}
	return h.cache.GenerateKey(op, key)
}

// serveCached writes a previously cached report body, if present.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if h.cache == nil {
		return false
	}
	body, err := h.cache.Get(r.Context(), key)
	if err != nil || body == "" {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
	return true
}

// writeCached responds with v and stores the rendered body for the
// report cache TTL. Cache failures are invisible to the caller.
func (h *Handler) writeCached(w http.ResponseWriter, r *http.Request, key string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	if h.cache != nil {
		if err := h.cache.Set(r.Context(), key, string(body), reportCacheTTL); err != nil {
			slog.WarnContext(r.Context(), "report cache write failed", "key", key, "error", err)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func paginationParams(r *http.Request) (page, limit int) {
	page = defaultPage
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return page, limit
}

func commissionRate(r *http.Request) float64 {
	rate := app.DefaultCommissionRate
	if v, err := strconv.ParseFloat(r.URL.Query().Get("commissionRate"), 64); err == nil {
		rate = math.Min(math.Max(v, 0), 1)
	}
	return rate
}

func paginate(page, limit int, total int64) pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Message: msg})
}
