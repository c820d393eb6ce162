package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/cart"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/checkout"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/service"
)

// SessionHeader carries the browsing session a cart and wishlist belong to.
const SessionHeader = "X-Session-ID"

const maxBodyBytes = 1 << 20

// Handler handles HTTP requests for the application.
type Handler struct {
	catalogSvc    *service.CatalogService
	cartSvc       *service.CartService
	checkoutSvc   *service.CheckoutService
	trackingSvc   *service.TrackingService
	orderSvc      *service.OrderService
	newsletterSvc *service.NewsletterService
	adminToken    string
}

func NewHandler(
	catalogSvc *service.CatalogService,
	cartSvc *service.CartService,
	checkoutSvc *service.CheckoutService,
	trackingSvc *service.TrackingService,
	orderSvc *service.OrderService,
	newsletterSvc *service.NewsletterService,
	adminToken string,
) *Handler {
	return &Handler{
		catalogSvc:    catalogSvc,
		cartSvc:       cartSvc,
		checkoutSvc:   checkoutSvc,
		trackingSvc:   trackingSvc,
		orderSvc:      orderSvc,
		newsletterSvc: newsletterSvc,
		adminToken:    adminToken,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)

	mux.HandleFunc("GET /api/products", h.handleGetProducts)
	mux.HandleFunc("GET /api/categories", h.handleGetCategories)

	mux.HandleFunc("GET /api/cart", h.handleGetCart)
	mux.HandleFunc("POST /api/cart/items", h.handleAddCartItem)
	mux.HandleFunc("PUT /api/cart/items/{productID}", h.handleUpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{productID}", h.handleRemoveCartItem)
	mux.HandleFunc("DELETE /api/cart", h.handleClearCart)

	mux.HandleFunc("GET /api/wishlist", h.handleGetWishlist)
	mux.HandleFunc("POST /api/wishlist/{productID}", h.handleToggleWishlist)

	mux.HandleFunc("POST /api/checkout/quote", h.handleQuote)
	mux.HandleFunc("POST /api/checkout", h.handlePlaceOrder)

	mux.HandleFunc("GET /api/orders/{code}", h.handleTrackOrder)

	mux.HandleFunc("GET /api/admin/orders", h.requireAdmin(h.handleGetOrders))
	mux.HandleFunc("PATCH /api/admin/orders/{id}/status", h.requireAdmin(h.handleUpdateOrderStatus))

	mux.HandleFunc("POST /api/newsletter", h.handleSubscribe)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if raw := r.URL.Query().Get("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "invalid active filter", http.StatusBadRequest)
			return
		}
		activeOnly = v
	}
	writeJSON(w, http.StatusOK, h.catalogSvc.ListProducts(r.Context(), activeOnly))
}

func (h *Handler) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalogSvc.ListCategories(r.Context()))
}

// --- Cart & wishlist ---

type cartLineView struct {
	Product  entity.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type cartView struct {
	Lines    []cartLineView  `json:"lines"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Wishlist []string        `json:"wishlist"`
}

func newCartView(store *cart.Store) cartView {
	lines := store.Lines()
	view := cartView{
		Lines:    make([]cartLineView, 0, len(lines)),
		Count:    store.CartCount(),
		Total:    store.CartTotal(),
		Wishlist: store.Wishlist(),
	}
	for _, l := range lines {
		view.Lines = append(view.Lines, cartLineView{Product: l.Product, Quantity: l.Quantity, Subtotal: l.Subtotal()})
	}
	return view
}

// sessionID reads the session header, issuing a new session when absent.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(SessionHeader))
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(SessionHeader, id)
	return id
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	store, err := h.cartSvc.Open(r.Context(), sessionID(w, r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(store))
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	store, err := h.cartSvc.AddItem(r.Context(), sessionID(w, r), req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(store))
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	store, err := h.cartSvc.UpdateQuantity(r.Context(), sessionID(w, r), r.PathValue("productID"), req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(store))
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	store, err := h.cartSvc.RemoveItem(r.Context(), sessionID(w, r), r.PathValue("productID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(store))
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	store, err := h.cartSvc.Clear(r.Context(), sessionID(w, r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(store))
}

func (h *Handler) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	store, err := h.cartSvc.Open(r.Context(), sessionID(w, r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"wishlist": store.Wishlist()})
}

func (h *Handler) handleToggleWishlist(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productID")
	store, wishlisted, err := h.cartSvc.ToggleWishlist(r.Context(), sessionID(w, r), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product_id": productID,
		"wishlisted": wishlisted,
		"wishlist":   store.Wishlist(),
	})
}

// --- Checkout ---

type QuoteRequest struct {
	Zone string `json:"zone"`
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	store, err := h.cartSvc.Open(r.Context(), sessionID(w, r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.checkoutSvc.Quote(store, req.Zone))
}

type PlaceOrderRequest struct {
	checkout.DeliveryForm
	PaymentConfirmation string `json:"payment_confirmation"`
	PaymentReference    string `json:"payment_reference"`
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session := sessionID(w, r)
	store, err := h.cartSvc.Open(r.Context(), session)
	if err != nil {
		writeError(w, err)
		return
	}

	order, err := h.checkoutSvc.PlaceOrder(r.Context(), store, service.PlaceOrderRequest{
		SubmissionKey: session,
		Form:          req.DeliveryForm,
		Confirmation:  req.PaymentConfirmation,
		Reference:     req.PaymentReference,
	})
	if err != nil {
		slog.Error("Failed to place order", "session_id", session, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// --- Tracking ---

// trackingView is the public view of an order; it leaves out customer
// contact details and the pasted payment message.
type trackingView struct {
	Code        string                  `json:"code"`
	Status      entity.OrderStatus      `json:"status"`
	Progress    entity.TrackingProgress `json:"progress"`
	Lines       []entity.OrderLine      `json:"lines"`
	Subtotal    decimal.Decimal         `json:"subtotal"`
	DeliveryFee decimal.Decimal         `json:"delivery_fee"`
	Total       decimal.Decimal         `json:"total"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

func (h *Handler) handleTrackOrder(w http.ResponseWriter, r *http.Request) {
	order, found, err := h.trackingSvc.LookupOrder(r.Context(), r.PathValue("code"))
	if err != nil {
		slog.Error("Failed to look up order", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "order not found"})
		return
	}

	writeJSON(w, http.StatusOK, trackingView{
		Code:        order.Code,
		Status:      order.Status,
		Progress:    entity.Progress(order.Status),
		Lines:       order.Lines,
		Subtotal:    order.Subtotal,
		DeliveryFee: order.DeliveryFee,
		Total:       order.Total,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	})
}

// --- Operator ---

func (h *Handler) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = v
	}
	orders, err := h.orderSvc.GetRecentOrders(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to get orders", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	status, err := entity.ParseOrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orderSvc.UpdateOrderStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || h.adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		next(w, r)
	}
}

// --- Newsletter ---

type SubscribeRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sub, created, err := h.newsletterSvc.Subscribe(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, sub)
}

// --- Helpers ---

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// decodeBody reads a JSON body into dst. An empty body leaves dst zeroed.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}

// writeError maps service and domain errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var verrs checkout.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid checkout form", Fields: verrs})
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, entity.ErrUnknownStatus):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrUnknownProduct),
		errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrSubmissionInFlight),
		errors.Is(err, entity.ErrInvalidTransition),
		errors.Is(err, entity.ErrTerminalStatus),
		errors.Is(err, repository.ErrConcurrency):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrCatalogUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "catalog unavailable, try again shortly"})
	default:
		slog.Error("Request failed", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// EnableCORS is a middleware to allow the storefront to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+SessionHeader)
		w.Header().Set("Access-Control-Expose-Headers", SessionHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
