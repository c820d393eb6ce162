package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/cart"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/checkout"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository/memory"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/service"
)

const testAdminToken = "s3cret"

type nopPublisher struct{}

func (nopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	products := memory.NewProductRepository()
	require.NoError(t, products.Seed(ctx, repository.SeedProducts()))
	categories := memory.NewCategoryRepository()
	require.NoError(t, categories.Seed(ctx, repository.SeedCategories()))
	events := memory.NewEventStore()
	orders := memory.NewOrderRepository(events)

	catalog := service.NewCatalogService(products, categories, time.Second, time.Minute)
	h := NewHandler(
		catalog,
		service.NewCartService(catalog, service.MemorySessions(cart.NewMemorySessions())),
		service.NewCheckoutService(orders, nopPublisher{},
			checkout.NewThresholdPolicy(checkout.DefaultFreeThreshold, checkout.DefaultBaseFee),
			checkout.Merchant{Paybill: "247247", AccountName: "Tezzaz Hair & Beauty"},
		),
		service.NewTrackingService(orders, time.Second),
		service.NewOrderService(orders, events, nopPublisher{}),
		service.NewNewsletterService(memory.NewNewsletterRepository()),
		testAdminToken,
	)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	srv := httptest.NewServer(EnableCORS(mux))
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t       *testing.T
	base    string
	session string
	token   string
}

func (c *client) do(method, path string, body any, out any) *http.Response {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.session != "" {
		req.Header.Set(SessionHeader, c.session)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHandler_ProductsAndCategories(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}

	var active, all []entity.Product
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/products", nil, &active).StatusCode)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/products?active=false", nil, &all).StatusCode)
	assert.Len(t, all, len(active)+1)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/products?active=maybe", nil, nil).StatusCode)

	var categories []entity.Category
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/categories", nil, &categories).StatusCode)
	assert.Len(t, categories, 5)
}

func TestHandler_CartIssuesSession(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}

	var view cartView
	resp := c.do(http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: "prod-002", Quantity: 2}, &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c.session = resp.Header.Get(SessionHeader)
	require.NotEmpty(t, c.session)
	assert.Equal(t, 2, view.Count)
	assert.True(t, decimal.NewFromInt(2400).Equal(view.Total))

	c.do(http.MethodGet, "/api/cart", nil, &view)
	assert.Equal(t, 2, view.Count)

	c.do(http.MethodPut, "/api/cart/items/prod-002", UpdateCartItemRequest{Quantity: 0}, &view)
	assert.Empty(t, view.Lines)
}

func TestHandler_CartErrors(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL, session: "sess-1"}

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: "prod-404"}, nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: "prod-001", Quantity: -1}, nil).StatusCode)

	resp, err := http.Post(srv.URL+"/api/cart/items", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Wishlist(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL, session: "sess-1"}

	var toggled struct {
		Wishlisted bool     `json:"wishlisted"`
		Wishlist   []string `json:"wishlist"`
	}
	c.do(http.MethodPost, "/api/wishlist/prod-003", nil, &toggled)
	assert.True(t, toggled.Wishlisted)
	assert.Equal(t, []string{"prod-003"}, toggled.Wishlist)

	c.do(http.MethodPost, "/api/wishlist/prod-003", nil, &toggled)
	assert.False(t, toggled.Wishlisted)
	assert.Empty(t, toggled.Wishlist)
}

func TestHandler_CheckoutAndTrack(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL, session: "sess-1"}

	c.do(http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: "prod-001", Quantity: 1}, nil)

	var quote service.CheckoutQuote
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/checkout/quote", QuoteRequest{Zone: checkout.ZoneNairobiCBD}, &quote).StatusCode)
	assert.True(t, decimal.NewFromInt(1050).Equal(quote.Total))
	require.NotEmpty(t, quote.Payment.Reference)

	var fieldErrs errorBody
	resp := c.do(http.MethodPost, "/api/checkout", PlaceOrderRequest{DeliveryForm: checkout.DeliveryForm{Phone: "12345"}}, &fieldErrs)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, fieldErrs.Fields, checkout.FieldFullName)
	assert.Contains(t, fieldErrs.Fields, checkout.FieldPhone)
	assert.Contains(t, fieldErrs.Fields, checkout.FieldConfirmation)

	var order entity.Order
	resp = c.do(http.MethodPost, "/api/checkout", PlaceOrderRequest{
		DeliveryForm: checkout.DeliveryForm{
			FullName: "Wanjiru Kamau",
			Phone:    "+254712345678",
			Address:  "Moi Avenue",
			Zone:     checkout.ZoneNairobiCBD,
		},
		PaymentConfirmation: "QFT4XYZ Confirmed. Ksh1,050.00 sent",
		PaymentReference:    quote.Payment.Reference,
	}, &order)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, quote.Payment.Reference, order.Code)
	assert.Equal(t, entity.OrderStatusPending, order.Status)

	var view cartView
	c.do(http.MethodGet, "/api/cart", nil, &view)
	assert.Empty(t, view.Lines)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/checkout", PlaceOrderRequest{}, nil).StatusCode)

	var tracked map[string]any
	resp = c.do(http.MethodGet, "/api/orders/"+order.Code, nil, &tracked)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pending", tracked["status"])
	assert.NotContains(t, tracked, "customer")
	assert.NotContains(t, tracked, "payment_confirmation")

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/orders/TZ00000000", nil, nil).StatusCode)
}

func TestHandler_AdminStatusUpdates(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL, session: "sess-1"}

	c.do(http.MethodPost, "/api/cart/items", AddCartItemRequest{ProductID: "prod-001", Quantity: 1}, nil)
	var order entity.Order
	c.do(http.MethodPost, "/api/checkout", PlaceOrderRequest{
		DeliveryForm:        checkout.DeliveryForm{FullName: "Wanjiru Kamau", Phone: "0712345678", Address: "Moi Avenue"},
		PaymentConfirmation: "QFT4XYZ Confirmed",
	}, &order)
	require.NotEmpty(t, order.ID)

	path := "/api/admin/orders/" + order.ID + "/status"
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPatch, path, UpdateStatusRequest{Status: "confirmed"}, nil).StatusCode)

	c.token = "wrong"
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/admin/orders", nil, nil).StatusCode)

	c.token = testAdminToken
	var orders []entity.Order
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/admin/orders", nil, &orders).StatusCode)
	assert.Len(t, orders, 1)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/admin/orders?limit=1", nil, &orders).StatusCode)
	assert.Len(t, orders, 1)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/admin/orders?limit=ten", nil, nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/admin/orders?limit=-1", nil, nil).StatusCode)

	var updated entity.Order
	require.Equal(t, http.StatusOK, c.do(http.MethodPatch, path, UpdateStatusRequest{Status: "Confirmed"}, &updated).StatusCode)
	assert.Equal(t, entity.OrderStatusConfirmed, updated.Status)

	assert.Equal(t, http.StatusConflict, c.do(http.MethodPatch, path, UpdateStatusRequest{Status: "delivered"}, nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPatch, path, UpdateStatusRequest{Status: "shipped"}, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPatch, "/api/admin/orders/missing/status", UpdateStatusRequest{Status: "confirmed"}, nil).StatusCode)

	require.Equal(t, http.StatusOK, c.do(http.MethodPatch, path, UpdateStatusRequest{Status: "cancelled"}, nil).StatusCode)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPatch, path, UpdateStatusRequest{Status: "confirmed"}, nil).StatusCode)
}

func TestHandler_Newsletter(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}

	assert.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/newsletter", SubscribeRequest{Email: "achieng@example.com"}, nil).StatusCode)
	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/newsletter", SubscribeRequest{Email: "ACHIENG@example.com"}, nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/newsletter", SubscribeRequest{Email: "nope"}, nil).StatusCode)
}

func TestEnableCORS(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/cart", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), SessionHeader)
}
