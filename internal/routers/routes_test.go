package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"citystore-api-io/api/config"
	"citystore-api-io/api/internal/auth"
	"citystore-api-io/api/internal/container"
	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/store"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "routes-secret"
	testSession = "session-0001"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Count   int               `json:"count"`
	Total   int               `json:"total"`
	Page    int               `json:"page"`
	Pages   int               `json:"pages"`
	Errors  map[string]string `json:"errors"`
	Data    json.RawMessage   `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	deps   container.Dependencies
}

func testConfig() *config.Config {
	return &config.Config{
		Store:           config.StoreMemory,
		JWTSecret:       testSecret,
		RequestTimeout:  5 * time.Second,
		RateLimit:       1000,
		RateLimitWindow: time.Minute,
		AllowedOrigins:  []string{"*"},
	}
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	seed, err := store.DefaultCatalog()
	require.NoError(t, err)

	deps := container.MemoryDependencies(seed)
	return &testServer{
		t:      t,
		router: InitRoute(container.NewServiceContainer(testConfig(), deps)),
		deps:   deps,
	}
}

func (s *testServer) token(id string, role models.Role) string {
	tok, _, err := auth.GenerateJWT(testSecret, time.Hour, auth.JWTClaim{
		Id:    id,
		Name:  "Layla Hassan",
		Email: id + "@example.com",
		Role:  role,
	})
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path string, body any, token string) (int, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestStatusRoutes(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, _ = s.do(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestProductListing(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/api/products?sort=price-high&limit=2", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, env.Count)
	assert.Equal(t, 3, env.Total)
	assert.Equal(t, 1, env.Page)
	assert.Equal(t, 2, env.Pages)
	products := decode[[]models.Product](t, env.Data)
	assert.Equal(t, "3", products[0].Id)

	code, env = s.do(http.MethodGet, "/api/products?limit=500", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, env.Count)
	assert.Equal(t, 1, env.Pages)

	code, env = s.do(http.MethodGet, "/api/products?page=9", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, env.Count)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, env = s.do(http.MethodGet, "/api/products?minPrice=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "minPrice")

	code, env = s.do(http.MethodGet, "/api/products/featured", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, env.Count, len(decode[[]models.Product](t, env.Data)))
}

func TestGetProduct(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/api/products/1", nil, "")
	require.Equal(t, http.StatusOK, code)
	p := decode[models.Product](t, env.Data)
	assert.Equal(t, 45, p.TotalStock)

	code, _ = s.do(http.MethodGet, "/api/products/"+p.Slug, nil, "")
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/api/products/404", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Product not found", env.Message)
}

func TestAdminProductRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.token("admin-1", models.RoleAdmin)
	customer := s.token("cust-1", models.RoleCustomer)
	price := 19.5

	req := models.ProductRequest{
		Name:        "Wool Scarf",
		Description: "Warm",
		Price:       &price,
		Category:    models.CategoryAccessories,
		Brand:       "CityStore",
		Sizes:       []models.SizeStock{{Size: models.SizeM, Stock: 5}},
	}

	code, _ := s.do(http.MethodPost, "/api/products", req, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(http.MethodPost, "/api/products", req, customer)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := s.do(http.MethodPost, "/api/products", req, admin)
	require.Equal(t, http.StatusCreated, code)
	created := decode[models.Product](t, env.Data)
	assert.Equal(t, "wool-scarf", created.Slug)
	assert.Equal(t, 5, created.TotalStock)

	code, env = s.do(http.MethodPut, "/api/products/"+created.Id, map[string]any{"sizes": []any{}}, admin)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, decode[models.Product](t, env.Data).TotalStock)

	code, env = s.do(http.MethodPost, "/api/products", models.ProductRequest{}, admin)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Contains(t, env.Errors, "name")
	assert.Equal(t, models.MsgRequired, env.Errors["price"])

	code, env = s.do(http.MethodPost, "/api/products", map[string]any{
		"name": "No Price", "description": "Missing", "category": "bags", "brand": "CityStore",
	}, admin)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "price")

	code, env = s.do(http.MethodDelete, "/api/products/"+created.Id, nil, admin)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Product deleted successfully", env.Message)

	code, _ = s.do(http.MethodDelete, "/api/products/"+created.Id, nil, admin)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(http.MethodPut, "/api/products/"+created.Id, map[string]any{"price": 1}, admin)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProductReview(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(http.MethodPost, "/api/products/1/reviews", models.ReviewRequest{Rating: 5}, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(http.MethodPost, "/api/products/1/reviews", models.ReviewRequest{Rating: 3}, s.token("cust-1", models.RoleCustomer))
	require.Equal(t, http.StatusCreated, code)
	p := decode[models.Product](t, env.Data)
	assert.Equal(t, models.Rating{Average: 4, Count: 3}, p.Rating)
}

func TestImageUploadRequiresFile(t *testing.T) {
	s := newTestServer(t)

	body := &bytes.Buffer{}
	req := httptest.NewRequest(http.MethodPost, "/api/products/1/images", body)
	req.Header.Set("Authorization", "Bearer "+s.token("admin-1", models.RoleAdmin))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartSession(t *testing.T) {
	s := newTestServer(t)
	base := "/api/carts/" + testSession

	code, env := s.do(http.MethodPost, "/api/carts", nil, "")
	require.Equal(t, http.StatusCreated, code)
	assert.Len(t, decode[map[string]string](t, env.Data)["session"], 32)

	code, _ = s.do(http.MethodGet, "/api/carts/bad!", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)

	item := models.CartItem{Id: "1", Name: "Tee", Price: 29.99, Size: "M", Color: "White", Quantity: 2}
	s.do(http.MethodPost, base+"/items", item, "")
	item.Quantity = 1
	code, env = s.do(http.MethodPost, base+"/items", item, "")
	require.Equal(t, http.StatusOK, code)

	type cartView struct {
		Items      []models.CartItem `json:"items"`
		TotalItems int               `json:"totalItems"`
		TotalPrice float64           `json:"totalPrice"`
	}
	view := decode[cartView](t, env.Data)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.TotalItems)
	assert.InDelta(t, 89.97, view.TotalPrice, 0.001)

	code, env = s.do(http.MethodPut, base+"/items", models.CartQuantityRequest{Id: "1", Size: "M", Color: "White", Quantity: 0}, "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[cartView](t, env.Data).Items)

	code, env = s.do(http.MethodPost, base+"/items", models.CartItem{Id: "1", Quantity: 0}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "quantity")

	code, _ = s.do(http.MethodPut, base+"/payment-method", map[string]string{"method": "cash"}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(http.MethodPut, base+"/payment-method", map[string]string{"method": "paypal"}, "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodDelete, base+"/items?id=1&size=M&color=White", nil, "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodDelete, base, nil, "")
	assert.Equal(t, http.StatusOK, code)
}

type checkoutView struct {
	Step    string              `json:"step"`
	Form    models.CheckoutForm `json:"form"`
	Errors  map[string]string   `json:"errors"`
	OrderId string              `json:"orderId"`
}

func shipping() models.ShippingInfo {
	return models.ShippingInfo{
		FirstName: "Layla", LastName: "Hassan", Email: "layla@example.com", Phone: "0100",
		Address: "12 Tahrir Sq", City: "Cairo", State: "Cairo", ZipCode: "11511", Country: models.DefaultCountry,
	}
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	base := "/api/checkout/" + testSession
	customer := s.token("cust-7", models.RoleCustomer)

	s.do(http.MethodPost, "/api/carts/"+testSession+"/items", models.CartItem{Id: "1", Name: "Tee", Price: 20, Quantity: 2}, "")

	code, _ := s.do(http.MethodGet, base, nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(http.MethodGet, base, nil, customer)
	require.Equal(t, http.StatusOK, code)
	view := decode[checkoutView](t, env.Data)
	assert.Equal(t, "shipping", view.Step)
	assert.Equal(t, "Layla", view.Form.Shipping.FirstName)
	assert.Equal(t, "cust-7@example.com", view.Form.Shipping.Email)

	code, env = s.do(http.MethodPost, base+"/next", nil, customer)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, models.MsgRequired, env.Errors["shipping.address"])

	code, env = s.do(http.MethodPost, base+"/place", nil, customer)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "step")

	s.do(http.MethodPut, base+"/shipping", shipping(), customer)
	code, env = s.do(http.MethodPost, base+"/next", nil, customer)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "payment", decode[checkoutView](t, env.Data).Step)

	s.do(http.MethodPut, base+"/payment", models.PaymentInfo{Method: models.PaymentPaypal, PaypalEmail: "pay@example.com"}, customer)
	code, env = s.do(http.MethodPost, base+"/next", nil, customer)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "review", decode[checkoutView](t, env.Data).Step)

	code, env = s.do(http.MethodPost, base+"/back", nil, customer)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "payment", decode[checkoutView](t, env.Data).Step)
	s.do(http.MethodPost, base+"/next", nil, customer)

	code, _ = s.do(http.MethodPost, base+"/place", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(http.MethodPost, base+"/place", nil, customer)
	require.Equal(t, http.StatusCreated, code, env.Message)
	placed := decode[struct {
		Order    models.Order `json:"order"`
		Checkout checkoutView `json:"checkout"`
	}](t, env.Data)
	assert.Equal(t, 49.19, placed.Order.Total)
	assert.Equal(t, "cust-7", placed.Order.UserId)
	assert.Equal(t, "submitted", placed.Checkout.Step)
	assert.Equal(t, placed.Order.Id, placed.Checkout.OrderId)

	code, env = s.do(http.MethodGet, "/api/carts/"+testSession, nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, decode[struct {
		TotalItems int `json:"totalItems"`
	}](t, env.Data).TotalItems)

	code, _ = s.do(http.MethodGet, "/api/orders/"+placed.Order.Id, nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(http.MethodGet, "/api/orders/"+placed.Order.Id, nil, s.token("cust-8", models.RoleCustomer))
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(http.MethodGet, "/api/orders/"+placed.Order.Id, nil, customer)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/api/orders/mine", nil, customer)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Count)

	code, env = s.do(http.MethodDelete, base, nil, customer)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "shipping", decode[checkoutView](t, env.Data).Step)
}

type failingOrders struct {
	store.OrderStore
}

func (failingOrders) Create(context.Context, models.Order) error {
	return errors.New("database unavailable")
}

func TestPlaceOrderFailureKeepsReview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	seed, err := store.DefaultCatalog()
	require.NoError(t, err)
	deps := container.MemoryDependencies(seed)
	deps.Orders = failingOrders{OrderStore: deps.Orders}
	s := &testServer{t: t, router: InitRoute(container.NewServiceContainer(testConfig(), deps)), deps: deps}
	base := "/api/checkout/" + testSession
	customer := s.token("cust-3", models.RoleCustomer)

	s.do(http.MethodPost, "/api/carts/"+testSession+"/items", models.CartItem{Id: "1", Price: 20, Quantity: 1}, "")
	s.do(http.MethodPut, base+"/shipping", shipping(), customer)
	s.do(http.MethodPost, base+"/next", nil, customer)
	s.do(http.MethodPut, base+"/payment", models.PaymentInfo{Method: models.PaymentVodafoneCash, VodafoneCashNumber: "01012345678"}, customer)
	s.do(http.MethodPost, base+"/next", nil, customer)

	code, env := s.do(http.MethodPost, base+"/place", nil, customer)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "Failed to place order. Please try again.", env.Message)

	code, env = s.do(http.MethodGet, base, nil, customer)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "review", decode[checkoutView](t, env.Data).Step)

	code, env = s.do(http.MethodGet, "/api/carts/"+testSession, nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, decode[struct {
		TotalItems int `json:"totalItems"`
	}](t, env.Data).TotalItems)
}

func TestOrderRoutes(t *testing.T) {
	s := newTestServer(t)
	customer := s.token("cust-1", models.RoleCustomer)
	admin := s.token("admin-1", models.RoleAdmin)

	req := models.OrderRequest{
		Items:    []models.CartItem{{Id: "2", Name: "Dress", Price: 50, Quantity: 1}},
		Shipping: shipping(),
		Payment:  models.OrderPayment{Method: models.PaymentCreditCard},
	}
	code, _ := s.do(http.MethodPost, "/api/orders", req, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(http.MethodPost, "/api/orders", req, customer)
	require.Equal(t, http.StatusCreated, code)
	order := decode[models.Order](t, env.Data)
	assert.Equal(t, "cust-1", order.UserId)
	assert.Equal(t, 0.0, order.ShippingFee)
	assert.Equal(t, 54.0, order.Total)

	code, _ = s.do(http.MethodGet, "/api/orders/"+order.Id, nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(http.MethodGet, "/api/orders/"+order.Id, nil, s.token("cust-2", models.RoleCustomer))
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(http.MethodGet, "/api/orders/"+order.Id, nil, customer)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/orders/"+order.Id, nil, admin)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/orders", nil, customer)
	assert.Equal(t, http.StatusForbidden, code)
	code, env = s.do(http.MethodGet, "/api/orders", nil, admin)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Count)

	req.Items = nil
	code, env = s.do(http.MethodPost, "/api/orders", req, customer)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "items")
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	tok := s.token("cust-1", models.RoleCustomer)

	code, _ := s.do(http.MethodGet, "/api/auth/me", nil, tok)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPost, "/api/auth/logout", nil, tok)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/auth/me", nil, tok)
	assert.Equal(t, http.StatusUnauthorized, code)
}
