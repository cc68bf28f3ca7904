package router_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showcase/internal/api/auth"
	"showcase/internal/api/cart"
	"showcase/internal/api/order"
	"showcase/internal/api/product"
	"showcase/internal/api/router"
	"showcase/internal/api/saas"
	"showcase/internal/api/task"
	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/cache"
	"showcase/internal/pkg/logger"
	"showcase/internal/pkg/token"
	"showcase/internal/service/authservice"
	"showcase/internal/service/saasservice"
	"showcase/internal/service/seedservice"
	"showcase/internal/service/taskservice"
)

// fakeApp implementa todos os contratos de serviço dos handlers.
type fakeApp struct {
	lastProductFilter domain.ProductFilter
	lastOrderFilter   domain.OrderFilter
	lastUpdate        domain.OrderUpdate
	lastUpdateID      string
	removed           string
	cleared           bool
	seeded            int
}

func (f *fakeApp) GetProducts(_ context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	f.lastProductFilter = filter
	return domain.ProductPage{Products: []domain.Product{{ID: "p1", Name: "Sofá"}}}, nil
}

func (f *fakeApp) GetProductByID(_ context.Context, id string) (domain.Product, error) {
	if id != "p1" {
		return domain.Product{}, apperror.NewNotFoundError("produto")
	}
	return domain.Product{ID: id}, nil
}

func (f *fakeApp) SeedCatalog(context.Context) (seedservice.CatalogResult, error) {
	f.seeded++
	return seedservice.CatalogResult{Message: "Database seeded successfully", Count: 8}, nil
}

func (f *fakeApp) SeedSaaS(context.Context) (seedservice.SaaSResult, error) {
	f.seeded++
	return seedservice.SaaSResult{Message: "Database seeded successfully", UsersCreated: 5, AnalyticsCreated: 31}, nil
}

func (f *fakeApp) GetCart(_ context.Context, user string) (domain.CartView, error) {
	if user == "" {
		return domain.CartView{}, apperror.NewValidationError("user")
	}
	return domain.EmptyCartView(user), nil
}

func (f *fakeApp) UpsertItem(_ context.Context, req domain.CartItemRequest) (domain.CartView, error) {
	return domain.CartView{User: req.User, TotalAmount: decimal.RequireFromString("180")}, nil
}

func (f *fakeApp) RemoveItem(_ context.Context, user, productID string) (domain.CartView, error) {
	f.removed = productID
	return domain.EmptyCartView(user), nil
}

func (f *fakeApp) ClearCart(_ context.Context, user string) (domain.CartView, error) {
	f.cleared = true
	return domain.EmptyCartView(user), nil
}

func (f *fakeApp) PlaceOrder(_ context.Context, req domain.PlaceOrderRequest) (domain.Order, error) {
	if req.User == "vazio" {
		return domain.Order{}, apperror.NewBusinessRuleError(apperror.RuleEmptyCart, "Carrinho vazio.")
	}
	return domain.Order{ID: "o1", UserID: req.User}, nil
}

func (f *fakeApp) ListOrders(_ context.Context, filter domain.OrderFilter) (domain.OrderPage, error) {
	f.lastOrderFilter = filter
	return domain.OrderPage{}, nil
}

func (f *fakeApp) GetOrder(_ context.Context, id string) (domain.Order, error) {
	return domain.Order{ID: id}, nil
}

func (f *fakeApp) UpdateOrder(_ context.Context, id string, update domain.OrderUpdate) (domain.Order, error) {
	f.lastUpdateID, f.lastUpdate = id, update
	if update.Empty() {
		return domain.Order{}, apperror.NewBusinessRuleError(apperror.RuleNoValidUpdates, "No valid updates")
	}
	return domain.Order{ID: id, Status: *update.Status}, nil
}

func (f *fakeApp) ListTasks(context.Context) ([]domain.Task, error) {
	return []domain.Task{{ID: "t1"}}, nil
}

func (f *fakeApp) GetTask(_ context.Context, id string) (domain.Task, error) {
	return domain.Task{ID: id}, nil
}

func (f *fakeApp) CreateTask(_ context.Context, in taskservice.TaskInput) (domain.Task, error) {
	return domain.Task{ID: "t2", Title: in.Title}, nil
}

func (f *fakeApp) UpdateTask(_ context.Context, id string, in taskservice.TaskInput) (domain.Task, error) {
	return domain.Task{ID: id, Title: in.Title}, nil
}

func (f *fakeApp) DeleteTask(_ context.Context, id string) error {
	if id == "ausente" {
		return apperror.NewNotFoundError("tarefa")
	}
	return nil
}

func (f *fakeApp) ListUsers(context.Context) ([]domain.User, error) {
	return []domain.User{{ID: "u1"}}, nil
}

func (f *fakeApp) CreateUser(_ context.Context, in saasservice.UserInput) (domain.User, error) {
	return domain.User{}, apperror.NewConflictError("e-mail duplicado")
}

func (f *fakeApp) GetAnalytics(_ context.Context, period string) (domain.AnalyticsReport, error) {
	return domain.AnalyticsReport{Analytics: []domain.Analytics{}}, nil
}

func (f *fakeApp) GetSummary(_ context.Context, period string) (domain.AnalyticsSummary, error) {
	return domain.AnalyticsSummary{TotalRevenue: decimal.NewFromInt(10)}, nil
}

func (f *fakeApp) RecordAnalytics(_ context.Context, in saasservice.AnalyticsInput) (domain.Analytics, error) {
	return domain.Analytics{ActiveUsers: in.ActiveUsers}, nil
}

func (f *fakeApp) Login(_ context.Context, req domain.LoginRequest) (authservice.LoginResponse, error) {
	return authservice.LoginResponse{Token: "jwt"}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newServer(t *testing.T, app *fakeApp, db router.Pinger) (http.Handler, *token.Service) {
	t.Helper()
	log := logger.Nop()
	tokens := token.NewService("segredo", time.Hour)
	h := router.NewRouter(router.Handlers{
		Auth:    auth.NewHandler(app, log),
		Product: product.NewHandler(app, app, log),
		Cart:    cart.NewHandler(app, log),
		Order:   order.NewHandler(app, log),
		Task:    task.NewHandler(app, log),
		SaaS:    saas.NewHandler(app, app, log),
	}, router.Options{
		TokenService:   tokens,
		Cache:          cache.NopClient{},
		DB:             db,
		RateLimit:      1000,
		RateLimitEvery: time.Minute,
	}, log)
	return h, tokens
}

func do(h http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPingAndHealth(t *testing.T) {
	h, _ := newServer(t, &fakeApp{}, fakePinger{})

	rec := do(h, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())

	rec = do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down, _ := newServer(t, &fakeApp{}, fakePinger{err: errors.New("conexão recusada")})
	assert.Equal(t, http.StatusServiceUnavailable, do(down, http.MethodGet, "/healthz", "").Code)
}

func TestProducts_QueryParsing(t *testing.T) {
	app := &fakeApp{}
	h, _ := newServer(t, app, fakePinger{})

	rec := do(h, http.MethodGet, "/v1/products?category=furniture&featured=true&page=2&limit=abc", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ProductFilter{Category: domain.CategoryFurniture, Featured: true, Page: 2}, app.lastProductFilter)

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/v1/products/zzz", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/v1/products/p1", "").Code)
}

func TestSeedRoutes_RequireAdmin(t *testing.T) {
	app := &fakeApp{}
	h, tokens := newServer(t, app, fakePinger{})

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/v1/products/seed", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/v1/saas/seed", "").Code)
	assert.Zero(t, app.seeded)

	jwt, err := tokens.GenerateToken("admin", string(domain.RoleAdmin))
	require.NoError(t, err)

	rec := do(h, http.MethodPost, "/v1/products/seed", "", "Authorization", "Bearer "+jwt)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Database seeded successfully","count":8}`, rec.Body.String())

	rec = do(h, http.MethodPost, "/v1/saas/seed", "", "Authorization", "Bearer "+jwt)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, app.seeded)
}

func TestCartRoutes(t *testing.T) {
	app := &fakeApp{}
	h, _ := newServer(t, app, fakePinger{})

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/v1/cart", "").Code)

	rec := do(h, http.MethodPost, "/v1/cart", `{"user":"ana","productId":"p1","quantity":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalAmount":180`)

	do(h, http.MethodDelete, "/v1/cart?user=ana&productId=p1", "")
	assert.Equal(t, "p1", app.removed)
	assert.False(t, app.cleared)

	do(h, http.MethodDelete, "/v1/cart?user=ana", "")
	assert.True(t, app.cleared)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/v1/cart", `{`).Code)
}

func TestOrderRoutes(t *testing.T) {
	app := &fakeApp{}
	h, _ := newServer(t, app, fakePinger{})

	rec := do(h, http.MethodPost, "/v1/orders", `{"user":"ana","paymentMethod":"pix"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(h, http.MethodPost, "/v1/orders", `{"user":"vazio"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperror.RuleEmptyCart, body.Category)

	do(h, http.MethodGet, "/v1/orders?user=ana&status=shipped&page=3&limit=5", "")
	assert.Equal(t, domain.OrderFilter{UserID: "ana", Status: domain.OrderShipped, Page: 3, Limit: 5}, app.lastOrderFilter)

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/v1/orders/o9", "").Code)
}

func TestUpdateOrder_IgnoresUnknownFields(t *testing.T) {
	app := &fakeApp{}
	h, _ := newServer(t, app, fakePinger{})

	rec := do(h, http.MethodPut, "/v1/orders?id=o1", `{"foo":"bar"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), apperror.RuleNoValidUpdates)
	assert.True(t, app.lastUpdate.Empty())

	rec = do(h, http.MethodPut, "/v1/orders?id=o1", `{"status":"processing","totalAmount":1}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "o1", app.lastUpdateID)
	require.NotNil(t, app.lastUpdate.Status)
	assert.Equal(t, domain.OrderProcessing, *app.lastUpdate.Status)
	assert.Nil(t, app.lastUpdate.PaymentStatus)
}

func TestTaskRoutes(t *testing.T) {
	h, _ := newServer(t, &fakeApp{}, fakePinger{})

	rec := do(h, http.MethodPost, "/v1/tasks", `{"title":"Nova"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(h, http.MethodPut, "/v1/tasks/t1", `{"title":"Editada"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Editada"`)

	rec = do(h, http.MethodDelete, "/v1/tasks/t1", "")
	assert.JSONEq(t, `{"message":"Task deleted successfully"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodDelete, "/v1/tasks/ausente", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPatch, "/v1/tasks/t1", "").Code)
}

func TestSaaSRoutes(t *testing.T) {
	h, _ := newServer(t, &fakeApp{}, fakePinger{})

	assert.Equal(t, http.StatusConflict, do(h, http.MethodPost, "/v1/saas/users", `{"name":"Ana","email":"a@b.c"}`).Code)

	rec := do(h, http.MethodGet, "/v1/saas/summary?period=30d", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalRevenue":10`)

	rec = do(h, http.MethodPost, "/v1/saas/analytics", `{"activeUsers":7}`)
	assert.Contains(t, rec.Body.String(), `"activeUsers":7`)
}

func TestLoginRoute(t *testing.T) {
	h, _ := newServer(t, &fakeApp{}, fakePinger{})

	rec := do(h, http.MethodPost, "/v1/auth/login", `{"username":"admin","password":"x"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"token":"jwt"}`, rec.Body.String())
}
