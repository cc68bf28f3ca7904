package router

import (
	"context"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"showcase/docs"
	"showcase/internal/api/auth"
	"showcase/internal/api/cart"
	"showcase/internal/api/order"
	"showcase/internal/api/product"
	"showcase/internal/api/response"
	"showcase/internal/api/saas"
	"showcase/internal/api/task"
	"showcase/internal/pkg/cache"
	"showcase/internal/pkg/logger"
	"showcase/internal/pkg/middleware"
)

// healthTimeout limita o ping ao banco feito por /healthz.
const healthTimeout = 2 * time.Second

// Pinger verifica se o banco responde (database.Lazy).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Auth    *auth.Handler
	Product *product.Handler
	Cart    *cart.Handler
	Order   *order.Handler
	Task    *task.Handler
	SaaS    *saas.Handler
}

// Options configura os middlewares globais.
type Options struct {
	TokenService   middleware.TokenService
	Cache          cache.Client
	DB             Pinger
	RateLimit      int
	RateLimitEvery time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, opts Options, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	admin := middleware.RequireAdmin(opts.TokenService, log)

	// --- 1. Health Check ---
	mux.HandleFunc("GET /ping", PingHandler)
	mux.HandleFunc("GET /healthz", HealthHandler(opts.DB, log))

	// --- 2. Documentação ---
	docs.SwaggerInfo.BasePath = "/"
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// --- 3. Autenticação do operador ---
	mux.HandleFunc("POST /v1/auth/login", h.Auth.LoginHandler)

	// --- 4. Loja: catálogo, carrinho e pedidos ---
	mux.HandleFunc("GET /v1/products", h.Product.ListProductsHandler)
	mux.HandleFunc("GET /v1/products/{id}", h.Product.GetProductByIDHandler)
	mux.HandleFunc("POST /v1/products/seed", admin(h.Product.SeedHandler))

	mux.HandleFunc("GET /v1/cart", h.Cart.GetCartHandler)
	mux.HandleFunc("POST /v1/cart", h.Cart.UpsertItemHandler)
	mux.HandleFunc("DELETE /v1/cart", h.Cart.DeleteHandler)

	mux.HandleFunc("GET /v1/orders", h.Order.ListOrdersHandler)
	mux.HandleFunc("POST /v1/orders", h.Order.PlaceOrderHandler)
	mux.HandleFunc("PUT /v1/orders", h.Order.UpdateOrderHandler)
	mux.HandleFunc("GET /v1/orders/{id}", h.Order.GetOrderHandler)

	// --- 5. Tarefas ---
	mux.HandleFunc("GET /v1/tasks", h.Task.ListTasksHandler)
	mux.HandleFunc("POST /v1/tasks", h.Task.CreateTaskHandler)
	mux.HandleFunc("GET /v1/tasks/{id}", h.Task.GetTaskHandler)
	mux.HandleFunc("PUT /v1/tasks/{id}", h.Task.UpdateTaskHandler)
	mux.HandleFunc("DELETE /v1/tasks/{id}", h.Task.DeleteTaskHandler)

	// --- 6. Dashboard SaaS ---
	mux.HandleFunc("GET /v1/saas/users", h.SaaS.ListUsersHandler)
	mux.HandleFunc("POST /v1/saas/users", h.SaaS.CreateUserHandler)
	mux.HandleFunc("GET /v1/saas/analytics", h.SaaS.GetAnalyticsHandler)
	mux.HandleFunc("POST /v1/saas/analytics", h.SaaS.RecordAnalyticsHandler)
	mux.HandleFunc("GET /v1/saas/summary", h.SaaS.GetSummaryHandler)
	mux.HandleFunc("POST /v1/saas/seed", admin(h.SaaS.SeedHandler))

	// --- 7. Middlewares Globais ---
	limited := middleware.RateLimiter(opts.Cache, opts.RateLimit, opts.RateLimitEvery, log)(mux)
	return middleware.RequestLogger(log)(limited)
}

// PingHandler responde "pong" sem tocar em dependências.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// HealthHandler responde 200 quando o banco atende o ping e 503 caso contrário.
// O pool é aberto sob demanda aqui se ainda não existir.
func HealthHandler(db Pinger, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.Warn("Health check falhou.", map[string]interface{}{"error": err.Error()})
			response.JSON(w, log, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		response.JSON(w, log, http.StatusOK, map[string]string{"status": "ok"})
	}
}
