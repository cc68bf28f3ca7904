package product

import (
	"context"
	"net/http"

	"showcase/internal/api/response"
	"showcase/internal/domain"
	"showcase/internal/pkg/logger"
	"showcase/internal/service/seedservice"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	GetProducts(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error)
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
}

// CatalogSeeder recarrega o catálogo de demonstração.
type CatalogSeeder interface {
	SeedCatalog(ctx context.Context) (seedservice.CatalogResult, error)
}

// Handler agrupa os handlers do catálogo.
type Handler struct {
	Service ProductService
	Seeder  CatalogSeeder
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, seeder CatalogSeeder, log logger.Logger) *Handler {
	return &Handler{Service: svc, Seeder: seeder, Logger: log}
}

// ListProductsHandler lida com GET /v1/products.
//
//	@Summary		Lista o catálogo
//	@Tags			products
//	@Produce		json
//	@Param			category	query		string	false	"electronics, furniture, clothing ou books"
//	@Param			featured	query		bool	false	"apenas destaques"
//	@Param			page		query		int		false	"página (padrão 1)"
//	@Param			limit		query		int		false	"itens por página (padrão 10, máx. 100)"
//	@Success		200			{object}	domain.ProductPage
//	@Failure		400			{object}	domain.ErrorResponse
//	@Router			/v1/products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		Category: domain.Category(q.Get("category")),
		Featured: q.Get("featured") == "true",
		Page:     response.QueryInt(r, "page"),
		Limit:    response.QueryInt(r, "limit"),
	}

	page, err := h.Service.GetProducts(r.Context(), filter)
	response.Handle(w, r, h.Logger, page, err, http.StatusOK)
}

// GetProductByIDHandler lida com GET /v1/products/{id}.
//
//	@Summary		Busca um produto
//	@Tags			products
//	@Produce		json
//	@Param			id	path		string	true	"ID do produto"
//	@Success		200	{object}	domain.Product
//	@Failure		404	{object}	domain.ErrorResponse
//	@Router			/v1/products/{id} [get]
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	product, err := h.Service.GetProductByID(r.Context(), r.PathValue("id"))
	response.Handle(w, r, h.Logger, product, err, http.StatusOK)
}

// SeedHandler lida com POST /v1/products/seed (apenas admin).
// Apaga carrinhos, pedidos e produtos antes de inserir o catálogo.
//
//	@Summary		Recarrega o catálogo de demonstração
//	@Tags			products
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	seedservice.CatalogResult
//	@Failure		401	{object}	domain.ErrorResponse
//	@Failure		403	{object}	domain.ErrorResponse
//	@Router			/v1/products/seed [post]
func (h *Handler) SeedHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.Seeder.SeedCatalog(r.Context())
	response.Handle(w, r, h.Logger, result, err, http.StatusOK)
}
