package order

import (
	"context"
	"net/http"

	"showcase/internal/api/response"
	"showcase/internal/domain"
	"showcase/internal/pkg/logger"
)

// OrderService define o contrato que o Handler espera da camada de Serviço.
type OrderService interface {
	PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) (domain.OrderPage, error)
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	UpdateOrder(ctx context.Context, id string, update domain.OrderUpdate) (domain.Order, error)
}

type Handler struct {
	Service OrderService
	Logger  logger.Logger
}

func NewHandler(svc OrderService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// ListOrdersHandler lida com GET /v1/orders.
//
//	@Summary		Pedidos do usuário, mais recentes primeiro
//	@Tags			orders
//	@Produce		json
//	@Param			user	query		string	true	"identificador do usuário"
//	@Param			status	query		string	false	"filtro de status"
//	@Param			page	query		int		false	"página (padrão 1)"
//	@Param			limit	query		int		false	"itens por página (padrão 10)"
//	@Success		200		{object}	domain.OrderPage
//	@Failure		400		{object}	domain.ErrorResponse
//	@Router			/v1/orders [get]
func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.Service.ListOrders(r.Context(), domain.OrderFilter{
		UserID: q.Get("user"),
		Status: domain.OrderStatus(q.Get("status")),
		Page:   response.QueryInt(r, "page"),
		Limit:  response.QueryInt(r, "limit"),
	})
	response.Handle(w, r, h.Logger, page, err, http.StatusOK)
}

// GetOrderHandler lida com GET /v1/orders/{id}.
//
//	@Summary		Busca um pedido
//	@Tags			orders
//	@Produce		json
//	@Param			id	path		string	true	"ID do pedido"
//	@Success		200	{object}	domain.Order
//	@Failure		404	{object}	domain.ErrorResponse
//	@Router			/v1/orders/{id} [get]
func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	order, err := h.Service.GetOrder(r.Context(), r.PathValue("id"))
	response.Handle(w, r, h.Logger, order, err, http.StatusOK)
}

// PlaceOrderHandler lida com POST /v1/orders: converte o carrinho em pedido.
//
//	@Summary		Checkout do carrinho
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			order	body		domain.PlaceOrderRequest	true	"dados do checkout"
//	@Success		201		{object}	domain.Order
//	@Failure		400		{object}	domain.ErrorResponse
//	@Failure		404		{object}	domain.ErrorResponse
//	@Router			/v1/orders [post]
func (h *Handler) PlaceOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.PlaceOrderRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	order, err := h.Service.PlaceOrder(r.Context(), req)
	response.Handle(w, r, h.Logger, order, err, http.StatusCreated)
}

// UpdateOrderHandler lida com PUT /v1/orders?id=.
// Só status, paymentStatus e trackingNumber são considerados; outros campos são ignorados.
//
//	@Summary		Atualiza status, pagamento ou rastreio
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			id		query		string				true	"ID do pedido"
//	@Param			update	body		domain.OrderUpdate	true	"campos permitidos"
//	@Success		200		{object}	domain.Order
//	@Failure		400		{object}	domain.ErrorResponse
//	@Failure		404		{object}	domain.ErrorResponse
//	@Router			/v1/orders [put]
func (h *Handler) UpdateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var update domain.OrderUpdate
	if err := response.DecodeJSON(r, &update); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	order, err := h.Service.UpdateOrder(r.Context(), r.URL.Query().Get("id"), update)
	response.Handle(w, r, h.Logger, order, err, http.StatusOK)
}
