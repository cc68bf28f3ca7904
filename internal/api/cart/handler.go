package cart

import (
	"context"
	"net/http"

	"showcase/internal/api/response"
	"showcase/internal/domain"
	"showcase/internal/pkg/logger"
)

// CartService define o contrato que o Handler espera da camada de Serviço.
type CartService interface {
	GetCart(ctx context.Context, user string) (domain.CartView, error)
	UpsertItem(ctx context.Context, req domain.CartItemRequest) (domain.CartView, error)
	RemoveItem(ctx context.Context, user, productID string) (domain.CartView, error)
	ClearCart(ctx context.Context, user string) (domain.CartView, error)
}

type Handler struct {
	Service CartService
	Logger  logger.Logger
}

func NewHandler(svc CartService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// GetCartHandler lida com GET /v1/cart?user=.
//
//	@Summary		Carrinho do usuário
//	@Tags			cart
//	@Produce		json
//	@Param			user	query		string	true	"identificador do usuário"
//	@Success		200		{object}	domain.CartView
//	@Failure		400		{object}	domain.ErrorResponse
//	@Router			/v1/cart [get]
func (h *Handler) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.GetCart(r.Context(), r.URL.Query().Get("user"))
	response.Handle(w, r, h.Logger, view, err, http.StatusOK)
}

// UpsertItemHandler lida com POST /v1/cart: adiciona o produto ou substitui a quantidade.
//
//	@Summary		Adiciona ou atualiza um item
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		domain.CartItemRequest	true	"item"
//	@Success		200		{object}	domain.CartView
//	@Failure		400		{object}	domain.ErrorResponse
//	@Failure		404		{object}	domain.ErrorResponse
//	@Router			/v1/cart [post]
func (h *Handler) UpsertItemHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CartItemRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	view, err := h.Service.UpsertItem(r.Context(), req)
	response.Handle(w, r, h.Logger, view, err, http.StatusOK)
}

// DeleteHandler lida com DELETE /v1/cart?user=&productId=.
// Sem productId o carrinho inteiro é esvaziado.
//
//	@Summary		Remove um item ou esvazia o carrinho
//	@Tags			cart
//	@Produce		json
//	@Param			user		query		string	true	"identificador do usuário"
//	@Param			productId	query		string	false	"produto a remover"
//	@Success		200			{object}	domain.CartView
//	@Failure		404			{object}	domain.ErrorResponse
//	@Router			/v1/cart [delete]
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	user, productID := q.Get("user"), q.Get("productId")

	var (
		view domain.CartView
		err  error
	)
	if productID == "" {
		view, err = h.Service.ClearCart(r.Context(), user)
	} else {
		view, err = h.Service.RemoveItem(r.Context(), user, productID)
	}
	response.Handle(w, r, h.Logger, view, err, http.StatusOK)
}
