package auth

import (
	"context"
	"net/http"

	"showcase/internal/api/response"
	"showcase/internal/domain"
	"showcase/internal/pkg/logger"
	"showcase/internal/service/authservice"
)

// AuthService define o contrato que o Handler espera da camada de Serviço.
type AuthService interface {
	Login(ctx context.Context, req domain.LoginRequest) (authservice.LoginResponse, error)
}

type Handler struct {
	Service AuthService
	Logger  logger.Logger
}

func NewHandler(svc AuthService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// LoginHandler lida com POST /v1/auth/login e devolve o JWT do operador.
//
//	@Summary	Login do operador
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		credentials	body		domain.LoginRequest	true	"usuário e senha"
//	@Success	200			{object}	authservice.LoginResponse
//	@Failure	401			{object}	domain.ErrorResponse
//	@Router		/v1/auth/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	res, err := h.Service.Login(r.Context(), req)
	response.Handle(w, r, h.Logger, res, err, http.StatusOK)
}
