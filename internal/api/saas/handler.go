package saas

import (
	"context"
	"net/http"

	"showcase/internal/api/response"
	"showcase/internal/domain"
	"showcase/internal/pkg/logger"
	"showcase/internal/service/saasservice"
	"showcase/internal/service/seedservice"
)

// SaaSService define o contrato que o Handler espera da camada de Serviço.
type SaaSService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, in saasservice.UserInput) (domain.User, error)
	GetAnalytics(ctx context.Context, rawPeriod string) (domain.AnalyticsReport, error)
	GetSummary(ctx context.Context, rawPeriod string) (domain.AnalyticsSummary, error)
	RecordAnalytics(ctx context.Context, in saasservice.AnalyticsInput) (domain.Analytics, error)
}

// SaaSSeeder recarrega usuários e analytics de demonstração.
type SaaSSeeder interface {
	SeedSaaS(ctx context.Context) (seedservice.SaaSResult, error)
}

type Handler struct {
	Service SaaSService
	Seeder  SaaSSeeder
	Logger  logger.Logger
}

func NewHandler(svc SaaSService, seeder SaaSSeeder, log logger.Logger) *Handler {
	return &Handler{Service: svc, Seeder: seeder, Logger: log}
}

// ListUsersHandler lida com GET /v1/saas/users.
//
//	@Summary	Usuários mais recentes
//	@Tags		saas
//	@Produce	json
//	@Success	200	{array}	domain.User
//	@Router		/v1/saas/users [get]
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	response.Handle(w, r, h.Logger, users, err, http.StatusOK)
}

// CreateUserHandler lida com POST /v1/saas/users.
//
//	@Summary	Cadastra um usuário
//	@Tags		saas
//	@Accept		json
//	@Produce	json
//	@Param		user	body		saasservice.UserInput	true	"usuário"
//	@Success	201		{object}	domain.User
//	@Failure	400		{object}	domain.ErrorResponse
//	@Failure	409		{object}	domain.ErrorResponse
//	@Router		/v1/saas/users [post]
func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var in saasservice.UserInput
	if err := response.DecodeJSON(r, &in); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	user, err := h.Service.CreateUser(r.Context(), in)
	response.Handle(w, r, h.Logger, user, err, http.StatusCreated)
}

// GetAnalyticsHandler lida com GET /v1/saas/analytics?period=.
//
//	@Summary	Linhas diárias e resumo do período
//	@Tags		saas
//	@Produce	json
//	@Param		period	query		string	false	"7d (padrão), 30d ou 90d"
//	@Success	200		{object}	domain.AnalyticsReport
//	@Router		/v1/saas/analytics [get]
func (h *Handler) GetAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.GetAnalytics(r.Context(), r.URL.Query().Get("period"))
	response.Handle(w, r, h.Logger, report, err, http.StatusOK)
}

// RecordAnalyticsHandler lida com POST /v1/saas/analytics: grava as métricas de hoje.
//
//	@Summary	Grava as métricas do dia
//	@Tags		saas
//	@Accept		json
//	@Produce	json
//	@Param		analytics	body		saasservice.AnalyticsInput	true	"métricas"
//	@Success	200			{object}	domain.Analytics
//	@Failure	400			{object}	domain.ErrorResponse
//	@Router		/v1/saas/analytics [post]
func (h *Handler) RecordAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	var in saasservice.AnalyticsInput
	if err := response.DecodeJSON(r, &in); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	row, err := h.Service.RecordAnalytics(r.Context(), in)
	response.Handle(w, r, h.Logger, row, err, http.StatusOK)
}

// GetSummaryHandler lida com GET /v1/saas/summary?period=.
//
//	@Summary	Resumo do período
//	@Tags		saas
//	@Produce	json
//	@Param		period	query		string	false	"7d (padrão), 30d ou 90d"
//	@Success	200		{object}	domain.AnalyticsSummary
//	@Router		/v1/saas/summary [get]
func (h *Handler) GetSummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.GetSummary(r.Context(), r.URL.Query().Get("period"))
	response.Handle(w, r, h.Logger, summary, err, http.StatusOK)
}

// SeedHandler lida com POST /v1/saas/seed (apenas admin).
//
//	@Summary	Recarrega usuários e 31 dias de analytics
//	@Tags		saas
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	seedservice.SaaSResult
//	@Failure	401	{object}	domain.ErrorResponse
//	@Router		/v1/saas/seed [post]
func (h *Handler) SeedHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.Seeder.SeedSaaS(r.Context())
	response.Handle(w, r, h.Logger, result, err, http.StatusOK)
}
