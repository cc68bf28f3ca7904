package saasservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/cache"
	"showcase/internal/pkg/logger"
)

// Define a chave de cache do resumo por período.
const summaryCacheKey = "saas:summary:%s"

// SummaryTTL é o tempo de vida do resumo no cache.
const SummaryTTL = 60 * time.Second

// UsersListLimit é quantos usuários GET /v1/saas/users devolve.
const UsersListLimit = 10

// Repository define o contrato que o Serviço SaaS espera da camada de Persistência.
type Repository interface {
	ListUsers(ctx context.Context, limit int) ([]domain.User, error)
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	FindAnalyticsSince(ctx context.Context, since time.Time) ([]domain.Analytics, error)
	UpsertAnalytics(ctx context.Context, a domain.Analytics) (domain.Analytics, error)
}

// UserInput é o payload de POST /v1/saas/users.
type UserInput struct {
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Plan           domain.Plan       `json:"plan"`
	Status         domain.UserStatus `json:"status"`
	SubscriptionID *string           `json:"subscriptionId"`
}

// AnalyticsInput é o payload de POST /v1/saas/analytics (métricas do dia corrente).
type AnalyticsInput struct {
	ActiveUsers   int                      `json:"activeUsers"`
	NewUsers      int                      `json:"newUsers"`
	Revenue       decimal.Decimal          `json:"revenue"`
	Subscriptions domain.Subscriptions     `json:"subscriptions"`
	Metrics       domain.EngagementMetrics `json:"metrics"`
}

// Service agrega o dashboard SaaS.
type Service struct {
	repo   Repository
	cache  cache.Client
	logger logger.Logger
	now    func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço SaaS.
func NewService(repo Repository, cacheClient cache.Client, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cacheClient,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SummaryCacheKey devolve a chave de cache do resumo de um período.
func SummaryCacheKey(p domain.Period) string {
	return fmt.Sprintf(summaryCacheKey, p)
}

// ListUsers devolve os usuários mais recentes.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.ListUsers(ctx, UsersListLimit)
	if err != nil {
		return nil, apperror.Classify("Falha ao listar usuários.", err)
	}
	return users, nil
}

// CreateUser valida e cadastra um usuário; o e-mail é gravado aparado e em minúsculas.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return domain.User{}, apperror.NewValidationError("Nome e e-mail são obrigatórios.")
	}
	if !strings.Contains(email, "@") {
		return domain.User{}, apperror.NewValidationError(fmt.Sprintf("E-mail inválido: %s.", email))
	}
	if in.Plan == "" {
		in.Plan = domain.PlanBasic
	}
	if !in.Plan.Valid() {
		return domain.User{}, apperror.NewValidationError(fmt.Sprintf("Plano inválido: %s.", in.Plan))
	}
	if in.Status == "" {
		in.Status = domain.UserActive
	}
	if !in.Status.Valid() {
		return domain.User{}, apperror.NewValidationError(fmt.Sprintf("Status inválido: %s.", in.Status))
	}

	now := s.now()
	user, err := s.repo.CreateUser(ctx, domain.User{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          email,
		Plan:           in.Plan,
		Status:         in.Status,
		JoinedAt:       now,
		LastLogin:      now,
		SubscriptionID: in.SubscriptionID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return domain.User{}, apperror.Classify("Falha ao criar usuário.", err)
	}
	s.logger.Info("Usuário SaaS criado.", map[string]interface{}{"user_id": user.ID, "plan": user.Plan})
	return user, nil
}

// GetAnalytics devolve as linhas do período em ordem de data, junto do resumo.
func (s *Service) GetAnalytics(ctx context.Context, rawPeriod string) (domain.AnalyticsReport, error) {
	period := domain.ParsePeriod(rawPeriod)
	rows, err := s.repo.FindAnalyticsSince(ctx, period.Since(s.now()))
	if err != nil {
		return domain.AnalyticsReport{}, apperror.Classify("Falha ao buscar analytics.", err)
	}
	return domain.AnalyticsReport{Analytics: rows, Summary: domain.Summarize(rows)}, nil
}

// GetSummary devolve apenas o resumo do período, com cache-aside no Redis.
func (s *Service) GetSummary(ctx context.Context, rawPeriod string) (domain.AnalyticsSummary, error) {
	period := domain.ParsePeriod(rawPeriod)
	key := SummaryCacheKey(period)

	var summary domain.AnalyticsSummary
	if cache.GetJSON(ctx, s.cache, key, &summary) {
		return summary, nil
	}

	rows, err := s.repo.FindAnalyticsSince(ctx, period.Since(s.now()))
	if err != nil {
		return domain.AnalyticsSummary{}, apperror.Classify("Falha ao calcular resumo.", err)
	}
	summary = domain.Summarize(rows)

	if err := cache.SetJSON(ctx, s.cache, key, summary, SummaryTTL); err != nil {
		s.logger.Warn("Falha ao gravar resumo no cache.", map[string]interface{}{"period": period, "error": err.Error()})
	}
	return summary, nil
}

// RecordAnalytics grava (ou sobrescreve) as métricas do dia corrente.
func (s *Service) RecordAnalytics(ctx context.Context, in AnalyticsInput) (domain.Analytics, error) {
	if in.ActiveUsers < 0 || in.NewUsers < 0 || in.Revenue.IsNegative() ||
		in.Subscriptions.Basic < 0 || in.Subscriptions.Pro < 0 || in.Subscriptions.Enterprise < 0 ||
		in.Metrics.PageViews < 0 || in.Metrics.UniqueVisitors < 0 || in.Metrics.AverageSessionDuration < 0 {
		return domain.Analytics{}, apperror.NewValidationError("As métricas não podem ser negativas.")
	}

	stored, err := s.repo.UpsertAnalytics(ctx, domain.Analytics{
		ID:            uuid.New().String(),
		Date:          domain.StartOfDay(s.now()),
		ActiveUsers:   in.ActiveUsers,
		NewUsers:      in.NewUsers,
		Revenue:       in.Revenue.Round(2),
		Subscriptions: in.Subscriptions,
		Metrics:       in.Metrics,
	})
	if err != nil {
		return domain.Analytics{}, apperror.Classify("Falha ao gravar analytics.", err)
	}

	s.InvalidateSummaries(ctx)
	return stored, nil
}

// InvalidateSummaries descarta o resumo em cache de todos os períodos.
func (s *Service) InvalidateSummaries(ctx context.Context) {
	keys := []string{
		SummaryCacheKey(domain.Period7d),
		SummaryCacheKey(domain.Period30d),
		SummaryCacheKey(domain.Period90d),
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("Falha ao invalidar resumos no cache.", map[string]interface{}{"error": err.Error()})
	}
}
