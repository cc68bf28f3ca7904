package seedservice

import (
	"context"
	"math/rand/v2"
	"time"

	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/logger"
)

// CatalogRepository substitui o catálogo inteiro.
type CatalogRepository interface {
	ReplaceCatalog(ctx context.Context, products []domain.Product) (int, error)
}

// SaaSRepository substitui usuários e analytics.
type SaaSRepository interface {
	ReplaceAll(ctx context.Context, users []domain.User, analytics []domain.Analytics) (int, int, error)
}

// SummaryInvalidator descarta resumos do dashboard em cache.
type SummaryInvalidator interface {
	InvalidateSummaries(ctx context.Context)
}

// CatalogResult é a resposta de POST /v1/products/seed.
type CatalogResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// SaaSResult é a resposta de POST /v1/saas/seed.
type SaaSResult struct {
	Message          string `json:"message"`
	UsersCreated     int    `json:"usersCreated"`
	AnalyticsCreated int    `json:"analyticsCreated"`
}

const seededMessage = "Database seeded successfully"

// Service carrega os dados de demonstração. Operações destrutivas, só para o operador.
type Service struct {
	catalog   CatalogRepository
	saas      SaaSRepository
	summaries SummaryInvalidator
	logger    logger.Logger
	now       func() time.Time
	rng       *rand.Rand
}

func NewService(catalog CatalogRepository, saas SaaSRepository, summaries SummaryInvalidator, log logger.Logger) *Service {
	now := time.Now()
	return &Service{
		catalog:   catalog,
		saas:      saas,
		summaries: summaries,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
		rng:       rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix()))),
	}
}

// SeedCatalog apaga carrinhos, pedidos e produtos e insere o catálogo de demonstração.
func (s *Service) SeedCatalog(ctx context.Context) (CatalogResult, error) {
	count, err := s.catalog.ReplaceCatalog(ctx, CatalogFixtures(s.now()))
	if err != nil {
		return CatalogResult{}, apperror.Classify("Falha ao popular o catálogo.", err)
	}
	s.logger.Info("Seed do catálogo concluído.", map[string]interface{}{"count": count})
	return CatalogResult{Message: seededMessage, Count: count}, nil
}

// SeedSaaS apaga usuários e analytics e insere os dados de demonstração do dashboard.
func (s *Service) SeedSaaS(ctx context.Context) (SaaSResult, error) {
	now := s.now()
	users, analytics, err := s.saas.ReplaceAll(ctx, UserFixtures(now), AnalyticsFixtures(now, s.rng))
	if err != nil {
		return SaaSResult{}, apperror.Classify("Falha ao popular o dashboard.", err)
	}
	s.summaries.InvalidateSummaries(ctx)

	s.logger.Info("Seed do SaaS concluído.", map[string]interface{}{"users": users, "analytics": analytics})
	return SaaSResult{Message: seededMessage, UsersCreated: users, AnalyticsCreated: analytics}, nil
}
