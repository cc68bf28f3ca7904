package seedservice_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/logger"
	"showcase/internal/service/seedservice"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ReplaceCatalog(ctx context.Context, products []domain.Product) (int, error) {
	args := m.Called(ctx, products)
	return args.Int(0), args.Error(1)
}

type MockSaaS struct {
	mock.Mock
}

func (m *MockSaaS) ReplaceAll(ctx context.Context, users []domain.User, analytics []domain.Analytics) (int, int, error) {
	args := m.Called(ctx, users, analytics)
	return args.Int(0), args.Int(1), args.Error(2)
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateSummaries(context.Context) { c.calls++ }

func TestSeedCatalog_ReplacesWithFixtures(t *testing.T) {
	catalog := new(MockCatalog)
	svc := seedservice.NewService(catalog, new(MockSaaS), &countingInvalidator{}, logger.Nop())

	catalog.On("ReplaceCatalog", mock.Anything, mock.MatchedBy(func(p []domain.Product) bool {
		return len(p) == 8
	})).Return(8, nil)

	res, err := svc.SeedCatalog(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 8, res.Count)
	assert.Equal(t, "Database seeded successfully", res.Message)
	catalog.AssertExpectations(t)
}

func TestSeedCatalog_DBFailureIsInternal(t *testing.T) {
	catalog := new(MockCatalog)
	svc := seedservice.NewService(catalog, new(MockSaaS), &countingInvalidator{}, logger.Nop())

	catalog.On("ReplaceCatalog", mock.Anything, mock.Anything).Return(0, apperror.NewDBError("falha", errors.New("boom")))

	_, err := svc.SeedCatalog(context.Background())

	status, _, _ := apperror.MapToHTTPStatus(err)
	assert.Equal(t, 500, status)
}

func TestSeedSaaS_ReplacesAndInvalidatesSummaries(t *testing.T) {
	saas := new(MockSaaS)
	inv := &countingInvalidator{}
	svc := seedservice.NewService(new(MockCatalog), saas, inv, logger.Nop())

	saas.On("ReplaceAll", mock.Anything,
		mock.MatchedBy(func(u []domain.User) bool { return len(u) == 5 }),
		mock.MatchedBy(func(a []domain.Analytics) bool { return len(a) == seedservice.AnalyticsDays }),
	).Return(5, 31, nil)

	res, err := svc.SeedSaaS(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, res.UsersCreated)
	assert.Equal(t, 31, res.AnalyticsCreated)
	assert.Equal(t, 1, inv.calls)
}

func TestSeedSaaS_FailureKeepsCache(t *testing.T) {
	saas := new(MockSaaS)
	inv := &countingInvalidator{}
	svc := seedservice.NewService(new(MockCatalog), saas, inv, logger.Nop())

	saas.On("ReplaceAll", mock.Anything, mock.Anything, mock.Anything).Return(0, 0, apperror.NewDBError("falha", errors.New("boom")))

	_, err := svc.SeedSaaS(context.Background())

	require.Error(t, err)
	assert.Zero(t, inv.calls)
}

func TestCatalogFixtures(t *testing.T) {
	products := seedservice.CatalogFixtures(time.Now())

	require.Len(t, products, 8)
	featured := 0
	for _, p := range products {
		assert.True(t, p.Category.Valid(), p.Name)
		assert.Positive(t, p.Stock, p.Name)
		assert.NotEmpty(t, p.ID)
		if p.Featured {
			featured++
		}
	}
	assert.Equal(t, 5, featured)
	assert.Equal(t, "269.99", products[0].EffectivePrice().StringFixed(2))
}

func TestAnalyticsFixtures_RangesAndOrder(t *testing.T) {
	now := time.Date(2026, 3, 15, 13, 45, 0, 0, time.UTC)
	rows := seedservice.AnalyticsFixtures(now, rand.New(rand.NewPCG(1, 2)))

	require.Len(t, rows, 31)
	assert.Equal(t, time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), rows[30].Date)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.ActiveUsers, 20)
		assert.Less(t, r.ActiveUsers, 70)
		assert.GreaterOrEqual(t, r.NewUsers, 1)
		assert.LessOrEqual(t, r.NewUsers, 10)
		assert.True(t, r.Revenue.GreaterThanOrEqual(decimal.NewFromInt(1000)), r.Revenue.String())
		assert.True(t, r.Revenue.LessThan(decimal.NewFromInt(6000)), r.Revenue.String())
		assert.GreaterOrEqual(t, r.Metrics.UniqueVisitors, 200)
		assert.Less(t, r.Metrics.UniqueVisitors, 500)
	}
}

func TestUserFixtures(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	users := seedservice.UserFixtures(now)

	require.Len(t, users, 5)
	assert.Equal(t, "John Smith", users[0].Name)
	assert.Equal(t, now.AddDate(0, 0, -7), users[0].JoinedAt)
	assert.Equal(t, domain.UserSuspended, users[4].Status)
	assert.Equal(t, now.AddDate(0, 0, -5), users[4].LastLogin)
}
