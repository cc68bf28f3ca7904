package saasservice_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/cache"
	"showcase/internal/pkg/logger"
	"showcase/internal/service/saasservice"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRepository) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockRepository) FindAnalyticsSince(ctx context.Context, since time.Time) ([]domain.Analytics, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]domain.Analytics), args.Error(1)
}

func (m *MockRepository) UpsertAnalytics(ctx context.Context, a domain.Analytics) (domain.Analytics, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(domain.Analytics), args.Error(1)
}

func newRedis(t *testing.T) (*cache.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rc, err := cache.NewRedisClient(mr.Addr(), time.Second)
	require.NoError(t, err)
	return rc, mr
}

var sampleRows = []domain.Analytics{
	{ActiveUsers: 20, NewUsers: 2, Revenue: decimal.NewFromInt(1000), Subscriptions: domain.Subscriptions{Basic: 10, Pro: 5, Enterprise: 1}},
	{ActiveUsers: 40, NewUsers: 3, Revenue: decimal.NewFromInt(2000), Subscriptions: domain.Subscriptions{Basic: 10, Pro: 5, Enterprise: 1}},
}

func TestGetAnalytics_UsesPeriodWindow(t *testing.T) {
	repo := new(MockRepository)
	svc := saasservice.NewService(repo, cache.NopClient{}, logger.Nop())

	repo.On("FindAnalyticsSince", mock.Anything, mock.MatchedBy(func(since time.Time) bool {
		days := time.Since(since).Hours() / 24
		return days > 29.9 && days < 30.1
	})).Return(sampleRows, nil)

	report, err := svc.GetAnalytics(context.Background(), "30d")

	require.NoError(t, err)
	assert.Len(t, report.Analytics, 2)
	assert.True(t, decimal.NewFromInt(3000).Equal(report.Summary.TotalRevenue), report.Summary.TotalRevenue.String())
	assert.Equal(t, 5, report.Summary.TotalUsers)
	assert.Equal(t, 30.0, report.Summary.AverageActiveUsers)
	repo.AssertExpectations(t)
}

func TestGetAnalytics_EmptyPeriodAveragesZero(t *testing.T) {
	repo := new(MockRepository)
	svc := saasservice.NewService(repo, cache.NopClient{}, logger.Nop())

	repo.On("FindAnalyticsSince", mock.Anything, mock.Anything).Return([]domain.Analytics{}, nil)

	report, err := svc.GetAnalytics(context.Background(), "bogus")

	require.NoError(t, err)
	assert.Equal(t, 0.0, report.Summary.AverageActiveUsers)
}

func TestGetSummary_CachesPerPeriod(t *testing.T) {
	repo := new(MockRepository)
	rc, mr := newRedis(t)
	svc := saasservice.NewService(repo, rc, logger.Nop())

	repo.On("FindAnalyticsSince", mock.Anything, mock.Anything).Return(sampleRows, nil).Once()

	first, err := svc.GetSummary(context.Background(), "7d")
	require.NoError(t, err)
	second, err := svc.GetSummary(context.Background(), "")
	require.NoError(t, err)

	assert.True(t, first.TotalRevenue.Equal(second.TotalRevenue), second.TotalRevenue.String())
	assert.Equal(t, first.TotalUsers, second.TotalUsers)
	assert.Equal(t, first.AverageActiveUsers, second.AverageActiveUsers)
	assert.Equal(t, first.SubscriptionBreakdown, second.SubscriptionBreakdown)
	assert.True(t, mr.Exists(saasservice.SummaryCacheKey(domain.Period7d)))
	assert.Equal(t, saasservice.SummaryTTL, mr.TTL(saasservice.SummaryCacheKey(domain.Period7d)))
	repo.AssertNumberOfCalls(t, "FindAnalyticsSince", 1)
}

func TestRecordAnalytics_UpsertsTodayAndInvalidatesSummary(t *testing.T) {
	repo := new(MockRepository)
	rc, mr := newRedis(t)
	svc := saasservice.NewService(repo, rc, logger.Nop())
	require.NoError(t, mr.Set(saasservice.SummaryCacheKey(domain.Period30d), "{}"))

	repo.On("UpsertAnalytics", mock.Anything, mock.MatchedBy(func(a domain.Analytics) bool {
		return a.Date.Equal(domain.StartOfDay(time.Now())) && a.ActiveUsers == 42
	})).Return(domain.Analytics{ID: "a1", ActiveUsers: 42}, nil)

	got, err := svc.RecordAnalytics(context.Background(), saasservice.AnalyticsInput{ActiveUsers: 42})

	require.NoError(t, err)
	assert.Equal(t, 42, got.ActiveUsers)
	assert.False(t, mr.Exists(saasservice.SummaryCacheKey(domain.Period30d)))
	repo.AssertExpectations(t)
}

func TestRecordAnalytics_RejectsNegative(t *testing.T) {
	svc := saasservice.NewService(new(MockRepository), cache.NopClient{}, logger.Nop())

	_, err := svc.RecordAnalytics(context.Background(), saasservice.AnalyticsInput{Revenue: decimal.NewFromInt(-1)})

	assert.IsType(t, &apperror.ValidationError{}, err)
}

// TestRecordAnalytics_KeepsRevenueExact testa que a receita chega em centavos, sem ruído de ponto flutuante.
func TestRecordAnalytics_KeepsRevenueExact(t *testing.T) {
	repo := new(MockRepository)
	svc := saasservice.NewService(repo, cache.NopClient{}, logger.Nop())

	var in saasservice.AnalyticsInput
	require.NoError(t, json.Unmarshal([]byte(`{"activeUsers":1,"revenue":0.1}`), &in))
	in.Revenue = in.Revenue.Add(decimal.RequireFromString("0.2"))

	repo.On("UpsertAnalytics", mock.Anything, mock.MatchedBy(func(a domain.Analytics) bool {
		return a.Revenue.Equal(decimal.RequireFromString("0.3"))
	})).Return(domain.Analytics{ID: "a1", Revenue: decimal.RequireFromString("0.3")}, nil)

	got, err := svc.RecordAnalytics(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "0.3", got.Revenue.String())
	repo.AssertExpectations(t)
}

func TestCreateUser_NormalizesEmailAndDefaults(t *testing.T) {
	repo := new(MockRepository)
	svc := saasservice.NewService(repo, cache.NopClient{}, logger.Nop())

	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "ana@example.com" && u.Plan == domain.PlanBasic && u.Status == domain.UserActive && u.Name == "Ana"
	})).Return(domain.User{ID: "u1", Email: "ana@example.com"}, nil)

	_, err := svc.CreateUser(context.Background(), saasservice.UserInput{Name: " Ana ", Email: "  ANA@Example.com "})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateUser_Validation(t *testing.T) {
	repo := new(MockRepository)
	svc := saasservice.NewService(repo, cache.NopClient{}, logger.Nop())

	for _, in := range []saasservice.UserInput{
		{Email: "a@b.c"},
		{Name: "Ana"},
		{Name: "Ana", Email: "sem-arroba"},
		{Name: "Ana", Email: "a@b.c", Plan: "gold"},
		{Name: "Ana", Email: "a@b.c", Status: "banned"},
	} {
		_, err := svc.CreateUser(context.Background(), in)
		assert.IsType(t, &apperror.ValidationError{}, err, "%+v", in)
	}
}

func TestCreateUser_ConflictPassesThrough(t *testing.T) {
	repo := new(MockRepository)
	svc := saasservice.NewService(repo, cache.NopClient{}, logger.Nop())

	repo.On("CreateUser", mock.Anything, mock.Anything).Return(domain.User{}, apperror.NewConflictError("duplicado"))

	_, err := svc.CreateUser(context.Background(), saasservice.UserInput{Name: "Ana", Email: "a@b.c"})

	assert.IsType(t, &apperror.ConflictError{}, err)
}

func TestListUsers_UsesLimit(t *testing.T) {
	repo := new(MockRepository)
	svc := saasservice.NewService(repo, cache.NopClient{}, logger.Nop())

	repo.On("ListUsers", mock.Anything, saasservice.UsersListLimit).Return([]domain.User{{ID: "u1"}}, nil)

	users, err := svc.ListUsers(context.Background())

	require.NoError(t, err)
	assert.Len(t, users, 1)
	repo.AssertExpectations(t)
}
