package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period é a janela de agregação do dashboard.
type Period string

const (
	Period7d  Period = "7d"
	Period30d Period = "30d"
	Period90d Period = "90d"
)

// ParsePeriod aceita 7d, 30d e 90d; qualquer outro valor vira 7d.
func ParsePeriod(raw string) Period {
	switch Period(raw) {
	case Period30d, Period90d:
		return Period(raw)
	}
	return Period7d
}

// Days devolve o tamanho da janela em dias.
func (p Period) Days() int {
	switch p {
	case Period30d:
		return 30
	case Period90d:
		return 90
	}
	return 7
}

// Since calcula o início da janela a partir de now.
func (p Period) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -p.Days())
}

// Subscriptions conta assinaturas por plano.
type Subscriptions struct {
	Basic      int `json:"basic"`
	Pro        int `json:"pro"`
	Enterprise int `json:"enterprise"`
}

// EngagementMetrics são as métricas de uso do dia.
type EngagementMetrics struct {
	PageViews              int `json:"pageViews"`
	UniqueVisitors         int `json:"uniqueVisitors"`
	AverageSessionDuration int `json:"averageSessionDuration"`
}

// Analytics é o rollup diário (uma linha por data, meia-noite UTC).
type Analytics struct {
	ID            string            `json:"id"`
	Date          time.Time         `json:"date"`
	ActiveUsers   int               `json:"activeUsers"`
	NewUsers      int               `json:"newUsers"`
	Revenue       decimal.Decimal   `json:"revenue"`
	Subscriptions Subscriptions     `json:"subscriptions"`
	Metrics       EngagementMetrics `json:"metrics"`
}

// AnalyticsSummary é o resumo agregado de um período.
type AnalyticsSummary struct {
	TotalRevenue          decimal.Decimal `json:"totalRevenue"`
	TotalUsers            int             `json:"totalUsers"`
	AverageActiveUsers    float64         `json:"averageActiveUsers"`
	SubscriptionBreakdown Subscriptions   `json:"subscriptionBreakdown"`
}

// AnalyticsReport é a resposta de GET /v1/saas/analytics.
type AnalyticsReport struct {
	Analytics []Analytics      `json:"analytics"`
	Summary   AnalyticsSummary `json:"summary"`
}

// Summarize reduz as linhas diárias ao resumo do período.
// A média de usuários ativos é 0 quando não há linhas.
func Summarize(rows []Analytics) AnalyticsSummary {
	var s AnalyticsSummary
	activeUsers := 0
	for _, a := range rows {
		s.TotalRevenue = s.TotalRevenue.Add(a.Revenue)
		s.TotalUsers += a.NewUsers
		activeUsers += a.ActiveUsers
		s.SubscriptionBreakdown.Basic += a.Subscriptions.Basic
		s.SubscriptionBreakdown.Pro += a.Subscriptions.Pro
		s.SubscriptionBreakdown.Enterprise += a.Subscriptions.Enterprise
	}
	if len(rows) > 0 {
		s.AverageActiveUsers = float64(activeUsers) / float64(len(rows))
	}
	return s
}

// StartOfDay trunca t para a meia-noite UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
