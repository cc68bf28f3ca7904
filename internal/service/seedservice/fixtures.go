package seedservice

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"showcase/internal/domain"
)

type productFixture struct {
	name        string
	description string
	price       string
	category    domain.Category
	image       string
	stock       int
	rating      float64
	reviewCount int
	featured    bool
	discount    string
	tags        []string
}

var catalogFixtures = []productFixture{
	{
		name:        "Wireless Noise-Cancelling Headphones",
		description: "Premium wireless headphones with active noise cancellation and 30-hour battery life.",
		price:       "299.99", category: domain.CategoryElectronics,
		image: "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=800&q=80",
		stock: 50, rating: 4.5, reviewCount: 128, featured: true, discount: "10",
		tags: []string{"audio", "wireless", "headphones"},
	},
	{
		name:        `Smart LED TV 55"`,
		description: "4K Ultra HD Smart TV with HDR and built-in streaming apps.",
		price:       "799.99", category: domain.CategoryElectronics,
		image: "https://images.unsplash.com/photo-1593784991095-a205069470b6?w=800&q=80",
		stock: 25, rating: 4.8, reviewCount: 89, featured: true,
		tags: []string{"tv", "smart", "4k"},
	},
	{
		name:        "Modern Leather Sofa",
		description: "Contemporary leather sofa with premium cushioning and durable frame.",
		price:       "1299.99", category: domain.CategoryFurniture,
		image: "https://images.unsplash.com/photo-1555041469-a586c61ea9bc?w=800&q=80",
		stock: 15, rating: 4.6, reviewCount: 45, featured: true, discount: "15",
		tags: []string{"furniture", "living room", "leather"},
	},
	{
		name:        "Ergonomic Office Chair",
		description: "Adjustable office chair with lumbar support and breathable mesh back.",
		price:       "249.99", category: domain.CategoryFurniture,
		image: "https://images.unsplash.com/photo-1505843490538-5133c6c7d0e1?w=800&q=80",
		stock: 30, rating: 4.4, reviewCount: 67,
		tags: []string{"office", "ergonomic", "chair"},
	},
	{
		name:        "Men's Casual Denim Jacket",
		description: "Classic denim jacket with modern fit and premium quality.",
		price:       "89.99", category: domain.CategoryClothing,
		image: "https://images.unsplash.com/photo-1576995853123-5a10305d93c0?w=800&q=80",
		stock: 40, rating: 4.3, reviewCount: 92,
		tags: []string{"men", "jacket", "denim"},
	},
	{
		name:        "Women's Running Shoes",
		description: "Lightweight running shoes with responsive cushioning and breathable mesh.",
		price:       "129.99", category: domain.CategoryClothing,
		image: "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=800&q=80",
		stock: 35, rating: 4.7, reviewCount: 156, featured: true, discount: "20",
		tags: []string{"women", "shoes", "running"},
	},
	{
		name:        "Bestselling Fiction Novel",
		description: "Award-winning fiction novel that has captured readers worldwide.",
		price:       "19.99", category: domain.CategoryBooks,
		image: "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=800&q=80",
		stock: 100, rating: 4.9, reviewCount: 234, featured: true,
		tags: []string{"fiction", "novel", "bestseller"},
	},
	{
		name:        "Programming Guide 2024",
		description: "Comprehensive guide to modern programming languages and frameworks.",
		price:       "39.99", category: domain.CategoryBooks,
		image: "https://images.unsplash.com/photo-1517694712202-14dd9538aa97?w=800&q=80",
		stock: 45, rating: 4.6, reviewCount: 78, discount: "5",
		tags: []string{"programming", "education", "technology"},
	},
}

// CatalogFixtures devolve o catálogo de demonstração com IDs novos.
func CatalogFixtures(now time.Time) []domain.Product {
	products := make([]domain.Product, 0, len(catalogFixtures))
	for _, f := range catalogFixtures {
		p := domain.Product{
			ID:          uuid.New().String(),
			Name:        f.name,
			Description: f.description,
			Price:       decimal.RequireFromString(f.price),
			Category:    f.category,
			Image:       f.image,
			Stock:       f.stock,
			Rating:      f.rating,
			ReviewCount: f.reviewCount,
			Featured:    f.featured,
			Tags:        f.tags,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if f.discount != "" {
			d := decimal.RequireFromString(f.discount)
			p.Discount = &d
		}
		products = append(products, p)
	}
	return products
}

type userFixture struct {
	name      string
	email     string
	plan      domain.Plan
	status    domain.UserStatus
	joinedAgo int // dias
	loginAgo  int // dias
}

var userFixtures = []userFixture{
	{"John Smith", "john@example.com", domain.PlanEnterprise, domain.UserActive, 7, 0},
	{"Sarah Johnson", "sarah@example.com", domain.PlanPro, domain.UserActive, 5, 0},
	{"Michael Brown", "michael@example.com", domain.PlanBasic, domain.UserActive, 3, 0},
	{"Emily Davis", "emily@example.com", domain.PlanPro, domain.UserInactive, 10, 2},
	{"David Wilson", "david@example.com", domain.PlanEnterprise, domain.UserSuspended, 15, 5},
}

// UserFixtures devolve os usuários de demonstração relativos a now.
func UserFixtures(now time.Time) []domain.User {
	users := make([]domain.User, 0, len(userFixtures))
	for _, f := range userFixtures {
		users = append(users, domain.User{
			ID:        uuid.New().String(),
			Name:      f.name,
			Email:     f.email,
			Plan:      f.plan,
			Status:    f.status,
			JoinedAt:  now.AddDate(0, 0, -f.joinedAgo),
			LastLogin: now.AddDate(0, 0, -f.loginAgo),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return users
}

// AnalyticsDays é quantos dias o seed gera (hoje e os 30 anteriores).
const AnalyticsDays = 31

// AnalyticsFixtures gera um rollup pseudo-aleatório por dia, do mais antigo até hoje.
func AnalyticsFixtures(now time.Time, rng *rand.Rand) []domain.Analytics {
	today := domain.StartOfDay(now)
	rows := make([]domain.Analytics, 0, AnalyticsDays)
	for i := AnalyticsDays - 1; i >= 0; i-- {
		rows = append(rows, domain.Analytics{
			ID:          uuid.New().String(),
			Date:        today.AddDate(0, 0, -i),
			ActiveUsers: rng.IntN(50) + 20,
			NewUsers:    rng.IntN(10) + 1,
			Revenue:     decimal.NewFromInt(int64(rng.IntN(5000) + 1000)),
			Subscriptions: domain.Subscriptions{
				Basic:      rng.IntN(30) + 10,
				Pro:        rng.IntN(20) + 5,
				Enterprise: rng.IntN(10) + 2,
			},
			Metrics: domain.EngagementMetrics{
				PageViews:              rng.IntN(1000) + 500,
				UniqueVisitors:         rng.IntN(300) + 200,
				AverageSessionDuration: rng.IntN(20) + 10,
			},
		})
	}
	return rows
}
