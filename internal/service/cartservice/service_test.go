package cartservice_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/logger"
	"showcase/internal/service/cartservice"
)

const (
	headphonesID = "3c95b8c8-1f0e-4a57-9d54-2f1c1b6f9a01"
	novelID      = "7d1f0c1e-3b52-4a7b-8f43-8c2b8b0f1e22"
	missingID    = "9e9e9e9e-0000-4000-8000-000000000000"
)

// memCarts guarda carrinhos em memória.
type memCarts struct {
	carts map[string]domain.Cart
	saves int
}

func (m *memCarts) FindByUser(_ context.Context, userID string) (domain.Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return domain.Cart{}, apperror.NewNotFoundError("sem carrinho")
	}
	c.Items = append([]domain.CartItem{}, c.Items...)
	return c, nil
}

func (m *memCarts) Save(_ context.Context, cart domain.Cart) error {
	m.saves++
	m.carts[cart.UserID] = cart
	return nil
}

// memProducts é o catálogo em memória.
type memProducts map[string]domain.Product

func (m memProducts) FindByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	out := map[string]domain.Product{}
	for _, id := range ids {
		if p, ok := m[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture() (*cartservice.Service, *memCarts, memProducts) {
	discount := dec("10")
	products := memProducts{
		headphonesID: {ID: headphonesID, Name: "Headphones", Price: dec("100"), Discount: &discount, Stock: 5},
		novelID:      {ID: novelID, Name: "Novel", Price: dec("19.99"), Stock: 100},
	}
	carts := &memCarts{carts: map[string]domain.Cart{}}
	return cartservice.NewService(carts, products, logger.Nop()), carts, products
}

func TestGetCart_MissingCartIsEmpty(t *testing.T) {
	svc, _, _ := newFixture()

	view, err := svc.GetCart(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "u1", view.User)
	assert.Empty(t, view.Items)
	assert.True(t, view.TotalAmount.IsZero())
}

func TestGetCart_RequiresUser(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.GetCart(context.Background(), " ")

	assert.IsType(t, &apperror.ValidationError{}, err)
}

func TestUpsertItem_ComputesTotalFromEffectivePrice(t *testing.T) {
	svc, carts, _ := newFixture()

	view, err := svc.UpsertItem(context.Background(), domain.CartItemRequest{User: "u1", ProductID: headphonesID, Quantity: 2})

	require.NoError(t, err)
	assert.True(t, dec("180").Equal(view.TotalAmount), view.TotalAmount.String())
	require.Len(t, view.Items, 1)
	require.NotNil(t, view.Items[0].Product)
	assert.Equal(t, "Headphones", view.Items[0].Product.Name)
	assert.NotNil(t, view.LastUpdated)
	assert.True(t, dec("180").Equal(carts.carts["u1"].TotalAmount))
}

func TestUpsertItem_SameProductReplacesQuantity(t *testing.T) {
	svc, carts, _ := newFixture()
	ctx := context.Background()

	_, err := svc.UpsertItem(ctx, domain.CartItemRequest{User: "u1", ProductID: headphonesID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.UpsertItem(ctx, domain.CartItemRequest{User: "u1", ProductID: novelID, Quantity: 1})
	require.NoError(t, err)
	view, err := svc.UpsertItem(ctx, domain.CartItemRequest{User: "u1", ProductID: headphonesID, Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, []domain.CartItem{{ProductID: headphonesID, Quantity: 3}, {ProductID: novelID, Quantity: 1}}, carts.carts["u1"].Items)
	// 3 × 90 + 19.99
	assert.True(t, dec("289.99").Equal(view.TotalAmount), view.TotalAmount.String())
}

func TestUpsertItem_Validation(t *testing.T) {
	svc, carts, _ := newFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.CartItemRequest
		want error
	}{
		{"sem usuário", domain.CartItemRequest{ProductID: headphonesID, Quantity: 1}, &apperror.ValidationError{}},
		{"sem produto", domain.CartItemRequest{User: "u1", Quantity: 1}, &apperror.ValidationError{}},
		{"quantidade zero", domain.CartItemRequest{User: "u1", ProductID: headphonesID}, &apperror.ValidationError{}},
		{"produto inexistente", domain.CartItemRequest{User: "u1", ProductID: missingID, Quantity: 1}, &apperror.NotFoundError{}},
		{"id malformado", domain.CartItemRequest{User: "u1", ProductID: "abc", Quantity: 1}, &apperror.NotFoundError{}},
		{"estoque insuficiente", domain.CartItemRequest{User: "u1", ProductID: headphonesID, Quantity: 6}, &apperror.BusinessRuleError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpsertItem(ctx, tt.req)
			assert.IsType(t, tt.want, err)
		})
	}
	assert.Zero(t, carts.saves)
}

func TestRemoveItem_RecomputesTotal(t *testing.T) {
	svc, _, _ := newFixture()
	ctx := context.Background()
	_, err := svc.UpsertItem(ctx, domain.CartItemRequest{User: "u1", ProductID: headphonesID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.UpsertItem(ctx, domain.CartItemRequest{User: "u1", ProductID: novelID, Quantity: 2})
	require.NoError(t, err)

	view, err := svc.RemoveItem(ctx, "u1", headphonesID)

	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, dec("39.98").Equal(view.TotalAmount), view.TotalAmount.String())
}

// TestUpsertAndRemove_UpperCaseUUID testa que o ID em maiúsculas vira a forma canônica.
func TestUpsertAndRemove_UpperCaseUUID(t *testing.T) {
	svc, carts, _ := newFixture()
	ctx := context.Background()
	upper := strings.ToUpper(headphonesID)

	view, err := svc.UpsertItem(ctx, domain.CartItemRequest{User: "u1", ProductID: upper, Quantity: 2})

	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, headphonesID, view.Items[0].ProductID)
	assert.Equal(t, headphonesID, carts.carts["u1"].Items[0].ProductID)
	assert.True(t, dec("180").Equal(view.TotalAmount), view.TotalAmount.String())

	view, err = svc.UpsertItem(ctx, domain.CartItemRequest{User: "u1", ProductID: headphonesID, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)

	view, err = svc.RemoveItem(ctx, "u1", upper)

	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Empty(t, carts.carts["u1"].Items)
	assert.True(t, decimal.Zero.Equal(view.TotalAmount), view.TotalAmount.String())
}

func TestRemoveAndClear_MissingCartIsNotFound(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.RemoveItem(context.Background(), "ghost", headphonesID)
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.ClearCart(context.Background(), "ghost")
	assert.True(t, apperror.IsNotFound(err))
}

func TestClearCart_KeepsEmptyCart(t *testing.T) {
	svc, carts, _ := newFixture()
	ctx := context.Background()
	_, err := svc.UpsertItem(ctx, domain.CartItemRequest{User: "u1", ProductID: novelID, Quantity: 1})
	require.NoError(t, err)

	view, err := svc.ClearCart(ctx, "u1")

	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.TotalAmount.IsZero())
	_, stillThere := carts.carts["u1"]
	assert.True(t, stillThere)
}

func TestTotal_ExcludesVanishedProducts(t *testing.T) {
	svc, _, products := newFixture()
	ctx := context.Background()
	_, err := svc.UpsertItem(ctx, domain.CartItemRequest{User: "u1", ProductID: headphonesID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.UpsertItem(ctx, domain.CartItemRequest{User: "u1", ProductID: novelID, Quantity: 1})
	require.NoError(t, err)

	delete(products, headphonesID)
	view, err := svc.RemoveItem(ctx, "u1", missingID)

	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Nil(t, view.Items[0].Product)
	assert.True(t, dec("19.99").Equal(view.TotalAmount), view.TotalAmount.String())
}

// MockCartRepository cobre os caminhos de falha de infraestrutura.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByUser(ctx context.Context, userID string) (domain.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, cart domain.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func TestUpsertItem_SaveFailureIsInternal(t *testing.T) {
	_, _, products := newFixture()
	repo := new(MockCartRepository)
	svc := cartservice.NewService(repo, products, logger.Nop())

	repo.On("FindByUser", mock.Anything, "u1").Return(domain.Cart{}, apperror.NewNotFoundError("sem carrinho"))
	repo.On("Save", mock.Anything, mock.AnythingOfType("domain.Cart")).Return(errors.New("timeout"))

	_, err := svc.UpsertItem(context.Background(), domain.CartItemRequest{User: "u1", ProductID: novelID, Quantity: 1})

	assert.IsType(t, &apperror.InternalError{}, err)
	repo.AssertExpectations(t)
}
