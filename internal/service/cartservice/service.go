package cartservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/logger"
)

// CartRepository define o contrato que o Serviço de Carrinho espera da camada de Persistência.
type CartRepository interface {
	FindByUser(ctx context.Context, userID string) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
}

// ProductReader lê produtos direto do banco. O carrinho nunca usa o cache:
// o total precisa do preço vigente.
type ProductReader interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
}

// Service muta carrinhos e recalcula o total a partir do catálogo atual.
type Service struct {
	carts    CartRepository
	products ProductReader
	logger   logger.Logger
	now      func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço de Carrinho.
func NewService(carts CartRepository, products ProductReader, log logger.Logger) *Service {
	return &Service{
		carts:    carts,
		products: products,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetCart devolve o carrinho com os produtos expandidos; sem carrinho, devolve o carrinho vazio.
func (s *Service) GetCart(ctx context.Context, user string) (domain.CartView, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return domain.CartView{}, apperror.NewValidationError("O ID do usuário é obrigatório.")
	}

	cart, err := s.carts.FindByUser(ctx, user)
	if apperror.IsNotFound(err) {
		return domain.EmptyCartView(user), nil
	}
	if err != nil {
		return domain.CartView{}, apperror.Classify("Falha ao buscar carrinho.", err)
	}

	products, err := s.products.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return domain.CartView{}, apperror.Classify("Falha ao buscar produtos do carrinho.", err)
	}
	return buildView(cart, products), nil
}

// UpsertItem inclui o produto no carrinho ou troca a quantidade do item existente.
// O estoque é conferido uma única vez, sem reserva.
func (s *Service) UpsertItem(ctx context.Context, req domain.CartItemRequest) (domain.CartView, error) {
	req.User = strings.TrimSpace(req.User)
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.User == "" || req.ProductID == "" {
		return domain.CartView{}, apperror.NewValidationError("Usuário e produto são obrigatórios.")
	}
	if req.Quantity < 1 {
		return domain.CartView{}, apperror.NewValidationError("A quantidade deve ser no mínimo 1.")
	}

	product, err := s.findProduct(ctx, req.ProductID)
	if err != nil {
		return domain.CartView{}, err
	}
	if req.Quantity > product.Stock {
		return domain.CartView{}, apperror.NewInsufficientStockError(product.Name)
	}

	cart, err := s.carts.FindByUser(ctx, req.User)
	if apperror.IsNotFound(err) {
		cart = domain.Cart{UserID: req.User, Items: []domain.CartItem{}}
	} else if err != nil {
		return domain.CartView{}, apperror.Classify("Falha ao buscar carrinho.", err)
	}

	cart.SetItem(product.ID, req.Quantity)

	view, err := s.recomputeAndSave(ctx, cart)
	if err != nil {
		return domain.CartView{}, err
	}

	s.logger.Debug("Item gravado no carrinho.", map[string]interface{}{
		"user":       req.User,
		"product_id": product.ID,
		"quantity":   req.Quantity,
	})
	return view, nil
}

// RemoveItem tira o produto do carrinho. NotFound se o usuário não tem carrinho.
func (s *Service) RemoveItem(ctx context.Context, user, productID string) (domain.CartView, error) {
	cart, err := s.loadExisting(ctx, user)
	if err != nil {
		return domain.CartView{}, err
	}
	productID = strings.TrimSpace(productID)
	if parsed, err := uuid.Parse(productID); err == nil {
		productID = parsed.String()
	}
	cart.RemoveItem(productID)
	return s.recomputeAndSave(ctx, cart)
}

// ClearCart esvazia o carrinho sem removê-lo. NotFound se o usuário não tem carrinho.
func (s *Service) ClearCart(ctx context.Context, user string) (domain.CartView, error) {
	cart, err := s.loadExisting(ctx, user)
	if err != nil {
		return domain.CartView{}, err
	}
	cart.Clear()
	return s.recomputeAndSave(ctx, cart)
}

func (s *Service) loadExisting(ctx context.Context, user string) (domain.Cart, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return domain.Cart{}, apperror.NewValidationError("O ID do usuário é obrigatório.")
	}
	cart, err := s.carts.FindByUser(ctx, user)
	if err != nil {
		return domain.Cart{}, apperror.Classify("Falha ao buscar carrinho.", err)
	}
	return cart, nil
}

func (s *Service) findProduct(ctx context.Context, id string) (domain.Product, error) {
	notFound := apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não foi encontrado.", id))
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, notFound
	}
	// O carrinho e o catálogo guardam o UUID na forma canônica (minúsculas).
	id = parsed.String()
	found, err := s.products.FindByIDs(ctx, []string{id})
	if err != nil {
		return domain.Product{}, apperror.Classify("Falha ao buscar produto.", err)
	}
	product, ok := found[id]
	if !ok {
		return domain.Product{}, notFound
	}
	return product, nil
}

// recomputeAndSave recalcula o total com os preços atuais, grava e devolve a visão expandida.
func (s *Service) recomputeAndSave(ctx context.Context, cart domain.Cart) (domain.CartView, error) {
	products, err := s.products.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return domain.CartView{}, apperror.Classify("Falha ao buscar produtos do carrinho.", err)
	}

	cart.TotalAmount = domain.CartTotal(cart.Items, products)
	cart.LastUpdated = s.now()

	if err := s.carts.Save(ctx, cart); err != nil {
		return domain.CartView{}, apperror.Classify("Falha ao gravar carrinho.", err)
	}
	return buildView(cart, products), nil
}

func buildView(cart domain.Cart, products map[string]domain.Product) domain.CartView {
	view := domain.CartView{
		User:        cart.UserID,
		Items:       make([]domain.CartItemView, 0, len(cart.Items)),
		TotalAmount: cart.TotalAmount,
	}
	if !cart.LastUpdated.IsZero() {
		lastUpdated := cart.LastUpdated
		view.LastUpdated = &lastUpdated
	}
	for _, item := range cart.Items {
		iv := domain.CartItemView{ProductID: item.ProductID, Quantity: item.Quantity}
		if p, ok := products[item.ProductID]; ok {
			summary := p.Summary()
			iv.Product = &summary
		}
		view.Items = append(view.Items, iv)
	}
	return view
}
