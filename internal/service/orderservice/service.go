package orderservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/events"
	"showcase/internal/pkg/logger"
)

// Tipos de evento publicados após o commit.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
)

// OrderRepository define o contrato que o Serviço de Pedidos espera da camada de Persistência.
type OrderRepository interface {
	Checkout(ctx context.Context, userID string, draft domain.CheckoutDraft) (domain.Order, error)
	FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error)
	FindByID(ctx context.Context, id string) (domain.Order, error)
	Update(ctx context.Context, id string, mutate domain.OrderMutation) (domain.Order, error)
}

// ProductCache descarta produtos do cache depois da baixa de estoque.
type ProductCache interface {
	InvalidateCache(ctx context.Context, ids ...string)
}

// Service implementa o checkout e o ciclo de vida dos pedidos.
type Service struct {
	repo      OrderRepository
	cache     ProductCache
	publisher events.Publisher
	logger    logger.Logger
	now       func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço de Pedidos.
func NewService(repo OrderRepository, cache ProductCache, publisher events.Publisher, log logger.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder transforma o carrinho do usuário em pedido.
// Estoque, pedido e carrinho mudam juntos ou não mudam.
func (s *Service) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (domain.Order, error) {
	if err := validatePlaceOrder(req); err != nil {
		return domain.Order{}, err
	}
	user := strings.TrimSpace(req.User)
	now := s.now()

	draft := func(lines []domain.CheckoutLine) (domain.Order, error) {
		return buildOrder(user, *req.ShippingAddress, req.PaymentMethod, lines, now)
	}

	order, err := s.repo.Checkout(ctx, user, draft)
	if err != nil {
		return domain.Order{}, apperror.Classify("Falha ao finalizar pedido.", err)
	}

	ids := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	s.cache.InvalidateCache(ctx, ids...)
	s.publish(ctx, events.TopicOrderCreated, EventOrderCreated, order)

	return order, nil
}

func validatePlaceOrder(req domain.PlaceOrderRequest) error {
	var missing []string
	if strings.TrimSpace(req.User) == "" {
		missing = append(missing, "user")
	}
	if req.ShippingAddress == nil {
		missing = append(missing, "shippingAddress")
	} else {
		for _, f := range req.ShippingAddress.MissingFields() {
			missing = append(missing, "shippingAddress."+f)
		}
	}
	if req.PaymentMethod == "" {
		missing = append(missing, "paymentMethod")
	}
	if len(missing) > 0 {
		return apperror.NewValidationError(fmt.Sprintf("Campos obrigatórios ausentes: %s.", strings.Join(missing, ", ")))
	}
	if !req.PaymentMethod.Valid() {
		return apperror.NewValidationError(fmt.Sprintf("Meio de pagamento inválido: %s.", req.PaymentMethod))
	}
	return nil
}

// buildOrder valida as linhas travadas e captura o preço efetivo de cada item.
func buildOrder(user string, address domain.Address, method domain.PaymentMethod, lines []domain.CheckoutLine, now time.Time) (domain.Order, error) {
	if len(lines) == 0 {
		return domain.Order{}, apperror.NewBusinessRuleError(apperror.RuleEmptyCart, "O carrinho está vazio.")
	}

	items := make([]domain.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		p := line.Product
		if p == nil {
			return domain.Order{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe mais.", line.Item.ProductID))
		}
		if p.Stock < line.Item.Quantity {
			return domain.Order{}, apperror.NewInsufficientStockError(p.Name)
		}
		price := p.EffectivePrice()
		items = append(items, domain.OrderItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductImage: p.Image,
			Quantity:     line.Item.Quantity,
			Price:        price,
		})
		total = total.Add(domain.LineTotal(price, line.Item.Quantity))
	}

	estimated := now.Add(domain.DeliveryWindow)
	return domain.Order{
		ID:                uuid.New().String(),
		UserID:            user,
		Items:             items,
		TotalAmount:       total,
		ShippingAddress:   address,
		PaymentMethod:     method,
		Status:            domain.OrderPending,
		PaymentStatus:     domain.PaymentPending,
		EstimatedDelivery: &estimated,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ListOrders lista os pedidos do usuário, mais recentes primeiro.
func (s *Service) ListOrders(ctx context.Context, filter domain.OrderFilter) (domain.OrderPage, error) {
	filter.UserID = strings.TrimSpace(filter.UserID)
	if filter.UserID == "" {
		return domain.OrderPage{}, apperror.NewValidationError("O ID do usuário é obrigatório.")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return domain.OrderPage{}, apperror.NewValidationError(fmt.Sprintf("Status inválido: %s.", filter.Status))
	}
	filter.Page, filter.Limit = domain.NormalizePage(filter.Page, filter.Limit)

	orders, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return domain.OrderPage{}, apperror.Classify("Falha ao listar pedidos.", err)
	}
	return domain.OrderPage{
		Orders:     orders,
		Pagination: domain.NewPagination(total, filter.Page, filter.Limit),
	}, nil
}

// GetOrder busca um pedido pelo ID.
func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Order{}, apperror.NewNotFoundError(fmt.Sprintf("Pedido com ID %s não foi encontrado.", id))
	}
	order, err := s.repo.FindByID(ctx, parsed.String())
	if err != nil {
		return domain.Order{}, apperror.Classify("Falha ao buscar pedido.", err)
	}
	return order, nil
}

// UpdateOrder aplica os campos da allow-list, respeitando as transições de status.
func (s *Service) UpdateOrder(ctx context.Context, id string, update domain.OrderUpdate) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, apperror.NewValidationError("O ID do pedido é obrigatório.")
	}
	if update.Empty() {
		return domain.Order{}, apperror.NewBusinessRuleError(apperror.RuleNoValidUpdates, "Nenhuma atualização válida informada.")
	}
	if update.Status != nil && !update.Status.Valid() {
		return domain.Order{}, apperror.NewValidationError(fmt.Sprintf("Status inválido: %s.", *update.Status))
	}
	if update.PaymentStatus != nil && !update.PaymentStatus.Valid() {
		return domain.Order{}, apperror.NewValidationError(fmt.Sprintf("Status de pagamento inválido: %s.", *update.PaymentStatus))
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Order{}, apperror.NewNotFoundError(fmt.Sprintf("Pedido com ID %s não foi encontrado.", id))
	}

	now := s.now()
	order, err := s.repo.Update(ctx, parsed.String(), func(o *domain.Order) error {
		if err := update.CheckTransitions(*o); err != nil {
			return apperror.NewBusinessRuleError(apperror.RuleInvalidTransition, err.Error())
		}
		update.Apply(o)
		o.UpdatedAt = now
		return nil
	})
	if err != nil {
		return domain.Order{}, apperror.Classify("Falha ao atualizar pedido.", err)
	}

	s.logger.Info("Pedido atualizado.", map[string]interface{}{
		"order_id":       order.ID,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
	})
	s.publish(ctx, events.TopicOrderStatusUpdated, EventOrderStatusUpdated, order)
	return order, nil
}

// publish é best effort: a falha fica no log e não afeta a resposta.
func (s *Service) publish(ctx context.Context, topic, eventType string, order domain.Order) {
	event := events.NewOrderEvent(eventType, order, s.now())
	if err := s.publisher.Publish(ctx, topic, order.ID, event); err != nil {
		s.logger.Warn("Falha ao publicar evento de pedido.", map[string]interface{}{
			"order_id": order.ID,
			"event":    eventType,
			"error":    err.Error(),
		})
	}
}
