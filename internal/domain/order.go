package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryWindow é o prazo estimado de entrega a partir da criação do pedido.
const DeliveryWindow = 7 * 24 * time.Hour

// OrderStatus é o estado logístico do pedido.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderTransitions é o grafo de transições aceitas para OrderStatus.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

// Valid informa se o status existe.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo informa se next é uma aresta válida a partir de s.
// Escrever o mesmo valor é sempre aceito (no-op).
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus é o estado do pagamento do pedido.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentFailed:    {PaymentPending},
	PaymentCompleted: {PaymentRefunded},
}

// Valid informa se o status de pagamento existe.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// CanTransitionTo informa se next é uma aresta válida a partir de s.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentMethod é o meio de pagamento escolhido no checkout.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentPaypal     PaymentMethod = "paypal"
	PaymentStripe     PaymentMethod = "stripe"
)

// Valid informa se o meio de pagamento é aceito.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentPaypal, PaymentStripe:
		return true
	}
	return false
}

// Address é o endereço de entrega; todos os campos são obrigatórios.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode"`
}

// MissingFields lista os campos vazios do endereço.
func (a Address) MissingFields() []string {
	var missing []string
	fields := []struct {
		name, value string
	}{
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"country", a.Country},
		{"zipCode", a.ZipCode},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Order é o registro de uma compra. Só Status, PaymentStatus e TrackingNumber mudam após a criação.
type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user"`
	Items             []OrderItem     `json:"items"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	ShippingAddress   Address         `json:"shippingAddress"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod"`
	Status            OrderStatus     `json:"status"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus"`
	TrackingNumber    *string         `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// OrderItem guarda o preço unitário capturado no momento da compra.
type OrderItem struct {
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName,omitempty"`
	ProductImage string          `json:"productImage,omitempty"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
}

// PlaceOrderRequest é o payload de POST /v1/orders.
type PlaceOrderRequest struct {
	User            string        `json:"user"`
	ShippingAddress *Address      `json:"shippingAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
}

// CheckoutLine é um item do carrinho junto ao estado atual (travado) do produto.
// Product é nulo quando o produto não existe mais.
type CheckoutLine struct {
	Item    CartItem
	Product *Product
}

// CheckoutDraft monta o pedido a partir das linhas do carrinho já travadas.
// Devolver erro aborta o checkout sem efeito algum.
type CheckoutDraft func(lines []CheckoutLine) (Order, error)

// OrderMutation altera o pedido travado; devolver erro aborta a atualização.
type OrderMutation func(order *Order) error

// OrderFilter define a listagem de pedidos de um usuário.
type OrderFilter struct {
	UserID string
	Status OrderStatus
	Page   int
	Limit  int
}

// OrderPage é a resposta de GET /v1/orders.
type OrderPage struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// OrderUpdate contém apenas os campos da allow-list; nil significa "não alterar".
type OrderUpdate struct {
	Status         *OrderStatus   `json:"status"`
	PaymentStatus  *PaymentStatus `json:"paymentStatus"`
	TrackingNumber *string        `json:"trackingNumber"`
}

// Empty informa se nenhum campo da allow-list foi enviado.
func (u OrderUpdate) Empty() bool {
	return u.Status == nil && u.PaymentStatus == nil && u.TrackingNumber == nil
}

// CheckTransitions valida as transições de u a partir do pedido atual.
func (u OrderUpdate) CheckTransitions(current Order) error {
	if u.Status != nil && !current.Status.CanTransitionTo(*u.Status) {
		return fmt.Errorf("status não pode ir de %s para %s", current.Status, *u.Status)
	}
	if u.PaymentStatus != nil && !current.PaymentStatus.CanTransitionTo(*u.PaymentStatus) {
		return fmt.Errorf("paymentStatus não pode ir de %s para %s", current.PaymentStatus, *u.PaymentStatus)
	}
	return nil
}

// Apply copia os campos enviados para o pedido.
func (u OrderUpdate) Apply(o *Order) {
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.PaymentStatus != nil {
		o.PaymentStatus = *u.PaymentStatus
	}
	if u.TrackingNumber != nil {
		o.TrackingNumber = u.TrackingNumber
	}
}
