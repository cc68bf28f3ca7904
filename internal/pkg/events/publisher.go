package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"showcase/internal/domain"
)

// Tópicos publicados pela loja (o prefixo vem de KAFKA_TOPIC_PREFIX).
const (
	TopicOrderCreated       = "order-created"
	TopicOrderStatusUpdated = "order-status-updated"
)

// OrderEvent é o corpo JSON das mensagens de pedido.
type OrderEvent struct {
	Type          string               `json:"type"`
	OrderID       string               `json:"orderId"`
	UserID        string               `json:"user"`
	Status        domain.OrderStatus   `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	TotalAmount   decimal.Decimal      `json:"totalAmount"`
	Items         int                  `json:"items"`
	OccurredAt    time.Time            `json:"occurredAt"`
}

// NewOrderEvent monta o evento a partir do pedido gravado.
func NewOrderEvent(eventType string, o domain.Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       o.ID,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		Items:         len(o.Items),
		OccurredAt:    at,
	}
}

// Publisher entrega eventos de domínio a um broker.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
	Close() error
}

// KafkaPublisher usa um único kafka.Writer; o tópico vai em cada mensagem.
type KafkaPublisher struct {
	writer *kafka.Writer
	prefix string
}

// NewKafkaPublisher cria o writer com a configuração mínima (ack do líder).
func NewKafkaPublisher(brokers []string, prefix string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		prefix: prefix,
	}
}

// TopicName aplica o prefixo configurado ao tópico.
func TopicName(prefix, topic string) string {
	if prefix == "" {
		return topic
	}
	return prefix + "." + topic
}

// Publish serializa o payload em JSON e escreve uma mensagem com a chave informada.
// Mensagens com a mesma chave caem na mesma partição.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: TopicName(p.prefix, topic),
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}

// Close descarrega mensagens pendentes e fecha as conexões.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher descarta eventos; usado quando KAFKA_BROKERS está vazio.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                                { return nil }
