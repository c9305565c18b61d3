package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

// Publisher is satisfied by *amqp.Channel.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQProducer forwards leads by publishing them to the forward queue; the worker does
// the actual delivery.
type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) Forward(ctx context.Context, lead entity.ForwardedLead) error {
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("marshal forwarded lead: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName, // ex.leads
		RoutingKey,   // k.lead_forward
		false,        // Mandatory
		false,        // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    lead.IdempotencyKey,
			Type:         lead.Event,
			Body:         body,
			DeliveryMode: amqp.Persistent, // Mensagem salva no disco
		},
	)
	if err != nil {
		return fmt.Errorf("publish forwarded lead: %w", err)
	}

	return nil
}
