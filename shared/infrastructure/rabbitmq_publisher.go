package infrastructure

import (
	"context"

	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

var _ messaging.Publisher = (*RabbitMQPublisher)(nil)

// RabbitMQPublisher publishes saga messages to a durable fanout exchange, so
// every bound queue receives every message. Messages are persistent; a broker
// restart must not lose in-flight saga state.
type RabbitMQPublisher struct {
	conn     *RabbitMQConnection
	exchange string
}

// NewRabbitMQPublisher creates a publisher for the given exchange
func NewRabbitMQPublisher(conn *RabbitMQConnection, exchange string) *RabbitMQPublisher {
	return &RabbitMQPublisher{conn: conn, exchange: exchange}
}

// Publish sends each message to the fanout exchange, stopping at the first
// failure so the caller knows the saga stalled.
func (p *RabbitMQPublisher) Publish(ctx context.Context, msgs ...*messaging.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := declareSagaExchange(ch, p.exchange); err != nil {
		return err
	}

	for _, msg := range msgs {
		body, err := msg.ToJSON()
		if err != nil {
			return err
		}

		err = ch.PublishWithContext(ctx,
			p.exchange,
			"", // fanout ignores the routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID.String(),
				Type:         msg.Type,
				Timestamp:    msg.CreatedAt,
				Body:         body,
			},
		)
		if err != nil {
			return errors.Wrapf(err, "failed to publish %s to exchange %s", msg.Type, p.exchange)
		}
	}

	return nil
}

func declareSagaExchange(ch *amqp.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	return errors.Wrapf(err, "failed to declare exchange %s", exchange)
}
