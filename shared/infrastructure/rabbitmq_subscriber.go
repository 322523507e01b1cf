package infrastructure

import (
	"context"
	"log/slog"
	"time"

	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/LuanFernandes23/SagaPattern/shared/telemetry"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/attribute"
)

var _ messaging.Subscriber = (*RabbitMQSubscriber)(nil)

// RabbitMQSubscriber consumes a durable queue bound to the saga fanout
// exchange. Prefetch is one, so a queue processes strictly one message at a
// time in delivery order. Handler failures nack without requeue: redelivering
// a deterministically failing message would loop forever, so rejected
// messages go to the dead-letter sink instead.
type RabbitMQSubscriber struct {
	conn       *RabbitMQConnection
	exchange   string
	queue      string
	deadLetter messaging.DeadLetterSink
	logger     *slog.Logger
}

// NewRabbitMQSubscriber creates a subscriber for the given queue. The
// dead-letter sink may be nil, in which case rejected messages are only
// logged.
func NewRabbitMQSubscriber(
	conn *RabbitMQConnection,
	exchange string,
	queue string,
	deadLetter messaging.DeadLetterSink,
	logger *slog.Logger,
) *RabbitMQSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &RabbitMQSubscriber{
		conn:       conn,
		exchange:   exchange,
		queue:      queue,
		deadLetter: deadLetter,
		logger:     logger,
	}
}

// Subscribe binds the queue and blocks serving deliveries until the context
// is cancelled or the delivery stream closes.
func (s *RabbitMQSubscriber) Subscribe(ctx context.Context, handler messaging.Handler) error {
	ch, err := s.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := declareSagaExchange(ch, s.exchange); err != nil {
		return err
	}

	q, err := ch.QueueDeclare(
		s.queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to declare queue %s", s.queue)
	}

	if err := ch.QueueBind(q.Name, "", s.exchange, false, nil); err != nil {
		return errors.Wrapf(err, "failed to bind queue %s to exchange %s", q.Name, s.exchange)
	}

	// One unacked message at a time: ordering within the queue depends on it.
	if err := ch.Qos(1, 0, false); err != nil {
		return errors.Wrap(err, "failed to set prefetch")
	}

	deliveries, err := ch.ConsumeWithContext(ctx,
		q.Name,
		handler.HandlerID(), // consumer tag
		false,               // auto-ack
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to consume queue %s", q.Name)
	}

	s.logger.Info("subscription started", "queue", q.Name, "handler", handler.HandlerID())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.Errorf("delivery stream for queue %s closed", q.Name)
			}
			s.serve(ctx, handler, delivery)
		}
	}
}

func (s *RabbitMQSubscriber) serve(ctx context.Context, handler messaging.Handler, delivery amqp.Delivery) {
	started := time.Now()

	msg, err := messaging.FromJSON(delivery.Body)
	if err != nil {
		s.reject(ctx, delivery, &messaging.Message{Payload: delivery.Body}, err)
		return
	}

	err = handler.Handle(ctx, msg)

	telemetry.RecordHistogram(ctx, "saga_message_handle_seconds",
		"Time spent handling one delivered message",
		time.Since(started).Seconds(),
		attribute.String("queue", s.queue),
		attribute.String("message_type", msg.Type),
	)

	if err != nil {
		s.logger.Error("handler failed",
			"queue", s.queue,
			"message_id", msg.ID,
			"message_type", msg.Type,
			"non_retryable", messaging.IsNonRetryable(err),
			"error", err,
		)
		s.reject(ctx, delivery, msg, err)
		return
	}

	if err := delivery.Ack(false); err != nil {
		s.logger.Error("failed to ack message", "queue", s.queue, "message_id", msg.ID, "error", err)
	}
}

func (s *RabbitMQSubscriber) reject(ctx context.Context, delivery amqp.Delivery, msg *messaging.Message, cause error) {
	if s.deadLetter != nil {
		if err := s.deadLetter.Store(ctx, msg, cause); err != nil {
			s.logger.Error("failed to store dead letter", "queue", s.queue, "error", err)
		}
	}

	telemetry.RecordCounter(ctx, "saga_messages_rejected_total",
		"Messages negatively acknowledged without requeue", 1,
		attribute.String("queue", s.queue),
	)

	if err := delivery.Nack(false, false); err != nil {
		s.logger.Error("failed to nack message", "queue", s.queue, "error", err)
	}
}
