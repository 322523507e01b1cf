package infrastructure

import (
	"context"
	"log/slog"
	"time"

	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/pkg/errors"
)

var _ messaging.Subscriber = (*SQSSubscriber)(nil)

// SQSSubscriber consumes one SQS queue subscribed to the saga SNS topic. The
// queue subscription must have raw message delivery enabled so the body is
// the bare saga envelope. Receives are long-polled one message at a time,
// mirroring the single in-flight delivery the AMQP transport guarantees.
//
// A handler failure deletes the message after handing it to the dead-letter
// sink; leaving it for SQS redelivery would retry deterministic failures
// forever.
type SQSSubscriber struct {
	client     *sqs.Client
	queueURL   string
	deadLetter messaging.DeadLetterSink
	logger     *slog.Logger

	waitTimeSeconds     int32
	sleepTimeAfterError time.Duration
}

// NewSQSSubscriber creates a subscriber for the given queue URL
func NewSQSSubscriber(
	client *sqs.Client,
	queueURL string,
	deadLetter messaging.DeadLetterSink,
	logger *slog.Logger,
) *SQSSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQSSubscriber{
		client:              client,
		queueURL:            queueURL,
		deadLetter:          deadLetter,
		logger:              logger,
		waitTimeSeconds:     15,
		sleepTimeAfterError: 5 * time.Second,
	}
}

// Subscribe blocks polling the queue until the context is cancelled
func (s *SQSSubscriber) Subscribe(ctx context.Context, handler messaging.Handler) error {
	s.logger.Info("subscription started", "queue_url", s.queueURL, "handler", handler.HandlerID())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.poll(ctx, handler); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			s.logger.Error("receive failed", "queue_url", s.queueURL, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.sleepTimeAfterError):
			}
		}
	}
}

func (s *SQSSubscriber) poll(ctx context.Context, handler messaging.Handler) error {
	output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(s.queueURL),
		MaxNumberOfMessages: 1,
		WaitTimeSeconds:     s.waitTimeSeconds,
	})
	if err != nil {
		return errors.Wrap(err, "failed to receive message from SQS")
	}

	for _, raw := range output.Messages {
		msg, err := messaging.FromJSON([]byte(*raw.Body))
		if err != nil {
			s.toDeadLetter(ctx, &messaging.Message{Payload: []byte(*raw.Body)}, err)
			if err := s.delete(ctx, raw.ReceiptHandle); err != nil {
				return err
			}
			continue
		}

		if err := handler.Handle(ctx, msg); err != nil {
			s.logger.Error("handler failed",
				"queue_url", s.queueURL,
				"message_id", msg.ID,
				"message_type", msg.Type,
				"error", err,
			)
			s.toDeadLetter(ctx, msg, err)
		}

		if err := s.delete(ctx, raw.ReceiptHandle); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQSSubscriber) toDeadLetter(ctx context.Context, msg *messaging.Message, cause error) {
	if s.deadLetter == nil {
		return
	}
	if err := s.deadLetter.Store(ctx, msg, cause); err != nil {
		s.logger.Error("failed to store dead letter", "queue_url", s.queueURL, "error", err)
	}
}

func (s *SQSSubscriber) delete(ctx context.Context, receiptHandle *string) error {
	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: receiptHandle,
	})
	return errors.Wrap(err, "failed to delete message from SQS")
}
