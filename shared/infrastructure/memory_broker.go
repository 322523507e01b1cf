package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/pkg/errors"
)

var _ messaging.Publisher = (*MemoryBroker)(nil)

// MemoryBroker is an in-process rendition of the saga fanout exchange: every
// published message is delivered to every declared queue, and each queue is
// consumed sequentially in publish order. Messages cross queue boundaries as
// serialized bytes so consumers never share payload memory with the
// publisher.
type MemoryBroker struct {
	mux    sync.Mutex
	queues map[string]*memoryQueue
	logger *slog.Logger
}

type memoryQueue struct {
	name       string
	deliveries chan []byte
	deadLetter messaging.DeadLetterSink
	broker     *MemoryBroker
}

// NewMemoryBroker creates an empty broker
func NewMemoryBroker(logger *slog.Logger) *MemoryBroker {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryBroker{
		queues: make(map[string]*memoryQueue),
		logger: logger,
	}
}

// Queue declares a queue bound to the fanout and returns its subscriber.
// Declaring the same name twice returns the same queue.
func (b *MemoryBroker) Queue(name string, deadLetter messaging.DeadLetterSink) messaging.Subscriber {
	b.mux.Lock()
	defer b.mux.Unlock()

	if q, ok := b.queues[name]; ok {
		return q
	}

	q := &memoryQueue{
		name:       name,
		deliveries: make(chan []byte, 1024),
		deadLetter: deadLetter,
		broker:     b,
	}
	b.queues[name] = q
	return q
}

// Publish fans each message out to every declared queue
func (b *MemoryBroker) Publish(ctx context.Context, msgs ...*messaging.Message) error {
	b.mux.Lock()
	queues := make([]*memoryQueue, 0, len(b.queues))
	for _, q := range b.queues {
		queues = append(queues, q)
	}
	b.mux.Unlock()

	for _, msg := range msgs {
		body, err := msg.ToJSON()
		if err != nil {
			return err
		}
		for _, q := range queues {
			select {
			case q.deliveries <- body:
			case <-ctx.Done():
				return ctx.Err()
			default:
				return errors.Errorf("queue %s is full", q.name)
			}
		}
	}

	return nil
}

// Subscribe blocks serving deliveries one at a time until the context is
// cancelled. Handler failures go to the dead-letter sink and the loop moves
// on, matching nack-without-requeue.
func (q *memoryQueue) Subscribe(ctx context.Context, handler messaging.Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case body := <-q.deliveries:
			msg, err := messaging.FromJSON(body)
			if err != nil {
				q.reject(ctx, &messaging.Message{Payload: body}, err)
				continue
			}
			if err := handler.Handle(ctx, msg); err != nil {
				q.broker.logger.Error("handler failed",
					"queue", q.name,
					"message_id", msg.ID,
					"message_type", msg.Type,
					"error", err,
				)
				q.reject(ctx, msg, err)
			}
		}
	}
}

func (q *memoryQueue) reject(ctx context.Context, msg *messaging.Message, cause error) {
	if q.deadLetter == nil {
		return
	}
	if err := q.deadLetter.Store(ctx, msg, cause); err != nil {
		q.broker.logger.Error("failed to store dead letter", "queue", q.name, "error", err)
	}
}

var _ messaging.DeadLetterSink = (*MemoryDeadLetterSink)(nil)

// DeadLetter is one rejected message together with its cause
type DeadLetter struct {
	Message *messaging.Message
	Cause   error
}

// MemoryDeadLetterSink collects rejected messages in memory
type MemoryDeadLetterSink struct {
	mux     sync.Mutex
	entries []DeadLetter
}

// NewMemoryDeadLetterSink creates an empty sink
func NewMemoryDeadLetterSink() *MemoryDeadLetterSink {
	return &MemoryDeadLetterSink{}
}

// Store records the rejected message
func (s *MemoryDeadLetterSink) Store(_ context.Context, msg *messaging.Message, cause error) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.entries = append(s.entries, DeadLetter{Message: msg, Cause: cause})
	return nil
}

// Entries returns a snapshot of everything stored so far
func (s *MemoryDeadLetterSink) Entries() []DeadLetter {
	s.mux.Lock()
	defer s.mux.Unlock()
	out := make([]DeadLetter, len(s.entries))
	copy(out, s.entries)
	return out
}
