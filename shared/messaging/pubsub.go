package messaging

import "context"

// Publisher delivers messages to every queue bound to the saga exchange
// (fanout). Publish failures propagate to the caller; an unpublished event
// stalls the saga, so they are never swallowed.
type Publisher interface {
	Publish(ctx context.Context, msgs ...*Message) error
}

// Handler processes one delivered message. Returning an error causes a
// negative acknowledgment of that message only; the delivery loop keeps
// running.
type Handler interface {
	HandlerID() string
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc struct {
	id string
	fn func(ctx context.Context, msg *Message) error
}

func NewHandlerFunc(id string, fn func(ctx context.Context, msg *Message) error) *HandlerFunc {
	return &HandlerFunc{id: id, fn: fn}
}

func (h *HandlerFunc) HandlerID() string {
	return h.id
}

func (h *HandlerFunc) Handle(ctx context.Context, msg *Message) error {
	return h.fn(ctx, msg)
}

// Subscriber serves a durable named queue with at-least-once delivery and a
// prefetch of exactly one in-flight message. Subscribe blocks until the
// context is cancelled; a handler failure negatively acknowledges the message
// without requeueing it (deterministic failures must not loop forever).
type Subscriber interface {
	Subscribe(ctx context.Context, handler Handler) error
}

// DeadLetterSink receives messages that were negatively acknowledged, together
// with the error that caused the rejection.
type DeadLetterSink interface {
	Store(ctx context.Context, msg *Message, cause error) error
}
