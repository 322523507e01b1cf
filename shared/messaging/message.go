package messaging

import (
	"encoding/json"
	"time"

	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/pkg/errors"
)

// Header keys carried on every saga message. Headers are the only channel for
// correlation data the payload does not already carry.
const (
	HeaderOrderID = "OrderId"
	HeaderReason  = "Reason"
)

var (
	// ErrMissingOrderID marks a message without a usable OrderId header.
	// Non-retryable: redelivering the same message cannot fix it.
	ErrMissingOrderID = errors.New("missing or unparseable OrderId header")
)

// MalformedPayloadError marks a payload that cannot be decoded for its
// declared type. Non-retryable for the same reason as ErrMissingOrderID.
type MalformedPayloadError struct {
	Type  string
	Cause error
}

func (e *MalformedPayloadError) Error() string {
	return "malformed payload for message type " + e.Type + ": " + e.Cause.Error()
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Cause
}

// IsNonRetryable reports whether an error can never succeed on redelivery.
func IsNonRetryable(err error) bool {
	var malformed *MalformedPayloadError
	return errors.Is(err, ErrMissingOrderID) || errors.As(err, &malformed)
}

// Message is the saga envelope exchanged between the orchestrator and the
// step handlers. The JSON field set is the on-wire contract and must not
// change shape.
type Message struct {
	ID        models.ID         `json:"id"`
	Type      string            `json:"type"`
	Payload   json.RawMessage   `json:"payload"`
	Headers   map[string]string `json:"headers"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewMessage creates a message of the given type, marshaling the payload.
func NewMessage(msgType string, payload interface{}) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s payload", msgType)
	}

	return &Message{
		ID:        models.GenerateUUID(),
		Type:      msgType,
		Payload:   raw,
		Headers:   make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// WithHeader sets a header and returns the message for chaining.
func (m *Message) WithHeader(key, value string) *Message {
	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}
	m.Headers[key] = value
	return m
}

// WithOrderID sets the mandatory correlation header.
func (m *Message) WithOrderID(orderID models.ID) *Message {
	return m.WithHeader(HeaderOrderID, orderID.String())
}

// Header returns a header value
func (m *Message) Header(key string) (string, bool) {
	v, ok := m.Headers[key]
	return v, ok
}

// OrderID extracts the correlation order id from the headers. A missing or
// empty header yields ErrMissingOrderID.
func (m *Message) OrderID() (models.ID, error) {
	v, ok := m.Headers[HeaderOrderID]
	if !ok || v == "" {
		return "", ErrMissingOrderID
	}
	return models.ID(v), nil
}

// UnmarshalPayload decodes the payload into the given receiver. Decode
// failures are wrapped as MalformedPayloadError.
func (m *Message) UnmarshalPayload(v interface{}) error {
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return &MalformedPayloadError{Type: m.Type, Cause: err}
	}
	return nil
}

// ToJSON encodes the message for the wire
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON decodes a wire message
func FromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal saga message")
	}
	if msg.Headers == nil {
		msg.Headers = make(map[string]string)
	}
	return &msg, nil
}
