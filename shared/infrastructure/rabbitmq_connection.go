package infrastructure

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// RabbitMQConnection manages a single AMQP connection shared by the
// publishers and subscribers of one process. Dialing is lazy: nothing
// connects until the first Channel call, and a connection lost to the broker
// is re-established on the next call.
type RabbitMQConnection struct {
	mux    sync.Mutex
	url    string
	conn   *amqp.Connection
	logger *slog.Logger
}

// NewRabbitMQConnection creates an unconnected handle for the given AMQP URL
func NewRabbitMQConnection(url string, logger *slog.Logger) *RabbitMQConnection {
	if logger == nil {
		logger = slog.Default()
	}
	return &RabbitMQConnection{url: url, logger: logger}
}

// Channel returns a fresh channel, dialing the broker first if needed.
// Channels are cheap and single-owner; callers close the channel, not the
// connection.
func (c *RabbitMQConnection) Channel() (*amqp.Channel, error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	if err := c.ensureConnected(); err != nil {
		return nil, err
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open channel")
	}
	return ch, nil
}

func (c *RabbitMQConnection) ensureConnected() error {
	if c.conn != nil && !c.conn.IsClosed() {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		conn, err := amqp.Dial(c.url)
		if err == nil {
			c.conn = conn
			c.logger.Info("connected to broker", "attempt", attempt)
			return nil
		}

		lastErr = err
		c.logger.Warn("broker connection failed",
			"attempt", attempt,
			"max_attempts", connectAttempts,
			"error", err,
		)
		if attempt < connectAttempts {
			time.Sleep(connectBackoff)
		}
	}

	return errors.Wrapf(lastErr, "failed to connect to broker after %d attempts", connectAttempts)
}

// Close closes the underlying connection if one was established
func (c *RabbitMQConnection) Close() error {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
