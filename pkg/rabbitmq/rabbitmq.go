package rabbitmq

import (
	"errors"
	"fmt"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ErrDiscard tells the consumer to drop a message instead of requeueing it.
// Handlers wrap it for payloads that can never be processed.
var ErrDiscard = errors.New("discard message")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     Config
	logger  *zap.Logger
}

// Config holds RabbitMQ connection details and topology names.
type Config struct {
	URL string
	// Exchange is the topic exchange events are published to.
	Exchange string
	// Queue receives completion messages from other services.
	Queue string
}

// DefaultConfig returns the topology used by the activity service.
func DefaultConfig(url string) Config {
	return Config{
		URL:      url,
		Exchange: "activity",
		Queue:    "session_completed_queue",
	}
}

// NewClient connects to RabbitMQ, opens a channel and declares the exchange
// and the inbound queue.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("RabbitMQ client connected",
		zap.String("exchange", cfg.Exchange),
		zap.String("queue", cfg.Queue),
	)

	return &Client{
		conn:    conn,
		channel: ch,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func declare(ch *amqp.Channel, cfg Config) error {
	if cfg.Exchange != "" {
		err := ch.ExchangeDeclare(
			cfg.Exchange, // name
			"topic",      // kind
			true,         // durable
			false,        // auto-deleted
			false,        // internal
			false,        // no-wait
			nil,          // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
		}
	}
	if cfg.Queue != "" {
		_, err := ch.QueueDeclare(
			cfg.Queue, // name
			true,      // durable
			false,     // delete when unused
			false,     // exclusive
			false,     // no-wait
			nil,       // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
		}
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish sends a persistent JSON message.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	err := c.channel.Publish(
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Debug("event published", zap.String("routing_key", routingKey), zap.Int("bytes", len(body)))
	return nil
}

// ConsumeCompletions starts a goroutine that feeds messages from the
// completion queue to handler. Handled messages are acked; failures are
// requeued unless the error wraps ErrDiscard.
func (c *Client) ConsumeCompletions(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.cfg.Queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("waiting for completion messages", zap.String("queue", c.cfg.Queue))

	go func() {
		for msg := range msgs {
			Settle(msg, handler(msg), c.logger)
		}
	}()

	return nil
}

// Acknowledger is the part of amqp.Delivery used to settle a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Settle acks msg when err is nil, otherwise nacks it, requeueing unless err
// wraps ErrDiscard.
func Settle(msg Acknowledger, err error, logger *zap.Logger) {
	if err == nil {
		if ackErr := msg.Ack(false); ackErr != nil {
			logger.Warn("failed to ack message", zap.Error(ackErr))
		}
		return
	}

	requeue := !errors.Is(err, ErrDiscard)
	logger.Warn("failed to process message", zap.Bool("requeue", requeue), zap.Error(err))
	if nackErr := msg.Nack(false, requeue); nackErr != nil {
		logger.Warn("failed to nack message", zap.Error(nackErr))
	}
}
