package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Defaults for the event topology.
const (
	DefaultExchange = "gamewish.events"
	DefaultQueue    = "gamewish_events"
)

// ErrNoChannel is returned when the client has no open channel.
var ErrNoChannel = errors.New("RabbitMQ channel is not available")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	log      *zap.Logger
	mu       sync.Mutex // amqp channels are not safe for concurrent publishing
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
	Queue    string
}

// NewClient connects to RabbitMQ and declares a durable topic exchange with
// a queue bound to every routing key.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, cfg.Exchange, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("RabbitMQ client connected", zap.String("exchange", cfg.Exchange), zap.String("queue", cfg.Queue))

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
		log:      log,
	}, nil
}

func declare(ch *amqp.Channel, exchange, queue string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(queue, "#", exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
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

// Ping reports whether the connection is still open.
func (c *Client) Ping(_ context.Context) error {
	if c == nil || c.conn == nil || c.conn.IsClosed() {
		return errors.New("RabbitMQ connection is closed")
	}
	return nil
}

// NewPublishing encodes payload as a persistent JSON message.
func NewPublishing(payload any, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
	}, nil
}

// Publish sends payload to the events exchange under routingKey.
func (c *Client) Publish(routingKey string, payload any) error {
	if c == nil || c.channel == nil {
		return ErrNoChannel
	}

	msg, err := NewPublishing(payload, time.Now())
	if err != nil {
		return err
	}

	c.mu.Lock()
	err = c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		msg,
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	c.log.Debug("event published", zap.String("routing_key", routingKey), zap.ByteString("body", msg.Body))
	return nil
}

// ConsumeEvents delivers every message on the events queue to handler in a
// background goroutine. A nil return acks the message; an error nacks it
// without requeueing so a poison message cannot loop.
func (c *Client) ConsumeEvents(handler func(msg amqp.Delivery) error) error {
	if c == nil || c.channel == nil {
		return ErrNoChannel
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("waiting for events", zap.String("queue", c.queue))

	go func() {
		for msg := range msgs {
			if err := handler(msg); err != nil {
				c.log.Warn("error processing event",
					zap.Uint64("delivery_tag", msg.DeliveryTag),
					zap.String("routing_key", msg.RoutingKey),
					zap.Error(err))
				if nackErr := msg.Nack(false, false); nackErr != nil {
					c.log.Error("error nacking event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.log.Error("error acking event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
			}
		}
	}()

	return nil
}

// LogEvents returns a consumer handler that writes each event to log.
func LogEvents(log *zap.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		if !json.Valid(msg.Body) {
			return fmt.Errorf("event %s is not valid JSON", msg.RoutingKey)
		}
		log.Info("event received", zap.String("routing_key", msg.RoutingKey), zap.ByteString("body", msg.Body))
		return nil
	}
}
