package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/frahmantamala/expense-tracker/internal"
)

// ConsumerChannel is the part of *amqp.Channel the consumer uses.
type ConsumerChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, isInternal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

var ErrDeliveriesClosed = errors.New("delivery channel closed")

type Consumer struct {
	conn    io.Closer
	channel ConsumerChannel
	queue   string
	logger  *slog.Logger
}

// DialConsumer connects and binds queue to the notification exchange.
func DialConsumer(cfg internal.NotificationConfig, queue string, logger *slog.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c, err := NewConsumer(conn, ch, cfg.Exchange, cfg.RoutingKey, queue, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

func NewConsumer(conn io.Closer, ch ConsumerChannel, exchange, routingKey, queue string, logger *slog.Logger) (*Consumer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	return &Consumer{conn: conn, channel: ch, queue: queue, logger: logger}, nil
}

// Run delivers notifications to handle until ctx is done. Malformed messages are
// dropped; a failed handle requeues the message.
func (c *Consumer) Run(ctx context.Context, handle func(context.Context, BudgetNotification) error) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.Info("consuming budget notifications", "queue", c.queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			c.process(ctx, d, handle)
		}
	}
}

func (c *Consumer) process(ctx context.Context, d amqp.Delivery, handle func(context.Context, BudgetNotification) error) {
	var n BudgetNotification
	if err := json.Unmarshal(d.Body, &n); err != nil {
		c.logger.Error("dropping malformed notification", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := handle(ctx, n); err != nil {
		c.logger.Error("failed to handle notification", "user_id", n.UserID, "error", err)
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
