package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"example.com/debt-tracker/internal/config"
)

const publishTimeout = 5 * time.Second

type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	logger   *slog.Logger
}

// NewClient подключается к RabbitMQ и объявляет exchange и очередь событий.
func NewClient(cfg config.AMQPConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:     conn,
		channel:  channel,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
		logger:   logger,
	}

	if err := client.declare(cfg.WorkerPrefetch); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

func (c *Client) declare(prefetch int) error {
	if err := c.channel.ExchangeDeclare(c.exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := c.channel.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Ключ маршрутизации совпадает с именем очереди.
	if err := c.channel.QueueBind(c.queue, c.queue, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	if prefetch > 0 {
		if err := c.channel.Qos(prefetch, 0, false); err != nil {
			return fmt.Errorf("set qos: %w", err)
		}
	}

	return nil
}

// PublishPaymentRecorded публикует событие как persistent-сообщение.
func (c *Client) PublishPaymentRecorded(ctx context.Context, msg PaymentRecorded) error {
	body, err := msg.encode()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(ctx, c.exchange, c.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.Timestamp,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.logger.DebugContext(ctx, "payment event published",
		slog.Int64("payment_id", int64(msg.PaymentID)),
		slog.String("exchange", c.exchange),
	)
	return nil
}

// Consume читает события из очереди до отмены контекста.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "consuming payment events", slog.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if err := process(ctx, delivery.Body, delivery, handler, c.logger); err != nil {
				return err
			}
		}
	}
}

// Close закрывает канал и соединение.
func (c *Client) Close() error {
	var chErr error
	if c.channel != nil {
		chErr = c.channel.Close()
	}
	if c.conn != nil {
		return errors.Join(chErr, c.conn.Close())
	}
	return chErr
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// process подтверждает доставку: битые сообщения отбрасываются, ошибки обработчика возвращают сообщение в очередь.
func process(ctx context.Context, body []byte, ack acknowledger, handler Handler, logger *slog.Logger) error {
	msg, err := decodePaymentRecorded(body)
	if err != nil {
		logger.ErrorContext(ctx, "drop malformed payment event", slog.String("error", err.Error()))
		return ack.Nack(false, false)
	}

	if err := handler(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "payment event handler failed",
			slog.Int64("payment_id", int64(msg.PaymentID)),
			slog.String("error", err.Error()),
		)
		return ack.Nack(false, true)
	}

	return ack.Ack(false)
}
