package events

import (
	"context"
	"log/slog"
)

// Handler обрабатывает событие о платеже.
type Handler func(ctx context.Context, msg PaymentRecorded) error

// Publisher отправляет события о платежах.
type Publisher interface {
	PublishPaymentRecorded(ctx context.Context, msg PaymentRecorded) error
}

// InlinePublisher обрабатывает события в процессе сервера, когда брокер не настроен.
type InlinePublisher struct {
	handler Handler
	logger  *slog.Logger
}

// NewInlinePublisher создает синхронного издателя поверх обработчика.
func NewInlinePublisher(handler Handler, logger *slog.Logger) *InlinePublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &InlinePublisher{handler: handler, logger: logger}
}

// PublishPaymentRecorded сразу вызывает обработчик.
func (p *InlinePublisher) PublishPaymentRecorded(ctx context.Context, msg PaymentRecorded) error {
	if err := p.handler(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, "payment event handler failed",
			slog.String("user_id", msg.UserID.String()),
			slog.Int64("payment_id", int64(msg.PaymentID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}
