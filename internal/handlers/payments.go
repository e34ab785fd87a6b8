package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/debt-tracker/internal/auth"
	"example.com/debt-tracker/internal/events"
	"example.com/debt-tracker/internal/models"
	"example.com/debt-tracker/internal/notifications"
	"example.com/debt-tracker/internal/repository"
)

type PaymentStore interface {
	Create(ctx context.Context, userID uuid.UUID, debtID models.DebtID, input repository.PaymentInput) (models.Payment, models.Debt, error)
	ListByDebt(ctx context.Context, userID uuid.UUID, debtID models.DebtID) ([]models.Payment, error)
}

type PaymentHandler struct {
	Payments PaymentStore
	Events   events.Publisher
	Notifier notifications.Notifier
	Logger   *slog.Logger
}

// NewPaymentHandler создает обработчик платежей по долгам.
func NewPaymentHandler(payments PaymentStore, publisher events.Publisher, notifier notifications.Notifier, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{Payments: payments, Events: publisher, Notifier: notifier, Logger: logger}
}

type PaymentRequest struct {
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	PaymentDate *string          `json:"payment_date"`
	Note        *string          `json:"note" validate:"omitempty,max=500"`
}

type PaymentResponse struct {
	ID          models.PaymentID `json:"id"`
	DebtID      models.DebtID    `json:"debt_id"`
	Amount      decimal.Decimal  `json:"amount"`
	PaymentDate time.Time        `json:"payment_date"`
	Note        *string          `json:"note,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

type RecordPaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Debt    DebtResponse    `json:"debt"`
}

// List возвращает платежи по долгу, новые первыми.
func (h *PaymentHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	debtID, ok := parseDebtID(c)
	if !ok {
		return badRequest(c, "invalid debt id")
	}

	payments, err := h.Payments.ListByDebt(c.Request().Context(), userID, debtID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "debt not found")
		}
		return serverError(c)
	}

	response := make([]PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		response = append(response, toPaymentResponse(payment))
	}

	return c.JSON(http.StatusOK, map[string][]PaymentResponse{"payments": response})
}

// Create записывает платеж и уменьшает остаток долга.
func (h *PaymentHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	debtID, ok := parseDebtID(c)
	if !ok {
		return badRequest(c, "invalid debt id")
	}

	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	input, err := req.toInput(time.Now().UTC())
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	payment, debt, err := h.Payments.Create(ctx, userID, debtID, input)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "debt not found")
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "invalid payment")
		}
		return serverError(c)
	}

	if h.Notifier != nil {
		h.Notifier.Notify(userID, notifications.EventPaymentRecorded, map[string]any{
			"debt_id":    debt.ID,
			"payment_id": payment.ID,
			"amount":     payment.Amount,
			"balance":    debt.Balance,
		})
	}

	if h.Events != nil {
		// Платеж уже сохранен, ошибка доставки события не отменяет ответ.
		if err := h.Events.PublishPaymentRecorded(ctx, events.NewPaymentRecorded(userID, payment)); err != nil {
			h.Logger.WarnContext(ctx, "payment event not published",
				slog.Int64("payment_id", int64(payment.ID)),
				slog.String("error", err.Error()),
			)
		}
	}

	return c.JSON(http.StatusCreated, RecordPaymentResponse{
		Payment: toPaymentResponse(payment),
		Debt:    toDebtResponse(debt),
	})
}

func (r PaymentRequest) toInput(now time.Time) (repository.PaymentInput, error) {
	input := repository.PaymentInput{
		Amount:      *r.Amount,
		PaymentDate: now,
		Note:        normalizeName(r.Note),
	}

	if !input.Amount.IsPositive() {
		return input, errors.New("amount must be positive")
	}
	if !models.ValidMoney(input.Amount) {
		return input, errors.New("amount must have at most 2 decimal places")
	}

	if r.PaymentDate != nil {
		raw := strings.TrimSpace(*r.PaymentDate)
		if raw != "" {
			paymentDate, err := parsePaymentDate(raw)
			if err != nil {
				return input, errors.New("payment_date must be YYYY-MM-DD or RFC3339")
			}
			input.PaymentDate = paymentDate
		}
	}

	return input, nil
}

func parsePaymentDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}
	return parseDate(value)
}

func toPaymentResponse(payment models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          payment.ID,
		DebtID:      payment.DebtID,
		Amount:      payment.Amount,
		PaymentDate: payment.PaymentDate,
		Note:        payment.Note,
		CreatedAt:   payment.CreatedAt,
	}
}
