package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/debt-tracker/internal/auth"
	"example.com/debt-tracker/internal/models"
	"example.com/debt-tracker/internal/notifications"
	"example.com/debt-tracker/internal/repository"
)

const upcomingWindowDays = 7

type DebtStore interface {
	Create(ctx context.Context, userID uuid.UUID, input repository.DebtInput) (models.Debt, error)
	Update(ctx context.Context, userID uuid.UUID, id models.DebtID, update repository.DebtUpdate) (models.Debt, error)
	Delete(ctx context.Context, userID uuid.UUID, id models.DebtID) error
	GetByID(ctx context.Context, userID uuid.UUID, id models.DebtID) (models.Debt, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Debt, error)
	ListUpcoming(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Debt, error)
}

type DebtTypeLister interface {
	DebtTypes(ctx context.Context, userID uuid.UUID) ([]models.DebtType, error)
}

type DebtHandler struct {
	Debts     DebtStore
	TypeIndex DebtTypeLister
	Notifier  notifications.Notifier
}

// NewDebtHandler создает обработчик долгов.
func NewDebtHandler(debts DebtStore, types DebtTypeLister, notifier notifications.Notifier) *DebtHandler {
	return &DebtHandler{Debts: debts, TypeIndex: types, Notifier: notifier}
}

type DebtRequest struct {
	Name           string           `json:"name" validate:"required,max=200"`
	Type           string           `json:"type" validate:"required,debt_type"`
	Balance        *decimal.Decimal `json:"balance" validate:"required"`
	InterestRate   *decimal.Decimal `json:"interest_rate" validate:"required"`
	MinimumPayment *decimal.Decimal `json:"minimum_payment" validate:"required"`
	DueDate        *string          `json:"due_date"`
}

type DebtUpdateRequest struct {
	Name           *string          `json:"name" validate:"omitempty,max=200"`
	Type           *string          `json:"type" validate:"omitempty,debt_type"`
	Balance        *decimal.Decimal `json:"balance"`
	InterestRate   *decimal.Decimal `json:"interest_rate"`
	MinimumPayment *decimal.Decimal `json:"minimum_payment"`
	DueDate        *string          `json:"due_date"`
	IsActive       *bool            `json:"is_active"`
}

type DebtResponse struct {
	ID             models.DebtID   `json:"id"`
	Name           string          `json:"name"`
	Type           models.DebtType `json:"type"`
	Balance        decimal.Decimal `json:"balance"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
	DueDate        string          `json:"due_date"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// List возвращает все долги пользователя, новые первыми.
func (h *DebtHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	debts, err := h.Debts.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]DebtResponse{"debts": toDebtResponses(debts)})
}

// Upcoming возвращает долги со сроком оплаты в ближайшие 7 дней.
func (h *DebtHandler) Upcoming(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	from := today()
	debts, err := h.Debts.ListUpcoming(c.Request().Context(), userID, from, from.AddDate(0, 0, upcomingWindowDays))
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]DebtResponse{"debts": toDebtResponses(debts)})
}

// Types возвращает типы долгов, которые есть у пользователя.
func (h *DebtHandler) Types(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	types, err := h.TypeIndex.DebtTypes(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.DebtType{"types": types})
}

// Create добавляет долг.
func (h *DebtHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req DebtRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	input, err := req.toInput()
	if err != nil {
		return badRequest(c, err.Error())
	}

	debt, err := h.Debts.Create(c.Request().Context(), userID, input)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid debt")
		}
		return serverError(c)
	}

	h.notifyDebtUpdated(userID, debt, "created")
	return c.JSON(http.StatusCreated, toDebtResponse(debt))
}

// Get возвращает долг по идентификатору.
func (h *DebtHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	debtID, ok := parseDebtID(c)
	if !ok {
		return badRequest(c, "invalid debt id")
	}

	debt, err := h.Debts.GetByID(c.Request().Context(), userID, debtID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "debt not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toDebtResponse(debt))
}

// Update частично обновляет долг.
func (h *DebtHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	debtID, ok := parseDebtID(c)
	if !ok {
		return badRequest(c, "invalid debt id")
	}

	var req DebtUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	update, err := req.toUpdate()
	if err != nil {
		return badRequest(c, err.Error())
	}

	debt, err := h.Debts.Update(c.Request().Context(), userID, debtID, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "debt not found")
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "invalid debt")
		}
		return serverError(c)
	}

	h.notifyDebtUpdated(userID, debt, "updated")
	return c.JSON(http.StatusOK, toDebtResponse(debt))
}

// Delete удаляет долг вместе с платежами.
func (h *DebtHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	debtID, ok := parseDebtID(c)
	if !ok {
		return badRequest(c, "invalid debt id")
	}

	if err := h.Debts.Delete(c.Request().Context(), userID, debtID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "debt not found")
		}
		return serverError(c)
	}

	h.notifyDebtUpdated(userID, models.Debt{ID: debtID}, "deleted")
	return c.NoContent(http.StatusNoContent)
}

func (h *DebtHandler) notifyDebtUpdated(userID uuid.UUID, debt models.Debt, action string) {
	if h.Notifier == nil {
		return
	}

	h.Notifier.Notify(userID, notifications.EventDebtUpdated, map[string]any{
		"debt_id": debt.ID,
		"action":  action,
		"balance": debt.Balance,
	})
}

func (r DebtRequest) toInput() (repository.DebtInput, error) {
	input := repository.DebtInput{
		Name:           strings.TrimSpace(r.Name),
		Type:           models.DebtType(r.Type),
		Balance:        *r.Balance,
		InterestRate:   *r.InterestRate,
		MinimumPayment: *r.MinimumPayment,
		DueDate:        today(),
	}

	if input.Name == "" {
		return input, errors.New("name is required")
	}
	if err := validateAmounts(&input.Balance, &input.InterestRate, &input.MinimumPayment); err != nil {
		return input, err
	}

	if r.DueDate != nil && strings.TrimSpace(*r.DueDate) != "" {
		dueDate, err := parseDate(strings.TrimSpace(*r.DueDate))
		if err != nil {
			return input, errors.New("due_date must be YYYY-MM-DD")
		}
		input.DueDate = dueDate
	}

	return input, nil
}

func (r DebtUpdateRequest) toUpdate() (repository.DebtUpdate, error) {
	update := repository.DebtUpdate{
		Balance:        r.Balance,
		InterestRate:   r.InterestRate,
		MinimumPayment: r.MinimumPayment,
		IsActive:       r.IsActive,
	}

	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return update, errors.New("name must not be empty")
		}
		update.Name = &name
	}

	if r.Type != nil {
		debtType := models.DebtType(*r.Type)
		update.Type = &debtType
	}

	if err := validateAmounts(r.Balance, r.InterestRate, r.MinimumPayment); err != nil {
		return update, err
	}

	if r.DueDate != nil {
		dueDate, err := parseDate(strings.TrimSpace(*r.DueDate))
		if err != nil {
			return update, errors.New("due_date must be YYYY-MM-DD")
		}
		update.DueDate = &dueDate
	}

	return update, nil
}

func validateAmounts(balance, rate, minimum *decimal.Decimal) error {
	if balance != nil && (balance.IsNegative() || !models.ValidMoney(*balance)) {
		return errors.New("balance must be a non-negative amount with at most 2 decimal places")
	}
	if rate != nil && (rate.IsNegative() || !models.ValidRate(*rate)) {
		return errors.New("interest_rate must be between 0 and 999.999 with at most 3 decimal places")
	}
	if minimum != nil && (minimum.IsNegative() || !models.ValidMoney(*minimum)) {
		return errors.New("minimum_payment must be a non-negative amount with at most 2 decimal places")
	}
	return nil
}

func toDebtResponse(debt models.Debt) DebtResponse {
	return DebtResponse{
		ID:             debt.ID,
		Name:           debt.Name,
		Type:           debt.Type,
		Balance:        debt.Balance,
		InterestRate:   debt.InterestRate,
		MinimumPayment: debt.MinimumPayment,
		DueDate:        debt.DueDate.Format(dateLayout),
		IsActive:       debt.IsActive,
		CreatedAt:      debt.CreatedAt,
		UpdatedAt:      debt.UpdatedAt,
	}
}

func toDebtResponses(debts []models.Debt) []DebtResponse {
	response := make([]DebtResponse, 0, len(debts))
	for _, debt := range debts {
		response = append(response, toDebtResponse(debt))
	}
	return response
}
