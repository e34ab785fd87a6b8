package repayment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/debt-tracker/internal/models"
)

const DefaultDays = 30

var (
	ErrUnauthenticated = errors.New("user is not authenticated")
	ErrRetrieval       = errors.New("failed to retrieve plan data")
)

var (
	interestDivisor = decimal.NewFromInt(36000)
	monthsPerYear   = 12
)

// DebtSource отдает активные долги пользователя и их типы.
type DebtSource interface {
	ListActive(ctx context.Context, userID uuid.UUID, filter models.DebtFilter) ([]models.Debt, error)
	DistinctTypes(ctx context.Context, userID uuid.UUID) ([]models.DebtType, error)
}

// PaymentSource отдает платежи по набору долгов пользователя.
type PaymentSource interface {
	ListByDebtIDs(ctx context.Context, userID uuid.UUID, debtIDs []models.DebtID) ([]models.Payment, error)
}

type DebtProjection struct {
	ID             models.DebtID   `json:"id"`
	Name           string          `json:"name"`
	Type           models.DebtType `json:"type"`
	Balance        decimal.Decimal `json:"balance"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
	Interest       decimal.Decimal `json:"interest"`
	Payment        decimal.Decimal `json:"payment"`
	PayoffMonths   int             `json:"payoff_months"`
}

type Summary struct {
	TotalBalance            decimal.Decimal  `json:"totalBalance"`
	ProjectedBalanceAfter   decimal.Decimal  `json:"projectedBalanceAfter"`
	PastPayments            decimal.Decimal  `json:"pastPayments"`
	ProjectedFuturePayments decimal.Decimal  `json:"projectedFuturePayments"`
	ProjectedInterest       decimal.Decimal  `json:"projectedInterest"`
	PayoffMonths            int              `json:"payoffMonths"`
	PayoffEstimate          string           `json:"payoffEstimate"`
	ProjectionStart         time.Time        `json:"projectionStart"`
	ProjectionEnd           time.Time        `json:"projectionEnd"`
	ProjectionDays          int              `json:"projectionDays"`
	TotalDebts              int              `json:"totalDebts"`
	Debts                   []DebtProjection `json:"debts"`
}

type Projector struct {
	debts    DebtSource
	payments PaymentSource
	now      func() time.Time
}

// NewProjector создает расчетчик плана погашения.
func NewProjector(debts DebtSource, payments PaymentSource) *Projector {
	return &Projector{debts: debts, payments: payments, now: time.Now}
}

// PlanSummary строит прогноз погашения активных долгов пользователя на days дней.
func (p *Projector) PlanSummary(ctx context.Context, userID uuid.UUID, days int, filter models.DebtFilter) (Summary, error) {
	if userID == uuid.Nil {
		return Summary{}, ErrUnauthenticated
	}
	if days <= 0 {
		days = DefaultDays
	}

	debts, err := p.debts.ListActive(ctx, userID, filter)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: debts: %w", ErrRetrieval, err)
	}

	var payments []models.Payment
	if len(debts) > 0 {
		ids := make([]models.DebtID, 0, len(debts))
		for _, debt := range debts {
			ids = append(ids, debt.ID)
		}

		payments, err = p.payments.ListByDebtIDs(ctx, userID, ids)
		if err != nil {
			return Summary{}, fmt.Errorf("%w: payments: %w", ErrRetrieval, err)
		}
	}

	return Project(debts, payments, days, p.now()), nil
}

// DebtTypes возвращает отсортированный список типов, встречающихся в долгах пользователя.
func (p *Projector) DebtTypes(ctx context.Context, userID uuid.UUID) ([]models.DebtType, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	types, err := p.debts.DistinctTypes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: debt types: %w", ErrRetrieval, err)
	}

	return distinctTypes(types), nil
}

// Project считает агрегаты прогноза без обращения к хранилищу.
func Project(debts []models.Debt, payments []models.Payment, days int, now time.Time) Summary {
	summary := Summary{
		TotalBalance:            decimal.Zero,
		ProjectedBalanceAfter:   decimal.Zero,
		PastPayments:            decimal.Zero,
		ProjectedFuturePayments: decimal.Zero,
		ProjectedInterest:       decimal.Zero,
		ProjectionStart:         now,
		ProjectionEnd:           now.Add(time.Duration(days) * 24 * time.Hour),
		ProjectionDays:          days,
		TotalDebts:              len(debts),
		Debts:                   make([]DebtProjection, 0, len(debts)),
	}

	for _, payment := range payments {
		if !payment.PaymentDate.After(now) {
			summary.PastPayments = summary.PastPayments.Add(payment.Amount)
		}
	}

	for _, debt := range debts {
		interest := projectedInterest(debt, days)
		payment := decimal.Min(debt.Balance.Add(interest), debt.MinimumPayment)
		months := payoffMonths(debt)

		summary.TotalBalance = summary.TotalBalance.Add(debt.Balance)
		summary.ProjectedInterest = summary.ProjectedInterest.Add(interest)
		summary.ProjectedFuturePayments = summary.ProjectedFuturePayments.Add(payment)
		if months > summary.PayoffMonths {
			summary.PayoffMonths = months
		}

		summary.Debts = append(summary.Debts, DebtProjection{
			ID:             debt.ID,
			Name:           debt.Name,
			Type:           debt.Type,
			Balance:        debt.Balance,
			InterestRate:   debt.InterestRate,
			MinimumPayment: debt.MinimumPayment,
			Interest:       interest,
			Payment:        payment,
			PayoffMonths:   months,
		})
	}

	summary.ProjectedBalanceAfter = summary.TotalBalance.
		Sub(summary.ProjectedFuturePayments).
		Add(summary.ProjectedInterest)
	summary.PayoffEstimate = FormatPayoff(summary.PayoffMonths)

	return summary
}

// FormatPayoff форматирует число месяцев как "Y yr M mo".
func FormatPayoff(months int) string {
	if months < 0 {
		months = 0
	}
	return fmt.Sprintf("%d yr %d mo", months/monthsPerYear, months%monthsPerYear)
}

// projectedInterest = balance * (rate / 100 / 12 / 30) * days.
func projectedInterest(debt models.Debt, days int) decimal.Decimal {
	return debt.Balance.
		Mul(debt.InterestRate).
		Mul(decimal.NewFromInt(int64(days))).
		Div(interestDivisor)
}

func payoffMonths(debt models.Debt) int {
	if !debt.Balance.IsPositive() {
		return 0
	}

	divisor := decimal.Max(debt.MinimumPayment, decimal.NewFromInt(1))
	return int(debt.Balance.Div(divisor).Ceil().IntPart())
}

func distinctTypes(types []models.DebtType) []models.DebtType {
	seen := make(map[models.DebtType]struct{}, len(types))
	result := make([]models.DebtType, 0, len(types))
	for _, t := range types {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
