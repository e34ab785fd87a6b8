package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"example.com/debt-tracker/internal/auth"
	"example.com/debt-tracker/internal/models"
	"example.com/debt-tracker/internal/repository"
)

const (
	defaultStatsMonths = 6
	maxStatsMonths     = 24
)

type StatsStore interface {
	Overview(ctx context.Context, userID uuid.UUID) (repository.OverviewStats, error)
	BalanceByType(ctx context.Context, userID uuid.UUID) ([]repository.TypeBalance, error)
	MonthlyPayments(ctx context.Context, userID uuid.UUID, months int) ([]repository.MonthlyPayments, error)
}

type StatsHandler struct {
	Stats StatsStore
}

// NewStatsHandler создает обработчик статистики дашборда.
func NewStatsHandler(stats StatsStore) *StatsHandler {
	return &StatsHandler{Stats: stats}
}

type OverviewResponse struct {
	TotalDebts          int             `json:"total_debts"`
	ActiveDebts         int             `json:"active_debts"`
	TotalBalance        decimal.Decimal `json:"total_balance"`
	TotalMinimumPayment decimal.Decimal `json:"total_minimum_payment"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	PaidThisMonth       decimal.Decimal `json:"paid_this_month"`
}

type TypeBalanceItem struct {
	Type    models.DebtType `json:"type"`
	Count   int             `json:"count"`
	Balance decimal.Decimal `json:"balance"`
}

type MonthlyPaymentsItem struct {
	Month  string          `json:"month"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type DashboardResponse struct {
	Overview        OverviewResponse      `json:"overview"`
	ByType          []TypeBalanceItem     `json:"by_type"`
	MonthlyPayments []MonthlyPaymentsItem `json:"monthly_payments"`
}

// Overview возвращает сводку по долгам и платежам.
func (h *StatsHandler) Overview(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	stats, err := h.Stats.Overview(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toOverviewResponse(stats))
}

// ByType возвращает остатки активных долгов по типам.
func (h *StatsHandler) ByType(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	items, err := h.Stats.BalanceByType(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]TypeBalanceItem{"types": toTypeBalanceItems(items)})
}

// MonthlyPayments возвращает суммы платежей по месяцам.
func (h *StatsHandler) MonthlyPayments(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	months, err := parseMonths(c.QueryParam("months"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	items, err := h.Stats.MonthlyPayments(c.Request().Context(), userID, months)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid months")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]MonthlyPaymentsItem{"months": toMonthlyItems(items)})
}

// Dashboard собирает данные дашборда параллельными запросами.
func (h *StatsHandler) Dashboard(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	months, err := parseMonths(c.QueryParam("months"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	var (
		overview repository.OverviewStats
		byType   []repository.TypeBalance
		monthly  []repository.MonthlyPayments
	)

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		overview, err = h.Stats.Overview(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		byType, err = h.Stats.BalanceByType(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		monthly, err = h.Stats.MonthlyPayments(ctx, userID, months)
		return err
	})

	if err := g.Wait(); err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, DashboardResponse{
		Overview:        toOverviewResponse(overview),
		ByType:          toTypeBalanceItems(byType),
		MonthlyPayments: toMonthlyItems(monthly),
	})
}

func parseMonths(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultStatsMonths, nil
	}

	months, err := strconv.Atoi(raw)
	if err != nil || months <= 0 {
		return 0, errors.New("invalid months")
	}
	if months > maxStatsMonths {
		months = maxStatsMonths
	}
	return months, nil
}

func toOverviewResponse(stats repository.OverviewStats) OverviewResponse {
	return OverviewResponse{
		TotalDebts:          stats.TotalDebts,
		ActiveDebts:         stats.ActiveDebts,
		TotalBalance:        stats.TotalBalance,
		TotalMinimumPayment: stats.TotalMinimumPayment,
		TotalPaid:           stats.TotalPaid,
		PaidThisMonth:       stats.PaidThisMonth,
	}
}

func toTypeBalanceItems(items []repository.TypeBalance) []TypeBalanceItem {
	response := make([]TypeBalanceItem, 0, len(items))
	for _, item := range items {
		response = append(response, TypeBalanceItem{Type: item.Type, Count: item.Count, Balance: item.Balance})
	}
	return response
}

func toMonthlyItems(items []repository.MonthlyPayments) []MonthlyPaymentsItem {
	response := make([]MonthlyPaymentsItem, 0, len(items))
	for _, item := range items {
		response = append(response, MonthlyPaymentsItem{
			Month:  item.Month.Format("2006-01"),
			Count:  item.Count,
			Amount: item.Amount,
		})
	}
	return response
}
