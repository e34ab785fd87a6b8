package handlers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/debt-tracker/internal/auth"
	"example.com/debt-tracker/internal/config"
	"example.com/debt-tracker/internal/models"
	"example.com/debt-tracker/internal/repayment"
)

type PlanProjector interface {
	PlanSummary(ctx context.Context, userID uuid.UUID, days int, filter models.DebtFilter) (repayment.Summary, error)
}

type PlanHandler struct {
	Projector  PlanProjector
	Projection config.ProjectionConfig
}

// NewPlanHandler создает обработчик прогноза погашения.
func NewPlanHandler(projector PlanProjector, projection config.ProjectionConfig) *PlanHandler {
	return &PlanHandler{Projector: projector, Projection: projection}
}

type PlanSummaryResponse struct {
	TotalBalance            decimal.Decimal `json:"totalBalance"`
	ProjectedBalanceAfter   decimal.Decimal `json:"projectedBalanceAfter"`
	PastPayments            decimal.Decimal `json:"pastPayments"`
	ProjectedFuturePayments decimal.Decimal `json:"projectedFuturePayments"`
	ProjectedInterest       decimal.Decimal `json:"projectedInterest"`
	PayoffEstimate          string          `json:"payoffEstimate"`
	ProjectionStart         string          `json:"projectionStart"`
	ProjectionEnd           string          `json:"projectionEnd"`
	ProjectionDays          int             `json:"projectionDays"`
	TotalDebts              int             `json:"totalDebts"`
}

// Summary возвращает прогноз погашения на заданный горизонт.
func (h *PlanHandler) Summary(c echo.Context) error {
	summary, err := h.summary(c)
	if err != nil {
		return h.summaryError(c, err)
	}

	return c.JSON(http.StatusOK, toPlanSummaryResponse(summary))
}

// SummaryPDF выгружает прогноз погашения в PDF.
func (h *PlanHandler) SummaryPDF(c echo.Context) error {
	summary, err := h.summary(c)
	if err != nil {
		return h.summaryError(c, err)
	}

	var buf bytes.Buffer
	if err := repayment.WritePDF(&buf, summary); err != nil {
		return serverError(c)
	}

	filename := "repayment-plan-" + summary.ProjectionStart.UTC().Format(dateLayout) + ".pdf"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

type planQueryError struct {
	message string
}

func (e planQueryError) Error() string {
	return e.message
}

func (h *PlanHandler) summary(c echo.Context) (repayment.Summary, error) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return repayment.Summary{}, repayment.ErrUnauthenticated
	}

	days, filter, err := parsePlanQuery(c, h.Projection)
	if err != nil {
		return repayment.Summary{}, err
	}

	return h.Projector.PlanSummary(c.Request().Context(), userID, days, filter)
}

func (h *PlanHandler) summaryError(c echo.Context, err error) error {
	var queryErr planQueryError
	switch {
	case errors.As(err, &queryErr):
		return badRequest(c, queryErr.message)
	case errors.Is(err, repayment.ErrUnauthenticated):
		return unauthorized(c)
	}

	slog.ErrorContext(c.Request().Context(), "plan summary failed", slog.String("error", err.Error()))
	return serverError(c)
}

// parsePlanQuery разбирает горизонт и фильтр прогноза; горизонт ограничен сверху MaxDays.
func parsePlanQuery(c echo.Context, projection config.ProjectionConfig) (int, models.DebtFilter, error) {
	filter := models.DebtFilter{}

	days := projection.DefaultDays
	if raw := strings.TrimSpace(c.QueryParam("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return 0, filter, planQueryError{message: "invalid days"}
		}
		days = parsed
	}
	if projection.MaxDays > 0 && days > projection.MaxDays {
		days = projection.MaxDays
	}

	if raw := strings.TrimSpace(c.QueryParam("type")); raw != "" {
		debtType, ok := models.ParseDebtType(raw)
		if !ok {
			return 0, filter, planQueryError{message: "invalid type"}
		}
		filter.Type = &debtType
	}

	for _, field := range []struct {
		param  string
		target **decimal.Decimal
	}{
		{"min_balance", &filter.MinBalance},
		{"max_balance", &filter.MaxBalance},
	} {
		param := field.param
		raw := strings.TrimSpace(c.QueryParam(param))
		if raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return 0, filter, planQueryError{message: "invalid " + param}
		}
		*field.target = &value
	}

	for _, field := range []struct {
		param  string
		target **time.Time
	}{
		{"due_after", &filter.DueAfter},
		{"due_before", &filter.DueBefore},
	} {
		param := field.param
		raw := strings.TrimSpace(c.QueryParam(param))
		if raw == "" {
			continue
		}
		value, err := parseDate(raw)
		if err != nil {
			return 0, filter, planQueryError{message: param + " must be YYYY-MM-DD"}
		}
		*field.target = &value
	}

	if err := filter.Validate(); err != nil {
		return 0, filter, planQueryError{message: err.Error()}
	}

	return days, filter, nil
}

func toPlanSummaryResponse(summary repayment.Summary) PlanSummaryResponse {
	return PlanSummaryResponse{
		TotalBalance:            summary.TotalBalance,
		ProjectedBalanceAfter:   summary.ProjectedBalanceAfter,
		PastPayments:            summary.PastPayments,
		ProjectedFuturePayments: summary.ProjectedFuturePayments,
		ProjectedInterest:       summary.ProjectedInterest,
		PayoffEstimate:          summary.PayoffEstimate,
		ProjectionStart:         summary.ProjectionStart.UTC().Format(dateLayout),
		ProjectionEnd:           summary.ProjectionEnd.UTC().Format(dateLayout),
		ProjectionDays:          summary.ProjectionDays,
		TotalDebts:              summary.TotalDebts,
	}
}
