package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/debt-tracker/internal/auth"
	"example.com/debt-tracker/internal/models"
)

var debtCSVHeader = []string{
	"id",
	"name",
	"type",
	"balance",
	"interest_rate",
	"minimum_payment",
	"due_date",
	"is_active",
	"created_at",
}

// ExportCSV выгружает долги пользователя в CSV-файл.
func (h *DebtHandler) ExportCSV(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	debts, err := h.Debts.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	var buf bytes.Buffer
	if err := writeDebtsCSV(&buf, debts); err != nil {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\"debts-"+today().Format(dateLayout)+".csv\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func writeDebtsCSV(buf *bytes.Buffer, debts []models.Debt) error {
	writer := csv.NewWriter(buf)
	if err := writer.Write(debtCSVHeader); err != nil {
		return err
	}

	for _, debt := range debts {
		row := []string{
			strconv.FormatInt(int64(debt.ID), 10),
			debt.Name,
			string(debt.Type),
			debt.Balance.StringFixed(2),
			debt.InterestRate.String(),
			debt.MinimumPayment.StringFixed(2),
			debt.DueDate.Format(dateLayout),
			strconv.FormatBool(debt.IsActive),
			debt.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
