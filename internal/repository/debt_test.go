package repository

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"example.com/debt-tracker/internal/models"
)

// TestBuildActiveDebtQueryNoFilter проверяет базовую выборку активных долгов.
func TestBuildActiveDebtQueryNoFilter(t *testing.T) {
	userID := uuid.New()
	query, args := buildActiveDebtQuery(userID, models.DebtFilter{})

	if !strings.Contains(query, "WHERE user_id = $1 AND is_active = TRUE ORDER BY id") {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 1 || args[0] != userID {
		t.Fatalf("expected only user id argument, got %v", args)
	}
}

// TestBuildActiveDebtQueryAllFilters проверяет нумерацию параметров и порядок условий.
func TestBuildActiveDebtQueryAllFilters(t *testing.T) {
	userID := uuid.New()
	debtType := models.DebtTypeCreditCard
	minBalance := decimal.NewFromInt(100)
	maxBalance := decimal.NewFromInt(5000)
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	query, args := buildActiveDebtQuery(userID, models.DebtFilter{
		Type:       &debtType,
		MinBalance: &minBalance,
		MaxBalance: &maxBalance,
		DueAfter:   &after,
		DueBefore:  &before,
	})

	expected := "user_id = $1 AND is_active = TRUE AND type = $2 AND balance >= $3 AND balance <= $4 AND due_date >= $5 AND due_date <= $6"
	if !strings.Contains(query, expected) {
		t.Fatalf("expected clauses %q in %s", expected, query)
	}

	if len(args) != 6 {
		t.Fatalf("expected 6 arguments, got %d", len(args))
	}
	if args[1] != "credit_card" {
		t.Fatalf("expected type argument credit_card, got %v", args[1])
	}
	if got := args[2].(decimal.Decimal); !got.Equal(minBalance) {
		t.Fatalf("unexpected min balance %v", got)
	}
	if got := args[5].(time.Time); !got.Equal(before) {
		t.Fatalf("unexpected due before %v", got)
	}
}

// TestMapPgError проверяет перевод кодов ошибок PostgreSQL.
func TestMapPgError(t *testing.T) {
	if err := mapPgError(&pgconn.PgError{Code: "23505"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if err := mapPgError(&pgconn.PgError{Code: "23514"}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	if err := mapPgError(&pgconn.PgError{Code: "22003"}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for numeric overflow, got %v", err)
	}

	other := errors.New("boom")
	if err := mapPgError(other); err != other {
		t.Fatalf("expected original error, got %v", err)
	}
}
