package repository

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

// TestBuildMonthlyPaymentsQuery проверяет окно последних календарных месяцев.
func TestBuildMonthlyPaymentsQuery(t *testing.T) {
	userID := uuid.New()
	query, args := buildMonthlyPaymentsQuery(userID, 6)

	for _, fragment := range []string{
		"generate_series(",
		"date_trunc('month', NOW()) - make_interval(months => $2::int - 1)",
		"LEFT JOIN (payments p JOIN debts d ON d.id = p.debt_id AND d.user_id = $1)",
		"p.payment_date <= NOW()",
		"ORDER BY m.month DESC",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected %q in query %s", fragment, query)
		}
	}

	if strings.Contains(query, "LIMIT") {
		t.Fatalf("window must come from the month series, not LIMIT: %s", query)
	}

	if len(args) != 2 || args[0] != userID || args[1] != 6 {
		t.Fatalf("unexpected args %v", args)
	}
}
