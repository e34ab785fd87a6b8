package achievements

import (
	"sort"

	"github.com/shopspring/decimal"

	"example.com/debt-tracker/internal/models"
)

const (
	CodeFirstPayment   = "first_payment"
	CodeDebtCleared    = "debt_cleared"
	CodeHighRoller     = "high_roller"
	CodeStreak6Months  = "streak_6_months"
	CodeStreak12Months = "streak_12_months"
)

var highRollerThreshold = decimal.NewFromInt(10000)

// Progress описывает показатели пользователя, от которых зависят бейджи.
type Progress struct {
	Payments      int
	TotalPaid     decimal.Decimal
	ClearedDebts  int
	LongestStreak int
}

// Measure собирает показатели по долгам и платежам пользователя.
func Measure(debts []models.Debt, payments []models.Payment) Progress {
	progress := Progress{TotalPaid: decimal.Zero, Payments: len(payments)}

	for _, debt := range debts {
		if debt.Balance.IsZero() {
			progress.ClearedDebts++
		}
	}

	months := make(map[models.DebtID][]int)
	for _, payment := range payments {
		progress.TotalPaid = progress.TotalPaid.Add(payment.Amount)
		month := payment.PaymentDate.UTC().Year()*12 + int(payment.PaymentDate.UTC().Month()) - 1
		months[payment.DebtID] = append(months[payment.DebtID], month)
	}

	for _, debtMonths := range months {
		if streak := longestRun(debtMonths); streak > progress.LongestStreak {
			progress.LongestStreak = streak
		}
	}

	return progress
}

// Earned возвращает коды бейджей, условия которых выполнены.
func (p Progress) Earned() []string {
	codes := make([]string, 0, 5)
	if p.Payments > 0 {
		codes = append(codes, CodeFirstPayment)
	}
	if p.ClearedDebts > 0 {
		codes = append(codes, CodeDebtCleared)
	}
	if p.TotalPaid.GreaterThanOrEqual(highRollerThreshold) {
		codes = append(codes, CodeHighRoller)
	}
	if p.LongestStreak >= 6 {
		codes = append(codes, CodeStreak6Months)
	}
	if p.LongestStreak >= 12 {
		codes = append(codes, CodeStreak12Months)
	}
	return codes
}

// longestRun считает самую длинную серию подряд идущих месяцев.
func longestRun(months []int) int {
	if len(months) == 0 {
		return 0
	}

	sorted := append([]int(nil), months...)
	sort.Ints(sorted)

	longest, current := 1, 1
	for i := 1; i < len(sorted); i++ {
		switch sorted[i] - sorted[i-1] {
		case 0:
		case 1:
			current++
			if current > longest {
				longest = current
			}
		default:
			current = 1
		}
	}
	return longest
}
