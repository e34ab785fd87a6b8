package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"example.com/debt-tracker/internal/models"
)

type StatsRepository struct {
	db *pgxpool.Pool
}

type OverviewStats struct {
	TotalDebts          int
	ActiveDebts         int
	TotalBalance        decimal.Decimal
	TotalMinimumPayment decimal.Decimal
	TotalPaid           decimal.Decimal
	PaidThisMonth       decimal.Decimal
}

type TypeBalance struct {
	Type    models.DebtType
	Count   int
	Balance decimal.Decimal
}

type MonthlyPayments struct {
	Month  time.Time
	Count  int
	Amount decimal.Decimal
}

// NewStatsRepository создает репозиторий статистики.
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// Overview возвращает сводку по долгам и платежам пользователя.
func (r *StatsRepository) Overview(ctx context.Context, userID uuid.UUID) (OverviewStats, error) {
	var stats OverviewStats

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) AS total_debts,
		        COUNT(*) FILTER (WHERE is_active) AS active_debts,
		        COALESCE(SUM(balance) FILTER (WHERE is_active), 0) AS total_balance,
		        COALESCE(SUM(minimum_payment) FILTER (WHERE is_active), 0) AS total_minimum_payment
		 FROM debts
		 WHERE user_id = $1`,
		userID,
	).Scan(&stats.TotalDebts, &stats.ActiveDebts, &stats.TotalBalance, &stats.TotalMinimumPayment)
	if err != nil {
		return stats, err
	}

	err = r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(p.amount), 0),
		        COALESCE(SUM(p.amount) FILTER (WHERE p.payment_date >= date_trunc('month', NOW())), 0)
		 FROM payments p
		 JOIN debts d ON d.id = p.debt_id
		 WHERE d.user_id = $1 AND p.payment_date <= NOW()`,
		userID,
	).Scan(&stats.TotalPaid, &stats.PaidThisMonth)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// BalanceByType возвращает сумму остатков активных долгов по типам.
func (r *StatsRepository) BalanceByType(ctx context.Context, userID uuid.UUID) ([]TypeBalance, error) {
	rows, err := r.db.Query(ctx,
		`SELECT type, COUNT(*), COALESCE(SUM(balance), 0)
		 FROM debts
		 WHERE user_id = $1 AND is_active
		 GROUP BY type
		 ORDER BY SUM(balance) DESC, type`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]TypeBalance, 0)
	for rows.Next() {
		var row TypeBalance
		var debtType string
		if err := rows.Scan(&debtType, &row.Count, &row.Balance); err != nil {
			return nil, err
		}
		row.Type = models.DebtType(debtType)
		items = append(items, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// MonthlyPayments возвращает суммы платежей за последние months календарных месяцев.
func (r *StatsRepository) MonthlyPayments(ctx context.Context, userID uuid.UUID, months int) ([]MonthlyPayments, error) {
	if months <= 0 {
		return nil, ErrInvalid
	}

	query, args := buildMonthlyPaymentsQuery(userID, months)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]MonthlyPayments, 0)
	for rows.Next() {
		var row MonthlyPayments
		if err := rows.Scan(&row.Month, &row.Count, &row.Amount); err != nil {
			return nil, err
		}
		items = append(items, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// buildMonthlyPaymentsQuery строит выборку по последним months календарным месяцам,
// включая текущий; месяцы без платежей возвращаются с нулями.
func buildMonthlyPaymentsQuery(userID uuid.UUID, months int) (string, []any) {
	query := `WITH months AS (
		SELECT generate_series(
			date_trunc('month', NOW()) - make_interval(months => $2::int - 1),
			date_trunc('month', NOW()),
			interval '1 month'
		)::date AS month
	)
	SELECT m.month,
	       COUNT(p.id),
	       COALESCE(SUM(p.amount), 0)
	FROM months m
	LEFT JOIN (payments p JOIN debts d ON d.id = p.debt_id AND d.user_id = $1)
	       ON date_trunc('month', p.payment_date)::date = m.month
	      AND p.payment_date <= NOW()
	GROUP BY m.month
	ORDER BY m.month DESC`

	return query, []any{userID, months}
}
