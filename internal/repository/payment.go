package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"example.com/debt-tracker/internal/models"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

type PaymentInput struct {
	Amount      decimal.Decimal
	PaymentDate time.Time
	Note        *string
}

// NewPaymentRepository создает репозиторий платежей.
func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create записывает платеж и уменьшает остаток долга в одной транзакции.
// Долг с нулевым остатком помечается неактивным.
func (r *PaymentRepository) Create(ctx context.Context, userID uuid.UUID, debtID models.DebtID, input PaymentInput) (models.Payment, models.Debt, error) {
	var payment models.Payment
	var debt models.Debt

	if !input.Amount.IsPositive() || !models.ValidMoney(input.Amount) {
		return payment, debt, ErrInvalid
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return payment, debt, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	debt, err = scanDebt(tx.QueryRow(ctx,
		`UPDATE debts
		 SET balance = GREATEST(balance - $3, 0),
		     is_active = is_active AND balance - $3 > 0,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+debtColumns,
		int64(debtID), userID, input.Amount,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment, debt, ErrNotFound
		}
		return payment, debt, mapPgError(err)
	}

	payment, err = scanPayment(tx.QueryRow(ctx,
		`INSERT INTO payments (debt_id, amount, payment_date, note)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, debt_id, amount, payment_date, note, created_at`,
		int64(debtID), input.Amount, input.PaymentDate, input.Note,
	))
	if err != nil {
		return payment, debt, mapPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return payment, debt, err
	}

	return payment, debt, nil
}

// ListByDebt возвращает платежи по долгу пользователя, новые первыми.
func (r *PaymentRepository) ListByDebt(ctx context.Context, userID uuid.UUID, debtID models.DebtID) ([]models.Payment, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM debts WHERE id = $1 AND user_id = $2
		 )`,
		int64(debtID), userID,
	).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	return r.list(ctx,
		`SELECT id, debt_id, amount, payment_date, note, created_at
		 FROM payments
		 WHERE debt_id = $1
		 ORDER BY payment_date DESC, id DESC`,
		int64(debtID),
	)
}

// ListByDebtIDs возвращает платежи по набору долгов пользователя.
func (r *PaymentRepository) ListByDebtIDs(ctx context.Context, userID uuid.UUID, debtIDs []models.DebtID) ([]models.Payment, error) {
	if len(debtIDs) == 0 {
		return []models.Payment{}, nil
	}

	ids := make([]int64, 0, len(debtIDs))
	for _, id := range debtIDs {
		ids = append(ids, int64(id))
	}

	return r.list(ctx,
		`SELECT p.id, p.debt_id, p.amount, p.payment_date, p.note, p.created_at
		 FROM payments p
		 JOIN debts d ON d.id = p.debt_id
		 WHERE d.user_id = $1 AND p.debt_id = ANY($2)
		 ORDER BY p.payment_date, p.id`,
		userID, ids,
	)
}

// ListByUser возвращает все платежи пользователя в хронологическом порядке.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	return r.list(ctx,
		`SELECT p.id, p.debt_id, p.amount, p.payment_date, p.note, p.created_at
		 FROM payments p
		 JOIN debts d ON d.id = p.debt_id
		 WHERE d.user_id = $1
		 ORDER BY p.payment_date, p.id`,
		userID,
	)
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...any) ([]models.Payment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]models.Payment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func scanPayment(row pgx.Row) (models.Payment, error) {
	var payment models.Payment
	var id, debtID int64

	err := row.Scan(&id, &debtID, &payment.Amount, &payment.PaymentDate, &payment.Note, &payment.CreatedAt)
	payment.ID = models.PaymentID(id)
	payment.DebtID = models.DebtID(debtID)
	return payment, err
}
