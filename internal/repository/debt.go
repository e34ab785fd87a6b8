package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"example.com/debt-tracker/internal/models"
)

const debtColumns = `id, user_id, name, type, balance, interest_rate, minimum_payment, due_date, is_active, created_at, updated_at`

type DebtRepository struct {
	db *pgxpool.Pool
}

type DebtInput struct {
	Name           string
	Type           models.DebtType
	Balance        decimal.Decimal
	InterestRate   decimal.Decimal
	MinimumPayment decimal.Decimal
	DueDate        time.Time
}

// DebtUpdate описывает частичное обновление долга. nil-поля не меняются.
type DebtUpdate struct {
	Name           *string
	Type           *models.DebtType
	Balance        *decimal.Decimal
	InterestRate   *decimal.Decimal
	MinimumPayment *decimal.Decimal
	DueDate        *time.Time
	IsActive       *bool
}

// NewDebtRepository создает репозиторий долгов.
func NewDebtRepository(db *pgxpool.Pool) *DebtRepository {
	return &DebtRepository{db: db}
}

// Create сохраняет новый долг пользователя.
func (r *DebtRepository) Create(ctx context.Context, userID uuid.UUID, input DebtInput) (models.Debt, error) {
	debt, err := scanDebt(r.db.QueryRow(ctx,
		`INSERT INTO debts (user_id, name, type, balance, interest_rate, minimum_payment, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+debtColumns,
		userID, input.Name, string(input.Type), input.Balance, input.InterestRate, input.MinimumPayment, input.DueDate,
	))
	if err != nil {
		return debt, mapPgError(err)
	}

	return debt, nil
}

// Update обновляет поля долга. Владелец долга не меняется.
func (r *DebtRepository) Update(ctx context.Context, userID uuid.UUID, id models.DebtID, update DebtUpdate) (models.Debt, error) {
	var debtType *string
	if update.Type != nil {
		value := string(*update.Type)
		debtType = &value
	}

	debt, err := scanDebt(r.db.QueryRow(ctx,
		`UPDATE debts
		 SET name = COALESCE($3, name),
		     type = COALESCE($4, type),
		     balance = COALESCE($5, balance),
		     interest_rate = COALESCE($6, interest_rate),
		     minimum_payment = COALESCE($7, minimum_payment),
		     due_date = COALESCE($8, due_date),
		     is_active = COALESCE($9, is_active),
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+debtColumns,
		int64(id), userID, update.Name, debtType, update.Balance, update.InterestRate, update.MinimumPayment, update.DueDate, update.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return debt, ErrNotFound
		}
		return debt, mapPgError(err)
	}

	return debt, nil
}

// Delete удаляет долг вместе с платежами.
func (r *DebtRepository) Delete(ctx context.Context, userID uuid.UUID, id models.DebtID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM debts
		 WHERE id = $1 AND user_id = $2`,
		int64(id), userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID возвращает долг пользователя по идентификатору.
func (r *DebtRepository) GetByID(ctx context.Context, userID uuid.UUID, id models.DebtID) (models.Debt, error) {
	debt, err := scanDebt(r.db.QueryRow(ctx,
		`SELECT `+debtColumns+`
		 FROM debts
		 WHERE id = $1 AND user_id = $2`,
		int64(id), userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return debt, ErrNotFound
		}
		return debt, err
	}

	return debt, nil
}

// ListByUser возвращает все долги пользователя, новые первыми.
func (r *DebtRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Debt, error) {
	return r.list(ctx,
		`SELECT `+debtColumns+`
		 FROM debts
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
}

// ListUpcoming возвращает долги со сроком в диапазоне [from, to] по возрастанию даты.
func (r *DebtRepository) ListUpcoming(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Debt, error) {
	return r.list(ctx,
		`SELECT `+debtColumns+`
		 FROM debts
		 WHERE user_id = $1 AND due_date >= $2 AND due_date <= $3
		 ORDER BY due_date ASC, id ASC`,
		userID, from, to,
	)
}

// ListActive возвращает активные долги пользователя, подходящие под фильтр.
func (r *DebtRepository) ListActive(ctx context.Context, userID uuid.UUID, filter models.DebtFilter) ([]models.Debt, error) {
	query, args := buildActiveDebtQuery(userID, filter)
	return r.list(ctx, query, args...)
}

// DistinctTypes возвращает уникальные типы долгов пользователя.
func (r *DebtRepository) DistinctTypes(ctx context.Context, userID uuid.UUID) ([]models.DebtType, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT type
		 FROM debts
		 WHERE user_id = $1 AND type IS NOT NULL
		 ORDER BY type`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]models.DebtType, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		types = append(types, models.DebtType(value))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return types, nil
}

func (r *DebtRepository) list(ctx context.Context, query string, args ...any) ([]models.Debt, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	debts := make([]models.Debt, 0)
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, debt)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return debts, nil
}

func buildActiveDebtQuery(userID uuid.UUID, filter models.DebtFilter) (string, []any) {
	args := []any{userID}
	clauses := []string{"user_id = $1", "is_active = TRUE"}

	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		clauses = append(clauses, fmt.Sprintf("type = $%d", len(args)))
	}

	if filter.MinBalance != nil {
		args = append(args, *filter.MinBalance)
		clauses = append(clauses, fmt.Sprintf("balance >= $%d", len(args)))
	}

	if filter.MaxBalance != nil {
		args = append(args, *filter.MaxBalance)
		clauses = append(clauses, fmt.Sprintf("balance <= $%d", len(args)))
	}

	if filter.DueAfter != nil {
		args = append(args, *filter.DueAfter)
		clauses = append(clauses, fmt.Sprintf("due_date >= $%d", len(args)))
	}

	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		clauses = append(clauses, fmt.Sprintf("due_date <= $%d", len(args)))
	}

	query := `SELECT ` + debtColumns + ` FROM debts WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY id`
	return query, args
}

func scanDebt(row pgx.Row) (models.Debt, error) {
	var debt models.Debt
	var id int64
	var debtType string

	err := row.Scan(
		&id,
		&debt.UserID,
		&debt.Name,
		&debtType,
		&debt.Balance,
		&debt.InterestRate,
		&debt.MinimumPayment,
		&debt.DueDate,
		&debt.IsActive,
		&debt.CreatedAt,
		&debt.UpdatedAt,
	)
	debt.ID = models.DebtID(id)
	debt.Type = models.DebtType(debtType)
	return debt, err
}
