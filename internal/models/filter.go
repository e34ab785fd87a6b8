package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidFilter = errors.New("invalid debt filter")

// DebtFilter ограничивает выборку долгов. Пустые поля не применяются, границы включительные.
type DebtFilter struct {
	Type       *DebtType
	MinBalance *decimal.Decimal
	MaxBalance *decimal.Decimal
	DueAfter   *time.Time
	DueBefore  *time.Time
}

// Validate проверяет, что границы фильтра не противоречат друг другу.
func (f DebtFilter) Validate() error {
	if f.Type != nil {
		if _, ok := ParseDebtType(string(*f.Type)); !ok {
			return ErrInvalidFilter
		}
	}

	if f.MinBalance != nil && f.MinBalance.IsNegative() {
		return ErrInvalidFilter
	}

	if f.MaxBalance != nil && f.MaxBalance.IsNegative() {
		return ErrInvalidFilter
	}

	if f.MinBalance != nil && f.MaxBalance != nil && f.MinBalance.GreaterThan(*f.MaxBalance) {
		return ErrInvalidFilter
	}

	if f.DueAfter != nil && f.DueBefore != nil && f.DueAfter.After(*f.DueBefore) {
		return ErrInvalidFilter
	}

	return nil
}
