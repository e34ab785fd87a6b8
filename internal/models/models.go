package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DebtType string

type DebtID int64

type PaymentID int64

type BadgeID int64

const (
	DebtTypeCreditCard   DebtType = "credit_card"
	DebtTypePersonalLoan DebtType = "personal_loan"
	DebtTypeMortgage     DebtType = "mortgage"
	DebtTypeStudentLoan  DebtType = "student_loan"
	DebtTypeAutoLoan     DebtType = "auto_loan"
	DebtTypeOther        DebtType = "other"
)

// DebtTypes перечисляет допустимые типы долгов в порядке отображения.
var DebtTypes = []DebtType{
	DebtTypeCreditCard,
	DebtTypePersonalLoan,
	DebtTypeMortgage,
	DebtTypeStudentLoan,
	DebtTypeAutoLoan,
	DebtTypeOther,
}

// ParseDebtType проверяет, что значение входит в перечисление типов долга.
func ParseDebtType(value string) (DebtType, bool) {
	for _, t := range DebtTypes {
		if string(t) == value {
			return t, true
		}
	}
	return "", false
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Debt struct {
	ID             DebtID          `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Name           string          `json:"name"`
	Type           DebtType        `json:"type"`
	Balance        decimal.Decimal `json:"balance"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
	DueDate        time.Time       `json:"due_date"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Payment struct {
	ID          PaymentID       `json:"id"`
	DebtID      DebtID          `json:"debt_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Note        *string         `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Badge struct {
	ID          BadgeID   `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type UserBadge struct {
	ID         int64     `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	BadgeID    BadgeID   `json:"badge_id"`
	EarnedDate time.Time `json:"earned_date"`
	Badge      Badge     `json:"badge"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}
