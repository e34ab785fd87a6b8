package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/debt-tracker/internal/models"
)

var ErrMalformedMessage = errors.New("malformed event message")

// PaymentRecorded сообщает, что по долгу пользователя записан платеж.
type PaymentRecorded struct {
	UserID    uuid.UUID        `json:"user_id"`
	DebtID    models.DebtID    `json:"debt_id"`
	PaymentID models.PaymentID `json:"payment_id"`
	Amount    decimal.Decimal  `json:"amount"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewPaymentRecorded собирает событие по сохраненному платежу.
func NewPaymentRecorded(userID uuid.UUID, payment models.Payment) PaymentRecorded {
	return PaymentRecorded{
		UserID:    userID,
		DebtID:    payment.DebtID,
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		Timestamp: time.Now().UTC(),
	}
}

func (m PaymentRecorded) encode() ([]byte, error) {
	return json.Marshal(m)
}

func decodePaymentRecorded(data []byte) (PaymentRecorded, error) {
	var msg PaymentRecorded
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, errors.Join(ErrMalformedMessage, err)
	}
	if msg.UserID == uuid.Nil || msg.DebtID == 0 {
		return msg, ErrMalformedMessage
	}
	return msg, nil
}
