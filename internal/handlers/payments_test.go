package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/debt-tracker/internal/events"
	"example.com/debt-tracker/internal/models"
	"example.com/debt-tracker/internal/notifications"
	"example.com/debt-tracker/internal/repository"
)

type fakePaymentStore struct {
	debt      models.Debt
	lastInput repository.PaymentInput
	err       error
}

func (f *fakePaymentStore) Create(_ context.Context, userID uuid.UUID, debtID models.DebtID, input repository.PaymentInput) (models.Payment, models.Debt, error) {
	if f.err != nil {
		return models.Payment{}, models.Debt{}, f.err
	}
	if f.debt.ID != debtID || f.debt.UserID != userID {
		return models.Payment{}, models.Debt{}, repository.ErrNotFound
	}

	f.lastInput = input
	debt := f.debt
	debt.Balance = decimal.Max(debt.Balance.Sub(input.Amount), decimal.Zero)
	payment := models.Payment{
		ID:          55,
		DebtID:      debtID,
		Amount:      input.Amount,
		PaymentDate: input.PaymentDate,
		Note:        input.Note,
	}
	return payment, debt, nil
}

func (f *fakePaymentStore) ListByDebt(_ context.Context, userID uuid.UUID, debtID models.DebtID) ([]models.Payment, error) {
	if f.debt.ID != debtID || f.debt.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return []models.Payment{}, nil
}

type fakePublisher struct {
	published []events.PaymentRecorded
	err       error
}

func (f *fakePublisher) PublishPaymentRecorded(_ context.Context, msg events.PaymentRecorded) error {
	f.published = append(f.published, msg)
	return f.err
}

// TestRecordPayment проверяет запись платежа, уведомление и событие.
func TestRecordPayment(t *testing.T) {
	e := newTestEcho(t)
	owner := uuid.New()
	store := &fakePaymentStore{debt: sampleDebt(owner, 7)}
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}
	handler := NewPaymentHandler(store, publisher, notifier, nil)

	c, rec := newContext(e, http.MethodPost, "/api/v1/debts/7/payments", `{"amount":"200","payment_date":"2024-03-01","note":" march "}`, owner)
	c.SetParamNames("id")
	c.SetParamValues("7")
	if err := handler.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectStatus(t, rec, http.StatusCreated)

	if got := store.lastInput.PaymentDate; !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected payment date %v", got)
	}
	if store.lastInput.Note == nil || *store.lastInput.Note != "march" {
		t.Fatalf("unexpected note %v", store.lastInput.Note)
	}

	var body RecordPaymentResponse
	decodeBody(t, rec, &body)
	if !body.Debt.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected balance 1000, got %s", body.Debt.Balance)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected one event, got %d", len(publisher.published))
	}
	msg := publisher.published[0]
	if msg.UserID != owner || msg.DebtID != 7 || msg.PaymentID != 55 || !msg.Amount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("unexpected event %+v", msg)
	}

	if len(notifier.events) != 1 || notifier.events[0].eventType != notifications.EventPaymentRecorded {
		t.Fatalf("expected payment_recorded notification, got %+v", notifier.events)
	}
}

// TestRecordPaymentPublishFailure проверяет, что сбой брокера не ломает ответ.
func TestRecordPaymentPublishFailure(t *testing.T) {
	e := newTestEcho(t)
	owner := uuid.New()
	handler := NewPaymentHandler(
		&fakePaymentStore{debt: sampleDebt(owner, 7)},
		&fakePublisher{err: errors.New("broker down")},
		nil,
		nil,
	)

	c, rec := newContext(e, http.MethodPost, "/api/v1/debts/7/payments", `{"amount":10}`, owner)
	c.SetParamNames("id")
	c.SetParamValues("7")
	if err := handler.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectStatus(t, rec, http.StatusCreated)
}

// TestRecordPaymentRejects проверяет ошибки запроса и чужой долг.
func TestRecordPaymentRejects(t *testing.T) {
	e := newTestEcho(t)
	owner := uuid.New()
	publisher := &fakePublisher{}
	handler := NewPaymentHandler(&fakePaymentStore{debt: sampleDebt(owner, 7)}, publisher, nil, nil)

	cases := []struct {
		name   string
		param  string
		body   string
		userID uuid.UUID
		status int
	}{
		{"zero amount", "7", `{"amount":0}`, owner, http.StatusBadRequest},
		{"negative amount", "7", `{"amount":"-3"}`, owner, http.StatusBadRequest},
		{"sub-cent amount", "7", `{"amount":"0.005"}`, owner, http.StatusBadRequest},
		{"amount overflow", "7", `{"amount":"1e13"}`, owner, http.StatusBadRequest},
		{"missing amount", "7", `{"note":"x"}`, owner, http.StatusBadRequest},
		{"bad date", "7", `{"amount":5,"payment_date":"03/01/2024"}`, owner, http.StatusBadRequest},
		{"bad id", "x", `{"amount":5}`, owner, http.StatusBadRequest},
		{"foreign debt", "7", `{"amount":5}`, uuid.New(), http.StatusNotFound},
		{"anonymous", "7", `{"amount":5}`, uuid.Nil, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		c, rec := newContext(e, http.MethodPost, "/api/v1/debts/"+tc.param+"/payments", tc.body, tc.userID)
		c.SetParamNames("id")
		c.SetParamValues(tc.param)
		if err := handler.Create(c); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}
	}

	if len(publisher.published) != 0 {
		t.Fatalf("rejected payments must not publish events, got %d", len(publisher.published))
	}
}

// TestParsePaymentDate проверяет оба допустимых формата даты.
func TestParsePaymentDate(t *testing.T) {
	got, err := parsePaymentDate("2024-03-01T10:30:00+02:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)) || got.Location() != time.UTC {
		t.Fatalf("unexpected time %v", got)
	}

	if _, err := parsePaymentDate("2024-02-30"); err == nil {
		t.Fatal("expected error for impossible date")
	}
}

// TestRecordPaymentStoreRejects проверяет перевод ErrInvalid хранилища в 400.
func TestRecordPaymentStoreRejects(t *testing.T) {
	e := newTestEcho(t)
	owner := uuid.New()
	handler := NewPaymentHandler(&fakePaymentStore{debt: sampleDebt(owner, 7), err: repository.ErrInvalid}, nil, nil, nil)

	c, rec := newContext(e, http.MethodPost, "/api/v1/debts/7/payments", `{"amount":"10.50"}`, owner)
	c.SetParamNames("id")
	c.SetParamValues("7")
	if err := handler.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectStatus(t, rec, http.StatusBadRequest)
}
