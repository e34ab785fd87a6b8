package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/debt-tracker/internal/models"
	"example.com/debt-tracker/internal/notifications"
	"example.com/debt-tracker/internal/repository"
)

type fakeDebtStore struct {
	debts      map[models.DebtID]models.Debt
	lastInput  repository.DebtInput
	lastUpdate repository.DebtUpdate
	nextID     models.DebtID
}

func newFakeDebtStore(debts ...models.Debt) *fakeDebtStore {
	store := &fakeDebtStore{debts: make(map[models.DebtID]models.Debt), nextID: 100}
	for _, debt := range debts {
		store.debts[debt.ID] = debt
	}
	return store
}

func (f *fakeDebtStore) Create(_ context.Context, userID uuid.UUID, input repository.DebtInput) (models.Debt, error) {
	f.lastInput = input
	f.nextID++
	debt := models.Debt{
		ID:             f.nextID,
		UserID:         userID,
		Name:           input.Name,
		Type:           input.Type,
		Balance:        input.Balance,
		InterestRate:   input.InterestRate,
		MinimumPayment: input.MinimumPayment,
		DueDate:        input.DueDate,
		IsActive:       true,
	}
	f.debts[debt.ID] = debt
	return debt, nil
}

func (f *fakeDebtStore) Update(_ context.Context, userID uuid.UUID, id models.DebtID, update repository.DebtUpdate) (models.Debt, error) {
	f.lastUpdate = update
	debt, ok := f.debts[id]
	if !ok || debt.UserID != userID {
		return models.Debt{}, repository.ErrNotFound
	}
	if update.Balance != nil {
		debt.Balance = *update.Balance
	}
	if update.Name != nil {
		debt.Name = *update.Name
	}
	f.debts[id] = debt
	return debt, nil
}

func (f *fakeDebtStore) Delete(_ context.Context, userID uuid.UUID, id models.DebtID) error {
	debt, ok := f.debts[id]
	if !ok || debt.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.debts, id)
	return nil
}

func (f *fakeDebtStore) GetByID(_ context.Context, userID uuid.UUID, id models.DebtID) (models.Debt, error) {
	debt, ok := f.debts[id]
	if !ok || debt.UserID != userID {
		return models.Debt{}, repository.ErrNotFound
	}
	return debt, nil
}

func (f *fakeDebtStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Debt, error) {
	items := make([]models.Debt, 0)
	for _, debt := range f.debts {
		if debt.UserID == userID {
			items = append(items, debt)
		}
	}
	return items, nil
}

func (f *fakeDebtStore) ListUpcoming(ctx context.Context, userID uuid.UUID, _, _ time.Time) ([]models.Debt, error) {
	return f.ListByUser(ctx, userID)
}

type fakeTypeLister struct {
	types []models.DebtType
}

func (f fakeTypeLister) DebtTypes(context.Context, uuid.UUID) ([]models.DebtType, error) {
	return f.types, nil
}

func sampleDebt(userID uuid.UUID, id models.DebtID) models.Debt {
	return models.Debt{
		ID:             id,
		UserID:         userID,
		Name:           "Visa",
		Type:           models.DebtTypeCreditCard,
		Balance:        decimal.RequireFromString("1200.00"),
		InterestRate:   decimal.RequireFromString("19.9"),
		MinimumPayment: decimal.RequireFromString("45.00"),
		DueDate:        time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		IsActive:       true,
		CreatedAt:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// TestCreateDebt проверяет создание долга и дату по умолчанию.
func TestCreateDebt(t *testing.T) {
	e := newTestEcho(t)
	store := newFakeDebtStore()
	notifier := &fakeNotifier{}
	handler := NewDebtHandler(store, fakeTypeLister{}, notifier)
	userID := uuid.New()

	body := `{"name":"  Car loan ","type":"auto_loan","balance":"15000","interest_rate":4.5,"minimum_payment":"320.10"}`
	c, rec := newContext(e, http.MethodPost, "/api/v1/debts", body, userID)
	if err := handler.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectStatus(t, rec, http.StatusCreated)

	if store.lastInput.Name != "Car loan" || store.lastInput.Type != models.DebtTypeAutoLoan {
		t.Fatalf("unexpected input %+v", store.lastInput)
	}
	if !store.lastInput.InterestRate.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("unexpected rate %s", store.lastInput.InterestRate)
	}
	if !store.lastInput.DueDate.Equal(today()) {
		t.Fatalf("expected due date today, got %v", store.lastInput.DueDate)
	}
	if len(notifier.events) != 1 || notifier.events[0].eventType != notifications.EventDebtUpdated {
		t.Fatalf("expected debt_updated notification, got %+v", notifier.events)
	}
}

// TestCreateDebtValidation проверяет отказ на неверные данные.
func TestCreateDebtValidation(t *testing.T) {
	e := newTestEcho(t)
	handler := NewDebtHandler(newFakeDebtStore(), fakeTypeLister{}, nil)

	for name, body := range map[string]string{
		"unknown type":     `{"name":"x","type":"boat","balance":1,"interest_rate":1,"minimum_payment":1}`,
		"missing balance":  `{"name":"x","type":"other","interest_rate":1,"minimum_payment":1}`,
		"negative balance": `{"name":"x","type":"other","balance":-5,"interest_rate":1,"minimum_payment":1}`,
		"blank name":       `{"name":"   ","type":"other","balance":1,"interest_rate":1,"minimum_payment":1}`,
		"bad due date":     `{"name":"x","type":"other","balance":1,"interest_rate":1,"minimum_payment":1,"due_date":"tomorrow"}`,
		"malformed json":   `{"name":`,
		"sub-cent balance": `{"name":"x","type":"other","balance":"100.005","interest_rate":1,"minimum_payment":1}`,
		"balance overflow": `{"name":"x","type":"other","balance":"1e13","interest_rate":1,"minimum_payment":1}`,
		"rate overflow":    `{"name":"x","type":"other","balance":1,"interest_rate":1000,"minimum_payment":1}`,
	} {
		c, rec := newContext(e, http.MethodPost, "/api/v1/debts", body, uuid.New())
		if err := handler.Create(c); err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
	}
}

// TestDebtOwnership проверяет, что чужой долг не виден и не изменяется.
func TestDebtOwnership(t *testing.T) {
	e := newTestEcho(t)
	owner := uuid.New()
	store := newFakeDebtStore(sampleDebt(owner, 7))
	handler := NewDebtHandler(store, fakeTypeLister{}, nil)

	c, rec := newContext(e, http.MethodGet, "/api/v1/debts/7", "", uuid.New())
	c.SetParamNames("id")
	c.SetParamValues("7")
	if err := handler.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectStatus(t, rec, http.StatusNotFound)

	c, rec = newContext(e, http.MethodDelete, "/api/v1/debts/7", "", uuid.New())
	c.SetParamNames("id")
	c.SetParamValues("7")
	if err := handler.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectStatus(t, rec, http.StatusNotFound)

	if _, ok := store.debts[7]; !ok {
		t.Fatal("debt must not be deleted by another user")
	}
}

// TestUpdateDebt проверяет частичное обновление.
func TestUpdateDebt(t *testing.T) {
	e := newTestEcho(t)
	owner := uuid.New()
	store := newFakeDebtStore(sampleDebt(owner, 7))
	handler := NewDebtHandler(store, fakeTypeLister{}, nil)

	c, rec := newContext(e, http.MethodPut, "/api/v1/debts/7", `{"balance":"900.5","due_date":"2024-05-01"}`, owner)
	c.SetParamNames("id")
	c.SetParamValues("7")
	if err := handler.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	if store.lastUpdate.Name != nil || store.lastUpdate.Type != nil {
		t.Fatalf("unexpected fields in update %+v", store.lastUpdate)
	}
	if store.lastUpdate.DueDate == nil || store.lastUpdate.DueDate.Format(dateLayout) != "2024-05-01" {
		t.Fatalf("unexpected due date %v", store.lastUpdate.DueDate)
	}

	var body DebtResponse
	decodeBody(t, rec, &body)
	if !body.Balance.Equal(decimal.RequireFromString("900.5")) || body.DueDate != "2024-04-01" {
		t.Fatalf("unexpected response %+v", body)
	}

	c, rec = newContext(e, http.MethodPut, "/api/v1/debts/abc", `{}`, owner)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	if err := handler.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectStatus(t, rec, http.StatusBadRequest)
}

// TestDebtTypes проверяет выдачу списка типов.
func TestDebtTypes(t *testing.T) {
	e := newTestEcho(t)
	handler := NewDebtHandler(newFakeDebtStore(), fakeTypeLister{types: []models.DebtType{models.DebtTypeMortgage}}, nil)

	c, rec := newContext(e, http.MethodGet, "/api/v1/debts/types", "", uuid.New())
	if err := handler.Types(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	var body map[string][]string
	decodeBody(t, rec, &body)
	if len(body["types"]) != 1 || body["types"][0] != "mortgage" {
		t.Fatalf("unexpected types %v", body)
	}

	c, rec = newContext(e, http.MethodGet, "/api/v1/debts/types", "", uuid.Nil)
	if err := handler.Types(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectStatus(t, rec, http.StatusUnauthorized)
}

// TestWriteDebtsCSV проверяет формат CSV-выгрузки.
func TestWriteDebtsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := writeDebtsCSV(&buf, []models.Debt{sampleDebt(uuid.New(), 3)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d", len(records))
	}

	row := records[1]
	if row[0] != "3" || row[2] != "credit_card" || row[3] != "1200.00" || row[6] != "2024-04-01" || row[7] != "true" {
		t.Fatalf("unexpected row %v", row)
	}
}
