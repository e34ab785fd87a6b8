package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/debt-tracker/internal/models"
	"example.com/debt-tracker/internal/repository"
)

type fakeStatsStore struct {
	monthlyErr error
	lastMonths int
}

func (f *fakeStatsStore) Overview(context.Context, uuid.UUID) (repository.OverviewStats, error) {
	return repository.OverviewStats{
		TotalDebts:   3,
		ActiveDebts:  2,
		TotalBalance: decimal.RequireFromString("2500.50"),
	}, nil
}

func (f *fakeStatsStore) BalanceByType(context.Context, uuid.UUID) ([]repository.TypeBalance, error) {
	return []repository.TypeBalance{
		{Type: models.DebtTypeMortgage, Count: 1, Balance: decimal.NewFromInt(2000)},
	}, nil
}

func (f *fakeStatsStore) MonthlyPayments(_ context.Context, _ uuid.UUID, months int) ([]repository.MonthlyPayments, error) {
	f.lastMonths = months
	if f.monthlyErr != nil {
		return nil, f.monthlyErr
	}
	return []repository.MonthlyPayments{
		{Month: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Count: 2, Amount: decimal.NewFromInt(300)},
	}, nil
}

// TestDashboard проверяет сборку дашборда из трех запросов.
func TestDashboard(t *testing.T) {
	e := newTestEcho(t)
	store := &fakeStatsStore{}
	handler := NewStatsHandler(store)

	c, rec := newContext(e, http.MethodGet, "/api/v1/dashboard?months=48", "", uuid.New())
	if err := handler.Dashboard(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	if store.lastMonths != maxStatsMonths {
		t.Fatalf("expected months capped at %d, got %d", maxStatsMonths, store.lastMonths)
	}

	var body DashboardResponse
	decodeBody(t, rec, &body)
	if body.Overview.TotalDebts != 3 || !body.Overview.TotalBalance.Equal(decimal.RequireFromString("2500.5")) {
		t.Fatalf("unexpected overview %+v", body.Overview)
	}
	if len(body.ByType) != 1 || body.ByType[0].Type != models.DebtTypeMortgage {
		t.Fatalf("unexpected by_type %+v", body.ByType)
	}
	if len(body.MonthlyPayments) != 1 || body.MonthlyPayments[0].Month != "2024-02" {
		t.Fatalf("unexpected monthly payments %+v", body.MonthlyPayments)
	}
}

// TestDashboardFailure проверяет, что ошибка любого запроса дает 500.
func TestDashboardFailure(t *testing.T) {
	e := newTestEcho(t)
	handler := NewStatsHandler(&fakeStatsStore{monthlyErr: errors.New("db down")})

	c, rec := newContext(e, http.MethodGet, "/api/v1/dashboard", "", uuid.New())
	if err := handler.Dashboard(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectStatus(t, rec, http.StatusInternalServerError)
}

// TestParseMonths проверяет значения по умолчанию и границы.
func TestParseMonths(t *testing.T) {
	cases := map[string]struct {
		want    int
		wantErr bool
	}{
		"":    {want: defaultStatsMonths},
		"3":   {want: 3},
		"100": {want: maxStatsMonths},
		"0":   {wantErr: true},
		"-1":  {wantErr: true},
		"abc": {wantErr: true},
	}

	for raw, tc := range cases {
		got, err := parseMonths(raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", raw)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: expected %d, got %d (%v)", raw, tc.want, got, err)
		}
	}
}
