package config

import (
	"reflect"
	"testing"
)

// TestParseCSVEnv проверяет разбор списка email из ENV.
func TestParseCSVEnv(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " Admin@example.com, ,USER@Example.com ")

	got := parseCSVEnv("ADMIN_EMAILS")
	want := []string{"admin@example.com", "user@example.com"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestParseCSVEnvMissing проверяет поведение при отсутствии переменной.
func TestParseCSVEnvMissing(t *testing.T) {
	got := parseCSVEnv("MISSING_ENV")
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// TestLoadDefaults проверяет значения по умолчанию при минимальном окружении.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Projection.DefaultDays != 30 {
		t.Fatalf("expected default projection 30 days, got %d", cfg.Projection.DefaultDays)
	}
	if cfg.Projection.MaxDays != 3650 {
		t.Fatalf("expected max projection 3650 days, got %d", cfg.Projection.MaxDays)
	}
	if cfg.AMQP.URL != "" {
		t.Fatalf("expected broker to be disabled, got %q", cfg.AMQP.URL)
	}
	if cfg.AMQP.Queue != "payments.recorded" {
		t.Fatalf("unexpected queue: %s", cfg.AMQP.Queue)
	}
}

// TestLoadRequiresSecret проверяет обязательность JWT_SECRET.
func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for empty JWT_SECRET")
	}
}

// TestLoadProjectionBounds проверяет, что горизонт по умолчанию не превышает предел.
func TestLoadProjectionBounds(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PROJECTION_DEFAULT_DAYS", "90")
	t.Setenv("PROJECTION_MAX_DAYS", "60")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when default days exceed max days")
	}
}

// TestLoadWorkerRequiresBroker проверяет, что воркеру нужен AMQP_URL.
func TestLoadWorkerRequiresBroker(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("AMQP_URL", "")

	if _, _, err := LoadWorker(); err == nil {
		t.Fatal("expected error without AMQP_URL")
	}
}

// TestDSN проверяет сборку строки подключения.
func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "debts", Password: "p@ss", Name: "debt_tracker", SSLMode: "disable"}

	want := "postgres://debts:p%40ss@db:5432/debt_tracker?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
