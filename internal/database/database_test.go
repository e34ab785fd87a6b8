package database

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"example.com/debt-tracker/internal/config"
)

// TestMigrationsArePaired проверяет, что у каждой up-миграции есть down.
func TestMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(ups) == 0 {
		t.Fatal("expected embedded migrations")
	}

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(migrationsFS, down); err != nil {
			t.Fatalf("missing %s for %s", down, up)
		}
	}
}

// TestMigrationsSeedBadges проверяет, что коды бейджей засеяны в схему.
func TestMigrationsSeedBadges(t *testing.T) {
	body, err := fs.ReadFile(migrationsFS, "migrations/000003_badges.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}

	for _, code := range []string{"first_payment", "debt_cleared", "high_roller", "streak_6_months", "streak_12_months"} {
		if !strings.Contains(string(body), "'"+code+"'") {
			t.Fatalf("badge %s is not seeded", code)
		}
	}
}

// TestPoolConfig проверяет перенос лимитов пула из конфигурации.
func TestPoolConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "debts",
		Password:        "debts",
		Name:            "debt_tracker",
		SSLMode:         "disable",
		MaxOpenConns:    12,
		MaxIdleConns:    3,
		ConnMaxIdleTime: time.Minute,
		ConnMaxLifetime: time.Hour,
	}

	pool, err := poolConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pool.MaxConns != 12 || pool.MinConns != 3 {
		t.Fatalf("unexpected pool limits: max=%d min=%d", pool.MaxConns, pool.MinConns)
	}
	if pool.MaxConnLifetime != time.Hour || pool.MaxConnIdleTime != time.Minute {
		t.Fatalf("unexpected pool durations: %v %v", pool.MaxConnLifetime, pool.MaxConnIdleTime)
	}
	if pool.ConnConfig.Database != "debt_tracker" {
		t.Fatalf("unexpected database %q", pool.ConnConfig.Database)
	}
}
