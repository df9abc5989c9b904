package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun/dialect"
)

func TestResolveDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   string
		name   dialect.Name
	}{
		{driver: "", want: "sqlite3", name: dialect.SQLite},
		{driver: "SQLite", want: "sqlite3", name: dialect.SQLite},
		{driver: "pg", want: "postgres", name: dialect.PG},
		{driver: "postgres", want: "postgres", name: dialect.PG},
		{driver: "mysql", want: "mysql", name: dialect.MySQL},
	}
	for _, tt := range tests {
		driverName, d, err := resolveDriver(tt.driver)
		if err != nil {
			t.Fatalf("resolveDriver(%q) error = %v", tt.driver, err)
		}
		if driverName != tt.want || d.Name() != tt.name {
			t.Fatalf("resolveDriver(%q) = %s/%v, want %s/%v", tt.driver, driverName, d.Name(), tt.want, tt.name)
		}
	}

	if _, _, err := resolveDriver("oracle"); !errors.Is(err, ErrDriverUnknown) {
		t.Fatalf("expected ErrDriverUnknown, got %v", err)
	}
}

func TestOpenSQLite(t *testing.T) {
	db, err := Open(context.Background(), Config{
		Driver: "sqlite",
		DSN:    "file:storage_" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	var one int
	if err := db.NewSelect().ColumnExpr("1").Scan(context.Background(), &one); err != nil || one != 1 {
		t.Fatalf("select 1 = %d, %v", one, err)
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "sqlite"}); !errors.Is(err, ErrDSNRequired) {
		t.Fatalf("expected ErrDSNRequired, got %v", err)
	}
}
