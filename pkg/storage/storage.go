package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

var (
	ErrDriverUnknown = errors.New("storage: unknown driver")
	ErrDSNRequired   = errors.New("storage: dsn is required")
)

// Config selects the database driver and connection string.
type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	// ConnectAttempts bounds how many times Open pings before giving up.
	ConnectAttempts int
	RetryDelay      time.Duration
	Logger          interfaces.Logger
}

// Open connects to the configured database and wraps it with the matching
// bun dialect. sqlite, postgres and mysql are supported.
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, ErrDSNRequired
	}
	driverName, dialect, err := resolveDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	attempts := max(cfg.ConnectAttempts, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		sqldb, err := connect(ctx, driverName, cfg)
		if err == nil {
			logger.Info("database connection established", "driver", driverName)
			return bun.NewDB(sqldb, dialect), nil
		}
		lastErr = err
		logger.Warn("database connection failed", "driver", driverName, "attempt", attempt, "error", err)
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RetryDelay):
			}
		}
	}
	return nil, fmt.Errorf("storage: connect %s after %d attempts: %w", driverName, attempts, lastErr)
}

func connect(ctx context.Context, driverName string, cfg Config) (*sql.DB, error) {
	sqldb, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, err
	}
	maxOpen := cfg.MaxOpenConns
	if driverName == "sqlite3" && maxOpen == 0 {
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqldb.SetMaxOpenConns(maxOpen)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqldb.PingContext(pingCtx); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return sqldb, nil
}

func resolveDriver(driver string) (string, schema.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return "sqlite3", sqlitedialect.New(), nil
	case "postgres", "pg", "postgresql":
		return "postgres", pgdialect.New(), nil
	case "mysql":
		return "mysql", mysqldialect.New(), nil
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrDriverUnknown, driver)
	}
}
