package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// ConnectAttempts bounds how many pings are tried before startup gives up.
const ConnectAttempts = 5

func NewPostgresConnection(ctx context.Context, connString string, log *slog.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}

	// Fix for Supabase Transaction Mode (PgBouncer)
	// Prevents "prepared statement already exists" errors
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(ConnectAttempts-1, retry.NewExponential(500*time.Millisecond))
	if err := pingWithRetry(ctx, backoff, pool.Ping, log); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("Database connection established successfully")
	return pool, nil
}

func pingWithRetry(ctx context.Context, backoff retry.Backoff, ping func(context.Context) error, log *slog.Logger) error {
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := ping(ctx); err != nil {
			log.Warn("Database not reachable yet", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("database: ping failed after %d attempts: %w", attempt, err)
	}
	return nil
}
