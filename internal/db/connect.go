package db

import (
	"context"
	"fmt"

	"finance_webapp/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens the Postgres pool used by the postgres store backend.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connected")
	return pool, nil
}
