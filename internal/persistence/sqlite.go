package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite wraps a database/sql handle backed by the modernc driver.
type SQLite struct {
	DB *sql.DB
}

// NewSQLite opens the database file at dsn and applies the schema.
func NewSQLite(ctx context.Context, dsn string, logger *zap.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes
	// writers, which SQLite requires anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	exec := func(ctx context.Context, script string) error {
		_, err := db.ExecContext(ctx, script)
		return err
	}
	if err := RunMigrations(ctx, "sqlite", exec, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("opened sqlite", zap.String("path", dsn))
	return &SQLite{DB: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() {
	if s != nil && s.DB != nil {
		_ = s.DB.Close()
	}
}

// Ping verifies the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return fmt.Errorf("sqlite not configured")
	}
	return s.DB.PingContext(ctx)
}
