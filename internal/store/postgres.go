package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"meridian/internal/database"
	apperrors "meridian/internal/errors"
)

// PostgresStore keeps blobs in the kv_blobs table
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	query := `SELECT value FROM kv_blobs WHERE key = $1`

	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}

	return []byte(value), nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_blobs (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if check := s.db.HealthCheck(ctx); check.Error != "" {
		return fmt.Errorf("database unhealthy: %s", check.Error)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
