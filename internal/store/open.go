package store

import (
	"fmt"
	"log/slog"

	"meridian/internal/database"
)

const (
	BackendMemory   = "memory"
	BackendValkey   = "valkey"
	BackendPostgres = "postgres"
)

// Open connects the configured backend. The postgres backend runs its migrations.
func Open(backend string, valkey ValkeyConfig, db database.Config) (Store, error) {
	switch backend {
	case "", BackendMemory:
		slog.Info("Using in-memory blob store")
		return NewMemoryStore(), nil
	case BackendValkey:
		s, err := NewValkeyStore(valkey)
		if err != nil {
			return nil, err
		}
		slog.Info("Using Valkey blob store", "addr", valkey.Addr)
		return s, nil
	case BackendPostgres:
		conn, err := database.Connect(db)
		if err != nil {
			return nil, err
		}
		if err := conn.RunMigrations(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return NewPostgresStore(conn), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
