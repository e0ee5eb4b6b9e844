package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saharsh3008/task/internal/config"
)

var ErrNotFound = errors.New("key not found")

// Backend is durable key-value byte storage.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.Storage) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "file":
		return NewFileBackend(cfg.DataDir)
	case "sqlite", "sqlite3":
		return NewSQLiteBackend(cfg.SQLitePath)
	case "postgres", "postgresql":
		if strings.TrimSpace(cfg.PostgresURL) == "" {
			return nil, fmt.Errorf("postgres backend requires storage.postgres_url")
		}
		return NewPostgresBackend(ctx, cfg.PostgresURL)
	case "memory":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
