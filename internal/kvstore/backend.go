// AngelaMos | 2026
// backend.go

package kvstore

import (
	"context"
	"fmt"

	"github.com/angelamos/voltgear/internal/config"
)

// Backend is a raw string-keyed document store. Load returns
// core.ErrNotFound (wrapped) when the key is absent. Keys lists stored
// keys under a prefix, sorted.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Store(ctx context.Context, key string, doc []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open constructs the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Backend, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryBackend(), nil
	case "file":
		return NewFileBackend(cfg.Path)
	case "sqlite3", "postgres":
		return NewSQLBackend(ctx, cfg)
	case "redis":
		return NewRedisBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
