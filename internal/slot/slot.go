package slot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"cdshelf/internal/config"
)

// Slot is a single durable key holding a whole serialized value.
type Slot interface {
	// Read returns the stored value and whether the slot was present.
	Read(ctx context.Context) ([]byte, bool, error)
	// Write replaces the stored value.
	Write(ctx context.Context, data []byte) error
	Close() error
}

// ErrClosed is returned when a slot is used after Close.
var ErrClosed = errors.New("slot closed")

// Open returns the slot selected by the storage configuration.
func Open(cfg *config.Config) (Slot, error) {
	if cfg == nil {
		return nil, errors.New("slot requires config")
	}
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		return OpenSQLite(filepath.Join(cfg.Paths.DataDir, "catalog.db"), cfg.Storage.Key)
	case config.BackendFile:
		return NewFile(cfg.Paths.DataDir, cfg.Storage.Key)
	case config.BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
