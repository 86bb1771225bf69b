package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// DatabaseHealth describes the state of the SQLite slot database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	TableExists      bool
	SlotPresent      bool
	SlotBytes        int
	UpdatedAt        string
	IntegrityCheck   bool
	Error            string
}

// CheckHealth returns diagnostic information about the slot database.
func (s *SQLite) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat slot database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("slot database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, ErrClosed
	}

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping slot database: %w", err)
	}
	health.DatabaseReadable = true

	if health.SchemaVersion, err = s.userVersion(connCtx); err != nil {
		health.Error = err.Error()
		return health, err
	}

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'slots'")
	if err := row.Scan(&tableName); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
	} else {
		health.TableExists = true
	}

	if health.TableExists {
		var (
			size    int
			updated sql.NullString
		)
		row = s.db.QueryRowContext(connCtx, "SELECT LENGTH(value), updated_at FROM slots WHERE key = ?", s.key)
		switch err := row.Scan(&size, &updated); {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			health.Error = err.Error()
			return health, fmt.Errorf("inspect slot: %w", err)
		default:
			health.SlotPresent = true
			health.SlotBytes = size
			health.UpdatedAt = updated.String
		}
	}

	var integrityResult string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}
