package testsupport

import (
	"context"
	"testing"

	"cdshelf/internal/catalog"
	"cdshelf/internal/config"
	"cdshelf/internal/slot"
)

// MustOpenSlot opens the configured slot for tests and registers cleanup.
func MustOpenSlot(t testing.TB, cfg *config.Config) slot.Slot {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	sl, err := slot.Open(cfg)
	if err != nil {
		t.Fatalf("open slot: %v", err)
	}
	t.Cleanup(func() {
		_ = sl.Close()
	})
	return sl
}

// MustOpenStore opens and loads a catalog.Store for tests.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.New(MustOpenSlot(t, cfg), catalog.WithLocale(cfg.Language()), catalog.WithIndent(cfg.Export.Indent))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return store
}

// MustAdd adds records to store and returns them with their assigned IDs.
func MustAdd(t testing.TB, store *catalog.Store, records ...catalog.Record) []catalog.Record {
	t.Helper()

	out := make([]catalog.Record, 0, len(records))
	for _, rec := range records {
		added, err := store.Add(context.Background(), rec)
		if err != nil {
			t.Fatalf("add %q: %v", rec.Title, err)
		}
		out = append(out, added)
	}
	return out
}
