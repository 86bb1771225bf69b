package main

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"cdshelf/internal/catalog"
	"cdshelf/internal/config"
	"cdshelf/internal/slot"
)

func TestAddListAndSearch(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendSQLite)

	env.addRecord(t, "--title", "Zeta", "--genre", "Jazz")
	env.addRecord(t, "--title", "Abbey Road", "--author", "Beatles", "--duration", "47", "--genre", "Rock", "--price", "39,90", "--favorite")
	env.addRecord(t, "--title", "Álibi", "--author", "Maria Bethânia")

	out := env.mustRun(t, "list")
	requireContains(t, out, "Abbey Road")
	requireContains(t, out, "R$ 39,90")
	requireContains(t, out, "47 min")
	requireContains(t, out, "★")
	requireContains(t, out, "Total de CDs: 3")

	items := env.listJSON(t)
	if got, want := listTitles(items), []string{"Abbey Road", "Álibi", "Zeta"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("sorted list = %v, want %v", got, want)
	}
	if items[0].Position != 2 {
		t.Fatalf("expected insertion position 2 for Abbey Road, got %d", items[0].Position)
	}

	unsorted := env.listJSON(t, "--unsorted")
	if got, want := listTitles(unsorted), []string{"Zeta", "Abbey Road", "Álibi"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("unsorted list = %v, want %v", got, want)
	}

	rock := env.listJSON(t, "--search", "ROCK")
	if got := listTitles(rock); !reflect.DeepEqual(got, []string{"Abbey Road"}) {
		t.Fatalf("search list = %v", got)
	}

	out = env.mustRun(t, "list", "--search", "polka")
	requireContains(t, out, `No records match "polka"`)
}

func TestAddRequiresTitle(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendFile)

	_, _, err := env.run(t, "add", "--author", "Nobody")
	if !errors.Is(err, catalog.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, _, err = env.run(t, "add", "--title", "X", "--price", "cheap")
	if !errors.Is(err, catalog.ErrValidation) {
		t.Fatalf("expected price validation error, got %v", err)
	}
	_, _, err = env.run(t, "add", "--title", "X", "--duration", "3000000000")
	if !errors.Is(err, catalog.ErrValidation) {
		t.Fatalf("expected duration validation error, got %v", err)
	}
	out := env.mustRun(t, "list")
	requireContains(t, out, "Catalog is empty")
}

func TestUpdateReplacesWhollyUnlessKeep(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendSQLite)
	id := env.addRecord(t, "--title", "Abbey Road", "--author", "Beatles", "--price", "39.9")

	env.mustRun(t, "update", "#1", "--title", "Let It Be")
	out := env.mustRun(t, "--json", "show", id)
	requireContains(t, out, `"title": "Let It Be"`)
	requireContains(t, out, `"author": null`)
	requireContains(t, out, `"price": null`)

	env.mustRun(t, "update", id[:8], "--keep", "--author", "The Beatles", "--favorite")
	items := env.listJSON(t)
	if len(items) != 1 {
		t.Fatalf("expected 1 record, got %d", len(items))
	}
	got := items[0]
	if got.ID != id || got.Title != "Let It Be" || got.Author == nil || *got.Author != "The Beatles" || !got.Favorite {
		t.Fatalf("unexpected record after --keep update: %+v", got)
	}
}

func TestUpdateOutOfRange(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendFile)
	for _, title := range []string{"A", "B", "C"} {
		env.addRecord(t, "--title", title)
	}

	_, _, err := env.run(t, "update", "#99", "--title", "X")
	if !errors.Is(err, catalog.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if got := listTitles(env.listJSON(t, "--unsorted")); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Fatalf("catalog changed: %v", got)
	}
}

func TestDeleteWithConfirmation(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendSQLite)
	env.addRecord(t, "--title", "A")
	env.addRecord(t, "--title", "B")
	idC := env.addRecord(t, "--title", "C")

	out, _, err := runCLI(t, "n\n", env.configPath, "delete", "#2")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	requireContains(t, out, "Tem certeza")
	requireContains(t, out, "Cancelled")
	if len(env.listJSON(t)) != 3 {
		t.Fatal("expected nothing deleted after answering n")
	}

	out, _, err = runCLI(t, "y\n", env.configPath, "delete", "#2")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	requireContains(t, out, `Deleted #2 "B"`)

	items := env.listJSON(t, "--unsorted")
	if got := listTitles(items); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Fatalf("remaining = %v", got)
	}
	if items[1].ID != idC || items[1].Position != 2 {
		t.Fatalf("expected C to shift to position 2, got %+v", items[1])
	}

	env.mustRun(t, "delete", "--yes", idC)
	if _, _, err := env.run(t, "delete", "--yes", idC); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted ID, got %v", err)
	}
}

func TestShowRecord(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendFile)
	id := env.addRecord(t, "--title", "Abbey Road", "--duration", "0", "--price", "0")

	out := env.mustRun(t, "show", "#1")
	requireContains(t, out, id)
	requireContains(t, out, "0 min")
	requireContains(t, out, "R$ 0,00")
	requireContains(t, out, "Autor")
}

func TestCatalogPersistsAcrossInvocations(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendSQLite)
	id := env.addRecord(t, "--title", "Persisted")

	items := env.listJSON(t)
	if len(items) != 1 || items[0].ID != id {
		t.Fatalf("expected record with stable ID %s, got %+v", id, items)
	}
}

func TestWriterLockBlocksSecondWriter(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendFile)

	lock, err := slot.AcquireLock(env.cfg.Paths.DataDir)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock.Release()

	_, _, err = env.run(t, "add", "--title", "Blocked")
	if !errors.Is(err, slot.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestResolveTarget(t *testing.T) {
	store, err := catalog.New(slot.NewMemory(), catalog.WithIDGenerator(func() func() string {
		ids := []string{"abc111", "abc222", "def333"}
		i := 0
		return func() string {
			id := ids[i%len(ids)]
			i++
			return id
		}
	}()))
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	for _, title := range []string{"One", "Two", "Three"} {
		if _, err := store.Add(t.Context(), catalog.Record{Title: title}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	rec, index, err := resolveTarget(store, "#3")
	if err != nil || rec.Title != "Three" || index != 2 {
		t.Fatalf("#3 resolved to %+v %d %v", rec, index, err)
	}
	if rec, _, err := resolveTarget(store, "def"); err != nil || rec.Title != "Three" {
		t.Fatalf("prefix resolved to %+v %v", rec, err)
	}
	if rec, _, err := resolveTarget(store, "abc222"); err != nil || rec.Title != "Two" {
		t.Fatalf("full ID resolved to %+v %v", rec, err)
	}
	if _, _, err := resolveTarget(store, "abc"); !errors.Is(err, errAmbiguousID) {
		t.Fatalf("expected ambiguous prefix error, got %v", err)
	}
	if _, _, err := resolveTarget(store, "#0"); !errors.Is(err, catalog.ErrOutOfRange) {
		t.Fatalf("expected out of range for #0, got %v", err)
	}
	if _, _, err := resolveTarget(store, "#x"); err == nil || !strings.Contains(err.Error(), "invalid position") {
		t.Fatalf("expected invalid position error, got %v", err)
	}
	if _, _, err := resolveTarget(store, "zzz"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
