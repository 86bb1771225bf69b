package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"cdshelf/internal/catalog"
	"cdshelf/internal/slot"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newStore(t *testing.T, sl slot.Slot) *catalog.Store {
	t.Helper()
	store, err := catalog.New(sl, catalog.WithIDGenerator(sequentialIDs()))
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return store
}

func mustAdd(t *testing.T, store *catalog.Store, rec catalog.Record) catalog.Record {
	t.Helper()
	added, err := store.Add(context.Background(), rec)
	if err != nil {
		t.Fatalf("Add(%q): %v", rec.Title, err)
	}
	return added
}

func persisted(t *testing.T, sl slot.Slot) []catalog.Record {
	t.Helper()
	data, ok, err := sl.Read(context.Background())
	if err != nil || !ok {
		t.Fatalf("read slot: ok=%v err=%v", ok, err)
	}
	var out []catalog.Record
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode slot: %v", err)
	}
	return out
}

func requireMirrored(t *testing.T, store *catalog.Store, sl slot.Slot) {
	t.Helper()
	if got, want := persisted(t, sl), store.Records(); !reflect.DeepEqual(got, want) {
		t.Fatalf("slot diverged from memory:\nslot:   %+v\nmemory: %+v", got, want)
	}
}

func abbeyRoad() catalog.Record {
	return catalog.Record{
		Title:           "Abbey Road",
		Author:          catalog.String("Beatles"),
		DurationMinutes: catalog.Int(47),
		Genre:           catalog.String("Rock"),
		Price:           catalog.Float(39.9),
		Favorite:        true,
	}
}

func TestAddAppendsAndPersists(t *testing.T) {
	sl := slot.NewMemory()
	store := newStore(t, sl)

	mustAdd(t, store, catalog.Record{Title: "Kind of Blue", Genre: catalog.String("Jazz")})
	added := mustAdd(t, store, abbeyRoad())

	if added.ID != "id-2" {
		t.Fatalf("expected assigned id-2, got %q", added.ID)
	}
	records := store.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	want := abbeyRoad()
	want.ID = added.ID
	if !reflect.DeepEqual(records[1], want) {
		t.Fatalf("last record mismatch:\ngot  %+v\nwant %+v", records[1], want)
	}
	requireMirrored(t, store, sl)
}

func TestAddNormalizesBlankOptionalText(t *testing.T) {
	store := newStore(t, slot.NewMemory())
	added := mustAdd(t, store, catalog.Record{Title: "  Clube da Esquina ", Author: catalog.String("   ")})
	if added.Title != "Clube da Esquina" {
		t.Fatalf("expected trimmed title, got %q", added.Title)
	}
	if added.Author != nil {
		t.Fatalf("expected blank author to become nil, got %q", *added.Author)
	}
}

func TestAddRejectsMissingTitle(t *testing.T) {
	sl := slot.NewMemory()
	store := newStore(t, sl)
	mustAdd(t, store, abbeyRoad())

	for _, title := range []string{"", "   "} {
		_, err := store.Add(context.Background(), catalog.Record{Title: title, Genre: catalog.String("Rock")})
		if !errors.Is(err, catalog.ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", title, err)
		}
		var verr *catalog.ValidationError
		if !errors.As(err, &verr) || verr.Field != "title" {
			t.Fatalf("expected title field error, got %v", err)
		}
	}
	if store.Len() != 1 {
		t.Fatalf("expected catalog unchanged, got %d records", store.Len())
	}
	requireMirrored(t, store, sl)
}

func TestAddRejectsNegativeNumbers(t *testing.T) {
	store := newStore(t, slot.NewMemory())
	cases := []catalog.Record{
		{Title: "A", DurationMinutes: catalog.Int(-1)},
		{Title: "B", Price: catalog.Float(-0.01)},
	}
	for _, rec := range cases {
		if _, err := store.Add(context.Background(), rec); !errors.Is(err, catalog.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", rec, err)
		}
	}
}

func TestUpdateReplacesWholly(t *testing.T) {
	sl := slot.NewMemory()
	store := newStore(t, sl)
	first := mustAdd(t, store, catalog.Record{Title: "Alpha"})
	second := mustAdd(t, store, abbeyRoad())
	third := mustAdd(t, store, catalog.Record{Title: "Gamma"})

	replacement := catalog.Record{Title: "Let It Be", Favorite: false}
	updated, err := store.Update(context.Background(), second.ID, replacement)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != second.ID {
		t.Fatalf("expected ID preserved, got %q", updated.ID)
	}

	got, err := store.At(1)
	if err != nil {
		t.Fatalf("At(1): %v", err)
	}
	want := replacement
	want.ID = second.ID
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("update mismatch:\ngot  %+v\nwant %+v", got, want)
	}
	if got.Author != nil || got.Price != nil {
		t.Fatal("expected omitted fields to be cleared by whole replacement")
	}

	records := store.Records()
	if !reflect.DeepEqual(records[0], first) || !reflect.DeepEqual(records[2], third) {
		t.Fatalf("neighbours changed: %+v", records)
	}
	requireMirrored(t, store, sl)
}

func TestUpdateAtIndex(t *testing.T) {
	store := newStore(t, slot.NewMemory())
	mustAdd(t, store, catalog.Record{Title: "Alpha"})
	original := mustAdd(t, store, catalog.Record{Title: "Beta"})

	if _, err := store.UpdateAt(context.Background(), 1, catalog.Record{Title: "Beta (Remaster)"}); err != nil {
		t.Fatalf("UpdateAt: %v", err)
	}
	got, _ := store.At(1)
	if got.Title != "Beta (Remaster)" || got.ID != original.ID {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestUpdateOutOfRangeLeavesCatalogUnchanged(t *testing.T) {
	sl := slot.NewMemory()
	store := newStore(t, sl)
	for _, title := range []string{"A", "B", "C"} {
		mustAdd(t, store, catalog.Record{Title: title})
	}
	before := store.Records()

	for _, index := range []int{99, 3, -1} {
		_, err := store.UpdateAt(context.Background(), index, catalog.Record{Title: "X"})
		if !errors.Is(err, catalog.ErrOutOfRange) {
			t.Fatalf("UpdateAt(%d): expected ErrOutOfRange, got %v", index, err)
		}
	}
	if _, err := store.Update(context.Background(), "missing", catalog.Record{Title: "X"}); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !reflect.DeepEqual(store.Records(), before) {
		t.Fatal("catalog changed after failed update")
	}
	requireMirrored(t, store, sl)
}

func TestUpdateValidatesBeforeReplacing(t *testing.T) {
	store := newStore(t, slot.NewMemory())
	rec := mustAdd(t, store, abbeyRoad())
	if _, err := store.Update(context.Background(), rec.ID, catalog.Record{}); !errors.Is(err, catalog.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, _ := store.Get(rec.ID)
	if got.Title != "Abbey Road" {
		t.Fatalf("record changed: %+v", got)
	}
}

func TestDeleteShiftsIndices(t *testing.T) {
	sl := slot.NewMemory()
	store := newStore(t, sl)
	a := mustAdd(t, store, catalog.Record{Title: "A"})
	b := mustAdd(t, store, catalog.Record{Title: "B"})
	c := mustAdd(t, store, catalog.Record{Title: "C"})

	removed, err := store.DeleteAt(context.Background(), 1)
	if err != nil {
		t.Fatalf("DeleteAt: %v", err)
	}
	if removed.ID != b.ID {
		t.Fatalf("removed wrong record %+v", removed)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", store.Len())
	}
	if got, _ := store.At(1); got.ID != c.ID {
		t.Fatalf("expected C to shift to index 1, got %+v", got)
	}
	if store.IndexOf(c.ID) != 1 || store.IndexOf(b.ID) != -1 {
		t.Fatal("unexpected IndexOf results after delete")
	}
	requireMirrored(t, store, sl)

	if _, err := store.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(a.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted record, got %v", err)
	}
	requireMirrored(t, store, sl)
}

func TestDeleteInvalidTargets(t *testing.T) {
	store := newStore(t, slot.NewMemory())
	mustAdd(t, store, catalog.Record{Title: "Only"})

	if _, err := store.DeleteAt(context.Background(), 1); !errors.Is(err, catalog.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := store.Delete(context.Background(), "nope"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected catalog unchanged, got %d", store.Len())
	}
}

func TestPersistFailureRollsBack(t *testing.T) {
	sl := slot.NewMemory()
	store := newStore(t, sl)
	kept := mustAdd(t, store, catalog.Record{Title: "Kept"})

	sl.FailWrites = errors.New("disk full")
	var events int
	store.Subscribe(func(catalog.ChangeEvent) { events++ })

	if _, err := store.Add(context.Background(), catalog.Record{Title: "Lost"}); err == nil {
		t.Fatal("expected persist error")
	}
	if _, err := store.Delete(context.Background(), kept.ID); err == nil {
		t.Fatal("expected persist error on delete")
	}
	if _, err := store.UpdateAt(context.Background(), 0, catalog.Record{Title: "Changed"}); err == nil {
		t.Fatal("expected persist error on update")
	}
	records := store.Records()
	if len(records) != 1 || records[0].Title != "Kept" {
		t.Fatalf("expected rollback to previous state, got %+v", records)
	}
	if events != 0 {
		t.Fatalf("expected no notifications for failed mutations, got %d", events)
	}

	sl.FailWrites = nil
	requireMirrored(t, store, sl)
}

func TestLoadRestoresPersistedCatalog(t *testing.T) {
	sl := slot.NewMemory()
	store := newStore(t, sl)
	mustAdd(t, store, abbeyRoad())
	mustAdd(t, store, catalog.Record{Title: "Kind of Blue"})

	reloaded := newStore(t, sl)
	if !reflect.DeepEqual(reloaded.Records(), store.Records()) {
		t.Fatalf("reloaded catalog differs:\n%+v\n%+v", reloaded.Records(), store.Records())
	}
	if reloaded.LoadWarning() != nil {
		t.Fatalf("unexpected load warning: %v", reloaded.LoadWarning())
	}
}

func TestLoadFailsClosedOnCorruptSlot(t *testing.T) {
	for _, raw := range []string{"not json at all", `{"title":"x"}`, `[1, 2]`} {
		sl := slot.NewMemoryWith([]byte(raw))
		store := newStore(t, sl)
		if store.Len() != 0 {
			t.Fatalf("%q: expected empty catalog, got %d", raw, store.Len())
		}
		if store.LoadWarning() == nil {
			t.Fatalf("%q: expected load warning", raw)
		}
		data, _, _ := sl.Read(context.Background())
		if string(data) != raw {
			t.Fatalf("%q: corrupt slot should not be overwritten on load, got %q", raw, data)
		}

		mustAdd(t, store, catalog.Record{Title: "Fresh"})
		if store.LoadWarning() != nil {
			t.Fatal("expected warning cleared after successful write")
		}
		requireMirrored(t, store, sl)
	}
}

func TestLoadAssignsIDsToLegacyEntries(t *testing.T) {
	legacy := `[
  {"title":"Abbey Road","author":"Beatles","duration":47,"genre":"Rock","price":39.9,"favorite":true},
  {"title":"","author":null,"duration":null,"genre":null,"price":null,"favorite":false},
  {"title":"Kind of Blue","author":null,"duration":null,"genre":"Jazz","price":null,"favorite":false}
]`
	sl := slot.NewMemoryWith([]byte(legacy))
	store := newStore(t, sl)

	records := store.Records()
	if len(records) != 2 {
		t.Fatalf("expected invalid entry dropped, got %d records", len(records))
	}
	for _, r := range records {
		if r.ID == "" {
			t.Fatalf("expected ID assigned to %q", r.Title)
		}
	}
	if store.LoadWarning() == nil {
		t.Fatal("expected warning for dropped entry")
	}
	requireMirrored(t, store, sl)

	again := newStore(t, sl)
	if !reflect.DeepEqual(again.Records(), records) {
		t.Fatal("expected IDs to be stable across loads")
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	store := newStore(t, slot.NewMemory())

	var got []catalog.ChangeEvent
	var order []string
	cancel := store.Subscribe(func(ev catalog.ChangeEvent) {
		got = append(got, ev)
		order = append(order, "first")
		// observers may read the store while being notified
		_ = store.Len()
	})
	store.Subscribe(func(catalog.ChangeEvent) { order = append(order, "second") })

	rec := mustAdd(t, store, catalog.Record{Title: "A"})
	if _, err := store.Update(context.Background(), rec.ID, catalog.Record{Title: "B"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := store.Delete(context.Background(), rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	wantOps := []catalog.Op{catalog.OpAdd, catalog.OpUpdate, catalog.OpDelete}
	if len(got) != len(wantOps) {
		t.Fatalf("expected %d events, got %+v", len(wantOps), got)
	}
	for i, op := range wantOps {
		if got[i].Op != op || got[i].ID != rec.ID {
			t.Fatalf("event %d: got %+v want op %s", i, got[i], op)
		}
	}
	if got[2].Count != 0 {
		t.Fatalf("expected count 0 after delete, got %d", got[2].Count)
	}
	if order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected notification order %v", order)
	}

	cancel()
	mustAdd(t, store, catalog.Record{Title: "C"})
	if len(got) != 3 {
		t.Fatalf("expected no events after unsubscribe, got %d", len(got))
	}
}

func TestRecordsReturnsCopies(t *testing.T) {
	store := newStore(t, slot.NewMemory())
	mustAdd(t, store, abbeyRoad())

	records := store.Records()
	*records[0].Author = "Someone Else"
	records[0].Title = "Changed"

	again := store.Records()
	if again[0].Title != "Abbey Road" || *again[0].Author != "Beatles" {
		t.Fatalf("store leaked internal state: %+v", again[0])
	}
}

func TestNewRequiresSlot(t *testing.T) {
	if _, err := catalog.New(nil); err == nil {
		t.Fatal("expected error for nil slot")
	}
}
