package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"cdshelf/internal/logging"
	"cdshelf/internal/slot"
)

// Op names a mutating catalog operation.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpImport Op = "import"
	OpLoad   Op = "load"
)

// ChangeEvent describes a successful mutation.
type ChangeEvent struct {
	Op    Op
	ID    string
	Count int
}

// Store holds the catalog in memory and mirrors it to a slot.
type Store struct {
	mu       sync.Mutex
	slot     slot.Slot
	logger   *slog.Logger
	records  []Record
	locale   language.Tag
	indent   int
	newID    func() string
	warning  error
	nextSub  int
	watchers []watcher
}

type watcher struct {
	id int
	fn func(ChangeEvent)
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "catalog")
		}
	}
}

// WithLocale sets the collation locale used by SortedView.
func WithLocale(tag language.Tag) Option {
	return func(s *Store) { s.locale = tag }
}

// WithIndent sets the snapshot indentation width.
func WithIndent(n int) Option {
	return func(s *Store) { s.indent = n }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New constructs a store bound to sl. Call Load before use.
func New(sl slot.Slot, opts ...Option) (*Store, error) {
	if sl == nil {
		return nil, errors.New("catalog store requires a slot")
	}
	s := &Store{
		slot:   sl,
		logger: logging.NewNop(),
		locale: language.BrazilianPortuguese,
		indent: 2,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load reads the slot into memory. An absent slot yields an empty catalog.
// Unreadable slot data also yields an empty catalog; the problem is logged and
// kept in LoadWarning instead of failing. Entries without an ID get one and
// invalid entries are dropped; either repair is written back immediately so
// IDs stay stable across runs.
func (s *Store) Load(ctx context.Context) error {
	data, ok, err := s.slot.Read(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	s.mu.Lock()
	s.warning = nil
	if !ok {
		s.records = nil
		s.mu.Unlock()
		s.logger.Debug("catalog slot empty")
		return nil
	}

	result, err := decodeSnapshot(data, s.newID)
	if err == nil && len(result.records) == 0 && len(result.report.Rejected) > 0 {
		err = fmt.Errorf("%w: none of %d stored entries is a valid record", ErrInvalidFormat, len(result.report.Rejected))
	}
	if err != nil {
		s.records = nil
		s.warning = fmt.Errorf("stored catalog unreadable, starting empty: %w", err)
		s.mu.Unlock()
		logging.WarnWithContext(s.logger, "stored catalog unreadable; starting empty",
			"slot_corrupt",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "import a snapshot to restore the catalog"),
			logging.String(logging.FieldImpact, "the next change overwrites the stored value"),
		)
		return nil
	}

	s.records = result.records
	repaired := result.report.IDsAssigned > 0 || len(result.report.Rejected) > 0
	if len(result.report.Rejected) > 0 {
		s.warning = fmt.Errorf("dropped %d invalid stored records", len(result.report.Rejected))
		for _, r := range result.report.Rejected {
			logging.WarnWithContext(s.logger, "dropped invalid stored record",
				"slot_entry_invalid",
				logging.Int("position", r.Position),
				logging.String("reason", r.Reason),
			)
		}
	}
	if repaired {
		if err := s.persistLocked(ctx); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("write repaired catalog: %w", err)
		}
	}
	count := len(s.records)
	s.mu.Unlock()

	s.logger.Debug("catalog loaded", logging.Count(count), logging.Bool("repaired", repaired))
	if repaired {
		s.notify(ChangeEvent{Op: OpLoad, Count: count})
	}
	return nil
}

// LoadWarning returns the non-fatal problem found by the last Load, if any.
func (s *Store) LoadWarning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warning
}

// Add validates rec, assigns it a new ID, appends it and persists.
func (s *Store) Add(ctx context.Context, rec Record) (Record, error) {
	rec = rec.normalized()
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	rec.ID = s.uniqueIDLocked()
	prev := s.records
	s.records = append(cloneAll(prev), rec)
	if err := s.commitLocked(ctx, prev); err != nil {
		s.mu.Unlock()
		return Record{}, err
	}
	count := len(s.records)
	s.mu.Unlock()

	s.logger.Info("record added", logging.Operation(string(OpAdd)), logging.RecordID(rec.ID), logging.Count(count))
	s.notify(ChangeEvent{Op: OpAdd, ID: rec.ID, Count: count})
	return rec.Clone(), nil
}

// Update wholly replaces the record with the given ID. The ID is preserved.
func (s *Store) Update(ctx context.Context, id string, rec Record) (Record, error) {
	s.mu.Lock()
	index := s.indexLocked(id)
	s.mu.Unlock()
	if index < 0 {
		return Record{}, notFound(id)
	}
	return s.replace(ctx, index, id, rec)
}

// UpdateAt wholly replaces the record at index.
func (s *Store) UpdateAt(ctx context.Context, index int, rec Record) (Record, error) {
	return s.replace(ctx, index, "", rec)
}

func (s *Store) replace(ctx context.Context, index int, expectID string, rec Record) (Record, error) {
	rec = rec.normalized()
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	if index < 0 || index >= len(s.records) {
		n := len(s.records)
		s.mu.Unlock()
		return Record{}, outOfRange(index, n)
	}
	if expectID != "" && s.records[index].ID != expectID {
		// the record moved between lookup and lock
		index = s.indexLocked(expectID)
		if index < 0 {
			s.mu.Unlock()
			return Record{}, notFound(expectID)
		}
	}
	rec.ID = s.records[index].ID
	prev := s.records
	next := cloneAll(prev)
	next[index] = rec
	s.records = next
	if err := s.commitLocked(ctx, prev); err != nil {
		s.mu.Unlock()
		return Record{}, err
	}
	count := len(s.records)
	s.mu.Unlock()

	s.logger.Info("record updated", logging.Operation(string(OpUpdate)), logging.RecordID(rec.ID))
	s.notify(ChangeEvent{Op: OpUpdate, ID: rec.ID, Count: count})
	return rec.Clone(), nil
}

// Delete removes the record with the given ID.
func (s *Store) Delete(ctx context.Context, id string) (Record, error) {
	s.mu.Lock()
	index := s.indexLocked(id)
	if index < 0 {
		s.mu.Unlock()
		return Record{}, notFound(id)
	}
	return s.removeLocked(ctx, index)
}

// DeleteAt removes the record at index; later records shift down by one.
func (s *Store) DeleteAt(ctx context.Context, index int) (Record, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.records) {
		n := len(s.records)
		s.mu.Unlock()
		return Record{}, outOfRange(index, n)
	}
	return s.removeLocked(ctx, index)
}

// removeLocked is entered with s.mu held and releases it.
func (s *Store) removeLocked(ctx context.Context, index int) (Record, error) {
	prev := s.records
	removed := prev[index].Clone()
	next := make([]Record, 0, len(prev)-1)
	next = append(next, cloneAll(prev[:index])...)
	next = append(next, cloneAll(prev[index+1:])...)
	s.records = next
	if err := s.commitLocked(ctx, prev); err != nil {
		s.mu.Unlock()
		return Record{}, err
	}
	count := len(s.records)
	s.mu.Unlock()

	s.logger.Info("record deleted", logging.Operation(string(OpDelete)), logging.RecordID(removed.ID), logging.Count(count))
	s.notify(ChangeEvent{Op: OpDelete, ID: removed.ID, Count: count})
	return removed, nil
}

// Get returns the record with the given ID.
func (s *Store) Get(id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.indexLocked(id)
	if index < 0 {
		return Record{}, notFound(id)
	}
	return s.records[index].Clone(), nil
}

// At returns the record at index.
func (s *Store) At(index int) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.records) {
		return Record{}, outOfRange(index, len(s.records))
	}
	return s.records[index].Clone(), nil
}

// IndexOf returns the current position of id, or -1.
func (s *Store) IndexOf(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id)
}

// Records returns a copy of the full sequence in insertion order.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.records)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Subscribe registers fn for change notifications. Callbacks run
// synchronously after the mutation is persisted, in subscription order, and
// may read from the store. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(ChangeEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.watchers = append(s.watchers, watcher{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, w := range s.watchers {
			if w.id == id {
				s.watchers = append(s.watchers[:i:i], s.watchers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(ev ChangeEvent) {
	s.mu.Lock()
	watchers := append([]watcher(nil), s.watchers...)
	s.mu.Unlock()
	for _, w := range watchers {
		w.fn(ev)
	}
}

// commitLocked persists the current sequence, restoring prev on failure.
func (s *Store) commitLocked(ctx context.Context, prev []Record) error {
	if err := s.persistLocked(ctx); err != nil {
		s.records = prev
		s.logger.Error("persist catalog failed; change rolled back", logging.Error(err))
		return fmt.Errorf("persist catalog: %w", err)
	}
	s.warning = nil
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	records := s.records
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return s.slot.Write(ctx, data)
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) uniqueIDLocked() string {
	for {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
}
