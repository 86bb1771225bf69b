package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"cdshelf/internal/logging"
)

// RejectedEntry describes an import element that failed validation.
type RejectedEntry struct {
	// Position is the zero-based index in the imported array.
	Position int    `json:"position"`
	Title    string `json:"title,omitempty"`
	Reason   string `json:"reason"`
}

// ImportReport summarizes an import.
type ImportReport struct {
	Total       int             `json:"total"`
	Accepted    int             `json:"accepted"`
	IDsAssigned int             `json:"ids_assigned"`
	Rejected    []RejectedEntry `json:"rejected,omitempty"`
}

// ExportSnapshot serializes the full catalog as an indented JSON array that
// ImportSnapshot reads back losslessly.
func (s *Store) ExportSnapshot() ([]byte, error) {
	s.mu.Lock()
	records := cloneAll(s.records)
	indent := strings.Repeat(" ", s.indent)
	s.mu.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportSnapshot replaces the whole catalog with the records in data.
//
// Text that is not JSON fails with a ParseError; JSON that is not an array
// fails with ErrInvalidFormat. Array elements are validated one by one and
// rejected elements are listed in the report. When every element of a
// non-empty array is rejected the import fails with ErrInvalidFormat. On any
// failure the current catalog is left untouched.
func (s *Store) ImportSnapshot(ctx context.Context, data []byte) (ImportReport, error) {
	result, err := decodeSnapshot(data, s.newID)
	if err != nil {
		return ImportReport{}, err
	}
	report := result.report
	if report.Total > 0 && report.Accepted == 0 {
		return report, fmt.Errorf("%w: none of %d entries is a valid record", ErrInvalidFormat, report.Total)
	}

	s.mu.Lock()
	prev := s.records
	s.records = result.records
	if err := s.commitLocked(ctx, prev); err != nil {
		s.mu.Unlock()
		return report, err
	}
	count := len(s.records)
	s.mu.Unlock()

	if len(report.Rejected) > 0 {
		logging.WarnWithContext(s.logger, "import skipped invalid entries",
			"import_partial",
			logging.Int("rejected", len(report.Rejected)),
			logging.Count(report.Accepted),
			logging.String(logging.FieldErrorHint, "fix the listed entries and import again"),
			logging.String(logging.FieldImpact, "rejected entries are not in the catalog"),
		)
	}
	s.logger.Info("catalog imported", logging.Operation(string(OpImport)), logging.Count(count))
	s.notify(ChangeEvent{Op: OpImport, Count: count})
	return report, nil
}

type decodeResult struct {
	records []Record
	report  ImportReport
}

// snapshotEntry mirrors Record with loose types so one bad field rejects
// only its entry.
type snapshotEntry struct {
	ID       *string          `json:"id"`
	Title    *string          `json:"title"`
	Author   *string          `json:"author"`
	Duration *json.RawMessage `json:"duration"`
	Genre    *string          `json:"genre"`
	Price    *json.RawMessage `json:"price"`
	Favorite *bool            `json:"favorite"`
}

func decodeSnapshot(data []byte, newID func() string) (decodeResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return decodeResult{}, &ParseError{Err: errors.New("empty input")}
	}
	if !json.Valid(trimmed) {
		var probe any
		err := json.Unmarshal(trimmed, &probe)
		if err == nil {
			err = errors.New("malformed JSON")
		}
		return decodeResult{}, &ParseError{Err: err}
	}
	if trimmed[0] != '[' {
		return decodeResult{}, fmt.Errorf("%w: expected a list of records, got %s", ErrInvalidFormat, jsonKind(trimmed[0]))
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return decodeResult{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	result := decodeResult{
		records: make([]Record, 0, len(elements)),
		report:  ImportReport{Total: len(elements)},
	}
	seen := make(map[string]struct{}, len(elements))
	for i, raw := range elements {
		rec, err := decodeEntry(raw)
		if err != nil {
			result.report.Rejected = append(result.report.Rejected, RejectedEntry{
				Position: i,
				Title:    rec.Title,
				Reason:   err.Error(),
			})
			continue
		}
		if _, dup := seen[rec.ID]; rec.ID == "" || dup {
			rec.ID = freshID(newID, seen)
			result.report.IDsAssigned++
		}
		seen[rec.ID] = struct{}{}
		result.records = append(result.records, rec)
	}
	result.report.Accepted = len(result.records)
	return result, nil
}

func decodeEntry(raw json.RawMessage) (Record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Record{}, fmt.Errorf("entry is %s, not an object", jsonKind(firstByte(trimmed)))
	}

	var entry snapshotEntry
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		partial := Record{Title: probeTitle(trimmed)}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return partial, fmt.Errorf("field %s has wrong type %s", typeErr.Field, typeErr.Value)
		}
		return partial, err
	}

	rec := Record{Favorite: entry.Favorite != nil && *entry.Favorite}
	if entry.Title != nil {
		rec.Title = *entry.Title
	}
	if entry.ID != nil {
		rec.ID = strings.TrimSpace(*entry.ID)
	}
	if entry.Author != nil {
		rec.Author = String(*entry.Author)
	}
	if entry.Genre != nil {
		rec.Genre = String(*entry.Genre)
	}
	if entry.Duration != nil {
		n, err := numberField("duration", *entry.Duration)
		if err != nil {
			return rec, err
		}
		minutes, err := wholeNumber(n)
		if err != nil {
			return rec, fmt.Errorf("field duration %v", err)
		}
		rec.DurationMinutes = &minutes
	}
	if entry.Price != nil {
		n, err := numberField("price", *entry.Price)
		if err != nil {
			return rec, err
		}
		price, err := n.Float64()
		if err != nil {
			return rec, fmt.Errorf("field price is not a number: %s", n)
		}
		rec.Price = &price
	}

	rec = rec.normalized()
	if err := rec.Validate(); err != nil {
		return rec, err
	}
	return rec, nil
}

// probeTitle extracts the title of an entry that failed to decode, for the
// import report.
func probeTitle(raw []byte) string {
	var probe struct {
		Title any `json:"title"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	if title, ok := probe.Title.(string); ok {
		return title
	}
	return ""
}

// numberField accepts only JSON number literals; quoted numbers are rejected.
func numberField(name string, raw json.RawMessage) (json.Number, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("field %s: %w", name, err)
	}
	n, ok := v.(json.Number)
	if !ok {
		return "", fmt.Errorf("field %s must be a number, got %s", name, jsonKind(firstByte(bytes.TrimSpace(raw))))
	}
	return n, nil
}

// wholeNumber bounds durations to MaxDurationMinutes, the same limit
// Record.Validate applies.
func wholeNumber(n json.Number) (int, error) {
	if v, err := n.Int64(); err == nil {
		if v > MaxDurationMinutes || v < math.MinInt32 {
			return 0, fmt.Errorf("is out of range: %s", n)
		}
		return int(v), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("is not a number: %q", n.String())
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("is not a whole number: %s", n)
	}
	if f > MaxDurationMinutes || f < math.MinInt32 {
		return 0, fmt.Errorf("is out of range: %s", n)
	}
	return int(f), nil
}

func freshID(newID func() string, seen map[string]struct{}) string {
	for {
		id := newID()
		if _, taken := seen[id]; id != "" && !taken {
			return id
		}
	}
}

func firstByte(b []byte) byte {
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func jsonKind(b byte) string {
	switch b {
	case '{':
		return "an object"
	case '[':
		return "a list"
	case '"':
		return "a string"
	case 't', 'f':
		return "a boolean"
	case 'n':
		return "null"
	case 0:
		return "empty"
	default:
		return "a number"
	}
}
