package catalog

import (
	"fmt"
	"math"
	"strings"
)

// MaxDurationMinutes is the largest duration a record may carry. Decoding a
// snapshot enforces the same bound, so every accepted record round-trips.
const MaxDurationMinutes = math.MaxInt32

// Record is one catalog entry describing a single physical media item.
type Record struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Author          *string  `json:"author"`
	DurationMinutes *int     `json:"duration"`
	Genre           *string  `json:"genre"`
	Price           *float64 `json:"price"`
	Favorite        bool     `json:"favorite"`
}

// String returns a pointer to a trimmed copy of v, or nil when v is blank.
func String(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Validate checks the record shape. ID is not checked; the store owns it.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if r.DurationMinutes != nil {
		switch d := *r.DurationMinutes; {
		case d < 0:
			return &ValidationError{Field: "duration", Reason: "must not be negative"}
		case int64(d) > MaxDurationMinutes:
			return &ValidationError{Field: "duration", Reason: fmt.Sprintf("must not exceed %d minutes", MaxDurationMinutes)}
		}
	}
	if r.Price != nil {
		p := *r.Price
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return &ValidationError{Field: "price", Reason: "must be a finite number"}
		}
		if p < 0 {
			return &ValidationError{Field: "price", Reason: "must not be negative"}
		}
	}
	return nil
}

// normalized trims text fields and turns blank optional text into nil, the
// way the form treated empty inputs.
func (r Record) normalized() Record {
	out := r.Clone()
	out.Title = strings.TrimSpace(out.Title)
	if out.Author != nil {
		out.Author = String(*out.Author)
	}
	if out.Genre != nil {
		out.Genre = String(*out.Genre)
	}
	return out
}

// Clone returns a deep copy so callers cannot alias stored pointers.
func (r Record) Clone() Record {
	out := r
	if r.Author != nil {
		v := *r.Author
		out.Author = &v
	}
	if r.DurationMinutes != nil {
		v := *r.DurationMinutes
		out.DurationMinutes = &v
	}
	if r.Genre != nil {
		v := *r.Genre
		out.Genre = &v
	}
	if r.Price != nil {
		v := *r.Price
		out.Price = &v
	}
	return out
}

func cloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
