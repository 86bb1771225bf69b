package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
)

// Search returns the records whose title, author or genre contains term,
// compared with Unicode case folding. A blank term returns every record in
// insertion order. The stored sequence is not modified.
func (s *Store) Search(term string) []Record {
	return Filter(s.Records(), term)
}

// Filter applies the Search predicate to records.
func Filter(records []Record, term string) []Record {
	term = strings.TrimSpace(term)
	if term == "" {
		return cloneAll(records)
	}
	fold := cases.Fold()
	needle := fold.String(term)

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if matches(fold, needle, r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func matches(fold cases.Caser, needle string, r Record) bool {
	for _, field := range []string{r.Title, deref(r.Author), deref(r.Genre)} {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}

// SortedView returns a copy of records ordered by title using the store's
// locale, ignoring case and accents. Ties keep their input order.
func (s *Store) SortedView(records []Record) []Record {
	s.mu.Lock()
	tag := s.locale
	s.mu.Unlock()

	out := cloneAll(records)
	col := collate.New(tag, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i].Title, out[j].Title) < 0
	})
	return out
}

// DisplayList is the filtered, sorted list a UI renders for term.
func (s *Store) DisplayList(term string) []Record {
	return s.SortedView(s.Search(term))
}
