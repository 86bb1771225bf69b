package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cdshelf/internal/catalog"
)

var errAmbiguousID = errors.New("ambiguous record ID prefix")

// resolveTarget finds a record from a "#N" position (1-based insertion
// order), a full ID, or a unique ID prefix. It returns the record and its
// zero-based index.
func resolveTarget(store *catalog.Store, arg string) (catalog.Record, int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return catalog.Record{}, -1, errors.New("record ID or #position is required")
	}

	if strings.HasPrefix(arg, "#") {
		n, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
		if err != nil {
			return catalog.Record{}, -1, fmt.Errorf("invalid position %q", arg)
		}
		rec, err := store.At(n - 1)
		if err != nil {
			return catalog.Record{}, -1, fmt.Errorf("position %s: %w", arg, err)
		}
		return rec, n - 1, nil
	}

	if rec, err := store.Get(arg); err == nil {
		return rec, store.IndexOf(rec.ID), nil
	}

	var (
		match catalog.Record
		index = -1
	)
	for i, rec := range store.Records() {
		if !strings.HasPrefix(rec.ID, arg) {
			continue
		}
		if index >= 0 {
			return catalog.Record{}, -1, fmt.Errorf("%w: %s", errAmbiguousID, arg)
		}
		match, index = rec, i
	}
	if index < 0 {
		return catalog.Record{}, -1, fmt.Errorf("%w: %s", catalog.ErrNotFound, arg)
	}
	return match, index, nil
}
