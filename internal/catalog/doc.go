// Package catalog owns the ordered collection of media records and keeps it
// mirrored to a persistent slot.
//
// Store is constructed explicitly with a slot and logger and is the single
// writer for the catalog. Every successful mutation rewrites the whole slot
// before observers are notified; a failed write rolls the in-memory sequence
// back so memory and storage never diverge. Records carry a stable ID assigned
// at creation, and index-based variants exist for callers that address rows
// by position.
//
// Read helpers (Search, SortedView, DisplayList) are pure and never reorder the
// stored sequence; only views are sorted. Snapshots are pretty-printed JSON
// arrays whose keys match the legacy "cds" export, with null for absent
// fields.
package catalog
