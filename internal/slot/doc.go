// Package slot persists the catalog as a single named value.
//
// A Slot holds the whole serialized catalog under one key: it is read once
// when the catalog loads and fully overwritten after every mutation, never
// appended to or partially written. The SQLite backend keeps slots in a
// key/value table and is the default; the file backend writes one file per key
// with an atomic rename; the memory backend exists for tests and dry runs.
//
// Lock guards the data directory with an advisory file lock so exactly one
// writer mutates a slot at a time across processes.
package slot
