// Package preflight provides readiness checks for the filesystem paths and
// the storage slot that cdshelf depends on.
//
// The CLI "cdshelf status" command runs RunAll and prints each Result.
// Checks never modify the catalog.
package preflight
