// Package main hosts the cdshelf CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into catalog
// operations: adding, editing and deleting records, listing and searching,
// snapshot export and import, the interactive browser, and configuration
// scaffolding. It centralizes configuration resolution, the single-writer
// lock and logging setup so subcommands only deal with presentation.
//
// Keep this package lean: add new functionality to internal/catalog first,
// then surface it through dedicated commands or flags here.
package main
