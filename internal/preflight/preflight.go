package preflight

import (
	"context"

	"cdshelf/internal/config"
	"cdshelf/internal/slot"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the directory and slot checks for the given config. The
// slot may be nil when it could not be opened; the slot check then reports
// that. The writer lock is checked separately with CheckWriterLock because
// callers usually hold it while inspecting the slot.
func RunAll(ctx context.Context, cfg *config.Config, sl slot.Slot) []Result {
	if cfg == nil {
		return nil
	}

	return []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckSlot(ctx, sl),
	}
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
