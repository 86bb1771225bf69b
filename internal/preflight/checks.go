package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"cdshelf/internal/slot"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWriterLock reports whether another process currently holds the data
// directory lock. A caller that already holds the lock sees it as busy.
func CheckWriterLock(dir string) Result {
	const name = "Writer lock"

	lock, err := slot.AcquireLock(dir)
	if err != nil {
		if errors.Is(err, slot.ErrLocked) {
			return Result{Name: name, Detail: "held by another cdshelf process"}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	defer lock.Release()
	return Result{Name: name, Passed: true, Detail: "free"}
}

// CheckSlot inspects the storage slot backing the catalog.
func CheckSlot(ctx context.Context, sl slot.Slot) Result {
	const name = "Storage slot"

	switch s := sl.(type) {
	case nil:
		return Result{Name: name, Detail: "not open"}
	case *slot.SQLite:
		health, err := s.CheckHealth(ctx)
		if err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", health.DBPath, err)}
		}
		if !health.IntegrityCheck {
			return Result{Name: name, Detail: fmt.Sprintf("%s (integrity check failed)", health.DBPath)}
		}
		if !health.SlotPresent {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (empty, schema v%d)", health.DBPath, health.SchemaVersion)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d bytes, schema v%d, updated %s)", health.DBPath, health.SlotBytes, health.SchemaVersion, health.UpdatedAt)}
	case *slot.File:
		info, err := os.Stat(s.Path())
		if err != nil {
			if os.IsNotExist(err) {
				return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (empty)", s.Path())}
			}
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", s.Path(), err)}
		}
		if err := unix.Access(s.Path(), unix.R_OK|unix.W_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", s.Path(), err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d bytes)", s.Path(), info.Size())}
	case *slot.Memory:
		return Result{Name: name, Passed: true, Detail: "in-memory (changes are not kept)"}
	default:
		if _, _, err := sl.Read(ctx); err != nil {
			return Result{Name: name, Detail: err.Error()}
		}
		return Result{Name: name, Passed: true, Detail: "readable"}
	}
}
