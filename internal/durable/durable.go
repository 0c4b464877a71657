// Package durable flushes freshly written files to stable storage before the
// install treats them as committed.
package durable

import (
	"fmt"
	"os"
)

// FlushMode controls how hard SyncFile pushes data to disk.
type FlushMode int

const (
	// FlushAuto syncs file data (fdatasync where available). This is the default.
	FlushAuto FlushMode = iota

	// FlushNone skips syncing entirely. Useful for tests and scratch directories.
	FlushNone

	// FlushFull additionally asks the drive to flush its cache (F_FULLFSYNC on macOS).
	FlushFull
)

// ParseFlushMode maps a config spelling to a FlushMode.
func ParseFlushMode(s string) (FlushMode, error) {
	switch s {
	case "", "auto":
		return FlushAuto, nil
	case "none":
		return FlushNone, nil
	case "full":
		return FlushFull, nil
	}
	return FlushAuto, fmt.Errorf("unknown flush mode %q (want none, auto, or full)", s)
}

func (m FlushMode) String() string {
	switch m {
	case FlushNone:
		return "none"
	case FlushFull:
		return "full"
	default:
		return "auto"
	}
}

// SyncFile opens path and flushes its contents according to mode.
func SyncFile(path string, mode FlushMode) error {
	if mode == FlushNone {
		return nil
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return Sync(f, mode)
}

// Sync flushes an open file according to mode.
func Sync(f *os.File, mode FlushMode) error {
	if mode == FlushNone {
		return nil
	}
	return fdatasync(f, mode == FlushFull)
}
