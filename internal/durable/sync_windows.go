//go:build windows

package durable

import (
	"os"

	"golang.org/x/sys/windows"
)

// fdatasync performs file sync using FlushFileBuffers.
// The full parameter is ignored on Windows.
func fdatasync(f *os.File, _ bool) error {
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}
