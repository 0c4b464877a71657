package gennorm

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/format"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/logger"
	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
)

// LedgerPath returns the deferred-delete ledger for dir.
func LedgerPath(dir string) string {
	return filepath.Join(dir, format.DeferredDeleteLedger)
}

func appendLedger(dir, path string) error {
	f, err := os.OpenFile(LedgerPath(dir), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(path + format.LF); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadLedger returns the paths recorded in dir's ledger. A missing ledger
// is an empty one.
func ReadLedger(dir string) ([]string, error) {
	f, err := os.Open(LedgerPath(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, types.IOError("open ledger", LedgerPath(dir), err)
	}
	defer f.Close()

	var paths []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if p := strings.TrimSpace(sc.Text()); p != "" {
			paths = append(paths, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, types.IOError("read ledger", LedgerPath(dir), err)
	}
	return paths, nil
}

// SweepResult reports what a sweep did.
type SweepResult struct {
	Deleted   []string // removed, or already gone
	Remaining []string // still could not be removed; kept in the ledger
}

// Sweep deletes the files recorded in dir's ledger. Entries that still fail
// to delete stay in the ledger for the next sweep; the ledger itself is
// removed once empty.
func Sweep(dir string) (SweepResult, error) {
	var res SweepResult

	paths, err := ReadLedger(dir)
	if err != nil || len(paths) == 0 {
		return res, err
	}

	for _, p := range paths {
		err := os.Remove(p)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			logger.Debug("removed deferred file", "path", p)
			res.Deleted = append(res.Deleted, p)
			continue
		}
		logger.Warn("deferred file still locked", "path", p, "err", err)
		res.Remaining = append(res.Remaining, p)
	}

	ledger := LedgerPath(dir)
	if len(res.Remaining) == 0 {
		if err := os.Remove(ledger); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return res, types.IOError("remove ledger", ledger, err)
		}
		return res, nil
	}

	content := strings.Join(res.Remaining, format.LF) + format.LF
	if err := os.WriteFile(ledger, []byte(content), 0o644); err != nil {
		return res, types.IOError("rewrite ledger", ledger, err)
	}
	return res, nil
}
