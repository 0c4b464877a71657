package tx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/durable"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/format"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/logger"
	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
)

// Options configures a Guard.
type Options struct {
	// Flush controls syncing of backups and restored files.
	Flush durable.FlushMode
}

// Frame records one guarded file.
type Frame struct {
	Original string // guarded file
	Backup   string // copy taken before modification
	Existed  bool   // whether Original existed when it was backed up
}

// Guard is a LIFO stack of undo frames.
type Guard struct {
	opts   Options
	frames []Frame
	byPath map[string]int
	active bool
	rbErrs []error

	// copyFn is replaced in tests to inject failures.
	copyFn func(src, dst string, mode durable.FlushMode) error
}

// NewGuard creates an inactive guard.
func NewGuard(opts Options) *Guard {
	return &Guard{
		opts:   opts,
		byPath: make(map[string]int),
		copyFn: CopyFile,
	}
}

// Begin opens the guard scope. The context is only checked for
// cancellation; nothing inside the scope observes it.
func (g *Guard) Begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.active {
		return &types.Error{Kind: types.ErrKindState, Msg: "guard already active"}
	}
	g.frames = g.frames[:0]
	clear(g.byPath)
	g.rbErrs = nil
	g.active = true
	return nil
}

// Backup snapshots path and pushes an undo frame for it.
//
// Backing up a path that is already guarded returns the existing frame
// without taking a second copy, so rollback restores the oldest snapshot.
// If the copy fails no frame is pushed and any partial backup is removed.
func (g *Guard) Backup(path string) (Frame, error) {
	if !g.active {
		return Frame{}, &types.Error{Kind: types.ErrKindState, Msg: "backup outside guard scope", Path: path}
	}
	if i, ok := g.byPath[path]; ok {
		return g.frames[i], nil
	}

	fr := Frame{Original: path, Backup: SuffixedPath(path, format.BackupSuffix)}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		fr.Existed = true
		if err := g.copyFn(path, fr.Backup, g.opts.Flush); err != nil {
			os.Remove(fr.Backup)
			return Frame{}, types.IOError("back up file", path, err)
		}
		logger.Debug("copied file", "from", path, "to", fr.Backup)
	case errors.Is(err, fs.ErrNotExist):
		if err := writeEmpty(fr.Backup, g.opts.Flush); err != nil {
			os.Remove(fr.Backup)
			return Frame{}, types.IOError("create placeholder backup", fr.Backup, err)
		}
		logger.Debug("created empty backup for missing file", "path", path, "backup", fr.Backup)
	default:
		return Frame{}, types.IOError("stat file", path, err)
	}

	g.byPath[path] = len(g.frames)
	g.frames = append(g.frames, fr)
	logger.Debug("adding undo frame", "original", fr.Original, "backup", fr.Backup, "existed", fr.Existed)
	return fr, nil
}

// Commit closes the scope keeping all modifications and deletes the backups.
// A backup that cannot be deleted is logged and left behind; the guarded
// files are already in their final state.
func (g *Guard) Commit() error {
	if !g.active {
		return &types.Error{Kind: types.ErrKindState, Msg: "commit outside guard scope"}
	}
	for i := len(g.frames) - 1; i >= 0; i-- {
		fr := g.frames[i]
		logger.Debug("removing undo frame", "original", fr.Original)
		if err := removeIfExists(fr.Backup); err != nil {
			logger.Warn("could not delete backup", "path", fr.Backup, "err", err)
			continue
		}
		logger.Debug("deleted file", "path", fr.Backup)
	}
	g.active = false
	return nil
}

// Rollback closes the scope restoring every frame, newest first.
//
// Errors are recorded in RollbackErrors and never stop the unwind. Calling
// Rollback on an inactive guard does nothing.
func (g *Guard) Rollback() {
	if !g.active {
		return
	}
	for i := len(g.frames) - 1; i >= 0; i-- {
		if err := g.restore(g.frames[i]); err != nil {
			logger.Error("rollback failed", "original", g.frames[i].Original, "backup", g.frames[i].Backup, "err", err)
			g.rbErrs = append(g.rbErrs, err)
		}
	}
	g.active = false
}

func (g *Guard) restore(fr Frame) error {
	logger.Debug("removing undo frame", "original", fr.Original, "existed", fr.Existed)

	if fr.Existed {
		if err := g.copyFn(fr.Backup, fr.Original, g.opts.Flush); err != nil {
			// Keep the backup: it is now the only good copy.
			return types.IOError("restore file", fr.Original, err)
		}
		logger.Debug("copied file", "from", fr.Backup, "to", fr.Original)
	} else {
		if err := removeIfExists(fr.Original); err != nil {
			return types.IOError("delete created file", fr.Original, err)
		}
		logger.Debug("deleted file", "path", fr.Original)
	}

	if err := removeIfExists(fr.Backup); err != nil {
		return types.IOError("delete backup", fr.Backup, err)
	}
	logger.Debug("deleted file", "path", fr.Backup)
	return nil
}

// Run executes fn inside a guard scope. When fn returns nil the scope is
// committed; otherwise it is rolled back and fn's error is returned
// unchanged. A panic in fn rolls back and then re-panics.
func (g *Guard) Run(ctx context.Context, fn func(ctx context.Context, g *Guard) error) error {
	if err := g.Begin(ctx); err != nil {
		return err
	}

	done := false
	defer func() {
		if done {
			return
		}
		r := recover()
		g.Rollback()
		if r != nil {
			panic(r)
		}
	}()

	if err := fn(ctx, g); err != nil {
		done = true
		g.Rollback()
		return err
	}
	done = true
	return g.Commit()
}

// Active reports whether a scope is open.
func (g *Guard) Active() bool { return g.active }

// Frames returns the frames of the current or most recent scope, oldest first.
func (g *Guard) Frames() []Frame {
	out := make([]Frame, len(g.frames))
	copy(out, g.frames)
	return out
}

// RollbackErrors returns the errors suppressed by the most recent Rollback.
func (g *Guard) RollbackErrors() []error {
	return g.rbErrs
}

// SuffixedPath splices suffix between path's base name and its extension:
// "dir/Table.txt" with "_BAK" becomes "dir/Table_BAK.txt".
func SuffixedPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// CopyFile copies src over dst and syncs dst according to mode.
func CopyFile(src, dst string, mode durable.FlushMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := durable.Sync(out, mode); err != nil {
		out.Close()
		return fmt.Errorf("sync %s: %w", dst, err)
	}
	return out.Close()
}

func writeEmpty(path string, mode durable.FlushMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := durable.Sync(f, mode); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
