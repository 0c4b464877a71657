// Package install runs the full PUA install: merge the user's definitions
// into the override table, regenerate the normalization fragments, and
// recompile both normalization artifacts, all inside one file guard so a
// failure at any step leaves the ICU directory as it was.
package install

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/durable"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/logger"
	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
	"github.com/2pages/FieldWorksMacOS-sub008/pua"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/chardefs"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/gennorm"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/merge"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/normfrag"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/tx"
)

// DefaultCommentPrefix starts the comment tag of every installed line.
const DefaultCommentPrefix = "[SIL-Corp]"

// timestampLayout is the long date/time form used in comment tags.
const timestampLayout = "Monday, January 2, 2006 3:04:05 PM"

// Options configures an Installer.
type Options struct {
	// CommentPrefix starts the comment tag. Default: DefaultCommentPrefix.
	CommentPrefix string

	// Flush controls syncing of every written file. Default: durable.FlushAuto
	Flush durable.FlushMode

	// Now supplies the comment timestamp. Default: time.Now
	Now func() time.Time
}

// Installer installs character definitions into one ICU directory.
type Installer struct {
	layout   Layout
	compiler *gennorm.Compiler
	opts     Options
}

// New creates an installer for layout that compiles with c.
func New(layout Layout, c *gennorm.Compiler, opts Options) *Installer {
	if opts.CommentPrefix == "" {
		opts.CommentPrefix = DefaultCommentPrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Installer{layout: layout, compiler: c, opts: opts}
}

// Layout returns the installer's ICU layout.
func (in *Installer) Layout() Layout { return in.layout }

// Result summarizes a completed install.
type Result struct {
	Comment    string
	Merge      merge.Stats
	Combining  int // lines in the combining-class fragment
	Decomp     int // lines in the decomposition fragment
	Skipped    int // malformed table lines ignored by extraction
	Duplicates []pua.Codepoint
	Deferred   []string // locked artifacts moved aside for a later sweep
	Files      []string // files the install rewrote
}

// Comment builds the tag appended to every installed line.
func (in *Installer) Comment(source string) string {
	return CommentTag(in.opts.CommentPrefix, source, in.opts.Now())
}

// CommentTag formats the comment for lines installed from source at time t.
// An empty prefix means DefaultCommentPrefix.
func CommentTag(prefix, source string, t time.Time) string {
	if prefix == "" {
		prefix = DefaultCommentPrefix
	}
	return fmt.Sprintf("%s %s User Added %s", prefix, source, t.Format(timestampLayout))
}

// InstallFile reads the character definitions at path and installs them.
func (in *Installer) InstallFile(ctx context.Context, path string) (Result, error) {
	b, err := chardefs.ParseFile(path)
	if err != nil {
		return Result{}, err
	}
	return in.Install(ctx, b, path)
}

// Install merges the records of b into the override table and rebuilds the
// normalization data. source names the definitions in the comment tag.
//
// On error every file the install touched is restored and the error that
// stopped it is returned. Locked artifacts already moved aside stay in the
// deferred-delete ledger either way.
func (in *Installer) Install(ctx context.Context, b *pua.Batch, source string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{
		Comment:    in.Comment(source),
		Duplicates: b.Duplicates(),
	}
	l := in.layout

	if !isDir(l.BinaryDir) {
		return res, &types.Error{Kind: types.ErrKindDirectoryNotFound, Msg: "ICU binary data directory does not exist", Path: l.BinaryDir}
	}
	if err := in.BackupOriginal(); err != nil {
		return res, err
	}

	// The steps below must not be interrupted halfway.
	runCtx := context.WithoutCancel(ctx)
	recs := b.Sorted()

	logger.Info("installing characters", "source", source, "count", len(recs), "icu_dir", l.Dir)

	g := tx.NewGuard(tx.Options{Flush: in.opts.Flush})
	err := g.Run(ctx, func(_ context.Context, g *tx.Guard) error {
		// 1. Merge into the live table.
		if _, err := g.Backup(l.OutputTable()); err != nil {
			return err
		}
		opts := merge.DefaultOptions(res.Comment)
		opts.Flush = in.opts.Flush
		stats, err := merge.InsertFile(runCtx, l.BaselineTable(), l.OutputTable(), recs, opts)
		if err != nil {
			return fmt.Errorf("merge override table: %w", err)
		}
		res.Merge = stats
		logger.Info("merged override table", "stats", stats.String())

		// 2. Regenerate the fragments.
		frags, err := normfrag.ExtractFile(l.OutputTable())
		if err != nil {
			return fmt.Errorf("extract normalization fragments: %w", err)
		}
		for _, p := range []string{l.NFCFragment(), l.NFKCFragment()} {
			if _, err := g.Backup(p); err != nil {
				return err
			}
		}
		if err := frags.WriteFiles(l.NFCFragment(), l.NFKCFragment(), in.opts.Flush); err != nil {
			return err
		}
		res.Combining, res.Decomp, res.Skipped = len(frags.Combining), len(frags.Decomposition), frags.Skipped

		// 3. Recompile both artifacts.
		for _, p := range []string{l.CanonicalArtifact(), l.CompatibilityArtifact()} {
			if _, err := g.Backup(p); err != nil {
				return err
			}
		}
		src := l.Sources()
		steps := []struct {
			inputs []string
			output string
		}{
			{src.Canonical(), l.CanonicalArtifact()},
			{src.Compatibility(), l.CompatibilityArtifact()},
		}
		for _, s := range steps {
			out, err := in.compiler.Compile(runCtx, s.inputs, s.output)
			if out.Deferred != "" {
				res.Deferred = append(res.Deferred, out.Deferred)
			}
			if err != nil {
				return fmt.Errorf("compile %s: %w", filepath.Base(s.output), err)
			}
			if err := durable.SyncFile(s.output, in.opts.Flush); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return types.IOError("sync artifact", s.output, err)
			}
		}
		return nil
	})
	for _, rbErr := range g.RollbackErrors() {
		logger.Warn("file not restored", "err", rbErr)
	}
	if err != nil {
		logger.Error("install failed, changes rolled back", "err", err)
		return res, err
	}

	for _, fr := range g.Frames() {
		res.Files = append(res.Files, fr.Original)
	}
	logger.Info("install complete", "written", res.Merge.Written(), "deferred", len(res.Deferred))
	return res, nil
}

// BackupOriginal copies the live table to its _ORIGINAL name unless that copy
// already exists. A missing live table is not an error.
func (in *Installer) BackupOriginal() error {
	src, dst := in.layout.OutputTable(), in.layout.OriginalTable()
	if _, err := os.Stat(dst); err == nil {
		return nil
	}
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := tx.CopyFile(src, dst, in.opts.Flush); err != nil {
		os.Remove(dst)
		return types.IOError("back up original table", src, err)
	}
	logger.Info("saved original override table", "path", dst)
	return nil
}
