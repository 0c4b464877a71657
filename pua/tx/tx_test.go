package tx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/durable"
	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func newTestGuard() *Guard {
	return NewGuard(Options{Flush: durable.FlushNone})
}

func TestSuffixedPath(t *testing.T) {
	tests := []struct {
		path, suffix, want string
	}{
		{"dir/UnicodeDataOverrides.txt", "_BAK", "dir/UnicodeDataOverrides_BAK.txt"},
		{"dir/UnicodeDataOverrides.txt", "_ORIGINAL", "dir/UnicodeDataOverrides_ORIGINAL.txt"},
		{"dir/nfc_fw.nrm", "_BAK", "dir/nfc_fw_BAK.nrm"},
		{"dir/TempFilesToDelete", "_BAK", "dir/TempFilesToDelete_BAK"},
		{"a.b/file", "_BAK", "a.b/file_BAK"},
	}
	for _, tt := range tests {
		got := SuffixedPath(filepath.FromSlash(tt.path), tt.suffix)
		assert.Equal(t, filepath.FromSlash(tt.want), got)
	}
}

func TestGuard_BackupOutsideScope(t *testing.T) {
	g := newTestGuard()
	_, err := g.Backup(filepath.Join(t.TempDir(), "x.txt"))
	assert.ErrorIs(t, err, types.ErrState)

	assert.ErrorIs(t, g.Commit(), types.ErrState)
}

func TestGuard_BeginTwice(t *testing.T) {
	g := newTestGuard()
	require.NoError(t, g.Begin(t.Context()))
	assert.ErrorIs(t, g.Begin(t.Context()), types.ErrState)
	g.Rollback()
	assert.False(t, g.Active())
}

func TestGuard_BeginCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	g := newTestGuard()
	assert.ErrorIs(t, g.Begin(ctx), context.Canceled)
	assert.False(t, g.Active())
}

func TestGuard_BackupExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.txt")
	writeFile(t, path, "v1")

	g := newTestGuard()
	require.NoError(t, g.Begin(t.Context()))

	fr, err := g.Backup(path)
	require.NoError(t, err)
	assert.True(t, fr.Existed)
	assert.Equal(t, filepath.Join(dir, "table_BAK.txt"), fr.Backup)
	assert.Equal(t, "v1", readFile(t, fr.Backup))

	writeFile(t, path, "v2")
	again, err := g.Backup(path)
	require.NoError(t, err)
	assert.Equal(t, fr, again)
	assert.Equal(t, "v1", readFile(t, fr.Backup), "second backup must not overwrite the snapshot")
	assert.Len(t, g.Frames(), 1)

	g.Rollback()
	assert.Equal(t, "v1", readFile(t, path))
	assert.NoFileExists(t, fr.Backup)
	assert.Empty(t, g.RollbackErrors())
}

func TestGuard_BackupMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nfcOverrides.txt")

	g := newTestGuard()
	require.NoError(t, g.Begin(t.Context()))

	fr, err := g.Backup(path)
	require.NoError(t, err)
	assert.False(t, fr.Existed)
	assert.Equal(t, "", readFile(t, fr.Backup))

	writeFile(t, path, "created during install")
	g.Rollback()

	assert.NoFileExists(t, path)
	assert.NoFileExists(t, fr.Backup)
}

func TestGuard_CommitKeepsChangesAndDeletesBackups(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.nrm")
	writeFile(t, a, "old a")

	g := newTestGuard()
	err := g.Run(t.Context(), func(_ context.Context, g *Guard) error {
		for _, p := range []string{a, b} {
			if _, err := g.Backup(p); err != nil {
				return err
			}
		}
		writeFile(t, a, "new a")
		writeFile(t, b, "new b")
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "new a", readFile(t, a))
	assert.Equal(t, "new b", readFile(t, b))
	for _, fr := range g.Frames() {
		assert.NoFileExists(t, fr.Backup)
	}
	assert.False(t, g.Active())
}

func TestGuard_RunReturnsTriggeringError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.txt")
	writeFile(t, path, "baseline")

	boom := errors.New("compile failed")
	g := newTestGuard()
	err := g.Run(t.Context(), func(_ context.Context, g *Guard) error {
		if _, err := g.Backup(path); err != nil {
			return err
		}
		writeFile(t, path, "half-merged")
		return boom
	})

	assert.Same(t, boom, err)
	assert.Equal(t, "baseline", readFile(t, path))
}

func TestGuard_RunRollsBackOnPanic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.txt")
	writeFile(t, path, "baseline")

	g := newTestGuard()
	assert.PanicsWithValue(t, "kaboom", func() {
		_ = g.Run(t.Context(), func(_ context.Context, g *Guard) error {
			if _, err := g.Backup(path); err != nil {
				return err
			}
			writeFile(t, path, "mid-write")
			panic("kaboom")
		})
	})

	assert.Equal(t, "baseline", readFile(t, path))
	assert.NoFileExists(t, SuffixedPath(path, "_BAK"))
	assert.False(t, g.Active())
}

func TestGuard_RollbackIsLIFO(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "1.txt"),
		filepath.Join(dir, "2.txt"),
		filepath.Join(dir, "3.txt"),
	}
	for _, p := range paths {
		writeFile(t, p, "orig "+filepath.Base(p))
	}

	g := newTestGuard()
	var order []string
	g.copyFn = func(src, dst string, mode durable.FlushMode) error {
		if src == SuffixedPath(dst, "_BAK") {
			order = append(order, filepath.Base(dst))
		}
		return CopyFile(src, dst, mode)
	}

	require.NoError(t, g.Begin(t.Context()))
	for _, p := range paths {
		_, err := g.Backup(p)
		require.NoError(t, err)
	}
	g.Rollback()

	assert.Equal(t, []string{"3.txt", "2.txt", "1.txt"}, order)
}

// TestGuard_FaultInjection fails the modification after n of m files have been
// backed up and rewritten, and checks every file is back to its original bytes.
func TestGuard_FaultInjection(t *testing.T) {
	const m = 5
	for n := 0; n <= m; n++ {
		t.Run(fmt.Sprintf("fail_after_%d", n), func(t *testing.T) {
			dir := t.TempDir()
			var paths []string
			for i := range m {
				p := filepath.Join(dir, fmt.Sprintf("file%d.txt", i))
				// Every other file is absent before the install.
				if i%2 == 0 {
					writeFile(t, p, fmt.Sprintf("original %d", i))
				}
				paths = append(paths, p)
			}

			injected := errors.New("injected")
			g := newTestGuard()
			err := g.Run(t.Context(), func(_ context.Context, g *Guard) error {
				for i, p := range paths {
					if i == n {
						return injected
					}
					if _, err := g.Backup(p); err != nil {
						return err
					}
					writeFile(t, p, "modified")
				}
				return injected
			})
			require.ErrorIs(t, err, injected)
			assert.Empty(t, g.RollbackErrors())

			for i, p := range paths {
				if i%2 == 0 {
					assert.Equal(t, fmt.Sprintf("original %d", i), readFile(t, p))
				} else {
					assert.NoFileExists(t, p)
				}
				assert.NoFileExists(t, SuffixedPath(p, "_BAK"))
			}
		})
	}
}

func TestGuard_BackupCopyFailurePushesNoFrame(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.txt")
	writeFile(t, path, "x")

	g := newTestGuard()
	g.copyFn = func(src, dst string, _ durable.FlushMode) error {
		writeFile(t, dst, "partial")
		return os.ErrPermission
	}
	require.NoError(t, g.Begin(t.Context()))

	_, err := g.Backup(path)
	assert.ErrorIs(t, err, types.ErrIO)
	assert.Empty(t, g.Frames())
	assert.NoFileExists(t, SuffixedPath(path, "_BAK"))
	g.Rollback()
	assert.Equal(t, "x", readFile(t, path))
}

func TestGuard_RollbackErrorsAreRecordedAndUnwindContinues(t *testing.T) {
	dir := t.TempDir()
	stuck := filepath.Join(dir, "stuck.txt")
	fine := filepath.Join(dir, "fine.txt")
	writeFile(t, stuck, "stuck orig")
	writeFile(t, fine, "fine orig")

	g := newTestGuard()
	require.NoError(t, g.Begin(t.Context()))
	_, err := g.Backup(fine)
	require.NoError(t, err)
	_, err = g.Backup(stuck)
	require.NoError(t, err)
	writeFile(t, stuck, "changed")
	writeFile(t, fine, "changed")

	g.copyFn = func(src, dst string, mode durable.FlushMode) error {
		if dst == stuck {
			return os.ErrPermission
		}
		return CopyFile(src, dst, mode)
	}
	g.Rollback()

	require.Len(t, g.RollbackErrors(), 1)
	assert.ErrorIs(t, g.RollbackErrors()[0], types.ErrIO)
	assert.Equal(t, "fine orig", readFile(t, fine))
	// The unrestored file keeps its backup for manual recovery.
	assert.Equal(t, "stuck orig", readFile(t, SuffixedPath(stuck, "_BAK")))
}

func TestGuard_ReusableAfterCommit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.txt")
	writeFile(t, path, "one")

	g := newTestGuard()
	require.NoError(t, g.Run(t.Context(), func(_ context.Context, g *Guard) error {
		_, err := g.Backup(path)
		writeFile(t, path, "two")
		return err
	}))

	err := g.Run(t.Context(), func(_ context.Context, g *Guard) error {
		if _, err := g.Backup(path); err != nil {
			return err
		}
		writeFile(t, path, "three")
		return errors.New("stop")
	})
	require.Error(t, err)
	assert.Equal(t, "two", readFile(t, path))
	assert.Len(t, g.Frames(), 1)
}
