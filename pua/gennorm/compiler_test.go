package gennorm

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
)

// recordingRunner captures invocations and answers with a fixed result.
type recordingRunner struct {
	calls  []Command
	result Result
	err    error
	// write, when true, creates the -o output like gennorm2 would.
	write bool
}

func (r *recordingRunner) Run(_ context.Context, cmd Command) (Result, error) {
	r.calls = append(r.calls, cmd)
	if r.write && r.result.ExitCode == 0 && r.err == nil {
		if err := os.WriteFile(cmd.Args[1], []byte("nrm"), 0o644); err != nil {
			return Result{}, err
		}
	}
	return r.result, r.err
}

func TestCompile_ArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nfc_fw.nrm")
	r := &recordingRunner{write: true}
	c := NewCompiler(filepath.Join(dir, "bin", "gennorm2"), r)

	src := Sources{NFC: "nfc.txt", NFCHebrew: "nfcHebrew.txt", NFKC: "nfkc.txt",
		NFCOverrides: "nfcOverrides.txt", NFKCOverrides: "nfkcOverrides.txt"}

	_, err := c.Compile(t.Context(), src.Canonical(), out)
	require.NoError(t, err)
	_, err = c.Compile(t.Context(), src.Compatibility(), out)
	require.NoError(t, err)

	require.Len(t, r.calls, 2)
	assert.Equal(t, []string{"-o", out, "nfc.txt", "nfcHebrew.txt", "nfcOverrides.txt"}, r.calls[0].Args)
	assert.Equal(t, []string{"-o", out, "nfc.txt", "nfkc.txt", "nfcHebrew.txt", "nfcOverrides.txt", "nfkcOverrides.txt"}, r.calls[1].Args)
	assert.Equal(t, filepath.Join(dir, "bin"), r.calls[0].Dir)
}

func TestCompile_BareToolNameHasNoWorkingDir(t *testing.T) {
	r := &recordingRunner{}
	_, err := NewCompiler("gennorm2", r).Compile(t.Context(), nil, filepath.Join(t.TempDir(), "x.nrm"))
	require.NoError(t, err)
	assert.Equal(t, "", r.calls[0].Dir)
}

func TestCompile_DeletesExistingArtifact(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nfc_fw.nrm")
	require.NoError(t, os.WriteFile(out, []byte("old"), 0o644))

	var sawOld bool
	runner := RunnerFunc(func(_ context.Context, cmd Command) (Result, error) {
		_, err := os.Stat(out)
		sawOld = err == nil
		return Result{}, nil
	})

	res, err := NewCompiler("gennorm2", runner).Compile(t.Context(), nil, out)
	require.NoError(t, err)
	assert.False(t, sawOld, "artifact must be gone before the tool runs")
	assert.Empty(t, res.Deferred)
	assert.NoFileExists(t, LedgerPath(dir))
}

func TestCompile_LockedArtifactIsRenamedAndRecorded(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nfkc_fw.nrm")
	require.NoError(t, os.WriteFile(out, []byte("in use"), 0o644))

	c := NewCompiler("gennorm2", &recordingRunner{write: true})
	c.remove = func(string) error { return os.ErrPermission }

	res, err := c.Compile(t.Context(), nil, out)
	require.NoError(t, err)
	require.NotEmpty(t, res.Deferred)
	assert.Equal(t, dir, filepath.Dir(res.Deferred))

	moved, err := os.ReadFile(res.Deferred)
	require.NoError(t, err)
	assert.Equal(t, "in use", string(moved))

	ledger, err := ReadLedger(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Deferred}, ledger)

	fresh, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "nrm", string(fresh))
}

func TestCompile_RenameFailureIsIOError(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nfc_fw.nrm")
	require.NoError(t, os.WriteFile(out, []byte("x"), 0o644))

	r := &recordingRunner{}
	c := NewCompiler("gennorm2", r)
	c.remove = func(string) error { return os.ErrPermission }
	c.rename = func(string, string) error { return os.ErrPermission }

	_, err := c.Compile(t.Context(), nil, out)
	require.True(t, errors.Is(err, types.ErrIO))
	assert.Empty(t, r.calls, "tool must not run when the output cannot be cleared")
}

func TestCompile_ExitCodes(t *testing.T) {
	tests := []struct {
		name       string
		result     Result
		runErr     error
		wantKind   types.ErrKind
		wantDetail string
	}{
		{
			name:       "file access error is locked",
			result:     Result{ExitCode: 4, Stderr: []byte("gennorm2: unable to open nfc_fw.nrm\n")},
			wantKind:   types.ErrKindLocked,
			wantDetail: "gennorm2: unable to open nfc_fw.nrm",
		},
		{
			name:       "other status is tool failure",
			result:     Result{ExitCode: 3, Stderr: []byte("syntax error line 12")},
			wantKind:   types.ErrKindToolFailure,
			wantDetail: "syntax error line 12",
		},
		{
			name:       "stdout used when stderr empty",
			result:     Result{ExitCode: 1, Stdout: []byte("usage: gennorm2")},
			wantKind:   types.ErrKindToolFailure,
			wantDetail: "usage: gennorm2",
		},
		{
			name:     "start failure",
			result:   Result{ExitCode: -1},
			runErr:   exec.ErrNotFound,
			wantKind: types.ErrKindToolFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recordingRunner{result: tt.result, err: tt.runErr}
			_, err := NewCompiler("gennorm2", r).Compile(t.Context(), []string{"in.txt"}, filepath.Join(t.TempDir(), "o.nrm"))
			require.Error(t, err)

			var te *types.Error
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.wantKind, te.Kind)
			assert.Equal(t, tt.wantDetail, te.Detail)
			if tt.runErr != nil {
				assert.ErrorIs(t, err, tt.runErr)
			}
		})
	}
}

func TestCompile_LockedMatchesSentinel(t *testing.T) {
	r := &recordingRunner{result: Result{ExitCode: 4}}
	_, err := NewCompiler("gennorm2", r).Compile(t.Context(), nil, filepath.Join(t.TempDir(), "o.nrm"))
	assert.ErrorIs(t, err, types.ErrLocked)
	assert.NotErrorIs(t, err, types.ErrToolFailure)
}

func TestExecRunner_CapturesExitAndStreams(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	res, err := ExecRunner{}.Run(t.Context(), Command{
		Path: sh,
		Args: []string{"-c", "echo out; echo err >&2; exit 4"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.ExitCode)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
}

func TestExecRunner_StartFailure(t *testing.T) {
	_, err := ExecRunner{}.Run(t.Context(), Command{Path: filepath.Join(t.TempDir(), "no-such-tool")})
	require.Error(t, err)
}

func TestLookTool(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "gennorm2")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755))

	got, err := LookTool(tool)
	require.NoError(t, err)
	assert.Equal(t, tool, got)

	_, err = LookTool(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, types.ErrToolFailure)

	_, err = LookTool(dir)
	assert.ErrorIs(t, err, types.ErrToolFailure)

	_, err = LookTool("definitely-not-a-real-gennorm2-binary")
	assert.ErrorIs(t, err, types.ErrToolFailure)
}
