package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/format"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/gennorm"
)

// FakeGennorm stands in for gennorm2. A successful run writes an artifact
// listing the base names of its inputs, one per line.
type FakeGennorm struct {
	Calls []gennorm.Command

	// Fail maps an output base name (nfc_fw.nrm) to the result returned
	// instead of writing that artifact.
	Fail map[string]gennorm.Result
}

// Run implements gennorm.Runner.
func (f *FakeGennorm) Run(_ context.Context, cmd gennorm.Command) (gennorm.Result, error) {
	f.Calls = append(f.Calls, cmd)

	out, inputs := splitArgs(cmd.Args)
	if res, ok := f.Fail[filepath.Base(out)]; ok {
		return res, nil
	}
	if err := os.WriteFile(out, []byte(FakeArtifact(inputs...)), 0o644); err != nil {
		return gennorm.Result{ExitCode: format.GennormFileAccessError, Stderr: []byte(err.Error())}, nil
	}
	return gennorm.Result{}, nil
}

// FakeArtifact is what FakeGennorm writes for inputs.
func FakeArtifact(inputs ...string) string {
	var sb strings.Builder
	for _, in := range inputs {
		sb.WriteString(filepath.Base(in))
		sb.WriteString(format.LF)
	}
	return sb.String()
}

func splitArgs(args []string) (string, []string) {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == format.GennormOutputFlag {
			rest := append([]string{}, args[:i]...)
			return args[i+1], append(rest, args[i+2:]...)
		}
	}
	return "", args
}

// WriteGennormScript installs a shell script named gennorm2 in dir that
// behaves like FakeGennorm, or exits with exitCode when it is non-zero.
// Skips the test where no POSIX shell is available.
func WriteGennormScript(t *testing.T, dir string, exitCode int) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake gennorm2 script requires a POSIX shell")
	}
	script := `#!/bin/sh
if [ "` + strconv.Itoa(exitCode) + `" != "0" ]; then
  echo "gennorm2: cannot open output" >&2
  exit ` + strconv.Itoa(exitCode) + `
fi
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then
    out="$2"
    shift 2
    continue
  fi
  inputs="$inputs$(basename "$1")
"
  shift
done
printf '%s' "$inputs" > "$out"
`
	path := filepath.Join(dir, format.GennormTool)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("Failed to write gennorm2 script: %v", err)
	}
	return path
}
