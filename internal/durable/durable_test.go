package durable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFlushMode(t *testing.T) {
	tests := []struct {
		in      string
		want    FlushMode
		wantErr bool
	}{
		{in: "", want: FlushAuto},
		{in: "auto", want: FlushAuto},
		{in: "none", want: FlushNone},
		{in: "full", want: FlushFull},
		{in: "sometimes", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFlushMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) FlushMode {
	t.Helper()
	m, err := ParseFlushMode(s)
	require.NoError(t, err)
	return m
}

func TestSyncFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.txt")
	require.NoError(t, os.WriteFile(path, []byte("E000;X;Co\n"), 0o644))

	require.NoError(t, SyncFile(path, FlushAuto))
	require.NoError(t, SyncFile(path, FlushNone))
}

func TestSyncFile_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.txt")
	require.Error(t, SyncFile(missing, FlushAuto))
	// FlushNone never touches the filesystem.
	require.NoError(t, SyncFile(missing, FlushNone))
}
