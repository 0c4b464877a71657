package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/durable"
)

func noEnv(string) string { return "" }

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "puactl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(body)), 0o644))
	return path
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := load("", noEnv)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, durable.FlushAuto, cfg.FlushMode())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "other.yaml"), noEnv)
	require.Error(t, err)
}

func TestLoad_ParsesYAML(t *testing.T) {
	path := writeConfig(t, `
icu_dir: /opt/icu
icu_version: "70"
gennorm2: /opt/icu/bin/gennorm2
comment_prefix: "[Acme]"
flush: FULL
log:
  enabled: true
  dir: /var/log/puactl
  level: debug
`)
	cfg, err := load(path, noEnv)
	require.NoError(t, err)

	assert.Equal(t, "/opt/icu", cfg.ICUDir)
	assert.Equal(t, "70", cfg.ICUVersion)
	assert.Equal(t, "/opt/icu/bin/gennorm2", cfg.Gennorm2)
	assert.Equal(t, "[Acme]", cfg.CommentPrefix)
	assert.Equal(t, durable.FlushFull, cfg.FlushMode())
	assert.True(t, cfg.Log.Enabled)
	assert.Equal(t, "/var/log/puactl", cfg.Log.Dir)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "icu_dir: /from/file\ngennorm2: from-file\n")
	env := map[string]string{EnvICUDir: "/from/env", EnvGennorm2: "/env/gennorm2"}

	cfg, err := load(path, func(k string) string { return env[k] })
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.ICUDir)
	assert.Equal(t, "/env/gennorm2", cfg.Gennorm2)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad flush", "flush: sometimes", "flush"},
		{"bad level", "log:\n  level: chatty", "log.level"},
		{"bad yaml", "icu_dir: [unterminated", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(writeConfig(t, tt.body), noEnv)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_BlankGennormFallsBack(t *testing.T) {
	cfg, err := load(writeConfig(t, "gennorm2: \"  \""), noEnv)
	require.NoError(t, err)
	assert.Equal(t, "gennorm2", cfg.Gennorm2)
}

func TestDefaultYAML_ParsesToDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(DefaultYAML()), &cfg))
	cfg.normalize()
	assert.Equal(t, Default(), cfg)
}
