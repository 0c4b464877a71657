// Package config loads puactl.yaml, the optional configuration file of the
// puactl command.
//
// Precedence, lowest first: built-in defaults, the file, environment
// variables, command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/durable"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/format"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/logger"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "puactl.yaml"

// Environment overrides.
const (
	EnvICUDir   = "ICU_DATA"
	EnvGennorm2 = "PUACTL_GENNORM2"
)

const defaultConfigYAML = `# puactl configuration

# ICU directory holding UnicodeDataOverrides.txt and data/. The data directory
# itself is accepted too.
icu_dir: ""

# Version in icudt<version>l. Leave empty to detect it.
icu_version: ""

# gennorm2 executable: a name looked up on PATH or an explicit path.
gennorm2: gennorm2

# Start of the comment appended to installed lines. Empty means [SIL-Corp].
comment_prefix: ""

# none | auto | full
flush: auto

log:
  enabled: false
  dir: ""
  level: info
`

// LogConfig configures the log file.
type LogConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Dir     string `yaml:"dir,omitempty" json:"dir,omitempty"`
	Level   string `yaml:"level" json:"level"`
}

// Config models puactl.yaml.
type Config struct {
	ICUDir        string    `yaml:"icu_dir" json:"icu_dir"`
	ICUVersion    string    `yaml:"icu_version" json:"icu_version"`
	Gennorm2      string    `yaml:"gennorm2" json:"gennorm2"`
	CommentPrefix string    `yaml:"comment_prefix" json:"comment_prefix"`
	Flush         string    `yaml:"flush" json:"flush"`
	Log           LogConfig `yaml:"log" json:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Gennorm2: format.GennormTool,
		Flush:    durable.FlushAuto.String(),
		Log:      LogConfig{Level: "info"},
	}
}

// DefaultYAML returns a commented configuration file with the defaults.
func DefaultYAML() string { return defaultConfigYAML }

// Load reads the file at path over the defaults and applies environment
// overrides. A missing file is not an error when path is empty or the
// default name.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	explicit := path != "" && path != DefaultFileName
	if path == "" {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
		logger.Debug("loaded configuration", "path", path)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyEnv(getenv)
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvICUDir); v != "" {
		c.ICUDir = v
	}
	if v := getenv(EnvGennorm2); v != "" {
		c.Gennorm2 = v
	}
}

func (c *Config) normalize() {
	c.ICUDir = strings.TrimSpace(c.ICUDir)
	c.ICUVersion = strings.TrimSpace(c.ICUVersion)
	c.Gennorm2 = strings.TrimSpace(c.Gennorm2)
	if c.Gennorm2 == "" {
		c.Gennorm2 = format.GennormTool
	}
	c.Flush = strings.ToLower(strings.TrimSpace(c.Flush))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}

func (c Config) validate() error {
	if _, err := durable.ParseFlushMode(c.Flush); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// FlushMode returns the parsed flush setting.
func (c Config) FlushMode() durable.FlushMode {
	m, _ := durable.ParseFlushMode(c.Flush)
	return m
}

// LogLevel returns the parsed log level.
func (c Config) LogLevel() slog.Level {
	l, _ := logger.ParseLevel(c.Log.Level)
	return l
}
