// Package config resolves server settings from a TOML file and the
// environment. Resolution happens once at startup; the resulting value
// is immutable and passed down by copy.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the config file name looked for in the current
// directory when no path is given.
const DefaultFile = "ansible-mcp.toml"

// Config carries every tunable the server has. Zero values are filled
// with defaults by Load; every field can also be set from the
// environment, which wins over the file.
type Config struct {
	// Dir is the workspace root. Everything the server touches lives
	// under it.
	Dir string `toml:"dir"`

	// PlaybookBin and AdhocBin name the engine executables; bare names
	// are resolved through PATH.
	PlaybookBin string `toml:"playbook_bin"`
	AdhocBin    string `toml:"adhoc_bin"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `toml:"log_level"`

	Timeouts TimeoutConfig `toml:"timeouts"`
}

// TimeoutConfig holds the per-operation wall-clock bounds in seconds.
type TimeoutConfig struct {
	RunSeconds      int `toml:"run_seconds"`
	ValidateSeconds int `toml:"validate_seconds"`
	AdhocSeconds    int `toml:"adhoc_seconds"`
	DeviceSeconds   int `toml:"device_seconds"`
	PingSeconds     int `toml:"ping_seconds"`
}

// Environment variable names. ANSIBLE_DIR is the published contract;
// the rest exist for test rigs and unusual installs.
const (
	EnvDir         = "ANSIBLE_DIR"
	EnvPlaybookBin = "ANSIBLE_MCP_PLAYBOOK_BIN"
	EnvAdhocBin    = "ANSIBLE_MCP_ADHOC_BIN"
	EnvLogLevel    = "ANSIBLE_MCP_LOG_LEVEL"
)

func defaults() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Dir:         home + "/ansible",
		PlaybookBin: "ansible-playbook",
		AdhocBin:    "ansible",
		LogLevel:    "info",
		Timeouts: TimeoutConfig{
			RunSeconds:      300,
			ValidateSeconds: 60,
			AdhocSeconds:    120,
			DeviceSeconds:   120,
			PingSeconds:     60,
		},
	}
}

// Load resolves the configuration: defaults, then the TOML file at path
// (skipped silently when path is DefaultFile and the file is absent;
// an explicit path must exist), then environment overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) || path != DefaultFile {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	applyEnv(&cfg)

	if cfg.Dir == "" {
		return Config{}, fmt.Errorf("workspace dir is empty; set dir in %s or %s in the environment", path, EnvDir)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDir); v != "" {
		cfg.Dir = v
	}
	if v := os.Getenv(EnvPlaybookBin); v != "" {
		cfg.PlaybookBin = v
	}
	if v := os.Getenv(EnvAdhocBin); v != "" {
		cfg.AdhocBin = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}

// Durations converts the timeout seconds into time.Durations, mapping
// non-positive entries back to the defaults.
func (t TimeoutConfig) Durations() (run, validate, adhoc, device, ping time.Duration) {
	def := defaults().Timeouts
	pick := func(v, d int) time.Duration {
		if v <= 0 {
			v = d
		}
		return time.Duration(v) * time.Second
	}
	return pick(t.RunSeconds, def.RunSeconds),
		pick(t.ValidateSeconds, def.ValidateSeconds),
		pick(t.AdhocSeconds, def.AdhocSeconds),
		pick(t.DeviceSeconds, def.DeviceSeconds),
		pick(t.PingSeconds, def.PingSeconds)
}
