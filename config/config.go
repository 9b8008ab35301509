// Package config implements TOML-backed configuration for the
// interpreter core, following the teacher's config.Config
// struct-of-sections pattern (github.com/BurntSushi/toml) with its
// sections re-scoped from a CPU emulator's concerns to this domain's:
// dialect selection (spec.md section 2, "Dialect"), the simulated
// memory arena's size, the keyboard ring's capacity, and statement
// trace output.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Dialect selects which keyword/token-set variant a program targets,
// per spec.md section 2 ("gwbasic, basica, pcjr, tandy, as a dialect
// tag the tokenizer and statement table key off of").
type Dialect string

const (
	DialectGWBasic Dialect = "gwbasic"
	DialectPCjr    Dialect = "pcjr"
	DialectTandy   Dialect = "tandy"
)

// Config holds the interpreter's tunable settings, loaded from a TOML
// file with DefaultConfig's values as fallback for anything the file
// doesn't set.
type Config struct {
	Dialect struct {
		Name       Dialect `toml:"name"`
		IgnoreCaps bool    `toml:"ignore_caps_lock"`
	} `toml:"dialect"`

	Memory struct {
		TotalBytes int `toml:"total_bytes"`
		VarStart   int `toml:"var_start"`
	} `toml:"memory"`

	Keyboard struct {
		RingLength  int  `toml:"ring_length"`
		EnableMacro bool `toml:"enable_function_key_macros"`
	} `toml:"keyboard"`

	Trace struct {
		Enabled    bool   `toml:"enabled"`
		OutputFile string `toml:"output_file"`
		Format     string `toml:"format"` // "text" or "json"
		MaxEntries int    `toml:"max_entries"`
	} `toml:"trace"`
}

// DefaultConfig returns a Config with the interpreter's stock settings:
// GW-BASIC dialect, the classic 60300-byte arena starting at 4720 (see
// memory.Store), a 15-slot keyboard ring, and tracing off.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Dialect.Name = DialectGWBasic
	cfg.Dialect.IgnoreCaps = false

	cfg.Memory.TotalBytes = 60300
	cfg.Memory.VarStart = 4720

	cfg.Keyboard.RingLength = 15
	cfg.Keyboard.EnableMacro = true

	cfg.Trace.Enabled = false
	cfg.Trace.OutputFile = "trace.log"
	cfg.Trace.Format = "text"
	cfg.Trace.MaxEntries = 100000

	return cfg
}

// GetConfigPath returns the platform config file path, $XDG-aware via
// os.UserConfigDir, falling back to the current directory if the OS
// can't resolve one.
func GetConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	dir = filepath.Join(dir, "gwbasic-core")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "config.toml")
}

// GetLogPath returns the platform log directory, creating it if
// necessary, falling back to "logs" in the current directory.
func GetLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "logs"
	}
	dir = filepath.Join(dir, "gwbasic-core", "logs")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "logs"
	}
	return dir
}

// Load reads configuration from the default config file, returning
// DefaultConfig's values untouched if the file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads configuration from path, layering it over
// DefaultConfig's values.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes configuration to path as TOML.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
