package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/cdtdelta/stresstrip/internal/archive"
	"github.com/cdtdelta/stresstrip/internal/correlate"
	"github.com/cdtdelta/stresstrip/internal/llm"
	"github.com/cdtdelta/stresstrip/internal/window"
)

// APIKeyEnv overrides llm.api_key when set.
const APIKeyEnv = "GEMINI_API_KEY"

// Duration is a time.Duration that decodes from strings such as "3h" or "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Config struct {
	Timezone        string   `toml:"timezone"`
	StressThreshold float64  `toml:"stress_threshold"`
	WindowPadding   Duration `toml:"window_padding"`
	MaxMembers      int      `toml:"max_members"`
	LogLevel        string   `toml:"log_level"`
	LLM             LLM      `toml:"llm"`
	Export          Export   `toml:"export"`
}

type LLM struct {
	Endpoint string   `toml:"endpoint"`
	Model    string   `toml:"model"`
	APIKey   string   `toml:"api_key"`
	Timeout  Duration `toml:"timeout"`
}

type Export struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// Defaults returns the configuration used when no file is present.
func Defaults(home string) *Config {
	return &Config{
		Timezone:        "Local",
		StressThreshold: correlate.DefaultThreshold,
		WindowPadding:   Duration{window.DefaultPadding},
		MaxMembers:      archive.MaxMembers,
		LogLevel:        "info",
		LLM: LLM{
			Endpoint: llm.DefaultEndpoint,
			Model:    llm.DefaultModel,
			Timeout:  Duration{llm.DefaultTimeout},
		},
		Export: Export{
			Driver: "sqlite",
			DSN:    filepath.Join(home, ".config", "stresstrip", "analyses.db"),
		},
	}
}

// Path returns the default config file location.
func Path(home string) string {
	return filepath.Join(home, ".config", "stresstrip", "config.toml")
}

// Load reads the config file at its default location.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFile(Path(home), home)
}

// LoadFile overlays the file at cfgPath, if it exists, on the defaults.
func LoadFile(cfgPath, home string) (*Config, error) {
	cfg := Defaults(home)

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.LLM.APIKey = key
	}

	// expand ~ in paths
	cfg.Export.DSN = expandHome(cfg.Export.DSN, home)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}
	return cfg, nil
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	var errs []error
	if c.StressThreshold < 0 || c.StressThreshold > 100 {
		errs = append(errs, fmt.Errorf("stress_threshold %v outside 0-100", c.StressThreshold))
	}
	if c.WindowPadding.Duration <= 0 {
		errs = append(errs, errors.New("window_padding must be positive"))
	}
	if c.MaxMembers <= 0 {
		errs = append(errs, errors.New("max_members must be positive"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	switch c.Export.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown export driver %q", c.Export.Driver))
	}
	return errors.Join(errs...)
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", c.Timezone)
	}
	return loc, nil
}

// LLMConfig converts the [llm] table to client settings.
func (c *Config) LLMConfig() llm.Config {
	return llm.Config{
		Endpoint: c.LLM.Endpoint,
		Model:    c.LLM.Model,
		APIKey:   c.LLM.APIKey,
		Timeout:  c.LLM.Timeout.Duration,
	}
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
