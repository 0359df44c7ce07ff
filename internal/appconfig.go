package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of all environment variables read by the tool
const EnvPrefix = "STATEMENT_STATS_"

// AppConfig is the process configuration, read from the environment.
// Command line flags override it.
type AppConfig struct {
	// Store is the settings store location, see store.Open.
	// Environment variable: STATEMENT_STATS_STORE
	Store string `koanf:"STORE"`

	// Currency is an ISO code used to format amounts; empty prints plain numbers.
	// Environment variable: STATEMENT_STATS_CURRENCY
	Currency string `koanf:"CURRENCY"`

	AutoExcludeThreshold  float64 `koanf:"AUTO_EXCLUDE_THRESHOLD"`
	DisplayLargeThreshold float64 `koanf:"DISPLAY_LARGE_THRESHOLD"`
	DefaultLargeThreshold float64 `koanf:"DEFAULT_LARGE_THRESHOLD"`
	RawLargeThreshold     float64 `koanf:"RAW_LARGE_THRESHOLD"`
}

// DefaultStorePath returns the default settings file (~/.statement-stats/settings.yaml)
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".statement-stats", "settings.yaml")
}

func DefaultAppConfig() AppConfig {
	t := DefaultThresholds()
	return AppConfig{
		Store:                 DefaultStorePath(),
		AutoExcludeThreshold:  t.AutoExclude,
		DisplayLargeThreshold: t.DisplayLargeAmount,
		DefaultLargeThreshold: t.DefaultLargeAmount,
		RawLargeThreshold:     t.RawLargeAmount,
	}
}

// LoadAppConfig reads dotenvFile (if it exists) into the environment and
// then overlays STATEMENT_STATS_* variables on the defaults.
func LoadAppConfig(dotenvFile string) (AppConfig, error) {
	if dotenvFile != "" {
		if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("loading %s: %w", dotenvFile, err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(s, EnvPrefix)
	}), nil); err != nil {
		return AppConfig{}, fmt.Errorf("loading config from environment: %w", err)
	}

	cfg := DefaultAppConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return AppConfig{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks all thresholds and reports every problem at once
func (c AppConfig) Validate() error {
	var problems []string
	for name, v := range map[string]float64{
		"AUTO_EXCLUDE_THRESHOLD":  c.AutoExcludeThreshold,
		"DISPLAY_LARGE_THRESHOLD": c.DisplayLargeThreshold,
		"DEFAULT_LARGE_THRESHOLD": c.DefaultLargeThreshold,
		"RAW_LARGE_THRESHOLD":     c.RawLargeThreshold,
	} {
		if !(v > 0) {
			problems = append(problems, fmt.Sprintf("%s%s must be positive, got %v", EnvPrefix, name, v))
		}
	}
	if c.Store == "" {
		problems = append(problems, "no settings store location (set "+EnvPrefix+"STORE or --config)")
	}
	if len(problems) > 0 {
		slices.Sort(problems)
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Thresholds returns the configured thresholds
func (c AppConfig) Thresholds() Thresholds {
	return Thresholds{
		AutoExclude:        c.AutoExcludeThreshold,
		DisplayLargeAmount: c.DisplayLargeThreshold,
		DefaultLargeAmount: c.DefaultLargeThreshold,
		RawLargeAmount:     c.RawLargeThreshold,
	}
}
