// Package config loads quotedesk settings from defaults, an optional YAML
// file and QUOTEDESK_ environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultConfigFile is read from the working directory when no path is given.
	DefaultConfigFile = "quotedesk.yaml"

	// EnvPrefix marks environment variables that override file settings.
	EnvPrefix = "QUOTEDESK_"
)

// Config holds the application settings.
type Config struct {
	CurrencySymbol      string `koanf:"currency_symbol"`
	StrictVariableNames bool   `koanf:"strict_variable_names"`
	SeedDemo            bool   `koanf:"seed_demo"`
	ExportSheetName     string `koanf:"export_sheet_name"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"currency_symbol":       "$",
		"strict_variable_names": false,
		"seed_demo":             true,
		"export_sheet_name":     "Quote",
	}
}

// Load reads the configuration. An empty path falls back to
// DefaultConfigFile when it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// QUOTEDESK_CURRENCY_SYMBOL -> currency_symbol
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}
