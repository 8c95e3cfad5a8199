// Package config loads the host settings of the ofx tool from environment
// variables and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robinvdvleuten/ofx/formatter"
	"github.com/robinvdvleuten/ofx/parser"
)

// Environment variables read by Load.
const (
	EnvTabSize          = "OFX_TAB_SIZE"
	EnvInsertSpaces     = "OFX_INSERT_SPACES"
	EnvFormatEnable     = "OFX_FORMAT_ENABLE"
	EnvLocale           = "OFX_LOCALE"
	EnvStrictNesting    = "OFX_STRICT_NESTING"
	EnvFullHeaderValues = "OFX_FULL_HEADER_VALUES"
)

// Config represents the tool configuration.
type Config struct {
	TabSize       int
	InsertSpaces  bool
	FormatEnabled bool

	// Locale selects the label language, e.g. "pt-BR".
	Locale string

	StrictNesting    bool
	FullHeaderValues bool
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		TabSize:       formatter.DefaultIndentation,
		InsertSpaces:  true,
		FormatEnabled: true,
		Locale:        "en",
	}
}

// Load reads the configuration from the environment. A .env file in the
// current directory is loaded when present; an explicit envPath must exist.
// Variables already set in the environment win over the file.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := Default()
	var err error

	if cfg.TabSize, err = parseIntEnv(EnvTabSize, cfg.TabSize); err != nil {
		return nil, err
	}
	if cfg.InsertSpaces, err = parseBoolEnv(EnvInsertSpaces, cfg.InsertSpaces); err != nil {
		return nil, err
	}
	if cfg.FormatEnabled, err = parseBoolEnv(EnvFormatEnable, cfg.FormatEnabled); err != nil {
		return nil, err
	}
	if cfg.StrictNesting, err = parseBoolEnv(EnvStrictNesting, cfg.StrictNesting); err != nil {
		return nil, err
	}
	if cfg.FullHeaderValues, err = parseBoolEnv(EnvFullHeaderValues, cfg.FullHeaderValues); err != nil {
		return nil, err
	}
	cfg.Locale = getEnvOrDefault(EnvLocale, getEnvOrDefault("LANG", cfg.Locale))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be used as they are.
func (c *Config) Validate() error {
	if c.TabSize < 1 {
		return fmt.Errorf("invalid %s: tab size must be positive, got %d", EnvTabSize, c.TabSize)
	}
	return nil
}

// FormatterOptions translates the indentation settings.
func (c *Config) FormatterOptions() []formatter.Option {
	opts := []formatter.Option{
		formatter.WithIndentation(c.TabSize),
		formatter.WithEnabled(c.FormatEnabled),
	}
	if !c.InsertSpaces {
		opts = append(opts, formatter.WithTabs())
	}
	return opts
}

// ParserOptions translates the parsing settings.
func (c *Config) ParserOptions() []parser.Option {
	var opts []parser.Option
	if c.StrictNesting {
		opts = append(opts, parser.WithStrictNesting())
	}
	if c.FullHeaderValues {
		opts = append(opts, parser.WithFullHeaderValues())
	}
	return opts
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	return parsed, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean value for %s: %s", key, value)
	}
	return parsed, nil
}
