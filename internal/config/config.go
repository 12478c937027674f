// Package config loads the optional on-disk overlay used by the cmd/ CLI:
// logging format, output redaction patterns, and CLI defaults. The core
// library (session, expect, transport, screen, ...) never reads this file —
// every option it needs arrives through SessionConfig instead.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the full on-disk overlay, read from ~/.goexpect/config.yaml.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Redact  RedactConfig  `yaml:"redact"`
	CLI     CLIConfig     `yaml:"cli"`
}

// LoggingConfig holds the logging section of the config file. Load checks
// Format, but nothing else reads these fields: the CLI's diagnostic logging
// is switched by its --verbose flag.
type LoggingConfig struct {
	Format  string `yaml:"format"` // "text" (default) or "json"
	Verbose bool   `yaml:"verbose"`
}

// RedactConfig names regex patterns for redaction. Load checks that they
// compile and RedactRegexps compiles them, but no transcript or log output
// path applies them; output is written unredacted.
type RedactConfig struct {
	Patterns []string `yaml:"patterns,omitempty"`
}

// CLIConfig holds defaults for `expect run`/`expect interact`.
type CLIConfig struct {
	DefaultShell string `yaml:"default_shell,omitempty"`
	ColorProfile string `yaml:"color_profile,omitempty"` // loaded but not read; the CLI detects the color profile itself
}

// ConfigDir returns the goexpect configuration directory (~/.goexpect/).
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".goexpect")
	}
	return filepath.Join(home, ".goexpect")
}

// Load reads the config from ~/.goexpect/config.yaml.
// If the file does not exist, it returns a zero-value Config with no error.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(ConfigDir(), "config.yaml"))
}

// LoadFrom reads the config from the given path.
// If the file does not exist, it returns a zero-value Config with no error.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Logging.Format != "" && c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format: must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	for _, p := range c.Redact.Patterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("redact.patterns: invalid pattern %q: %w", p, err)
		}
	}
	return nil
}

// RedactRegexps compiles Redact.Patterns; callers already validated via
// Load/LoadFrom, so a compile failure here would only occur against a
// Config built by hand rather than loaded from disk.
func (c *Config) RedactRegexps() ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(c.Redact.Patterns))
	for _, p := range c.Redact.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redact.patterns: %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
