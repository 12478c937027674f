package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `logging:
  format: json
  verbose: true
redact:
  patterns:
    - "password:\\s*\\S+"
cli:
  default_shell: /bin/zsh
  color_profile: ansi256
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Logging.Format != "json" || !cfg.Logging.Verbose {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if len(cfg.Redact.Patterns) != 1 {
		t.Fatalf("Redact.Patterns = %v", cfg.Redact.Patterns)
	}
	if cfg.CLI.DefaultShell != "/bin/zsh" || cfg.CLI.ColorProfile != "ansi256" {
		t.Errorf("CLI = %+v", cfg.CLI)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Logging.Format != "" {
		t.Errorf("expected zero-value Logging, got %+v", cfg.Logging)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadFrom_InvalidLoggingFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("logging:\n  format: xml\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for an unrecognized logging.format")
	}
}

func TestLoadFrom_InvalidRedactPattern(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := "redact:\n  patterns:\n    - \"(unclosed\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for an invalid redact regex")
	}
}

func TestRedactRegexps(t *testing.T) {
	cfg := &Config{Redact: RedactConfig{Patterns: []string{`\d+`}}}
	res, err := cfg.RedactRegexps()
	if err != nil {
		t.Fatalf("RedactRegexps: %v", err)
	}
	if len(res) != 1 || !res[0].MatchString("abc123") {
		t.Fatalf("RedactRegexps = %v, want a pattern matching digits", res)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if filepath.Base(dir) != ".goexpect" {
		t.Fatalf("ConfigDir() = %q, want a path ending in .goexpect", dir)
	}
}
