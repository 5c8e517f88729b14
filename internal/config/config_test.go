package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *c != Defaults() {
		t.Fatalf("expected defaults, got %+v", *c)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "custom.yaml")
	if err := os.WriteFile(path, []byte("include_charts: false\nmax_preview_rows: 5\nlog_level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TABREPORT_LOG_LEVEL", "debug")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.IncludeCharts {
		t.Fatalf("include_charts should come from file")
	}
	if c.MaxPreviewRows != 5 {
		t.Fatalf("max_preview_rows = %d, want 5", c.MaxPreviewRows)
	}
	if c.LogLevel != "debug" {
		t.Fatalf("log_level = %q, env should win", c.LogLevel)
	}
	if !c.IncludeSummary {
		t.Fatalf("include_summary should keep its default")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c := Defaults()
	c.Overwrite = false
	c.Delimiter = ";"
	c.LogFormat = "json"
	if err := Save(&c, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".tabreport", "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != c {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", *got, c)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	envFile := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envFile, []byte("TABREPORT_MAX_PREVIEW_ROWS=9\nTABREPORT_LOG_FORMAT=json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := DotEnvFile
	DotEnvFile = envFile
	defer func() { DotEnvFile = old }()
	// godotenv sets process env directly; register cleanup through t.Setenv.
	t.Setenv("TABREPORT_MAX_PREVIEW_ROWS", "")
	os.Unsetenv("TABREPORT_MAX_PREVIEW_ROWS")
	t.Setenv("TABREPORT_LOG_FORMAT", "text")

	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.MaxPreviewRows != 9 {
		t.Fatalf("max_preview_rows = %d, want 9 from .env", c.MaxPreviewRows)
	}
	if c.LogFormat != "text" {
		t.Fatalf("log_format = %q, existing env should win over .env", c.LogFormat)
	}
}

func TestLoadWithoutDotEnvFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	old := DotEnvFile
	DotEnvFile = filepath.Join(t.TempDir(), "absent.env")
	defer func() { DotEnvFile = old }()
	if _, err := Load(""); err != nil {
		t.Fatalf("missing .env should be skipped: %v", err)
	}
}
