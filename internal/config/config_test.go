package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsDefault(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TypeaheadLimit != 7 {
		t.Errorf("TypeaheadLimit = %d", cfg.TypeaheadLimit)
	}
	if len(cfg.DetectPatterns) == 0 {
		t.Error("Default detect patterns missing")
	}
}

func TestLoadFillsUnsetFields(t *testing.T) {
	dir := t.TempDir()
	src := "remote_url: https://example.com/snippets.json\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.RemoteURL != "https://example.com/snippets.json" {
		t.Errorf("RemoteURL = %q", cfg.RemoteURL)
	}
	if cfg.TypeaheadLimit != 7 {
		t.Errorf("Unset limit should default, got %d", cfg.TypeaheadLimit)
	}
}

func TestSaveRoundTrips(t *testing.T) {
	dir := t.TempDir()
	in := Config{RemoteURL: "https://x", TypeaheadLimit: 5, DetectPatterns: map[string]string{"a": "b"}}
	if err := Save(dir, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if out.RemoteURL != in.RemoteURL || out.TypeaheadLimit != 5 || out.DetectPatterns["a"] != "b" {
		t.Errorf("Round trip mismatch: %+v", out)
	}
}

func TestCompiledPatternsSkipsBadRegexps(t *testing.T) {
	t.Setenv("SNIPLINE_DIR", t.TempDir())
	cfg := Config{DetectPatterns: map[string]string{
		"good": `name="subject`,
		"bad":  `([`,
	}}
	compiled := cfg.CompiledPatterns()
	if _, ok := compiled["good"]; !ok {
		t.Error("Valid pattern should compile")
	}
	if _, ok := compiled["bad"]; ok {
		t.Error("Invalid pattern should be skipped")
	}
}
