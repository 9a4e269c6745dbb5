package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/snipline/snipline/internal/models"
)

func TestLoadMissingFileIsEmptyLibrary(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Load(); err != nil {
		t.Fatalf("Load of missing file failed: %v", err)
	}
	if len(s.Library().Snippets) != 0 {
		t.Errorf("Expected empty library, got %v", s.Library().Snippets)
	}
}

func TestReplaceRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	lib := models.Library{
		Snippets: map[string]models.Body{
			"/greet": {Text: "Hi {{input:Name|Juan}}"},
			"/case":  {Mail: &models.MailTemplate{Subject: "Re: {{input:Case}}", Body: "Regards"}},
		},
		Titles: map[string]string{"/greet": "Greeting"},
	}
	if err := s.Replace(lib); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	fresh := NewStore(dir)
	if err := fresh.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := fresh.Library()
	if got.Snippets["/greet"].Text != "Hi {{input:Name|Juan}}" {
		t.Errorf("Plain snippet lost: %+v", got.Snippets["/greet"])
	}
	if !got.Snippets["/case"].IsMail() || got.Snippets["/case"].Mail.Subject != "Re: {{input:Case}}" {
		t.Errorf("Mail snippet lost: %+v", got.Snippets["/case"])
	}
	if got.Titles["/greet"] != "Greeting" {
		t.Errorf("Titles lost: %v", got.Titles)
	}
}

func TestCorruptLibraryKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if err := s.Replace(models.Library{Snippets: map[string]models.Body{"/ok": {Text: "x"}}}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if err := os.WriteFile(s.Path(), []byte("snippets: [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.Load(); err == nil {
		t.Fatal("Corrupt file should fail to load")
	}
	if _, ok := s.Library().Snippets["/ok"]; !ok {
		t.Error("Previous snapshot should survive a failed reload")
	}
}

func TestOnChangeFiresWithSnapshot(t *testing.T) {
	s := NewStore(t.TempDir())
	var seen []models.Library
	s.OnChange(func(lib models.Library) { seen = append(seen, lib) })

	s.Replace(models.Library{Snippets: map[string]models.Body{"/a": {Text: "a"}}})
	if len(seen) != 1 || len(seen[0].Snippets) != 1 {
		t.Errorf("OnChange saw %v", seen)
	}
}

func TestLastValuesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lv := NewLastValues(dir)
	lv.Set("/greet", "Name", "Ada")
	lv.Set("/greet", "Tier", "gold")
	lv.Flush()

	fresh := NewLastValues(dir)
	if err := fresh.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, ok := fresh.Get("/greet", "Name"); !ok || v != "Ada" {
		t.Errorf("Get(/greet, Name) = %q, %v", v, ok)
	}
	if v, _ := fresh.Get("/greet", "Tier"); v != "gold" {
		t.Errorf("Get(/greet, Tier) = %q", v)
	}
}

func TestLastValuesScopedPerTrigger(t *testing.T) {
	lv := NewLastValues(t.TempDir())
	lv.Set("/alpha", "Name", "Bob")
	lv.Flush()

	if _, ok := lv.Get("/beta", "Name"); ok {
		t.Error("A value confirmed under one trigger must not leak into another")
	}
	if v, ok := lv.Get("/alpha", "Name"); !ok || v != "Bob" {
		t.Errorf("Get(/alpha, Name) = %q, %v", v, ok)
	}

	// Trigger scoping follows the index's case-insensitive lookup.
	if v, ok := lv.Get("/ALPHA", "Name"); !ok || v != "Bob" {
		t.Errorf("Get(/ALPHA, Name) = %q, %v", v, ok)
	}
}

func TestLastValuesCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SNIPLINE_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "lastvalues.json"), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	lv := NewLastValues(dir)
	if err := lv.Load(); err != nil {
		t.Fatalf("Corrupt last values must degrade, not fail: %v", err)
	}
	if _, ok := lv.Get("/any", "anything"); ok {
		t.Error("Corrupt store should be empty")
	}
}

func TestLastValuesMissingFile(t *testing.T) {
	lv := NewLastValues(t.TempDir())
	if err := lv.Load(); err != nil {
		t.Fatalf("Missing file should load empty: %v", err)
	}
}
