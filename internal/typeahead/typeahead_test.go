package typeahead

import (
	"strings"
	"testing"

	"github.com/snipline/snipline/internal/index"
	"github.com/snipline/snipline/internal/models"
)

func testIndex(triggers ...string) *index.Index {
	lib := models.Library{Snippets: map[string]models.Body{}}
	for _, t := range triggers {
		lib.Snippets[t] = models.Body{Text: "x"}
	}
	ix := index.New()
	ix.Rebuild(lib)
	return ix
}

func TestRefreshOpenThreshold(t *testing.T) {
	c := New(testIndex("/greet"), 0)

	c.Refresh("/")
	if c.Open() {
		t.Error("Single-character token must not open the popup")
	}

	c.Refresh("/g")
	if !c.Open() {
		t.Error("Two-character token should open the popup")
	}

	c.Refresh("greet")
	if c.Open() {
		t.Error("Tokens without a leading slash must close the popup")
	}
}

func TestRefreshClosesWithoutMatches(t *testing.T) {
	c := New(testIndex("/greet"), 0)
	c.Refresh("/gr")
	if !c.Open() {
		t.Fatal("Expected popup to open")
	}
	c.Refresh("/zz")
	if c.Open() {
		t.Error("No matches should close the popup")
	}
}

func TestLimitCapsSuggestions(t *testing.T) {
	triggers := []string{"/s1", "/s2", "/s3", "/s4", "/s5", "/s6", "/s7", "/s8", "/s9"}
	c := New(testIndex(triggers...), 0)
	c.Refresh("/s")
	if len(c.Items()) != DefaultLimit {
		t.Errorf("Expected %d suggestions, got %d", DefaultLimit, len(c.Items()))
	}
}

func TestArrowsClampWithoutWrapping(t *testing.T) {
	c := New(testIndex("/a1", "/a2", "/a3"), 0)
	c.Refresh("/a")

	if _, consumed := c.HandleKey("up"); !consumed {
		t.Error("up should be consumed while open")
	}
	if c.Cursor() != 0 {
		t.Errorf("up at top must clamp, cursor = %d", c.Cursor())
	}

	for i := 0; i < 10; i++ {
		c.HandleKey("down")
	}
	if c.Cursor() != 2 {
		t.Errorf("down at bottom must clamp, cursor = %d", c.Cursor())
	}
}

func TestEnterConfirmsHighlightedRow(t *testing.T) {
	c := New(testIndex("/aa", "/ab"), 0)
	c.Refresh("/a")
	c.HandleKey("down")

	chosen, consumed := c.HandleKey("enter")
	if !consumed || chosen != "/ab" {
		t.Errorf("HandleKey(enter) = %q, %v", chosen, consumed)
	}
	if c.Open() {
		t.Error("Confirming must close the popup")
	}
}

func TestDigitsConfirmDirectly(t *testing.T) {
	c := New(testIndex("/aa", "/ab", "/ac"), 0)
	c.Refresh("/a")

	chosen, consumed := c.HandleKey("3")
	if !consumed || chosen != "/ac" {
		t.Errorf("HandleKey(3) = %q, %v", chosen, consumed)
	}

	c.Refresh("/a")
	if _, consumed := c.HandleKey("9"); consumed {
		t.Error("Out-of-range digit must pass through to the surface")
	}
}

func TestEscClosesWithoutChoosing(t *testing.T) {
	c := New(testIndex("/aa"), 0)
	c.Refresh("/a")

	chosen, consumed := c.HandleKey("esc")
	if !consumed || chosen != "" {
		t.Errorf("HandleKey(esc) = %q, %v", chosen, consumed)
	}
	if c.Open() {
		t.Error("esc must close the popup")
	}
}

func TestConfirmPreservesOriginalCasing(t *testing.T) {
	c := New(testIndex("/Greet"), 0)
	c.Refresh("/gr")
	chosen, _ := c.HandleKey("enter")
	if chosen != "/Greet" {
		t.Errorf("Chosen trigger should keep stored casing, got %q", chosen)
	}
}

func TestKeysIgnoredWhenClosed(t *testing.T) {
	c := New(testIndex("/aa"), 0)
	if _, consumed := c.HandleKey("enter"); consumed {
		t.Error("Keys must pass through while closed")
	}
}

func TestViewShowsNumberedRows(t *testing.T) {
	c := New(testIndex("/aa", "/ab"), 0)
	if c.View() != "" {
		t.Error("Closed popup renders nothing")
	}
	c.Refresh("/a")
	view := c.View()
	for _, want := range []string{"1", "2", "/aa", "/ab"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q:\n%s", want, view)
		}
	}
}
