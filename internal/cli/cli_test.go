package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/snipline/snipline/internal/service"
)

func newCLI(t *testing.T) (*CLI, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SNIPLINE_DIR", dir)
	svc, err := service.New(dir)
	if err != nil {
		t.Fatalf("service.New failed: %v", err)
	}
	t.Cleanup(svc.Close)
	var out, errOut bytes.Buffer
	return New(svc, &out, &errOut), &out, &errOut
}

func TestAddListShowRemove(t *testing.T) {
	c, out, _ := newCLI(t)

	if code := c.Run([]string{"add", "/greet", "Hi {{input:Name|Juan}}", "Greeting"}); code != 0 {
		t.Fatalf("add exited %d", code)
	}

	out.Reset()
	c.Run([]string{"list"})
	if !strings.Contains(out.String(), "/greet") || !strings.Contains(out.String(), "Greeting") {
		t.Errorf("list output: %q", out.String())
	}

	out.Reset()
	c.Run([]string{"show", "/greet"})
	if !strings.Contains(out.String(), "Hi {{input:Name|Juan}}") {
		t.Errorf("show output: %q", out.String())
	}

	if code := c.Run([]string{"remove", "/greet"}); code != 0 {
		t.Fatal("remove failed")
	}
	out.Reset()
	c.Run([]string{"list"})
	if strings.Contains(out.String(), "/greet") {
		t.Errorf("removed snippet still listed: %q", out.String())
	}
}

func TestRenderWithOverrides(t *testing.T) {
	c, out, _ := newCLI(t)
	c.Run([]string{"add", "/greet", "Hi {{input:Name|Juan}}!"})

	out.Reset()
	if code := c.Run([]string{"render", "/greet", "Name=Ada"}); code != 0 {
		t.Fatal("render failed")
	}
	if strings.TrimSpace(out.String()) != "Hi Ada!" {
		t.Errorf("render output: %q", out.String())
	}
}

func TestExpandReplacesTrigger(t *testing.T) {
	c, out, _ := newCLI(t)
	c.Run([]string{"add", "/greet", "Hello there"})

	out.Reset()
	if code := c.Run([]string{"expand", "say /greet now"}); code != 0 {
		t.Fatal("expand failed")
	}
	// The rightmost trigger wins, surrounding text survives.
	if got := strings.TrimSpace(out.String()); got != "say Hello there now" {
		t.Errorf("expand output: %q", got)
	}

	// No trigger in the buffer passes the text through unchanged.
	out.Reset()
	c.Run([]string{"expand", "plain text"})
	if got := strings.TrimSpace(out.String()); got != "plain text" {
		t.Errorf("pass-through output: %q", got)
	}
}

func TestExpandUnknownTriggerFails(t *testing.T) {
	c, _, errOut := newCLI(t)
	if code := c.Run([]string{"expand", "try /missing"}); code != 1 {
		t.Errorf("exit code = %d", code)
	}
	if !strings.Contains(errOut.String(), "/missing") {
		t.Errorf("error output: %q", errOut.String())
	}
}

func TestCopyUsesClipboard(t *testing.T) {
	c, out, _ := newCLI(t)
	c.Run([]string{"add", "/hi", "hello"})

	var copied string
	old := copyFn
	copyFn = func(text string) error { copied = text; return nil }
	defer func() { copyFn = old }()

	out.Reset()
	if code := c.Run([]string{"copy", "/hi"}); code != 0 {
		t.Fatal("copy failed")
	}
	if copied != "hello" {
		t.Errorf("copied %q", copied)
	}
}

func TestSearchIsFuzzy(t *testing.T) {
	c, out, _ := newCLI(t)
	c.Run([]string{"add", "/greet", "x", "Morning greeting"})
	c.Run([]string{"add", "/sig", "y", "Signature"})

	out.Reset()
	c.Run([]string{"search", "grt"})
	if !strings.Contains(out.String(), "/greet") {
		t.Errorf("fuzzy search missed /greet: %q", out.String())
	}
	if strings.Contains(out.String(), "/sig") {
		t.Errorf("fuzzy search matched /sig: %q", out.String())
	}
}

func TestUnknownCommandFails(t *testing.T) {
	c, _, errOut := newCLI(t)
	if code := c.Run([]string{"bogus"}); code != 1 {
		t.Errorf("exit code = %d", code)
	}
	if !strings.Contains(errOut.String(), "bogus") {
		t.Errorf("error output: %q", errOut.String())
	}
}

func TestUsageErrors(t *testing.T) {
	c, _, _ := newCLI(t)
	for _, args := range [][]string{
		{"show"},
		{"render"},
		{"remove"},
		{"search"},
		{"render", "/x", "notkeyvalue"},
		{},
	} {
		if code := c.Run(args); code != 1 {
			t.Errorf("Run(%v) exited %d, want 1", args, code)
		}
	}
}

func TestInitSeedsStarters(t *testing.T) {
	c, out, _ := newCLI(t)
	if code := c.Run([]string{"init"}); code != 0 {
		t.Fatal("init failed")
	}

	out.Reset()
	c.Run([]string{"list"})
	if !strings.Contains(out.String(), "/date") || !strings.Contains(out.String(), "/greet") {
		t.Errorf("starter snippets missing: %q", out.String())
	}

	// A second init must not clobber user snippets.
	c.Run([]string{"add", "/mine", "body"})
	c.Run([]string{"init"})
	out.Reset()
	c.Run([]string{"list"})
	if !strings.Contains(out.String(), "/mine") {
		t.Error("init clobbered the library")
	}
}
