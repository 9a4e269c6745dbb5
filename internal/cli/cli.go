// Package cli implements the non-interactive command surface.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/sahilm/fuzzy"

	"github.com/snipline/snipline/internal/clipboard"
	"github.com/snipline/snipline/internal/config"
	apperrors "github.com/snipline/snipline/internal/errors"
	"github.com/snipline/snipline/internal/models"
	"github.com/snipline/snipline/internal/service"
	"github.com/snipline/snipline/internal/surface"
)

// CLI runs one command against an assembled service.
type CLI struct {
	svc    *service.Service
	out    io.Writer
	errOut io.Writer
}

// New returns a CLI writing to the given streams.
func New(svc *service.Service, out, errOut io.Writer) *CLI {
	return &CLI{svc: svc, out: out, errOut: errOut}
}

// Run dispatches one command and returns the process exit code.
func (c *CLI) Run(args []string) int {
	if len(args) == 0 {
		return c.fail(apperrors.ValidationError("no command given; try 'help'"))
	}

	var err error
	switch cmd := args[0]; cmd {
	case "list":
		err = c.list()
	case "search":
		err = c.search(args[1:])
	case "show":
		err = c.show(args[1:])
	case "render":
		err = c.render(args[1:], false)
	case "copy":
		err = c.render(args[1:], true)
	case "expand":
		err = c.expand(args[1:])
	case "add":
		err = c.add(args[1:])
	case "remove":
		err = c.remove(args[1:])
	case "sync":
		err = c.sync()
	case "init":
		err = c.initData()
	case "help":
		err = c.help()
	default:
		err = apperrors.CommandNotFoundError(cmd)
	}

	// Host teardown races are expected and never an exit failure.
	if err = apperrors.Suppress(err); err != nil {
		return c.fail(err)
	}
	return 0
}

func (c *CLI) fail(err error) int {
	appErr := apperrors.GetAppError(err)
	fmt.Fprintf(c.errOut, "error: %s\n", appErr.Message)
	if appErr.Details != "" {
		fmt.Fprintf(c.errOut, "  %s\n", appErr.Details)
	}
	return 1
}

func (c *CLI) list() error {
	entries := c.svc.Library().Entries()
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "no snippets; try 'init' or 'add'")
		return nil
	}
	for _, s := range entries {
		c.printEntry(s)
	}
	return nil
}

func (c *CLI) printEntry(s models.Snippet) {
	if s.Title != "" {
		fmt.Fprintf(c.out, "%-20s %s\n", s.Trigger, s.Title)
		return
	}
	fmt.Fprintln(c.out, s.Trigger)
}

func (c *CLI) search(args []string) error {
	if len(args) < 1 {
		return apperrors.ValidationError("usage: search <query>")
	}
	query := strings.Join(args, " ")

	entries := c.svc.Library().Entries()
	targets := make([]string, len(entries))
	for i, s := range entries {
		targets[i] = s.Trigger + " " + s.Title
	}
	for _, m := range fuzzy.Find(query, targets) {
		c.printEntry(entries[m.Index])
	}
	return nil
}

func (c *CLI) show(args []string) error {
	if len(args) != 1 {
		return apperrors.ValidationError("usage: show <trigger>")
	}
	snip, ok := c.svc.Lookup(args[0])
	if !ok {
		return apperrors.NotFoundError("snippet " + args[0])
	}

	fmt.Fprintln(c.out, snip.Trigger)
	if snip.Title != "" {
		fmt.Fprintf(c.out, "title: %s\n", snip.Title)
	}
	if snip.Body.IsMail() {
		fmt.Fprintf(c.out, "subject: %s\n", snip.Body.Mail.Subject)
		fmt.Fprintf(c.out, "body: %s\n", snip.Body.Mail.Body)
		return nil
	}
	fmt.Fprintln(c.out, snip.Body.Text)
	return nil
}

// render resolves a snippet from the command line; `Label=Value` arguments
// override placeholder defaults and remembered values.
func (c *CLI) render(args []string, toClipboard bool) error {
	if len(args) < 1 {
		return apperrors.ValidationError("usage: render|copy <trigger> [Label=Value ...]")
	}
	overrides := map[string]string{}
	for _, arg := range args[1:] {
		label, value, ok := strings.Cut(arg, "=")
		if !ok {
			return apperrors.ValidationError("values are given as Label=Value, got " + arg)
		}
		overrides[label] = value
	}

	text, err := c.svc.Render(args[0], overrides)
	if err != nil {
		return err
	}
	if toClipboard {
		if err := c.copyText(text); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "copied %s\n", args[0])
		return nil
	}
	fmt.Fprintln(c.out, text)
	return nil
}

// expand runs one editor-style expansion over a text buffer: the trigger
// nearest the end is replaced in place and the whole buffer printed.
func (c *CLI) expand(args []string) error {
	if len(args) < 1 {
		return apperrors.ValidationError("usage: expand <text>")
	}
	text := strings.Join(args, " ")

	buf := surface.NewFlatBuffer(text, len(text))
	m := buf.LocateShortcut()
	if m == nil {
		fmt.Fprintln(c.out, text)
		return nil
	}
	rendered, err := c.svc.Render(m.Shortcut(), nil)
	if err != nil {
		return err
	}
	m.Insert(rendered)
	fmt.Fprintln(c.out, buf.Value())
	return nil
}

func (c *CLI) add(args []string) error {
	if len(args) < 2 {
		return apperrors.ValidationError("usage: add <trigger> <template text> [title]")
	}
	title := ""
	if len(args) > 2 {
		title = strings.Join(args[2:], " ")
	}
	if err := c.svc.SaveSnippet(args[0], title, models.Body{Text: args[1]}); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "saved %s\n", args[0])
	return nil
}

func (c *CLI) remove(args []string) error {
	if len(args) != 1 {
		return apperrors.ValidationError("usage: remove <trigger>")
	}
	if err := c.svc.DeleteSnippet(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "removed %s\n", args[0])
	return nil
}

func (c *CLI) sync() error {
	n, err := c.svc.Sync(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "synced %d snippets from %s\n", n, c.svc.Config().RemoteURL)
	return nil
}

// initData seeds the data directory: default config plus starter snippets
// when the library is empty.
func (c *CLI) initData() error {
	if err := config.Save(c.svc.Dir(), c.svc.Config()); err != nil {
		return err
	}
	if len(c.svc.Library().Snippets) == 0 {
		starters := []struct {
			trigger, title, text string
		}{
			{"/date", "Today's date", "{{date}}"},
			{"/greet", "Greeting", "Hi {{input:Name|there}}, "},
			{"/sig", "Signature", "Best regards,\n{{input:Your name}}"},
		}
		for _, s := range starters {
			if err := c.svc.SaveSnippet(s.trigger, s.title, models.Body{Text: s.text}); err != nil {
				return err
			}
		}
	}
	fmt.Fprintf(c.out, "initialized %s\n", c.svc.Dir())
	return nil
}

const helpMarkdown = `# snipline

Snippet expansion from the command line and the TUI editor.

## Commands

| Command | Description |
|---|---|
| list | List all snippets |
| search <query> | Fuzzy-search triggers and titles |
| show <trigger> | Print one snippet's template |
| render <trigger> [Label=Value ...] | Resolve a snippet to final text |
| copy <trigger> [Label=Value ...] | Resolve and copy to the clipboard |
| expand <text> | Expand the trigger nearest the end of a text buffer |
| add <trigger> <text> [title] | Save a snippet |
| remove <trigger> | Delete a snippet |
| sync | Fetch the library from the configured remote |
| init | Create the data directory with starter snippets |

## Templates

- ` + "`{{date}}`, `{{date+7}}`, `{{time}}`" + ` expand on their own.
- ` + "`{{input:Label|default}}` and `{{select:Label|a|b}}`" + ` open the
  resolution dialog in the TUI, or take ` + "`Label=Value`" + ` arguments here.

Run with no arguments to open the TUI.
`

func (c *CLI) help() error {
	rendered, err := glamour.Render(helpMarkdown, "dark")
	if err != nil {
		// Plain text still beats no help.
		fmt.Fprint(c.out, helpMarkdown)
		return nil
	}
	fmt.Fprint(c.out, rendered)
	return nil
}

// copyFn is swapped in tests.
var copyFn = clipboard.Copy

func (c *CLI) copyText(text string) error {
	return copyFn(text)
}
