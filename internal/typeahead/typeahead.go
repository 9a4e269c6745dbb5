// Package typeahead drives the trigger suggestion popup: it tracks the token
// being typed, ranks candidate triggers through the index, and turns
// navigation keys into a confirmed choice.
package typeahead

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/snipline/snipline/internal/index"
)

// DefaultLimit caps the visible suggestion list.
const DefaultLimit = 7

// minTokenLength is the shortest typed token that opens the popup, slash
// included.
const minTokenLength = 2

// Controller holds the popup state. It is driven synchronously from the
// host's key loop.
type Controller struct {
	ix     *index.Index
	limit  int
	open   bool
	token  string
	items  []string
	cursor int
}

// New returns a closed controller over ix. A non-positive limit falls back
// to DefaultLimit.
func New(ix *index.Index, limit int) *Controller {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Controller{ix: ix, limit: limit}
}

// Refresh re-ranks suggestions for the token currently left of the caret.
// Tokens shorter than two characters, or not starting with "/", close the
// popup. The cursor resets on every refresh.
func (c *Controller) Refresh(token string) {
	if len(token) < minTokenLength || !strings.HasPrefix(token, "/") {
		c.Close()
		return
	}
	items := c.ix.Match(token, c.limit)
	if len(items) == 0 {
		c.Close()
		return
	}
	c.open = true
	c.token = token
	c.items = items
	c.cursor = 0
}

// Open reports whether the popup is showing.
func (c *Controller) Open() bool {
	return c.open
}

// Items returns the ranked suggestions currently showing.
func (c *Controller) Items() []string {
	return c.items
}

// Cursor returns the highlighted row.
func (c *Controller) Cursor() int {
	return c.cursor
}

// Close dismisses the popup and clears its state.
func (c *Controller) Close() {
	c.open = false
	c.token = ""
	c.items = nil
	c.cursor = 0
}

// HandleKey feeds one key to the popup. It returns the chosen trigger in its
// original casing when the key confirmed a suggestion, and whether the key
// was consumed; unconsumed keys belong to the surface. Arrows clamp at the
// list edges, digits 1-9 confirm that row directly, enter and tab confirm
// the highlighted row, esc closes.
func (c *Controller) HandleKey(key string) (chosen string, consumed bool) {
	if !c.open {
		return "", false
	}
	switch key {
	case "up", "ctrl+p":
		if c.cursor > 0 {
			c.cursor--
		}
		return "", true
	case "down", "ctrl+n":
		if c.cursor < len(c.items)-1 {
			c.cursor++
		}
		return "", true
	case "esc":
		c.Close()
		return "", true
	case "enter", "tab":
		chosen = c.items[c.cursor]
		c.Close()
		return chosen, true
	}
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		idx := int(key[0] - '1')
		if idx < len(c.items) {
			chosen = c.items[idx]
			c.Close()
			return chosen, true
		}
	}
	return "", false
}

var (
	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	rowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	numberStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the popup, empty when closed.
func (c *Controller) View() string {
	if !c.open {
		return ""
	}
	rows := make([]string, 0, len(c.items))
	for i, item := range c.items {
		num := numberStyle.Render(fmt.Sprintf("%d ", i+1))
		if i == c.cursor {
			rows = append(rows, num+selectedStyle.Render(item))
		} else {
			rows = append(rows, num+rowStyle.Render(item))
		}
	}
	return popupStyle.Render(strings.Join(rows, "\n"))
}
