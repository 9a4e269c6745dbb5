package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/snipline/snipline/internal/models"
)

// snippetDelegate renders library entries as a two-line row: trigger on
// top, title or body preview below.
type snippetDelegate struct{}

func (snippetDelegate) Height() int  { return 2 }
func (snippetDelegate) Spacing() int { return 1 }

func (snippetDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (snippetDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	snip, ok := item.(models.Snippet)
	if !ok {
		return
	}

	title := snip.ListTitle()
	desc := snip.ListDescription()
	if index == m.Index() {
		fmt.Fprintf(w, "%s\n%s", selectedTitleStyle.Render(title), selectedDescStyle.Render(desc))
		return
	}
	fmt.Fprintf(w, "%s\n%s", itemTitleStyle.Render(title), itemDescStyle.Render(desc))
}
