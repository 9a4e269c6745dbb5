// Package ui implements the interactive host: a snippet browser and an
// editor pane where triggers expand as they are typed, with the typeahead
// popup and the resolution dialog layered on top.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/snipline/snipline/internal/clipboard"
	"github.com/snipline/snipline/internal/dialog"
	apperrors "github.com/snipline/snipline/internal/errors"
	"github.com/snipline/snipline/internal/expander"
	"github.com/snipline/snipline/internal/models"
	"github.com/snipline/snipline/internal/service"
	"github.com/snipline/snipline/internal/surface"
	"github.com/snipline/snipline/internal/typeahead"
)

type mode int

const (
	modeBrowser mode = iota
	modeEditor
)

type (
	toastMsg    struct{ id int }
	syncDoneMsg struct {
		count int
		err   error
	}
)

const toastDuration = 2 * time.Second

// Model is the root bubbletea model.
type Model struct {
	svc *service.Service

	width  int
	height int
	mode   mode

	list      list.Model
	editor    textarea.Model
	typeahead *typeahead.Controller
	dialog    *dialog.Dialog

	// pendingSurf is the editor surface captured when a dialog suspends
	// an expansion; completing the dialog rewrites it.
	pendingSurf *surface.FlatBuffer

	showHelp bool
	helpView string

	toast   string
	toastID int
}

// New assembles the TUI over a service.
func New(svc *service.Service) *Model {
	l := list.New(libraryItems(svc.Library()), snippetDelegate{}, 0, 0)
	l.Title = "snipline"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)

	editor := textarea.New()
	editor.Placeholder = "Type here. A /trigger followed by space, enter or tab expands."
	editor.ShowLineNumbers = false
	editor.CharLimit = 0

	m := &Model{
		svc:       svc,
		list:      l,
		editor:    editor,
		typeahead: typeahead.New(svc.Index(), svc.Config().TypeaheadLimit),
		dialog:    dialog.New(svc.LastValues(), clipboard.New()),
	}
	svc.Expander().OnExpanded(func(trigger string) {
		m.toast = "expanded " + trigger
	})
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		frameW, frameH := appStyle.GetFrameSize()
		m.list.SetSize(msg.Width-frameW, msg.Height-frameH)
		m.editor.SetWidth(msg.Width - frameW - 4)
		m.editor.SetHeight(maxInt(3, msg.Height-frameH-8))
		m.dialog.SetSize(msg.Width, msg.Height)
		return m, nil

	case dialog.ResultMsg:
		return m.finishDialog(msg.Result)

	case toastMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil

	case syncDoneMsg:
		if msg.err != nil {
			m.toast = "sync failed: " + apperrors.GetAppError(msg.err).Message
		} else {
			m.toast = fmt.Sprintf("synced %d snippets", msg.count)
			m.list.SetItems(libraryItems(m.svc.Library()))
		}
		return m, m.expireToast()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.svc.Close()
		return m, tea.Quit
	}

	if m.dialog.Active() {
		_, cmd := m.dialog.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.mode == modeBrowser {
		return m.handleBrowserKey(msg)
	}
	return m.handleEditorKey(msg)
}

func (m *Model) handleBrowserKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() != list.Filtering {
		switch msg.String() {
		case "q":
			m.svc.Close()
			return m, tea.Quit
		case "?":
			m.openHelp()
			return m, nil
		case "e":
			m.mode = modeEditor
			return m, m.editor.Focus()
		case "S":
			m.toast = "syncing..."
			return m, tea.Batch(m.expireToast(), m.syncCmd())
		case "c":
			return m.copySelected()
		case "enter":
			if snip, ok := m.list.SelectedItem().(models.Snippet); ok {
				m.editor.InsertString(snip.Trigger)
				m.mode = modeEditor
				return m, m.editor.Focus()
			}
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) copySelected() (tea.Model, tea.Cmd) {
	snip, ok := m.list.SelectedItem().(models.Snippet)
	if !ok {
		return m, nil
	}
	text, err := m.svc.Render(snip.Trigger, nil)
	if err == nil {
		err = clipboard.Copy(text)
	}
	if err != nil {
		m.toast = apperrors.GetAppError(err).Message
	} else {
		m.toast = "copied " + snip.Trigger
	}
	return m, m.expireToast()
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.typeahead.Close()
		m.mode = modeBrowser
		m.editor.Blur()
		m.list.SetItems(libraryItems(m.svc.Library()))
		return m, nil
	}

	// The popup sees keys first so enter and tab confirm a suggestion
	// instead of expanding or editing.
	if chosen, consumed := m.typeahead.HandleKey(msg.String()); consumed {
		if chosen != "" {
			m.completeToken(chosen)
		}
		return m, nil
	}

	// The expander sees terminating keys before the editor applies them.
	// The editor surface keeps its caret at the end of the buffer.
	surf := surface.NewFlatBuffer(m.editor.Value(), len(m.editor.Value()))
	action, req := m.svc.Expander().HandleKey(surf, expander.KeyEvent{Key: msg.String()})
	switch action {
	case expander.ActionExpanded:
		m.applyBuffer(surf.Value())
		m.typeahead.Close()
		return m, m.expireToast()
	case expander.ActionDialog:
		m.typeahead.Close()
		m.pendingSurf = surf
		m.dialog.Show(req.Trigger, req.Template)
		return m, nil
	case expander.ActionSuppressed:
		m.typeahead.Close()
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.typeahead.Refresh(currentToken(m.editor.Value()))
	return m, cmd
}

// completeToken replaces the token being typed with a chosen trigger.
func (m *Model) completeToken(trigger string) {
	value := m.editor.Value()
	token := currentToken(value)
	m.applyBuffer(value[:len(value)-len(token)] + trigger)
}

func (m *Model) finishDialog(res dialog.Result) (tea.Model, tea.Cmd) {
	insert := res.Outcome == dialog.OutcomeInsert
	m.svc.Expander().CompleteDialog(expander.DialogResult{Insert: insert, Text: res.Text})
	if insert && m.pendingSurf != nil {
		m.applyBuffer(m.pendingSurf.Value())
	}
	m.pendingSurf = nil
	switch res.Outcome {
	case dialog.OutcomeCopy:
		if res.Err != nil {
			m.toast = apperrors.GetAppError(res.Err).Message
		} else {
			m.toast = "copied to clipboard"
		}
	case dialog.OutcomeCancel:
		m.toast = ""
	}
	return m, m.expireToast()
}

// applyBuffer pushes a rewritten surface value back into the editor with
// the caret at the end.
func (m *Model) applyBuffer(value string) {
	m.editor.SetValue(value)
	m.editor.CursorEnd()
}

func (m *Model) expireToast() tea.Cmd {
	if m.toast == "" {
		return nil
	}
	m.toastID++
	id := m.toastID
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastMsg{id: id}
	})
}

func (m *Model) syncCmd() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		n, err := svc.Sync(context.Background())
		return syncDoneMsg{count: n, err: err}
	}
}

func (m *Model) openHelp() {
	if m.helpView == "" {
		rendered, err := glamour.Render(helpMarkdown, "dark")
		if err != nil {
			rendered = helpMarkdown
		}
		m.helpView = rendered
	}
	m.showHelp = true
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.dialog.Active() {
		return m.dialog.View()
	}
	if m.showHelp {
		return appStyle.Render(m.helpView + footerStyle.Render("\npress any key to close"))
	}

	if m.mode == modeBrowser {
		view := m.list.View()
		footer := footerStyle.Render("enter edit with trigger · e editor · c copy · S sync · ? help · q quit")
		return appStyle.Render(view + "\n" + m.toastView() + footer)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("editor") + "\n\n")
	b.WriteString(editorFrameStyle.Render(m.editor.View()) + "\n")
	if popup := m.typeahead.View(); popup != "" {
		b.WriteString(popup + "\n")
	}
	b.WriteString(m.toastView())
	b.WriteString(footerStyle.Render("esc browser · /trigger + space expands · digits pick a suggestion"))
	return appStyle.Render(b.String())
}

func (m *Model) toastView() string {
	if m.toast == "" {
		return ""
	}
	return toastStyle.Render(m.toast) + "\n"
}

const helpMarkdown = `# snipline

Type a ` + "`/trigger`" + ` in the editor and hit space, enter or tab to
expand it in place.

- ` + "`{{date}}`, `{{date+7}}`, `{{time}}`" + ` fill themselves in.
- ` + "`{{input:Label|default}}` and `{{select:Label|a|b}}`" + ` open the
  resolution dialog; confirmed values are remembered for next time.
- Typing two or more characters of a trigger opens the typeahead popup.
  Digits confirm a row directly, enter and tab confirm the highlighted one.
- Mail snippets (subject plus body) expand inline as
  ` + "`SUBJECT: ...`" + ` followed by the body.
`

func libraryItems(lib models.Library) []list.Item {
	entries := lib.Entries()
	items := make([]list.Item, len(entries))
	for i, s := range entries {
		items[i] = s
	}
	return items
}

// currentToken returns the trigger token being typed at the end of value,
// "" when the text does not end in one.
func currentToken(value string) string {
	if value == "" || strings.ContainsAny(value[len(value)-1:], " \t\n") {
		return ""
	}
	idx := strings.LastIndexAny(value, " \t\n")
	token := value[idx+1:]
	if !strings.HasPrefix(token, "/") {
		return ""
	}
	return token
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
