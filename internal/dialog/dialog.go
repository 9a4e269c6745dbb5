// Package dialog implements the placeholder resolution modal: one control
// per unified placeholder, a live preview, and Insert/Copy/Cancel actions.
package dialog

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/snipline/snipline/internal/template"
)

// ValueStore remembers the last confirmed value per placeholder label across
// expansions, scoped by the trigger being resolved.
type ValueStore interface {
	Get(trigger, label string) (string, bool)
	Set(trigger, label, value string)
}

// Copier writes resolved text to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Outcome is how the dialog was closed.
type Outcome int

const (
	OutcomeInsert Outcome = iota
	OutcomeCopy
	OutcomeCancel
)

// Result is the dialog's final state. Err is set when the Copy outcome
// could not reach a clipboard, so the host can report the failure.
type Result struct {
	Outcome Outcome
	Text    string
	Values  map[string]string
	Err     error
}

// ResultMsg is emitted as a command when the dialog closes.
type ResultMsg struct {
	Result Result
}

// field is one placeholder control: a text input for input placeholders, an
// option cycler for selects.
type field struct {
	ph     template.Placeholder
	input  textinput.Model
	option int
}

func (f *field) value() string {
	if f.ph.Kind == template.Select {
		if len(f.ph.Options) == 0 {
			return ""
		}
		return f.ph.Options[f.option]
	}
	return f.input.Value()
}

const buttonCount = 3 // insert, copy, cancel

// Dialog is the resolution modal. Esc is deliberately swallowed while it is
// open so a stray escape cannot discard half-filled values; only the Cancel
// button dismisses it.
type Dialog struct {
	width    int
	height   int
	isActive bool

	trigger string
	tpl     string
	fields  []field
	preview textarea.Model

	// manual latches once the preview is edited by hand; field changes
	// stop regenerating it from then on.
	manual bool

	// focus walks fields, then the preview, then the buttons.
	focus  int
	button int

	store  ValueStore
	copier Copier

	// contextValues are host-detected values (case numbers, site codes)
	// seeded below remembered values.
	contextValues map[string]string
}

// New returns an inactive dialog wired to a value store and clipboard.
func New(store ValueStore, copier Copier) *Dialog {
	return &Dialog{store: store, copier: copier, preview: textarea.New()}
}

// SetSize updates the dimensions used to center the modal.
func (d *Dialog) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.preview.SetWidth(min(60, max(20, width-12)))
}

// Active reports whether the modal is showing.
func (d *Dialog) Active() bool {
	return d.isActive
}

// Trigger returns the trigger being resolved.
func (d *Dialog) Trigger() string {
	return d.trigger
}

// SetContextValues installs values detected from the surrounding document.
// They seed placeholders with exactly matching labels, above declared
// defaults and below remembered values.
func (d *Dialog) SetContextValues(values map[string]string) {
	d.contextValues = values
}

// Show opens the modal for a macro-expanded template. Each unified
// placeholder is seeded from its declared default, then any detected
// context value, then the remembered value.
func (d *Dialog) Show(trigger, tpl string) {
	d.trigger = trigger
	d.tpl = tpl
	d.manual = false
	d.focus = 0
	d.button = 0
	d.fields = nil

	for _, ph := range template.Unify(template.ParsePlaceholders(tpl)) {
		f := field{ph: ph}
		seed := ph.DefaultValue()
		if detected, ok := d.contextValues[ph.Label]; ok {
			seed = detected
		}
		if remembered, ok := d.store.Get(trigger, ph.Label); ok {
			seed = remembered
		}
		if ph.Kind == template.Select {
			for i, opt := range ph.Options {
				if opt == seed {
					f.option = i
					break
				}
			}
		} else {
			f.input = textinput.New()
			f.input.Placeholder = ph.Label
			f.input.SetValue(seed)
			f.input.CharLimit = 0
		}
		d.fields = append(d.fields, f)
	}

	d.preview = textarea.New()
	d.preview.ShowLineNumbers = false
	d.preview.SetHeight(5)
	d.SetSize(d.width, d.height)
	d.refreshPreview()
	d.isActive = true
	d.focusCurrent()
}

// Hide dismisses the modal without emitting a result.
func (d *Dialog) Hide() {
	d.isActive = false
}

// Values returns the current value per placeholder label.
func (d *Dialog) Values() map[string]string {
	values := make(map[string]string, len(d.fields))
	for i := range d.fields {
		values[d.fields[i].ph.Label] = d.fields[i].value()
	}
	return values
}

// finalText is what Insert and Copy emit: the hand-edited preview once the
// manual latch is set, the regenerated rendering otherwise.
func (d *Dialog) finalText() string {
	if d.manual {
		return d.preview.Value()
	}
	return template.Render(d.tpl, d.Values(), false).Plain
}

func (d *Dialog) refreshPreview() {
	if d.manual {
		return
	}
	d.preview.SetValue(template.Render(d.tpl, d.Values(), false).Plain)
}

func (d *Dialog) previewIndex() int { return len(d.fields) }
func (d *Dialog) buttonIndex() int  { return len(d.fields) + 1 }

func (d *Dialog) focusCurrent() {
	for i := range d.fields {
		if d.fields[i].ph.Kind == template.Input {
			if i == d.focus {
				d.fields[i].input.Focus()
			} else {
				d.fields[i].input.Blur()
			}
		}
	}
	if d.focus == d.previewIndex() {
		d.preview.Focus()
	} else {
		d.preview.Blur()
	}
}

func (d *Dialog) cycleFocus(delta int) {
	zones := len(d.fields) + 2
	d.focus = (d.focus + delta + zones) % zones
	d.focusCurrent()
}

// Update handles one message while the modal is active. Closing the modal
// emits a ResultMsg command.
func (d *Dialog) Update(msg tea.Msg) (*Dialog, tea.Cmd) {
	if !d.isActive {
		return d, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}

	switch keyMsg.String() {
	case "esc":
		return d, nil
	case "tab":
		d.cycleFocus(1)
		return d, nil
	case "shift+tab":
		d.cycleFocus(-1)
		return d, nil
	case "ctrl+c":
		return d, d.close(OutcomeCancel)
	}

	switch {
	case d.focus == d.buttonIndex():
		return d, d.updateButtons(keyMsg)
	case d.focus == d.previewIndex():
		d.updatePreview(keyMsg)
		return d, nil
	default:
		return d, d.updateField(keyMsg)
	}
}

func (d *Dialog) updateField(msg tea.KeyMsg) tea.Cmd {
	f := &d.fields[d.focus]
	if f.ph.Kind == template.Select {
		switch msg.String() {
		case "left", "up":
			if f.option > 0 {
				f.option--
			}
		case "right", "down", " ":
			if f.option < len(f.ph.Options)-1 {
				f.option++
			}
		case "enter":
			return d.close(OutcomeInsert)
		}
		d.refreshPreview()
		return nil
	}

	if msg.String() == "enter" {
		return d.close(OutcomeInsert)
	}
	f.input, _ = f.input.Update(msg)
	d.refreshPreview()
	return nil
}

func (d *Dialog) updatePreview(msg tea.KeyMsg) {
	before := d.preview.Value()
	d.preview, _ = d.preview.Update(msg)
	if d.preview.Value() != before {
		d.manual = true
	}
}

func (d *Dialog) updateButtons(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left":
		if d.button > 0 {
			d.button--
		}
	case "right":
		if d.button < buttonCount-1 {
			d.button++
		}
	case "enter":
		switch d.button {
		case 0:
			return d.close(OutcomeInsert)
		case 1:
			return d.close(OutcomeCopy)
		case 2:
			return d.close(OutcomeCancel)
		}
	}
	return nil
}

// close finalizes the dialog. Insert persists the collected values for the
// next expansion; Copy and Cancel never touch the store.
func (d *Dialog) close(outcome Outcome) tea.Cmd {
	res := Result{
		Outcome: outcome,
		Text:    d.finalText(),
		Values:  d.Values(),
	}
	if outcome == OutcomeInsert && d.store != nil {
		for label, value := range res.Values {
			d.store.Set(d.trigger, label, value)
		}
	}
	if outcome == OutcomeCopy && d.copier != nil {
		res.Err = d.copier.Copy(res.Text)
	}
	d.isActive = false
	return func() tea.Msg { return ResultMsg{Result: res} }
}

var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	sectionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
	buttonStyle   = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("250"))
	buttonFocused = lipgloss.NewStyle().Padding(0, 2).Bold(true).
			Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))
)

var buttonLabels = [buttonCount]string{"Insert", "Copy", "Cancel"}

// View renders the centered modal, empty while inactive.
func (d *Dialog) View() string {
	if !d.isActive {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(d.trigger) + "\n")

	for i := range d.fields {
		f := &d.fields[i]
		label := labelStyle.Render(f.ph.Label + ": ")
		if i == d.focus {
			label = focusedStyle.Render(f.ph.Label + ": ")
		}
		if f.ph.Kind == template.Select {
			b.WriteString("\n" + label + renderOptions(f, i == d.focus))
		} else {
			b.WriteString("\n" + label + f.input.View())
		}
	}

	b.WriteString("\n" + sectionStyle.Render("Preview") + "\n" + d.preview.View() + "\n\n")

	buttons := make([]string, buttonCount)
	for i, label := range buttonLabels {
		style := buttonStyle
		if d.focus == d.buttonIndex() && d.button == i {
			style = buttonFocused
		}
		buttons[i] = style.Render(label)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))

	return lipgloss.Place(d.width, d.height, lipgloss.Center, lipgloss.Center,
		modalStyle.Render(b.String()))
}

func renderOptions(f *field, focused bool) string {
	parts := make([]string, len(f.ph.Options))
	for i, opt := range f.ph.Options {
		if i == f.option {
			if focused {
				parts[i] = focusedStyle.Render("[" + opt + "]")
			} else {
				parts[i] = "[" + opt + "]"
			}
		} else {
			parts[i] = " " + opt + " "
		}
	}
	return strings.Join(parts, " ")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
