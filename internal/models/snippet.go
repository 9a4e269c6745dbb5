package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Snippet is a single expandable entry: a trigger plus its body and an
// optional display title. The trigger must begin with "/" and is unique
// under case-insensitive comparison.
type Snippet struct {
	Trigger string
	Title   string
	Body    Body
}

// Body holds either a plain template string or a structured mail template.
// Exactly one of Text or Mail is meaningful; IsMail distinguishes them.
type Body struct {
	Text string
	Mail *MailTemplate
}

// MailTemplate is a structured mail snippet with subject and body templates.
type MailTemplate struct {
	Subject string `yaml:"subject" json:"subject"`
	Body    string `yaml:"body" json:"body"`
}

// IsMail reports whether the body is a structured mail template.
func (b Body) IsMail() bool {
	return b.Mail != nil
}

// UnmarshalYAML accepts either a scalar template string or a
// {subject, body} mapping.
func (b *Body) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		b.Text = s
		b.Mail = nil
		return nil
	case yaml.MappingNode:
		var m MailTemplate
		if err := node.Decode(&m); err != nil {
			return err
		}
		b.Text = ""
		b.Mail = &m
		return nil
	default:
		return fmt.Errorf("snippet body must be a string or a subject/body mapping (line %d)", node.Line)
	}
}

// MarshalYAML emits the compact scalar form for plain snippets.
func (b Body) MarshalYAML() (interface{}, error) {
	if b.Mail != nil {
		return b.Mail, nil
	}
	return b.Text, nil
}

// UnmarshalJSON mirrors UnmarshalYAML for remotely fetched libraries.
func (b *Body) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.Text = s
		b.Mail = nil
		return nil
	}
	var m MailTemplate
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("snippet body must be a string or a subject/body object: %w", err)
	}
	b.Text = ""
	b.Mail = &m
	return nil
}

// MarshalJSON emits the compact scalar form for plain snippets.
func (b Body) MarshalJSON() ([]byte, error) {
	if b.Mail != nil {
		return json.Marshal(b.Mail)
	}
	return json.Marshal(b.Text)
}

// Library is the full externally supplied snippet set: trigger to body, plus
// an optional parallel mapping of trigger to display title. The core treats
// a Library as read-only and replaces it wholesale on change.
type Library struct {
	Snippets map[string]Body   `yaml:"snippets" json:"snippets"`
	Titles   map[string]string `yaml:"titles,omitempty" json:"titles,omitempty"`
}

// Entries returns the library as Snippet values sorted by trigger, for
// display in lists.
func (l Library) Entries() []Snippet {
	entries := make([]Snippet, 0, len(l.Snippets))
	for trigger, body := range l.Snippets {
		entries = append(entries, Snippet{
			Trigger: trigger,
			Title:   l.Titles[trigger],
			Body:    body,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Trigger < entries[j].Trigger
	})
	return entries
}

// Implement list.Item interface for bubbles list component

// FilterValue returns the value used for filtering in lists
func (s Snippet) FilterValue() string {
	return cleanString(s.Trigger + " " + s.Title)
}

// ListTitle is the primary line shown in the snippet browser.
func (s Snippet) ListTitle() string {
	return cleanString(s.Trigger)
}

// ListDescription is the secondary line shown in the snippet browser:
// the display title if one exists, else a preview of the body.
func (s Snippet) ListDescription() string {
	if s.Title != "" {
		return cleanString(s.Title)
	}
	preview := s.Body.Text
	if s.Body.IsMail() {
		preview = s.Body.Mail.Subject
	}
	preview = cleanString(preview)
	maxPreviewLength := 60
	if len(preview) > maxPreviewLength {
		preview = preview[:maxPreviewLength-3] + "..."
	}
	return preview
}

// cleanString removes control characters that might cause rendering issues
func cleanString(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteByte(' ')
		} else if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}
	return strings.TrimSpace(cleaned)
}
