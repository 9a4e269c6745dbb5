// Package template implements the snippet template engine: date/time macro
// expansion, placeholder token parsing, and rendering of a filled template
// as plain text and HTML.
//
// Placeholder syntax:
//
//	{{select:Label|opt1|opt2|...}}   choice control, first option is default
//	{{input:Label}}                  free text control, empty default
//	{{input:Label|default}}          free text control with default
//
// Macro syntax (non-interactive):
//
//	{{date}}      today, ISO YYYY-MM-DD
//	{{date+N}}    today offset by N calendar days (also date-N)
//	{{time}}      local HH:MM
//
// Parsing never fails: malformed token syntax is simply not recognized and
// stays in the output as literal text.
package template

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind distinguishes the two interactive placeholder kinds.
type Kind string

const (
	Select Kind = "select"
	Input  Kind = "input"
)

// Placeholder is one parsed placeholder token.
type Placeholder struct {
	Kind    Kind
	Label   string
	Options []string // select only; trimmed, empties dropped
	Default string   // input only
	Raw     string   // the full source token
}

// DefaultValue returns the value a placeholder starts with when nothing is
// remembered for it: the first option for selects, the default for inputs.
func (p Placeholder) DefaultValue() string {
	if p.Kind == Select {
		if len(p.Options) > 0 {
			return p.Options[0]
		}
		return ""
	}
	return p.Default
}

var (
	reMacroDate    = regexp.MustCompile(`\{\{date(?:([+-]\d+))?\}\}`)
	reMacroTime    = regexp.MustCompile(`\{\{time\}\}`)
	rePlaceholder  = regexp.MustCompile(`\{\{(?:select:([^}|]+)\|([^}]+)|input:([^}|]+)(?:\|([^}]*))?)\}\}`)
	reHasToken     = regexp.MustCompile(`\{\{(?:select:|input:)`)
	reTidySpacing  = regexp.MustCompile(`\s+([,.;:!?])`)
	htmlReplacer   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#039;")
)

// ExpandMacros substitutes date/time macros using the current clock.
// Placeholder tokens are left untouched.
func ExpandMacros(tpl string) string {
	return ExpandMacrosAt(tpl, time.Now())
}

// ExpandMacrosAt is ExpandMacros with an explicit reference time.
func ExpandMacrosAt(tpl string, now time.Time) string {
	out := reMacroDate.ReplaceAllStringFunc(tpl, func(tok string) string {
		m := reMacroDate.FindStringSubmatch(tok)
		if m[1] == "" {
			return now.Format("2006-01-02")
		}
		// Malformed offsets fall back to 0.
		n, err := strconv.Atoi(m[1])
		if err != nil {
			n = 0
		}
		return now.AddDate(0, 0, n).Format("2006-01-02")
	})
	return reMacroTime.ReplaceAllString(out, now.Format("15:04"))
}

// ParsePlaceholders scans a template for placeholder tokens in source order.
// Labels and options are trimmed; empty options are dropped.
func ParsePlaceholders(tpl string) []Placeholder {
	var tokens []Placeholder
	for _, m := range rePlaceholder.FindAllStringSubmatch(tpl, -1) {
		if m[3] != "" {
			tokens = append(tokens, Placeholder{
				Kind:    Input,
				Label:   strings.TrimSpace(m[3]),
				Default: strings.TrimSpace(m[4]),
				Raw:     m[0],
			})
			continue
		}
		var options []string
		for _, opt := range strings.Split(m[2], "|") {
			if opt = strings.TrimSpace(opt); opt != "" {
				options = append(options, opt)
			}
		}
		tokens = append(tokens, Placeholder{
			Kind:    Select,
			Label:   strings.TrimSpace(m[1]),
			Options: options,
			Raw:     m[0],
		})
	}
	return tokens
}

// Unify merges placeholder occurrences sharing (kind, label): the first
// occurrence defines the control, later ones are dropped.
func Unify(tokens []Placeholder) []Placeholder {
	seen := make(map[string]bool, len(tokens))
	unified := make([]Placeholder, 0, len(tokens))
	for _, tok := range tokens {
		key := string(tok.Kind) + "::" + tok.Label
		if seen[key] {
			continue
		}
		seen[key] = true
		unified = append(unified, tok)
	}
	return unified
}

// HasPlaceholders reports whether at least one recognized placeholder token
// is present; used to decide whether the resolution dialog is needed.
func HasPlaceholders(tpl string) bool {
	return reHasToken.MatchString(tpl)
}

// Rendered is the two-form output of Render.
type Rendered struct {
	Plain string // unescaped text for insertion/copy
	HTML  string // escaped, optionally with highlight markers
}

// Render expands macros, then substitutes every placeholder token with
// values[label] (missing labels render as empty). With highlight set, each
// substituted value is wrapped in a marker span in the HTML output only.
// A final cosmetic pass collapses whitespace runs before , . ; : ! ? in
// both outputs.
func Render(tpl string, values map[string]string, highlight bool) Rendered {
	return RenderAt(tpl, values, highlight, time.Now())
}

// RenderAt is Render with an explicit reference time for macros.
func RenderAt(tpl string, values map[string]string, highlight bool, now time.Time) Rendered {
	src := ExpandMacrosAt(tpl, now)

	var plain, html strings.Builder
	last := 0
	for _, m := range rePlaceholder.FindAllStringSubmatchIndex(src, -1) {
		before := src[last:m[0]]
		plain.WriteString(before)
		html.WriteString(EscapeHTML(before))

		label := submatch(src, m, 1)
		if label == "" {
			label = submatch(src, m, 3)
		}
		label = strings.TrimSpace(label)
		val := values[label]

		plain.WriteString(val)
		if highlight {
			html.WriteString(`<span class="hl" data-label="` + EscapeHTML(label) + `">` + EscapeHTML(val) + `</span>`)
		} else {
			html.WriteString(EscapeHTML(val))
		}
		last = m[1]
	}
	tail := src[last:]
	plain.WriteString(tail)
	html.WriteString(EscapeHTML(tail))

	return Rendered{
		Plain: tidyPlain(plain.String()),
		HTML:  tidyHTML(html.String()),
	}
}

// EscapeHTML escapes the five characters that matter in markup text.
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

func submatch(s string, m []int, group int) string {
	if m[2*group] < 0 {
		return ""
	}
	return s[m[2*group]:m[2*group+1]]
}

func tidyPlain(s string) string {
	return reTidySpacing.ReplaceAllString(s, "$1")
}

// tidyHTML applies the whitespace-before-punctuation pass to text segments
// only, never inside tags.
func tidyHTML(s string) string {
	var out strings.Builder
	var seg strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<' && !inTag:
			out.WriteString(tidyPlain(seg.String()))
			seg.Reset()
			inTag = true
			out.WriteRune(r)
		case r == '>' && inTag:
			inTag = false
			out.WriteRune(r)
		case inTag:
			out.WriteRune(r)
		default:
			seg.WriteRune(r)
		}
	}
	out.WriteString(tidyPlain(seg.String()))
	return out.String()
}
