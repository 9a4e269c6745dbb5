// Package detect scans rich surface documents for regions of interest,
// such as mail compose fields, by matching configured patterns against
// element descriptors. Hosts signal tree mutations through Notify; scans
// are debounced so mutation bursts collapse into one pass, and each pass
// visits a bounded number of nodes so a pathological document cannot stall
// the host.
package detect

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/snipline/snipline/internal/surface"
)

const (
	// DefaultDebounce batches mutation bursts into one scan.
	DefaultDebounce = 200 * time.Millisecond
	// DefaultBudget bounds the nodes visited per scan.
	DefaultBudget = 4096
)

// Patterns maps a region label to the pattern its element descriptor must
// match. Descriptors look like `tag key="value" ...` with keys sorted.
type Patterns map[string]*regexp.Regexp

// Scanner watches one document.
type Scanner struct {
	doc      *surface.Document
	patterns Patterns

	debounce time.Duration
	budget   int

	mu       sync.Mutex
	found    map[string]*surface.Node
	values   map[string]string
	timer    *time.Timer
	onDetect func(label string, n *surface.Node)
}

// New returns a scanner over doc with default debounce and budget.
func New(doc *surface.Document, patterns Patterns) *Scanner {
	return &Scanner{
		doc:      doc,
		patterns: patterns,
		debounce: DefaultDebounce,
		budget:   DefaultBudget,
		found:    map[string]*surface.Node{},
		values:   map[string]string{},
	}
}

// SetDebounce overrides the debounce window.
func (s *Scanner) SetDebounce(d time.Duration) {
	s.debounce = d
}

// SetBudget overrides the per-scan node budget.
func (s *Scanner) SetBudget(n int) {
	s.budget = n
}

// OnDetect registers a callback fired when a label is first matched or its
// node changes. Callbacks run on the scan goroutine.
func (s *Scanner) OnDetect(fn func(label string, n *surface.Node)) {
	s.onDetect = fn
}

// Notify signals that the tree mutated. The scan runs once the debounce
// window closes; repeated notifications reset the window.
func (s *Scanner) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.Scan)
}

// Close cancels any pending scan.
func (s *Scanner) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Found returns the last node matched for label, nil when none has been.
func (s *Scanner) Found(label string) *surface.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.found[label]
}

// Value returns the text value extracted for label, "" when none has been.
func (s *Scanner) Value(label string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[label]
}

// Values returns a copy of every extracted value, keyed by label. Hosts
// seed dialog placeholders with these, below remembered values.
func (s *Scanner) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Scan walks the document immediately, independent of the debounce. Element
// patterns record the first matching element per label; the same patterns
// run against text content to extract values, taking the first capture
// group when one exists. The walk stops once the node budget is spent.
func (s *Scanner) Scan() {
	matched := map[string]*surface.Node{}
	values := map[string]string{}
	visited := 0

	var walk func(n *surface.Node) bool
	walk = func(n *surface.Node) bool {
		if visited >= s.budget {
			return false
		}
		visited++
		if n.Kind == surface.ElementNode {
			desc := Describe(n)
			for label, re := range s.patterns {
				if matched[label] == nil && re.MatchString(desc) {
					matched[label] = n
				}
			}
		} else {
			for label, re := range s.patterns {
				if _, ok := values[label]; ok {
					continue
				}
				if m := re.FindStringSubmatch(n.Text); m != nil {
					if len(m) > 1 && m[1] != "" {
						values[label] = m[1]
					} else {
						values[label] = m[0]
					}
				}
			}
		}
		for _, c := range n.Children() {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(s.doc.Root())

	s.mu.Lock()
	var changed []string
	for label, n := range matched {
		if s.found[label] != n {
			s.found[label] = n
			changed = append(changed, label)
		}
	}
	for label, v := range values {
		s.values[label] = v
	}
	fn := s.onDetect
	found := s.found
	s.mu.Unlock()

	if fn != nil {
		sort.Strings(changed)
		for _, label := range changed {
			fn(label, found[label])
		}
	}
}

// Describe flattens an element into the string patterns match against:
// the tag followed by sorted key="value" attribute pairs, lowercased.
func Describe(n *surface.Node) string {
	parts := []string{strings.ToLower(n.Tag)}
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, strings.ToLower(k)+`="`+strings.ToLower(n.Attrs[k])+`"`)
	}
	return strings.Join(parts, " ")
}
