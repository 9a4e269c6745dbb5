// Package index maintains the case-insensitive trigger lookup built from a
// snippet library, and ranks trigger candidates for typeahead.
package index

import (
	"sort"
	"strings"

	"github.com/snipline/snipline/internal/models"
)

// Index maps lowercased triggers to their snippets. It is rebuilt wholesale
// whenever the library changes and is not safe for concurrent mutation; the
// orchestrator owns it from a single goroutine.
type Index struct {
	entries map[string]models.Snippet
}

// New returns an empty index.
func New() *Index {
	return &Index{entries: map[string]models.Snippet{}}
}

// Rebuild replaces the index contents from a library. Only triggers starting
// with "/" are indexed; when two triggers collide case-insensitively the
// later one in trigger sort order wins.
func (ix *Index) Rebuild(lib models.Library) {
	entries := make(map[string]models.Snippet, len(lib.Snippets))
	for _, s := range lib.Entries() {
		if !strings.HasPrefix(s.Trigger, "/") {
			continue
		}
		entries[strings.ToLower(s.Trigger)] = s
	}
	ix.entries = entries
}

// Lookup resolves a typed token case-insensitively.
func (ix *Index) Lookup(token string) (models.Snippet, bool) {
	s, ok := ix.entries[strings.ToLower(token)]
	return s, ok
}

// Len returns the number of indexed triggers.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Keys returns every indexed trigger in its original casing, sorted.
func (ix *Index) Keys() []string {
	keys := make([]string, 0, len(ix.entries))
	for _, s := range ix.entries {
		keys = append(keys, s.Trigger)
	}
	sort.Strings(keys)
	return keys
}

// Match ranks triggers for a typed prefix: triggers whose lowercase form
// starts with the prefix come first, then those containing the part after
// the slash, each group in sorted order, capped at limit.
func (ix *Index) Match(prefix string, limit int) []string {
	p := strings.ToLower(prefix)
	sub := strings.TrimPrefix(p, "/")
	var starts, contains []string
	for _, key := range ix.Keys() {
		lower := strings.ToLower(key)
		switch {
		case strings.HasPrefix(lower, p):
			starts = append(starts, key)
		case sub != "" && strings.Contains(lower, sub):
			contains = append(contains, key)
		}
	}
	out := append(starts, contains...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
