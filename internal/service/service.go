// Package service wires the snipline core together: configuration, the
// persisted library, remembered placeholder values, the trigger index and
// the expander. Both hosts build on it.
package service

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/snipline/snipline/internal/config"
	apperrors "github.com/snipline/snipline/internal/errors"
	"github.com/snipline/snipline/internal/expander"
	"github.com/snipline/snipline/internal/index"
	"github.com/snipline/snipline/internal/models"
	"github.com/snipline/snipline/internal/remote"
	"github.com/snipline/snipline/internal/storage"
	"github.com/snipline/snipline/internal/template"
)

var reTrigger = regexp.MustCompile(`^/[a-zA-Z0-9_-]+$`)

// Service is the assembled core. The index tracks the store: every library
// change rebuilds it before any further lookup.
type Service struct {
	dir        string
	cfg        config.Config
	store      *storage.Store
	lastValues *storage.LastValues
	ix         *index.Index
	exp        *expander.Expander
}

// New assembles a service over the given data directory. A corrupt config
// or library is a real error: silently running with defaults would make
// expansion misbehave in ways the user cannot see.
func New(dir string) (*Service, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	ix := index.New()
	store := storage.NewStore(dir)
	store.OnChange(func(lib models.Library) { ix.Rebuild(lib) })
	if err := store.Load(); err != nil {
		return nil, err
	}

	lastValues := storage.NewLastValues(dir)
	if err := lastValues.Load(); err != nil {
		apperrors.LogDegraded(apperrors.GetAppError(err))
	}

	return &Service{
		dir:        dir,
		cfg:        cfg,
		store:      store,
		lastValues: lastValues,
		ix:         ix,
		exp:        expander.New(ix),
	}, nil
}

func (s *Service) Dir() string                    { return s.dir }
func (s *Service) Config() config.Config          { return s.cfg }
func (s *Service) Library() models.Library        { return s.store.Library() }
func (s *Service) Index() *index.Index            { return s.ix }
func (s *Service) Expander() *expander.Expander   { return s.exp }
func (s *Service) LastValues() *storage.LastValues { return s.lastValues }

// Close waits for pending value writes.
func (s *Service) Close() {
	s.lastValues.Flush()
}

// Sync fetches the configured remote library and replaces the local one.
// It returns the number of snippets fetched.
func (s *Service) Sync(ctx context.Context) (int, error) {
	if s.cfg.RemoteURL == "" {
		return 0, apperrors.ValidationError("no remote_url configured; set it in config.yaml")
	}
	lib, err := remote.New(s.cfg.RemoteURL).Fetch(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.store.Replace(lib); err != nil {
		return 0, err
	}
	s.recordSync()
	return len(lib.Snippets), nil
}

// recordSync stamps the last successful sync; failures only degrade.
func (s *Service) recordSync() {
	stamp := time.Now().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(filepath.Join(s.dir, "lastsync"), []byte(stamp), 0644); err != nil {
		apperrors.LogDegraded(apperrors.StorageError("record sync time", err))
	}
}

// LastSync returns the time of the last successful sync, zero when never
// synced.
func (s *Service) LastSync() time.Time {
	data, err := os.ReadFile(filepath.Join(s.dir, "lastsync"))
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}
	}
	return t
}

// SaveSnippet adds or overwrites one snippet.
func (s *Service) SaveSnippet(trigger, title string, body models.Body) error {
	if !reTrigger.MatchString(trigger) {
		return apperrors.ValidationError(
			"trigger must be \"/\" followed by letters, digits, _ or -")
	}
	lib := cloneLibrary(s.store.Library())
	lib.Snippets[trigger] = body
	if title != "" {
		lib.Titles[trigger] = title
	} else {
		delete(lib.Titles, trigger)
	}
	return s.store.Replace(lib)
}

// DeleteSnippet removes one snippet by its exact trigger.
func (s *Service) DeleteSnippet(trigger string) error {
	lib := cloneLibrary(s.store.Library())
	if _, ok := lib.Snippets[trigger]; !ok {
		return apperrors.NotFoundError("snippet " + trigger)
	}
	delete(lib.Snippets, trigger)
	delete(lib.Titles, trigger)
	return s.store.Replace(lib)
}

// Lookup resolves a trigger case-insensitively.
func (s *Service) Lookup(trigger string) (models.Snippet, bool) {
	return s.ix.Lookup(trigger)
}

// Render resolves a snippet to final text without a dialog: placeholder
// values come from declared defaults, then remembered values, then the
// overrides given here. Mail snippets render in the inline fallback form.
func (s *Service) Render(trigger string, overrides map[string]string) (string, error) {
	snip, ok := s.ix.Lookup(trigger)
	if !ok {
		return "", apperrors.NotFoundError("snippet " + trigger)
	}

	tpl := snip.Body.Text
	isMail := snip.Body.IsMail()
	if isMail {
		tpl = snip.Body.Mail.Subject + expander.MailSep + snip.Body.Mail.Body
	}
	tpl = template.ExpandMacros(tpl)

	values := map[string]string{}
	for _, ph := range template.Unify(template.ParsePlaceholders(tpl)) {
		values[ph.Label] = ph.DefaultValue()
		if remembered, ok := s.lastValues.Get(snip.Trigger, ph.Label); ok {
			values[ph.Label] = remembered
		}
	}
	for label, v := range overrides {
		values[label] = v
	}

	text := template.Render(tpl, values, false).Plain
	if isMail {
		subject, body := expander.SplitMail(text)
		text = expander.FallbackMail(subject, body)
	}
	return text, nil
}

func cloneLibrary(lib models.Library) models.Library {
	out := models.Library{
		Snippets: make(map[string]models.Body, len(lib.Snippets)+1),
		Titles:   make(map[string]string, len(lib.Titles)+1),
	}
	for k, v := range lib.Snippets {
		out.Snippets[k] = v
	}
	for k, v := range lib.Titles {
		out.Titles[k] = v
	}
	return out
}
