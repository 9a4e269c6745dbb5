package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apperrors "github.com/snipline/snipline/internal/errors"
)

const lastValuesFile = "lastvalues.json"

// LastValues remembers the most recent confirmed value per placeholder
// label, scoped by the trigger that was being expanded: a Name confirmed
// under /alpha never seeds /beta. Triggers are lowercased so the scoping
// follows the index's case-insensitive lookup. Reads are synchronous;
// writes are fire and forget, so a slow or failing disk never stalls an
// expansion. Write failures are logged as degraded capability and the
// in-memory value stands.
type LastValues struct {
	mu     sync.RWMutex
	path   string
	values map[string]map[string]string

	// writeMu serializes flushes so concurrent Sets cannot interleave
	// their temp-file renames.
	writeMu sync.Mutex
	wg      sync.WaitGroup
}

// NewLastValues returns an empty store over dir/lastvalues.json.
func NewLastValues(dir string) *LastValues {
	return &LastValues{
		path:   filepath.Join(dir, lastValuesFile),
		values: map[string]map[string]string{},
	}
}

// Load reads the remembered values. A missing file is an empty store; a
// corrupt file is logged and treated as empty rather than blocking
// expansion.
func (lv *LastValues) Load() error {
	data, err := os.ReadFile(lv.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return apperrors.StorageError("read last values", err)
	}

	values := map[string]map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		apperrors.LogDegraded(apperrors.Wrap(err, apperrors.ErrCodeFileCorrupted,
			"Last values file does not parse, starting empty"))
		return nil
	}

	lv.mu.Lock()
	lv.values = values
	lv.mu.Unlock()
	return nil
}

// Get returns the value remembered for a label under a trigger.
func (lv *LastValues) Get(trigger, label string) (string, bool) {
	lv.mu.RLock()
	defer lv.mu.RUnlock()
	v, ok := lv.values[strings.ToLower(trigger)][label]
	return v, ok
}

// Set records a value under a trigger and persists asynchronously.
func (lv *LastValues) Set(trigger, label, value string) {
	key := strings.ToLower(trigger)
	lv.mu.Lock()
	if lv.values[key] == nil {
		lv.values[key] = map[string]string{}
	}
	lv.values[key][label] = value
	lv.mu.Unlock()

	lv.wg.Add(1)
	go func() {
		defer lv.wg.Done()
		lv.flush()
	}()
}

// Flush waits for in-flight writes; hosts call it on shutdown.
func (lv *LastValues) Flush() {
	lv.wg.Wait()
}

// flush writes the current state. Snapshotting under the write lock keeps
// late-running flushes from reverting a newer value.
func (lv *LastValues) flush() {
	lv.writeMu.Lock()
	defer lv.writeMu.Unlock()

	lv.mu.RLock()
	snapshot := make(map[string]map[string]string, len(lv.values))
	for trigger, labels := range lv.values {
		inner := make(map[string]string, len(labels))
		for k, v := range labels {
			inner[k] = v
		}
		snapshot[trigger] = inner
	}
	lv.mu.RUnlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		apperrors.LogDegraded(apperrors.StorageError("encode last values", err))
		return
	}
	if err := writeAtomic(lv.path, data); err != nil {
		apperrors.LogDegraded(apperrors.StorageError("write last values", err))
	}
}
