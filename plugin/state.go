package plugin

import "sync"

// StateTracker is a concurrency-safe holder for a plugin's State. Backends
// embed it and mutate through its setters; State() hands out snapshots only.
type StateTracker struct {
	mu    sync.Mutex
	state State
}

// Snapshot returns a copy of the current state.
func (t *StateTracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state
	if t.state.Download != nil {
		d := *t.state.Download
		s.Download = &d
	}
	return s
}

// SetLoading marks the plugin as loading or not.
func (t *StateTracker) SetLoading(loading bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Loading = loading
}

// SetActive marks the plugin active or inactive. Activation clears the
// last error.
func (t *StateTracker) SetActive(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Active = active
	t.state.Loading = false
	if active {
		t.state.LastError = ""
	}
}

// SetError records a failure and forces the plugin inactive.
func (t *StateTracker) SetError(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.LastError = msg
	t.state.Active = false
	t.state.Loading = false
}

// SetDownload records download progress.
func (t *StateTracker) SetDownload(status string, percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Download = &DownloadProgress{Status: status, Percent: percent}
}

// ClearDownload removes download progress.
func (t *StateTracker) ClearDownload() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Download = nil
}
