package plugin

import "context"

// Plugin is the uniform contract every transcription backend implements.
type Plugin interface {
	// Name returns the plugin's unique name.
	Name() string

	// Descriptor returns static metadata about the plugin.
	Descriptor() Descriptor

	// IsAvailable is a cheap, side-effect-free precondition check (binary
	// present, credential configured). Used to short-circuit before a full
	// activation attempt.
	IsAvailable(ctx context.Context) bool

	// Activate performs the real activation, including expensive
	// verification (model file presence, subprocess start, credential
	// check). It must fail with a descriptive error, must leave the plugin
	// inactive and clean on failure, and must never trigger a download or
	// other heavy remedial action: a missing asset fails fast.
	Activate(ctx context.Context, hooks *Hooks) error

	// Deactivate releases resources. It must be a no-op on an already
	// inactive plugin.
	Deactivate(ctx context.Context) error

	// UpdateOptions validates and applies configuration before activation.
	// It returns an error on invalid combinations.
	UpdateOptions(ctx context.Context, opts Options, hooks *Hooks) error

	// State returns a read-only snapshot of the plugin's lifecycle state.
	State() State

	// ListData returns the plugin's on-disk artifacts.
	ListData(ctx context.Context) ([]DataItem, error)

	// DataSize returns the total size of the plugin's artifacts in bytes.
	DataSize(ctx context.Context) (int64, error)

	// DeleteDataItem removes a single artifact by ID.
	DeleteDataItem(ctx context.Context, id string) error

	// DeleteAllData removes every artifact the plugin owns.
	DeleteAllData(ctx context.Context) error
}

// Factory creates a plugin instance from a configuration map.
type Factory func(cfg map[string]any) (Plugin, error)

// FallbackPreference is optionally implemented by plugins that declare an
// ordered list of preferred alternates. A plugin without it behaves exactly
// like one returning an empty chain: the orchestrator appends everyone else
// in registration order either way.
type FallbackPreference interface {
	FallbackChain() []string
}

// fallbackChainOf returns the plugin's declared fallback chain, or nil.
func fallbackChainOf(p Plugin) []string {
	if fp, ok := p.(FallbackPreference); ok {
		return fp.FallbackChain()
	}
	return nil
}

// Hooks are optional caller-supplied callbacks a plugin may invoke for user
// feedback during activation or downloads. A nil *Hooks is valid; use the
// nil-safe methods.
type Hooks struct {
	ShowProgress func(message string, percent int)
	ShowError    func(message string)
	ShowSuccess  func(message string)
}

// Progress reports progress if a handler is present.
func (h *Hooks) Progress(message string, percent int) {
	if h != nil && h.ShowProgress != nil {
		h.ShowProgress(message, percent)
	}
}

// Error reports an error message if a handler is present.
func (h *Hooks) Error(message string) {
	if h != nil && h.ShowError != nil {
		h.ShowError(message)
	}
}

// Success reports a success message if a handler is present.
func (h *Hooks) Success(message string) {
	if h != nil && h.ShowSuccess != nil {
		h.ShowSuccess(message)
	}
}
