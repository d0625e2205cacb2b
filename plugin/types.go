package plugin

// Descriptor holds static plugin metadata, created at registration and
// immutable thereafter.
type Descriptor struct {
	// Name is the unique plugin identifier.
	Name string `json:"name"`
	// DisplayName is the human-readable name shown in settings surfaces.
	DisplayName string `json:"display_name"`
	// Description explains what the backend is and what it needs.
	Description string `json:"description"`
}

// DownloadProgress reports an in-flight asset download.
type DownloadProgress struct {
	Status  string `json:"status"`
	Percent int    `json:"percent"`
}

// State is a read-only snapshot of a plugin's lifecycle state. It is owned
// and mutated exclusively by the plugin itself.
type State struct {
	Loading   bool              `json:"loading"`
	Download  *DownloadProgress `json:"download,omitempty"`
	Active    bool              `json:"active"`
	LastError string            `json:"last_error,omitempty"`
}

// ActivationResult is the ephemeral outcome of a single activation test.
type ActivationResult struct {
	CanActivate bool   `json:"can_activate"`
	Err         string `json:"error,omitempty"`
}

// Outcome is the result of one fallback orchestration run.
type Outcome struct {
	// Success reports whether some candidate was activated.
	Success bool `json:"success"`
	// ActivePlugin is the name of the activated plugin, or "".
	ActivePlugin string `json:"active_plugin"`
	// FailedPlugins lists candidates that failed, in attempt order.
	FailedPlugins []string `json:"failed_plugins"`
	// Errors maps each failed candidate to its failure description.
	Errors map[string]string `json:"errors"`
}

// DataItem is a plugin-owned on-disk artifact, independent of activation
// state.
type DataItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	Path      string `json:"path"`
}

// DataInfo aggregates a plugin's data footprint for presentation layers.
type DataInfo struct {
	PluginName string `json:"plugin_name"`
	DataSize   int64  `json:"data_size"`
	ItemCount  int    `json:"item_count"`
}

// ClearOutcome is the result of a bulk data wipe with recovery.
type ClearOutcome struct {
	// Success reports whether a working plugin is active after the wipe.
	Success bool `json:"success"`
	// PluginChanged reports whether recovery landed on a different plugin.
	PluginChanged bool `json:"plugin_changed"`
	// NewActivePlugin is the plugin active after recovery, or "".
	NewActivePlugin string `json:"new_active_plugin"`
	// FailedPlugins lists plugins that failed during the wipe or recovery.
	FailedPlugins []string `json:"failed_plugins"`
	// Errors maps failed plugins to their failure descriptions.
	Errors map[string]string `json:"errors"`
	// UpdatedDataInfo is the per-plugin data footprint after the wipe.
	UpdatedDataInfo []DataInfo `json:"updated_data_info"`
}

// Options is an opaque key-value configuration map passed through to a
// plugin. The manager never interprets individual fields.
type Options map[string]any
