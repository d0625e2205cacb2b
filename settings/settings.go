package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"

	"github.com/skillsenselab/voicekit/logger"
)

const (
	keyActivePlugin  = "active_plugin"
	keyPluginOptions = "plugin_options"
)

// Bridge owns the persisted plugin selection and option maps. All reads and
// writes go through it; nothing else touches the settings file.
type Bridge struct {
	mu   sync.RWMutex
	v    *viper.Viper
	path string
	log  *logger.Logger
}

// NewBridge creates a bridge for the settings file at path. The file does
// not need to exist yet.
func NewBridge(path string) *Bridge {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault(keyActivePlugin, "")
	v.SetDefault(keyPluginOptions, map[string]any{})

	return &Bridge{
		v:    v,
		path: path,
		log:  logger.Get("settings"),
	}
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "voicekit", "settings.yml")
}

// Load reads the settings file. A missing file is not an error; defaults
// apply until the first Save.
func (b *Bridge) Load() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			b.log.Debug("settings file absent, using defaults", map[string]interface{}{"path": b.path})
			return nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("settings: read %s: %w", b.path, err)
	}
	return nil
}

// Save writes the current settings to disk. Called only on an explicit
// caller decision to persist a changed selection.
func (b *Bridge) Save() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(b.path), 0o750); err != nil {
		return fmt.Errorf("settings: create directory: %w", err)
	}
	if err := b.v.WriteConfigAs(b.path); err != nil {
		return fmt.Errorf("settings: write %s: %w", b.path, err)
	}
	b.log.Info("settings saved", map[string]interface{}{"path": b.path})
	return nil
}

// ActivePlugin returns the persisted active plugin name, or "".
func (b *Bridge) ActivePlugin() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.v.GetString(keyActivePlugin)
}

// SetActivePlugin updates the in-memory selection. Save persists it.
func (b *Bridge) SetActivePlugin(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.v.Set(keyActivePlugin, name)
}

// OptionsFor returns a copy of the stored option map for a plugin.
func (b *Bridge) OptionsFor(name string) map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	raw := b.v.GetStringMap(keyPluginOptions + "." + name)
	opts := make(map[string]any, len(raw))
	for k, v := range raw {
		opts[k] = v
	}
	return opts
}

// SetOptionsFor replaces the stored option map for a plugin.
func (b *Bridge) SetOptionsFor(name string, opts map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.v.Set(keyPluginOptions+"."+name, opts)
}

// SetOption sets a single option key for a plugin.
func (b *Bridge) SetOption(name, key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.v.Set(keyPluginOptions+"."+name+"."+key, value)
}
