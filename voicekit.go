// Package voicekit assembles the transcription plugin toolkit: the
// registry, the lifecycle manager, the event bus, and the persisted
// settings bridge. Applications register backends, run Startup once, and
// decide themselves when a changed selection is persisted.
package voicekit

import (
	"context"

	"github.com/skillsenselab/voicekit/events"
	"github.com/skillsenselab/voicekit/logger"
	"github.com/skillsenselab/voicekit/plugin"
	"github.com/skillsenselab/voicekit/settings"
)

// Config configures a Kit.
type Config struct {
	// SettingsPath is the settings file location. Empty uses the per-user
	// default.
	SettingsPath string
	// DefaultPlugin is the recovery primary when no selection is persisted.
	DefaultPlugin string
	// EnvFiles are candidate .env files loaded before anything else reads
	// the environment.
	EnvFiles []string
}

// Kit wires the toolkit together.
type Kit struct {
	Settings *settings.Bridge
	Registry *plugin.Registry
	Manager  *plugin.Manager
	Bus      *events.Bus

	log *logger.Logger
}

// New creates a Kit, loading env files and the persisted settings.
func New(cfg Config) (*Kit, error) {
	if err := settings.LoadEnv(cfg.EnvFiles...); err != nil {
		return nil, err
	}

	path := cfg.SettingsPath
	if path == "" {
		path = settings.DefaultPath()
	}
	bridge := settings.NewBridge(path)
	if err := bridge.Load(); err != nil {
		return nil, err
	}

	bus := events.NewBus()
	registry := plugin.NewRegistry()
	manager := plugin.NewManager(registry,
		plugin.WithEventBus(bus),
		plugin.WithDefaultPlugin(cfg.DefaultPlugin),
	)

	return &Kit{
		Settings: bridge,
		Registry: registry,
		Manager:  manager,
		Bus:      bus,
		log:      logger.Get("voicekit"),
	}, nil
}

// Register adds a backend, wrapped with lifecycle logging.
func (k *Kit) Register(p plugin.Plugin) error {
	return k.Registry.Register(plugin.WithLogging(p))
}

// Startup activates the persisted selection with fallback. The persisted
// selection seeds the primary candidate and its stored options; nothing is
// written back here.
func (k *Kit) Startup(ctx context.Context, hooks *plugin.Hooks) plugin.Outcome {
	primary := k.Settings.ActivePlugin()
	if primary == "" {
		primary = k.Manager.ActiveName()
	}

	var opts plugin.Options
	if primary != "" {
		opts = k.Settings.OptionsFor(primary)
	}

	outcome := k.Manager.ActivateWithFallback(ctx, primary, opts, hooks)
	if outcome.Success && outcome.ActivePlugin != primary {
		k.log.Info("startup landed on a fallback", map[string]interface{}{
			"persisted": primary,
			"active":    outcome.ActivePlugin,
		})
	}
	return outcome
}

// Persist writes the outcome's active plugin as the new persisted
// selection. It is the explicit caller decision the settings contract
// requires; failed outcomes never overwrite the stored selection.
func (k *Kit) Persist(outcome plugin.Outcome) error {
	if !outcome.Success {
		return nil
	}
	k.Settings.SetActivePlugin(outcome.ActivePlugin)
	return k.Settings.Save()
}

// Close releases the kit's resources.
func (k *Kit) Close() {
	k.Bus.Close()
}
