// Package whisperlive implements the transcription plugin backed by a
// remote WhisperLive streaming server. The server owns the models; this
// plugin only manages the connection lifecycle, so it reports an empty
// local data footprint.
package whisperlive

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/skillsenselab/voicekit/errors"
	"github.com/skillsenselab/voicekit/logger"
	"github.com/skillsenselab/voicekit/plugin"
	"github.com/skillsenselab/voicekit/validation"
)

const (
	// PluginName is the registered name for the whisperlive plugin.
	PluginName = "whisperlive"

	defaultHost    = "localhost"
	defaultPort    = 9090
	defaultModel   = "small"
	defaultTimeout = 10 * time.Second
)

// Config holds configuration for the whisperlive plugin.
type Config struct {
	// Host is the WhisperLive server host.
	Host string `json:"host"`
	// Port is the WhisperLive server port.
	Port int `json:"port"`
	// Model is the model name the server should serve.
	Model string `json:"model"`
	// Language is the default transcription language, or "" for auto.
	Language string `json:"language,omitempty"`
	// Timeout bounds one server probe.
	Timeout time.Duration `json:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// WhisperLive is the streaming-server plugin.
type WhisperLive struct {
	cfg    Config
	client *http.Client
	state  plugin.StateTracker
	log    *logger.Logger
}

// New creates a whisperlive plugin.
func New(cfg Config) *WhisperLive {
	cfg.ApplyDefaults()
	return &WhisperLive{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logger.Get("plugin").WithPlugin(PluginName),
	}
}

// Factory returns a plugin.Factory creating whisperlive plugins from a
// generic config map.
func Factory() plugin.Factory {
	return func(cfg map[string]any) (plugin.Plugin, error) {
		wc := Config{}
		if v, ok := cfg["host"].(string); ok {
			wc.Host = v
		}
		if v, ok := cfg["port"].(int); ok {
			wc.Port = v
		}
		if v, ok := cfg["model"].(string); ok {
			wc.Model = v
		}
		if v, ok := cfg["language"].(string); ok {
			wc.Language = v
		}
		return New(wc), nil
	}
}

// Name returns the plugin name.
func (p *WhisperLive) Name() string { return PluginName }

// Descriptor returns static plugin metadata.
func (p *WhisperLive) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        PluginName,
		DisplayName: "WhisperLive (server)",
		Description: "Streaming transcription against a WhisperLive server.",
	}
}

// FallbackChain prefers the local whisper sidecar when the server is gone.
func (p *WhisperLive) FallbackChain() []string {
	return []string{"whisper"}
}

// baseURL builds the server's HTTP base URL.
func (p *WhisperLive) baseURL() string {
	return fmt.Sprintf("http://%s:%d", p.cfg.Host, p.cfg.Port)
}

// IsAvailable reports whether the server answers its health endpoint.
func (p *WhisperLive) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL()+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Activate verifies the server is reachable and ready. There is nothing to
// load locally; an unreachable server fails fast.
func (p *WhisperLive) Activate(ctx context.Context, hooks *plugin.Hooks) error {
	p.state.SetLoading(true)

	if !p.IsAvailable(ctx) {
		err := errors.ActivationFailed(PluginName, fmt.Sprintf("server %s is not reachable", p.baseURL()))
		p.state.SetError(err.Message)
		hooks.Error("WhisperLive server is not reachable.")
		return err
	}

	p.state.SetActive(true)
	hooks.Success("WhisperLive backend ready.")
	p.log.Info("activated", logger.Fields("server", p.baseURL(), logger.FieldModel, p.cfg.Model))
	return nil
}

// Deactivate drops the server association. No remote call is needed; the
// server is shared and keeps running.
func (p *WhisperLive) Deactivate(ctx context.Context) error {
	p.state.SetActive(false)
	return nil
}

// UpdateOptions validates and applies configuration.
func (p *WhisperLive) UpdateOptions(ctx context.Context, opts plugin.Options, hooks *plugin.Hooks) error {
	next := p.cfg
	if v, ok := opts["host"].(string); ok {
		next.Host = v
	}
	if v, ok := opts["port"].(int); ok {
		next.Port = v
	}
	if v, ok := opts["model"].(string); ok {
		next.Model = v
	}
	if v, ok := opts["language"].(string); ok {
		next.Language = v
	}

	v := validation.New().
		Required("host", next.Host).
		Port("port", next.Port)
	if err := v.Validate(); err != nil {
		return err
	}

	p.cfg = next
	return nil
}

// State returns a snapshot of the plugin's lifecycle state.
func (p *WhisperLive) State() plugin.State { return p.state.Snapshot() }

// ListData reports no artifacts: models live on the server.
func (p *WhisperLive) ListData(ctx context.Context) ([]plugin.DataItem, error) {
	return []plugin.DataItem{}, nil
}

// DataSize reports zero: nothing is stored locally.
func (p *WhisperLive) DataSize(ctx context.Context) (int64, error) { return 0, nil }

// DeleteDataItem is a no-op: there are no local artifacts.
func (p *WhisperLive) DeleteDataItem(ctx context.Context, id string) error { return nil }

// DeleteAllData is a no-op: there are no local artifacts.
func (p *WhisperLive) DeleteAllData(ctx context.Context) error { return nil }
