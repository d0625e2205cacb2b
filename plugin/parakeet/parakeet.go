// Package parakeet implements the transcription plugin backed by the
// native parakeet CLI. The binary loads an on-disk model per invocation and
// emits one JSON document on stdout.
package parakeet

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/skillsenselab/voicekit/errors"
	"github.com/skillsenselab/voicekit/logger"
	"github.com/skillsenselab/voicekit/modelstore"
	"github.com/skillsenselab/voicekit/plugin"
	"github.com/skillsenselab/voicekit/process"
	"github.com/skillsenselab/voicekit/validation"
)

const (
	// PluginName is the registered name for the parakeet plugin.
	PluginName = "parakeet"

	defaultModel   = "parakeet-tdt-0.6b-v2"
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the parakeet plugin.
type Config struct {
	// BinaryPath is the parakeet CLI executable.
	BinaryPath string `json:"binary_path"`
	// ModelDir is the directory holding model artifacts.
	ModelDir string `json:"model_dir"`
	// Model is the model artifact name.
	Model string `json:"model"`
	// Timeout bounds one CLI run.
	Timeout time.Duration `json:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Parakeet is the native CLI plugin.
type Parakeet struct {
	cfg   Config
	store *modelstore.Store
	state plugin.StateTracker
	log   *logger.Logger
}

// New creates a parakeet plugin. The model directory is created if missing.
func New(cfg Config) (*Parakeet, error) {
	cfg.ApplyDefaults()
	if cfg.BinaryPath == "" {
		return nil, errors.MissingField("binary_path")
	}
	if cfg.ModelDir == "" {
		return nil, errors.MissingField("model_dir")
	}
	store, err := modelstore.New(cfg.ModelDir)
	if err != nil {
		return nil, err
	}
	return &Parakeet{
		cfg:   cfg,
		store: store,
		log:   logger.Get("plugin").WithPlugin(PluginName),
	}, nil
}

// Factory returns a plugin.Factory creating parakeet plugins from a generic
// config map.
func Factory() plugin.Factory {
	return func(cfg map[string]any) (plugin.Plugin, error) {
		pc := Config{}
		if v, ok := cfg["binary_path"].(string); ok {
			pc.BinaryPath = v
		}
		if v, ok := cfg["model_dir"].(string); ok {
			pc.ModelDir = v
		}
		if v, ok := cfg["model"].(string); ok {
			pc.Model = v
		}
		return New(pc)
	}
}

// Name returns the plugin name.
func (p *Parakeet) Name() string { return PluginName }

// Descriptor returns static plugin metadata.
func (p *Parakeet) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        PluginName,
		DisplayName: "Parakeet (native)",
		Description: "Native parakeet CLI. Fast on-device English transcription.",
	}
}

// FallbackChain prefers the other fully offline backend.
func (p *Parakeet) FallbackChain() []string {
	return []string{"vosk"}
}

// modelPath returns the absolute path of the configured model artifact.
func (p *Parakeet) modelPath() string {
	return filepath.Join(p.store.Root(), p.cfg.Model)
}

// IsAvailable reports whether the CLI binary is present.
func (p *Parakeet) IsAvailable(ctx context.Context) bool {
	if filepath.IsAbs(p.cfg.BinaryPath) || filepath.Base(p.cfg.BinaryPath) != p.cfg.BinaryPath {
		info, err := os.Stat(p.cfg.BinaryPath)
		return err == nil && !info.IsDir()
	}
	_, err := exec.LookPath(p.cfg.BinaryPath)
	return err == nil
}

// Activate verifies the binary and the model artifact. A missing model
// fails fast; nothing is downloaded here.
func (p *Parakeet) Activate(ctx context.Context, hooks *plugin.Hooks) error {
	p.state.SetLoading(true)

	if !p.IsAvailable(ctx) {
		err := errors.ActivationFailed(PluginName, fmt.Sprintf("parakeet binary %s not found", p.cfg.BinaryPath))
		p.state.SetError(err.Message)
		return err
	}
	if _, err := os.Stat(p.modelPath()); err != nil {
		appErr := errors.ModelMissing(PluginName, p.modelPath())
		p.state.SetError(appErr.Message)
		hooks.Error("Parakeet model " + p.cfg.Model + " is not installed.")
		return appErr
	}

	hooks.Progress("Verifying parakeet model "+p.cfg.Model, 50)
	result, err := process.Run(ctx, process.Command{
		Binary: p.cfg.BinaryPath,
		Args:   []string{"verify", "--model", p.modelPath()},
	})
	if err != nil {
		reason := err.Error()
		if result != nil && len(result.Stderr) > 0 {
			reason = string(result.Stderr)
		}
		appErr := errors.ActivationFailed(PluginName, reason).WithCause(err)
		p.state.SetError(appErr.Message)
		return appErr
	}

	p.state.SetActive(true)
	hooks.Success("Parakeet backend ready.")
	p.log.Info("activated", logger.Fields(logger.FieldModel, p.cfg.Model))
	return nil
}

// Deactivate releases nothing: the CLI only runs per job.
func (p *Parakeet) Deactivate(ctx context.Context) error {
	p.state.SetActive(false)
	return nil
}

// UpdateOptions validates and applies configuration.
func (p *Parakeet) UpdateOptions(ctx context.Context, opts plugin.Options, hooks *plugin.Hooks) error {
	next := p.cfg
	if v, ok := opts["model"].(string); ok {
		next.Model = v
	}
	if v, ok := opts["binary_path"].(string); ok {
		next.BinaryPath = v
	}

	check := validation.New().
		Required("binary_path", next.BinaryPath).
		Required("model", next.Model)
	if err := check.Validate(); err != nil {
		return err
	}

	p.cfg = next
	return nil
}

// State returns a snapshot of the plugin's lifecycle state.
func (p *Parakeet) State() plugin.State { return p.state.Snapshot() }

// ListData returns the installed model artifacts.
func (p *Parakeet) ListData(ctx context.Context) ([]plugin.DataItem, error) {
	items, err := p.store.List(ctx)
	if err != nil {
		return nil, errors.DataError(PluginName, err)
	}
	out := make([]plugin.DataItem, len(items))
	for i, it := range items {
		out[i] = plugin.DataItem{ID: it.ID, Name: it.Name, SizeBytes: it.SizeBytes, Path: it.Path}
	}
	return out, nil
}

// DataSize returns the total size of installed models in bytes.
func (p *Parakeet) DataSize(ctx context.Context) (int64, error) {
	size, err := p.store.Size(ctx)
	if err != nil {
		return 0, errors.DataError(PluginName, err)
	}
	return size, nil
}

// DeleteDataItem removes a single model artifact.
func (p *Parakeet) DeleteDataItem(ctx context.Context, id string) error {
	if err := p.store.Delete(ctx, id); err != nil {
		return errors.DataError(PluginName, err)
	}
	return nil
}

// DeleteAllData removes every installed model.
func (p *Parakeet) DeleteAllData(ctx context.Context) error {
	if err := p.store.DeleteAll(ctx); err != nil {
		return errors.DataError(PluginName, err)
	}
	return nil
}

// Transcribe runs the CLI on one audio file and decodes its JSON output.
func (p *Parakeet) Transcribe(ctx context.Context, req plugin.TranscribeRequest) (*plugin.TranscribeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	result, err := process.Run(ctx, process.Command{
		Binary: p.cfg.BinaryPath,
		Args: []string{
			"transcribe",
			"--model", p.modelPath(),
			"--audio", req.AudioPath,
			"--output", "json",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("parakeet cli: %w", err)
	}

	var out cliOutput
	if err := result.DecodeJSON(&out); err != nil {
		return nil, fmt.Errorf("decode parakeet output: %w", err)
	}

	resp := &plugin.TranscribeResponse{Text: out.Text, Duration: out.Duration}
	for _, seg := range out.Segments {
		resp.Segments = append(resp.Segments, plugin.TranscribeSegment{
			Start: seg.Start, End: seg.End, Text: seg.Text,
		})
	}
	return resp, nil
}

// cliOutput is the CLI's JSON result document.
type cliOutput struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}
