// Package vosk implements the transcription plugin backed by a local vosk
// recognizer subprocess. Each job runs the recognizer binary to completion;
// there is no resident server.
package vosk

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
	// PluginName is the registered name for the vosk plugin.
	PluginName = "vosk"

	defaultModel   = "vosk-model-small-en-us-0.15"
	defaultTimeout = 60 * time.Second
)

// Config holds configuration for the vosk plugin.
type Config struct {
	// BinaryPath is the recognizer executable.
	BinaryPath string `json:"binary_path"`
	// ModelDir is the directory holding unpacked vosk models.
	ModelDir string `json:"model_dir"`
	// Model is the model directory name under ModelDir.
	Model string `json:"model"`
	// SampleRate is the expected audio sample rate in Hz.
	SampleRate int `json:"sample_rate"`
	// Timeout bounds one recognizer run.
	Timeout time.Duration `json:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Vosk is the local recognizer plugin.
type Vosk struct {
	cfg   Config
	store *modelstore.Store
	state plugin.StateTracker
	log   *logger.Logger
}

// New creates a vosk plugin. The model directory is created if missing.
func New(cfg Config) (*Vosk, error) {
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
	return &Vosk{
		cfg:   cfg,
		store: store,
		log:   logger.Get("plugin").WithPlugin(PluginName),
	}, nil
}

// Factory returns a plugin.Factory creating vosk plugins from a generic
// config map.
func Factory() plugin.Factory {
	return func(cfg map[string]any) (plugin.Plugin, error) {
		vc := Config{}
		if v, ok := cfg["binary_path"].(string); ok {
			vc.BinaryPath = v
		}
		if v, ok := cfg["model_dir"].(string); ok {
			vc.ModelDir = v
		}
		if v, ok := cfg["model"].(string); ok {
			vc.Model = v
		}
		if v, ok := cfg["sample_rate"].(int); ok {
			vc.SampleRate = v
		}
		return New(vc)
	}
}

// Name returns the plugin name.
func (v *Vosk) Name() string { return PluginName }

// Descriptor returns static plugin metadata.
func (v *Vosk) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        PluginName,
		DisplayName: "Vosk (offline)",
		Description: "Offline recognizer subprocess. Small models, no network.",
	}
}

// IsAvailable reports whether the recognizer binary is present and
// executable.
func (v *Vosk) IsAvailable(ctx context.Context) bool {
	if filepath.IsAbs(v.cfg.BinaryPath) || filepath.Base(v.cfg.BinaryPath) != v.cfg.BinaryPath {
		info, err := os.Stat(v.cfg.BinaryPath)
		return err == nil && !info.IsDir()
	}
	_, err := exec.LookPath(v.cfg.BinaryPath)
	return err == nil
}

// Activate verifies the binary and the model directory, then runs the
// recognizer's self-check. A missing model fails fast.
func (v *Vosk) Activate(ctx context.Context, hooks *plugin.Hooks) error {
	v.state.SetLoading(true)

	if !v.IsAvailable(ctx) {
		err := errors.ActivationFailed(PluginName, fmt.Sprintf("recognizer binary %s not found", v.cfg.BinaryPath))
		v.state.SetError(err.Message)
		return err
	}

	modelPath := filepath.Join(v.store.Root(), v.cfg.Model)
	if _, err := os.Stat(modelPath); err != nil {
		appErr := errors.ModelMissing(PluginName, modelPath)
		v.state.SetError(appErr.Message)
		hooks.Error("Vosk model " + v.cfg.Model + " is not installed.")
		return appErr
	}

	hooks.Progress("Verifying vosk model "+v.cfg.Model, 50)
	result, err := process.Run(ctx, process.Command{
		Binary: v.cfg.BinaryPath,
		Args:   []string{"--check", "--model", modelPath},
	})
	if err != nil {
		reason := err.Error()
		if result != nil && len(result.Stderr) > 0 {
			reason = string(result.Stderr)
		}
		appErr := errors.ActivationFailed(PluginName, reason).WithCause(err)
		v.state.SetError(appErr.Message)
		return appErr
	}

	v.state.SetActive(true)
	hooks.Success("Vosk backend ready.")
	v.log.Info("activated", logger.Fields(logger.FieldModel, v.cfg.Model))
	return nil
}

// Deactivate releases nothing: the recognizer only runs per job. It is a
// no-op on an inactive plugin.
func (v *Vosk) Deactivate(ctx context.Context) error {
	v.state.SetActive(false)
	return nil
}

// UpdateOptions validates and applies configuration.
func (v *Vosk) UpdateOptions(ctx context.Context, opts plugin.Options, hooks *plugin.Hooks) error {
	next := v.cfg
	if val, ok := opts["model"].(string); ok {
		next.Model = val
	}
	if val, ok := opts["binary_path"].(string); ok {
		next.BinaryPath = val
	}
	if val, ok := opts["sample_rate"].(int); ok {
		next.SampleRate = val
	}

	check := validation.New().
		Required("binary_path", next.BinaryPath).
		Required("model", next.Model).
		Positive("sample_rate", next.SampleRate)
	if err := check.Validate(); err != nil {
		return err
	}

	v.cfg = next
	return nil
}

// State returns a snapshot of the plugin's lifecycle state.
func (v *Vosk) State() plugin.State { return v.state.Snapshot() }

// ListData returns the installed model files.
func (v *Vosk) ListData(ctx context.Context) ([]plugin.DataItem, error) {
	items, err := v.store.List(ctx)
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
func (v *Vosk) DataSize(ctx context.Context) (int64, error) {
	size, err := v.store.Size(ctx)
	if err != nil {
		return 0, errors.DataError(PluginName, err)
	}
	return size, nil
}

// DeleteDataItem removes a single model file.
func (v *Vosk) DeleteDataItem(ctx context.Context, id string) error {
	if err := v.store.Delete(ctx, id); err != nil {
		return errors.DataError(PluginName, err)
	}
	return nil
}

// DeleteAllData removes every installed model.
func (v *Vosk) DeleteAllData(ctx context.Context) error {
	if err := v.store.DeleteAll(ctx); err != nil {
		return errors.DataError(PluginName, err)
	}
	return nil
}

// Transcribe runs the recognizer on one audio file and decodes its JSON
// output.
func (v *Vosk) Transcribe(ctx context.Context, req plugin.TranscribeRequest) (*plugin.TranscribeResponse, error) {
	modelPath := filepath.Join(v.store.Root(), v.cfg.Model)
	ctx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	result, err := process.Run(ctx, process.Command{
		Binary: v.cfg.BinaryPath,
		Args: []string{
			"--model", modelPath,
			"--sample-rate", fmt.Sprint(v.cfg.SampleRate),
			"--audio", req.AudioPath,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vosk recognizer: %w", err)
	}

	var out voskOutput
	if err := result.DecodeJSON(&out); err != nil {
		return nil, fmt.Errorf("decode vosk output: %w", err)
	}

	resp := &plugin.TranscribeResponse{Text: out.Text}
	for _, w := range out.Result {
		resp.Segments = append(resp.Segments, plugin.TranscribeSegment{
			Start: w.Start, End: w.End, Text: w.Word,
		})
	}
	if n := len(resp.Segments); n > 0 {
		resp.Duration = resp.Segments[n-1].End
	}
	return resp, nil
}

// voskOutput is the recognizer's final-result JSON.
type voskOutput struct {
	Text   string     `json:"text"`
	Result []voskWord `json:"result"`
}

type voskWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}
