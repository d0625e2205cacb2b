// Package whisper implements the transcription plugin backed by a local
// faster-whisper HTTP sidecar. The sidecar owns inference; this plugin owns
// the lifecycle, the model artifacts on disk, and the wire exchange.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/skillsenselab/voicekit/errors"
	"github.com/skillsenselab/voicekit/logger"
	"github.com/skillsenselab/voicekit/modelstore"
	"github.com/skillsenselab/voicekit/plugin"
	"github.com/skillsenselab/voicekit/validation"
)

const (
	// PluginName is the registered name for the whisper plugin.
	PluginName = "whisper"

	defaultURL     = "http://localhost:8387"
	defaultModel   = "base"
	defaultTimeout = 120 * time.Second
)

// knownModels are the model names the sidecar accepts.
var knownModels = []string{"tiny", "tiny.en", "base", "base.en", "small", "small.en", "medium", "large-v3", "large-v3-turbo"}

// Config holds configuration for the whisper plugin.
type Config struct {
	// URL is the sidecar base URL.
	URL string `json:"url"`
	// Model is the whisper model name.
	Model string `json:"model"`
	// Language is the default transcription language, or "" for auto.
	Language string `json:"language,omitempty"`
	// ModelDir is the directory holding downloaded model artifacts.
	ModelDir string `json:"model_dir"`
	// Timeout bounds one sidecar request.
	Timeout time.Duration `json:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Whisper is the faster-whisper sidecar plugin.
type Whisper struct {
	cfg    Config
	client *http.Client
	store  *modelstore.Store
	state  plugin.StateTracker
	log    *logger.Logger
}

// New creates a whisper plugin. The model directory is created if missing.
func New(cfg Config) (*Whisper, error) {
	cfg.ApplyDefaults()
	if cfg.ModelDir == "" {
		return nil, errors.MissingField("model_dir")
	}
	store, err := modelstore.New(cfg.ModelDir)
	if err != nil {
		return nil, err
	}
	return &Whisper{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		store:  store,
		log:    logger.Get("plugin").WithPlugin(PluginName),
	}, nil
}

// Factory returns a plugin.Factory creating whisper plugins from a generic
// config map.
func Factory() plugin.Factory {
	return func(cfg map[string]any) (plugin.Plugin, error) {
		wc := Config{}
		if v, ok := cfg["url"].(string); ok {
			wc.URL = v
		}
		if v, ok := cfg["model"].(string); ok {
			wc.Model = v
		}
		if v, ok := cfg["language"].(string); ok {
			wc.Language = v
		}
		if v, ok := cfg["model_dir"].(string); ok {
			wc.ModelDir = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			wc.Timeout = v
		}
		return New(wc)
	}
}

// Name returns the plugin name.
func (w *Whisper) Name() string { return PluginName }

// Descriptor returns static plugin metadata.
func (w *Whisper) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        PluginName,
		DisplayName: "Whisper (local)",
		Description: "Local faster-whisper sidecar. Requires a downloaded model.",
	}
}

// FallbackChain prefers the other local backends before anything else.
func (w *Whisper) FallbackChain() []string {
	return []string{"parakeet", "vosk"}
}

// IsAvailable reports whether the sidecar answers its health endpoint.
func (w *Whisper) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Activate verifies the model artifact exists and instructs the sidecar to
// load it. A missing model fails fast; it is never downloaded here.
func (w *Whisper) Activate(ctx context.Context, hooks *plugin.Hooks) error {
	w.state.SetLoading(true)

	if !w.store.Exists(modelID(w.cfg.Model)) {
		err := errors.ModelMissing(PluginName, w.store.Root()+"/"+modelID(w.cfg.Model))
		w.state.SetError(err.Message)
		hooks.Error("Whisper model " + w.cfg.Model + " is not downloaded.")
		return err
	}

	hooks.Progress("Loading whisper model "+w.cfg.Model, 50)
	if err := w.postJSON(ctx, "/load_model", map[string]string{"model": w.cfg.Model}); err != nil {
		appErr := errors.ActivationFailed(PluginName, err.Error()).WithCause(err)
		w.state.SetError(appErr.Message)
		return appErr
	}

	w.state.SetActive(true)
	hooks.Success("Whisper backend ready.")
	w.log.Info("activated", logger.Fields(logger.FieldModel, w.cfg.Model))
	return nil
}

// Deactivate asks the sidecar to unload the model. Calling it on an
// inactive plugin is a no-op.
func (w *Whisper) Deactivate(ctx context.Context) error {
	if !w.state.Snapshot().Active {
		return nil
	}
	if err := w.postJSON(ctx, "/unload_model", nil); err != nil {
		// The sidecar may already be gone; local state still resets.
		w.log.Warn("unload request failed", logger.ErrorFields("unload_model", err))
	}
	w.state.SetActive(false)
	return nil
}

// UpdateOptions validates and applies configuration. Model and language
// changes take effect on the next activation.
func (w *Whisper) UpdateOptions(ctx context.Context, opts plugin.Options, hooks *plugin.Hooks) error {
	next := w.cfg
	if v, ok := opts["model"].(string); ok {
		next.Model = v
	}
	if v, ok := opts["language"].(string); ok {
		next.Language = v
	}
	if v, ok := opts["url"].(string); ok {
		next.URL = v
	}

	v := validation.New().
		Required("url", next.URL).
		OneOf("model", next.Model, knownModels...)
	if err := v.Validate(); err != nil {
		return err
	}

	w.cfg = next
	return nil
}

// State returns a snapshot of the plugin's lifecycle state.
func (w *Whisper) State() plugin.State { return w.state.Snapshot() }

// ListData returns the downloaded model artifacts.
func (w *Whisper) ListData(ctx context.Context) ([]plugin.DataItem, error) {
	items, err := w.store.List(ctx)
	if err != nil {
		return nil, errors.DataError(PluginName, err)
	}
	out := make([]plugin.DataItem, len(items))
	for i, it := range items {
		out[i] = plugin.DataItem{ID: it.ID, Name: it.Name, SizeBytes: it.SizeBytes, Path: it.Path}
	}
	return out, nil
}

// DataSize returns the total size of downloaded models in bytes.
func (w *Whisper) DataSize(ctx context.Context) (int64, error) {
	size, err := w.store.Size(ctx)
	if err != nil {
		return 0, errors.DataError(PluginName, err)
	}
	return size, nil
}

// DeleteDataItem removes a single model artifact.
func (w *Whisper) DeleteDataItem(ctx context.Context, id string) error {
	if err := w.store.Delete(ctx, id); err != nil {
		return errors.DataError(PluginName, err)
	}
	return nil
}

// DeleteAllData removes every downloaded model.
func (w *Whisper) DeleteAllData(ctx context.Context) error {
	if err := w.store.DeleteAll(ctx); err != nil {
		return errors.DataError(PluginName, err)
	}
	return nil
}

// Transcribe sends an audio file to the sidecar and returns the result.
func (w *Whisper) Transcribe(ctx context.Context, req plugin.TranscribeRequest) (*plugin.TranscribeResponse, error) {
	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	model := w.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	lang := w.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}
	_ = writer.WriteField("model", model)
	if lang != "" {
		_ = writer.WriteField("language", lang)
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL+"/transcribe", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("whisper error (status %d): %s", resp.StatusCode, string(body))
	}

	var result sidecarResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}
	return toResponse(&result), nil
}

// postJSON posts a small JSON body to the sidecar and checks for 200.
func (w *Whisper) postJSON(ctx context.Context, path string, body map[string]string) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sidecar %s (status %d): %s", path, resp.StatusCode, string(respBody))
	}
	return nil
}

// modelID maps a model name to its artifact ID in the store.
func modelID(model string) string {
	return "ggml-" + model + ".bin"
}

// --- sidecar wire types ---

type sidecarResponse struct {
	Text     string           `json:"text"`
	Segments []sidecarSegment `json:"segments"`
	Language string           `json:"language"`
}

type sidecarSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func toResponse(resp *sidecarResponse) *plugin.TranscribeResponse {
	segments := make([]plugin.TranscribeSegment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = plugin.TranscribeSegment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}
	var duration float64
	if len(resp.Segments) > 0 {
		duration = resp.Segments[len(resp.Segments)-1].End
	}
	return &plugin.TranscribeResponse{
		Text:     resp.Text,
		Segments: segments,
		Duration: duration,
		Language: resp.Language,
	}
}
