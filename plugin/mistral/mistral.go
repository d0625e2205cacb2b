// Package mistral implements the transcription plugin backed by the
// Mistral cloud transcription API. No audio or models are stored locally;
// the only local footprint is the sealed API key.
package mistral

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
	"github.com/skillsenselab/voicekit/plugin"
	"github.com/skillsenselab/voicekit/settings"
	"github.com/skillsenselab/voicekit/validation"
)

const (
	// PluginName is the registered name for the mistral plugin.
	PluginName = "mistral"

	defaultBaseURL = "https://api.mistral.ai/v1"
	defaultModel   = "voxtral-mini-latest"
	defaultTimeout = 60 * time.Second
)

// Config holds configuration for the mistral plugin.
type Config struct {
	// BaseURL is the API base URL.
	BaseURL string `json:"base_url"`
	// Model is the transcription model name.
	Model string `json:"model"`
	// Language is the expected language code, or "" for auto.
	Language string `json:"language,omitempty"`
	// Timeout bounds one API request.
	Timeout time.Duration `json:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Mistral is the cloud API plugin. The API key is held sealed and only
// unsealed per request.
type Mistral struct {
	cfg       Config
	client    *http.Client
	sealer    *settings.Sealer
	sealedKey string
	state     plugin.StateTracker
	log       *logger.Logger
}

// New creates a mistral plugin. sealer protects the API key at rest.
func New(cfg Config, sealer *settings.Sealer) (*Mistral, error) {
	cfg.ApplyDefaults()
	if sealer == nil {
		return nil, errors.MissingField("sealer")
	}
	return &Mistral{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		sealer: sealer,
		log:    logger.Get("plugin").WithPlugin(PluginName),
	}, nil
}

// Name returns the plugin name.
func (m *Mistral) Name() string { return PluginName }

// Descriptor returns static plugin metadata.
func (m *Mistral) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        PluginName,
		DisplayName: "Mistral (cloud)",
		Description: "Cloud transcription via the Mistral API. Requires an API key.",
	}
}

// FallbackChain prefers local backends when the cloud is unreachable.
func (m *Mistral) FallbackChain() []string {
	return []string{"whisper", "vosk"}
}

// apiKey unseals the stored API key.
func (m *Mistral) apiKey() (string, error) {
	if m.sealedKey == "" {
		return "", errors.MissingField("api_key")
	}
	return m.sealer.Open(m.sealedKey)
}

// IsAvailable reports whether an API key is configured. It deliberately
// avoids network traffic; the credential check happens on activation.
func (m *Mistral) IsAvailable(ctx context.Context) bool {
	_, err := m.apiKey()
	return err == nil
}

// Activate verifies the credential against the API. An invalid or missing
// key fails fast.
func (m *Mistral) Activate(ctx context.Context, hooks *plugin.Hooks) error {
	m.state.SetLoading(true)

	key, err := m.apiKey()
	if err != nil {
		appErr := errors.ActivationFailed(PluginName, "no API key configured").WithCause(err)
		m.state.SetError(appErr.Message)
		hooks.Error("Mistral API key is not configured.")
		return appErr
	}

	hooks.Progress("Checking Mistral credentials", 50)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.cfg.BaseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := m.client.Do(req)
	if err != nil {
		appErr := errors.ActivationFailed(PluginName, err.Error()).WithCause(err)
		m.state.SetError(appErr.Message)
		return appErr
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		appErr := errors.ActivationFailed(PluginName, fmt.Sprintf("credential check failed: status %d", resp.StatusCode))
		m.state.SetError(appErr.Message)
		hooks.Error("Mistral rejected the configured API key.")
		return appErr
	}

	m.state.SetActive(true)
	hooks.Success("Mistral backend ready.")
	m.log.Info("activated", logger.Fields(logger.FieldModel, m.cfg.Model))
	return nil
}

// Deactivate drops the session. Nothing remote needs teardown.
func (m *Mistral) Deactivate(ctx context.Context) error {
	m.state.SetActive(false)
	return nil
}

// UpdateOptions validates and applies configuration. An "api_key" option is
// sealed immediately and never retained in plaintext.
func (m *Mistral) UpdateOptions(ctx context.Context, opts plugin.Options, hooks *plugin.Hooks) error {
	next := m.cfg
	if v, ok := opts["model"].(string); ok {
		next.Model = v
	}
	if v, ok := opts["language"].(string); ok {
		next.Language = v
	}
	if v, ok := opts["base_url"].(string); ok {
		next.BaseURL = v
	}

	check := validation.New().
		Required("base_url", next.BaseURL).
		Required("model", next.Model)
	if err := check.Validate(); err != nil {
		return err
	}

	if v, ok := opts["api_key"].(string); ok && v != "" {
		sealed, err := m.sealer.Seal(v)
		if err != nil {
			return errors.InvalidOptions(PluginName, "could not seal api_key").WithCause(err)
		}
		m.sealedKey = sealed
	}

	m.cfg = next
	return nil
}

// SetSealedKey installs an already sealed API key, as loaded from settings.
func (m *Mistral) SetSealedKey(sealed string) { m.sealedKey = sealed }

// SealedKey returns the sealed API key for persistence.
func (m *Mistral) SealedKey() string { return m.sealedKey }

// State returns a snapshot of the plugin's lifecycle state.
func (m *Mistral) State() plugin.State { return m.state.Snapshot() }

// ListData reports no artifacts: audio is never stored and models are
// remote.
func (m *Mistral) ListData(ctx context.Context) ([]plugin.DataItem, error) {
	return []plugin.DataItem{}, nil
}

// DataSize reports zero: nothing is stored locally.
func (m *Mistral) DataSize(ctx context.Context) (int64, error) { return 0, nil }

// DeleteDataItem is a no-op: there are no local artifacts.
func (m *Mistral) DeleteDataItem(ctx context.Context, id string) error { return nil }

// DeleteAllData discards the sealed API key. Clearing plugin data must
// leave no credential behind.
func (m *Mistral) DeleteAllData(ctx context.Context) error {
	m.sealedKey = ""
	return nil
}

// Transcribe uploads one audio file to the transcription endpoint.
func (m *Mistral) Transcribe(ctx context.Context, req plugin.TranscribeRequest) (*plugin.TranscribeResponse, error) {
	key, err := m.apiKey()
	if err != nil {
		return nil, err
	}

	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	model := m.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}
	_ = writer.WriteField("model", model)
	if lang := firstNonEmpty(req.Language, m.cfg.Language); lang != "" {
		_ = writer.WriteField("language", lang)
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+key)

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mistral request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mistral error (status %d): %s", resp.StatusCode, string(body))
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode mistral response: %w", err)
	}

	out := &plugin.TranscribeResponse{Text: result.Text, Language: result.Language}
	for _, seg := range result.Segments {
		out.Segments = append(out.Segments, plugin.TranscribeSegment{
			Start: seg.Start, End: seg.End, Text: seg.Text,
		})
	}
	if n := len(out.Segments); n > 0 {
		out.Duration = out.Segments[n-1].End
	}
	return out, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// apiResponse is the transcription endpoint's JSON body.
type apiResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}
