package whisper

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/skillsenselab/voicekit/logger"
	"github.com/skillsenselab/voicekit/plugin"
)

// modelBaseURL hosts the ggml model artifacts.
var modelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// DownloadModel fetches the configured model into the store, reporting
// progress through hooks and the plugin state. It is an explicit user
// action; activation never triggers it.
func (w *Whisper) DownloadModel(ctx context.Context, hooks *plugin.Hooks) error {
	model := w.cfg.Model
	id := modelID(model)
	if w.store.Exists(id) {
		hooks.Success("Whisper model " + model + " is already downloaded.")
		return nil
	}

	url := fmt.Sprintf("%s/%s", modelBaseURL, id)
	w.state.SetDownload("downloading", 0)
	defer w.state.ClearDownload()
	hooks.Progress("Downloading whisper model "+model, 0)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		w.state.SetError("model download failed: " + err.Error())
		return fmt.Errorf("download model %s: %w", model, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		w.state.SetError(fmt.Sprintf("model download failed: status %d", resp.StatusCode))
		return fmt.Errorf("download model %s: status %d", model, resp.StatusCode)
	}

	reader := &progressReader{
		r:     resp.Body,
		total: resp.ContentLength,
		report: func(percent int) {
			w.state.SetDownload("downloading", percent)
			hooks.Progress("Downloading whisper model "+model, percent)
		},
	}
	if err := w.store.Put(ctx, id, reader); err != nil {
		w.state.SetError("model download failed: " + err.Error())
		return err
	}

	hooks.Progress("Downloading whisper model "+model, 100)
	hooks.Success("Whisper model " + model + " downloaded.")
	w.log.Info("model downloaded", logger.Fields(logger.FieldModel, model))
	return nil
}

// progressReader reports whole-percent progress as it is consumed.
type progressReader struct {
	r       io.Reader
	total   int64
	read    int64
	lastPct int
	report  func(percent int)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)
	if p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct > p.lastPct {
			p.lastPct = pct
			p.report(pct)
		}
	}
	return n, err
}
