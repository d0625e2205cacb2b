package parakeet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/skillsenselab/voicekit/errors"
	"github.com/skillsenselab/voicekit/plugin"
)

func fakeCLI(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parakeet")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newParakeet(t *testing.T, script string) *Parakeet {
	t.Helper()
	modelDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(modelDir, defaultModel), []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := New(Config{
		BinaryPath: fakeCLI(t, script),
		ModelDir:   modelDir,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestActivateVerifiesModel(t *testing.T) {
	p := newParakeet(t, "exit 0")
	if err := p.Activate(context.Background(), nil); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if !p.State().Active {
		t.Error("State().Active = false after activation")
	}
}

func TestActivateFailsFastOnMissingModel(t *testing.T) {
	p, err := New(Config{
		BinaryPath: fakeCLI(t, "exit 0"),
		ModelDir:   t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}

	actErr := p.Activate(context.Background(), nil)
	if actErr == nil {
		t.Fatal("expected activation failure without a model")
	}
	if !errors.Is(actErr, errors.ErrCodeModelMissing) {
		t.Errorf("error = %v, want MODEL_MISSING", actErr)
	}
}

func TestActivateFailsWhenVerifyFails(t *testing.T) {
	p := newParakeet(t, "echo 'corrupt model' >&2; exit 2")

	err := p.Activate(context.Background(), nil)
	if err == nil {
		t.Fatal("expected activation failure")
	}
	if !errors.Is(err, errors.ErrCodeActivationFailed) {
		t.Errorf("error = %v, want ACTIVATION_FAILED", err)
	}
	if p.State().Active {
		t.Error("plugin active after failed verify")
	}
}

func TestFallbackChainPrefersVosk(t *testing.T) {
	p := newParakeet(t, "exit 0")
	chain := p.FallbackChain()
	if len(chain) != 1 || chain[0] != "vosk" {
		t.Errorf("FallbackChain() = %v, want [vosk]", chain)
	}
}

func TestTranscribeDecodesCLIOutput(t *testing.T) {
	p := newParakeet(t, `echo '{"text":"good morning","duration":2.1,"segments":[{"start":0.0,"end":2.1,"text":"good morning"}]}'`)

	resp, err := p.Transcribe(context.Background(), plugin.TranscribeRequest{AudioPath: "/tmp/a.wav"})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if resp.Text != "good morning" || resp.Duration != 2.1 {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Segments) != 1 {
		t.Errorf("Segments = %+v", resp.Segments)
	}
}

func TestUpdateOptionsRejectsEmptyModel(t *testing.T) {
	p := newParakeet(t, "exit 0")
	if err := p.UpdateOptions(context.Background(), plugin.Options{"model": ""}, nil); err == nil {
		t.Error("expected rejection of empty model")
	}
	if p.cfg.Model != defaultModel {
		t.Errorf("rejected options mutated config: %q", p.cfg.Model)
	}
}

func TestDeleteAllDataRemovesModel(t *testing.T) {
	p := newParakeet(t, "exit 0")
	ctx := context.Background()

	size, err := p.DataSize(ctx)
	if err != nil || size == 0 {
		t.Fatalf("DataSize = %d, %v", size, err)
	}
	if err := p.DeleteAllData(ctx); err != nil {
		t.Fatalf("DeleteAllData failed: %v", err)
	}
	items, _ := p.ListData(ctx)
	if len(items) != 0 {
		t.Errorf("items after wipe = %v", items)
	}
}
