package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()
	return NewBridge(filepath.Join(t.TempDir(), "settings.yml"))
}

func TestLoadMissingFile(t *testing.T) {
	b := newTestBridge(t)
	if err := b.Load(); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if b.ActivePlugin() != "" {
		t.Errorf("expected empty default selection, got %q", b.ActivePlugin())
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yml")

	b := NewBridge(path)
	b.SetActivePlugin("whisper")
	b.SetOptionsFor("whisper", map[string]any{"model": "base", "beam": 5})
	if err := b.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := NewBridge(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reloaded.ActivePlugin() != "whisper" {
		t.Errorf("expected 'whisper', got %q", reloaded.ActivePlugin())
	}
	opts := reloaded.OptionsFor("whisper")
	if opts["model"] != "base" {
		t.Errorf("expected model 'base', got %v", opts["model"])
	}
}

func TestSetActivePluginIsNotImplicitlyPersisted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yml")

	b := NewBridge(path)
	b.SetActivePlugin("vosk")

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("settings file should not exist before an explicit Save")
	}
}

func TestOptionsForUnknownPlugin(t *testing.T) {
	b := newTestBridge(t)
	opts := b.OptionsFor("nonexistent")
	if len(opts) != 0 {
		t.Errorf("expected empty options, got %v", opts)
	}
}

func TestSetOption(t *testing.T) {
	b := newTestBridge(t)
	b.SetOption("mistral", "api_key", "sealed-value")
	opts := b.OptionsFor("mistral")
	if opts["api_key"] != "sealed-value" {
		t.Errorf("expected option set, got %v", opts)
	}
}

func TestSealerRoundTrip(t *testing.T) {
	s, err := NewSealer("unit-test-key")
	if err != nil {
		t.Fatalf("NewSealer failed: %v", err)
	}

	sealed, err := s.Seal("sk-secret-token")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if sealed == "sk-secret-token" {
		t.Error("sealed value must differ from plaintext")
	}

	opened, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if opened != "sk-secret-token" {
		t.Errorf("round trip mismatch: %q", opened)
	}
}

func TestSealerRejectsWrongKey(t *testing.T) {
	s1, _ := NewSealer("key-one")
	s2, _ := NewSealer("key-two")

	sealed, err := s1.Seal("credential")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := s2.Open(sealed); err == nil {
		t.Error("expected unseal failure with wrong key")
	}
}

func TestSealerRejectsGarbage(t *testing.T) {
	s, _ := NewSealer("key")
	if _, err := s.Open("not-base64!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := s.Open("YWJj"); err == nil {
		t.Error("expected error for truncated ciphertext")
	}
}
