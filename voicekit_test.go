package voicekit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/skillsenselab/voicekit/plugin"
)

type stubBackend struct {
	name      string
	available bool
	active    bool
	opts      plugin.Options
}

func (s *stubBackend) Name() string { return s.name }
func (s *stubBackend) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{Name: s.name}
}
func (s *stubBackend) IsAvailable(ctx context.Context) bool { return s.available }
func (s *stubBackend) Activate(ctx context.Context, hooks *plugin.Hooks) error {
	s.active = true
	return nil
}
func (s *stubBackend) Deactivate(ctx context.Context) error {
	s.active = false
	return nil
}
func (s *stubBackend) UpdateOptions(ctx context.Context, opts plugin.Options, hooks *plugin.Hooks) error {
	s.opts = opts
	return nil
}
func (s *stubBackend) State() plugin.State { return plugin.State{Active: s.active} }
func (s *stubBackend) ListData(ctx context.Context) ([]plugin.DataItem, error) {
	return nil, nil
}
func (s *stubBackend) DataSize(ctx context.Context) (int64, error)        { return 0, nil }
func (s *stubBackend) DeleteDataItem(ctx context.Context, id string) error { return nil }
func (s *stubBackend) DeleteAllData(ctx context.Context) error             { return nil }

func newKit(t *testing.T) (*Kit, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yml")
	kit, err := New(Config{SettingsPath: path, DefaultPlugin: "a"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(kit.Close)
	return kit, path
}

func TestStartupSeedsPrimaryFromSettings(t *testing.T) {
	kit, _ := newKit(t)
	a := &stubBackend{name: "a", available: true}
	b := &stubBackend{name: "b", available: true}
	for _, p := range []*stubBackend{a, b} {
		if err := kit.Register(p); err != nil {
			t.Fatal(err)
		}
	}
	kit.Settings.SetActivePlugin("b")
	kit.Settings.SetOptionsFor("b", map[string]any{"model": "small"})

	outcome := kit.Startup(context.Background(), nil)
	if !outcome.Success || outcome.ActivePlugin != "b" {
		t.Fatalf("outcome = %+v, want success on persisted b", outcome)
	}
	if b.opts["model"] != "small" {
		t.Errorf("persisted options not applied: %v", b.opts)
	}
}

func TestStartupFallsBackWithoutPersisting(t *testing.T) {
	kit, path := newKit(t)
	a := &stubBackend{name: "a", available: false}
	b := &stubBackend{name: "b", available: true}
	for _, p := range []*stubBackend{a, b} {
		if err := kit.Register(p); err != nil {
			t.Fatal(err)
		}
	}
	kit.Settings.SetActivePlugin("a")

	outcome := kit.Startup(context.Background(), nil)
	if !outcome.Success || outcome.ActivePlugin != "b" {
		t.Fatalf("outcome = %+v, want fallback to b", outcome)
	}
	// The fallback landing is not written to disk until the caller says so.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("settings file written implicitly: %v", err)
	}
	if kit.Settings.ActivePlugin() != "a" {
		t.Errorf("in-memory selection rewritten implicitly: %q", kit.Settings.ActivePlugin())
	}
}

func TestPersistWritesOnlySuccessfulOutcomes(t *testing.T) {
	kit, path := newKit(t)
	if err := kit.Register(&stubBackend{name: "a", available: true}); err != nil {
		t.Fatal(err)
	}

	if err := kit.Persist(plugin.Outcome{Success: false}); err != nil {
		t.Fatalf("Persist of failed outcome errored: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("failed outcome persisted")
	}

	outcome := kit.Startup(context.Background(), nil)
	if err := kit.Persist(outcome); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("settings file missing after Persist: %v", err)
	}
	if kit.Settings.ActivePlugin() != "a" {
		t.Errorf("persisted selection = %q", kit.Settings.ActivePlugin())
	}
}
