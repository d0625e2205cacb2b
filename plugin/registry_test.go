package plugin

import "testing"

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	r := newTestRegistry(
		newFakePlugin("whisper"),
		newFakePlugin("vosk"),
		newFakePlugin("mistral"),
	)

	names := r.Names()
	want := []string{"whisper", "vosk", "mistral"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestRegistryRejectsDuplicateName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newFakePlugin("whisper")); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := r.Register(newFakePlugin("whisper")); err == nil {
		t.Error("expected error registering duplicate name")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistryGet(t *testing.T) {
	p := newFakePlugin("vosk")
	r := newTestRegistry(p)

	got, ok := r.Get("vosk")
	if !ok {
		t.Fatal("Get(vosk) returned false")
	}
	if got.Name() != "vosk" {
		t.Errorf("Get(vosk).Name() = %q", got.Name())
	}
	if _, ok := r.Get("unknown"); ok {
		t.Error("Get(unknown) returned true")
	}
}

func TestRegistryCreateFromFactory(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory("whisper", func(cfg map[string]any) (Plugin, error) {
		return newFakePlugin("whisper"), nil
	})

	p, err := r.Create("whisper", nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Name() != "whisper" {
		t.Errorf("created plugin name = %q", p.Name())
	}
	if _, ok := r.Get("whisper"); !ok {
		t.Error("created plugin not registered")
	}

	if _, err := r.Create("missing", nil); err == nil {
		t.Error("expected error creating from unregistered factory")
	}
}

func TestRegistryDescriptors(t *testing.T) {
	r := newTestRegistry(newFakePlugin("a"), newFakePlugin("b"))
	ds := r.Descriptors()
	if len(ds) != 2 || ds[0].Name != "a" || ds[1].Name != "b" {
		t.Errorf("Descriptors() = %v", ds)
	}
}
