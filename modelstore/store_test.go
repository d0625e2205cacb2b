package modelstore

import (
	"context"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestPutListSize(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Put(ctx, "base.pt", strings.NewReader("model-bytes")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, "vosk/am/final.mdl", strings.NewReader("acoustic")); err != nil {
		t.Fatalf("Put nested failed: %v", err)
	}

	items, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "base.pt" {
		t.Errorf("expected sorted IDs, got %v", items)
	}
	if items[1].ID != "vosk/am/final.mdl" {
		t.Errorf("expected nested ID, got %q", items[1].ID)
	}

	size, err := s.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	want := int64(len("model-bytes") + len("acoustic"))
	if size != want {
		t.Errorf("expected size %d, got %d", want, size)
	}
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if s.Exists("base.pt") {
		t.Error("Exists should be false before Put")
	}
	if err := s.Put(ctx, "base.pt", strings.NewReader("x")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !s.Exists("base.pt") {
		t.Error("Exists should be true after Put")
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Put(ctx, "tiny.pt", strings.NewReader("x")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Delete(ctx, "tiny.pt"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Exists("tiny.pt") {
		t.Error("artifact should be gone after Delete")
	}

	// Deleting a missing artifact is a no-op.
	if err := s.Delete(ctx, "tiny.pt"); err != nil {
		t.Errorf("Delete of missing artifact should not error: %v", err)
	}
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_ = s.Put(ctx, "a.pt", strings.NewReader("a"))
	_ = s.Put(ctx, "b/c.pt", strings.NewReader("c"))

	if err := s.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	items, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List after DeleteAll failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty store, got %v", items)
	}

	// Root must still be usable.
	if err := s.Put(ctx, "d.pt", strings.NewReader("d")); err != nil {
		t.Errorf("Put after DeleteAll failed: %v", err)
	}
}

func TestRejectsEscapingIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Put(ctx, "../outside", strings.NewReader("x")); err == nil {
		t.Error("expected error for escaping ID")
	}
	if err := s.Delete(ctx, "/etc/passwd"); err == nil {
		t.Error("expected error for absolute ID")
	}
}
