package plugin

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/skillsenselab/voicekit/errors"
)

func TestTesterUnknownPluginIsHardError(t *testing.T) {
	tester := NewTester(NewRegistry())

	_, err := tester.Test(context.Background(), "ghost", nil)
	if err == nil {
		t.Fatal("expected error for unknown plugin")
	}
	if !errors.Is(err, errors.ErrCodePluginNotFound) {
		t.Errorf("error code = %v, want PLUGIN_NOT_FOUND", err)
	}
}

func TestTesterShortCircuitsOnUnavailable(t *testing.T) {
	p := newFakePlugin("whisper")
	p.available = false
	tester := NewTester(newTestRegistry(p))

	result, err := tester.Test(context.Background(), "whisper", nil)
	if err != nil {
		t.Fatalf("Test failed: %v", err)
	}
	if result.CanActivate {
		t.Error("CanActivate = true for unavailable plugin")
	}
	if result.Err != errNotAvailable {
		t.Errorf("Err = %q, want %q", result.Err, errNotAvailable)
	}
	if p.activateCalls != 0 {
		t.Errorf("Activate called %d times, want 0", p.activateCalls)
	}
}

func TestTesterPropagatesOptionRejection(t *testing.T) {
	p := newFakePlugin("whisper")
	p.optionsErr = stderrors.New("unknown model tiny-xxl")
	tester := NewTester(newTestRegistry(p))

	result, err := tester.Test(context.Background(), "whisper", Options{"model": "tiny-xxl"})
	if err != nil {
		t.Fatalf("Test failed: %v", err)
	}
	if result.CanActivate {
		t.Error("CanActivate = true despite rejected options")
	}
	if result.Err != "unknown model tiny-xxl" {
		t.Errorf("Err = %q", result.Err)
	}
	if p.activateCalls != 0 {
		t.Error("Activate called despite rejected options")
	}
}

func TestTesterPropagatesActivationError(t *testing.T) {
	p := newFakePlugin("vosk")
	p.activateErr = stderrors.New("model directory missing")
	tester := NewTester(newTestRegistry(p))

	result, err := tester.Test(context.Background(), "vosk", nil)
	if err != nil {
		t.Fatalf("Test failed: %v", err)
	}
	if result.CanActivate {
		t.Error("CanActivate = true despite activation error")
	}
	if result.Err != "model directory missing" {
		t.Errorf("Err = %q", result.Err)
	}
}

func TestTesterDeactivatesAfterSuccess(t *testing.T) {
	p := newFakePlugin("whisper")
	tester := NewTester(newTestRegistry(p))

	result, err := tester.Test(context.Background(), "whisper", Options{"model": "base"})
	if err != nil {
		t.Fatalf("Test failed: %v", err)
	}
	if !result.CanActivate {
		t.Fatalf("CanActivate = false, Err = %q", result.Err)
	}
	if p.active {
		t.Error("plugin left active after test")
	}
	if p.deactivateCalls != 1 {
		t.Errorf("Deactivate called %d times, want 1", p.deactivateCalls)
	}
	if p.lastOpts["model"] != "base" {
		t.Errorf("options not applied before test activation: %v", p.lastOpts)
	}
}

func TestTesterIgnoresDeactivationFailure(t *testing.T) {
	p := newFakePlugin("whisper")
	p.deactivateErr = stderrors.New("stop timed out")
	tester := NewTester(newTestRegistry(p))

	result, err := tester.Test(context.Background(), "whisper", nil)
	if err != nil {
		t.Fatalf("Test failed: %v", err)
	}
	if !result.CanActivate {
		t.Errorf("CanActivate = false, want true; deactivation failure must not fail the test")
	}
}
