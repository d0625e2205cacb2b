package plugin

import (
	"context"
	"errors"
)

// fakePlugin is a scriptable in-memory plugin used across the package tests.
type fakePlugin struct {
	name          string
	available     bool
	chain         []string
	activateErr   error
	deactivateErr error
	optionsErr    error
	deleteAllErr  error
	items         []DataItem

	active          bool
	activateCalls   int
	deactivateCalls int
	deleteAllCalls  int
	lastOpts        Options
}

func newFakePlugin(name string) *fakePlugin {
	return &fakePlugin{name: name, available: true}
}

func (f *fakePlugin) Name() string { return f.name }

func (f *fakePlugin) Descriptor() Descriptor {
	return Descriptor{Name: f.name, DisplayName: f.name}
}

func (f *fakePlugin) IsAvailable(ctx context.Context) bool { return f.available }

func (f *fakePlugin) Activate(ctx context.Context, hooks *Hooks) error {
	f.activateCalls++
	if f.activateErr != nil {
		return f.activateErr
	}
	f.active = true
	return nil
}

func (f *fakePlugin) Deactivate(ctx context.Context) error {
	f.deactivateCalls++
	if f.deactivateErr != nil {
		return f.deactivateErr
	}
	f.active = false
	return nil
}

func (f *fakePlugin) UpdateOptions(ctx context.Context, opts Options, hooks *Hooks) error {
	if f.optionsErr != nil {
		return f.optionsErr
	}
	f.lastOpts = opts
	return nil
}

func (f *fakePlugin) State() State { return State{Active: f.active} }

func (f *fakePlugin) FallbackChain() []string { return f.chain }

func (f *fakePlugin) ListData(ctx context.Context) ([]DataItem, error) {
	return f.items, nil
}

func (f *fakePlugin) DataSize(ctx context.Context) (int64, error) {
	var total int64
	for _, item := range f.items {
		total += item.SizeBytes
	}
	return total, nil
}

func (f *fakePlugin) DeleteDataItem(ctx context.Context, id string) error {
	for i, item := range f.items {
		if item.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errors.New("item not found")
}

func (f *fakePlugin) DeleteAllData(ctx context.Context) error {
	f.deleteAllCalls++
	if f.deleteAllErr != nil {
		return f.deleteAllErr
	}
	f.items = nil
	return nil
}

// newTestRegistry registers the given fakes in order.
func newTestRegistry(plugins ...*fakePlugin) *Registry {
	r := NewRegistry()
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
	return r
}

// activeCount returns how many of the given fakes are active.
func activeCount(plugins ...*fakePlugin) int {
	n := 0
	for _, p := range plugins {
		if p.active {
			n++
		}
	}
	return n
}
