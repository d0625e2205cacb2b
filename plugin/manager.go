package plugin

import (
	"context"
	"sync"

	"github.com/skillsenselab/voicekit/errors"
	"github.com/skillsenselab/voicekit/events"
	"github.com/skillsenselab/voicekit/logger"
	"github.com/skillsenselab/voicekit/observability"
)

// Manager is the top-level aggregate. It owns the single active-plugin
// pointer, exposes the switching and data-clearing operations, and emits
// lifecycle events. The pointer is mutated only inside Manager methods;
// concurrent external callers must serialize switch requests themselves.
type Manager struct {
	mu       sync.Mutex
	registry *Registry
	tester   *Tester
	orch     *Orchestrator
	bus      *events.Bus
	metrics  *observability.Metrics
	log      *logger.Logger

	active        string
	defaultPlugin string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithEventBus sets the lifecycle event bus.
func WithEventBus(bus *events.Bus) ManagerOption {
	return func(m *Manager) { m.bus = bus }
}

// WithManagerMetrics sets the metric instruments for lifecycle operations.
func WithManagerMetrics(metrics *observability.Metrics) ManagerOption {
	return func(m *Manager) { m.metrics = metrics }
}

// WithDefaultPlugin sets the plugin used as the recovery primary when no
// plugin is active during a bulk data clear.
func WithDefaultPlugin(name string) ManagerOption {
	return func(m *Manager) { m.defaultPlugin = name }
}

// NewManager creates a Manager over the given registry.
func NewManager(registry *Registry, opts ...ManagerOption) *Manager {
	m := &Manager{
		registry: registry,
		log:      logger.Get("plugin.manager"),
	}
	for _, o := range opts {
		o(m)
	}
	m.tester = NewTester(registry)
	m.orch = NewOrchestrator(registry, m.tester, m, m.bus, m.metrics)
	return m
}

// Registry returns the underlying plugin registry.
func (m *Manager) Registry() *Registry { return m.registry }

// ActiveName returns the name of the currently active plugin, or "".
func (m *Manager) ActiveName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// SetActive performs a deterministic, no-fallback switch to the named
// plugin. A currently active plugin is deactivated first, best-effort:
// deactivation failures are logged and never block the new activation.
// The target is driven through UpdateOptions and Activate; on failure the
// error propagates to the caller with no implicit recovery.
//
// The previous plugin is released before the new one is confirmed. That
// favors prompt release of exclusive resources (microphone, local server
// port) over continuous availability: if the new activation fails, no
// plugin is active.
func (m *Manager) SetActive(ctx context.Context, name string, opts Options, hooks *Hooks) error {
	p, ok := m.registry.Get(name)
	if !ok {
		return errors.PluginNotFound(name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, span := observability.StartSpan(ctx, observability.SpanActivate)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrPlugin, name)

	if m.active != "" && m.active != name {
		m.deactivateLocked(ctx, m.active)
	}
	m.active = ""

	if len(opts) > 0 {
		if err := p.UpdateOptions(ctx, opts, hooks); err != nil {
			observability.SetSpanError(ctx, err)
			return err
		}
	}
	if err := p.Activate(ctx, hooks); err != nil {
		observability.SetSpanError(ctx, err)
		if m.metrics != nil {
			m.metrics.RecordError(ctx, "activation", name)
		}
		return err
	}

	m.active = name
	m.log.Info("active plugin changed", map[string]interface{}{logger.FieldPlugin: name})
	if m.bus != nil {
		m.bus.Publish(events.Event{
			Type:   events.TypeActivePluginChanged,
			Plugin: name,
		})
	}
	return nil
}

// deactivateLocked stops the named plugin, best-effort. Failures are
// logged, counted, and otherwise ignored: they never gate the next
// activation and are never reported as candidate failures.
func (m *Manager) deactivateLocked(ctx context.Context, name string) {
	p, ok := m.registry.Get(name)
	if !ok {
		return
	}
	if err := p.Deactivate(ctx); err != nil {
		m.log.Warn("deactivation failed", map[string]interface{}{
			logger.FieldPlugin: name,
			logger.FieldError:  err.Error(),
		})
		if m.metrics != nil {
			m.metrics.RecordError(ctx, "deactivation", name)
		}
	}
}

// ActivateWithFallback walks the candidate order starting from primary (or
// the registry head when primary is empty) and commits the first candidate
// that activates. Candidate failures come back as structured data in the
// Outcome; persistence of a changed selection is the caller's decision.
func (m *Manager) ActivateWithFallback(ctx context.Context, primary string, opts Options, hooks *Hooks) Outcome {
	outcome := m.orch.Activate(ctx, primary, opts, hooks)
	if !outcome.Success {
		hooks.Error("No transcription backend could be activated.")
	} else if outcome.ActivePlugin != primary && primary != "" {
		hooks.Success("Switched to " + outcome.ActivePlugin + " backend.")
	}
	return outcome
}

// TestActivation checks whether the named plugin could become active
// without changing the globally observable active plugin.
func (m *Manager) TestActivation(ctx context.Context, name string, opts Options) (ActivationResult, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanTest)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrPlugin, name)
	return m.tester.Test(ctx, name, opts)
}

// ClearAllDataWithFallback wipes every registered plugin's data and then
// re-establishes a working backend, since the wipe may have invalidated the
// current plugin's required assets. DeleteAllData is invoked on every
// registered plugin exactly once; per-plugin failures are isolated and
// collected, never aborting the loop. Total exhaustion afterwards is a
// structured, user-visible failure, not a fatal one.
func (m *Manager) ClearAllDataWithFallback(ctx context.Context, hooks *Hooks) ClearOutcome {
	ctx, span := observability.StartSpan(ctx, observability.SpanDataClear)
	defer span.End()

	current := m.ActiveName()
	if current == "" {
		current = m.defaultPlugin
	}

	result := ClearOutcome{
		FailedPlugins: []string{},
		Errors:        map[string]string{},
	}

	for _, name := range m.registry.Names() {
		p, ok := m.registry.Get(name)
		if !ok {
			continue
		}
		if err := p.DeleteAllData(ctx); err != nil {
			result.FailedPlugins = append(result.FailedPlugins, name)
			result.Errors[name] = err.Error()
			m.log.Error("data clear failed", map[string]interface{}{
				logger.FieldPlugin: name,
				logger.FieldError:  err.Error(),
			})
		}
	}

	outcome := m.ActivateWithFallback(ctx, current, Options{}, hooks)
	for _, name := range outcome.FailedPlugins {
		if _, exists := result.Errors[name]; !exists {
			result.FailedPlugins = append(result.FailedPlugins, name)
			result.Errors[name] = outcome.Errors[name]
		}
	}

	result.Success = outcome.Success
	result.NewActivePlugin = outcome.ActivePlugin
	result.PluginChanged = outcome.Success && outcome.ActivePlugin != current
	result.UpdatedDataInfo = m.DataInfo(ctx)

	if m.metrics != nil {
		status := "ok"
		if !result.Success {
			status = "exhausted"
		}
		m.metrics.RecordDataClear(ctx, status)
	}
	if m.bus != nil {
		m.bus.Publish(events.Event{
			Type:   events.TypePluginDataCleared,
			Plugin: result.NewActivePlugin,
		})
	}
	return result
}

// DataInfo aggregates the data footprint of every registered plugin.
// Per-plugin errors are logged and reported as zero footprints; the
// surface is read-only and must not fail wholesale.
func (m *Manager) DataInfo(ctx context.Context) []DataInfo {
	names := m.registry.Names()
	infos := make([]DataInfo, 0, len(names))
	for _, name := range names {
		p, ok := m.registry.Get(name)
		if !ok {
			continue
		}
		info := DataInfo{PluginName: name}
		if size, err := p.DataSize(ctx); err == nil {
			info.DataSize = size
		} else {
			m.log.Warn("data size failed", map[string]interface{}{
				logger.FieldPlugin: name,
				logger.FieldError:  err.Error(),
			})
		}
		if items, err := p.ListData(ctx); err == nil {
			info.ItemCount = len(items)
		}
		infos = append(infos, info)
	}
	return infos
}

// ExhaustionError builds the blocking, user-visible error for a failed
// fallback run, carrying the complete per-plugin error map so the cause
// closest to resolution is visible.
func (m *Manager) ExhaustionError(primary string, outcome Outcome) *errors.AppError {
	return errors.FallbackExhausted(primary, outcome.Errors)
}
