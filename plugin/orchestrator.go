package plugin

import (
	"context"
	"time"

	"github.com/skillsenselab/voicekit/events"
	"github.com/skillsenselab/voicekit/logger"
	"github.com/skillsenselab/voicekit/observability"
)

// Switcher commits a tested candidate through the real state transition.
// The Manager implements it; the indirection keeps the orchestrator free of
// active-pointer ownership.
type Switcher interface {
	SetActive(ctx context.Context, name string, opts Options, hooks *Hooks) error
}

// Orchestrator walks a deterministic candidate order, testing each plugin
// until one activates or all are exhausted. Candidates are evaluated
// strictly sequentially: activation often claims an exclusive resource
// (microphone, local server port) that would race under concurrent
// attempts.
type Orchestrator struct {
	registry *Registry
	tester   *Tester
	switcher Switcher
	bus      *events.Bus
	metrics  *observability.Metrics
	log      *logger.Logger
}

// NewOrchestrator creates an Orchestrator. bus and metrics may be nil.
func NewOrchestrator(registry *Registry, tester *Tester, switcher Switcher, bus *events.Bus, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		tester:   tester,
		switcher: switcher,
		bus:      bus,
		metrics:  metrics,
		log:      logger.Get("plugin.orchestrator"),
	}
}

// Activate tries to activate primary, then its declared fallback chain,
// then every remaining registered plugin in registration order. Every
// per-candidate error is converted into structured data in the Outcome;
// nothing escapes as a Go error.
func (o *Orchestrator) Activate(ctx context.Context, primary string, opts Options, hooks *Hooks) Outcome {
	ctx, span := observability.StartSpan(ctx, observability.SpanFallbackWalk)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrPrimary, primary)

	outcome := Outcome{
		FailedPlugins: []string{},
		Errors:        map[string]string{},
	}

	order := o.candidateOrder(primary)
	o.log.Info("fallback walk starting", map[string]interface{}{
		"primary":    primary,
		"candidates": order,
	})

	tried := 0
	for _, name := range order {
		tried++
		start := time.Now()
		result, err := o.tester.Test(ctx, name, opts)
		if err != nil {
			// Candidates come from the registry, so a lookup failure here
			// means the registry changed mid-walk. Record and move on.
			o.recordFailure(ctx, &outcome, name, err.Error())
			continue
		}
		if !result.CanActivate {
			o.recordFailure(ctx, &outcome, name, result.Err)
			if o.metrics != nil {
				o.metrics.RecordActivation(ctx, name, "test_failed", time.Since(start))
			}
			continue
		}

		// The test passed; commit the real transition. A failure here
		// despite a passing test (a race on the underlying resource) is
		// recorded like any other candidate failure.
		if err := o.switcher.SetActive(ctx, name, opts, hooks); err != nil {
			o.recordFailure(ctx, &outcome, name, err.Error())
			if o.metrics != nil {
				o.metrics.RecordActivation(ctx, name, "switch_failed", time.Since(start))
			}
			continue
		}

		if o.metrics != nil {
			o.metrics.RecordActivation(ctx, name, "ok", time.Since(start))
			o.metrics.RecordFallback(ctx, "ok", tried)
		}
		outcome.Success = true
		outcome.ActivePlugin = name
		o.log.Info("fallback walk succeeded", map[string]interface{}{
			logger.FieldPlugin: name,
			"failed":           outcome.FailedPlugins,
		})
		return outcome
	}

	if o.metrics != nil {
		o.metrics.RecordFallback(ctx, "exhausted", tried)
	}
	if o.bus != nil {
		o.bus.Publish(events.Event{
			Type:   events.TypeFallbackChainExhausted,
			Plugin: primary,
		})
	}
	o.log.Error("fallback walk exhausted", map[string]interface{}{
		"primary": primary,
		"errors":  outcome.Errors,
	})
	return outcome
}

// recordFailure appends a candidate failure to the outcome and publishes
// the activation-failed event.
func (o *Orchestrator) recordFailure(ctx context.Context, outcome *Outcome, name, reason string) {
	outcome.FailedPlugins = append(outcome.FailedPlugins, name)
	outcome.Errors[name] = reason
	o.log.Warn("candidate failed", map[string]interface{}{
		logger.FieldCandidate: name,
		logger.FieldError:     reason,
	})
	if o.bus != nil {
		o.bus.Publish(events.Event{
			Type:   events.TypePluginActivationFailed,
			Plugin: name,
			Reason: reason,
		})
	}
}

// candidateOrder builds the deterministic attempt order: primary first (if
// registered), then the primary's declared fallback chain, then every
// remaining registered plugin in registration order. Duplicates keep their
// first occurrence. Every registered plugin appears exactly once.
func (o *Orchestrator) candidateOrder(primary string) []string {
	seen := make(map[string]bool)
	var order []string

	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		if _, ok := o.registry.Get(name); !ok {
			return
		}
		seen[name] = true
		order = append(order, name)
	}

	add(primary)
	if p, ok := o.registry.Get(primary); ok {
		for _, name := range fallbackChainOf(p) {
			add(name)
		}
	}
	for _, name := range o.registry.Names() {
		add(name)
	}
	return order
}
