package plugin

import (
	"context"
	"time"

	"github.com/skillsenselab/voicekit/observability"
)

// metricsPlugin wraps a Plugin and records per-call lifecycle metrics.
type metricsPlugin struct {
	Plugin
	metrics *observability.Metrics
}

// WithMetrics decorates a plugin so direct activations and data wipes are
// counted even when they bypass the orchestrator.
func WithMetrics(p Plugin, metrics *observability.Metrics) Plugin {
	if metrics == nil {
		return p
	}
	return &metricsPlugin{Plugin: p, metrics: metrics}
}

// Unwrap returns the wrapped plugin.
func (p *metricsPlugin) Unwrap() Plugin { return p.Plugin }

// FallbackChain delegates to the wrapped plugin's declared chain, if any.
func (p *metricsPlugin) FallbackChain() []string { return fallbackChainOf(p.Plugin) }

func (p *metricsPlugin) Activate(ctx context.Context, hooks *Hooks) error {
	start := time.Now()
	err := p.Plugin.Activate(ctx, hooks)
	status := "ok"
	if err != nil {
		status = "error"
		p.metrics.RecordError(ctx, "activation", p.Name())
	}
	p.metrics.RecordActivation(ctx, p.Name(), status, time.Since(start))
	return err
}

func (p *metricsPlugin) Deactivate(ctx context.Context) error {
	err := p.Plugin.Deactivate(ctx)
	if err != nil {
		p.metrics.RecordError(ctx, "deactivation", p.Name())
	}
	return err
}

func (p *metricsPlugin) DeleteAllData(ctx context.Context) error {
	err := p.Plugin.DeleteAllData(ctx)
	if err != nil {
		p.metrics.RecordError(ctx, "data_clear", p.Name())
	}
	return err
}
