package plugin

import (
	"context"
	"time"

	"github.com/skillsenselab/voicekit/logger"
)

// loggingPlugin wraps a Plugin with structured lifecycle logging.
type loggingPlugin struct {
	Plugin
	log *logger.Logger
}

// WithLogging decorates a plugin so every lifecycle transition is logged
// with the plugin name and call duration. Data operations and state reads
// pass through untouched.
func WithLogging(p Plugin) Plugin {
	return &loggingPlugin{
		Plugin: p,
		log:    logger.Get("plugin").WithPlugin(p.Name()),
	}
}

// Unwrap returns the wrapped plugin.
func (p *loggingPlugin) Unwrap() Plugin { return p.Plugin }

// FallbackChain delegates to the wrapped plugin's declared chain, if any.
func (p *loggingPlugin) FallbackChain() []string { return fallbackChainOf(p.Plugin) }

func (p *loggingPlugin) Activate(ctx context.Context, hooks *Hooks) error {
	start := time.Now()
	p.log.Debug("activating")
	err := p.Plugin.Activate(ctx, hooks)
	if err != nil {
		p.log.Warn("activation failed", logger.ErrorFields("activate", err))
		return err
	}
	p.log.Info("activated", logger.DurationFields("activate", time.Since(start)))
	return nil
}

func (p *loggingPlugin) Deactivate(ctx context.Context) error {
	err := p.Plugin.Deactivate(ctx)
	if err != nil {
		p.log.Warn("deactivation failed", logger.ErrorFields("deactivate", err))
		return err
	}
	p.log.Info("deactivated")
	return nil
}

func (p *loggingPlugin) UpdateOptions(ctx context.Context, opts Options, hooks *Hooks) error {
	err := p.Plugin.UpdateOptions(ctx, opts, hooks)
	if err != nil {
		p.log.Warn("options rejected", logger.ErrorFields("update_options", err))
	}
	return err
}

func (p *loggingPlugin) DeleteAllData(ctx context.Context) error {
	err := p.Plugin.DeleteAllData(ctx)
	if err != nil {
		p.log.Error("data wipe failed", logger.ErrorFields("delete_all_data", err))
		return err
	}
	p.log.Info("data wiped")
	return nil
}
