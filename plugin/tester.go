package plugin

import (
	"context"

	"github.com/skillsenselab/voicekit/errors"
	"github.com/skillsenselab/voicekit/logger"
)

// errNotAvailable is the error text recorded when a plugin's cheap
// precondition check fails.
const errNotAvailable = "not available"

// Tester performs a single, side-effect-bounded attempt to determine
// whether one named plugin can become active. It reuses the real activation
// call rather than a parallel dry-run validator, so a passing test reflects
// exactly what production activation does. A successful test is followed by
// a best-effort deactivation: testing never leaves a plugin active.
type Tester struct {
	registry *Registry
	log      *logger.Logger
}

// NewTester creates a Tester over the given registry.
func NewTester(registry *Registry) *Tester {
	return &Tester{
		registry: registry,
		log:      logger.Get("plugin.tester"),
	}
}

// Test checks whether the named plugin can activate with the given options.
// An unknown name is a programmer-level error, not a candidate-level
// failure. Candidate-level failures come back inside the ActivationResult;
// no retries are performed.
func (t *Tester) Test(ctx context.Context, name string, opts Options) (ActivationResult, error) {
	p, ok := t.registry.Get(name)
	if !ok {
		return ActivationResult{}, errors.PluginNotFound(name)
	}

	if !p.IsAvailable(ctx) {
		return ActivationResult{CanActivate: false, Err: errNotAvailable}, nil
	}

	if len(opts) > 0 {
		if err := p.UpdateOptions(ctx, opts, nil); err != nil {
			return ActivationResult{CanActivate: false, Err: err.Error()}, nil
		}
	}

	if err := p.Activate(ctx, nil); err != nil {
		return ActivationResult{CanActivate: false, Err: err.Error()}, nil
	}

	// The plugin activated; wind it back down so the test leaves no
	// globally observable trace. The commit happens through the manager.
	if err := p.Deactivate(ctx); err != nil {
		t.log.Warn("deactivate after successful test failed", map[string]interface{}{
			logger.FieldPlugin: name,
			logger.FieldError:  err.Error(),
		})
	}

	return ActivationResult{CanActivate: true}, nil
}
