package decorate

import (
	"context"

	"github.com/jonwraymond/trialops/telemetry"
)

// Logging returns a factory for a decorator that logs attempt failures
// without suppressing them. Successful attempts log at debug level.
func Logging(logger telemetry.Logger) Factory {
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	return func() Decorator {
		return &loggingDecorator{logger: logger}
	}
}

type loggingDecorator struct {
	logger telemetry.Logger
}

func (d *loggingDecorator) Invoke(ctx context.Context, inv *Invocation, next Handler) (any, error) {
	result, err := next(ctx, inv)
	if ctx.Err() != nil {
		// Abandoned attempt; nothing to report after the fact.
		return result, err
	}
	log := d.logger.WithExperiment(inv.ServiceType)
	if err != nil {
		log.Warn(ctx, "trial attempt failed",
			telemetry.Field{Key: "method", Value: inv.Method},
			telemetry.Field{Key: "trial", Value: inv.TrialKey},
			telemetry.Field{Key: "error", Value: err.Error()},
		)
		return result, err
	}
	log.Debug(ctx, "trial attempt succeeded",
		telemetry.Field{Key: "method", Value: inv.Method},
		telemetry.Field{Key: "trial", Value: inv.TrialKey},
	)
	return result, nil
}
