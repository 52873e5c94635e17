package runtime

import (
	"time"

	intErrors "github.com/drvkize0/pipegraph/internal/errors"
	"github.com/drvkize0/pipegraph/pkg/retry"
	"github.com/drvkize0/pipegraph/pkg/types"
)

// Option configures a single Start call using the functional-options
// pattern.
type Option func(*execConfig)

type execConfig struct {
	clock        types.Clock
	retryPolicy  retry.RetryPolicy
	errorHandler types.ErrorHandler
	errorChain   *intErrors.HandlerRegistry
}

func defaultExecConfig() execConfig {
	return execConfig{
		clock:       types.NewRealClock(),
		retryPolicy: retry.NewFixedDelayRetry(5, 20*time.Millisecond),
	}
}

// WithClock overrides the clock used for worker-pool submission
// backoff delays.
func WithClock(c types.Clock) Option {
	return func(cfg *execConfig) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithRetryPolicy overrides the retry policy used when pool.Submit
// reports the pool is transiently full during graph materialization.
func WithRetryPolicy(p retry.RetryPolicy) Option {
	return func(cfg *execConfig) {
		if p != nil {
			cfg.retryPolicy = p
		}
	}
}

// WithErrorHandler installs a handler that can translate or
// downgrade a worker's recovered failure before it becomes the
// execution's recorded fatal cause.
func WithErrorHandler(h types.ErrorHandler) Option {
	return func(cfg *execConfig) {
		cfg.errorHandler = h
	}
}

// WithErrorHandlerChain installs a HandlerRegistry consulted before
// errorHandler: the registry's handler for the failure's type can
// translate the recorded cause into a different error before
// errorHandler gets a chance to translate what remains, but a fatal
// worker failure is never discarded outright — a handler that returns
// nil (such as ContinueOnErrorHandler) leaves the original cause in
// place rather than swallowing it.
func WithErrorHandlerChain(r *intErrors.HandlerRegistry) Option {
	return func(cfg *execConfig) {
		cfg.errorChain = r
	}
}
