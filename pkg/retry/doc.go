// Package retry provides retry policies and an executor for wrapping
// fallible operations with backoff and retry.
//
// Key Features:
//
// 1. Retry policies:
//   - FixedDelayRetry: Fixed delay retry
//   - ExponentialBackoffRetry: Exponential backoff retry
//   - LinearBackoffRetry: Linear backoff retry
//   - CustomRetry: Custom retry policy
//
// 2. Retry executor:
//   - Supports synchronous and asynchronous execution
//   - Context cancellation and timeout support
//   - Retry statistics collection
//   - Event notification mechanism
//
// Basic usage example:
//
//	// Create retry policy
//	policy := retry.NewExponentialBackoffRetry(3, 100*time.Millisecond)
//
//	// Create retry executor
//	executor := retry.NewRetryExecutor(policy)
//
//	// Execute function with retry
//	result, err := retry.Execute(executor, ctx, func(ctx context.Context) (string, error) {
//		// Your business logic
//		return doSomething()
//	})
//
// Custom retry conditions:
//
//	customCondition := func(err error) bool {
//		// Custom retry logic
//		return isTemporaryError(err)
//	}
//
//	policy := retry.NewFixedDelayRetry(3, 100*time.Millisecond,
//		retry.WithRetryCondition(customCondition))
//
// Jitter configuration:
//
//	policy := retry.NewExponentialBackoffRetry(3, 100*time.Millisecond,
//		retry.WithMultiplier(1.5),
//		retry.WithMaxDelay(10*time.Second))
//
//	// Enable jitter
//	policy = retry.NewFixedDelayRetry(3, 100*time.Millisecond,
//		retry.WithJitter(true, 0.1)) // 10% jitter
//
// Event handling:
//
//	handler := retry.NewDefaultEventHandler(logger)
//	executor := retry.NewRetryExecutor(policy,
//		retry.WithEventHandler(handler))
//
// Error handling:
//
// The retry mechanism integrates seamlessly with existing error handling systems:
// - Supports RetryableError types
// - Automatically identifies retryable error types
// - Preserves complete error context on retry failure
//
// Thread safety:
//
// All public types and methods are thread-safe and can be safely used in concurrent environments.
package retry
