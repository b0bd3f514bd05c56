package llmhttp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/phrazzld/mnemo-api/internal/generation"
)

// isRetryableError determines if an error should trigger a retry.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Rate limits, server errors and transport failures are tagged transient
	// when the attempt fails.
	if errors.Is(err, generation.ErrTransientFailure) {
		return true
	}

	// A completion that is not valid JSON is usually a truncated response;
	// another attempt often fixes it.
	if errors.Is(err, generation.ErrGenerationFailed) &&
		strings.Contains(err.Error(), "not valid JSON") {
		return true
	}

	return false
}

// doWithRetry runs one provider call under the shared retry policy:
// exponential backoff between attempts, context-aware waits, and an
// immediate stop on permanent errors. The error of the final attempt is
// returned as-is so sentinel checks keep working.
func doWithRetry(
	ctx context.Context,
	retryAttempts uint,
	call func(ctx context.Context) (*generation.GenerationResult, error),
) (*generation.GenerationResult, error) {
	var result *generation.GenerationResult
	if err := retry.Do(
		func() error {
			response, err := call(ctx)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
		retry.LastErrorOnly(true),
	); err != nil {
		return nil, err
	}
	return result, nil
}
