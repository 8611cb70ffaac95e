// File: internal/services/vectorindex/retry.go
package vectorindex

import (
	"context"

	"github.com/sethvargo/go-retry"
)

type RetryService struct {
	config *Config
	logger Logger
}

func NewRetryService(config *Config, logger Logger) *RetryService {
	return &RetryService{config: config, logger: logger}
}

// Do runs call under the configured timeout and retries it with a fibonacci
// backoff until it succeeds, the retries run out, or ctx is done.
func (r *RetryService) Do(ctx context.Context, call func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(uint64(r.config.MaxRetries), retry.NewFibonacci(r.config.RetryDelay))
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := call(ctx); err != nil {
			if ctx.Err() != nil {
				return err
			}
			r.logger.Warn("index operation failed, retrying", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		if attempt > 1 {
			r.logger.Info("index operation succeeded after retry", "attempts", attempt)
		}
		return nil
	})
}
