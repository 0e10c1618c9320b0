package gateway

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

func permanent(err error) error {
	return backoff.Permanent(err)
}

// retry runs op until it succeeds, returns a permanent error, exhausts
// MaxRetries or ctx is done. Delays grow from RetryInitialDelay by
// RetryMultiplier without jitter.
func (g *Gateway) retry(ctx context.Context, op backoff.Operation, notify backoff.Notify) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.cfg.RetryInitialDelay
	b.Multiplier = g.cfg.RetryMultiplier
	b.RandomizationFactor = 0
	b.MaxInterval = g.cfg.RetryMaxDelay
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(g.cfg.MaxRetries)), ctx)
	return backoff.RetryNotify(op, policy, notify)
}
