package rpc

import (
	"context"

	"github.com/c360/waverobot/errors"
	"github.com/c360/waverobot/pkg/retry"
)

// RetryingFetcher wraps a Fetcher with exponential backoff. Only
// transport failures are repeated; an auth rejection or a gateway error
// will not get better by asking again.
type RetryingFetcher struct {
	inner Fetcher
	cfg   retry.Config
}

// NewRetryingFetcher wraps inner with the given backoff configuration.
func NewRetryingFetcher(inner Fetcher, cfg retry.Config) *RetryingFetcher {
	return &RetryingFetcher{inner: inner, cfg: cfg}
}

// Send performs the exchange, retrying transport failures.
func (f *RetryingFetcher) Send(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	return retry.DoWithResult(ctx, f.cfg, func() ([]byte, error) {
		reply, err := f.inner.Send(ctx, url, contentType, body)
		if err != nil && !errors.IsTransport(err) {
			return nil, retry.NonRetryable(err)
		}
		return reply, err
	})
}
