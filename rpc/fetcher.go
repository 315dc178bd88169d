package rpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/c360/waverobot/errors"
)

// fetchTimeout bounds the whole exchange. HTTPFetcher itself never
// retries; wrap it in a RetryingFetcher for that.
const fetchTimeout = 10 * time.Second

// Fetcher performs one HTTP exchange with an RPC gateway.
type Fetcher interface {
	Send(ctx context.Context, url, contentType string, body []byte) ([]byte, error)
}

// HTTPFetcher is the production Fetcher.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher builds a fetcher with the fixed exchange timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Send POSTs the body and returns the response body. Any status outside
// the 2xx range is a transport error carrying the status code.
func (f *HTTPFetcher) Send(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WrapTransport(err, "HTTPFetcher", "Send", "request build")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.WrapTransport(err, "HTTPFetcher", "Send", "request execute")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapTransport(err, "HTTPFetcher", "Send", "response read")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.WrapTransport(
			fmt.Errorf("unexpected status %d", resp.StatusCode),
			"HTTPFetcher", "Send", "status check")
	}
	return data, nil
}
