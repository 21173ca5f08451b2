// Package httpclient fetches remote manifests over HTTP(S).
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/stacklok/forward-slots/internal/versions"
)

const (
	// DefaultTimeout bounds a single request
	DefaultTimeout = 30 * time.Second

	// DefaultMaxTries is how many times a transient failure is attempted
	DefaultMaxTries = 3

	// MaxResponseSize is the largest body Get accepts
	MaxResponseSize = 10 << 20

	acceptHeader = "application/yaml, application/json;q=0.9, text/plain;q=0.5"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client fetches documents over HTTP
type Client interface {
	// Get returns the body of a successful GET request to url
	Get(ctx context.Context, url string) ([]byte, error)
}

// DefaultClient is a Client with a per-request timeout and retries for
// network errors, 429 and 5xx responses
type DefaultClient struct {
	client   *http.Client
	maxTries uint
	backOff  func() backoff.BackOff
}

// Option configures a DefaultClient
type Option func(*DefaultClient)

// WithMaxTries sets how many times a transient failure is attempted
func WithMaxTries(n uint) Option {
	return func(c *DefaultClient) {
		if n > 0 {
			c.maxTries = n
		}
	}
}

// WithBackOff sets the delay policy between attempts
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *DefaultClient) {
		if newBackOff != nil {
			c.backOff = newBackOff
		}
	}
}

// NewDefaultClient creates a new client. A non-positive timeout uses
// DefaultTimeout.
func NewDefaultClient(timeout time.Duration, opts ...Option) *DefaultClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &DefaultClient{
		client:   &http.Client{Timeout: timeout},
		maxTries: DefaultMaxTries,
		backOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements Client
func (c *DefaultClient) Get(ctx context.Context, url string) ([]byte, error) {
	return backoff.Retry(ctx, func() ([]byte, error) {
		data, err := c.get(ctx, url)
		if err == nil {
			return data, nil
		}

		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !httpErr.Retryable() {
			return nil, backoff.Permanent(err)
		}
		if errors.Is(err, errTooLarge) || errors.Is(err, errBadRequest) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	},
		backoff.WithBackOff(c.backOff()),
		backoff.WithMaxTries(c.maxTries),
	)
}

var (
	errTooLarge   = errors.New("response exceeds maximum allowed size")
	errBadRequest = errors.New("failed to create request")
)

func (c *DefaultClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	req.Header.Set("User-Agent", "forward-slots/"+versions.Version)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewHTTPError(resp.StatusCode, url, http.StatusText(resp.StatusCode))
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", errTooLarge, resp.ContentLength, MaxResponseSize)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > MaxResponseSize {
		return nil, fmt.Errorf("%w: more than %d bytes", errTooLarge, MaxResponseSize)
	}

	return data, nil
}
