package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/exp/rand"
	"golang.org/x/time/rate"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/http.go github.com/kasuboski/rollwatch/pkg/http HTTPClient

const (
	DefaultMaxRetries  = 3
	DefaultBaseBackoff = time.Millisecond * 500
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type RateLimitedClient struct {
	client      HTTPClient
	limiter     *rate.Limiter
	baseBackoff time.Duration
	maxRetries  int
	jitter      func(n int64) int64
}

// ClientOption is a function that can be used to configure a RateLimitedHTTPClient
type ClientOption func(*RateLimitedClient)

// NewRateLimitedHTTPClient creates a new RateLimitedHTTPClient that respects 429 status codes.
// The client can be used concurrently.
func NewRateLimitedHTTPClient(opts ...ClientOption) *RateLimitedClient {
	c := &RateLimitedClient{
		client:      http.DefaultClient,
		maxRetries:  DefaultMaxRetries,
		baseBackoff: DefaultBaseBackoff,
		jitter:      rand.Int63n,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithMaxRetries sets the maximum number of retries for the client
func WithMaxRetries(maxRetries int) ClientOption {
	return func(c *RateLimitedClient) {
		c.maxRetries = maxRetries
	}
}

// WithBaseBackoff sets the base backoff time for the client
func WithBaseBackoff(baseBackoff time.Duration) ClientOption {
	return func(c *RateLimitedClient) {
		c.baseBackoff = baseBackoff
	}
}

// WithHTTPClient sets the http client to use for the client
func WithHTTPClient(client HTTPClient) ClientOption {
	return func(c *RateLimitedClient) {
		c.client = client
	}
}

// WithRequestsPerSecond paces outgoing requests. Zero or less disables pacing.
func WithRequestsPerSecond(rps float64) ClientOption {
	return func(c *RateLimitedClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithJitter replaces the source of backoff jitter
func WithJitter(jitter func(n int64) int64) ClientOption {
	return func(c *RateLimitedClient) {
		c.jitter = jitter
	}
}

// Do executes the HTTP request while respecting 429 rate limits.
// This is a blocking call until the request completes successfully, the request context is done,
// or the backoff reaches the maximum retries. If the maximum number of retries is reached,
// the response returned will be the last response received.
func (c *RateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	ctx := req.Context()

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", err)
			}
			req.Body = body
		}

		resp, err = c.client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		if attempt == c.maxRetries-1 {
			break
		}

		retryAfter := c.getRetryAfter(resp, attempt)
		resp.Body.Close()

		if err := sleep(ctx, retryAfter); err != nil {
			return nil, err
		}
	}

	return resp, fmt.Errorf("rate limit exceeded after %d retries", c.maxRetries)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// getRetryAfter calculates the appropriate retry delay
func (c *RateLimitedClient) getRetryAfter(resp *http.Response, attempt int) time.Duration {
	retryAfterHeader := resp.Header.Get("Retry-After")

	if retryAfterHeader != "" {
		seconds, err := strconv.Atoi(retryAfterHeader)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// 2^n backoff
	expBackoff := time.Duration(1<<attempt) * c.baseBackoff

	// staggers the backoff to avoid a thundering herd
	var jitter time.Duration
	if c.jitter != nil && c.baseBackoff > 0 {
		jitter = time.Duration(c.jitter(int64(c.baseBackoff)))
	}

	return expBackoff + jitter
}
