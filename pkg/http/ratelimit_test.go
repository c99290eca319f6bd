package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kasuboski/rollwatch/pkg/http/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func noJitter(int64) int64 { return 0 }

func TestNewRateLimitedHTTPClient(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		got := NewRateLimitedHTTPClient()
		assert.Equal(t, http.DefaultClient, got.client)
		assert.Equal(t, DefaultMaxRetries, got.maxRetries)
		assert.Equal(t, DefaultBaseBackoff, got.baseBackoff)
		assert.Nil(t, got.limiter)
		assert.NotNil(t, got.jitter)
	})

	t.Run("custom", func(t *testing.T) {
		custom := &http.Client{
			Transport: &http.Transport{
				MaxIdleConns: 10,
			},
		}
		got := NewRateLimitedHTTPClient(
			WithMaxRetries(5),
			WithBaseBackoff(time.Millisecond*100),
			WithHTTPClient(custom),
			WithRequestsPerSecond(2),
		)
		assert.Equal(t, custom, got.client)
		assert.Equal(t, 5, got.maxRetries)
		assert.Equal(t, time.Millisecond*100, got.baseBackoff)
		require.NotNil(t, got.limiter)
		assert.Equal(t, 2, got.limiter.Burst())
	})

	t.Run("fractional rate keeps a burst of one", func(t *testing.T) {
		got := NewRateLimitedHTTPClient(WithRequestsPerSecond(0.5))
		require.NotNil(t, got.limiter)
		assert.Equal(t, 1, got.limiter.Burst())
	})

	t.Run("zero rate disables pacing", func(t *testing.T) {
		got := NewRateLimitedHTTPClient(WithRequestsPerSecond(0))
		assert.Nil(t, got.limiter)
	})
}

func TestRateLimitedHTTPClient_Do(t *testing.T) {
	t.Run("error during request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest("GET", "https://example.com", nil)
		require.NoError(t, err)

		mhttp.EXPECT().Do(req).Return(nil, errors.New("http error"))
		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp))
		resp, err := client.Do(req)
		assert.Error(t, err)
		assert.Nil(t, resp)
	})

	t.Run("non 429 response", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest("GET", "https://example.com", nil)
		require.NoError(t, err)

		mhttp.EXPECT().Do(req).Return(&http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBuffer([]byte("non 429 response"))),
		}, nil)

		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp))
		resp, err := client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "non 429 response", string(b))
	})

	t.Run("429 response - max retries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest("GET", "https://example.com", nil)
		require.NoError(t, err)

		mhttp.EXPECT().Do(req).Return(&http.Response{
			StatusCode: http.StatusTooManyRequests,
			Body:       io.NopCloser(bytes.NewBuffer([]byte("429 response"))),
		}, nil)
		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp), WithMaxRetries(1))
		resp, err := client.Do(req)
		assert.ErrorContains(t, err, "rate limit exceeded after 1 retries")
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	})

	t.Run("429 then success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest("POST", "https://example.com", strings.NewReader(`{"name":"SeasonSearch"}`))
		require.NoError(t, err)

		gomock.InOrder(
			mhttp.EXPECT().Do(req).Return(&http.Response{
				StatusCode: http.StatusTooManyRequests,
				Body:       io.NopCloser(bytes.NewBuffer(nil)),
			}, nil),
			mhttp.EXPECT().Do(req).DoAndReturn(func(r *http.Request) (*http.Response, error) {
				b, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Equal(t, `{"name":"SeasonSearch"}`, string(b))
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBuffer(nil)),
				}, nil
			}),
		)

		client := NewRateLimitedHTTPClient(
			WithHTTPClient(mhttp),
			WithBaseBackoff(time.Millisecond),
			WithJitter(noJitter),
		)
		resp, err := client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("context canceled during backoff", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		ctx, cancel := context.WithCancel(context.Background())
		req, err := http.NewRequestWithContext(ctx, "GET", "https://example.com", nil)
		require.NoError(t, err)

		mhttp.EXPECT().Do(req).DoAndReturn(func(r *http.Request) (*http.Response, error) {
			cancel()
			return &http.Response{
				StatusCode: http.StatusTooManyRequests,
				Header:     http.Header{"Retry-After": []string{"30"}},
				Body:       io.NopCloser(bytes.NewBuffer(nil)),
			}, nil
		})

		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp))
		resp, err := client.Do(req)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, resp)
	})
}

func TestRateLimitedClient_getRetryAfter(t *testing.T) {
	tests := []struct {
		name        string
		baseBackoff time.Duration
		jitter      func(int64) int64
		resp        *http.Response
		attempt     int
		want        time.Duration
	}{
		{
			name:        "retry after header",
			baseBackoff: time.Second,
			resp: &http.Response{
				Header: http.Header{
					"Retry-After": []string{"1"},
				},
			},
			attempt: 0,
			want:    time.Second,
		},
		{
			name:        "exponential backoff",
			baseBackoff: time.Second,
			jitter:      noJitter,
			resp:        &http.Response{},
			attempt:     3,
			want:        time.Second * 8, // 2^3 * 1 second
		},
		{
			name:        "exponential backoff with jitter",
			baseBackoff: time.Second,
			jitter:      func(n int64) int64 { return n / 2 },
			resp:        &http.Response{},
			attempt:     1,
			want:        time.Second*2 + time.Millisecond*500,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &RateLimitedClient{
				baseBackoff: tt.baseBackoff,
				jitter:      tt.jitter,
			}
			assert.Equal(t, tt.want, c.getRetryAfter(tt.resp, tt.attempt))
		})
	}
}
