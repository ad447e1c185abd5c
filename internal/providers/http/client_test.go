package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvittering/kvittering/internal/listing"
)

func TestNewClient(t *testing.T) {
	t.Run("creates client with default config", func(t *testing.T) {
		assert.NotNil(t, NewClient(DefaultClientConfig()))
	})

	t.Run("custom user agent and retry count", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
			assert.Contains(t, r.Header.Get("Accept-Language"), "nb-NO")
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewClient(ClientConfig{
			Timeout:    10 * time.Second,
			MaxRetries: 2,
			UserAgent:  "test-agent/1.0",
		})
		_, err := client.Fetch(context.Background(), server.URL)

		var fetchErr *listing.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusBadGateway, fetchErr.Status)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("negative retries disable retrying", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := NewClient(ClientConfig{MaxRetries: -1}).Fetch(context.Background(), server.URL)

		assert.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})
}

func TestClient_Fetch(t *testing.T) {
	t.Run("returns the body and sends a browser user agent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<h1>Stol</h1>"))
		}))
		defer server.Close()

		client := NewClient(DefaultClientConfig())
		body, err := client.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "<h1>Stol</h1>", string(body))
	})

	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusForbidden} {
		t.Run("non-2xx status "+http.StatusText(status), func(t *testing.T) {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.WriteHeader(status)
			}))
			defer server.Close()

			client := NewClient(DefaultClientConfig())
			body, err := client.Fetch(context.Background(), server.URL)

			require.Error(t, err)
			assert.Nil(t, body)
			var fetchErr *listing.FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, status, fetchErr.Status)
			assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "no retries by default")
		})
	}

	t.Run("timeout is a fetch error without status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(ClientConfig{Timeout: 50 * time.Millisecond})
		_, err := client.Fetch(context.Background(), server.URL)

		var fetchErr *listing.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, 0, fetchErr.Status)
		assert.Error(t, fetchErr.Unwrap())
	})

	t.Run("handles context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(DefaultClientConfig())
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		_, err := client.Fetch(ctx, server.URL)

		var fetchErr *listing.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, 0, fetchErr.Status)
	})

	t.Run("handles server errors with retry when enabled", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		client := NewClient(ClientConfig{Timeout: 10 * time.Second, MaxRetries: 3})
		body, err := client.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})
}
