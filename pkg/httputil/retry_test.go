package httputil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, BaseDelay: 10 * time.Millisecond, MaxDelay: 40 * time.Millisecond}
}

func TestDo_SuccessFirstAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := Do(context.Background(), client, fastRetry(3), zap.NewNop(), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDo_RetriesOnServerError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := Do(context.Background(), client, fastRetry(3), zap.NewNop(), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestDo_AllAttemptsFail(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream error"))
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	_, err := Do(context.Background(), client, fastRetry(3), nil, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream error")
	assert.Equal(t, int32(3), attempts.Load())
}

func TestDo_NoRetryOnClientError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := Do(context.Background(), client, fastRetry(3), zap.NewNop(), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, int32(1), attempts.Load())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	cfg := RetryConfig{MaxAttempts: 10, BaseDelay: 500 * time.Millisecond, MaxDelay: 2 * time.Second}

	_, err := Do(ctx, client, cfg, zap.NewNop(), func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_RetriesTooManyRequests(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := Do(context.Background(), client, fastRetry(3), zap.NewNop(), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestDo_RedactsTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := srv.URL + "?apikey=top-secret&symbol=TCS.BSE"
	srv.Close()

	core, logs := observer.New(zap.DebugLevel)
	cfg := fastRetry(2)
	cfg.RedactParams = []string{"apikey"}

	client := &http.Client{Timeout: 5 * time.Second}
	_, err := Do(context.Background(), client, cfg, zap.New(core), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, target, nil)
	})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "top-secret")
	assert.Contains(t, err.Error(), "apikey=REDACTED")
	assert.Contains(t, err.Error(), "symbol=TCS.BSE")

	require.Equal(t, 1, logs.Len())
	for _, entry := range logs.All() {
		for k, v := range entry.ContextMap() {
			assert.NotContains(t, fmt.Sprint(v), "top-secret", "field %s", k)
		}
	}
}

func TestRedactURL(t *testing.T) {
	got := RedactURL("https://www.alphavantage.co/query?apikey=abc&function=TIME_SERIES_DAILY", "apikey")
	assert.True(t, strings.HasPrefix(got, "https://www.alphavantage.co/query?"))
	assert.Contains(t, got, "apikey=REDACTED")
	assert.Contains(t, got, "function=TIME_SERIES_DAILY")
	assert.NotContains(t, got, "abc")

	assert.Equal(t, "https://example.com/q?x=1", RedactURL("https://example.com/q?x=1", "apikey"))
	assert.Equal(t, "REDACTED", RedactURL("http://[::1", "apikey"))
}
