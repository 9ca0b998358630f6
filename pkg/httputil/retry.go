package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const redacted = "REDACTED"

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// RedactParams names query parameters whose values are masked in returned
	// errors and retry logs (e.g. "apikey").
	RedactParams []string
}

var DefaultRetry = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	MaxDelay:    10 * time.Second,
}

// Retryable reports whether a response status is worth another attempt:
// 429 Too Many Requests and any 5xx.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Do sends the request built by buildReq, retrying transport errors and
// Retryable statuses with exponential backoff. Other responses are returned as is.
// buildReq is called on every attempt so each one gets a fresh request.
func Do(ctx context.Context, client *http.Client, cfg RetryConfig, logger *zap.Logger,
	buildReq func() (*http.Request, error)) (*http.Response, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetry.MaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		req, err := buildReq()
		if err != nil {
			return nil, fmt.Errorf("build request: %w", RedactError(err, cfg.RedactParams...))
		}

		resp, err := client.Do(req)
		switch {
		case err != nil:
			lastErr = RedactError(err, cfg.RedactParams...)
		case Retryable(resp.StatusCode):
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
		default:
			return resp, nil
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		logger.Warn("request attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", cfg.MaxAttempts),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return nil, fmt.Errorf("all %d attempts failed, last error: %w", cfg.MaxAttempts, lastErr)
}

// RedactError masks params in the URL carried by a *url.Error in err's chain.
// net/http reports every transport failure as a *url.Error holding the full request URL.
func RedactError(err error, params ...string) error {
	var ue *url.Error
	if len(params) == 0 || !errors.As(err, &ue) {
		return err
	}
	ue.URL = RedactURL(ue.URL, params...)
	return err
}

// RedactURL replaces the values of the named query parameters with REDACTED.
// A URL that does not parse is replaced entirely.
func RedactURL(raw string, params ...string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return redacted
	}
	q := u.Query()
	changed := false
	for _, p := range params {
		if q.Has(p) {
			q.Set(p, redacted)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
