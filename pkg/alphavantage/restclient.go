package alphavantage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"stockingest/internal/apperr"
	"stockingest/pkg/httputil"

	"go.uber.org/zap"
)

const (
	opDaily = "alphavantage.daily"

	// apiKeyParam is masked in every error and log line.
	apiKeyParam = "apikey"
)

type RESTClient struct {
	endpoint   string
	apiKey     string
	outputSize OutputSize
	httpClient *http.Client
	retry      httputil.RetryConfig
	logger     *zap.Logger
}

func NewRESTClient(endpoint, apiKey string, timeout time.Duration, retry httputil.RetryConfig,
	logger *zap.Logger) *RESTClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	retry.RedactParams = append(append([]string(nil), retry.RedactParams...), apiKeyParam)
	return &RESTClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		outputSize: OutputSizeFull,
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry,
		logger:     logger,
	}
}

// WithOutputSize returns a copy of the client requesting the given output size.
func (c *RESTClient) WithOutputSize(size OutputSize) *RESTClient {
	cp := *c
	cp.outputSize = size
	return &cp
}

// GetDailySeries fetches the TIME_SERIES_DAILY payload for symbol.
// A body without a daily series is reported as DataUnavailable with the provider's note.
func (c *RESTClient) GetDailySeries(ctx context.Context, symbol string) (Payload, error) {
	params := url.Values{}
	params.Set("function", string(FunctionDaily))
	params.Set(apiKeyParam, c.apiKey)
	params.Set("outputsize", string(c.outputSize))
	params.Set("symbol", symbol)
	endpoint := c.endpoint + "?" + params.Encode()

	c.logger.Debug("requesting daily series", zap.String("symbol", symbol),
		zap.String("outputsize", string(c.outputSize)))

	// Construct the GET request with context for timeout/cancel support
	resp, err := httputil.Do(ctx, c.httpClient, c.retry, c.logger.With(zap.String("symbol", symbol)),
		func() (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		})
	if err != nil {
		return nil, apperr.WithSymbol(apperr.Network(opDaily, err, "request failed"), symbol)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperr.WithSymbol(
			apperr.Network(opDaily, nil, "HTTP %d: %s", resp.StatusCode, body), symbol)
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperr.WithSymbol(apperr.Parse(opDaily, err, "decode response"), symbol)
	}

	if !payload.HasDailySeries() {
		note := payload.ProviderMessage()
		if note == "" {
			note = DefaultRateLimitNote
		}
		return nil, apperr.WithSymbol(apperr.DataUnavailable(opDaily, "%s", note), symbol)
	}

	return payload, nil
}
