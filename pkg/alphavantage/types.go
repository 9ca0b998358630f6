package alphavantage

import (
	"encoding/json"
	"strings"
)

// Payload is a decoded response body, keyed by top-level field name.
// Values stay raw until the normalizer asks for them.
type Payload map[string]json.RawMessage

// HasDailySeries reports whether the payload carries a daily time series.
func (p Payload) HasDailySeries() bool {
	_, ok := p[SeriesKeyDaily]
	return ok
}

// ProviderMessage returns the provider's explanation for a missing series, if any.
func (p Payload) ProviderMessage() string {
	for _, key := range messageKeys {
		raw, ok := p[key]
		if !ok {
			continue
		}
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	return ""
}

// DailyEntry is one day of the daily series. The provider numbers its keys.
type DailyEntry struct {
	Open   numericText `json:"1. open"`
	High   numericText `json:"2. high"`
	Low    numericText `json:"3. low"`
	Close  numericText `json:"4. close"`
	Volume numericText `json:"5. volume"`
}

// numericText accepts both "123.4" and 123.4 and keeps the literal text.
type numericText string

func (n *numericText) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = numericText(strings.TrimSpace(s))
		return nil
	}
	if string(b) == "null" {
		*n = ""
		return nil
	}
	*n = numericText(b)
	return nil
}
