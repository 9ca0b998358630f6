package alphavantage

import (
	"encoding/json"
	"testing"
	"time"

	"stockingest/internal/apperr"
	"stockingest/internal/pricebar"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPayload(t *testing.T, body string) Payload {
	t.Helper()
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return p
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(pricebar.DateLayout, s)
	require.NoError(t, err)
	return d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

const threeDays = `{
	"Meta Data": {"2. Symbol": "INFY.BSE"},
	"Time Series (Daily)": {
		"2024-05-31": {"1. open": "1400.5", "2. high": "1420", "3. low": "1390.25", "4. close": "1410", "5. volume": "52000"},
		"2024-05-30": {"1. open": "1380", "2. high": "1405", "3. low": "1375", "4. close": "1400", "5. volume": "48000"},
		"2024-05-29": {"1. open": "1390", "2. high": "1395", "3. low": "1370", "4. close": "1380", "5. volume": "61000"}
	}
}`

func TestParseDailySeries_Example(t *testing.T) {
	payload := mustPayload(t, `{"Time Series (Daily)": {"2024-05-30": {"1. open":"100","2. high":"110","3. low":"95","4. close":"105","5. volume":"1000"}}}`)

	bars, err := ParseDailySeries("TCS.BSE", payload, pricebar.Day(day(t, "2024-05-30")))
	require.NoError(t, err)
	require.Len(t, bars, 1)

	bar := bars[0]
	assert.Equal(t, day(t, "2024-05-30"), bar.Date)
	assert.Equal(t, "TCS.BSE", bar.Symbol)
	assertDecimal(t, "100.0", bar.Open)
	assertDecimal(t, "110.0", bar.High)
	assertDecimal(t, "95.0", bar.Low)
	assertDecimal(t, "105.0", bar.Close)
	assert.Equal(t, int64(1000), bar.Volume)
}

func TestParseDailySeries_OneBarPerDateKeySorted(t *testing.T) {
	payload := mustPayload(t, threeDays)

	bars, err := ParseDailySeries("INFY.BSE", payload, pricebar.Range(day(t, "2000-01-01"), day(t, "2030-01-01")))
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, day(t, "2024-05-29"), bars[0].Date)
	assert.Equal(t, day(t, "2024-05-30"), bars[1].Date)
	assert.Equal(t, day(t, "2024-05-31"), bars[2].Date)
	for _, b := range bars {
		assert.Equal(t, "INFY.BSE", b.Symbol)
		assert.GreaterOrEqual(t, b.Volume, int64(0))
		assert.True(t, b.High.GreaterThanOrEqual(b.Low))
	}
	assertDecimal(t, "1390.25", bars[2].Low)
}

func TestParseDailySeries_RangeInclusive(t *testing.T) {
	payload := mustPayload(t, threeDays)

	bars, err := ParseDailySeries("INFY.BSE", payload, pricebar.Range(day(t, "2024-05-29"), day(t, "2024-05-30")))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, day(t, "2024-05-29"), bars[0].Date)
	assert.Equal(t, day(t, "2024-05-30"), bars[1].Date)
}

func TestParseDailySeries_EmptyAfterFilter(t *testing.T) {
	payload := mustPayload(t, threeDays)

	_, err := ParseDailySeries("INFY.BSE", payload, pricebar.Day(day(t, "2024-06-01")))
	require.ErrorIs(t, err, apperr.ErrDataUnavailable)
	assert.Contains(t, err.Error(), "on 2024-06-01")
	assert.Contains(t, err.Error(), "INFY.BSE")
}

func TestParseDailySeries_MissingSeries(t *testing.T) {
	t.Run("with note", func(t *testing.T) {
		payload := mustPayload(t, `{"Note": "Thank you for using Alpha Vantage!"}`)
		_, err := ParseDailySeries("SBIN.BSE", payload, pricebar.Day(day(t, "2024-05-30")))
		require.ErrorIs(t, err, apperr.ErrDataUnavailable)
		assert.Contains(t, err.Error(), "Thank you for using Alpha Vantage!")
	})
	t.Run("default message", func(t *testing.T) {
		_, err := ParseDailySeries("SBIN.BSE", Payload{}, pricebar.Day(day(t, "2024-05-30")))
		require.ErrorIs(t, err, apperr.ErrDataUnavailable)
		assert.Contains(t, err.Error(), DefaultRateLimitNote)
	})
}

func TestParseDailySeries_Rejects(t *testing.T) {
	all := pricebar.Range(day(t, "2000-01-01"), day(t, "2030-01-01"))

	tests := []struct {
		name string
		body string
		kind error
	}{
		{
			name: "high below low",
			body: `{"Time Series (Daily)": {"2024-05-30": {"1. open":"100","2. high":"90","3. low":"95","4. close":"92","5. volume":"1000"}}}`,
			kind: apperr.ErrValidation,
		},
		{
			name: "negative volume",
			body: `{"Time Series (Daily)": {"2024-05-30": {"1. open":"100","2. high":"110","3. low":"95","4. close":"105","5. volume":"-5"}}}`,
			kind: apperr.ErrValidation,
		},
		{
			name: "fractional volume",
			body: `{"Time Series (Daily)": {"2024-05-30": {"1. open":"100","2. high":"110","3. low":"95","4. close":"105","5. volume":"10.5"}}}`,
			kind: apperr.ErrValidation,
		},
		{
			name: "non numeric price",
			body: `{"Time Series (Daily)": {"2024-05-30": {"1. open":"abc","2. high":"110","3. low":"95","4. close":"105","5. volume":"1000"}}}`,
			kind: apperr.ErrValidation,
		},
		{
			name: "missing field",
			body: `{"Time Series (Daily)": {"2024-05-30": {"1. open":"100","2. high":"110","3. low":"95","5. volume":"1000"}}}`,
			kind: apperr.ErrValidation,
		},
		{
			name: "bad date key",
			body: `{"Time Series (Daily)": {"30/05/2024": {"1. open":"100","2. high":"110","3. low":"95","4. close":"105","5. volume":"1000"}}}`,
			kind: apperr.ErrValidation,
		},
		{
			name: "series not an object",
			body: `{"Time Series (Daily)": ["2024-05-30"]}`,
			kind: apperr.ErrParse,
		},
		{
			name: "entry not an object",
			body: `{"Time Series (Daily)": {"2024-05-30": "100"}}`,
			kind: apperr.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDailySeries("ITC.BSE", mustPayload(t, tt.body), all)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestParseDailySeries_NumericJSONValues(t *testing.T) {
	payload := mustPayload(t, `{"Time Series (Daily)": {"2024-05-30": {"1. open":100,"2. high":110.5,"3. low":95,"4. close":105,"5. volume":1000}}}`)

	bars, err := ParseDailySeries("LICI.BSE", payload, pricebar.Day(day(t, "2024-05-30")))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assertDecimal(t, "110.5", bars[0].High)
}

func TestParseDailySeries_IgnoresBadEntriesOutsideFilter(t *testing.T) {
	payload := mustPayload(t, `{"Time Series (Daily)": {
		"2024-05-30": {"1. open":"100","2. high":"110","3. low":"95","4. close":"105","5. volume":"1000"},
		"2001-01-02": {"1. open":"n/a","2. high":"110","3. low":"95","4. close":"105","5. volume":"1000"}
	}}`)

	bars, err := ParseDailySeries("HDFCBANK.BSE", payload, pricebar.Day(day(t, "2024-05-30")))
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}
