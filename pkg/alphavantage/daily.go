package alphavantage

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"stockingest/internal/apperr"
	"stockingest/internal/pricebar"

	"github.com/shopspring/decimal"
)

const opNormalize = "alphavantage.normalize"

// ParseDailySeries converts the daily series of payload into PriceBars for symbol,
// keeping only the days accepted by filter. Bars are returned in date order.
//
// Days outside the filter are not parsed beyond their date key, so a malformed
// entry far in the past does not block ingestion of recent days.
func ParseDailySeries(symbol string, payload Payload, filter pricebar.DateFilter) ([]pricebar.PriceBar, error) {
	raw, ok := payload[SeriesKeyDaily]
	if !ok {
		note := payload.ProviderMessage()
		if note == "" {
			note = DefaultRateLimitNote
		}
		return nil, apperr.WithSymbol(apperr.DataUnavailable(opNormalize, "%s", note), symbol)
	}

	var series map[string]json.RawMessage
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, apperr.WithSymbol(apperr.Parse(opNormalize, err, "daily series is not an object"), symbol)
	}

	out := make([]pricebar.PriceBar, 0, len(series))
	for day, rawEntry := range series {
		date, err := time.Parse(pricebar.DateLayout, day)
		if err != nil {
			return nil, apperr.WithSymbol(apperr.Validation(opNormalize, err, "invalid date key %q", day), symbol)
		}
		if !filter.Match(date) {
			continue
		}

		var entry DailyEntry
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			return nil, apperr.WithSymbol(apperr.Parse(opNormalize, err, "entry %s is not an object", day), symbol)
		}

		bar, err := entry.toPriceBar(symbol, date)
		if err != nil {
			return nil, apperr.WithSymbol(apperr.Validation(opNormalize, err, "entry %s", day), symbol)
		}
		out = append(out, bar)
	}

	if len(out) == 0 {
		return nil, apperr.WithSymbol(
			apperr.DataUnavailable(opNormalize, "no data available %s", filter), symbol)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (e DailyEntry) toPriceBar(symbol string, date time.Time) (pricebar.PriceBar, error) {
	open, err := parseDecimal("open", e.Open)
	if err != nil {
		return pricebar.PriceBar{}, err
	}
	high, err := parseDecimal("high", e.High)
	if err != nil {
		return pricebar.PriceBar{}, err
	}
	low, err := parseDecimal("low", e.Low)
	if err != nil {
		return pricebar.PriceBar{}, err
	}
	closePrice, err := parseDecimal("close", e.Close)
	if err != nil {
		return pricebar.PriceBar{}, err
	}
	volume, err := strconv.ParseInt(string(e.Volume), 10, 64)
	if err != nil {
		return pricebar.PriceBar{}, &fieldError{field: "volume", value: string(e.Volume), err: err}
	}

	bar := pricebar.PriceBar{
		Date:   date,
		Symbol: symbol,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}
	if err := bar.Validate(); err != nil {
		return pricebar.PriceBar{}, err
	}
	return bar, nil
}

func parseDecimal(field string, v numericText) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(string(v))
	if err != nil {
		return decimal.Decimal{}, &fieldError{field: field, value: string(v), err: err}
	}
	return d, nil
}

type fieldError struct {
	field string
	value string
	err   error
}

func (e *fieldError) Error() string {
	return "field " + e.field + " has invalid value " + strconv.Quote(e.value) + ": " + e.err.Error()
}

func (e *fieldError) Unwrap() error { return e.err }
