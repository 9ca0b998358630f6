package pricebar

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used by the provider, the store and the reports.
const DateLayout = "2006-01-02"

// PriceBar is one day's OHLCV for one symbol. (Date, Symbol) is the natural key.
type PriceBar struct {
	Date   time.Time       `json:"date"`   // midnight UTC of the trading day
	Symbol string          `json:"symbol"` // e.g. "TCS.BSE"
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Key identifies a bar in the store.
type Key struct {
	Date   string // YYYY-MM-DD
	Symbol string
}

func (b PriceBar) Key() Key {
	return Key{Date: b.Date.Format(DateLayout), Symbol: b.Symbol}
}

// Validate checks high >= low >= 0 and volume >= 0.
func (b PriceBar) Validate() error {
	if b.Low.IsNegative() {
		return fmt.Errorf("low %s is negative", b.Low)
	}
	if b.High.LessThan(b.Low) {
		return fmt.Errorf("high %s is below low %s", b.High, b.Low)
	}
	if b.Volume < 0 {
		return fmt.Errorf("volume %d is negative", b.Volume)
	}
	return nil
}

// Variation is High - Low for one company on one date.
type Variation struct {
	Company   string
	Date      time.Time
	Variation decimal.Decimal
}

// VolumeChange is Volume(t) - Volume(t-1) within one company, 0 on its first date.
type VolumeChange struct {
	Company      string
	Date         time.Time
	VolumeChange int64
}

// MedianVariation is the median of a company's daily High - Low.
type MedianVariation struct {
	Company              string
	MedianDailyVariation decimal.Decimal
}
