package postgres

import (
	"time"

	"stockingest/internal/pricebar"
	"stockingest/pkg/storage/queries"

	"github.com/shopspring/decimal"
)

// StockDataRecord is one row of stock_data, keyed by (date, company).
type StockDataRecord struct {
	Date    time.Time `gorm:"type:date;primaryKey"`
	Company string    `gorm:"type:varchar(20);primaryKey"`

	Open  decimal.Decimal `gorm:"type:numeric;not null"`
	High  decimal.Decimal `gorm:"type:numeric;not null"`
	Low   decimal.Decimal `gorm:"type:numeric;not null"`
	Close decimal.Decimal `gorm:"type:numeric;not null"`

	Volume int64 `gorm:"type:bigint;not null;check:volume >= 0"`
}

// TableName overrides the default table name for GORM.
func (StockDataRecord) TableName() string {
	return queries.TableName
}

// ToStockDataRecord converts a PriceBar into a row for insertion.
func ToStockDataRecord(b pricebar.PriceBar) StockDataRecord {
	return StockDataRecord{
		Date:    pricebar.Truncate(b.Date),
		Company: b.Symbol,
		Open:    b.Open,
		High:    b.High,
		Low:     b.Low,
		Close:   b.Close,
		Volume:  b.Volume,
	}
}

// PriceBar converts the row back into the domain type.
func (r StockDataRecord) PriceBar() pricebar.PriceBar {
	return pricebar.PriceBar{
		Date:   pricebar.Truncate(r.Date),
		Symbol: r.Company,
		Open:   r.Open,
		High:   r.High,
		Low:    r.Low,
		Close:  r.Close,
		Volume: r.Volume,
	}
}
