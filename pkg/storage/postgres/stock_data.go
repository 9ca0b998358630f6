package postgres

import (
	"context"
	"errors"
	"time"

	"stockingest/internal/pricebar"
	"stockingest/pkg/storage/queries"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 500

// Upsert writes bars in one transaction. An existing (date, company) row has its
// OHLCV overwritten. Any failing row rolls back the whole call.
func (p *PostgresClient) Upsert(ctx context.Context, bars []pricebar.PriceBar) error {
	bars = pricebar.Dedupe(bars)
	if len(bars) == 0 {
		return nil
	}

	records := make([]StockDataRecord, len(bars))
	for i, b := range bars {
		records[i] = ToStockDataRecord(b)
	}

	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "date"},
				{Name: "company"},
			},
			DoUpdates: clause.AssignmentColumns(queries.UpsertColumns),
		}).CreateInBatches(&records, upsertBatchSize).Error
	})
	if err != nil {
		return classify("postgres.upsert", err)
	}

	return nil
}

// Get reads one stored bar, or nil if there is none.
func (p *PostgresClient) Get(ctx context.Context, symbol string, date time.Time) (*pricebar.PriceBar, error) {
	var record StockDataRecord
	err := p.DB.WithContext(ctx).
		Where("company = ? AND date = ?", symbol, pricebar.Truncate(date)).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("postgres.get", err)
	}

	bar := record.PriceBar()
	return &bar, nil
}

// Count returns the number of stored rows for symbol.
func (p *PostgresClient) Count(ctx context.Context, symbol string) (int64, error) {
	var n int64
	err := p.DB.WithContext(ctx).
		Model(&StockDataRecord{}).
		Where("company = ?", symbol).
		Count(&n).Error
	if err != nil {
		return 0, classify("postgres.count", err)
	}
	return n, nil
}

// DeletePriceBars removes every row of symbol. Used by tests to isolate fixtures.
func (p *PostgresClient) DeletePriceBars(ctx context.Context, symbol string) error {
	return p.DB.WithContext(ctx).
		Where("company = ?", symbol).
		Delete(&StockDataRecord{}).Error
}
