package postgres

import (
	"context"
	"time"

	"stockingest/internal/pricebar"
	"stockingest/pkg/storage/queries"

	"github.com/shopspring/decimal"
)

type variationRow struct {
	Company   string
	Date      time.Time
	Variation decimal.Decimal
}

type volumeChangeRow struct {
	Company      string
	Date         time.Time
	VolumeChange int64
}

type medianRow struct {
	Company              string
	MedianDailyVariation decimal.Decimal
}

// DailyVariations returns High - Low for every stored row.
func (p *PostgresClient) DailyVariations(ctx context.Context) ([]pricebar.Variation, error) {
	var rows []variationRow
	if err := p.DB.WithContext(ctx).Raw(queries.DailyVariation).Scan(&rows).Error; err != nil {
		return nil, classify("postgres.daily_variation", err)
	}

	out := make([]pricebar.Variation, len(rows))
	for i, r := range rows {
		out[i] = pricebar.Variation{
			Company:   r.Company,
			Date:      pricebar.Truncate(r.Date),
			Variation: r.Variation,
		}
	}
	return out, nil
}

// VolumeChanges returns the volume delta against the previous stored date of each company.
func (p *PostgresClient) VolumeChanges(ctx context.Context) ([]pricebar.VolumeChange, error) {
	var rows []volumeChangeRow
	if err := p.DB.WithContext(ctx).Raw(queries.DailyVolumeChange).Scan(&rows).Error; err != nil {
		return nil, classify("postgres.volume_change", err)
	}

	out := make([]pricebar.VolumeChange, len(rows))
	for i, r := range rows {
		out[i] = pricebar.VolumeChange{
			Company:      r.Company,
			Date:         pricebar.Truncate(r.Date),
			VolumeChange: r.VolumeChange,
		}
	}
	return out, nil
}

// MedianVariations returns the median High - Low per company.
func (p *PostgresClient) MedianVariations(ctx context.Context) ([]pricebar.MedianVariation, error) {
	var rows []medianRow
	if err := p.DB.WithContext(ctx).Raw(queries.MedianDailyVariation).Scan(&rows).Error; err != nil {
		return nil, classify("postgres.median_variation", err)
	}

	out := make([]pricebar.MedianVariation, len(rows))
	for i, r := range rows {
		out[i] = pricebar.MedianVariation{
			Company:              r.Company,
			MedianDailyVariation: r.MedianDailyVariation,
		}
	}
	return out, nil
}
