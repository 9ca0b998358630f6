package sqlite

import (
	"context"
	"time"

	"stockingest/internal/apperr"
	"stockingest/internal/pricebar"
	"stockingest/pkg/storage/queries"

	"github.com/shopspring/decimal"
)

// DailyVariations returns High - Low for every stored row.
func (s *Store) DailyVariations(ctx context.Context) ([]pricebar.Variation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, queries.DailyVariation)
	if err != nil {
		return nil, classify("sqlite.daily_variation", err)
	}
	defer rows.Close()

	var out []pricebar.Variation
	for rows.Next() {
		var (
			v       pricebar.Variation
			dateStr string
		)
		if err := rows.Scan(&v.Company, &dateStr, &v.Variation); err != nil {
			return nil, classify("sqlite.daily_variation", err)
		}
		if v.Date, err = time.Parse(pricebar.DateLayout, dateStr); err != nil {
			return nil, apperr.Parse("sqlite.daily_variation", err, "stored date %q", dateStr)
		}
		v.Variation = round(v.Variation)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("sqlite.daily_variation", err)
	}
	return out, nil
}

// VolumeChanges returns the volume delta against the previous stored date of each company.
func (s *Store) VolumeChanges(ctx context.Context) ([]pricebar.VolumeChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, queries.DailyVolumeChange)
	if err != nil {
		return nil, classify("sqlite.volume_change", err)
	}
	defer rows.Close()

	var out []pricebar.VolumeChange
	for rows.Next() {
		var (
			c       pricebar.VolumeChange
			dateStr string
		)
		if err := rows.Scan(&c.Company, &dateStr, &c.VolumeChange); err != nil {
			return nil, classify("sqlite.volume_change", err)
		}
		if c.Date, err = time.Parse(pricebar.DateLayout, dateStr); err != nil {
			return nil, apperr.Parse("sqlite.volume_change", err, "stored date %q", dateStr)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("sqlite.volume_change", err)
	}
	return out, nil
}

// MedianVariations returns the median High - Low per company.
func (s *Store) MedianVariations(ctx context.Context) ([]pricebar.MedianVariation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, queries.MedianDailyVariation)
	if err != nil {
		return nil, classify("sqlite.median_variation", err)
	}
	defer rows.Close()

	var out []pricebar.MedianVariation
	for rows.Next() {
		var (
			company string
			median  decimal.Decimal
		)
		if err := rows.Scan(&company, &median); err != nil {
			return nil, classify("sqlite.median_variation", err)
		}
		out = append(out, pricebar.MedianVariation{Company: company, MedianDailyVariation: round(median)})
	}
	if err := rows.Err(); err != nil {
		return nil, classify("sqlite.median_variation", err)
	}
	return out, nil
}
