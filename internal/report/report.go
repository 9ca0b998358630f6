// Package report exports the analytical queries of a store as CSV files.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"stockingest/internal/pricebar"

	"go.uber.org/zap"
)

const (
	VariationFile       = "daily_variation_of_prices.csv"
	VolumeChangeFile    = "daily_volume_change.csv"
	MedianVariationFile = "median_daily_variation.csv"
)

// Source runs the report queries.
type Source interface {
	DailyVariations(ctx context.Context) ([]pricebar.Variation, error)
	VolumeChanges(ctx context.Context) ([]pricebar.VolumeChange, error)
	MedianVariations(ctx context.Context) ([]pricebar.MedianVariation, error)
}

// Generate writes the three report files into dir, creating it if needed,
// and returns their paths.
func Generate(ctx context.Context, src Source, dir string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	steps := []struct {
		file string
		rows func() ([][]string, error)
	}{
		{VariationFile, func() ([][]string, error) { return variationRows(ctx, src) }},
		{VolumeChangeFile, func() ([][]string, error) { return volumeChangeRows(ctx, src) }},
		{MedianVariationFile, func() ([][]string, error) { return medianRows(ctx, src) }},
	}

	var paths []string
	for _, step := range steps {
		rows, err := step.rows()
		if err != nil {
			return paths, fmt.Errorf("%s: %w", step.file, err)
		}

		path := filepath.Join(dir, step.file)
		if err := writeCSV(path, rows); err != nil {
			return paths, fmt.Errorf("%s: %w", step.file, err)
		}

		logger.Info("report written", zap.String("path", path), zap.Int("rows", len(rows)-1))
		paths = append(paths, path)
	}
	return paths, nil
}

func variationRows(ctx context.Context, src Source) ([][]string, error) {
	vs, err := src.DailyVariations(ctx)
	if err != nil {
		return nil, err
	}
	rows := [][]string{{"Company", "Date", "Variation"}}
	for _, v := range vs {
		rows = append(rows, []string{v.Company, v.Date.Format(pricebar.DateLayout), v.Variation.String()})
	}
	return rows, nil
}

func volumeChangeRows(ctx context.Context, src Source) ([][]string, error) {
	cs, err := src.VolumeChanges(ctx)
	if err != nil {
		return nil, err
	}
	rows := [][]string{{"Company", "Date", "Volume_Change"}}
	for _, c := range cs {
		rows = append(rows, []string{c.Company, c.Date.Format(pricebar.DateLayout), strconv.FormatInt(c.VolumeChange, 10)})
	}
	return rows, nil
}

func medianRows(ctx context.Context, src Source) ([][]string, error) {
	ms, err := src.MedianVariations(ctx)
	if err != nil {
		return nil, err
	}
	rows := [][]string{{"Company", "median_daily_variation"}}
	for _, m := range ms {
		rows = append(rows, []string{m.Company, m.MedianDailyVariation.String()})
	}
	return rows, nil
}

// writeCSV writes to a temp file in the same directory and renames it over path,
// so a failed export never leaves a truncated report behind.
func writeCSV(path string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
