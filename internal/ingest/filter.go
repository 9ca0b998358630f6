package ingest

import (
	"fmt"
	"time"

	"stockingest/config"
	"stockingest/internal/pricebar"
)

// FilterFor builds the date filter for the configured mode. Daily mode keeps
// only the day before now in the configured timezone.
func FilterFor(cfg config.IngestConfig, now time.Time) (pricebar.DateFilter, error) {
	switch cfg.Mode {
	case config.ModeDaily:
		loc, err := cfg.Location()
		if err != nil {
			return pricebar.DateFilter{}, err
		}
		return pricebar.Day(pricebar.Yesterday(now, loc)), nil
	case config.ModeRange:
		start, end, err := cfg.DateRange.Parse()
		if err != nil {
			return pricebar.DateFilter{}, err
		}
		return pricebar.Range(start, end), nil
	default:
		return pricebar.DateFilter{}, fmt.Errorf("unknown ingest mode %q", cfg.Mode)
	}
}
