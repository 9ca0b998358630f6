package ingest

import (
	"testing"
	"time"

	"stockingest/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterFor(t *testing.T) {
	now := time.Date(2024, 5, 31, 1, 0, 0, 0, time.UTC)

	t.Run("daily uses yesterday in timezone", func(t *testing.T) {
		f, err := FilterFor(config.IngestConfig{Mode: config.ModeDaily, Timezone: "Asia/Kolkata"}, now)
		require.NoError(t, err)
		assert.True(t, f.Exact)
		assert.Equal(t, "on 2024-05-30", f.String())
	})

	t.Run("daily in UTC", func(t *testing.T) {
		f, err := FilterFor(config.IngestConfig{Mode: config.ModeDaily}, time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "on 2024-05-30", f.String())
	})

	t.Run("range", func(t *testing.T) {
		f, err := FilterFor(config.IngestConfig{
			Mode:      config.ModeRange,
			DateRange: config.DateRangeConfig{Start: "2020-01-01", End: "2024-05-31"},
		}, now)
		require.NoError(t, err)
		assert.False(t, f.Exact)
		assert.Equal(t, "between 2020-01-01 and 2024-05-31", f.String())
	})

	t.Run("bad range", func(t *testing.T) {
		_, err := FilterFor(config.IngestConfig{
			Mode:      config.ModeRange,
			DateRange: config.DateRangeConfig{Start: "2020-01-01", End: "yesterday"},
		}, now)
		assert.Error(t, err)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := FilterFor(config.IngestConfig{Mode: "weekly"}, now)
		assert.Error(t, err)
	})
}
