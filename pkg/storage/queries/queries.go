// Package queries holds the DDL and report SQL shared by the relational stores.
// Statements are written in the subset of SQL accepted by both PostgreSQL and SQLite.
package queries

// TableName is the price table every store writes to.
const TableName = "stock_data"

// UpsertColumns are overwritten when a (date, company) row already exists.
var UpsertColumns = []string{"open", "high", "low", "close", "volume"}

// DailyVariation lists High - Low per company and date.
const DailyVariation = `
SELECT company, date, high - low AS variation
FROM stock_data
ORDER BY company, date`

// DailyVolumeChange lists the volume delta against the previous stored date of
// the same company; the first date of each company gets 0.
const DailyVolumeChange = `
WITH volume_changes AS (
	SELECT
		company,
		date,
		volume - LAG(volume) OVER (PARTITION BY company ORDER BY date) AS volume_change
	FROM stock_data
)
SELECT company, date, COALESCE(volume_change, 0) AS volume_change
FROM volume_changes
ORDER BY company, date`

// MedianDailyVariation averages the one or two middle ranked High - Low values per company.
// Ties are broken by date so the ascending and descending ranks mirror each other.
const MedianDailyVariation = `
WITH daily_variations AS (
	SELECT company, date, high - low AS daily_variation
	FROM stock_data
),
ranked_variations AS (
	SELECT
		company,
		daily_variation,
		ROW_NUMBER() OVER (PARTITION BY company ORDER BY daily_variation, date) AS row_asc,
		ROW_NUMBER() OVER (PARTITION BY company ORDER BY daily_variation DESC, date DESC) AS row_desc
	FROM daily_variations
)
SELECT company, AVG(daily_variation) AS median_daily_variation
FROM ranked_variations
WHERE row_asc IN (row_desc, row_desc - 1, row_desc + 1)
GROUP BY company
ORDER BY company`
