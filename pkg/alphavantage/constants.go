package alphavantage

import "fmt"

// DefaultEndpoint is the public Alpha Vantage query endpoint.
const DefaultEndpoint = "https://www.alphavantage.co/query"

// DefaultRateLimitNote is reported when the provider omits the series without saying why.
const DefaultRateLimitNote = "Exceeded API rate limit of 25 requests per minute."

// Function is the value of the "function" query parameter.
type Function string

const (
	FunctionDaily Function = "TIME_SERIES_DAILY"
)

// SeriesKeyDaily is the payload key holding the daily series.
const SeriesKeyDaily = "Time Series (Daily)"

// OutputSize is the value of the "outputsize" query parameter.
type OutputSize string

const (
	OutputSizeCompact OutputSize = "compact" // latest 100 data points
	OutputSizeFull    OutputSize = "full"    // full history
)

// ParseOutputSize parses a config value; empty means full.
func ParseOutputSize(s string) (OutputSize, error) {
	switch OutputSize(s) {
	case "", OutputSizeFull:
		return OutputSizeFull, nil
	case OutputSizeCompact:
		return OutputSizeCompact, nil
	}
	return "", fmt.Errorf("invalid output size: %s", s)
}

// message keys the provider uses instead of a series when it refuses a request
var messageKeys = []string{"Note", "Information", "Error Message"}
