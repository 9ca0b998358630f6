// Package ingest drives fetch, normalize and upsert over a list of symbols.
package ingest

import (
	"context"
	"errors"
	"time"

	"stockingest/internal/apperr"
	"stockingest/internal/pricebar"
	"stockingest/pkg/alphavantage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fetcher returns the raw daily series payload for a symbol.
type Fetcher interface {
	GetDailySeries(ctx context.Context, symbol string) (alphavantage.Payload, error)
}

// Store persists normalized bars.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, bars []pricebar.PriceBar) error
}

type Pipeline struct {
	fetcher Fetcher
	store   Store
	logger  *zap.Logger
	now     func() time.Time
}

func NewPipeline(fetcher Fetcher, store Store, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Run ingests each symbol in order. A failing symbol is recorded and the loop
// moves on. The returned error is non-nil only when the store schema cannot be
// ensured, in which case nothing is fetched.
func (p *Pipeline) Run(ctx context.Context, symbols []string, filter pricebar.DateFilter) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.New(),
		Filter:    filter,
		StartedAt: p.now(),
	}
	logger := p.logger.With(
		zap.String("run_id", summary.RunID.String()),
		zap.String("dates", filter.String()),
	)

	if err := filter.Validate(); err != nil {
		return nil, apperr.Validation("ingest.run", err, "invalid date filter")
	}

	if err := p.store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", zap.Error(err))
		return nil, err
	}

	logger.Info("ingestion started", zap.Int("symbols", len(symbols)))

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			summary.add(SymbolResult{Symbol: symbol, Outcome: OutcomeFailed, Err: err})
			continue
		}

		rows, err := p.ingestSymbol(ctx, symbol, filter)
		var skip *skipError
		switch {
		case err == nil:
			logger.Info("stored price bars", zap.String("symbol", symbol), zap.Int("rows", rows))
			summary.add(SymbolResult{Symbol: symbol, Outcome: OutcomeOK, Rows: rows})
		case errors.As(err, &skip):
			logger.Warn("no data in range, skipping", zap.String("symbol", symbol), zap.Error(skip.err))
			summary.add(SymbolResult{Symbol: symbol, Outcome: OutcomeSkipped, Err: skip.err})
		default:
			logger.Warn("failed to ingest symbol", zap.String("symbol", symbol),
				zap.Stringer("kind", apperr.KindOf(err)), zap.Error(err))
			summary.add(SymbolResult{Symbol: symbol, Outcome: OutcomeFailed, Err: err})
		}
	}

	summary.FinishedAt = p.now()
	ok, skipped, failed := summary.Counts()
	logger.Info("ingestion finished",
		zap.Int("ok", ok),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Int("rows", summary.Rows()),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)),
	)

	return summary, nil
}

// skipError marks a range that matched no bars in an otherwise valid series.
type skipError struct{ err error }

func (e *skipError) Error() string { return e.err.Error() }
func (e *skipError) Unwrap() error { return e.err }

func (p *Pipeline) ingestSymbol(ctx context.Context, symbol string, filter pricebar.DateFilter) (int, error) {
	payload, err := p.fetcher.GetDailySeries(ctx, symbol)
	if err != nil {
		return 0, err
	}

	bars, err := alphavantage.ParseDailySeries(symbol, payload, filter)
	if err != nil {
		if !filter.Exact && errors.Is(err, apperr.ErrDataUnavailable) && payload.HasDailySeries() {
			return 0, &skipError{err: err}
		}
		return 0, err
	}

	if err := p.store.Upsert(ctx, bars); err != nil {
		return 0, apperr.WithSymbol(err, symbol)
	}
	return len(bars), nil
}
