package ingest

import (
	"errors"
	"fmt"
	"time"

	"stockingest/internal/pricebar"

	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// SymbolResult is what happened to one symbol in a run.
type SymbolResult struct {
	Symbol  string
	Outcome Outcome
	Rows    int
	Err     error
}

// RunSummary collects the per-symbol results of one Run.
type RunSummary struct {
	RunID      uuid.UUID
	Filter     pricebar.DateFilter
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []SymbolResult
}

func (s *RunSummary) add(r SymbolResult) {
	s.Results = append(s.Results, r)
}

// Counts returns the number of symbols per outcome.
func (s *RunSummary) Counts() (ok, skipped, failed int) {
	for _, r := range s.Results {
		switch r.Outcome {
		case OutcomeOK:
			ok++
		case OutcomeSkipped:
			skipped++
		case OutcomeFailed:
			failed++
		}
	}
	return ok, skipped, failed
}

// Rows returns the total number of bars written.
func (s *RunSummary) Rows() int {
	n := 0
	for _, r := range s.Results {
		n += r.Rows
	}
	return n
}

// Failed returns the symbols that failed, in run order.
func (s *RunSummary) Failed() []SymbolResult {
	var out []SymbolResult
	for _, r := range s.Results {
		if r.Outcome == OutcomeFailed {
			out = append(out, r)
		}
	}
	return out
}

// Err joins every symbol failure, or returns nil if none failed.
func (s *RunSummary) Err() error {
	var errs []error
	for _, r := range s.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", r.Symbol, r.Err))
	}
	return errors.Join(errs...)
}
