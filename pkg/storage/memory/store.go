// Package memory is an in-process price store. It backs dry runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"stockingest/internal/apperr"
	"stockingest/internal/pricebar"
)

type Store struct {
	mu   sync.RWMutex
	data map[string]map[string]pricebar.PriceBar // symbol -> date -> bar
}

func NewStore() *Store {
	return &Store{
		data: make(map[string]map[string]pricebar.PriceBar),
	}
}

func (s *Store) EnsureSchema(context.Context) error { return nil }

// Upsert stores bars, replacing any bar with the same (date, symbol).
// Bars are checked before any is applied so a bad batch changes nothing.
func (s *Store) Upsert(_ context.Context, bars []pricebar.PriceBar) error {
	for _, b := range bars {
		if err := b.Validate(); err != nil {
			return apperr.WithSymbol(apperr.StoreWrite("memory.upsert", err, "rejected bar %s", b.Date.Format(pricebar.DateLayout)), b.Symbol)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range bars {
		byDate, ok := s.data[b.Symbol]
		if !ok {
			byDate = make(map[string]pricebar.PriceBar)
			s.data[b.Symbol] = byDate
		}
		b.Date = pricebar.Truncate(b.Date)
		byDate[b.Date.Format(pricebar.DateLayout)] = b
	}
	return nil
}

// Get returns the bar for symbol on date, or nil.
func (s *Store) Get(_ context.Context, symbol string, date time.Time) (*pricebar.PriceBar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.data[symbol][date.Format(pricebar.DateLayout)]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *Store) Count(_ context.Context, symbol string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data[symbol])), nil
}

// All returns every bar ordered by symbol, then date.
func (s *Store) All() []pricebar.PriceBar {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []pricebar.PriceBar
	for _, byDate := range s.data {
		for _, b := range byDate {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func (s *Store) Close() error { return nil }
