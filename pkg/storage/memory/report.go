package memory

import (
	"context"
	"sort"

	"stockingest/internal/pricebar"

	"github.com/shopspring/decimal"
)

func (s *Store) DailyVariations(context.Context) ([]pricebar.Variation, error) {
	bars := s.All()
	out := make([]pricebar.Variation, len(bars))
	for i, b := range bars {
		out[i] = pricebar.Variation{Company: b.Symbol, Date: b.Date, Variation: b.High.Sub(b.Low)}
	}
	return out, nil
}

func (s *Store) VolumeChanges(context.Context) ([]pricebar.VolumeChange, error) {
	bars := s.All()
	out := make([]pricebar.VolumeChange, len(bars))
	for i, b := range bars {
		var delta int64
		if i > 0 && bars[i-1].Symbol == b.Symbol {
			delta = b.Volume - bars[i-1].Volume
		}
		out[i] = pricebar.VolumeChange{Company: b.Symbol, Date: b.Date, VolumeChange: delta}
	}
	return out, nil
}

func (s *Store) MedianVariations(context.Context) ([]pricebar.MedianVariation, error) {
	bars := s.All()

	var out []pricebar.MedianVariation
	for start := 0; start < len(bars); {
		end := start
		var vs []decimal.Decimal
		for end < len(bars) && bars[end].Symbol == bars[start].Symbol {
			vs = append(vs, bars[end].High.Sub(bars[end].Low))
			end++
		}
		out = append(out, pricebar.MedianVariation{Company: bars[start].Symbol, MedianDailyVariation: median(vs)})
		start = end
	}
	return out, nil
}

func median(vs []decimal.Decimal) decimal.Decimal {
	sort.Slice(vs, func(i, j int) bool { return vs[i].LessThan(vs[j]) })
	n := len(vs)
	if n%2 == 1 {
		return vs[n/2]
	}
	return vs[n/2-1].Add(vs[n/2]).Div(decimal.NewFromInt(2))
}
