package pricebar

// Dedupe keeps the last bar for each key, preserving first-seen key order.
// A single INSERT ... ON CONFLICT DO UPDATE cannot touch the same row twice.
func Dedupe(bars []PriceBar) []PriceBar {
	idx := make(map[Key]int, len(bars))
	out := make([]PriceBar, 0, len(bars))
	for _, b := range bars {
		k := b.Key()
		if i, ok := idx[k]; ok {
			out[i] = b
			continue
		}
		idx[k] = len(out)
		out = append(out, b)
	}
	return out
}
