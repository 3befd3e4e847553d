package analytics

import "sort"

// percentile computes the p-th percentile (0..100) of values using
// linear interpolation between closest ranks, the same convention the
// reference spreadsheets use. Returns 0 for an empty slice.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	pos := p / 100 * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// median is the 50th percentile.
func median(values []float64) float64 {
	return percentile(values, 50)
}

// rankPct returns the fractional rank of each value within the slice,
// aligned with the input order: average rank over ties, divided by the
// number of values. Matches dataframe-style rank(pct=true).
func rankPct(values []float64) []float64 {
	n := len(values)
	if n == 0 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// 1-based ranks averaged across the tie group.
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg / float64(n)
		}
		i = j + 1
	}
	return ranks
}

// pctChange returns the percentage change from prev to cur, or 0 when
// prev is zero.
func pctChange(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

// safeDiv returns num/den, or 0 when den is zero.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
