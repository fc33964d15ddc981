// Package metrics provides the numeric summaries reports use for PnL
// distributions.
package metrics

import (
	"math"
	"sort"
)

// Distribution summarizes a sample of float64 values.
type Distribution struct {
	Count  int
	Mean   float64
	Median float64
	P10    float64
	P90    float64
	Min    float64
	Max    float64
	Stddev float64
}

// Summarize computes the distribution of values. An empty sample yields
// the zero Distribution.
func Summarize(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := Mean(values)
	return Distribution{
		Count:  n,
		Mean:   mean,
		Median: Percentile(sorted, 0.5),
		P10:    Percentile(sorted, 0.1),
		P90:    Percentile(sorted, 0.9),
		Min:    sorted[0],
		Max:    sorted[n-1],
		Stddev: Stddev(values, mean),
	}
}

// Mean returns the arithmetic mean, 0 for an empty sample.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Stddev returns the sample standard deviation around mean.
func Stddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0 // Need at least 2 samples for sample stddev
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// Percentile returns the p-th percentile (0 <= p <= 1) of an ascending
// sorted sample, with linear interpolation between ranks.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	// Index for percentile (0-based, continuous)
	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	// Linear interpolation
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
