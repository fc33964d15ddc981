package metrics

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarize(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}

	d := Summarize(values)
	if d.Count != 10 {
		t.Errorf("Count = %d, want 10", d.Count)
	}
	if !almostEqual(d.Mean, 3.9) {
		t.Errorf("Mean = %g, want 3.9", d.Mean)
	}
	if !almostEqual(d.Min, 1) || !almostEqual(d.Max, 9) {
		t.Errorf("Min/Max = %g/%g, want 1/9", d.Min, d.Max)
	}
	// sorted: 1 1 2 3 3 4 5 5 6 9; median interpolates between ranks 4 and 5
	if !almostEqual(d.Median, 3.5) {
		t.Errorf("Median = %g, want 3.5", d.Median)
	}
	if !almostEqual(d.P10, 1) {
		t.Errorf("P10 = %g, want 1", d.P10)
	}
	// P90: idx 8.1, between 6 and 9
	if !almostEqual(d.P90, 6.3) {
		t.Errorf("P90 = %g, want 6.3", d.P90)
	}
	if d.Stddev <= 0 {
		t.Errorf("Stddev = %g, want > 0", d.Stddev)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if d := Summarize(nil); d != (Distribution{}) {
		t.Errorf("Summarize(nil) = %+v, want zero value", d)
	}
}

func TestSummarizeSingleValue(t *testing.T) {
	d := Summarize([]float64{2.5})
	if d.Count != 1 || d.Mean != 2.5 || d.Median != 2.5 || d.Min != 2.5 || d.Max != 2.5 {
		t.Errorf("d = %+v", d)
	}
	if d.Stddev != 0 {
		t.Errorf("Stddev = %g, want 0 for single sample", d.Stddev)
	}
}

func TestSummarizeDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Summarize(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input mutated: %v", values)
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %g, want 0", got)
	}
	if got := Mean([]float64{1, 2, 3}); !almostEqual(got, 2) {
		t.Errorf("Mean = %g, want 2", got)
	}
}

func TestStddev(t *testing.T) {
	if got := Stddev([]float64{5}, 5); got != 0 {
		t.Errorf("Stddev of one sample = %g, want 0", got)
	}
	// Sample stddev of {2, 4, 4, 4, 5, 5, 7, 9} around mean 5 is sqrt(32/7)
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Stddev(values, 5); !almostEqual(got, math.Sqrt(32.0/7.0)) {
		t.Errorf("Stddev = %g, want %g", got, math.Sqrt(32.0/7.0))
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	cases := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{1, 40},
		{0.5, 25},
		{1.0 / 3.0, 20},
	}
	for _, tc := range cases {
		if got := Percentile(sorted, tc.p); !almostEqual(got, tc.want) {
			t.Errorf("Percentile(p=%g) = %g, want %g", tc.p, got, tc.want)
		}
	}

	if got := Percentile(nil, 0.5); got != 0 {
		t.Errorf("Percentile(empty) = %g, want 0", got)
	}
	if got := Percentile([]float64{7}, 0.9); got != 7 {
		t.Errorf("Percentile(single) = %g, want 7", got)
	}
}
