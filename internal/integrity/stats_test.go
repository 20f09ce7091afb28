package integrity

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	if got := mean(nil); got != 0 {
		t.Errorf("mean(nil) = %f, want 0", got)
	}
	if got := mean([]float64{2, 4, 6}); got != 4 {
		t.Errorf("mean = %f, want 4", got)
	}
}

func TestPopulationVariance(t *testing.T) {
	// Classic example: population variance 4, stddev 2.
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if got := populationVariance(values); math.Abs(got-4) > 1e-9 {
		t.Errorf("populationVariance = %f, want 4", got)
	}
	if got := populationStdDev(values); math.Abs(got-2) > 1e-9 {
		t.Errorf("populationStdDev = %f, want 2", got)
	}

	// A sample-variance implementation would return 32/7 here, not 4.
	// The divisor must be N.
	if got := populationVariance(values); math.Abs(got-32.0/7.0) < 1e-9 {
		t.Error("variance uses sample divisor N-1, want population divisor N")
	}

	if got := populationVariance(nil); got != 0 {
		t.Errorf("populationVariance(nil) = %f, want 0", got)
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-5, 0},
		{0, 0},
		{42, 42},
		{100, 100},
		{150, 100},
	}
	for _, tt := range tests {
		if got := clampScore(tt.in); got != tt.want {
			t.Errorf("clampScore(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
