package integrity

import "math"

// mean returns the arithmetic mean, or 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationVariance returns the variance with divisor N (not N-1).
// Cohorts here are small, complete populations, so the sample correction
// would skew every threshold.
func populationVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

// populationStdDev returns the population standard deviation.
func populationStdDev(values []float64) float64 {
	return math.Sqrt(populationVariance(values))
}

// clampScore bounds a signal score to [0,100].
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
