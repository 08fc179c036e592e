package analysis

import "gonum.org/v1/gonum/stat"

// Autocorrelation returns the normalized sample autocorrelation of data for
// lags 0..maxLag. Lag 0 is 1 unless the series is constant, in which case
// every lag is 0.
func Autocorrelation(data []float64, maxLag int) []float64 {
	if maxLag >= len(data) {
		maxLag = len(data) - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := stat.Mean(data, nil)
	denom := 0.0
	for _, v := range data {
		denom += (v - mean) * (v - mean)
	}

	acf := make([]float64, maxLag+1)
	if denom == 0 {
		return acf
	}
	for lag := range acf {
		sum := 0.0
		for i := 0; i+lag < len(data); i++ {
			sum += (data[i] - mean) * (data[i+lag] - mean)
		}
		acf[lag] = sum / denom
	}
	return acf
}
