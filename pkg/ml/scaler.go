package ml

import "fmt"

// StandardScaler applies the standardization fitted at training time:
// (x - mean) / scale, elementwise. It is never refit here.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform standardizes one feature vector. The input is not modified.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) || len(x) != len(s.Scale) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		sc := s.Scale[i]
		if sc == 0 {
			// Zero-variance column at training time; pass through centered.
			sc = 1
		}
		out[i] = (v - s.Mean[i]) / sc
	}
	return out, nil
}
