// Package diagnosis fuses the rule evaluator's alerts with the failure
// classifier's prediction into a single verdict per request.
package diagnosis

import "autocare/pkg/ml"

// Verdict is the final fused diagnosis for one reading. It is created fresh
// per request, immutable once produced, and carries everything the dashboard
// and the report generator need; nothing is recomputed downstream.
//
// Confidence is always the classifier's raw confidence. When the alert set is
// empty it reads as confidence in normal status rather than confidence in a
// failure; Normal makes that state explicit.
type Verdict struct {
	Alerts     []string            `json:"alerts"`
	Confidence float64             `json:"confidence"`
	Normal     bool                `json:"normal"`
	Prediction ml.PredictionResult `json:"prediction"`
}

// MultipleIssues reports whether more than one alert was raised. All alerts
// carry equal severity; this only lets the UI flag the aggregate.
func (v Verdict) MultipleIssues() bool { return len(v.Alerts) > 1 }
