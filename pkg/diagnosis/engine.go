package diagnosis

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"autocare/pkg/ml"
	"autocare/pkg/rules"
	"autocare/pkg/vitals"
)

// Prometheus metrics
var (
	diagnosesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "autocare", Subsystem: "diagnosis", Name: "runs_total", Help: "Total diagnosis runs by outcome."},
		[]string{"outcome"},
	)
	alertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "autocare", Subsystem: "diagnosis", Name: "alerts_total", Help: "Total alerts raised by label."},
		[]string{"alert"},
	)
	confidenceHist = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "autocare", Subsystem: "diagnosis", Name: "confidence_percent", Help: "Classifier confidence per diagnosis.",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}},
	)
)

func init() {
	_ = prometheus.Register(diagnosesTotal)
	_ = prometheus.Register(alertsTotal)
	_ = prometheus.Register(confidenceHist)
}

// Engine orchestrates one diagnosis request: rule evaluation and the
// classifier run concurrently (neither depends on the other), then their
// outputs are fused. The engine holds no per-request state, so repeated calls
// with the same reading and the same loaded assets yield the same verdict.
type Engine struct {
	predictor *ml.Predictor
}

// NewEngine creates a diagnosis engine over a predictor. The predictor may be
// backed by nil assets; diagnoses then carry the neutral prediction.
func NewEngine(predictor *ml.Predictor) *Engine {
	return &Engine{predictor: predictor}
}

// ModelAvailable reports whether the classifier assets were loaded.
func (e *Engine) ModelAvailable() bool { return e.predictor.Available() }

// RunDiagnosis computes the verdict for one reading. It never fails: missing
// vitals skip individual rules and an unavailable model degrades to a neutral
// prediction.
func (e *Engine) RunDiagnosis(ctx context.Context, r *vitals.Reading) Verdict {
	var (
		wg         sync.WaitGroup
		ruleAlerts []rules.Alert
		pred       ml.PredictionResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		ruleAlerts = rules.Evaluate(r)
	}()
	go func() {
		defer wg.Done()
		pred = e.predictor.Predict(r)
	}()
	wg.Wait()

	verdict := Fuse(ruleAlerts, pred)

	outcome := "alert"
	if verdict.Normal {
		outcome = "normal"
	}
	diagnosesTotal.WithLabelValues(outcome).Inc()
	for _, a := range verdict.Alerts {
		alertsTotal.WithLabelValues(a).Inc()
	}
	confidenceHist.Observe(verdict.Confidence)

	return verdict
}
