package ml

import (
	"log"

	"autocare/pkg/vitals"
)

// LabelModelNotLoaded is the sentinel label returned when the model assets
// are unavailable. Downstream fusion treats it as "no prediction".
const LabelModelNotLoaded = "Model not loaded"

// epsilon keeps the engineered ratio finite when oil pressure reads zero.
const epsilon = 1e-6

// Engineered feature names appended by the training pipeline.
const (
	featTempPressureRatio = "temp_pressure_ratio"
	featTotalBrakeWear    = "total_brake_wear"
)

// ClassProbability pairs one trained label with its predicted probability.
type ClassProbability struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// PredictionResult carries the classifier verdict for one reading: the
// decoded label, its confidence as a percentage in [0,100], and the full
// per-class distribution in the encoder's class order. Unavailable marks the
// neutral "no prediction" result used when the model assets failed to load.
type PredictionResult struct {
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities []ClassProbability `json:"probabilities,omitempty"`
	Unavailable   bool               `json:"unavailable,omitempty"`
}

// Predictor runs the pre-trained failure classifier over vitals readings.
// A Predictor with nil assets is valid and always answers with the
// unavailable sentinel; prediction never returns an error mid-diagnosis.
type Predictor struct {
	assets *Assets
}

// NewPredictor wraps a loaded asset bundle. assets may be nil.
func NewPredictor(assets *Assets) *Predictor {
	return &Predictor{assets: assets}
}

// Available reports whether the model assets were loaded.
func (p *Predictor) Available() bool { return p.assets != nil }

func unavailableResult() PredictionResult {
	return PredictionResult{Label: LabelModelNotLoaded, Confidence: 0, Unavailable: true}
}

// Predict classifies one reading. Missing inputs never fail the call: absent
// engineered-feature inputs are substituted with 0.0 and absent training
// columns are filled with 0, matching the training pipeline's fill policy.
func (p *Predictor) Predict(r *vitals.Reading) PredictionResult {
	if p.assets == nil {
		return unavailableResult()
	}

	features := engineerFeatures(r)
	vector := make([]float64, len(p.assets.Columns))
	for i, col := range p.assets.Columns {
		vector[i] = features[col] // zero fill for absent columns
	}

	scaled, err := p.assets.Scaler.Transform(vector)
	if err != nil {
		log.Printf("[predictor] scaler rejected feature vector: %v", err)
		return unavailableResult()
	}

	classIdx, probs, err := p.assets.Classifier.Predict(scaled)
	if err != nil {
		log.Printf("[predictor] classification failed: %v", err)
		return unavailableResult()
	}

	label, err := p.assets.Encoder.Decode(classIdx)
	if err != nil {
		log.Printf("[predictor] label decode failed: %v", err)
		return unavailableResult()
	}

	dist := make([]ClassProbability, len(probs))
	maxProb := 0.0
	for i, prob := range probs {
		dist[i] = ClassProbability{Label: p.assets.Encoder.Classes[i], Probability: prob}
		if prob > maxProb {
			maxProb = prob
		}
	}

	return PredictionResult{
		Label:         label,
		Confidence:    maxProb * 100,
		Probabilities: dist,
	}
}

// engineerFeatures flattens the reading and appends the two derived features.
// Derivations whose inputs are missing yield 0.0 instead of failing.
func engineerFeatures(r *vitals.Reading) map[string]float64 {
	features := map[string]float64{}
	if r != nil {
		features = r.ToMap()
	}

	ratio := 0.0
	if r != nil && r.EngineTempC != nil && r.OilPressureKPa != nil {
		ratio = *r.EngineTempC / (*r.OilPressureKPa + epsilon)
	}
	features[featTempPressureRatio] = ratio

	brakeWear := 0.0
	if r != nil && r.BrakePadWearMMFront != nil && r.BrakePadWearMMRear != nil {
		brakeWear = *r.BrakePadWearMMFront + *r.BrakePadWearMMRear
	}
	features[featTotalBrakeWear] = brakeWear

	return features
}
