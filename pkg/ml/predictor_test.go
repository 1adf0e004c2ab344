package ml

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"autocare/pkg/vitals"
)

// testAssets builds a small deterministic bundle over the full training
// column set: the eleven raw vitals plus the two engineered features.
func testAssets() *Assets {
	columns := []string{
		"odometer_km", "engine_temp_c", "battery_voltage_v", "oil_pressure_kpa",
		"brake_pad_wear_mm_front", "brake_pad_wear_mm_rear", "suspension_health_pct",
		"tire_pressure_psi_fl", "coolant_level_pct", "brake_fluid_level_pct",
		"transmission_fluid_temp_c", "temp_pressure_ratio", "total_brake_wear",
	}
	n := len(columns)

	zeros := func() []float64 { return make([]float64, n) }
	ones := func() []float64 {
		v := make([]float64, n)
		for i := range v {
			v[i] = 1
		}
		return v
	}

	// Three classes in encoder order. Weights pick out single columns so the
	// winner is easy to reason about in tests: engine_temp_c drives class 1,
	// low battery_voltage_v drives class 0, class 2 carries a flat bias.
	weights := make([][]float64, 3)
	for i := range weights {
		weights[i] = zeros()
	}
	weights[0][2] = -1.2 // battery_voltage_v
	weights[1][1] = 0.05 // engine_temp_c
	weights[2] = zeros()

	return &Assets{
		Classifier: &Classifier{
			Weights:    weights,
			Intercepts: []float64{10.0, 0.0, 5.0},
		},
		Scaler:  &StandardScaler{Mean: zeros(), Scale: ones()},
		Encoder: &LabelEncoder{Classes: []string{"Battery Failure", "Engine Overheating", "Normal"}},
		Columns: columns,
	}
}

func healthyReading() *vitals.Reading {
	return &vitals.Reading{
		OdometerKM:             vitals.Float(50000),
		EngineTempC:            vitals.Float(95),
		BatteryVoltageV:        vitals.Float(13.8),
		OilPressureKPa:         vitals.Float(300),
		BrakePadWearMMFront:    vitals.Float(8),
		BrakePadWearMMRear:     vitals.Float(8),
		SuspensionHealthPct:    vitals.Float(80),
		TirePressurePSIFL:      vitals.Float(32),
		CoolantLevelPct:        vitals.Float(90),
		BrakeFluidLevelPct:     vitals.Float(90),
		TransmissionFluidTempC: vitals.Float(90),
	}
}

func TestPredictorUnavailable(t *testing.T) {
	p := NewPredictor(nil)
	if p.Available() {
		t.Fatal("predictor without assets must report unavailable")
	}
	res := p.Predict(healthyReading())
	if !res.Unavailable {
		t.Error("expected unavailable result")
	}
	if res.Label != LabelModelNotLoaded {
		t.Errorf("got label %q, want %q", res.Label, LabelModelNotLoaded)
	}
	if res.Confidence != 0 {
		t.Errorf("unavailable result must carry zero confidence, got %f", res.Confidence)
	}
	if res.Probabilities != nil {
		t.Error("unavailable result must carry no distribution")
	}
}

func TestPredictDistribution(t *testing.T) {
	p := NewPredictor(testAssets())
	res := p.Predict(healthyReading())

	if res.Unavailable {
		t.Fatal("prediction should be available")
	}
	if res.Confidence < 0 || res.Confidence > 100 {
		t.Errorf("confidence out of range: %f", res.Confidence)
	}
	if len(res.Probabilities) != 3 {
		t.Fatalf("expected 3 class probabilities, got %d", len(res.Probabilities))
	}

	sum := 0.0
	maxProb := 0.0
	for _, cp := range res.Probabilities {
		sum += cp.Probability
		if cp.Probability > maxProb {
			maxProb = cp.Probability
		}
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("distribution sums to %f, expected 1.0", sum)
	}
	if math.Abs(res.Confidence-maxProb*100) > 1e-9 {
		t.Errorf("confidence %f does not match max probability %f", res.Confidence, maxProb*100)
	}
}

func TestPredictMissingFieldsDoesNotFail(t *testing.T) {
	p := NewPredictor(testAssets())

	tests := []struct {
		name    string
		reading *vitals.Reading
	}{
		{"empty reading", &vitals.Reading{}},
		{"nil reading", nil},
		{"partial reading", &vitals.Reading{EngineTempC: vitals.Float(95)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Predict(tt.reading)
			if res.Unavailable {
				t.Fatal("prediction must degrade, not go unavailable, on missing inputs")
			}
			if res.Confidence < 0 || res.Confidence > 100 {
				t.Errorf("confidence out of range: %f", res.Confidence)
			}
			if res.Label == "" {
				t.Error("expected a decoded label")
			}
		})
	}
}

func TestEngineerFeatures(t *testing.T) {
	r := &vitals.Reading{
		EngineTempC:         vitals.Float(100),
		OilPressureKPa:      vitals.Float(200),
		BrakePadWearMMFront: vitals.Float(5),
		// rear absent: total_brake_wear falls back to 0, no default applies here
	}
	features := engineerFeatures(r)

	wantRatio := 100.0 / (200.0 + epsilon)
	if math.Abs(features["temp_pressure_ratio"]-wantRatio) > 1e-12 {
		t.Errorf("temp_pressure_ratio = %f, want %f", features["temp_pressure_ratio"], wantRatio)
	}
	if features["total_brake_wear"] != 0 {
		t.Errorf("total_brake_wear = %f, want 0 when rear wear is missing", features["total_brake_wear"])
	}

	r.BrakePadWearMMRear = vitals.Float(4)
	features = engineerFeatures(r)
	if features["total_brake_wear"] != 9 {
		t.Errorf("total_brake_wear = %f, want 9", features["total_brake_wear"])
	}

	// Ratio degrades to 0 when either input is missing.
	features = engineerFeatures(&vitals.Reading{EngineTempC: vitals.Float(100)})
	if features["temp_pressure_ratio"] != 0 {
		t.Errorf("temp_pressure_ratio = %f, want 0 when oil pressure is missing", features["temp_pressure_ratio"])
	}
}

func TestLoadAssets(t *testing.T) {
	dir := t.TempDir()
	assets := testAssets()

	writeArtifact := func(name string, v interface{}) {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %s: %v", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	writeArtifact(ModelFile, assets.Classifier)
	writeArtifact(ScalerFile, assets.Scaler)
	writeArtifact(EncoderFile, assets.Encoder)
	writeArtifact(ColumnsFile, assets.Columns)

	loaded, err := LoadAssets(dir)
	if err != nil {
		t.Fatalf("LoadAssets failed: %v", err)
	}
	if got := loaded.Encoder.NumClasses(); got != 3 {
		t.Errorf("loaded encoder has %d classes, want 3", got)
	}

	res := NewPredictor(loaded).Predict(healthyReading())
	if res.Unavailable {
		t.Fatal("loaded assets should produce a real prediction")
	}
}

func TestLoadAssetsMissingArtifact(t *testing.T) {
	dir := t.TempDir()
	// Only the scaler is present; the bundle is incomplete.
	data, _ := json.Marshal(&StandardScaler{Mean: []float64{0}, Scale: []float64{1}})
	if err := os.WriteFile(filepath.Join(dir, ScalerFile), data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAssets(dir); err == nil {
		t.Fatal("expected error for incomplete asset bundle")
	}
}
