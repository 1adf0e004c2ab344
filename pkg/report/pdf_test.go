package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autocare/pkg/diagnosis"
	"autocare/pkg/ml"
	"autocare/pkg/vitals"
)

func sampleData() Data {
	return Data{
		UserName:  "Alice Smith",
		UserEmail: "alice@example.com",
		Car:       CarInfo{Make: "Tata", Model: "Nexon", Year: 2021, Odometer: 42000},
		Reading: &vitals.Reading{
			OdometerKM:      vitals.Float(42000),
			EngineTempC:     vitals.Float(96),
			BatteryVoltageV: vitals.Float(12.8),
		},
		Verdict: diagnosis.Verdict{
			Alerts:     []string{"Engine Overheating"},
			Confidence: 81.7,
			Prediction: ml.PredictionResult{
				Label:      "Engine Overheating",
				Confidence: 81.7,
				Probabilities: []ml.ClassProbability{
					{Label: "Engine Overheating", Probability: 0.817},
					{Label: "Normal", Probability: 0.183},
				},
			},
		},
		GeneratedAt: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestGenerateProducesPDF(t *testing.T) {
	out, err := Generate(sampleData())
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output must start with the PDF magic")
}

func TestGenerateNormalVerdict(t *testing.T) {
	data := sampleData()
	data.Verdict = diagnosis.Verdict{Confidence: 92, Normal: true, Prediction: ml.PredictionResult{Label: "Normal", Confidence: 92}}

	out, err := Generate(data)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestGenerateNilReading(t *testing.T) {
	data := sampleData()
	data.Reading = nil

	out, err := Generate(data)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFileName(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 30, 5, 0, time.UTC)
	name := FileName(CarInfo{Make: "Tata", Model: "Nexon"}, at)
	assert.Equal(t, "Tata_Nexon_HealthReport_20250601_103005.pdf", name)
}
