package rules

import (
	"testing"

	"autocare/pkg/vitals"
)

// healthyReading returns vitals with every monitored value inside its safe band.
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

func TestEvaluateHealthyVehicle(t *testing.T) {
	alerts := Evaluate(healthyReading())
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts for healthy vitals, got %v", alerts)
	}
}

func TestEvaluateRulesFireIndependently(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *vitals.Reading)
		want   Alert
	}{
		{"high mileage", func(r *vitals.Reading) { r.OdometerKM = vitals.Float(320000) }, AlertHighMileage},
		{"engine overheating", func(r *vitals.Reading) { r.EngineTempC = vitals.Float(115) }, AlertEngineOverheating},
		{"battery failure", func(r *vitals.Reading) { r.BatteryVoltageV = vitals.Float(11.5) }, AlertBatteryFailure},
		{"low oil pressure", func(r *vitals.Reading) { r.OilPressureKPa = vitals.Float(120) }, AlertLowOilPressure},
		{"front brakes worn", func(r *vitals.Reading) { r.BrakePadWearMMFront = vitals.Float(2) }, AlertBrakePadsWorn},
		{"rear brakes worn", func(r *vitals.Reading) { r.BrakePadWearMMRear = vitals.Float(2.5) }, AlertBrakePadsWorn},
		{"suspension risk", func(r *vitals.Reading) { r.SuspensionHealthPct = vitals.Float(35) }, AlertSuspensionRisk},
		{"low tire pressure", func(r *vitals.Reading) { r.TirePressurePSIFL = vitals.Float(18) }, AlertLowTirePressure},
		{"coolant low", func(r *vitals.Reading) { r.CoolantLevelPct = vitals.Float(25) }, AlertCoolantLow},
		{"brake fluid low", func(r *vitals.Reading) { r.BrakeFluidLevelPct = vitals.Float(15) }, AlertBrakeFluidLow},
		{"transmission overheating", func(r *vitals.Reading) { r.TransmissionFluidTempC = vitals.Float(115) }, AlertTransOverheating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := healthyReading()
			tt.mutate(r)
			alerts := Evaluate(r)
			if len(alerts) != 1 {
				t.Fatalf("expected exactly one alert, got %v", alerts)
			}
			if alerts[0] != tt.want {
				t.Errorf("expected %q, got %q", tt.want, alerts[0])
			}
		})
	}
}

// The rear wear default sits exactly on the threshold: 3 < 3 is false, so a
// healthy front pad with no rear reading must not raise a brake alert.
func TestEvaluateRearBrakeDefaultBoundary(t *testing.T) {
	r := healthyReading()
	r.BrakePadWearMMFront = vitals.Float(8)
	r.BrakePadWearMMRear = nil

	for _, a := range Evaluate(r) {
		if a == AlertBrakePadsWorn {
			t.Fatalf("brake alert must not fire with front=8 and rear defaulted to %v", vitals.DefaultRearBrakeWearMM)
		}
	}
}

func TestEvaluateMissingInputsSkipOnlyThatRule(t *testing.T) {
	// Engine temp is missing but over-threshold mileage must still be caught.
	r := healthyReading()
	r.EngineTempC = nil
	r.OdometerKM = vitals.Float(320000)

	alerts := Evaluate(r)
	if len(alerts) != 1 || alerts[0] != AlertHighMileage {
		t.Fatalf("expected only %q, got %v", AlertHighMileage, alerts)
	}
}

func TestEvaluateEmptyReading(t *testing.T) {
	if alerts := Evaluate(&vitals.Reading{}); len(alerts) != 0 {
		t.Fatalf("expected no alerts for empty reading, got %v", alerts)
	}
	if alerts := Evaluate(nil); len(alerts) != 0 {
		t.Fatalf("expected no alerts for nil reading, got %v", alerts)
	}
}

func TestEvaluateBoundaryValuesDoNotTrigger(t *testing.T) {
	// All comparisons are strict; values exactly at the threshold are safe.
	r := healthyReading()
	r.OdometerKM = vitals.Float(300000)
	r.EngineTempC = vitals.Float(110)
	r.BatteryVoltageV = vitals.Float(12.0)
	r.OilPressureKPa = vitals.Float(150)
	r.BrakePadWearMMFront = vitals.Float(3)
	r.BrakePadWearMMRear = vitals.Float(3)
	r.SuspensionHealthPct = vitals.Float(40)
	r.TirePressurePSIFL = vitals.Float(20)
	r.CoolantLevelPct = vitals.Float(30)
	r.BrakeFluidLevelPct = vitals.Float(20)
	r.TransmissionFluidTempC = vitals.Float(110)

	if alerts := Evaluate(r); len(alerts) != 0 {
		t.Fatalf("threshold-exact vitals must not alert, got %v", alerts)
	}
}
