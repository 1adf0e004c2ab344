// Package rules implements the threshold-based alert evaluator. Each rule is a
// fixed comparison against one vital; rules are independent, so a missing
// sensor value skips only the rule that needs it.
package rules

import "autocare/pkg/vitals"

// Alert names a detected vehicle condition.
type Alert string

const (
	AlertHighMileage       Alert = "Maintenance Due / High Mileage Warning"
	AlertEngineOverheating Alert = "Engine Overheating"
	AlertBatteryFailure    Alert = "Battery Failure"
	AlertLowOilPressure    Alert = "Low Oil Pressure Warning"
	AlertBrakePadsWorn     Alert = "Brake Pads Critically Worn"
	AlertSuspensionRisk    Alert = "Suspension Failure Risk"
	AlertLowTirePressure   Alert = "Low Tire Pressure"
	AlertCoolantLow        Alert = "Coolant Critically Low"
	AlertBrakeFluidLow     Alert = "Brake Fluid Critically Low"
	AlertTransOverheating  Alert = "Transmission Overheating"
)

// Thresholds for the rule table.
const (
	maxOdometerKM      = 300000
	maxEngineTempC     = 110
	minBatteryVoltageV = 12.0
	minOilPressureKPa  = 150
	minBrakePadWearMM  = 3
	minSuspensionPct   = 40
	minTirePressurePSI = 20
	minCoolantPct      = 30
	minBrakeFluidPct   = 20
	maxTransFluidTempC = 110
)

// rule is one threshold check. eval returns (triggered, applicable); a rule
// whose inputs are absent reports applicable=false and is skipped.
type rule struct {
	alert Alert
	eval  func(r *vitals.Reading) (bool, bool)
}

func above(v *float64, limit float64) (bool, bool) {
	if v == nil {
		return false, false
	}
	return *v > limit, true
}

func below(v *float64, limit float64) (bool, bool) {
	if v == nil {
		return false, false
	}
	return *v < limit, true
}

var table = []rule{
	{AlertHighMileage, func(r *vitals.Reading) (bool, bool) { return above(r.OdometerKM, maxOdometerKM) }},
	{AlertEngineOverheating, func(r *vitals.Reading) (bool, bool) { return above(r.EngineTempC, maxEngineTempC) }},
	{AlertBatteryFailure, func(r *vitals.Reading) (bool, bool) { return below(r.BatteryVoltageV, minBatteryVoltageV) }},
	{AlertLowOilPressure, func(r *vitals.Reading) (bool, bool) { return below(r.OilPressureKPa, minOilPressureKPa) }},
	{AlertBrakePadsWorn, brakePadRule},
	{AlertSuspensionRisk, func(r *vitals.Reading) (bool, bool) { return below(r.SuspensionHealthPct, minSuspensionPct) }},
	{AlertLowTirePressure, func(r *vitals.Reading) (bool, bool) { return below(r.TirePressurePSIFL, minTirePressurePSI) }},
	{AlertCoolantLow, func(r *vitals.Reading) (bool, bool) { return below(r.CoolantLevelPct, minCoolantPct) }},
	{AlertBrakeFluidLow, func(r *vitals.Reading) (bool, bool) { return below(r.BrakeFluidLevelPct, minBrakeFluidPct) }},
	{AlertTransOverheating, func(r *vitals.Reading) (bool, bool) { return above(r.TransmissionFluidTempC, maxTransFluidTempC) }},
}

// brakePadRule fires when either pad set is below the wear limit. The rear
// reading defaults to exactly the limit when absent, which by itself can never
// trigger (3 < 3 is false). A missing front reading skips the whole rule.
func brakePadRule(r *vitals.Reading) (bool, bool) {
	if r.BrakePadWearMMFront == nil {
		return false, false
	}
	front := *r.BrakePadWearMMFront
	rear := r.RearBrakeWearOrDefault()
	return front < minBrakePadWearMM || rear < minBrakePadWearMM, true
}

// Evaluate applies the full rule table to one reading and returns the
// triggered alerts in table order. The result is set-like: an alert appears at
// most once. Evaluation is pure and never fails; rules whose inputs are
// missing are silently skipped.
func Evaluate(r *vitals.Reading) []Alert {
	if r == nil {
		return nil
	}
	alerts := make([]Alert, 0, 4)
	for _, rl := range table {
		triggered, ok := rl.eval(r)
		if ok && triggered {
			alerts = append(alerts, rl.alert)
		}
	}
	return alerts
}
