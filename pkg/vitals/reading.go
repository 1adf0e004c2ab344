// Package vitals defines the sensor-like readings describing a vehicle's
// instantaneous condition. Every field is optional: incomplete sensor input is
// normal operating mode, and downstream consumers are expected to skip checks
// whose inputs are absent rather than fail the whole evaluation.
package vitals

// DefaultRearBrakeWearMM is assumed for the rear brake pads when the reading
// is absent. The value sits exactly on the wear threshold, so the default
// alone never triggers a brake alert.
const DefaultRearBrakeWearMM = 3.0

// Reading holds one set of vehicle vitals. Nil means the sensor value was not
// provided. Field names and JSON keys follow the upstream telemetry schema.
type Reading struct {
	OdometerKM             *float64 `json:"odometer_km,omitempty"`
	EngineTempC            *float64 `json:"engine_temp_c,omitempty"`
	BatteryVoltageV        *float64 `json:"battery_voltage_v,omitempty"`
	OilPressureKPa         *float64 `json:"oil_pressure_kpa,omitempty"`
	BrakePadWearMMFront    *float64 `json:"brake_pad_wear_mm_front,omitempty"`
	BrakePadWearMMRear     *float64 `json:"brake_pad_wear_mm_rear,omitempty"`
	SuspensionHealthPct    *float64 `json:"suspension_health_pct,omitempty"`
	TirePressurePSIFL      *float64 `json:"tire_pressure_psi_fl,omitempty"`
	CoolantLevelPct        *float64 `json:"coolant_level_pct,omitempty"`
	BrakeFluidLevelPct     *float64 `json:"brake_fluid_level_pct,omitempty"`
	TransmissionFluidTempC *float64 `json:"transmission_fluid_temp_c,omitempty"`
}

// Float is a convenience for building readings literally in code and tests.
func Float(v float64) *float64 { return &v }

// ToMap flattens the present fields into a name -> value map keyed by the
// telemetry schema names. Absent fields are omitted entirely so feature
// assembly can apply its own fill policy.
func (r *Reading) ToMap() map[string]float64 {
	m := make(map[string]float64, 11)
	put := func(key string, v *float64) {
		if v != nil {
			m[key] = *v
		}
	}
	put("odometer_km", r.OdometerKM)
	put("engine_temp_c", r.EngineTempC)
	put("battery_voltage_v", r.BatteryVoltageV)
	put("oil_pressure_kpa", r.OilPressureKPa)
	put("brake_pad_wear_mm_front", r.BrakePadWearMMFront)
	put("brake_pad_wear_mm_rear", r.BrakePadWearMMRear)
	put("suspension_health_pct", r.SuspensionHealthPct)
	put("tire_pressure_psi_fl", r.TirePressurePSIFL)
	put("coolant_level_pct", r.CoolantLevelPct)
	put("brake_fluid_level_pct", r.BrakeFluidLevelPct)
	put("transmission_fluid_temp_c", r.TransmissionFluidTempC)
	return m
}

// RearBrakeWearOrDefault returns the rear pad wear, falling back to
// DefaultRearBrakeWearMM when the sensor did not report.
func (r *Reading) RearBrakeWearOrDefault() float64 {
	if r.BrakePadWearMMRear != nil {
		return *r.BrakePadWearMMRear
	}
	return DefaultRearBrakeWearMM
}
