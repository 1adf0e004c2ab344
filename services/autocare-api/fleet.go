package main

import (
	"math"
	"math/rand"
	"time"
)

// FleetStatusAlert marks a simulated reading outside the safe band.
const (
	FleetStatusNormal = "Normal"
	FleetStatusAlert  = "Alert"
)

// FleetVehicle is one row of the live fleet view: real registration data plus
// simulated live telemetry.
type FleetVehicle struct {
	FleetCar
	EngineTempC     float64 `json:"engine_temp_c"`
	BatteryVoltageV float64 `json:"battery_voltage_v"`
	Status          string  `json:"status"`
}

// FleetSnapshot is the fleet view with overall counts.
type FleetSnapshot struct {
	Vehicles    []FleetVehicle `json:"vehicles"`
	Total       int            `json:"total"`
	NormalCount int            `json:"normal_count"`
	AlertCount  int            `json:"alert_count"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// buildFleetSnapshot attaches simulated live telemetry to registered cars.
// Engine temperature is drawn from 80-120 C and battery voltage from
// 11.5-14.5 V; a vehicle is flagged when the temperature exceeds 110 C or the
// voltage drops below 12 V.
func buildFleetSnapshot(fleet []FleetCar) FleetSnapshot {
	rng := rand.New(rand.NewSource(time.Now().Unix()))

	snapshot := FleetSnapshot{
		Vehicles:    make([]FleetVehicle, 0, len(fleet)),
		Total:       len(fleet),
		GeneratedAt: time.Now(),
	}
	for _, fc := range fleet {
		temp := math.Round((80+rng.Float64()*40)*10) / 10
		voltage := math.Round((11.5+rng.Float64()*3)*100) / 100

		status := FleetStatusNormal
		if temp > 110 || voltage < 12.0 {
			status = FleetStatusAlert
		}
		if status == FleetStatusAlert {
			snapshot.AlertCount++
		} else {
			snapshot.NormalCount++
		}
		snapshot.Vehicles = append(snapshot.Vehicles, FleetVehicle{
			FleetCar:        fc,
			EngineTempC:     temp,
			BatteryVoltageV: voltage,
			Status:          status,
		})
	}
	return snapshot
}
