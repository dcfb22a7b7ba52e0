// Package sizing turns an appliance load plan and a goal profile into
// recommended inverter, battery and solar capacities.
package sizing

import (
	"fmt"
	"math"
)

// Result is a recommended system size
type Result struct {
	InverterRatingVA   float64 `json:"inverterRatingVA"`
	BatteryCapacityKWh float64 `json:"batteryCapacityKWh"`
	SolarArrayKW       float64 `json:"solarArrayKW"`
}

// InverterKVA returns the inverter rating in kVA
func (r Result) InverterKVA() float64 {
	return r.InverterRatingVA / 1000
}

// Clamp raises every field to the minimum viable size
func (r Result) Clamp(c Constants) Result {
	return Result{
		InverterRatingVA:   math.Max(r.InverterRatingVA, c.MinInverterVA),
		BatteryCapacityKWh: math.Max(r.BatteryCapacityKWh, c.MinBatteryKWh),
		SolarArrayKW:       math.Max(r.SolarArrayKW, c.MinSolarKW),
	}
}

// BackupHours returns the autonomy window for goals: the user's slider value
// when set, otherwise the objective's default.
func (c Constants) BackupHours(goals GoalProfile) (float64, error) {
	if goals.BackupHours > 0 {
		return goals.BackupHours, nil
	}
	p, ok := c.Objective(goals.Objective)
	if !ok {
		return 0, fmt.Errorf("%w: unknown energy objective %q", ErrInvalidGoalProfile, goals.Objective)
	}
	return p.BackupHours, nil
}

// Size computes the optimal system for a load profile
func Size(load LoadProfile, goals GoalProfile, c Constants) (Result, error) {
	if !finite(load.TotalLoadWatts) || !finite(load.DailyEnergyWh) || load.TotalLoadWatts <= 0 {
		return Result{}, fmt.Errorf("%w: total load is zero", ErrInvalidLoadPlan)
	}
	if err := goals.Validate(); err != nil {
		return Result{}, err
	}

	profile, ok := c.Objective(goals.Objective)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown energy objective %q", ErrInvalidGoalProfile, goals.Objective)
	}
	backupHours, err := c.BackupHours(goals)
	if err != nil {
		return Result{}, err
	}

	loadKW := load.TotalLoadWatts / 1000

	safety := c.SafetyFactor
	if goals.Objective == OffGrid {
		safety = c.OffGridSafetyFactor
	}
	inverterVA := math.Ceil(loadKW*safety) * 1000

	batteryKWh := math.Ceil((loadKW * backupHours) / (c.DepthOfDischarge * c.RoundTripEfficiency))

	solarKW := math.Ceil((load.DailyEnergyKWh() * profile.SolarMultiplier) / (c.PeakSunHours * c.SolarDerate))

	if !finite(inverterVA) || !finite(batteryKWh) || !finite(solarKW) {
		return Result{}, fmt.Errorf("%w: load is too large to size", ErrInvalidLoadPlan)
	}

	return Result{
		InverterRatingVA:   inverterVA,
		BatteryCapacityKWh: batteryKWh,
		SolarArrayKW:       solarKW,
	}.Clamp(c), nil
}
