package sizing

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidLoadPlan is returned for an empty or zero-load appliance selection
	ErrInvalidLoadPlan = errors.New("invalid load plan")
	// ErrInvalidGoalProfile is returned for unknown objectives or property types
	ErrInvalidGoalProfile = errors.New("invalid goal profile")
)

// ApplianceLoad is one appliance class in a load plan
type ApplianceLoad struct {
	ID             string
	NameplateWatts float64
	Quantity       int
	DailyHours     float64
}

// LoadProfile is the aggregate draw of a load plan
type LoadProfile struct {
	TotalLoadWatts float64 `json:"totalLoad"`        // worst-case simultaneous draw
	DailyEnergyWh  float64 `json:"dailyConsumption"` // watt-hours per day
}

// DailyEnergyKWh returns the daily energy in kWh
func (p LoadProfile) DailyEnergyKWh() float64 {
	return p.DailyEnergyWh / 1000
}

// Aggregate sums a load plan. Entries with zero quantity are dropped first.
func Aggregate(items []ApplianceLoad) (LoadProfile, error) {
	if len(items) == 0 {
		return LoadProfile{}, fmt.Errorf("%w: no appliances selected", ErrInvalidLoadPlan)
	}

	var p LoadProfile
	for _, it := range items {
		if it.Quantity == 0 {
			continue
		}
		if it.Quantity < 0 {
			return LoadProfile{}, fmt.Errorf("%w: appliance %q has negative quantity %d", ErrInvalidLoadPlan, it.ID, it.Quantity)
		}
		if !finite(it.NameplateWatts) || it.NameplateWatts <= 0 {
			return LoadProfile{}, fmt.Errorf("%w: appliance %q must draw a positive wattage (got %v)", ErrInvalidLoadPlan, it.ID, it.NameplateWatts)
		}
		if !finite(it.DailyHours) || it.DailyHours < 0 || it.DailyHours > 24 {
			return LoadProfile{}, fmt.Errorf("%w: appliance %q daily hours %v outside [0, 24]", ErrInvalidLoadPlan, it.ID, it.DailyHours)
		}

		watts := it.NameplateWatts * float64(it.Quantity)
		p.TotalLoadWatts += watts
		p.DailyEnergyWh += watts * it.DailyHours
	}

	if p.TotalLoadWatts == 0 {
		return LoadProfile{}, fmt.Errorf("%w: total load is zero", ErrInvalidLoadPlan)
	}
	if !finite(p.TotalLoadWatts) || !finite(p.DailyEnergyWh) {
		return LoadProfile{}, fmt.Errorf("%w: total load overflows", ErrInvalidLoadPlan)
	}
	return p, nil
}

// ProfileFromUsage builds a profile from a monthly consumption figure and a peak demand,
// the shape the calculator endpoint accepts when no appliance list is given.
func ProfileFromUsage(monthlyKWh, peakKW float64) (LoadProfile, error) {
	if !finite(peakKW) || !finite(monthlyKWh) {
		return LoadProfile{}, fmt.Errorf("%w: usage figures must be finite", ErrInvalidLoadPlan)
	}
	if peakKW <= 0 {
		return LoadProfile{}, fmt.Errorf("%w: peak demand must be positive (got %v)", ErrInvalidLoadPlan, peakKW)
	}
	if monthlyKWh < 0 {
		return LoadProfile{}, fmt.Errorf("%w: monthly usage must not be negative (got %v)", ErrInvalidLoadPlan, monthlyKWh)
	}
	return LoadProfile{
		TotalLoadWatts: peakKW * 1000,
		DailyEnergyWh:  monthlyKWh / 30 * 1000,
	}, nil
}

// finite reports whether v is neither NaN nor an infinity.
// NaN compares false against every bound, so range checks alone let it through.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
