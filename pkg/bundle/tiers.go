// Package bundle derives the budget, optimal and premium systems from an
// optimal sizing and matches them against the storefront catalog.
package bundle

import (
	"math"

	"github.com/jgoulah/gridsizer/pkg/cost"
	"github.com/jgoulah/gridsizer/pkg/sizing"
)

// Level names a tier
type Level string

const (
	Budget  Level = "budget"
	Optimal Level = "optimal"
	Premium Level = "premium"
)

// maxOptimalIndependence caps the computed grid independence of the optimal tier
const maxOptimalIndependence = 90

// TierSpec is the fixed transform and metadata of one tier
type TierSpec struct {
	Level Level
	ID    string
	Name  string

	BatteryScale  float64
	InverterScale float64
	SolarScale    float64

	OffsetFraction   float64 // share of the utility bill this tier removes
	GridIndependence float64 // percent; zero means computed from the battery
	WarrantyYears    int
	ResidentialDays  int
	OtherDays        int
}

// Tiers is the stock tier table in ranking order
var Tiers = []TierSpec{
	{
		Level: Budget, ID: "system-budget", Name: "Budget-Friendly System",
		BatteryScale: 0.7, InverterScale: 1, SolarScale: 0.8,
		OffsetFraction: 0.10, GridIndependence: 60, WarrantyYears: 8,
		ResidentialDays: 1, OtherDays: 3,
	},
	{
		Level: Optimal, ID: "system-optimal", Name: "Optimal Energy System",
		BatteryScale: 1, InverterScale: 1, SolarScale: 1,
		OffsetFraction: 0.15, WarrantyYears: 10,
		ResidentialDays: 2, OtherDays: 5,
	},
	{
		Level: Premium, ID: "system-premium", Name: "Premium Energy System",
		BatteryScale: 1.5, InverterScale: 1.2, SolarScale: 1.4,
		OffsetFraction: 0.25, GridIndependence: 95, WarrantyYears: 15,
		ResidentialDays: 3, OtherDays: 7,
	},
}

// Tier is one ranked system
type Tier struct {
	Level            Level         `json:"level"`
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Sizing           sizing.Result `json:"sizing"`
	Estimate         cost.Estimate `json:"estimate"`
	GridIndependence float64       `json:"gridIndependence"`
	InstallationDays int           `json:"installationTime"`
	WarrantyYears    int           `json:"warranty"`
}

// RankInput is everything besides the optimal sizing that ranking reads
type RankInput struct {
	Load            sizing.LoadProfile
	Goals           sizing.GoalProfile
	Sizing          sizing.Constants
	Cost            cost.Constants
	MonthlyUsageKWh float64
}

// Rank returns the budget, optimal and premium tiers, in that order.
// Each tier is scaled from optimal and then priced on its own, so cost
// always follows the tier's capacities.
func Rank(optimal sizing.Result, in RankInput) []Tier {
	tiers := make([]Tier, 0, len(Tiers))
	for _, spec := range Tiers {
		s := Scale(optimal, spec).Clamp(in.Sizing)

		t := Tier{
			Level:            spec.Level,
			ID:               spec.ID,
			Name:             spec.Name,
			Sizing:           s,
			Estimate:         cost.Compute(s, in.Cost, cost.SavingsInput{MonthlyUsageKWh: in.MonthlyUsageKWh, OffsetFraction: spec.OffsetFraction}),
			GridIndependence: spec.GridIndependence,
			InstallationDays: spec.OtherDays,
			WarrantyYears:    spec.WarrantyYears,
		}
		if in.Goals.PropertyType == sizing.Residential {
			t.InstallationDays = spec.ResidentialDays
		}
		if t.GridIndependence == 0 {
			t.GridIndependence = gridIndependence(s, in.Load)
		}
		tiers = append(tiers, t)
	}
	return tiers
}

// Scale applies a tier's multipliers to s, rounding up to whole kWh, kW and kVA
func Scale(s sizing.Result, spec TierSpec) sizing.Result {
	return sizing.Result{
		InverterRatingVA:   math.Ceil(s.InverterKVA()*spec.InverterScale) * 1000,
		BatteryCapacityKWh: math.Ceil(s.BatteryCapacityKWh * spec.BatteryScale),
		SolarArrayKW:       math.Ceil(s.SolarArrayKW * spec.SolarScale),
	}
}

func gridIndependence(s sizing.Result, load sizing.LoadProfile) float64 {
	daily := load.DailyEnergyKWh()
	if daily <= 0 {
		return maxOptimalIndependence
	}
	return math.Min(maxOptimalIndependence, s.BatteryCapacityKWh/daily*100)
}
