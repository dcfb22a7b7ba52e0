package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jgoulah/gridsizer/pkg/bundle"
	"github.com/jgoulah/gridsizer/pkg/cost"
	"github.com/jgoulah/gridsizer/pkg/models"
	"github.com/jgoulah/gridsizer/pkg/sizing"
)

// Recommendation is the document the storefront renders. Field names are
// fixed by the frontend.
type Recommendation struct {
	Recommendation Systems            `json:"recommendation"`
	Financials     Financials         `json:"financials"`
	Load           sizing.LoadProfile `json:"load"`
	Results        Results            `json:"results"`
	Matches        []models.Product   `json:"matches"`
	NextSteps      []string           `json:"nextSteps"`
	Preset         string             `json:"preset"`
	Currency       string             `json:"currency"`

	Goals sizing.GoalProfile `json:"-"`
	Tiers []bundle.Tier      `json:"-"` // budget, optimal, premium
}

// Systems holds the optimal system and its alternatives
type Systems struct {
	Primary      System   `json:"primary"`
	Alternatives []System `json:"alternatives"`
}

// System is one tier as the frontend expects it
type System struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	BatteryCapacity  float64 `json:"batteryCapacity"` // kWh
	InverterSize     float64 `json:"inverterSize"`    // kVA
	SolarPanels      float64 `json:"solarPanels"`     // kW
	Price            float64 `json:"price"`
	EstimatedSavings float64 `json:"estimatedSavings"` // per year
	GridIndependence float64 `json:"gridIndependence"` // percent
	InstallationTime int     `json:"installationTime"` // days
	Warranty         int     `json:"warranty"`         // years
}

// Financials are the optimal tier's return metrics. Payback fields are
// null when projected savings are not positive.
type Financials struct {
	EstimatedROI         *float64 `json:"estimatedROI"`
	AnnualSavings        float64  `json:"annualSavings"`
	MonthlyBillReduction float64  `json:"monthlyBillReduction"`
	PaybackPeriod        *float64 `json:"paybackPeriod"`
	TwentyYearSavings    float64  `json:"twentyYearSavings"`
	PaybackNote          string   `json:"paybackNote,omitempty"`
}

// Results is the builder's summary of the optimal system
type Results struct {
	TotalLoad               float64   `json:"totalLoad"`
	DailyConsumption        float64   `json:"dailyConsumption"`
	RecommendedInverterKva  float64   `json:"recommendedInverterKva"`
	RecommendedBatteryKwh   float64   `json:"recommendedBatteryKwh"`
	RecommendedSolarKw      float64   `json:"recommendedSolarKw"`
	EstimatedCost           CostRange `json:"estimatedCost"`
	EstimatedMonthlySavings float64   `json:"estimatedMonthlySavings"`
	AssumedMonthlyUsage     float64   `json:"assumedMonthlyUsage"`
}

// CostRange is a quoted price band
type CostRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

var nextSteps = []string{
	"Review system specifications",
	"Schedule site assessment",
	"Get detailed quote",
	"Explore financing options",
}

// Optimal returns the optimal tier
func (r *Recommendation) Optimal() bundle.Tier {
	for _, t := range r.Tiers {
		if t.Level == bundle.Optimal {
			return t
		}
	}
	return bundle.Tier{}
}

// Quote captures the optimal system as a quote record ready to be saved.
// The full document is kept as the quote payload.
func (r *Recommendation) Quote(contact string) (models.Quote, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return models.Quote{}, fmt.Errorf("encoding recommendation: %w", err)
	}
	opt := r.Optimal()
	return models.Quote{
		PropertyType: string(r.Goals.PropertyType),
		Objective:    string(r.Goals.Objective),
		InverterKVA:  opt.Sizing.InverterKVA(),
		BatteryKWh:   opt.Sizing.BatteryCapacityKWh,
		SolarKW:      opt.Sizing.SolarArrayKW,
		TotalPrice:   opt.Estimate.TotalPrice,
		Currency:     r.Currency,
		Preset:       r.Preset,
		Contact:      contact,
		Payload:      payload,
	}, nil
}

func buildRecommendation(load sizing.LoadProfile, goals sizing.GoalProfile, rates cost.Constants, monthlyUsage float64, tiers []bundle.Tier, matches []models.Product) *Recommendation {
	r := &Recommendation{
		Load:      load,
		Matches:   matches,
		NextSteps: append([]string(nil), nextSteps...),
		Preset:    rates.Name,
		Currency:  rates.Currency,
		Goals:     goals,
		Tiers:     tiers,
	}

	r.Recommendation.Alternatives = []System{}
	for _, t := range tiers {
		s := toSystem(t, goals.PropertyType)
		if t.Level == bundle.Optimal {
			r.Recommendation.Primary = s
			continue
		}
		r.Recommendation.Alternatives = append(r.Recommendation.Alternatives, s)
	}

	opt := r.Optimal()
	est := opt.Estimate
	r.Financials = Financials{
		AnnualSavings:        est.EstimatedAnnualSavings,
		MonthlyBillReduction: est.EstimatedAnnualSavings / 12,
		TwentyYearSavings:    est.TwentyYearNetSavings,
	}
	if payback, err := est.Payback(); err == nil {
		r.Financials.PaybackPeriod = &payback
		r.Financials.EstimatedROI = &payback
	} else if errors.Is(err, cost.ErrDegenerateSavings) {
		r.Financials.PaybackNote = err.Error()
	}

	low, high := est.PriceRange()
	r.Results = Results{
		TotalLoad:               load.TotalLoadWatts,
		DailyConsumption:        load.DailyEnergyWh,
		RecommendedInverterKva:  opt.Sizing.InverterKVA(),
		RecommendedBatteryKwh:   opt.Sizing.BatteryCapacityKWh,
		RecommendedSolarKw:      opt.Sizing.SolarArrayKW,
		EstimatedCost:           CostRange{Min: low, Max: high},
		EstimatedMonthlySavings: est.EstimatedMonthlySavings,
		AssumedMonthlyUsage:     monthlyUsage,
	}
	return r
}

func toSystem(t bundle.Tier, pt sizing.PropertyType) System {
	return System{
		ID:               t.ID,
		Name:             t.Name,
		Type:             string(pt),
		BatteryCapacity:  t.Sizing.BatteryCapacityKWh,
		InverterSize:     t.Sizing.InverterKVA(),
		SolarPanels:      t.Sizing.SolarArrayKW,
		Price:            t.Estimate.TotalPrice,
		EstimatedSavings: t.Estimate.EstimatedAnnualSavings,
		GridIndependence: t.GridIndependence,
		InstallationTime: t.InstallationDays,
		Warranty:         t.WarrantyYears,
	}
}
