// Package cost prices a sized system and projects its savings.
package cost

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/jgoulah/gridsizer/pkg/sizing"
)

// ErrDegenerateSavings is returned when projected savings are zero or negative,
// which leaves the payback period undefined.
var ErrDegenerateSavings = errors.New("payback period not applicable")

// SavingsYears is the horizon of the long-term net savings figure
const SavingsYears = 20

// SavingsInput carries the per-request savings assumptions
type SavingsInput struct {
	MonthlyUsageKWh float64 // assumed consumption the system offsets
	OffsetFraction  float64 // share of the bill the tier removes
}

// Estimate is the priced form of a sizing result
type Estimate struct {
	Currency string `json:"currency"`

	BatteryCost      float64 `json:"batteryCost"`
	InverterCost     float64 `json:"inverterCost"`
	SolarCost        float64 `json:"solarCost"`
	InstallationCost float64 `json:"installationCost"`
	TotalPrice       float64 `json:"totalPrice"`

	EstimatedMonthlySavings float64 `json:"estimatedMonthlySavings"`
	EstimatedAnnualSavings  float64 `json:"estimatedAnnualSavings"`
	TwentyYearNetSavings    float64 `json:"twentyYearNetSavings"`

	priceSpread float64
}

// Compute prices s against the unit-cost table c
func Compute(s sizing.Result, c Constants, in SavingsInput) Estimate {
	e := Estimate{
		Currency:     c.Currency,
		BatteryCost:  s.BatteryCapacityKWh * c.BatteryCostPerKWh,
		InverterCost: s.InverterKVA() * c.InverterCostPerKVA,
		SolarCost:    s.SolarArrayKW * c.SolarCostPerKW,
		priceSpread:  c.PriceSpread,
	}

	equipment := e.BatteryCost + e.InverterCost + e.SolarCost
	e.InstallationCost = equipment * c.InstallationOverheadRate
	e.TotalPrice = roundWhole(equipment * (1 + c.InstallationOverheadRate))

	e.EstimatedMonthlySavings = in.MonthlyUsageKWh * c.UtilityRate * in.OffsetFraction
	e.EstimatedAnnualSavings = e.EstimatedMonthlySavings * 12
	e.TwentyYearNetSavings = e.EstimatedAnnualSavings*SavingsYears - e.TotalPrice

	return e
}

// Payback returns the number of years until savings cover the price
func (e Estimate) Payback() (float64, error) {
	if e.EstimatedAnnualSavings <= 0 {
		return 0, ErrDegenerateSavings
	}
	return e.TotalPrice / e.EstimatedAnnualSavings, nil
}

// PriceRange returns the quoted low and high price around TotalPrice
func (e Estimate) PriceRange() (low, high float64) {
	return roundWhole(e.TotalPrice * (1 - e.priceSpread)), roundWhole(e.TotalPrice * (1 + e.priceSpread))
}

// Finite reports whether every money figure of e is a real number. Sizes
// near the float64 limit overflow once multiplied by unit costs.
func (e Estimate) Finite() bool {
	for _, v := range []float64{
		e.BatteryCost, e.InverterCost, e.SolarCost, e.InstallationCost, e.TotalPrice,
		e.EstimatedMonthlySavings, e.EstimatedAnnualSavings, e.TwentyYearNetSavings,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// roundWhole rounds half away from zero to a whole currency unit. NaN and
// infinities pass through unchanged since decimal cannot represent them.
func roundWhole(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(0).InexactFloat64()
}
