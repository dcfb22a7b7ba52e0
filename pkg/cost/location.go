package cost

import "strings"

// DefaultLocation is the profile used for locations missing from the table
const DefaultLocation = "default"

// DefaultMonthlyUsageKWh is assumed when a savings lookup carries no usage
const DefaultMonthlyUsageKWh = 1000

// Incentive and offset assumptions of the location savings estimate
const (
	SolarBillReduction = 0.70
	FederalTaxCredit   = 0.30
	UtilityRebate      = 0.05
)

// LocationProfile describes the grid a system is installed on.
// Rates are USD per kWh.
type LocationProfile struct {
	AvgRate         float64 `json:"avgRate"`
	SolarIncentive  float64 `json:"solarIncentive"`
	GridReliability float64 `json:"gridReliability"`
}

var locations = map[string]LocationProfile{
	"california":    {AvgRate: 0.28, SolarIncentive: 0.26, GridReliability: 0.85},
	"texas":         {AvgRate: 0.12, SolarIncentive: 0.15, GridReliability: 0.92},
	"florida":       {AvgRate: 0.11, SolarIncentive: 0.20, GridReliability: 0.88},
	DefaultLocation: {AvgRate: 0.16, SolarIncentive: 0.18, GridReliability: 0.90},
}

// Location returns the profile for a location name and the table key it
// resolved to. Unknown names resolve to DefaultLocation.
func Location(name string) (string, LocationProfile) {
	key := strings.ToLower(strings.TrimSpace(name))
	if p, ok := locations[key]; ok {
		return key, p
	}
	return DefaultLocation, locations[DefaultLocation]
}

// LocationRate returns the average utility rate for a location, falling back
// to the national default for unknown locations.
func LocationRate(location string) float64 {
	_, p := Location(location)
	return p.AvgRate
}

// Incentives are fractions of the system price returned to the buyer
type Incentives struct {
	Federal float64 `json:"federal"`
	State   float64 `json:"state"`
	Utility float64 `json:"utility"`
}

// Savings is a quick bill projection for a location, independent of any sizing
type Savings struct {
	Location        string     `json:"location"`
	MonthlyUsage    float64    `json:"monthlyUsage"`
	CurrentBill     float64    `json:"currentBill"`
	ProjectedBill   float64    `json:"projectedBill"`
	MonthlySavings  float64    `json:"monthlySavings"`
	AnnualSavings   float64    `json:"annualSavings"`
	Incentives      Incentives `json:"incentives"`
	GridReliability float64    `json:"gridReliability"`
}

// LocationSavings projects the bill reduction of going solar at a location.
// A non-positive usage falls back to DefaultMonthlyUsageKWh; callers reject
// non-finite input before getting here.
func LocationSavings(location string, monthlyUsageKWh float64) Savings {
	key, p := Location(location)
	if monthlyUsageKWh <= 0 {
		monthlyUsageKWh = DefaultMonthlyUsageKWh
	}

	bill := monthlyUsageKWh * p.AvgRate
	monthly := bill * SolarBillReduction
	return Savings{
		Location:       key,
		MonthlyUsage:   monthlyUsageKWh,
		CurrentBill:    bill,
		ProjectedBill:  bill - monthly,
		MonthlySavings: monthly,
		AnnualSavings:  monthly * 12,
		Incentives: Incentives{
			Federal: FederalTaxCredit,
			State:   p.SolarIncentive,
			Utility: UtilityRebate,
		},
		GridReliability: p.GridReliability,
	}
}
