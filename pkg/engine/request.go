package engine

import "github.com/jgoulah/gridsizer/pkg/sizing"

// ApplianceSelection is one appliance picked in the builder
type ApplianceSelection struct {
	ID          string  `json:"id" yaml:"id"`
	Quantity    int     `json:"quantity" yaml:"quantity"`
	HoursPerDay float64 `json:"hoursPerDay" yaml:"hours_per_day"`
	Wattage     float64 `json:"wattage,omitempty" yaml:"wattage,omitempty"` // overrides the catalog wattage
}

// Request is a sizing request. It carries either an appliance plan or,
// as the calculator endpoint accepts, a monthly usage and peak demand.
type Request struct {
	Appliances []ApplianceSelection `json:"appliances,omitempty" yaml:"appliances,omitempty"`

	MonthlyUsage float64 `json:"monthlyUsage,omitempty" yaml:"monthly_usage,omitempty"` // kWh per month
	PeakDemand   float64 `json:"peakDemand,omitempty" yaml:"peak_demand,omitempty"`     // kW

	PropertyType    string  `json:"propertyType,omitempty" yaml:"property_type,omitempty"`
	EnergyObjective string  `json:"energyObjective,omitempty" yaml:"energy_objective,omitempty"`
	BackupHours     float64 `json:"backupHours,omitempty" yaml:"backup_hours,omitempty"`

	Preset      string  `json:"preset,omitempty" yaml:"preset,omitempty"`
	UtilityRate float64 `json:"utilityRate,omitempty" yaml:"utility_rate,omitempty"`
	Location    string  `json:"location,omitempty" yaml:"location,omitempty"`
}

func (r Request) goals() (sizing.GoalProfile, error) {
	pt, err := sizing.ParsePropertyType(r.PropertyType)
	if err != nil {
		return sizing.GoalProfile{}, err
	}
	obj, err := sizing.ParseObjective(r.EnergyObjective)
	if err != nil {
		return sizing.GoalProfile{}, err
	}
	g := sizing.GoalProfile{PropertyType: pt, Objective: obj, BackupHours: r.BackupHours}
	return g, g.Validate()
}
