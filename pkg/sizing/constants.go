package sizing

// ObjectiveProfile holds the fixed backup window and solar multiplier of an objective
type ObjectiveProfile struct {
	BackupHours     float64 `yaml:"backup_hours" json:"backupHours"`
	SolarMultiplier float64 `yaml:"solar_multiplier" json:"solarMultiplier"`
}

// Constants is the design-time table every sizing call reads from.
// Regional variants are expressed by overriding fields, never by code changes.
type Constants struct {
	Objectives map[Objective]ObjectiveProfile

	SafetyFactor        float64 // inverter headroom for grid-assisted systems
	OffGridSafetyFactor float64 // inverter headroom when no grid assist exists
	DepthOfDischarge    float64 // lithium chemistry
	RoundTripEfficiency float64
	PeakSunHours        float64
	SolarDerate         float64 // panel and conversion losses

	MinInverterVA float64
	MinBatteryKWh float64
	MinSolarKW    float64
}

// DefaultConstants returns the stock constant table
func DefaultConstants() Constants {
	return Constants{
		Objectives: map[Objective]ObjectiveProfile{
			StandardBackup: {BackupHours: 6, SolarMultiplier: 0.5},
			ExtendedBackup: {BackupHours: 10, SolarMultiplier: 0.8},
			NearOffGrid:    {BackupHours: 16, SolarMultiplier: 1.2},
			OffGrid:        {BackupHours: 24, SolarMultiplier: 1.5},
		},
		SafetyFactor:        1.25,
		OffGridSafetyFactor: 1.5,
		DepthOfDischarge:    0.8,
		RoundTripEfficiency: 0.95,
		PeakSunHours:        5,
		SolarDerate:         0.8,
		MinInverterVA:       1000,
		MinBatteryKWh:       5,
		MinSolarKW:          2,
	}
}

// Objective returns the profile for o, falling back to the stock table
// when an override table leaves it out.
func (c Constants) Objective(o Objective) (ObjectiveProfile, bool) {
	if p, ok := c.Objectives[o]; ok {
		return p, true
	}
	p, ok := DefaultConstants().Objectives[o]
	return p, ok
}
