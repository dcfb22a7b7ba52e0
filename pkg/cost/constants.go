package cost

import (
	"fmt"
	"sort"
	"strings"
)

// Constants is a unit-cost table. It is always passed in, so regional or
// currency variants never require code changes.
type Constants struct {
	Name     string `yaml:"name" json:"name"`
	Currency string `yaml:"currency" json:"currency"`

	InverterCostPerKVA float64 `yaml:"inverter_cost_per_kva" json:"inverterCostPerKva"`
	BatteryCostPerKWh  float64 `yaml:"battery_cost_per_kwh" json:"batteryCostPerKwh"`
	SolarCostPerKW     float64 `yaml:"solar_cost_per_kw" json:"solarCostPerKw"`

	InstallationOverheadRate float64 `yaml:"installation_overhead_rate" json:"installationOverheadRate"`
	UtilityRate              float64 `yaml:"utility_rate" json:"utilityRate"`   // currency per kWh offset
	PriceSpread              float64 `yaml:"price_spread" json:"priceSpread"` // quoted +/- band

	MonitorCost         float64 `yaml:"monitor_cost" json:"monitorCost"`
	SurgeProtectionCost float64 `yaml:"surge_protection_cost" json:"surgeProtectionCost"`
}

// Preset names
const (
	PresetPlatform   = "platform"
	PresetStorefront = "storefront"
	PresetBuilderUSD = "builder-usd"
)

// The observed cost tables. None of them is authoritative; callers pick one by name.
var presets = map[string]Constants{
	// Backend estimator. Monthly usage is offset one-to-one, so the utility rate is 1.
	PresetPlatform: {
		Name:                     PresetPlatform,
		Currency:                 "USD",
		InverterCostPerKVA:       200,
		BatteryCostPerKWh:        800,
		SolarCostPerKW:           1000,
		InstallationOverheadRate: 0.30,
		UtilityRate:              1,
		MonitorCost:              299,
		SurgeProtectionCost:      450,
	},
	// Naira builder: grid power at 200/kWh against 50/kWh solar.
	PresetStorefront: {
		Name:                PresetStorefront,
		Currency:            "NGN",
		InverterCostPerKVA:  150_000,
		BatteryCostPerKWh:   250_000,
		SolarCostPerKW:      100_000,
		UtilityRate:         150,
		MonitorCost:         448_500,
		SurgeProtectionCost: 675_000,
	},
	// Dollar builder: the naira spread converted at 1500 NGN/USD.
	PresetBuilderUSD: {
		Name:                     PresetBuilderUSD,
		Currency:                 "USD",
		InverterCostPerKVA:       250,
		BatteryCostPerKWh:        350,
		SolarCostPerKW:           800,
		InstallationOverheadRate: 0.15,
		UtilityRate:              0.1,
		PriceSpread:              0.10,
		MonitorCost:              299,
		SurgeProtectionCost:      450,
	},
}

// Preset returns a copy of the named cost table
func Preset(name string) (Constants, error) {
	c, ok := presets[strings.ToLower(name)]
	if !ok {
		return Constants{}, fmt.Errorf("unknown cost preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return c, nil
}

// Presets returns a copy of every built-in cost table keyed by name
func Presets() map[string]Constants {
	out := make(map[string]Constants, len(presets))
	for name, c := range presets {
		out[name] = c
	}
	return out
}

// PresetNames returns the preset names in sorted order
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
