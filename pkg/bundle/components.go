package bundle

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/jgoulah/gridsizer/pkg/cost"
	"github.com/jgoulah/gridsizer/pkg/sizing"
)

// ErrInvalidSizing is returned when a component request names a system that cannot be built
var ErrInvalidSizing = errors.New("invalid system sizing")

// Component is one line of a parts list
type Component struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Capacity    float64 `json:"capacity,omitempty"` // kWh, batteries only
	Power       float64 `json:"power,omitempty"`    // kVA or kW
	Price       float64 `json:"price"`
	Recommended bool    `json:"recommended,omitempty"`
	Required    bool    `json:"required,omitempty"`
}

// Components is the parts list for an already-sized system
type Components struct {
	SystemType  sizing.PropertyType `json:"systemType"`
	Currency    string              `json:"currency"`
	Batteries   []Component         `json:"batteries"`
	Inverters   []Component         `json:"inverters"`
	Solar       []Component         `json:"solar"`
	Accessories []Component         `json:"accessories"`
	Total       float64             `json:"total"`
}

// ComponentsInput is a system size chosen by the caller, usually a tier
// returned by an earlier estimate. SolarKW may be zero for storage-only systems.
type ComponentsInput struct {
	SystemType  string
	BatteryKWh  float64
	InverterKVA float64
	SolarKW     float64
}

// RecommendComponents breaks a sized system into priced parts using the unit
// costs of c. The monitor and surge protector are always required.
func RecommendComponents(in ComponentsInput, c cost.Constants) (Components, error) {
	systemType, err := sizing.ParsePropertyType(in.SystemType)
	if err != nil {
		return Components{}, fmt.Errorf("%w: %v", ErrInvalidSizing, err)
	}
	if !positive(in.BatteryKWh) {
		return Components{}, fmt.Errorf("%w: battery capacity must be positive (got %v)", ErrInvalidSizing, in.BatteryKWh)
	}
	if !positive(in.InverterKVA) {
		return Components{}, fmt.Errorf("%w: inverter size must be positive (got %v)", ErrInvalidSizing, in.InverterKVA)
	}
	if in.SolarKW != 0 && !positive(in.SolarKW) {
		return Components{}, fmt.Errorf("%w: solar array must be positive when given (got %v)", ErrInvalidSizing, in.SolarKW)
	}

	out := Components{
		SystemType: systemType,
		Currency:   c.Currency,
		Batteries: []Component{{
			ID:          "battery-" + trimFloat(in.BatteryKWh) + "kwh",
			Name:        "Lithium battery bank " + trimFloat(in.BatteryKWh) + " kWh",
			Capacity:    in.BatteryKWh,
			Price:       in.BatteryKWh * c.BatteryCostPerKWh,
			Recommended: true,
		}},
		Inverters: []Component{{
			ID:          "inverter-" + trimFloat(in.InverterKVA) + "kva",
			Name:        "Hybrid inverter " + trimFloat(in.InverterKVA) + " kVA",
			Power:       in.InverterKVA,
			Price:       in.InverterKVA * c.InverterCostPerKVA,
			Recommended: true,
		}},
		Solar: []Component{},
		Accessories: []Component{
			{ID: "monitoring", Name: "Smart energy monitor", Price: c.MonitorCost, Required: true},
			{ID: "surge-protection", Name: "Surge protection system", Price: c.SurgeProtectionCost, Required: true},
		},
	}
	if in.SolarKW > 0 {
		out.Solar = append(out.Solar, Component{
			ID:          "solar-" + trimFloat(in.SolarKW) + "kw",
			Name:        "Solar array " + trimFloat(in.SolarKW) + " kW",
			Power:       in.SolarKW,
			Price:       in.SolarKW * c.SolarCostPerKW,
			Recommended: true,
		})
	}

	for _, group := range [][]Component{out.Batteries, out.Inverters, out.Solar, out.Accessories} {
		for _, p := range group {
			out.Total += p.Price
		}
	}
	if math.IsInf(out.Total, 0) || math.IsNaN(out.Total) {
		return Components{}, fmt.Errorf("%w: system is too large to price", ErrInvalidSizing)
	}
	return out, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
