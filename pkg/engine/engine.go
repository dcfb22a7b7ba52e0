// Package engine runs one sizing request end to end: load aggregation,
// sizing, tier ranking, pricing and catalog matching. It holds only
// immutable constants and is safe for concurrent use.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jgoulah/gridsizer/pkg/bundle"
	"github.com/jgoulah/gridsizer/pkg/cost"
	"github.com/jgoulah/gridsizer/pkg/models"
	"github.com/jgoulah/gridsizer/pkg/sizing"
)

// ErrUnknownPreset is returned when a request names a cost table that is not configured
var ErrUnknownPreset = errors.New("unknown cost preset")

// Config is the constant set an Engine is built from
type Config struct {
	Sizing        sizing.Constants
	Presets       map[string]cost.Constants // nil means the built-in presets
	DefaultPreset string
	Appliances    []models.Appliance // nil means the stock appliance list
}

// Engine produces recommendations
type Engine struct {
	sizing        sizing.Constants
	presets       map[string]cost.Constants
	defaultPreset string
	appliances    []models.Appliance
}

// New validates cfg and builds an Engine
func New(cfg Config) (*Engine, error) {
	e := &Engine{
		sizing:        cfg.Sizing,
		presets:       cfg.Presets,
		defaultPreset: strings.ToLower(cfg.DefaultPreset),
		appliances:    cfg.Appliances,
	}
	if e.presets == nil {
		e.presets = cost.Presets()
	}
	if e.defaultPreset == "" {
		e.defaultPreset = cost.PresetPlatform
	}
	if _, ok := e.presets[e.defaultPreset]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownPreset, cfg.DefaultPreset)
	}
	if e.appliances == nil {
		e.appliances = models.DefaultAppliances()
	}
	return e, nil
}

// Default returns an engine with the stock constants and the platform preset
func Default() *Engine {
	return &Engine{
		sizing:        sizing.DefaultConstants(),
		presets:       cost.Presets(),
		defaultPreset: cost.PresetPlatform,
		appliances:    models.DefaultAppliances(),
	}
}

// Appliances returns the appliance catalog selections are resolved against
func (e *Engine) Appliances() []models.Appliance {
	return e.appliances
}

// Presets returns the configured cost tables sorted by name
func (e *Engine) Presets() []cost.Constants {
	out := make([]cost.Constants, 0, len(e.presets))
	for _, c := range e.presets {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DefaultPreset returns the name of the cost table used when a request names none
func (e *Engine) DefaultPreset() string {
	return e.defaultPreset
}

// Recommend sizes, prices and ranks a system for req. The catalog is an
// already-fetched list of bundle products; pass nil to skip matching.
func (e *Engine) Recommend(req Request, catalog []models.Product) (*Recommendation, error) {
	goals, err := req.goals()
	if err != nil {
		return nil, err
	}
	if !finite(req.MonthlyUsage) || !finite(req.PeakDemand) || !finite(req.UtilityRate) {
		return nil, fmt.Errorf("%w: usage figures must be finite", sizing.ErrInvalidLoadPlan)
	}

	load, err := e.loadProfile(req)
	if err != nil {
		return nil, err
	}

	rates, err := e.rates(req)
	if err != nil {
		return nil, err
	}

	optimal, err := sizing.Size(load, goals, e.sizing)
	if err != nil {
		return nil, err
	}

	monthlyUsage := req.MonthlyUsage
	if monthlyUsage <= 0 {
		monthlyUsage = load.DailyEnergyKWh() * 30
	}

	tiers := bundle.Rank(optimal, bundle.RankInput{
		Load:            load,
		Goals:           goals,
		Sizing:          e.sizing,
		Cost:            rates,
		MonthlyUsageKWh: monthlyUsage,
	})
	for _, t := range tiers {
		if !t.Estimate.Finite() {
			return nil, fmt.Errorf("%w: %s tier is too large to price", sizing.ErrInvalidLoadPlan, t.Level)
		}
	}

	return buildRecommendation(load, goals, rates, monthlyUsage, tiers, bundle.MatchCatalog(optimal, catalog)), nil
}

// Resolve turns appliance selections into load entries using the engine's catalog.
// Zero-quantity selections are dropped before lookup, so they may name anything.
func (e *Engine) Resolve(selections []ApplianceSelection) ([]sizing.ApplianceLoad, error) {
	loads := make([]sizing.ApplianceLoad, 0, len(selections))
	for _, sel := range selections {
		if sel.Quantity == 0 {
			continue
		}
		watts := sel.Wattage
		if watts <= 0 {
			a, ok := models.FindAppliance(e.appliances, sel.ID)
			if !ok {
				return nil, fmt.Errorf("%w: unknown appliance %q and no wattage given", sizing.ErrInvalidLoadPlan, sel.ID)
			}
			watts = a.Watts
		}
		loads = append(loads, sizing.ApplianceLoad{
			ID:             sel.ID,
			NameplateWatts: watts,
			Quantity:       sel.Quantity,
			DailyHours:     sel.HoursPerDay,
		})
	}
	return loads, nil
}

func (e *Engine) loadProfile(req Request) (sizing.LoadProfile, error) {
	if len(req.Appliances) == 0 && req.PeakDemand > 0 {
		return sizing.ProfileFromUsage(req.MonthlyUsage, req.PeakDemand)
	}
	loads, err := e.Resolve(req.Appliances)
	if err != nil {
		return sizing.LoadProfile{}, err
	}
	return sizing.Aggregate(loads)
}

// Components prices the parts of an already-sized system with the named
// cost table, or the default one when preset is empty.
func (e *Engine) Components(in bundle.ComponentsInput, preset string) (bundle.Components, error) {
	rates, err := e.preset(preset)
	if err != nil {
		return bundle.Components{}, err
	}
	return bundle.RecommendComponents(in, rates)
}

func (e *Engine) preset(name string) (cost.Constants, error) {
	key := strings.ToLower(name)
	if key == "" {
		key = e.defaultPreset
	}
	rates, ok := e.presets[key]
	if !ok {
		return cost.Constants{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return rates, nil
}

func (e *Engine) rates(req Request) (cost.Constants, error) {
	rates, err := e.preset(req.Preset)
	if err != nil {
		return cost.Constants{}, err
	}

	switch {
	case req.UtilityRate > 0:
		rates.UtilityRate = req.UtilityRate
	case req.Location != "":
		rates.UtilityRate = cost.LocationRate(req.Location)
	}
	return rates, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
