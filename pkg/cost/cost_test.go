package cost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/gridsizer/pkg/sizing"
)

// standard-backup sizing for a single 1 kW appliance run 8 h/day
var scenarioA = sizing.Result{InverterRatingVA: 2000, BatteryCapacityKWh: 8, SolarArrayKW: 2}

func mustPreset(t *testing.T, name string) Constants {
	t.Helper()
	c, err := Preset(name)
	require.NoError(t, err)
	return c
}

func TestComputePlatform(t *testing.T) {
	e := Compute(scenarioA, mustPreset(t, PresetPlatform), SavingsInput{MonthlyUsageKWh: 240, OffsetFraction: 0.15})

	assert.Equal(t, "USD", e.Currency)
	assert.Equal(t, 6400.0, e.BatteryCost)
	assert.Equal(t, 400.0, e.InverterCost)
	assert.Equal(t, 2000.0, e.SolarCost)
	assert.InDelta(t, 2640.0, e.InstallationCost, 1e-9)
	assert.Equal(t, 11440.0, e.TotalPrice)

	assert.InDelta(t, 36.0, e.EstimatedMonthlySavings, 1e-9)
	assert.InDelta(t, 432.0, e.EstimatedAnnualSavings, 1e-9)
	assert.InDelta(t, 432.0*20-11440, e.TwentyYearNetSavings, 1e-9)

	payback, err := e.Payback()
	require.NoError(t, err)
	assert.InDelta(t, 11440.0/432, payback, 1e-9)
}

func TestComputeStorefront(t *testing.T) {
	e := Compute(scenarioA, mustPreset(t, PresetStorefront), SavingsInput{MonthlyUsageKWh: 240, OffsetFraction: 0.15})

	assert.Equal(t, "NGN", e.Currency)
	assert.Equal(t, 300_000.0, e.InverterCost)
	assert.Equal(t, 2_000_000.0, e.BatteryCost)
	assert.Equal(t, 200_000.0, e.SolarCost)
	assert.Equal(t, 0.0, e.InstallationCost)
	assert.Equal(t, 2_500_000.0, e.TotalPrice)

	low, high := e.PriceRange()
	assert.Equal(t, e.TotalPrice, low)
	assert.Equal(t, e.TotalPrice, high)
}

func TestComputeBuilderUSDRange(t *testing.T) {
	e := Compute(scenarioA, mustPreset(t, PresetBuilderUSD), SavingsInput{MonthlyUsageKWh: 240, OffsetFraction: 0.15})

	assert.Equal(t, 5635.0, e.TotalPrice)
	low, high := e.PriceRange()
	assert.Equal(t, 5072.0, low)
	assert.Equal(t, 6199.0, high)
}

func TestPaybackDegenerateSavings(t *testing.T) {
	tests := []struct {
		name string
		in   SavingsInput
		rate float64
	}{
		{name: "no usage", in: SavingsInput{MonthlyUsageKWh: 0, OffsetFraction: 0.15}, rate: 1},
		{name: "no offset", in: SavingsInput{MonthlyUsageKWh: 300, OffsetFraction: 0}, rate: 1},
		{name: "negative rate", in: SavingsInput{MonthlyUsageKWh: 300, OffsetFraction: 0.15}, rate: -0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustPreset(t, PresetPlatform)
			c.UtilityRate = tt.rate
			e := Compute(scenarioA, c, tt.in)

			payback, err := e.Payback()
			assert.ErrorIs(t, err, ErrDegenerateSavings)
			assert.False(t, math.IsInf(payback, 0))
			assert.False(t, math.IsNaN(payback))
		})
	}
}

func TestComputeOverflowDoesNotPanic(t *testing.T) {
	huge := sizing.Result{InverterRatingVA: math.MaxFloat64, BatteryCapacityKWh: math.MaxFloat64, SolarArrayKW: 1}

	var e Estimate
	require.NotPanics(t, func() {
		e = Compute(huge, mustPreset(t, PresetPlatform), SavingsInput{MonthlyUsageKWh: 240, OffsetFraction: 0.15})
		e.PriceRange()
	})
	assert.True(t, math.IsInf(e.TotalPrice, 1))
	assert.False(t, e.Finite())

	assert.True(t, Compute(scenarioA, mustPreset(t, PresetPlatform), SavingsInput{MonthlyUsageKWh: 240, OffsetFraction: 0.15}).Finite())
	assert.True(t, math.IsNaN(roundWhole(math.NaN())))
}

func TestPriceIsMonotonicInSize(t *testing.T) {
	c := mustPreset(t, PresetPlatform)
	small := Compute(scenarioA, c, SavingsInput{})
	big := Compute(sizing.Result{InverterRatingVA: 3000, BatteryCapacityKWh: 12, SolarArrayKW: 3}, c, SavingsInput{})
	assert.Less(t, small.TotalPrice, big.TotalPrice)
}

func TestPreset(t *testing.T) {
	assert.Equal(t, []string{"builder-usd", "platform", "storefront"}, PresetNames())

	c, err := Preset("Platform")
	require.NoError(t, err)
	assert.Equal(t, 0.30, c.InstallationOverheadRate)

	_, err = Preset("euro")
	assert.Error(t, err)
}
