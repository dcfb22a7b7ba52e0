package cost

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

func TestLocationRate(t *testing.T) {
	assert.Equal(t, 0.28, LocationRate("California"))
	assert.Equal(t, 0.12, LocationRate("texas"))
	assert.Equal(t, 0.16, LocationRate("ontario"))
	assert.Equal(t, 0.16, LocationRate(""))
}

func TestLocation(t *testing.T) {
	key, p := Location("  Florida ")
	assert.Equal(t, "florida", key)
	assert.Equal(t, 0.88, p.GridReliability)

	key, p = Location("atlantis")
	assert.Equal(t, DefaultLocation, key)
	assert.Equal(t, 0.18, p.SolarIncentive)
}

func TestLocationSavings(t *testing.T) {
	got := LocationSavings("California", 500)
	want := Savings{
		Location:        "california",
		MonthlyUsage:    500,
		CurrentBill:     140,
		ProjectedBill:   42,
		MonthlySavings:  98,
		AnnualSavings:   1176,
		Incentives:      Incentives{Federal: 0.30, State: 0.26, Utility: 0.05},
		GridReliability: 0.85,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("LocationSavings mismatch (-want +got):\n%s", diff)
	}
}

func TestLocationSavingsDefaultsUsage(t *testing.T) {
	for _, usage := range []float64{0, -20} {
		s := LocationSavings("nowhere", usage)
		assert.Equal(t, DefaultLocation, s.Location)
		assert.Equal(t, float64(DefaultMonthlyUsageKWh), s.MonthlyUsage)
		assert.InDelta(t, 160.0, s.CurrentBill, 1e-9)
		assert.InDelta(t, 112.0*12, s.AnnualSavings, 1e-9)
	}
}
