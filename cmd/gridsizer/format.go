package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jgoulah/gridsizer/pkg/engine"
)

const (
	dateLayout = "2006-01-02"
	rule       = "------------------------------------------------------------------------"
)

// money formats a price in whole currency units with thousands separators
func money(currency string, v float64) string {
	return currency + " " + humanize.Commaf(math.Round(v))
}

func printRecommendation(rec *engine.Recommendation) {
	fmt.Printf("Load: %s W peak, %s kWh/day (%s / %s)\n",
		humanize.Commaf(rec.Load.TotalLoadWatts), humanize.FtoaWithDigits(rec.Load.DailyEnergyKWh(), 2),
		rec.Goals.PropertyType, rec.Goals.Objective)
	fmt.Printf("Cost table: %s, assumed usage %s kWh/month\n\n",
		rec.Preset, humanize.FtoaWithDigits(rec.Results.AssumedMonthlyUsage, 1))

	fmt.Println(rule)
	fmt.Printf("%-10s %8s %9s %8s %16s %14s %6s\n", "Tier", "kVA", "kWh", "kW", "Price", "Savings/yr", "Grid%")
	fmt.Println(rule)
	for _, t := range rec.Tiers {
		fmt.Printf("%-10s %8s %9s %8s %16s %14s %6.0f\n",
			t.Level,
			humanize.Ftoa(t.Sizing.InverterKVA()),
			humanize.Ftoa(t.Sizing.BatteryCapacityKWh),
			humanize.Ftoa(t.Sizing.SolarArrayKW),
			money(rec.Currency, t.Estimate.TotalPrice),
			money(rec.Currency, t.Estimate.EstimatedAnnualSavings),
			t.GridIndependence)
	}
	fmt.Println(rule)

	if r := rec.Results.EstimatedCost; r.Min != r.Max {
		fmt.Printf("Quoted range: %s to %s\n", money(rec.Currency, r.Min), money(rec.Currency, r.Max))
	}

	f := rec.Financials
	if f.PaybackPeriod != nil {
		fmt.Printf("Payback: %.1f years, 20-year net savings %s\n", *f.PaybackPeriod, money(rec.Currency, f.TwentyYearSavings))
	} else {
		fmt.Printf("Payback: %s\n", f.PaybackNote)
	}

	if len(rec.Matches) > 0 {
		fmt.Println("\nMatching bundles:")
		for _, p := range rec.Matches {
			stock := ""
			if !p.InStock {
				stock = " (out of stock)"
			}
			fmt.Printf("  %-28s %6s kVA  %s%s\n", p.Name, humanize.Ftoa(p.InverterKVA), money(rec.Currency, p.Price), stock)
		}
	}

	fmt.Printf("\nNext steps: %s\n", strings.Join(rec.NextSteps, ", "))
}
