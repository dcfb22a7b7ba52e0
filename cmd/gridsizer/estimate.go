package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jgoulah/gridsizer/pkg/engine"
)

var (
	estimatePlan         string
	estimateAppliances   []string
	estimateMonthlyUsage float64
	estimatePeakDemand   float64
	estimateProperty     string
	estimateObjective    string
	estimateBackupHours  float64
	estimatePreset       string
	estimateUtilityRate  float64
	estimateLocation     string
	estimateUsageService string
	estimateJSON         bool
	estimateSave         bool
	estimateContact      string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Size and price a system",
	Long: `Sizes an inverter, battery bank and solar array for an appliance plan or a
monthly usage figure, and prices budget, optimal and premium tiers.

The plan may come from a YAML file (--plan) and/or flags; flags win.

Examples:
  gridsizer estimate --appliance iron:1:8 --appliance refrigerator:1:24
  gridsizer estimate --plan home.yaml --objective off-grid --preset storefront
  gridsizer estimate --usage-service nyseg --peak-demand 5 --save`,
	RunE: runEstimate,
}

func init() {
	f := estimateCmd.Flags()
	f.StringVar(&estimatePlan, "plan", "", "YAML plan file")
	f.StringArrayVarP(&estimateAppliances, "appliance", "a", nil, "appliance as id:quantity:hours[:watts] (repeatable)")
	f.Float64Var(&estimateMonthlyUsage, "monthly-usage", 0, "monthly usage in kWh")
	f.Float64Var(&estimatePeakDemand, "peak-demand", 0, "peak demand in kW (sizes from usage when no appliances are given)")
	f.StringVar(&estimateProperty, "property", "", "property type (residential, commercial, industrial, estate)")
	f.StringVar(&estimateObjective, "objective", "", "energy objective (standard-backup, extended-backup, near-off-grid, off-grid)")
	f.Float64Var(&estimateBackupHours, "backup-hours", 0, "backup hours (overrides the objective's window)")
	f.StringVar(&estimatePreset, "preset", "", "cost preset (default from config)")
	f.Float64Var(&estimateUtilityRate, "utility-rate", 0, "utility rate per kWh")
	f.StringVar(&estimateLocation, "location", "", "location for the utility rate (california, texas, florida)")
	f.StringVar(&estimateUsageService, "usage-service", "", "take monthly usage from stored history for this service")
	f.BoolVar(&estimateJSON, "json", false, "print the recommendation document as JSON")
	f.BoolVar(&estimateSave, "save", false, "save the optimal system as a quote")
	f.StringVar(&estimateContact, "contact", "", "contact stored with a saved quote")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(cmd)
	if err != nil {
		return err
	}

	eng, err := cfg.BuildEngine()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if estimateUsageService != "" {
		monthly, days, err := db.MonthlyUsageKWh(estimateUsageService, cfg.GetUsageDays())
		if err != nil {
			return fmt.Errorf("reading usage for %s: %w", estimateUsageService, err)
		}
		if days == 0 {
			return fmt.Errorf("no usage history for %s; run `gridsizer usage import` first", estimateUsageService)
		}
		logger.Debug("monthly usage from history",
			zap.String("service", estimateUsageService), zap.Int("days", days), zap.Float64("kwh", monthly))
		req.MonthlyUsage = monthly
	}

	catalog, err := db.ListBundles()
	if err != nil {
		return fmt.Errorf("listing bundles: %w", err)
	}

	rec, err := eng.Recommend(req, catalog)
	if err != nil {
		return fmt.Errorf("estimating: %w", err)
	}

	if estimateJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding recommendation: %w", err)
		}
	} else {
		printRecommendation(rec)
	}

	if estimateSave {
		q, err := rec.Quote(estimateContact)
		if err != nil {
			return err
		}
		if err := db.SaveQuote(&q); err != nil {
			return fmt.Errorf("saving quote: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved quote %s\n", q.ID)
	}

	return nil
}

// buildRequest merges the plan file with flags; flags that were set win
func buildRequest(cmd *cobra.Command) (engine.Request, error) {
	var req engine.Request
	if estimatePlan != "" {
		data, err := os.ReadFile(estimatePlan)
		if err != nil {
			return req, fmt.Errorf("reading plan: %w", err)
		}
		if err := yaml.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("parsing plan: %w", err)
		}
	}

	for _, spec := range estimateAppliances {
		sel, err := parseApplianceFlag(spec)
		if err != nil {
			return req, err
		}
		req.Appliances = append(req.Appliances, sel)
	}

	flags := cmd.Flags()
	if flags.Changed("monthly-usage") {
		req.MonthlyUsage = estimateMonthlyUsage
	}
	if flags.Changed("peak-demand") {
		req.PeakDemand = estimatePeakDemand
	}
	if flags.Changed("property") {
		req.PropertyType = estimateProperty
	}
	if flags.Changed("objective") {
		req.EnergyObjective = estimateObjective
	}
	if flags.Changed("backup-hours") {
		req.BackupHours = estimateBackupHours
	}
	if flags.Changed("preset") {
		req.Preset = estimatePreset
	}
	if flags.Changed("utility-rate") {
		req.UtilityRate = estimateUtilityRate
	}
	if flags.Changed("location") {
		req.Location = estimateLocation
	}

	return req, nil
}

// parseApplianceFlag parses id:quantity:hours[:watts]
func parseApplianceFlag(s string) (engine.ApplianceSelection, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 || parts[0] == "" {
		return engine.ApplianceSelection{}, fmt.Errorf("invalid appliance %q (use id:quantity:hours[:watts])", s)
	}

	qty, err := strconv.Atoi(parts[1])
	if err != nil {
		return engine.ApplianceSelection{}, fmt.Errorf("invalid quantity in %q: %w", s, err)
	}
	hours, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return engine.ApplianceSelection{}, fmt.Errorf("invalid hours in %q: %w", s, err)
	}

	sel := engine.ApplianceSelection{ID: parts[0], Quantity: qty, HoursPerDay: hours}
	if len(parts) == 4 {
		sel.Wattage, err = strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return engine.ApplianceSelection{}, fmt.Errorf("invalid watts in %q: %w", s, err)
		}
	}
	return sel, nil
}
