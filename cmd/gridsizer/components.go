package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/gridsizer/pkg/bundle"
)

var (
	componentsSystemType string
	componentsBatteryKWh float64
	componentsInverter   float64
	componentsSolarKW    float64
	componentsPreset     string
)

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "Price the parts list of a sized system",
	Long: `Breaks a system size, usually a tier from "estimate", into priced batteries,
inverter, solar array and the required accessories.

Example:
  gridsizer components --battery 8 --inverter 2 --solar 2 --preset storefront`,
	RunE: runComponents,
}

func init() {
	f := componentsCmd.Flags()
	f.StringVar(&componentsSystemType, "system-type", "", "property type (residential, commercial, industrial, estate)")
	f.Float64Var(&componentsBatteryKWh, "battery", 0, "battery capacity in kWh (required)")
	f.Float64Var(&componentsInverter, "inverter", 0, "inverter size in kVA (required)")
	f.Float64Var(&componentsSolarKW, "solar", 0, "solar array in kW (0 for storage only)")
	f.StringVar(&componentsPreset, "preset", "", "cost preset (default from config)")
	componentsCmd.MarkFlagRequired("battery")
	componentsCmd.MarkFlagRequired("inverter")
	rootCmd.AddCommand(componentsCmd)
}

func runComponents(cmd *cobra.Command, args []string) error {
	eng, err := cfg.BuildEngine()
	if err != nil {
		return err
	}

	parts, err := eng.Components(bundle.ComponentsInput{
		SystemType:  componentsSystemType,
		BatteryKWh:  componentsBatteryKWh,
		InverterKVA: componentsInverter,
		SolarKW:     componentsSolarKW,
	}, componentsPreset)
	if err != nil {
		return fmt.Errorf("pricing components: %w", err)
	}

	fmt.Printf("%s system, prices in %s\n", parts.SystemType, parts.Currency)
	fmt.Println("----------------------------------------------------------------------")
	for _, group := range [][]bundle.Component{parts.Batteries, parts.Inverters, parts.Solar, parts.Accessories} {
		for _, p := range group {
			tag := ""
			if p.Required {
				tag = " (required)"
			}
			fmt.Printf("  %-40s %20s%s\n", p.Name, money(parts.Currency, p.Price), tag)
		}
	}
	fmt.Println("----------------------------------------------------------------------")
	fmt.Printf("  %-40s %20s\n", "Total", money(parts.Currency, parts.Total))
	return nil
}
