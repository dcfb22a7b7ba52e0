package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var appliancesCategory string

var appliancesCmd = &cobra.Command{
	Use:   "appliances",
	Short: "List the appliance catalog",
	Long:  `Lists the appliances an estimate plan can reference by id, with their default wattage.`,
	RunE:  runAppliances,
}

func init() {
	appliancesCmd.Flags().StringVar(&appliancesCategory, "category", "", "Filter by category (lighting, cooling, kitchen, entertainment, other)")
	rootCmd.AddCommand(appliancesCmd)
}

func runAppliances(cmd *cobra.Command, args []string) error {
	eng, err := cfg.BuildEngine()
	if err != nil {
		return err
	}

	fmt.Printf("%-16s  %-26s  %-14s  %8s\n", "ID", "Name", "Category", "Watts")
	fmt.Println("----------------------------------------------------------------------")
	count := 0
	for _, a := range eng.Appliances() {
		if appliancesCategory != "" && a.Category != appliancesCategory {
			continue
		}
		fmt.Printf("%-16s  %-26s  %-14s  %8s\n", a.ID, a.Name, a.Category, humanize.Commaf(a.Watts))
		count++
	}
	fmt.Println("----------------------------------------------------------------------")
	fmt.Printf("%d appliances\n", count)

	return nil
}
