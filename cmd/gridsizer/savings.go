package main

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/gridsizer/pkg/cost"
)

var savingsUsage float64

var savingsCmd = &cobra.Command{
	Use:   "savings <location>",
	Short: "Project bill savings for a location",
	Long: `Projects the monthly bill before and after solar using the location's average
utility rate, plus the incentives available there. Unknown locations use the
national default.

Example:
  gridsizer savings california --usage 850`,
	Args: cobra.ExactArgs(1),
	RunE: runSavings,
}

func init() {
	savingsCmd.Flags().Float64Var(&savingsUsage, "usage", 0, "monthly usage in kWh (default 1000)")
	rootCmd.AddCommand(savingsCmd)
}

func runSavings(cmd *cobra.Command, args []string) error {
	if math.IsNaN(savingsUsage) || math.IsInf(savingsUsage, 0) || savingsUsage < 0 {
		return fmt.Errorf("usage must be a non-negative number of kWh (got %v)", savingsUsage)
	}

	s := cost.LocationSavings(args[0], savingsUsage)

	fmt.Printf("Location: %s (%s kWh/month)\n", s.Location, humanize.Commaf(s.MonthlyUsage))
	fmt.Println("----------------------------------------")
	fmt.Printf("%-20s %12s\n", "Current bill", money("USD", s.CurrentBill))
	fmt.Printf("%-20s %12s\n", "Projected bill", money("USD", s.ProjectedBill))
	fmt.Printf("%-20s %12s\n", "Monthly savings", money("USD", s.MonthlySavings))
	fmt.Printf("%-20s %12s\n", "Annual savings", money("USD", s.AnnualSavings))
	fmt.Println("----------------------------------------")
	fmt.Printf("Incentives: federal %.0f%%, state %.0f%%, utility %.0f%%\n",
		s.Incentives.Federal*100, s.Incentives.State*100, s.Incentives.Utility*100)
	fmt.Printf("Grid reliability: %.0f%%\n", s.GridReliability*100)

	return nil
}
