package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/gridsizer/pkg/models"
)

var (
	usageService string
	usageLimit   int
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Manage utility usage history",
	Long: `Stores daily kWh readings per utility service. The average of the most recent
days (usage_days in config, default 30) feeds "estimate --usage-service".`,
}

var usageImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import daily usage from a date,kwh CSV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsageImport,
}

var usageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored usage data",
	RunE:  runUsageList,
}

func init() {
	usageCmd.PersistentFlags().StringVar(&usageService, "service", "", "Utility service the readings belong to (required)")
	usageCmd.MarkPersistentFlagRequired("service")
	usageListCmd.Flags().IntVar(&usageLimit, "limit", 0, "Limit number of records (0 = no limit)")
	usageCmd.AddCommand(usageImportCmd, usageListCmd)
	rootCmd.AddCommand(usageCmd)
}

func runUsageImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening usage file: %w", err)
	}
	defer f.Close()

	records, err := parseUsageCSV(f, usageService)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	for i := range records {
		if err := db.InsertUsage(&records[i]); err != nil {
			return err
		}
	}

	fmt.Printf("Imported %d readings for %s (duplicates ignored)\n", len(records), usageService)
	return nil
}

// parseUsageCSV reads date,kwh rows. A header row is skipped.
func parseUsageCSV(r io.Reader, service string) ([]models.UsageData, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var out []models.UsageData
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading usage csv: %w", err)
		}

		date, err := time.Parse(dateLayout, strings.TrimSpace(row[0]))
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: parsing date: %w", line, err)
		}
		kwh, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing kwh: %w", line, err)
		}
		if kwh < 0 {
			return nil, fmt.Errorf("line %d: negative kwh %v", line, kwh)
		}

		out = append(out, models.UsageData{Date: date, KWh: kwh, Service: service})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no usage rows found")
	}
	return out, nil
}

func runUsageList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	data, err := db.ListUsage(usageService, usageLimit)
	if err != nil {
		return fmt.Errorf("listing data for %s: %w", usageService, err)
	}
	if len(data) == 0 {
		fmt.Printf("No data found for %s\n", usageService)
		return nil
	}

	fmt.Printf("\n%s Usage Data:\n", usageService)
	fmt.Println("----------------------------------------")
	fmt.Printf("%-12s  %10s\n", "Date", "kWh")
	fmt.Println("----------------------------------------")

	var total float64
	for _, record := range data {
		fmt.Printf("%-12s  %10.2f\n", record.Date.Format(dateLayout), record.KWh)
		total += record.KWh
	}

	fmt.Println("----------------------------------------")
	fmt.Printf("Total: %s kWh (%d records)\n", humanize.CommafWithDigits(total, 2), len(data))

	monthly, days, err := db.MonthlyUsageKWh(usageService, cfg.GetUsageDays())
	if err != nil {
		return fmt.Errorf("averaging usage: %w", err)
	}
	fmt.Printf("Assumed monthly usage: %s kWh (last %d days)\n", humanize.CommafWithDigits(monthly, 1), days)

	return nil
}
