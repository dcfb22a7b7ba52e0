package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jgoulah/gridsizer/internal/database"
	"github.com/jgoulah/gridsizer/internal/publisher"
)

var quotesLimit int

var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Manage saved quotes",
}

var quotesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved quotes, newest first",
	RunE:  runQuotesList,
}

var quotesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the stored recommendation document of a quote",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuotesShow,
}

var quotesPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Announce unpublished quotes over MQTT and Home Assistant",
	Long:  `Publishes every quote not yet announced to the targets enabled in config, marking each one on success.`,
	RunE:  runQuotesPublish,
}

func init() {
	quotesListCmd.Flags().IntVar(&quotesLimit, "limit", 20, "Limit number of quotes (0 = no limit)")
	quotesCmd.AddCommand(quotesListCmd, quotesShowCmd, quotesPublishCmd)
	rootCmd.AddCommand(quotesCmd)
}

func runQuotesList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	quotes, err := db.ListQuotes(quotesLimit)
	if err != nil {
		return fmt.Errorf("listing quotes: %w", err)
	}
	if len(quotes) == 0 {
		fmt.Println("No quotes found")
		return nil
	}

	fmt.Printf("%-36s  %-14s  %-12s  %-16s  %6s  %6s  %5s  %16s  %s\n",
		"ID", "Created", "Property", "Objective", "kVA", "kWh", "kW", "Price", "Pub")
	for _, q := range quotes {
		pub := "-"
		if q.Published {
			pub = "✓"
		}
		fmt.Printf("%-36s  %-14s  %-12s  %-16s  %6s  %6s  %5s  %16s  %s\n",
			q.ID, humanize.Time(q.CreatedAt), q.PropertyType, q.Objective,
			humanize.Ftoa(q.InverterKVA), humanize.Ftoa(q.BatteryKWh), humanize.Ftoa(q.SolarKW),
			money(q.Currency, q.TotalPrice), pub)
	}

	return nil
}

func runQuotesShow(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	q, err := db.GetQuote(args[0])
	if err != nil {
		return err
	}
	os.Stdout.Write(q.Payload)
	fmt.Println()
	return nil
}

func runQuotesPublish(cmd *cobra.Command, args []string) error {
	pub, err := publisher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()
	if !pub.Enabled() {
		return publisher.ErrNoTargets
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	published, total, err := publishPending(db, pub)
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Println("No unpublished quotes")
		return nil
	}
	fmt.Printf("Successfully published %d/%d quotes\n", published, total)
	return nil
}

// publishPending announces every unpublished quote. A quote that fails to
// publish stays pending for the next run.
func publishPending(db *database.DB, pub *publisher.Publisher) (published, total int, err error) {
	pending, err := db.ListUnpublishedQuotes()
	if err != nil {
		return 0, 0, fmt.Errorf("listing unpublished quotes: %w", err)
	}

	for _, q := range pending {
		if err := pub.PublishQuote(q); err != nil {
			logger.Warn("publishing quote failed", zap.String("id", q.ID), zap.Error(err))
			continue
		}
		if err := db.MarkQuotePublished(q.ID); err != nil {
			logger.Warn("marking quote published failed", zap.String("id", q.ID), zap.Error(err))
			continue
		}
		logger.Info("quote published", zap.String("id", q.ID))
		published++
	}

	return published, len(pending), nil
}
