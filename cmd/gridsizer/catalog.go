package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jgoulah/gridsizer/pkg/models"
)

var catalogListType string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the product catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import products from a YAML file",
	Long: `Upserts the products listed under "products:" in a YAML file. Bundles with an
inverter rating are matched against recommendations.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored products",
	RunE:  runCatalogList,
}

func init() {
	catalogListCmd.Flags().StringVar(&catalogListType, "type", "", "Filter by product type (bundle, inverter, battery, solar, accessory)")
	catalogCmd.AddCommand(catalogImportCmd, catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}

type catalogFile struct {
	Products []models.Product `yaml:"products"`
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing catalog file: %w", err)
	}
	if len(file.Products) == 0 {
		return fmt.Errorf("no products found in %s", args[0])
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	for i := range file.Products {
		p := &file.Products[i]
		if p.Type == "" {
			p.Type = models.ProductBundle
		}
		if err := db.UpsertProduct(p); err != nil {
			return err
		}
	}

	fmt.Printf("Imported %d products\n", len(file.Products))
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	products, err := db.ListProducts(catalogListType)
	if err != nil {
		return fmt.Errorf("listing products: %w", err)
	}
	if len(products) == 0 {
		fmt.Println("No products found")
		return nil
	}

	fmt.Printf("%-26s  %-30s  %-9s  %6s  %6s  %14s  %s\n", "ID", "Name", "Type", "kVA", "kWh", "Price", "Stock")
	fmt.Println("----------------------------------------------------------------------------------------------------------")
	for _, p := range products {
		stock := "yes"
		if !p.InStock {
			stock = "no"
		}
		fmt.Printf("%-26s  %-30s  %-9s  %6s  %6s  %14s  %s\n",
			p.ID, p.Name, p.Type, humanize.Ftoa(p.InverterKVA), humanize.Ftoa(p.BatteryKWh), humanize.Commaf(p.Price), stock)
	}
	fmt.Printf("\n%d products\n", len(products))

	return nil
}
