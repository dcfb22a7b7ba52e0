package database

import (
	"fmt"
	"time"

	"github.com/jgoulah/gridsizer/pkg/models"
)

// UpsertProduct inserts a catalog product or replaces the stored copy
func (db *DB) UpsertProduct(p *models.Product) error {
	if p.ID == "" {
		return fmt.Errorf("product %q has no id", p.Name)
	}

	query := `
	INSERT INTO products (id, name, category, type, price, image, inverter_kva, battery_kwh, solar_kw, in_stock, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		category = excluded.category,
		type = excluded.type,
		price = excluded.price,
		image = excluded.image,
		inverter_kva = excluded.inverter_kva,
		battery_kwh = excluded.battery_kwh,
		solar_kw = excluded.solar_kw,
		in_stock = excluded.in_stock,
		updated_at = excluded.updated_at
	`

	updatedAt := time.Now().UTC().Format(time.RFC3339)
	_, err := db.conn.Exec(query, p.ID, p.Name, p.Category, p.Type, p.Price, p.Image,
		p.InverterKVA, p.BatteryKWh, p.SolarKW, boolToInt(p.InStock), updatedAt)
	if err != nil {
		return fmt.Errorf("upserting product %s: %w", p.ID, err)
	}

	return nil
}

// ListProducts retrieves catalog products, optionally filtered by type
func (db *DB) ListProducts(productType string) ([]models.Product, error) {
	query := `
	SELECT id, name, category, type, price, image, inverter_kva, battery_kwh, solar_kw, in_stock
	FROM products
	WHERE (? = '' OR type = ?)
	ORDER BY inverter_kva, name
	`

	rows, err := db.conn.Query(query, productType, productType)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var results []models.Product
	for rows.Next() {
		var p models.Product
		var inStock int
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Type, &p.Price, &p.Image,
			&p.InverterKVA, &p.BatteryKWh, &p.SolarKW, &inStock); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		p.InStock = inStock != 0
		results = append(results, p)
	}

	return results, rows.Err()
}

// ListBundles retrieves the bundle products recommendations are matched against
func (db *DB) ListBundles() ([]models.Product, error) {
	return db.ListProducts(models.ProductBundle)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
