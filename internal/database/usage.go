package database

import (
	"fmt"
	"time"

	"github.com/jgoulah/gridsizer/pkg/models"
)

// InsertUsage inserts a daily usage record, ignoring duplicates
func (db *DB) InsertUsage(data *models.UsageData) error {
	query := `
	INSERT OR IGNORE INTO usage_data (date, kwh, service, created_at)
	VALUES (?, ?, ?, ?)
	`

	createdAt := time.Now().UTC().Format(time.RFC3339)
	_, err := db.conn.Exec(query, data.Date.Format(dateLayout), data.KWh, data.Service, createdAt)
	if err != nil {
		return fmt.Errorf("inserting usage data: %w", err)
	}

	return nil
}

// ListUsage retrieves usage data for a service, newest first. A limit of 0 means no limit.
func (db *DB) ListUsage(service string, limit int) ([]models.UsageData, error) {
	query := `
	SELECT id, date, kwh, service
	FROM usage_data
	WHERE service = ?
	ORDER BY date DESC
	LIMIT ?
	`

	rows, err := db.conn.Query(query, service, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("querying usage data: %w", err)
	}
	defer rows.Close()

	var results []models.UsageData
	for rows.Next() {
		var data models.UsageData
		var dateStr string

		if err := rows.Scan(&data.ID, &dateStr, &data.KWh, &data.Service); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		data.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing date: %w", err)
		}

		results = append(results, data)
	}

	return results, rows.Err()
}

// MonthlyUsageKWh averages the most recent days of a service's history and
// scales it to a 30-day month. It also returns how many days were found;
// zero days yields zero usage.
func (db *DB) MonthlyUsageKWh(service string, days int) (float64, int, error) {
	records, err := db.ListUsage(service, days)
	if err != nil {
		return 0, 0, err
	}
	if len(records) == 0 {
		return 0, 0, nil
	}

	var total float64
	for _, r := range records {
		total += r.KWh
	}
	return total / float64(len(records)) * 30, len(records), nil
}
