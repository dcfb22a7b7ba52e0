package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jgoulah/gridsizer/pkg/models"
)

// ErrQuoteNotFound is returned when a quote id has no stored row
var ErrQuoteNotFound = errors.New("quote not found")

const quoteColumns = `id, created_at, property_type, objective, inverter_kva, battery_kwh, solar_kw,
	total_price, currency, preset, contact, payload, published`

// SaveQuote stores a quote, assigning an id and creation time when unset
func (db *DB) SaveQuote(q *models.Quote) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO quotes (` + quoteColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.conn.Exec(query, q.ID, q.CreatedAt.UTC().Format(timestampLayout), q.PropertyType, q.Objective,
		q.InverterKVA, q.BatteryKWh, q.SolarKW, q.TotalPrice, q.Currency, q.Preset, q.Contact,
		q.Payload, boolToInt(q.Published))
	if err != nil {
		return fmt.Errorf("inserting quote: %w", err)
	}

	return nil
}

// GetQuote retrieves a single quote by id
func (db *DB) GetQuote(id string) (*models.Quote, error) {
	row := db.conn.QueryRow(`SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrQuoteNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListQuotes retrieves the most recent quotes, newest first. A limit of 0 means no limit.
func (db *DB) ListQuotes(limit int) ([]models.Quote, error) {
	return db.listQuotes(`SELECT `+quoteColumns+` FROM quotes ORDER BY created_at DESC LIMIT ?`, limitArg(limit))
}

// ListUnpublishedQuotes retrieves quotes not yet announced, oldest first
func (db *DB) ListUnpublishedQuotes() ([]models.Quote, error) {
	return db.listQuotes(`SELECT ` + quoteColumns + ` FROM quotes WHERE published = 0 ORDER BY created_at`)
}

// MarkQuotePublished marks a quote as announced
func (db *DB) MarkQuotePublished(id string) error {
	res, err := db.conn.Exec(`UPDATE quotes SET published = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking quote as published: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrQuoteNotFound, id)
	}
	return nil
}

func (db *DB) listQuotes(query string, args ...any) ([]models.Quote, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}
	defer rows.Close()

	var results []models.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *q)
	}

	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(s scanner) (*models.Quote, error) {
	var q models.Quote
	var createdAt string
	var published int

	err := s.Scan(&q.ID, &createdAt, &q.PropertyType, &q.Objective, &q.InverterKVA, &q.BatteryKWh,
		&q.SolarKW, &q.TotalPrice, &q.Currency, &q.Preset, &q.Contact, &q.Payload, &published)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning quote: %w", err)
	}

	q.CreatedAt, err = time.Parse(timestampLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	q.Published = published != 0

	return &q, nil
}

// sqlite treats a negative LIMIT as unbounded
func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
