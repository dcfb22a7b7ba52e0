package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const (
	dateLayout = "2006-01-02"
	// fixed width so created_at sorts lexically
	timestampLayout = "2006-01-02T15:04:05.000000Z"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY under the HTTP server
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		price REAL NOT NULL DEFAULT 0,
		image TEXT NOT NULL DEFAULT '',
		inverter_kva REAL NOT NULL DEFAULT 0,
		battery_kwh REAL NOT NULL DEFAULT 0,
		solar_kw REAL NOT NULL DEFAULT 0,
		in_stock INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_products_type ON products(type);

	CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		property_type TEXT NOT NULL,
		objective TEXT NOT NULL,
		inverter_kva REAL NOT NULL,
		battery_kwh REAL NOT NULL,
		solar_kw REAL NOT NULL,
		total_price REAL NOT NULL,
		currency TEXT NOT NULL,
		preset TEXT NOT NULL,
		contact TEXT NOT NULL DEFAULT '',
		payload BLOB,
		published INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_quotes_created ON quotes(created_at);
	CREATE INDEX IF NOT EXISTS idx_quotes_published ON quotes(published);

	CREATE TABLE IF NOT EXISTS usage_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		kwh REAL NOT NULL,
		service TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(date, service)
	);
	CREATE INDEX IF NOT EXISTS idx_usage_date ON usage_data(date);
	CREATE INDEX IF NOT EXISTS idx_usage_service ON usage_data(service);
	`

	_, err := db.conn.Exec(schema)
	return err
}
