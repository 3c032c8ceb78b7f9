package sqlite

import (
	"database/sql"
	"fmt"
)

const TableCustomers = "customers"

// EnsureSchema creates the customers table when it does not exist.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + TableCustomers + ` (
			id INTEGER PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			kyc_status TEXT NOT NULL,
			credit_score INTEGER NOT NULL,
			loan_limit REAL NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_lower_name ON ` + TableCustomers + `(lower(name))`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	return nil
}
