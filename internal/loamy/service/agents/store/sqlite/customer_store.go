package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg/errno"
	_ "github.com/mattn/go-sqlite3" // Register SQLite3 driver
)

// CustomerStore implements repo.CustomerRepository on a SQLite database.
type CustomerStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(path string) (*CustomerStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &CustomerStore{db: db}, nil
}

// Close closes the database.
func (s *CustomerStore) Close() error {
	return s.db.Close()
}

// Get retrieves a customer by name.
func (s *CustomerStore) Get(ctx context.Context, name string) (*entity.Customer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, kyc_status, credit_score, loan_limit FROM `+TableCustomers+` WHERE lower(name) = ?`,
		entity.CustomerKey(name))

	var c entity.Customer
	if err := row.Scan(&c.Name, &c.Status, &c.CreditScore, &c.LoanLimit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errno.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("query customer %q: %w", name, err)
	}
	return &c, nil
}

// List returns all customers ordered by name.
func (s *CustomerStore) List(ctx context.Context) ([]*entity.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, kyc_status, credit_score, loan_limit FROM `+TableCustomers+` ORDER BY lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var customers []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(&c.Name, &c.Status, &c.CreditScore, &c.LoanLimit); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, &c)
	}
	return customers, rows.Err()
}

// Upsert creates or replaces a customer. An existing row keeps its id and
// stored name spelling.
func (s *CustomerStore) Upsert(ctx context.Context, c *entity.Customer) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+TableCustomers+` SET kyc_status = ?, credit_score = ?, loan_limit = ? WHERE lower(name) = ?`,
		string(c.Status), c.CreditScore, c.LoanLimit, entity.CustomerKey(c.Name))
	if err != nil {
		return fmt.Errorf("update customer %q: %w", c.Name, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+TableCustomers+` (name, kyc_status, credit_score, loan_limit) VALUES (?, ?, ?, ?)`,
		c.Name, string(c.Status), c.CreditScore, c.LoanLimit)
	if err != nil {
		return fmt.Errorf("insert customer %q: %w", c.Name, err)
	}
	return nil
}
