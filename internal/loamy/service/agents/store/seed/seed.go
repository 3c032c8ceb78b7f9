// Package seed holds the demo customer set loaded into fresh stores.
package seed

import (
	"context"
	"fmt"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/repo"
)

// Customers returns the demo customers.
func Customers() []*entity.Customer {
	return []*entity.Customer{
		{Name: "Alice", Status: entity.StatusVerified, CreditScore: 780, LoanLimit: 50000},
		{Name: "Bob", Status: entity.StatusPending, CreditScore: 650, LoanLimit: 20000},
		{Name: "Charlie", Status: entity.StatusVerified, CreditScore: 550, LoanLimit: 10000},
		{Name: "David", Status: entity.StatusVerified, CreditScore: 720, LoanLimit: 15000},
	}
}

// Load upserts the demo customers into r.
func Load(ctx context.Context, r repo.CustomerRepository) error {
	for _, c := range Customers() {
		if err := r.Upsert(ctx, c); err != nil {
			return fmt.Errorf("seed customer %s: %w", c.Name, err)
		}
	}
	return nil
}
