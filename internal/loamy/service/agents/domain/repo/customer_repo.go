package repo

import (
	"context"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
)

// CustomerRepository defines the lookup interface for loan applicants.
// Names are matched case-insensitively.
type CustomerRepository interface {
	// Get retrieves a customer by name. Returns errno.ErrCustomerNotFound
	// when no such customer exists.
	Get(ctx context.Context, name string) (*entity.Customer, error)
	// List returns all customers ordered by name.
	List(ctx context.Context) ([]*entity.Customer, error)
	// Upsert creates or replaces a customer.
	Upsert(ctx context.Context, customer *entity.Customer) error
}
