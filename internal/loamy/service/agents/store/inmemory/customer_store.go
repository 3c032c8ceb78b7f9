package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg/errno"
)

// CustomerStore is an in-memory implementation of repo.CustomerRepository.
type CustomerStore struct {
	mu        sync.RWMutex
	customers map[string]entity.Customer
}

// NewCustomerStore creates a new CustomerStore instance.
func NewCustomerStore() *CustomerStore {
	return &CustomerStore{
		customers: make(map[string]entity.Customer),
	}
}

// Get returns a customer by name.
func (s *CustomerStore) Get(_ context.Context, name string) (*entity.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[entity.CustomerKey(name)]
	if !ok {
		return nil, errno.ErrCustomerNotFound
	}
	return &c, nil
}

// List returns all customers ordered by name.
func (s *CustomerStore) List(_ context.Context) ([]*entity.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customers := make([]*entity.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		c := c
		customers = append(customers, &c)
	}
	sort.Slice(customers, func(i, j int) bool {
		return entity.CustomerKey(customers[i].Name) < entity.CustomerKey(customers[j].Name)
	})
	return customers, nil
}

// Upsert creates or replaces a customer.
func (s *CustomerStore) Upsert(_ context.Context, customer *entity.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[entity.CustomerKey(customer.Name)] = *customer
	return nil
}
