package boltdb

import (
	"context"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg/errno"
	"github.com/kiosk404/loamy/pkg/utils/json"
)

// CustomerStore implements repo.CustomerRepository using BoltDB. Keys are
// normalized customer names, so iteration order is name order.
type CustomerStore struct {
	db *bolt.DB
}

// NewCustomerStore creates a new BoltDB-backed CustomerStore.
func NewCustomerStore(db *DB) *CustomerStore {
	return &CustomerStore{db: db.Bolt()}
}

// Get retrieves a customer by name.
func (s *CustomerStore) Get(_ context.Context, name string) (*entity.Customer, error) {
	var (
		customer entity.Customer
		found    bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketCustomers).Get([]byte(entity.CustomerKey(name)))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &customer)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read customer %q: %w", name, err)
	}
	if !found {
		return nil, errno.ErrCustomerNotFound
	}
	return &customer, nil
}

// List returns all customers.
func (s *CustomerStore) List(_ context.Context) ([]*entity.Customer, error) {
	var customers []*entity.Customer
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCustomers).ForEach(func(_, v []byte) error {
			var c entity.Customer
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("failed to unmarshal customer: %w", err)
			}
			customers = append(customers, &c)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// Upsert creates or replaces a customer.
func (s *CustomerStore) Upsert(_ context.Context, customer *entity.Customer) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(customer)
		if err != nil {
			return fmt.Errorf("failed to marshal customer: %w", err)
		}
		return tx.Bucket(bucketCustomers).Put([]byte(entity.CustomerKey(customer.Name)), data)
	})
}
