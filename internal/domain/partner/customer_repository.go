package partner

import "context"

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByCode finds a customer by code, returning shared.ErrNotFound if absent
	FindByCode(ctx context.Context, code string) (*Customer, error)

	// Create inserts a new customer, returning shared.ErrDuplicate if the code is taken
	Create(ctx context.Context, customer *Customer) error
}
