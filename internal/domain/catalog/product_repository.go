package catalog

import "context"

// ProductRepository defines the read side of product persistence used at the till
type ProductRepository interface {
	// FindBySKUs returns the products matching the given SKUs. Unknown SKUs are
	// simply absent from the result.
	FindBySKUs(ctx context.Context, skus []string) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}
