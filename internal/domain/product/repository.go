package product

import "context"

// Repository defines persistence behaviours for products.
//
// Create and Update evaluate name and SKU uniqueness and perform the write as
// one atomic unit with respect to other mutations. A conflict is reported as
// a *Rejection and leaves the collection unchanged.
type Repository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
}
