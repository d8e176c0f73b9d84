// Package memory provides a lock-guarded, process-local product store.
package memory

import (
	"context"
	"sort"
	"sync"

	domain "supermarket/backend/internal/domain/product"
)

type record struct {
	product *domain.Product
	seq     uint64
}

// ProductRepository keeps products in memory. Mutations hold the write lock
// across the uniqueness check and the write; reads share the read lock.
type ProductRepository struct {
	mu     sync.RWMutex
	byID   map[string]record
	byName map[string]string
	bySKU  map[string]string
	seq    uint64
}

// NewProductRepository constructs an empty repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		byID:   make(map[string]record),
		byName: make(map[string]string),
		bySKU:  make(map[string]string),
	}
}

var _ domain.Repository = (*ProductRepository)(nil)

// Create inserts a new product.
func (r *ProductRepository) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rej := r.conflicts(product, ""); rej != nil {
		return rej
	}
	r.seq++
	stored := product.Clone()
	r.byID[stored.ID] = record{product: stored, seq: r.seq}
	r.index(stored)
	return nil
}

// GetByID fetches a product by id.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec.product.Clone(), nil
}

// List returns all products, newest first.
func (r *ProductRepository) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	records := make([]record, 0, len(r.byID))
	for _, rec := range r.byID {
		records = append(records, rec)
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.product.CreatedAt.Equal(b.product.CreatedAt) {
			return a.product.CreatedAt.After(b.product.CreatedAt)
		}
		return a.seq > b.seq
	})

	products := make([]*domain.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.product.Clone())
	}
	return products, nil
}

// Update replaces a stored product.
func (r *ProductRepository) Update(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if rej := r.conflicts(product, product.ID); rej != nil {
		return rej
	}
	r.unindex(current.product)
	stored := product.Clone()
	stored.CreatedAt = current.product.CreatedAt
	r.byID[stored.ID] = record{product: stored, seq: current.seq}
	r.index(stored)
	return nil
}

// Delete removes a product by id.
func (r *ProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.unindex(rec.product)
	delete(r.byID, id)
	return nil
}

// conflicts must be called with the write lock held.
func (r *ProductRepository) conflicts(p *domain.Product, excludeID string) *domain.Rejection {
	owner, nameTaken := r.byName[domain.NameKey(p.Name)]
	nameTaken = nameTaken && owner != excludeID

	skuTaken := false
	if p.SKU != nil {
		owner, ok := r.bySKU[*p.SKU]
		skuTaken = ok && owner != excludeID
	}
	return domain.DuplicateRejection(nameTaken, skuTaken)
}

func (r *ProductRepository) index(p *domain.Product) {
	r.byName[domain.NameKey(p.Name)] = p.ID
	if p.SKU != nil {
		r.bySKU[*p.SKU] = p.ID
	}
}

func (r *ProductRepository) unindex(p *domain.Product) {
	delete(r.byName, domain.NameKey(p.Name))
	if p.SKU != nil {
		delete(r.bySKU, *p.SKU)
	}
}
