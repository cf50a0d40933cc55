package products

import "time"

// Product is a sellable item listed by a store.
type Product struct {
	ID          string
	StoreID     string
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwningStoreID identifies the store the product belongs to. Products
// are store-owned only; there is no per-user owner.
func (p *Product) OwningStoreID() string { return p.StoreID }
