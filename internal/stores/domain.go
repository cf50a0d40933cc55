package stores

import "time"

// Store represents one merchant storefront on the platform.
type Store struct {
	ID        string
	Slug      string
	Name      string
	OwnerID   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnerUserID identifies the account that created the store.
func (s *Store) OwnerUserID() string { return s.OwnerID }

// OwningStoreID makes a store its own owning store, so store-admin
// checks on the store record itself resolve against its role table.
func (s *Store) OwningStoreID() string { return s.ID }
