package storage

import (
	"context"

	"github.com/vietddude/algowatch/internal/core/domain"
)

// AccountRepository handles locally tracked accounts
type AccountRepository interface {
	// Save inserts or updates an account
	Save(ctx context.Context, account *domain.Account) error

	// Get retrieves an account by address, domain.ErrNotFound if missing
	Get(ctx context.Context, address string) (*domain.Account, error)

	// List retrieves all accounts ordered by creation
	List(ctx context.Context) ([]*domain.Account, error)

	// ListByAddresses retrieves the tracked subset of addresses
	ListByAddresses(ctx context.Context, addresses []string) ([]*domain.Account, error)

	// Delete removes an account, domain.ErrNotFound if missing
	Delete(ctx context.Context, address string) error
}

// ContactRepository handles the address book
type ContactRepository interface {
	// Create adds a contact, domain.ErrConflict if the address is already saved
	Create(ctx context.Context, contact *domain.Contact) error

	// List retrieves all contacts ordered by name
	List(ctx context.Context) ([]*domain.Contact, error)

	// GetByAddress retrieves a contact by address
	GetByAddress(ctx context.Context, address string) (*domain.Contact, error)

	// Delete removes a contact by id
	Delete(ctx context.Context, id string) error
}

// NodeRepository handles node configuration
type NodeRepository interface {
	// Save inserts or updates a node by name
	Save(ctx context.Context, node *domain.Node) error

	// List retrieves all nodes
	List(ctx context.Context) ([]*domain.Node, error)

	// GetActive retrieves the active node of a network
	GetActive(ctx context.Context, network string) (*domain.Node, error)

	// Activate makes a node the only active one of its network
	Activate(ctx context.Context, name string) error
}
