package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/infra/storage"
)

// MemoryStorage keeps everything in process. Used when no database is configured.
type MemoryStorage struct {
	accounts map[string]*domain.Account
	contacts map[string]*domain.Contact
	nodes    map[string]*domain.Node
	mu       sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		accounts: make(map[string]*domain.Account),
		contacts: make(map[string]*domain.Contact),
		nodes:    make(map[string]*domain.Node),
	}
}

// -----------------------------------------------------------------------------
// Account Repository
// -----------------------------------------------------------------------------

type AccountRepo struct {
	store *MemoryStorage
}

var _ storage.AccountRepository = (*AccountRepo)(nil)

func NewAccountRepo(store *MemoryStorage) *AccountRepo {
	return &AccountRepo{store: store}
}

func (r *AccountRepo) Save(ctx context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := r.store.accounts[account.Address]; ok {
		account.CreatedAt = existing.CreatedAt
	} else {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	cp := *account
	r.store.accounts[account.Address] = &cp
	return nil
}

func (r *AccountRepo) Get(ctx context.Context, address string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	a, ok := r.store.accounts[address]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *AccountRepo) List(ctx context.Context) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*domain.Account, 0, len(r.store.accounts))
	for _, a := range r.store.accounts {
		cp := *a
		result = append(result, &cp)
	}
	sortAccounts(result)
	return result, nil
}

func (r *AccountRepo) ListByAddresses(ctx context.Context, addresses []string) ([]*domain.Account, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*domain.Account
	seen := make(map[string]bool, len(addresses))
	for _, addr := range addresses {
		if seen[addr] {
			continue
		}
		seen[addr] = true
		if a, ok := r.store.accounts[addr]; ok {
			cp := *a
			result = append(result, &cp)
		}
	}
	sortAccounts(result)
	return result, nil
}

func (r *AccountRepo) Delete(ctx context.Context, address string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.accounts[address]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.accounts, address)
	return nil
}

func sortAccounts(accounts []*domain.Account) {
	slices.SortFunc(accounts, func(a, b *domain.Account) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Address, b.Address)
	})
}

// -----------------------------------------------------------------------------
// Contact Repository
// -----------------------------------------------------------------------------

type ContactRepo struct {
	store *MemoryStorage
}

var _ storage.ContactRepository = (*ContactRepo)(nil)

func NewContactRepo(store *MemoryStorage) *ContactRepo {
	return &ContactRepo{store: store}
}

func (r *ContactRepo) Create(ctx context.Context, contact *domain.Contact) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, c := range r.store.contacts {
		if c.Address == contact.Address {
			return domain.ErrConflict
		}
	}
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	contact.CreatedAt = time.Now().UTC()

	cp := *contact
	r.store.contacts[contact.ID] = &cp
	return nil
}

func (r *ContactRepo) List(ctx context.Context) ([]*domain.Contact, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*domain.Contact, 0, len(r.store.contacts))
	for _, c := range r.store.contacts {
		cp := *c
		result = append(result, &cp)
	}
	slices.SortFunc(result, func(a, b *domain.Contact) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (r *ContactRepo) GetByAddress(ctx context.Context, address string) (*domain.Contact, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, c := range r.store.contacts {
		if c.Address == address {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ContactRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.contacts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.contacts, id)
	return nil
}

// -----------------------------------------------------------------------------
// Node Repository
// -----------------------------------------------------------------------------

type NodeRepo struct {
	store *MemoryStorage
}

var _ storage.NodeRepository = (*NodeRepo)(nil)

func NewNodeRepo(store *MemoryStorage) *NodeRepo {
	return &NodeRepo{store: store}
}

func (r *NodeRepo) Save(ctx context.Context, node *domain.Node) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cp := *node
	cp.Active = false
	if existing, ok := r.store.nodes[node.Name]; ok {
		cp.Active = existing.Active && existing.Network == node.Network
	}
	cp.UpdatedAt = time.Now().UTC()
	r.store.nodes[node.Name] = &cp
	return nil
}

func (r *NodeRepo) List(ctx context.Context) ([]*domain.Node, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*domain.Node, 0, len(r.store.nodes))
	for _, n := range r.store.nodes {
		cp := *n
		result = append(result, &cp)
	}
	slices.SortFunc(result, func(a, b *domain.Node) int {
		if c := strings.Compare(a.Network, b.Network); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

func (r *NodeRepo) GetActive(ctx context.Context, network string) (*domain.Node, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, n := range r.store.nodes {
		if n.Network == network && n.Active {
			cp := *n
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *NodeRepo) Activate(ctx context.Context, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	target, ok := r.store.nodes[name]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	for _, n := range r.store.nodes {
		if n.Network == target.Network && n.Active && n.Name != name {
			n.Active = false
			n.UpdatedAt = now
		}
	}
	target.Active = true
	target.UpdatedAt = now
	return nil
}
