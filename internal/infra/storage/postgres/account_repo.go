package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/vietddude/algowatch/internal/core/domain"
)

// AccountRepo implements storage.AccountRepository using PostgreSQL.
type AccountRepo struct {
	db *DB
}

// NewAccountRepo creates a new PostgreSQL account repository.
func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

const accountColumns = `address, name, type, created_at, updated_at`

// Save inserts an account or renames an existing one.
func (r *AccountRepo) Save(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (address, name, type, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (address) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query, account.Address, account.Name, string(account.Type))
	if err := row.Scan(&account.CreatedAt, &account.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save account: %w", mapError(err))
	}
	return nil
}

// Get retrieves an account by address.
func (r *AccountRepo) Get(ctx context.Context, address string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.GetContext(ctx, &account, `SELECT `+accountColumns+` FROM accounts WHERE address = $1`, address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// List retrieves all accounts.
func (r *AccountRepo) List(ctx context.Context) ([]*domain.Account, error) {
	var accounts []*domain.Account
	err := r.db.SelectContext(ctx, &accounts, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at, address`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// ListByAddresses retrieves the accounts among addresses that are tracked.
func (r *AccountRepo) ListByAddresses(ctx context.Context, addresses []string) ([]*domain.Account, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	var accounts []*domain.Account
	err := r.db.SelectContext(ctx, &accounts,
		`SELECT `+accountColumns+` FROM accounts WHERE address = ANY($1) ORDER BY created_at, address`,
		pq.Array(addresses),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Delete removes an account.
func (r *AccountRepo) Delete(ctx context.Context, address string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE address = $1`, address)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
