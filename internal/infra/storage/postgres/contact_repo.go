package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vietddude/algowatch/internal/core/domain"
)

// ContactRepo implements storage.ContactRepository using PostgreSQL.
type ContactRepo struct {
	db *DB
}

// NewContactRepo creates a new PostgreSQL contact repository.
func NewContactRepo(db *DB) *ContactRepo {
	return &ContactRepo{db: db}
}

// Create adds a contact, assigning an id when empty.
func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO contacts (id, name, address, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, c.ID, c.Name, c.Address).Scan(&c.CreatedAt); err != nil {
		return fmt.Errorf("failed to create contact: %w", mapError(err))
	}
	return nil
}

// List retrieves all contacts.
func (r *ContactRepo) List(ctx context.Context) ([]*domain.Contact, error) {
	var contacts []*domain.Contact
	err := r.db.SelectContext(ctx, &contacts, `SELECT id, name, address, created_at FROM contacts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// GetByAddress retrieves a contact by address.
func (r *ContactRepo) GetByAddress(ctx context.Context, address string) (*domain.Contact, error) {
	var c domain.Contact
	err := r.db.GetContext(ctx, &c, `SELECT id, name, address, created_at FROM contacts WHERE address = $1`, address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &c, nil
}

// Delete removes a contact by id.
func (r *ContactRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
