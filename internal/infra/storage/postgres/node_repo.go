package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vietddude/algowatch/internal/core/domain"
)

// NodeRepo implements storage.NodeRepository using PostgreSQL.
type NodeRepo struct {
	db *DB
}

// NewNodeRepo creates a new PostgreSQL node repository.
func NewNodeRepo(db *DB) *NodeRepo {
	return &NodeRepo{db: db}
}

const nodeColumns = `name, network, algod_url, algod_token, indexer_url, indexer_token, active, updated_at`

// Save inserts or updates a node. The active flag is only changed by Activate.
func (r *NodeRepo) Save(ctx context.Context, n *domain.Node) error {
	query := `
		INSERT INTO nodes (name, network, algod_url, algod_token, indexer_url, indexer_token, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
		ON CONFLICT (name) DO UPDATE SET
			network = EXCLUDED.network,
			algod_url = EXCLUDED.algod_url,
			algod_token = EXCLUDED.algod_token,
			indexer_url = EXCLUDED.indexer_url,
			indexer_token = EXCLUDED.indexer_token,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		n.Name, n.Network, n.AlgodURL, n.AlgodToken, n.IndexerURL, n.IndexerToken,
	)
	if err != nil {
		return fmt.Errorf("failed to save node: %w", mapError(err))
	}
	return nil
}

// List retrieves all nodes.
func (r *NodeRepo) List(ctx context.Context) ([]*domain.Node, error) {
	var nodes []*domain.Node
	if err := r.db.SelectContext(ctx, &nodes, `SELECT `+nodeColumns+` FROM nodes ORDER BY network, name`); err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return nodes, nil
}

// GetActive retrieves the active node of a network.
func (r *NodeRepo) GetActive(ctx context.Context, network string) (*domain.Node, error) {
	var n domain.Node
	err := r.db.GetContext(ctx, &n, `SELECT `+nodeColumns+` FROM nodes WHERE network = $1 AND active`, network)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active node: %w", err)
	}
	return &n, nil
}

// Activate makes name the only active node of its network.
func (r *NodeRepo) Activate(ctx context.Context, name string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var network string
	err = tx.GetContext(ctx, &network, `SELECT network FROM nodes WHERE name = $1 FOR UPDATE`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load node: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET active = FALSE, updated_at = NOW() WHERE network = $1 AND active AND name <> $2`,
		network, name,
	); err != nil {
		return fmt.Errorf("failed to deactivate nodes: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET active = TRUE, updated_at = NOW() WHERE name = $1`, name,
	); err != nil {
		return fmt.Errorf("failed to activate node: %w", err)
	}

	return tx.Commit()
}
