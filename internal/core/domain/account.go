package domain

import (
	"time"
)

// Account represents a locally tracked wallet account.
type Account struct {
	Address   string      `json:"address"    db:"address"    validate:"required,algo_address"`
	Name      string      `json:"name"       db:"name"       validate:"required,max=64"`
	Type      AccountType `json:"type"       db:"type"       validate:"required,oneof=standard watch ledger"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

type AccountType string

const (
	AccountTypeStandard AccountType = "standard"
	AccountTypeWatch    AccountType = "watch"
	AccountTypeLedger   AccountType = "ledger"
)

// Contact is an address book entry.
type Contact struct {
	ID        string    `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"    validate:"required,max=64"`
	Address   string    `json:"address"    db:"address" validate:"required,algo_address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Node holds the endpoints of one algod/indexer pair.
type Node struct {
	Name         string    `json:"name"          db:"name"`
	Network      string    `json:"network"       db:"network"`
	AlgodURL     string    `json:"algod_url"     db:"algod_url"`
	AlgodToken   string    `json:"-"             db:"algod_token"`
	IndexerURL   string    `json:"indexer_url"   db:"indexer_url"`
	IndexerToken string    `json:"-"             db:"indexer_token"`
	Active       bool      `json:"active"        db:"active"`
	UpdatedAt    time.Time `json:"updated_at"    db:"updated_at"`
}
