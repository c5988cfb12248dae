/*
Package store defines the persistence interfaces between the projection
engine's collaborators and the database.

PURPOSE:
  The engine itself is pure; this package is where its inputs (suppliers
  with payment terms, contracts) and outputs (projection rows) live between
  calls. Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  SupplierStore:   Supplier records with payment-terms config
  ContractStore:   Contract records
  ProjectionStore: Projected payment rows, bulk-replaced per contract

REPLACE-ON-CHANGE CONTRACT:
  Projections have no incremental update story. Whenever a contract or its
  supplier's terms change, the engine is re-run and ReplaceProjections()
  atomically swaps the contract's full projection set. Stored rows are a
  read-model cache of the engine's deterministic output, keyed
  (contract, month, payment type).

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - store/memory: In-memory for testing

SEE ALSO:
  - terms/: The engine whose output is persisted here
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrContractNotFound = errors.New("contract not found")
	ErrDuplicateName    = errors.New("name already exists")
)

// =============================================================================
// RECORDS
// =============================================================================

// Supplier is a supplier with its payment-terms configuration. TermsJSON
// holds the structured rule-set (factory schema) when one has been
// authored; when empty, name-based resolution against the built-in table
// applies.
type Supplier struct {
	ID           string
	Name         string
	PaymentTerms string // Human-readable terms description
	TermsJSON    string // Structured rule-set JSON ("" = resolve by name)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Contract is one brokered energy-supply contract.
type Contract struct {
	ID               string
	SupplierID       string
	SupplierName     string // Denormalized on read for display/resolution
	CompanyName      string
	MeterNumber      string
	PreviousSupplier string
	EnergyType       string // "Gas" or "Electric"

	LockInDate        time.Time
	ContractStartDate time.Time
	ContractEndDate   time.Time

	CommsSC       decimal.Decimal // Standing-charge commission
	CommsUR       decimal.Decimal // Unit-rate commission (uplift, p/kWh)
	ContractValue decimal.Decimal

	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Projection is one persisted projected payment.
type Projection struct {
	ContractID  string
	MonthKey    string // Canonical "YYYY-MM"
	Amount      decimal.Decimal
	PaymentType string
	CreatedAt   time.Time
}

// =============================================================================
// INTERFACES
// =============================================================================

// SupplierStore persists suppliers and their terms configuration.
type SupplierStore interface {
	// SaveSupplier inserts or updates by ID. Names are unique.
	SaveSupplier(ctx context.Context, s Supplier) error

	GetSupplier(ctx context.Context, id string) (*Supplier, error)
	GetSupplierByName(ctx context.Context, name string) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
}

// ContractStore persists contracts.
type ContractStore interface {
	// SaveContract inserts or updates by ID.
	SaveContract(ctx context.Context, c Contract) error

	GetContract(ctx context.Context, id string) (*Contract, error)
	ListContracts(ctx context.Context) ([]Contract, error)
	DeleteContract(ctx context.Context, id string) error
}

// ProjectionStore persists projected payments.
type ProjectionStore interface {
	// ReplaceProjections atomically deletes the contract's existing rows
	// and inserts the new set. An empty set clears the contract.
	ReplaceProjections(ctx context.Context, contractID string, rows []Projection) error

	// ListProjections returns rows with fromKey <= month <= toKey, ordered
	// by month. Empty keys mean unbounded.
	ListProjections(ctx context.Context, fromKey, toKey string) ([]Projection, error)

	// ListProjectionsByContract returns a single contract's rows in month order.
	ListProjectionsByContract(ctx context.Context, contractID string) ([]Projection, error)

	DeleteProjections(ctx context.Context, contractID string) error
}

// Store bundles all persistence capabilities.
type Store interface {
	SupplierStore
	ContractStore
	ProjectionStore
}
