/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements store.Store (suppliers, contracts, projections) using SQLite.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

REPLACE-ON-CHANGE:
  Projections are a derived read-model: ReplaceProjections deletes and
  re-inserts a contract's full projection set inside one transaction, so
  readers never observe a partial regeneration.

KEY TABLES:
  suppliers:   Supplier records with terms description + structured JSON
  contracts:   Contract records (dates as YYYY-MM-DD, money as TEXT)
  projections: Projected payments keyed (contract_id, month_key, payment_type)

MONEY COLUMNS:
  Stored as TEXT and round-tripped through decimal.Decimal strings, never
  floats - the same precision discipline the engine uses in memory.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers don't
  block and a single writer at a time is enforced by the driver.

USAGE:
  st, err := sqlite.New("./data/commissions.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: Interface definitions
  - store/memory:   In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS suppliers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		payment_terms TEXT NOT NULL DEFAULT '',
		terms_json TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		supplier_id TEXT NOT NULL,
		company_name TEXT NOT NULL,
		meter_number TEXT NOT NULL DEFAULT '',
		previous_supplier TEXT NOT NULL DEFAULT '',
		energy_type TEXT NOT NULL DEFAULT 'Electric',
		lock_in_date TEXT NOT NULL,
		contract_start_date TEXT NOT NULL,
		contract_end_date TEXT NOT NULL,
		comms_sc TEXT NOT NULL DEFAULT '0',
		comms_ur TEXT NOT NULL DEFAULT '0',
		contract_value TEXT NOT NULL DEFAULT '0',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (supplier_id) REFERENCES suppliers(id)
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_supplier
		ON contracts(supplier_id);
	CREATE INDEX IF NOT EXISTS idx_contracts_company
		ON contracts(company_name);

	-- Derived read-model of the engine's output. Bulk replaced per
	-- contract; one row per (contract, month, payment type).
	CREATE TABLE IF NOT EXISTS projections (
		contract_id TEXT NOT NULL,
		month_key TEXT NOT NULL,
		amount TEXT NOT NULL,
		payment_type TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (contract_id, month_key, payment_type),
		FOREIGN KEY (contract_id) REFERENCES contracts(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_projections_month
		ON projections(month_key);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SUPPLIER STORE
// =============================================================================

// SaveSupplier inserts or updates a supplier by ID.
func (s *Store) SaveSupplier(ctx context.Context, sup store.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO suppliers (id, name, payment_terms, terms_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			payment_terms = excluded.payment_terms,
			terms_json = excluded.terms_json,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, sup.ID, sup.Name, sup.PaymentTerms, sup.TermsJSON, now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return store.ErrDuplicateName
		}
		return fmt.Errorf("failed to save supplier: %w", err)
	}
	return nil
}

// GetSupplier returns a supplier by ID, or ErrSupplierNotFound.
func (s *Store) GetSupplier(ctx context.Context, id string) (*store.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getSupplier(ctx, "id = ?", id)
}

// GetSupplierByName returns a supplier by exact name, or ErrSupplierNotFound.
func (s *Store) GetSupplierByName(ctx context.Context, name string) (*store.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getSupplier(ctx, "name = ?", name)
}

func (s *Store) getSupplier(ctx context.Context, where string, arg any) (*store.Supplier, error) {
	query := `
		SELECT id, name, payment_terms, terms_json, created_at, updated_at
		FROM suppliers WHERE ` + where

	var sup store.Supplier
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&sup.ID, &sup.Name, &sup.PaymentTerms, &sup.TermsJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrSupplierNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	sup.CreatedAt = parseTime(createdAt)
	sup.UpdatedAt = parseTime(updatedAt)
	return &sup, nil
}

// ListSuppliers returns all suppliers ordered by name.
func (s *Store) ListSuppliers(ctx context.Context) ([]store.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, payment_terms, terms_json, created_at, updated_at
		FROM suppliers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	var out []store.Supplier
	for rows.Next() {
		var sup store.Supplier
		var createdAt, updatedAt string
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.PaymentTerms, &sup.TermsJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		sup.CreatedAt = parseTime(createdAt)
		sup.UpdatedAt = parseTime(updatedAt)
		out = append(out, sup)
	}
	return out, rows.Err()
}

// DeleteSupplier removes a supplier by ID.
func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrSupplierNotFound
	}
	return nil
}

// =============================================================================
// CONTRACT STORE
// =============================================================================

const contractColumns = `
	c.id, c.supplier_id, s.name, c.company_name, c.meter_number,
	c.previous_supplier, c.energy_type, c.lock_in_date, c.contract_start_date,
	c.contract_end_date, c.comms_sc, c.comms_ur, c.contract_value, c.notes,
	c.created_at, c.updated_at`

// SaveContract inserts or updates a contract by ID.
func (s *Store) SaveContract(ctx context.Context, c store.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO contracts
		(id, supplier_id, company_name, meter_number, previous_supplier, energy_type,
		 lock_in_date, contract_start_date, contract_end_date,
		 comms_sc, comms_ur, contract_value, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			supplier_id = excluded.supplier_id,
			company_name = excluded.company_name,
			meter_number = excluded.meter_number,
			previous_supplier = excluded.previous_supplier,
			energy_type = excluded.energy_type,
			lock_in_date = excluded.lock_in_date,
			contract_start_date = excluded.contract_start_date,
			contract_end_date = excluded.contract_end_date,
			comms_sc = excluded.comms_sc,
			comms_ur = excluded.comms_ur,
			contract_value = excluded.contract_value,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.SupplierID, c.CompanyName, c.MeterNumber, c.PreviousSupplier, c.EnergyType,
		formatDate(c.LockInDate), formatDate(c.ContractStartDate), formatDate(c.ContractEndDate),
		c.CommsSC.String(), c.CommsUR.String(), c.ContractValue.String(), c.Notes, now, now)
	if err != nil {
		return fmt.Errorf("failed to save contract: %w", err)
	}
	return nil
}

// GetContract returns a contract by ID with its supplier name populated,
// or ErrContractNotFound.
func (s *Store) GetContract(ctx context.Context, id string) (*store.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + contractColumns + `
		FROM contracts c JOIN suppliers s ON s.id = c.supplier_id
		WHERE c.id = ?`

	row := s.db.QueryRowContext(ctx, query, id)
	c, err := scanContract(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrContractNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return c, nil
}

// ListContracts returns all contracts, newest first, supplier names populated.
func (s *Store) ListContracts(ctx context.Context) ([]store.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + contractColumns + `
		FROM contracts c JOIN suppliers s ON s.id = c.supplier_id
		ORDER BY c.created_at DESC, c.id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var out []store.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// DeleteContract removes a contract and (via cascade) its projections.
func (s *Store) DeleteContract(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM contracts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrContractNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContract(row scanner) (*store.Contract, error) {
	var c store.Contract
	var lockIn, csd, ced, commsSC, commsUR, value, createdAt, updatedAt string
	err := row.Scan(
		&c.ID, &c.SupplierID, &c.SupplierName, &c.CompanyName, &c.MeterNumber,
		&c.PreviousSupplier, &c.EnergyType, &lockIn, &csd, &ced,
		&commsSC, &commsUR, &value, &c.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.LockInDate = parseDate(lockIn)
	c.ContractStartDate = parseDate(csd)
	c.ContractEndDate = parseDate(ced)
	c.CommsSC = parseDecimal(commsSC)
	c.CommsUR = parseDecimal(commsUR)
	c.ContractValue = parseDecimal(value)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

// =============================================================================
// PROJECTION STORE
// =============================================================================

// ReplaceProjections atomically swaps a contract's projection rows.
func (s *Store) ReplaceProjections(ctx context.Context, contractID string, rows []store.Projection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM projections WHERE contract_id = ?`, contractID); err != nil {
		return fmt.Errorf("failed to clear projections: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projections (contract_id, month_key, amount, payment_type, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			contractID, p.MonthKey, p.Amount.String(), p.PaymentType, now)
		if err != nil {
			return fmt.Errorf("failed to insert projection: %w", err)
		}
	}

	return tx.Commit()
}

// ListProjections returns rows in [fromKey, toKey] ordered by month.
// Empty keys mean unbounded.
func (s *Store) ListProjections(ctx context.Context, fromKey, toKey string) ([]store.Projection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT contract_id, month_key, amount, payment_type, created_at
		FROM projections WHERE 1=1`
	var args []any
	if fromKey != "" {
		query += ` AND month_key >= ?`
		args = append(args, fromKey)
	}
	if toKey != "" {
		query += ` AND month_key <= ?`
		args = append(args, toKey)
	}
	query += ` ORDER BY month_key ASC, contract_id ASC, payment_type ASC`

	return s.queryProjections(ctx, query, args...)
}

// ListProjectionsByContract returns one contract's rows in month order.
func (s *Store) ListProjectionsByContract(ctx context.Context, contractID string) ([]store.Projection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryProjections(ctx, `
		SELECT contract_id, month_key, amount, payment_type, created_at
		FROM projections WHERE contract_id = ?
		ORDER BY month_key ASC, payment_type ASC`, contractID)
}

// DeleteProjections removes all rows for a contract.
func (s *Store) DeleteProjections(ctx context.Context, contractID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM projections WHERE contract_id = ?`, contractID); err != nil {
		return fmt.Errorf("failed to delete projections: %w", err)
	}
	return nil
}

func (s *Store) queryProjections(ctx context.Context, query string, args ...any) ([]store.Projection, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projections: %w", err)
	}
	defer rows.Close()

	var out []store.Projection
	for rows.Next() {
		var p store.Projection
		var amount, createdAt string
		if err := rows.Scan(&p.ContractID, &p.MonthKey, &amount, &p.PaymentType, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan projection: %w", err)
		}
		p.Amount = parseDecimal(amount)
		p.CreatedAt = parseTime(createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func formatDate(t time.Time) string { return t.UTC().Format("2006-01-02") }

func parseDate(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
