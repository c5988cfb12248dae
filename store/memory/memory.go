/*
Package memory provides an in-memory implementation of store.Store.

PURPOSE:
  Backs tests and throwaway environments without touching disk. Behavior
  mirrors store/sqlite: upsert-by-ID, unique supplier names, bulk projection
  replacement, month-key range listing.

USAGE:
  st := memory.New()
  _ = st.SaveSupplier(ctx, sup)

SEE ALSO:
  - store/store.go: Interface definitions
  - store/sqlite:   Production implementation
*/
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/commission-engine/store"
)

// Store implements store.Store with in-process maps.
type Store struct {
	mu          sync.RWMutex
	suppliers   map[string]store.Supplier
	contracts   map[string]store.Contract
	projections map[string][]store.Projection // keyed by contract ID
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		suppliers:   make(map[string]store.Supplier),
		contracts:   make(map[string]store.Contract),
		projections: make(map[string][]store.Projection),
	}
}

// =============================================================================
// SUPPLIER STORE
// =============================================================================

func (s *Store) SaveSupplier(ctx context.Context, sup store.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.suppliers {
		if id != sup.ID && existing.Name == sup.Name {
			return store.ErrDuplicateName
		}
	}

	now := time.Now().UTC()
	if existing, ok := s.suppliers[sup.ID]; ok {
		sup.CreatedAt = existing.CreatedAt
	} else {
		sup.CreatedAt = now
	}
	sup.UpdatedAt = now
	s.suppliers[sup.ID] = sup
	return nil
}

func (s *Store) GetSupplier(ctx context.Context, id string) (*store.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sup, ok := s.suppliers[id]
	if !ok {
		return nil, store.ErrSupplierNotFound
	}
	return &sup, nil
}

func (s *Store) GetSupplierByName(ctx context.Context, name string) (*store.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sup := range s.suppliers {
		if sup.Name == name {
			out := sup
			return &out, nil
		}
	}
	return nil, store.ErrSupplierNotFound
}

func (s *Store) ListSuppliers(ctx context.Context) ([]store.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		out = append(out, sup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suppliers[id]; !ok {
		return store.ErrSupplierNotFound
	}
	delete(s.suppliers, id)
	return nil
}

// =============================================================================
// CONTRACT STORE
// =============================================================================

func (s *Store) SaveContract(ctx context.Context, c store.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.contracts[c.ID]; ok {
		c.CreatedAt = existing.CreatedAt
	} else {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	s.contracts[c.ID] = c
	return nil
}

func (s *Store) GetContract(ctx context.Context, id string) (*store.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[id]
	if !ok {
		return nil, store.ErrContractNotFound
	}
	if sup, ok := s.suppliers[c.SupplierID]; ok {
		c.SupplierName = sup.Name
	}
	return &c, nil
}

func (s *Store) ListContracts(ctx context.Context) ([]store.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		if sup, ok := s.suppliers[c.SupplierID]; ok {
			c.SupplierName = sup.Name
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteContract(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[id]; !ok {
		return store.ErrContractNotFound
	}
	delete(s.contracts, id)
	delete(s.projections, id)
	return nil
}

// =============================================================================
// PROJECTION STORE
// =============================================================================

func (s *Store) ReplaceProjections(ctx context.Context, contractID string, rows []store.Projection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	copied := make([]store.Projection, len(rows))
	for i, p := range rows {
		p.ContractID = contractID
		p.CreatedAt = now
		copied[i] = p
	}
	s.projections[contractID] = copied
	return nil
}

func (s *Store) ListProjections(ctx context.Context, fromKey, toKey string) ([]store.Projection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Projection
	for _, rows := range s.projections {
		for _, p := range rows {
			if fromKey != "" && p.MonthKey < fromKey {
				continue
			}
			if toKey != "" && p.MonthKey > toKey {
				continue
			}
			out = append(out, p)
		}
	}
	sortProjections(out)
	return out, nil
}

func (s *Store) ListProjectionsByContract(ctx context.Context, contractID string) ([]store.Projection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.projections[contractID]
	out := make([]store.Projection, len(rows))
	copy(out, rows)
	sortProjections(out)
	return out, nil
}

func (s *Store) DeleteProjections(ctx context.Context, contractID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.projections, contractID)
	return nil
}

func sortProjections(rows []store.Projection) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].MonthKey != rows[j].MonthKey {
			return rows[i].MonthKey < rows[j].MonthKey
		}
		if rows[i].ContractID != rows[j].ContractID {
			return rows[i].ContractID < rows[j].ContractID
		}
		return rows[i].PaymentType < rows[j].PaymentType
	})
}
