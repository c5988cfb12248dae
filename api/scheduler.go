/*
scheduler.go - Automated projection regeneration

PURPOSE:
  Keeps the persisted projection rows fresh without manual regeneration.
  Projections depend on the current month only through reporting, but the
  stored rows are read by external consumers (BI exports against the
  database), so a periodic rebuild catches terms edits made outside the
  API and newly imported contracts.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Each run rebuilds every contract's rows via ReplaceProjections
  - A failed contract is logged and skipped, never fatal to the run

CONFIGURATION:
  - Interval: How often to rebuild (default: 24 hours)
  - Enabled:  Whether the scheduler is active (default: true)

USAGE:
  sched := api.NewRegenerationScheduler(st, handler)
  sched.Start()
  // ... later
  sched.Stop()

SEE ALSO:
  - projections.go: RegenerateProjections endpoint (manual trigger)
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/commission-engine/store"
)

// RegenerationScheduler periodically rebuilds persisted projections.
type RegenerationScheduler struct {
	Store    store.Store
	Handler  *Handler
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRegenerationScheduler creates a scheduler with defaults.
func NewRegenerationScheduler(st store.Store, handler *Handler) *RegenerationScheduler {
	return &RegenerationScheduler{
		Store:    st,
		Handler:  handler,
		Interval: 24 * time.Hour,
		Enabled:  true,
	}
}

// Start launches the background loop. No-op when disabled or running.
func (s *RegenerationScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled || s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.Interval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		log.Printf("projection scheduler started (interval %s)", s.Interval)
		for {
			select {
			case <-s.ticker.C:
				s.RunOnce()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the background loop and waits for any in-flight run.
func (s *RegenerationScheduler) Stop() {
	s.mu.Lock()
	if s.ticker == nil {
		s.mu.Unlock()
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.ticker = nil
	s.mu.Unlock()

	s.wg.Wait()
	log.Printf("projection scheduler stopped")
}

// RunOnce rebuilds every contract's persisted projections.
func (s *RegenerationScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	sups, err := s.Store.ListSuppliers(ctx)
	if err != nil {
		log.Printf("projection scheduler: list suppliers: %v", err)
		return
	}
	byID := make(map[string]store.Supplier, len(sups))
	for _, sup := range sups {
		byID[sup.ID] = sup
	}

	contracts, err := s.Store.ListContracts(ctx)
	if err != nil {
		log.Printf("projection scheduler: list contracts: %v", err)
		return
	}

	rebuilt := 0
	for _, c := range contracts {
		sup, ok := byID[c.SupplierID]
		if !ok {
			sup = store.Supplier{Name: c.SupplierName}
		}
		if err := s.Handler.regenerateContract(ctx, c, sup); err != nil {
			log.Printf("projection scheduler: contract %s: %v", c.ID, err)
			continue
		}
		rebuilt++
	}
	log.Printf("projection scheduler: rebuilt %d/%d contracts", rebuilt, len(contracts))
}
