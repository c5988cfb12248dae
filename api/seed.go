/*
seed.go - Demo data seeding

PURPOSE:
  Populates an empty database with the full supplier catalogue and a
  spread of generated contracts so the dashboard and projection views have
  something to show. Development convenience only; refuses to run when
  contracts already exist.

DETERMINISM:
  Generated values come from a seeded PRNG so repeated seeds of a fresh
  database produce identical data.

SEE ALSO:
  - suppliers/list.go: The catalogue being seeded
  - handlers.go: Projection regeneration used after seeding
*/
package api

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/store"
	"github.com/warp/commission-engine/suppliers"
)

const seedContractCount = 50

var seedCompanyPrefixes = []string{
	"Acme", "Global", "Premier", "Elite", "Summit", "Apex", "Prime", "Excel",
	"Metro", "Central", "Pacific", "Atlantic", "Northern", "Southern",
	"United", "First", "National", "Royal", "Crown", "Phoenix",
}

var seedCompanySuffixes = []string{
	"Industries", "Manufacturing", "Services", "Solutions", "Group",
	"Holdings", "Enterprises", "Trading", "Logistics", "Properties",
	"Foods", "Retail", "Construction", "Engineering", "Consulting",
}

// SeedDemoData creates the supplier catalogue and generated contracts.
func (h *Handler) SeedDemoData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, err := h.Store.ListContracts(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}
	if len(existing) > 0 {
		writeError(w, http.StatusConflict, "Database already has contracts", nil)
		return
	}

	// Catalogue suppliers first; contracts reference them by ID.
	var sups []store.Supplier
	for i, name := range suppliers.ValidSuppliers {
		sup := store.Supplier{
			ID:           fmt.Sprintf("sup-seed-%03d", i),
			Name:         name,
			PaymentTerms: suppliers.Resolve(name).Description,
		}
		if err := h.Store.SaveSupplier(ctx, sup); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed supplier", err)
			return
		}
		sups = append(sups, sup)
	}

	rng := rand.New(rand.NewSource(42))
	today := time.Now().UTC().Truncate(24 * time.Hour)

	seeded := 0
	for i := 0; i < seedContractCount; i++ {
		sup := sups[i%len(sups)]

		lockIn := today.AddDate(0, -6+rng.Intn(5), rng.Intn(28)-14)
		csd := lockIn.AddDate(0, 1+rng.Intn(6), 0)
		ced := csd.AddDate(rng.Intn(4)+1, 0, 0) // 1-4 year terms

		c := store.Contract{
			ID:                fmt.Sprintf("con-seed-%03d", i),
			SupplierID:        sup.ID,
			SupplierName:      sup.Name,
			CompanyName:       seedCompanyName(i),
			MeterNumber:       fmt.Sprintf("S%010d", rng.Int63n(9_000_000_000)+1_000_000_000),
			EnergyType:        seedEnergyType(rng),
			LockInDate:        lockIn,
			ContractStartDate: csd,
			ContractEndDate:   ced,
			CommsSC:           decimal.NewFromFloat(float64(rng.Intn(200)) / 100),
			CommsUR:           decimal.NewFromFloat(float64(rng.Intn(300)+50) / 100),
			ContractValue:     decimal.NewFromInt(int64(rng.Intn(45_000) + 5_000)),
		}
		if err := h.Store.SaveContract(ctx, c); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed contract", err)
			return
		}
		if err := h.regenerateContract(ctx, c, sup); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to project seeded contract", err)
			return
		}
		seeded++
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"suppliers": len(sups),
		"contracts": seeded,
	})
}

func seedCompanyName(i int) string {
	prefix := seedCompanyPrefixes[i%len(seedCompanyPrefixes)]
	suffix := seedCompanySuffixes[(i/len(seedCompanyPrefixes))%len(seedCompanySuffixes)]
	return prefix + " " + suffix
}

func seedEnergyType(rng *rand.Rand) string {
	if rng.Intn(2) == 0 {
		return "Gas"
	}
	return "Electric"
}
