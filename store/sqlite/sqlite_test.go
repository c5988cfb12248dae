package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/store"
	"github.com/warp/commission-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testSupplier(id, name string) store.Supplier {
	return store.Supplier{ID: id, Name: name, PaymentTerms: "80% live, 20% reconciliation"}
}

func testContract(id, supplierID string) store.Contract {
	return store.Contract{
		ID:                id,
		SupplierID:        supplierID,
		CompanyName:       "Acme Industries",
		MeterNumber:       "S1234567890",
		EnergyType:        "Electric",
		LockInDate:        time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		ContractStartDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		ContractEndDate:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CommsSC:           decimal.NewFromFloat(0.5),
		CommsUR:           decimal.NewFromFloat(1.2),
		ContractValue:     decimal.NewFromInt(10000),
	}
}

// =============================================================================
// SUPPLIER TESTS
// =============================================================================

func TestSupplierCRUD(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveSupplier(ctx, testSupplier("sup-1", "British Gas Acquisition")))

	got, err := st.GetSupplier(ctx, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, "British Gas Acquisition", got.Name)
	assert.Equal(t, "80% live, 20% reconciliation", got.PaymentTerms)
	assert.False(t, got.CreatedAt.IsZero())

	byName, err := st.GetSupplierByName(ctx, "British Gas Acquisition")
	require.NoError(t, err)
	assert.Equal(t, "sup-1", byName.ID)

	// Upsert by ID updates in place.
	updated := testSupplier("sup-1", "British Gas Acquisition")
	updated.TermsJSON = `{"default_payments":[]}`
	require.NoError(t, st.SaveSupplier(ctx, updated))
	got, err = st.GetSupplier(ctx, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, `{"default_payments":[]}`, got.TermsJSON)

	require.NoError(t, st.DeleteSupplier(ctx, "sup-1"))
	_, err = st.GetSupplier(ctx, "sup-1")
	assert.ErrorIs(t, err, store.ErrSupplierNotFound)
}

func TestSaveSupplier_DuplicateName(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveSupplier(ctx, testSupplier("sup-1", "Drax Acquisition")))
	err := st.SaveSupplier(ctx, testSupplier("sup-2", "Drax Acquisition"))
	assert.ErrorIs(t, err, store.ErrDuplicateName)
}

func TestListSuppliers_OrderedByName(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveSupplier(ctx, testSupplier("sup-1", "SSE Acquisition")))
	require.NoError(t, st.SaveSupplier(ctx, testSupplier("sup-2", "Drax Acquisition")))

	sups, err := st.ListSuppliers(ctx)
	require.NoError(t, err)
	require.Len(t, sups, 2)
	assert.Equal(t, "Drax Acquisition", sups[0].Name)
	assert.Equal(t, "SSE Acquisition", sups[1].Name)
}

func TestDeleteSupplier_NotFound(t *testing.T) {
	st := newTestStore(t)
	assert.ErrorIs(t, st.DeleteSupplier(context.Background(), "missing"), store.ErrSupplierNotFound)
}

// =============================================================================
// CONTRACT TESTS
// =============================================================================

func TestContractCRUD(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveSupplier(ctx, testSupplier("sup-1", "EonNext Acquisition")))
	require.NoError(t, st.SaveContract(ctx, testContract("con-1", "sup-1")))

	got, err := st.GetContract(ctx, "con-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Industries", got.CompanyName)
	assert.Equal(t, "EonNext Acquisition", got.SupplierName, "supplier name should be joined in")
	assert.True(t, got.ContractValue.Equal(decimal.NewFromInt(10000)))
	assert.True(t, got.CommsUR.Equal(decimal.NewFromFloat(1.2)))
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), got.ContractStartDate)

	// Upsert by ID.
	c := testContract("con-1", "sup-1")
	c.Notes = "renegotiated"
	c.ContractValue = decimal.NewFromInt(12000)
	require.NoError(t, st.SaveContract(ctx, c))
	got, err = st.GetContract(ctx, "con-1")
	require.NoError(t, err)
	assert.Equal(t, "renegotiated", got.Notes)
	assert.True(t, got.ContractValue.Equal(decimal.NewFromInt(12000)))

	require.NoError(t, st.DeleteContract(ctx, "con-1"))
	_, err = st.GetContract(ctx, "con-1")
	assert.ErrorIs(t, err, store.ErrContractNotFound)
}

func TestDeleteContract_CascadesProjections(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveSupplier(ctx, testSupplier("sup-1", "EDF Acquisition")))
	require.NoError(t, st.SaveContract(ctx, testContract("con-1", "sup-1")))
	require.NoError(t, st.ReplaceProjections(ctx, "con-1", []store.Projection{
		{ContractID: "con-1", MonthKey: "2025-02", Amount: decimal.NewFromInt(8000), PaymentType: "live"},
	}))

	require.NoError(t, st.DeleteContract(ctx, "con-1"))

	rows, err := st.ListProjectionsByContract(ctx, "con-1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// =============================================================================
// PROJECTION TESTS
// =============================================================================

func seedProjections(t *testing.T, st *sqlite.Store) {
	ctx := context.Background()
	require.NoError(t, st.SaveSupplier(ctx, testSupplier("sup-1", "EDF Acquisition")))
	require.NoError(t, st.SaveContract(ctx, testContract("con-1", "sup-1")))
	require.NoError(t, st.ReplaceProjections(ctx, "con-1", []store.Projection{
		{ContractID: "con-1", MonthKey: "2025-02", Amount: decimal.NewFromInt(8000), PaymentType: "live"},
		{ContractID: "con-1", MonthKey: "2026-03", Amount: decimal.NewFromInt(2000), PaymentType: "reconciliation"},
	}))
}

func TestReplaceProjections_SwapsFullSet(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedProjections(t, st)

	// Replacement removes the old rows entirely.
	require.NoError(t, st.ReplaceProjections(ctx, "con-1", []store.Projection{
		{ContractID: "con-1", MonthKey: "2025-03", Amount: decimal.NewFromInt(9000), PaymentType: "live"},
	}))

	rows, err := st.ListProjectionsByContract(ctx, "con-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-03", rows[0].MonthKey)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(9000)))
}

func TestReplaceProjections_EmptySetClears(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedProjections(t, st)

	require.NoError(t, st.ReplaceProjections(ctx, "con-1", nil))

	rows, err := st.ListProjectionsByContract(ctx, "con-1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListProjections_MonthKeyRange(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedProjections(t, st)

	// Bounded range keeps only the February row.
	rows, err := st.ListProjections(ctx, "2025-01", "2025-12")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-02", rows[0].MonthKey)

	// Open-ended bounds.
	rows, err = st.ListProjections(ctx, "2026-01", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-03", rows[0].MonthKey)

	rows, err = st.ListProjections(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
