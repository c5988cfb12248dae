package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/api"
)

func createContract(t *testing.T, router http.Handler, company, supplier string, value float64) api.ContractDTO {
	t.Helper()

	req := contractRequest(company, supplier)
	req["contract_value"] = value
	rec := doJSON(t, router, http.MethodPost, "/api/contracts", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dto api.ContractDTO
	decodeInto(t, rec, &dto)
	return dto
}

// =============================================================================
// PROJECTION REPORT TESTS
// =============================================================================

func TestGetProjections_BoundedMonthlySeriesZeroFills(t *testing.T) {
	router := newTestRouter(t)
	createContract(t, router, "Acme Industries", "British Gas Acquisition", 10000)

	rec := doJSON(t, router, http.MethodGet,
		"/api/projections?start_date=2025-01&end_date=2025-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var months []api.MonthProjectionDTO
	decodeInto(t, rec, &months)
	require.Len(t, months, 3)
	assert.Equal(t, "2025-01", months[0].MonthKey)
	assert.Zero(t, months[0].Amount)
	assert.Equal(t, "2025-02", months[1].MonthKey)
	assert.Equal(t, float64(8000), months[1].Amount)
	assert.Zero(t, months[2].Amount)
}

func TestGetProjections_UnboundedShowsOnlyPaidMonths(t *testing.T) {
	router := newTestRouter(t)
	createContract(t, router, "Acme Industries", "British Gas Acquisition", 10000)

	rec := doJSON(t, router, http.MethodGet, "/api/projections", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var months []api.MonthProjectionDTO
	decodeInto(t, rec, &months)
	require.Len(t, months, 2)
	assert.Equal(t, "2025-02", months[0].MonthKey)
	assert.Equal(t, "Feb 2025", months[0].Month)
	assert.Equal(t, "2026-03", months[1].MonthKey)
}

func TestGetProjections_GroupBySupplier(t *testing.T) {
	router := newTestRouter(t)
	createContract(t, router, "Acme Industries", "British Gas Acquisition", 10000)
	createContract(t, router, "Summit Foods", "Drax Acquisition", 4000)

	rec := doJSON(t, router, http.MethodGet, "/api/projections?group_by=supplier", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var totals []api.NameTotalDTO
	decodeInto(t, rec, &totals)
	require.Len(t, totals, 2)
	assert.Equal(t, "British Gas Acquisition", totals[0].Name)
	assert.Equal(t, float64(10000), totals[0].Amount)
	assert.Equal(t, "Drax Acquisition", totals[1].Name)
	assert.Equal(t, float64(4000), totals[1].Amount)
}

func TestGetProjections_GroupByCompany(t *testing.T) {
	router := newTestRouter(t)
	createContract(t, router, "Acme Industries", "British Gas Acquisition", 10000)

	rec := doJSON(t, router, http.MethodGet, "/api/projections?group_by=company", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var totals []api.NameTotalDTO
	decodeInto(t, rec, &totals)
	require.Len(t, totals, 1)
	assert.Equal(t, "Acme Industries", totals[0].Name)
	assert.Equal(t, float64(10000), totals[0].Amount)
}

func TestGetProjections_Detail(t *testing.T) {
	router := newTestRouter(t)
	contract := createContract(t, router, "Acme Industries", "British Gas Acquisition", 10000)

	rec := doJSON(t, router, http.MethodGet, "/api/projections?group_by=detail", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var details []api.ProjectionDetailDTO
	decodeInto(t, rec, &details)
	require.Len(t, details, 2)
	assert.Equal(t, contract.ID, details[0].ContractID)
	assert.Equal(t, "Acme Industries", details[0].CompanyName)
	assert.Equal(t, "live", details[0].PaymentType)
	assert.Equal(t, "reconciliation", details[1].PaymentType)
}

func TestGetProjections_RangeFiltersOtherGroupings(t *testing.T) {
	router := newTestRouter(t)
	createContract(t, router, "Acme Industries", "British Gas Acquisition", 10000)

	// Only the live payment (Feb 2025) falls inside the range.
	rec := doJSON(t, router, http.MethodGet,
		"/api/projections?group_by=supplier&start_date=2025-01&end_date=2025-12", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var totals []api.NameTotalDTO
	decodeInto(t, rec, &totals)
	require.Len(t, totals, 1)
	assert.Equal(t, float64(8000), totals[0].Amount)
}

// =============================================================================
// REGENERATION TESTS
// =============================================================================

func TestRegenerateProjections(t *testing.T) {
	router := newTestRouter(t)
	createContract(t, router, "Acme Industries", "British Gas Acquisition", 10000)
	createContract(t, router, "Summit Foods", "Drax Acquisition", 4000)

	rec := doJSON(t, router, http.MethodPost, "/api/projections/regenerate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.RegenerateResponse
	decodeInto(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, resp.Regenerated)
	assert.Empty(t, resp.Errors)
}

func TestRegenerateProjections_EmptyDatabase(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/projections/regenerate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.RegenerateResponse
	decodeInto(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Zero(t, resp.Total)
}

// =============================================================================
// DASHBOARD TESTS
// =============================================================================

func TestDashboardStats(t *testing.T) {
	router := newTestRouter(t)
	createContract(t, router, "Acme Industries", "British Gas Acquisition", 10000)
	createContract(t, router, "Summit Foods", "Drax Acquisition", 4000)

	rec := doJSON(t, router, http.MethodGet, "/api/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats api.DashboardStatsDTO
	decodeInto(t, rec, &stats)

	assert.Equal(t, 2, stats.TotalContracts)
	assert.Equal(t, float64(14000), stats.TotalContractValue)
	assert.Len(t, stats.MonthlyProjections, 12)
	assert.Len(t, stats.RecentContracts, 2)

	require.Len(t, stats.SupplierBreakdown, 2)
	assert.Equal(t, "British Gas Acquisition", stats.SupplierBreakdown[0].Name)
	assert.Equal(t, float64(10000), stats.SupplierBreakdown[0].Amount)

	require.Len(t, stats.SupplierPaymentStatus, 2)
	for _, st := range stats.SupplierPaymentStatus {
		assert.Equal(t, 2, st.OutstandingCount+st.UpcomingCount)
	}
}

func TestDashboardStats_EmptyDatabase(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats api.DashboardStatsDTO
	decodeInto(t, rec, &stats)
	assert.Zero(t, stats.TotalContracts)
	assert.Zero(t, stats.TotalContractValue)
	assert.Len(t, stats.MonthlyProjections, 12)
}
