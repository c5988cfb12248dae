package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/api"
	"github.com/warp/commission-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) http.Handler {
	return api.NewRouter(api.NewHandler(memory.New()))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func validTerms() map[string]any {
	return map[string]any{
		"default_payments": []map[string]any{
			{"percentage": 100, "trigger": "csd", "timing": "after", "months_offset": 1, "payment_type": "live"},
		},
	}
}

func contractRequest(company, supplierName string) map[string]any {
	return map[string]any{
		"supplier_name":       supplierName,
		"company_name":        company,
		"energy_type":         "Electric",
		"lock_in_date":        "2024-11-01",
		"contract_start_date": "2025-01-15",
		"contract_end_date":   "2026-01-15",
		"comms_ur":            1.2,
		"contract_value":      10000,
	}
}

// =============================================================================
// SUPPLIER ENDPOINT TESTS
// =============================================================================

func TestCreateSupplier_WithAuthoredTerms(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/suppliers", map[string]any{
		"name":  "Custom Power Co",
		"terms": validTerms(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dto api.SupplierDTO
	decodeInto(t, rec, &dto)
	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "Custom Power Co", dto.Name)
	require.NotNil(t, dto.Terms)
	require.Len(t, dto.Terms.DefaultPayments, 1)
	assert.Equal(t, "csd", dto.Terms.DefaultPayments[0].Trigger)
}

func TestCreateSupplier_RejectsInvalidTerms(t *testing.T) {
	router := newTestRouter(t)

	// Percentages sum to 90, not 100.
	rec := doJSON(t, router, http.MethodPost, "/api/suppliers", map[string]any{
		"name": "Custom Power Co",
		"terms": map[string]any{
			"default_payments": []map[string]any{
				{"percentage": 90, "trigger": "csd", "timing": "after", "months_offset": 1, "payment_type": "live"},
			},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp api.ErrorResponse
	decodeInto(t, rec, &errResp)
	assert.Equal(t, "Invalid payment terms", errResp.Error)
}

func TestCreateSupplier_RequiresName(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/suppliers", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSupplier_DuplicateNameConflicts(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/suppliers", map[string]any{"name": "Custom Power Co"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/suppliers", map[string]any{"name": "Custom Power Co"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSupplierLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/suppliers", map[string]any{
		"name":          "Custom Power Co",
		"payment_terms": "80% on live, 20% on reconciliation",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var created api.SupplierDTO
	decodeInto(t, rec, &created)

	rec = doJSON(t, router, http.MethodGet, "/api/suppliers/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got api.SupplierDTO
	decodeInto(t, rec, &got)
	assert.Equal(t, "80% on live, 20% on reconciliation", got.PaymentTerms)

	rec = doJSON(t, router, http.MethodPut, "/api/suppliers/"+created.ID, map[string]any{
		"name":          "Custom Power Co",
		"payment_terms": "100% upfront",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/suppliers/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/suppliers/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTermPresets(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/suppliers/presets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var presets map[string]json.RawMessage
	decodeInto(t, rec, &presets)
	assert.Contains(t, presets, "standard_80_20_live")
	assert.Contains(t, presets, "standard_50_30_20")
}

// =============================================================================
// CONTRACT ENDPOINT TESTS
// =============================================================================

func TestCreateContract_BySupplierName(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/contracts",
		contractRequest("Acme Industries", "British Gas Acquisition"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dto api.ContractDTO
	decodeInto(t, rec, &dto)
	assert.Equal(t, "Acme Industries", dto.CompanyName)
	assert.Equal(t, "British Gas Acquisition", dto.SupplierName)
	assert.NotEmpty(t, dto.SupplierID)
	assert.Equal(t, "2025-01-15", dto.ContractStartDate)
	assert.Equal(t, float64(10000), dto.ContractValue)

	// The unknown supplier name was auto-created.
	rec = doJSON(t, router, http.MethodGet, "/api/suppliers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sups []api.SupplierDTO
	decodeInto(t, rec, &sups)
	require.Len(t, sups, 1)
	assert.Equal(t, "British Gas Acquisition", sups[0].Name)

	// Projections were persisted: 80% the month after CSD, 20% two months
	// after CED.
	rec = doJSON(t, router, http.MethodGet, "/api/contracts/"+dto.ID+"/projections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var months []api.MonthProjectionDTO
	decodeInto(t, rec, &months)
	require.Len(t, months, 2)
	assert.Equal(t, "2025-02", months[0].MonthKey)
	assert.Equal(t, float64(8000), months[0].Amount)
	assert.Equal(t, "2026-03", months[1].MonthKey)
	assert.Equal(t, float64(2000), months[1].Amount)
}

func TestCreateContract_RejectsBadDates(t *testing.T) {
	router := newTestRouter(t)

	req := contractRequest("Acme Industries", "British Gas Acquisition")
	req["contract_start_date"] = "15/01/2025"
	rec := doJSON(t, router, http.MethodPost, "/api/contracts", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = contractRequest("Acme Industries", "British Gas Acquisition")
	req["contract_end_date"] = "2024-01-15" // before start
	rec = doJSON(t, router, http.MethodPost, "/api/contracts", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateContract_RequiresSupplier(t *testing.T) {
	router := newTestRouter(t)

	req := contractRequest("Acme Industries", "")
	rec := doJSON(t, router, http.MethodPost, "/api/contracts", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateSupplierTerms_RefreshesContractProjections(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/contracts",
		contractRequest("Acme Industries", "Custom Power Co"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var contract api.ContractDTO
	decodeInto(t, rec, &contract)

	// Unknown supplier starts on default 80/20 terms.
	rec = doJSON(t, router, http.MethodGet, "/api/contracts/"+contract.ID+"/projections", nil)
	var months []api.MonthProjectionDTO
	decodeInto(t, rec, &months)
	require.Len(t, months, 2)

	// Authoring 100%-upfront terms on the supplier reshapes the schedule.
	rec = doJSON(t, router, http.MethodPut, "/api/suppliers/"+contract.SupplierID, map[string]any{
		"name":  "Custom Power Co",
		"terms": validTerms(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/contracts/"+contract.ID+"/projections", nil)
	decodeInto(t, rec, &months)
	require.Len(t, months, 1)
	assert.Equal(t, "2025-02", months[0].MonthKey)
	assert.Equal(t, float64(10000), months[0].Amount)
}

func TestUpdateContract_RecomputesProjections(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/contracts",
		contractRequest("Acme Industries", "British Gas Acquisition"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var contract api.ContractDTO
	decodeInto(t, rec, &contract)

	req := contractRequest("Acme Industries", "British Gas Acquisition")
	req["contract_value"] = 20000
	rec = doJSON(t, router, http.MethodPut, "/api/contracts/"+contract.ID, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/contracts/"+contract.ID+"/projections", nil)
	var months []api.MonthProjectionDTO
	decodeInto(t, rec, &months)
	require.Len(t, months, 2)
	assert.Equal(t, float64(16000), months[0].Amount)
}

func TestDeleteContract_RemovesProjections(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/contracts",
		contractRequest("Acme Industries", "British Gas Acquisition"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var contract api.ContractDTO
	decodeInto(t, rec, &contract)

	rec = doJSON(t, router, http.MethodDelete, "/api/contracts/"+contract.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/contracts/"+contract.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/contracts/"+contract.ID+"/projections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var months []api.MonthProjectionDTO
	decodeInto(t, rec, &months)
	assert.Empty(t, months)
}

func TestGetContract_NotFound(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/contracts/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListContracts_NewestFirst(t *testing.T) {
	router := newTestRouter(t)

	for i := 0; i < 3; i++ {
		rec := doJSON(t, router, http.MethodPost, "/api/contracts",
			contractRequest(fmt.Sprintf("Company %d", i), "British Gas Acquisition"))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/contracts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var contracts []api.ContractDTO
	decodeInto(t, rec, &contracts)
	require.Len(t, contracts, 3)
}
