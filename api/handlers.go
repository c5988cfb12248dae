/*
handlers.go - HTTP API handlers for the commission projection system

PURPOSE:
  Exposes the projection engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Suppliers:
    GET    /api/suppliers              List all suppliers
    POST   /api/suppliers              Create supplier
    GET    /api/suppliers/presets      Built-in payment-terms presets
    GET    /api/suppliers/{id}         Get supplier
    PUT    /api/suppliers/{id}         Update supplier (terms revalidated)
    DELETE /api/suppliers/{id}         Delete supplier

  Contracts:
    GET    /api/contracts              List all contracts
    POST   /api/contracts              Create contract (projections refresh)
    GET    /api/contracts/{id}         Get contract
    GET    /api/contracts/{id}/projections  Contract's projected payments
    PUT    /api/contracts/{id}         Update contract (projections refresh)
    DELETE /api/contracts/{id}         Delete contract

  Projections / import / export / dashboard: see projections.go, imports.go

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Factory: JSON to rule-set conversion

TERMS RESOLUTION:
  A supplier with authored terms JSON uses those; one without falls back
  to name-based resolution against the built-in supplier table. Authored
  terms are validated when saved, so resolution at projection time never
  fails - a contract always projects.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Duplicate supplier name
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - projections.go: Projection, regeneration, dashboard handlers
  - imports.go: Bulk import and export handlers
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/factory"
	"github.com/warp/commission-engine/store"
	"github.com/warp/commission-engine/suppliers"
	"github.com/warp/commission-engine/terms"
)

const dateLayout = "2006-01-02"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   store.Store
	Factory *factory.TermsFactory
}

// NewHandler creates a new handler backed by the given store.
func NewHandler(st store.Store) *Handler {
	return &Handler{
		Store:   st,
		Factory: factory.NewTermsFactory(),
	}
}

// =============================================================================
// SUPPLIER HANDLERS
// =============================================================================

// ListSuppliers returns all suppliers.
func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	sups, err := h.Store.ListSuppliers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list suppliers", err)
		return
	}

	dtos := make([]SupplierDTO, len(sups))
	for i, s := range sups {
		dtos[i] = h.supplierDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSupplier returns a single supplier.
func (h *Handler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	sup, err := h.Store.GetSupplier(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrSupplierNotFound) {
		writeError(w, http.StatusNotFound, "Supplier not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get supplier", err)
		return
	}
	writeJSON(w, http.StatusOK, h.supplierDTO(*sup))
}

// CreateSupplier creates a new supplier, validating any authored terms.
func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	h.saveSupplier(w, r, fmt.Sprintf("sup-%d", time.Now().UnixNano()))
}

// UpdateSupplier updates an existing supplier, revalidating its terms.
func (h *Handler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetSupplier(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrSupplierNotFound) {
			writeError(w, http.StatusNotFound, "Supplier not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get supplier", err)
		return
	}
	h.saveSupplier(w, r, id)
}

func (h *Handler) saveSupplier(w http.ResponseWriter, r *http.Request, id string) {
	var req SaveSupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Supplier name is required", nil)
		return
	}

	// Authored terms must validate before they are stored. This is the
	// only gate: projection never re-checks.
	termsJSON := ""
	if req.Terms != nil {
		rs, err := h.Factory.FromJSON(*req.Terms)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid payment terms", err)
			return
		}
		termsJSON, err = h.Factory.MarshalRuleSet(*rs)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to store payment terms", err)
			return
		}
	}

	sup := store.Supplier{
		ID:           id,
		Name:         req.Name,
		PaymentTerms: req.PaymentTerms,
		TermsJSON:    termsJSON,
	}
	if err := h.Store.SaveSupplier(r.Context(), sup); err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			writeError(w, http.StatusConflict, "A supplier with that name already exists", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save supplier", err)
		return
	}

	// Terms changes alter projections for every contract on this supplier.
	if err := h.regenerateSupplierContracts(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to refresh projections", err)
		return
	}

	writeJSON(w, http.StatusOK, h.supplierDTO(sup))
}

// DeleteSupplier removes a supplier.
func (h *Handler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteSupplier(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrSupplierNotFound) {
		writeError(w, http.StatusNotFound, "Supplier not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete supplier", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// ListTermPresets returns the built-in payment-terms presets as parsed
// rule-set JSON, for the terms editor.
func (h *Handler) ListTermPresets(w http.ResponseWriter, r *http.Request) {
	presets := make(map[string]factory.RuleSetJSON)
	for name, jsonStr := range suppliers.PresetJSONs() {
		rs, err := h.Factory.ParseRuleSet(jsonStr)
		if err != nil {
			continue
		}
		presets[name] = h.Factory.ToJSON(*rs)
	}
	writeJSON(w, http.StatusOK, presets)
}

func (h *Handler) supplierDTO(s store.Supplier) SupplierDTO {
	dto := SupplierDTO{
		ID:           s.ID,
		Name:         s.Name,
		PaymentTerms: s.PaymentTerms,
	}
	if !s.CreatedAt.IsZero() {
		dto.CreatedAt = s.CreatedAt.Format(time.RFC3339)
	}
	if !s.UpdatedAt.IsZero() {
		dto.UpdatedAt = s.UpdatedAt.Format(time.RFC3339)
	}
	if s.TermsJSON != "" {
		if rs, err := h.Factory.ParseRuleSet(s.TermsJSON); err == nil {
			tj := h.Factory.ToJSON(*rs)
			dto.Terms = &tj
		}
	}
	return dto
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// ListContracts returns all contracts, newest first.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.Store.ListContracts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}

	dtos := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		dtos[i] = contractDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetContract returns a single contract.
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrContractNotFound) {
		writeError(w, http.StatusNotFound, "Contract not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
		return
	}
	writeJSON(w, http.StatusOK, contractDTO(*c))
}

// CreateContract creates a contract and computes its projections.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	h.saveContract(w, r, fmt.Sprintf("con-%d", time.Now().UnixNano()), http.StatusCreated)
}

// UpdateContract updates a contract and recomputes its projections.
func (h *Handler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetContract(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrContractNotFound) {
			writeError(w, http.StatusNotFound, "Contract not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
		return
	}
	h.saveContract(w, r, id, http.StatusOK)
}

func (h *Handler) saveContract(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req SaveContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CompanyName == "" {
		writeError(w, http.StatusBadRequest, "Company name is required", nil)
		return
	}

	lockIn, err := time.Parse(dateLayout, req.LockInDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lock_in_date (use YYYY-MM-DD)", err)
		return
	}
	csd, err := time.Parse(dateLayout, req.ContractStartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract_start_date (use YYYY-MM-DD)", err)
		return
	}
	ced, err := time.Parse(dateLayout, req.ContractEndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract_end_date (use YYYY-MM-DD)", err)
		return
	}
	if !csd.Before(ced) {
		writeError(w, http.StatusBadRequest, "Contract end date must be after start date", nil)
		return
	}

	sup, err := h.resolveContractSupplier(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to resolve supplier", err)
		return
	}

	c := store.Contract{
		ID:                id,
		SupplierID:        sup.ID,
		SupplierName:      sup.Name,
		CompanyName:       req.CompanyName,
		MeterNumber:       req.MeterNumber,
		PreviousSupplier:  req.PreviousSupplier,
		EnergyType:        req.EnergyType,
		LockInDate:        lockIn,
		ContractStartDate: csd,
		ContractEndDate:   ced,
		CommsSC:           decimal.NewFromFloat(req.CommsSC),
		CommsUR:           decimal.NewFromFloat(req.CommsUR),
		ContractValue:     decimal.NewFromFloat(req.ContractValue),
		Notes:             req.Notes,
	}
	if c.EnergyType == "" {
		c.EnergyType = "Electric"
	}

	if err := h.Store.SaveContract(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save contract", err)
		return
	}
	if err := h.regenerateContract(r.Context(), c, *sup); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute projections", err)
		return
	}

	writeJSON(w, status, contractDTO(c))
}

// resolveContractSupplier finds the supplier a contract request refers to,
// by ID when given, else by name. An unknown name creates the supplier so
// that imports of new suppliers don't require a separate step; its terms
// resolve by name until authored.
func (h *Handler) resolveContractSupplier(r *http.Request, req SaveContractRequest) (*store.Supplier, error) {
	ctx := r.Context()
	if req.SupplierID != "" {
		return h.Store.GetSupplier(ctx, req.SupplierID)
	}
	if req.SupplierName == "" {
		return nil, fmt.Errorf("supplier_id or supplier_name is required")
	}

	sup, err := h.Store.GetSupplierByName(ctx, req.SupplierName)
	if err == nil {
		return sup, nil
	}
	if !errors.Is(err, store.ErrSupplierNotFound) {
		return nil, err
	}

	created := store.Supplier{
		ID:   fmt.Sprintf("sup-%d", time.Now().UnixNano()),
		Name: req.SupplierName,
	}
	if err := h.Store.SaveSupplier(ctx, created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteContract removes a contract and its projections.
func (h *Handler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.Store.DeleteContract(r.Context(), id)
	if errors.Is(err, store.ErrContractNotFound) {
		writeError(w, http.StatusNotFound, "Contract not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete contract", err)
		return
	}
	if err := h.Store.DeleteProjections(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete projections", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func contractDTO(c store.Contract) ContractDTO {
	dto := ContractDTO{
		ID:                c.ID,
		SupplierID:        c.SupplierID,
		SupplierName:      c.SupplierName,
		CompanyName:       c.CompanyName,
		MeterNumber:       c.MeterNumber,
		PreviousSupplier:  c.PreviousSupplier,
		EnergyType:        c.EnergyType,
		LockInDate:        c.LockInDate.Format(dateLayout),
		ContractStartDate: c.ContractStartDate.Format(dateLayout),
		ContractEndDate:   c.ContractEndDate.Format(dateLayout),
		CommsSC:           amount(c.CommsSC),
		CommsUR:           amount(c.CommsUR),
		ContractValue:     amount(c.ContractValue),
		Notes:             c.Notes,
	}
	if !c.CreatedAt.IsZero() {
		dto.CreatedAt = c.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// TERMS RESOLUTION AND PROJECTION
// =============================================================================

// ruleSetFor returns the supplier's effective payment terms: authored JSON
// when present and parseable, else name-based resolution. Never fails.
func (h *Handler) ruleSetFor(sup store.Supplier) terms.RuleSet {
	if sup.TermsJSON != "" {
		if rs, err := h.Factory.ParseRuleSet(sup.TermsJSON); err == nil {
			return *rs
		}
	}
	return suppliers.Resolve(sup.Name)
}

func termsContract(c store.Contract) terms.Contract {
	return terms.Contract{
		LockInDate:        c.LockInDate,
		ContractStartDate: c.ContractStartDate,
		ContractEndDate:   c.ContractEndDate,
		ContractValue:     c.ContractValue,
		UpliftRate:        c.CommsUR,
	}
}

// projectContract runs the engine for one contract.
func (h *Handler) projectContract(c store.Contract, sup store.Supplier) []terms.PaymentEvent {
	return terms.Calculate(termsContract(c), h.ruleSetFor(sup))
}

// projectionRows folds events into persistable rows, summing amounts that
// share a month and payment type.
func projectionRows(contractID string, events []terms.PaymentEvent) []store.Projection {
	type key struct {
		month string
		typ   terms.PaymentType
	}
	totals := make(map[key]decimal.Decimal)
	var order []key
	for _, e := range events {
		k := key{e.Month.Key(), e.Type}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] = totals[k].Add(e.Amount)
	}

	rows := make([]store.Projection, 0, len(order))
	for _, k := range order {
		rows = append(rows, store.Projection{
			ContractID:  contractID,
			MonthKey:    k.month,
			Amount:      totals[k],
			PaymentType: string(k.typ),
		})
	}
	return rows
}

func (h *Handler) regenerateContract(ctx context.Context, c store.Contract, sup store.Supplier) error {
	events := h.projectContract(c, sup)
	return h.Store.ReplaceProjections(ctx, c.ID, projectionRows(c.ID, events))
}

func (h *Handler) regenerateSupplierContracts(ctx context.Context, supplierID string) error {
	sup, err := h.Store.GetSupplier(ctx, supplierID)
	if err != nil {
		return err
	}
	contracts, err := h.Store.ListContracts(ctx)
	if err != nil {
		return err
	}
	for _, c := range contracts {
		if c.SupplierID != supplierID {
			continue
		}
		if err := h.regenerateContract(ctx, c, *sup); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
