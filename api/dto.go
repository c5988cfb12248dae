/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts cross the wire as JSON numbers. Internally everything is
  decimal.Decimal; conversion happens only at this boundary.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/ruleset.go: RuleSetJSON type embedded in supplier DTOs
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/factory"
	"github.com/warp/commission-engine/importer"
)

// =============================================================================
// SUPPLIER TYPES
// =============================================================================

// SupplierDTO represents a supplier in API responses.
type SupplierDTO struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	PaymentTerms string               `json:"payment_terms,omitempty"`
	Terms        *factory.RuleSetJSON `json:"terms,omitempty"`
	CreatedAt    string               `json:"created_at,omitempty"`
	UpdatedAt    string               `json:"updated_at,omitempty"`
}

// SaveSupplierRequest creates or updates a supplier. Terms is optional;
// without it the supplier's payment terms resolve by name against the
// built-in table.
type SaveSupplierRequest struct {
	Name         string               `json:"name"`
	PaymentTerms string               `json:"payment_terms"`
	Terms        *factory.RuleSetJSON `json:"terms,omitempty"`
}

// =============================================================================
// CONTRACT TYPES
// =============================================================================

// ContractDTO represents a contract in API responses.
type ContractDTO struct {
	ID                string  `json:"id"`
	SupplierID        string  `json:"supplier_id"`
	SupplierName      string  `json:"supplier_name"`
	CompanyName       string  `json:"company_name"`
	MeterNumber       string  `json:"meter_number,omitempty"`
	PreviousSupplier  string  `json:"previous_supplier,omitempty"`
	EnergyType        string  `json:"energy_type"`
	LockInDate        string  `json:"lock_in_date"`
	ContractStartDate string  `json:"contract_start_date"`
	ContractEndDate   string  `json:"contract_end_date"`
	CommsSC           float64 `json:"comms_sc"`
	CommsUR           float64 `json:"comms_ur"`
	ContractValue     float64 `json:"contract_value"`
	Notes             string  `json:"notes,omitempty"`
	CreatedAt         string  `json:"created_at,omitempty"`
}

// SaveContractRequest creates or updates a contract. Dates are YYYY-MM-DD.
type SaveContractRequest struct {
	SupplierID        string  `json:"supplier_id,omitempty"`
	SupplierName      string  `json:"supplier_name,omitempty"`
	CompanyName       string  `json:"company_name"`
	MeterNumber       string  `json:"meter_number"`
	PreviousSupplier  string  `json:"previous_supplier"`
	EnergyType        string  `json:"energy_type"`
	LockInDate        string  `json:"lock_in_date"`
	ContractStartDate string  `json:"contract_start_date"`
	ContractEndDate   string  `json:"contract_end_date"`
	CommsSC           float64 `json:"comms_sc"`
	CommsUR           float64 `json:"comms_ur"`
	ContractValue     float64 `json:"contract_value"`
	Notes             string  `json:"notes"`
}

// =============================================================================
// PROJECTION TYPES
// =============================================================================

// MonthProjectionDTO is one point of a monthly totals series.
type MonthProjectionDTO struct {
	Month    string  `json:"month"`     // "Jan 2026"
	MonthKey string  `json:"month_key"` // "2026-01"
	Amount   float64 `json:"amount"`
}

// NameTotalDTO is one row of a supplier or company breakdown.
type NameTotalDTO struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ProjectionDetailDTO is one projected payment with contract context.
type ProjectionDetailDTO struct {
	Month        string  `json:"month"`
	MonthKey     string  `json:"month_key"`
	Amount       float64 `json:"amount"`
	PaymentType  string  `json:"payment_type"`
	CompanyName  string  `json:"company_name"`
	SupplierName string  `json:"supplier_name"`
	ContractID   string  `json:"contract_id"`
}

// RegenerateResponse reports a projection regeneration run.
type RegenerateResponse struct {
	Success     bool              `json:"success"`
	Regenerated int               `json:"regenerated"`
	Total       int               `json:"total"`
	Errors      []RegenerateError `json:"errors"`
}

// RegenerateError is one contract that failed to regenerate.
type RegenerateError struct {
	ContractID  string `json:"contract_id"`
	CompanyName string `json:"company_name"`
	Error       string `json:"error"`
}

// =============================================================================
// IMPORT TYPES
// =============================================================================

// ImportRowDTO is the validation outcome for one imported row.
type ImportRowDTO struct {
	RowNumber int                   `json:"row_number"`
	Valid     bool                  `json:"valid"`
	Errors    []importer.RowError   `json:"errors,omitempty"`
	Warnings  []importer.RowWarning `json:"warnings,omitempty"`
}

// ImportResponse reports a bulk import run.
type ImportResponse struct {
	Summary  importer.Summary `json:"summary"`
	Imported int              `json:"imported"`
	DryRun   bool             `json:"dry_run"`
	Rows     []ImportRowDTO   `json:"rows"`
}

// =============================================================================
// DASHBOARD TYPES
// =============================================================================

// DashboardStatsDTO is the dashboard summary payload.
type DashboardStatsDTO struct {
	TotalContracts         int                     `json:"total_contracts"`
	TotalContractValue     float64                 `json:"total_contract_value"`
	CurrentMonthProjection float64                 `json:"current_month_projection"`
	CurrentYearProjection  float64                 `json:"current_year_projection"`
	MonthlyProjections     []MonthProjectionDTO    `json:"monthly_projections"`
	RecentContracts        []ContractDTO           `json:"recent_contracts"`
	SupplierBreakdown      []NameTotalDTO          `json:"supplier_breakdown"`
	ProjectedToDate        float64                 `json:"projected_to_date"`
	SupplierPaymentStatus  []SupplierStatusDTO     `json:"supplier_payment_status"`
}

// SupplierStatusDTO splits a supplier's projected payments into due and
// not-yet-due buckets relative to the current month.
type SupplierStatusDTO struct {
	SupplierName     string  `json:"supplier_name"`
	Outstanding      float64 `json:"outstanding"`
	OutstandingCount int     `json:"outstanding_count"`
	Upcoming         float64 `json:"upcoming"`
	UpcomingCount    int     `json:"upcoming_count"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func amount(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
