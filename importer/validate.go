/*
validate.go - Per-row validation and transformation

Every row gets a RowResult: required fields present, supplier matched
against the catalogue (with suggestions when not), dates parseable in the
common UK spreadsheet formats, numbers non-negative after currency
stripping, energy type recognized, CSD strictly before CED. Rows with no
errors also carry the transformed ImportedContract.
*/
package importer

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/suppliers"
)

// dateFormats are tried in order; UK day-first forms come before US.
var dateFormats = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate parses a spreadsheet date value, trying each supported format.
func ParseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ParseNumber parses a numeric cell, tolerating currency symbols and
// thousands separators.
func ParseNumber(value string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, false
	}

	var b strings.Builder
	for _, r := range trimmed {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// NormalizeEnergyType canonicalizes fuel values to "Gas" or "Electric".
func NormalizeEnergyType(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "gas", "g":
		return "Gas"
	case "electric", "electricity", "elec", "e":
		return "Electric"
	}
	return ""
}

// =============================================================================
// ROW VALIDATION
// =============================================================================

// RowError is one validation failure on a row.
type RowError struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// RowWarning is advisory: the row still imports.
type RowWarning struct {
	Field      Field  `json:"field"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ImportedContract is a validated row ready to persist.
type ImportedContract struct {
	LockInDate        time.Time
	CompanyName       string
	MeterNumber       string
	PreviousSupplier  string
	EnergyType        string
	SupplierName      string
	CommsSC           decimal.Decimal
	CommsUR           decimal.Decimal
	ContractStartDate time.Time
	ContractEndDate   time.Time
	ContractValue     decimal.Decimal
}

// RowResult is the validation outcome for one sheet row.
type RowResult struct {
	RowNumber int
	Valid     bool
	Contract  *ImportedContract
	Errors    []RowError
	Warnings  []RowWarning
}

// Summary aggregates row results.
type Summary struct {
	Total    int `json:"total"`
	Valid    int `json:"valid"`
	Invalid  int `json:"invalid"`
	Warnings int `json:"warnings"`
}

// ValidateRows validates every parsed row against the mapping. When
// supplierNames is non-nil, supplier matching runs against that list (the
// suppliers in the database) instead of the built-in catalogue.
func ValidateRows(rows []map[string]string, mapping Mapping, supplierNames []string) []RowResult {
	out := make([]RowResult, 0, len(rows))
	for i, row := range rows {
		out = append(out, validateRow(row, i+1, mapping, supplierNames))
	}
	return out
}

func validateRow(row map[string]string, rowNumber int, mapping Mapping, supplierNames []string) RowResult {
	res := RowResult{RowNumber: rowNumber}

	get := func(key Field) string {
		col := mapping[key]
		if col == "" {
			return ""
		}
		return strings.TrimSpace(row[col])
	}
	fail := func(key Field, msg, value string) {
		res.Errors = append(res.Errors, RowError{Field: key, Message: msg, Value: value})
	}

	for _, tf := range TargetFields {
		if !tf.Required {
			continue
		}
		if mapping[tf.Key] == "" {
			fail(tf.Key, tf.Label+" is not mapped", "")
			continue
		}
		if get(tf.Key) == "" {
			fail(tf.Key, tf.Label+" is required", "")
		}
	}

	matchedSupplier := ""
	if v := get(FieldSupplierName); v != "" {
		matchedSupplier = matchSupplier(v, supplierNames)
		if matchedSupplier == "" {
			fail(FieldSupplierName, fmt.Sprintf("Supplier %q not found in valid supplier list", v), v)
			if sug := suggestSupplier(v, supplierNames); len(sug) > 0 {
				res.Warnings = append(res.Warnings, RowWarning{
					Field:      FieldSupplierName,
					Message:    "Did you mean one of these?",
					Suggestion: strings.Join(sug, ", "),
				})
			}
		} else if matchedSupplier != v {
			res.Warnings = append(res.Warnings, RowWarning{
				Field:      FieldSupplierName,
				Message:    fmt.Sprintf("Supplier name will be normalized to %q", matchedSupplier),
				Suggestion: matchedSupplier,
			})
		}
	}

	for _, key := range []Field{FieldLockInDate, FieldContractStartDate, FieldContractEndDate} {
		if v := get(key); v != "" {
			if _, ok := ParseDate(v); !ok {
				fail(key, "Invalid date format for "+fieldLabel(key), v)
			}
		}
	}

	for _, key := range []Field{FieldCommsUR, FieldCommsSC, FieldContractValue} {
		if v := get(key); v != "" {
			d, ok := ParseNumber(v)
			if !ok {
				fail(key, "Invalid number for "+fieldLabel(key), v)
			} else if d.IsNegative() {
				fail(key, fieldLabel(key)+" cannot be negative", v)
			}
		}
	}

	if v := get(FieldEnergyType); v != "" && NormalizeEnergyType(v) == "" {
		fail(FieldEnergyType, `Energy type must be "Gas" or "Electric"`, v)
	}

	if csdStr, cedStr := get(FieldContractStartDate), get(FieldContractEndDate); csdStr != "" && cedStr != "" {
		csd, okCSD := ParseDate(csdStr)
		ced, okCED := ParseDate(cedStr)
		if okCSD && okCED && !csd.Before(ced) {
			fail(FieldContractEndDate, "Contract End Date must be after Contract Start Date", cedStr)
		}
	}

	res.Valid = len(res.Errors) == 0
	if res.Valid {
		lockIn, _ := ParseDate(get(FieldLockInDate))
		csd, _ := ParseDate(get(FieldContractStartDate))
		ced, _ := ParseDate(get(FieldContractEndDate))
		commsSC, _ := ParseNumber(get(FieldCommsSC))
		commsUR, _ := ParseNumber(get(FieldCommsUR))
		value, _ := ParseNumber(get(FieldContractValue))

		energy := NormalizeEnergyType(get(FieldEnergyType))
		if energy == "" {
			energy = "Electric"
		}
		name := matchedSupplier
		if name == "" {
			name = get(FieldSupplierName)
		}

		res.Contract = &ImportedContract{
			LockInDate:        lockIn,
			CompanyName:       get(FieldCompanyName),
			MeterNumber:       get(FieldMeterNumber),
			PreviousSupplier:  get(FieldPreviousSupplier),
			EnergyType:        energy,
			SupplierName:      name,
			CommsSC:           commsSC,
			CommsUR:           commsUR,
			ContractStartDate: csd,
			ContractEndDate:   ced,
			ContractValue:     value,
		}
	}
	return res
}

func matchSupplier(value string, supplierNames []string) string {
	if supplierNames != nil {
		return suppliers.MatchIn(value, supplierNames)
	}
	return suppliers.Match(value)
}

func suggestSupplier(value string, supplierNames []string) []string {
	if supplierNames != nil {
		return suppliers.SuggestIn(value, supplierNames)
	}
	return suppliers.Suggest(value)
}

// Summarize counts outcomes across row results.
func Summarize(results []RowResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Valid {
			s.Valid++
		} else {
			s.Invalid++
		}
		if len(r.Warnings) > 0 {
			s.Warnings++
		}
	}
	return s
}

// ErrorReportCSV renders invalid rows as a downloadable CSV error report.
func ErrorReportCSV(results []RowResult) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"Row", "Field", "Error", "Value"})
	for _, r := range results {
		if r.Valid {
			continue
		}
		for _, e := range r.Errors {
			_ = w.Write([]string{strconv.Itoa(r.RowNumber), string(e.Field), e.Message, e.Value})
		}
	}
	w.Flush()
	return b.String()
}
