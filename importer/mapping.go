/*
mapping.go - Column auto-detection

Maps spreadsheet column headers onto target contract fields using a
per-field alias table: an exact-match pass first, then a bidirectional
substring pass for whatever is still unmapped. Each source column is
consumed at most once.
*/
package importer

import "strings"

// Field identifies a target contract field in a mapping.
type Field string

const (
	FieldLockInDate        Field = "lock_in_date"
	FieldCompanyName       Field = "company_name"
	FieldMeterNumber       Field = "meter_number"
	FieldPreviousSupplier  Field = "previous_supplier"
	FieldEnergyType        Field = "energy_type"
	FieldSupplierName      Field = "supplier_name"
	FieldCommsSC           Field = "comms_sc"
	FieldCommsUR           Field = "comms_ur"
	FieldContractStartDate Field = "contract_start_date"
	FieldContractEndDate   Field = "contract_end_date"
	FieldContractValue     Field = "contract_value"
)

// TargetField describes one importable field.
type TargetField struct {
	Key      Field
	Label    string
	Required bool
}

// TargetFields lists every importable field in sheet order.
var TargetFields = []TargetField{
	{FieldLockInDate, "Date of Lock In", true},
	{FieldCompanyName, "Company", true},
	{FieldMeterNumber, "Meter No", false},
	{FieldPreviousSupplier, "Previous Supplier", false},
	{FieldEnergyType, "Gas/Electric", false},
	{FieldSupplierName, "Supplier Name", true},
	{FieldCommsSC, "Comms SC", false},
	{FieldCommsUR, "Comms UR", true},
	{FieldContractStartDate, "CSD", true},
	{FieldContractEndDate, "CED", true},
	{FieldContractValue, "Contract Value", true},
}

// columnAliases drives auto-detection. Order within a list matters only for
// readability; matching is set membership.
var columnAliases = map[Field][]string{
	FieldLockInDate: {
		"date of lock in", "lock in", "lockin", "lock-in",
		"lock in date", "lockin date", "locked in",
	},
	FieldCompanyName: {
		"company", "company name", "business", "business name",
		"client", "customer", "client name", "customer name",
	},
	FieldMeterNumber: {
		"meter no", "meter", "meter number", "mpan", "mprn",
		"meter ref", "meter reference",
	},
	FieldPreviousSupplier: {
		"previous supplier", "prev supplier", "old supplier",
		"current supplier", "existing supplier",
	},
	FieldEnergyType: {
		"gas/electric", "gas / electric", "energy type", "energy",
		"fuel", "fuel type", "type", "utility", "utility type",
	},
	FieldSupplierName: {
		"supplier name", "supplier", "new supplier",
		"chosen supplier", "selected supplier",
	},
	FieldCommsSC: {
		"comms sc", "sc", "standing charge",
		"standing charge commission", "sc commission", "commission sc",
	},
	FieldCommsUR: {
		"comms ur", "ur", "unit rate", "uplift",
		"unit rate commission", "ur commission", "commission ur",
	},
	FieldContractStartDate: {
		"csd", "contract start", "start date", "contract start date",
		"start", "supply start",
	},
	FieldContractEndDate: {
		"ced", "contract end", "end date", "contract end date",
		"end", "supply end",
	},
	FieldContractValue: {
		"contract value", "value", "total value", "commission value",
		"total", "total commission", "commission",
	},
}

// Mapping records which source column feeds each target field ("" = unmapped).
type Mapping map[Field]string

// AutoMapColumns detects a Mapping from the sheet's column headers. Two
// passes: exact alias matches win first, then substring matches fill gaps.
func AutoMapColumns(sourceColumns []string) Mapping {
	mapping := make(Mapping, len(TargetFields))
	used := make(map[string]bool)

	for _, col := range sourceColumns {
		normalized := strings.ToLower(strings.TrimSpace(col))
		for _, tf := range TargetFields {
			if mapping[tf.Key] != "" {
				continue
			}
			if containsExact(columnAliases[tf.Key], normalized) {
				mapping[tf.Key] = col
				used[col] = true
				break
			}
		}
	}

	for _, col := range sourceColumns {
		if used[col] {
			continue
		}
		normalized := strings.ToLower(strings.TrimSpace(col))
		for _, tf := range TargetFields {
			if mapping[tf.Key] != "" {
				continue
			}
			if containsPartial(columnAliases[tf.Key], normalized) {
				mapping[tf.Key] = col
				used[col] = true
				break
			}
		}
	}

	return mapping
}

// UnmappedRequiredFields lists required fields the mapping does not cover.
func UnmappedRequiredFields(mapping Mapping) []TargetField {
	var out []TargetField
	for _, tf := range TargetFields {
		if tf.Required && mapping[tf.Key] == "" {
			out = append(out, tf)
		}
	}
	return out
}

func containsExact(aliases []string, normalized string) bool {
	for _, a := range aliases {
		if a == normalized {
			return true
		}
	}
	return false
}

func containsPartial(aliases []string, normalized string) bool {
	if normalized == "" {
		return false
	}
	for _, a := range aliases {
		if strings.Contains(normalized, a) || strings.Contains(a, normalized) {
			return true
		}
	}
	return false
}

func fieldLabel(key Field) string {
	for _, tf := range TargetFields {
		if tf.Key == key {
			return tf.Label
		}
	}
	return string(key)
}
