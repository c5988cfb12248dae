package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/importer"
)

// =============================================================================
// AUTO-MAPPING TESTS
// =============================================================================

func TestAutoMapColumns_ExactAliases(t *testing.T) {
	cols := []string{
		"Date of Lock In", "Company", "Meter No", "Gas/Electric",
		"Supplier Name", "Comms SC", "Comms UR", "CSD", "CED", "Contract Value",
	}

	m := importer.AutoMapColumns(cols)

	assert.Equal(t, "Date of Lock In", m[importer.FieldLockInDate])
	assert.Equal(t, "Company", m[importer.FieldCompanyName])
	assert.Equal(t, "Meter No", m[importer.FieldMeterNumber])
	assert.Equal(t, "Gas/Electric", m[importer.FieldEnergyType])
	assert.Equal(t, "Supplier Name", m[importer.FieldSupplierName])
	assert.Equal(t, "Comms SC", m[importer.FieldCommsSC])
	assert.Equal(t, "Comms UR", m[importer.FieldCommsUR])
	assert.Equal(t, "CSD", m[importer.FieldContractStartDate])
	assert.Equal(t, "CED", m[importer.FieldContractEndDate])
	assert.Equal(t, "Contract Value", m[importer.FieldContractValue])
	assert.Empty(t, m[importer.FieldPreviousSupplier])
}

func TestAutoMapColumns_SubstringFallback(t *testing.T) {
	// None of these are exact aliases; the second pass picks them up.
	cols := []string{"Client Business Name", "Chosen Supplier (new)", "Total Commission Value"}

	m := importer.AutoMapColumns(cols)

	assert.Equal(t, "Client Business Name", m[importer.FieldCompanyName])
	assert.Equal(t, "Chosen Supplier (new)", m[importer.FieldSupplierName])
	assert.Equal(t, "Total Commission Value", m[importer.FieldContractValue])
}

func TestAutoMapColumns_EachColumnConsumedOnce(t *testing.T) {
	// "Supplier" could feed both supplier_name and previous_supplier; it must
	// land on exactly one field.
	m := importer.AutoMapColumns([]string{"Supplier", "Previous Supplier"})

	assert.Equal(t, "Supplier", m[importer.FieldSupplierName])
	assert.Equal(t, "Previous Supplier", m[importer.FieldPreviousSupplier])
}

func TestAutoMapColumns_IgnoresUnknownColumns(t *testing.T) {
	m := importer.AutoMapColumns([]string{"Broker Initials", "Internal Ref"})
	for _, col := range m {
		assert.Empty(t, col)
	}
}

// =============================================================================
// REQUIRED-FIELD COVERAGE TESTS
// =============================================================================

func TestUnmappedRequiredFields(t *testing.T) {
	m := importer.AutoMapColumns([]string{"Company", "Supplier Name", "CSD"})

	missing := importer.UnmappedRequiredFields(m)

	var keys []importer.Field
	for _, tf := range missing {
		keys = append(keys, tf.Key)
	}
	assert.ElementsMatch(t, []importer.Field{
		importer.FieldLockInDate,
		importer.FieldCommsUR,
		importer.FieldContractEndDate,
		importer.FieldContractValue,
	}, keys)
}

func TestUnmappedRequiredFields_FullMappingIsClean(t *testing.T) {
	m := importer.Mapping{}
	for _, tf := range importer.TargetFields {
		m[tf.Key] = string(tf.Key)
	}
	require.Empty(t, importer.UnmappedRequiredFields(m))
}
