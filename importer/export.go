/*
export.go - Contract and projection exports

Renders contracts and projected payments as downloadable CSV or Excel
workbooks. Dates use the UK dd/mm/yyyy form in exports (matching the
spreadsheets the imports come from) and money is fixed to two decimal
places.
*/
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/warp/commission-engine/store"
)

const exportDateLayout = "02/01/2006"

// ProjectionRow is one projected payment joined with its contract context
// for export and detail listings.
type ProjectionRow struct {
	Month             string // "Jan 2006"
	MonthKey          string // "2006-01"
	CompanyName       string
	SupplierName      string
	PaymentType       string
	Amount            decimal.Decimal
	ContractStartDate time.Time
	ContractEndDate   time.Time
	ContractValue     decimal.Decimal
}

var contractExportHeaders = []string{
	"Lock In Date", "Company Name", "Meter Number", "Previous Supplier",
	"Energy Type", "Supplier", "Commission SC", "Commission UR",
	"Contract Start Date", "Contract End Date", "Contract Value", "Notes",
}

var projectionExportHeaders = []string{
	"Month", "Company Name", "Supplier", "Payment Type", "Amount",
	"Contract Start Date", "Contract End Date", "Contract Value",
}

func contractRecord(c store.Contract) []string {
	return []string{
		c.LockInDate.Format(exportDateLayout),
		c.CompanyName,
		c.MeterNumber,
		c.PreviousSupplier,
		c.EnergyType,
		c.SupplierName,
		c.CommsSC.StringFixed(2),
		c.CommsUR.StringFixed(2),
		c.ContractStartDate.Format(exportDateLayout),
		c.ContractEndDate.Format(exportDateLayout),
		c.ContractValue.StringFixed(2),
		c.Notes,
	}
}

func projectionRecord(p ProjectionRow) []string {
	return []string{
		p.Month,
		p.CompanyName,
		p.SupplierName,
		p.PaymentType,
		p.Amount.StringFixed(2),
		p.ContractStartDate.Format(exportDateLayout),
		p.ContractEndDate.Format(exportDateLayout),
		p.ContractValue.StringFixed(2),
	}
}

// WriteContractsCSV writes all contracts as CSV.
func WriteContractsCSV(w io.Writer, contracts []store.Contract) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(contractExportHeaders); err != nil {
		return err
	}
	for _, c := range contracts {
		if err := cw.Write(contractRecord(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProjectionsCSV writes projection rows as CSV.
func WriteProjectionsCSV(w io.Writer, rows []ProjectionRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(projectionExportHeaders); err != nil {
		return err
	}
	for _, p := range rows {
		if err := cw.Write(projectionRecord(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteContractsXLSX writes all contracts as an Excel workbook.
func WriteContractsXLSX(w io.Writer, contracts []store.Contract) error {
	records := make([][]string, 0, len(contracts))
	for _, c := range contracts {
		records = append(records, contractRecord(c))
	}
	return writeXLSX(w, "Contracts", contractExportHeaders, records)
}

// WriteProjectionsXLSX writes projection rows as an Excel workbook.
func WriteProjectionsXLSX(w io.Writer, rows []ProjectionRow) error {
	records := make([][]string, 0, len(rows))
	for _, p := range rows {
		records = append(records, projectionRecord(p))
	}
	return writeXLSX(w, "Projections", projectionExportHeaders, records)
}

func writeXLSX(w io.Writer, sheet string, headers []string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	writeRow := func(rowNum int, cells []string) error {
		for i, cell := range cells {
			ref, err := excelize.CoordinatesToCellName(i+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, ref, cell); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(1, headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, rec := range records {
		if err := writeRow(i+2, rec); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
