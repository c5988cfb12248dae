/*
Package importer implements the bulk contract import pipeline.

PURPOSE:
  Brokers track signed contracts in spreadsheets. This package turns an
  uploaded CSV or Excel file into validated contract records: parse the
  sheet, auto-map its columns onto the known fields, validate every row,
  and transform the valid ones.

PIPELINE:
  Parse(name, r)      -> ParsedData (headers + rows as string maps)
  AutoMapColumns(...) -> Mapping (source column per target field)
  ValidateRows(...)   -> per-row results + transformed contracts

FILE FORMATS:
  .csv        encoding/csv
  .xlsx/.xls  excelize (first sheet, first row as headers)

SEE ALSO:
  - importer/mapping.go:  Column auto-detection
  - importer/validate.go: Row validation and transformation
  - suppliers/list.go:    Supplier-name matching used during validation
*/
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxFileSizeMB caps accepted uploads.
const MaxFileSizeMB = 10

// ParsedData is a sheet reduced to headers plus rows keyed by header.
type ParsedData struct {
	Headers   []string
	Rows      []map[string]string
	TotalRows int
	FileName  string
}

// Parse reads a CSV or Excel file into ParsedData. The format is chosen by
// the file extension.
func Parse(fileName string, r io.Reader) (*ParsedData, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return parseCSV(fileName, r)
	case ".xlsx", ".xls":
		return parseExcel(fileName, r)
	default:
		return nil, fmt.Errorf("unsupported file type %q: upload a CSV or Excel file", filepath.Ext(fileName))
	}
}

// IsSupportedFileType reports whether the extension is importable.
func IsSupportedFileType(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}

func parseCSV(fileName string, r io.Reader) (*ParsedData, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows tolerated, padded below

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers := trimAll(records[0])
	rows := recordsToRows(headers, records[1:])
	return &ParsedData{
		Headers:   headers,
		Rows:      rows,
		TotalRows: len(rows),
		FileName:  fileName,
	}, nil
}

func parseExcel(fileName string, r io.Reader) (*ParsedData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file contains no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel sheet: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("Excel sheet is empty")
	}

	headers := trimAll(records[0])
	rows := recordsToRows(headers, records[1:])
	return &ParsedData{
		Headers:   headers,
		Rows:      rows,
		TotalRows: len(rows),
		FileName:  fileName,
	}, nil
}

// recordsToRows keys each record by header and drops fully empty rows.
func recordsToRows(headers []string, records [][]string) []map[string]string {
	var rows []map[string]string
	for _, rec := range records {
		row := make(map[string]string, len(headers))
		empty := true
		for i, h := range headers {
			var v string
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			row[h] = v
			if v != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
