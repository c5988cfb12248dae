/*
imports.go - Bulk import and export handlers

PURPOSE:
  The spreadsheet boundary. Import accepts a CSV or Excel upload, runs the
  importer pipeline (parse, auto-map columns, validate rows), and persists
  the valid rows as contracts with fresh projections. Export renders
  contracts or projections back out as CSV or Excel.

ENDPOINTS:
  POST /api/import                     Import spreadsheet (multipart "file")
       ?dry_run=true                   Validate only, persist nothing
  POST /api/import/errors              CSV error report for an upload
  GET  /api/export?type=contracts|projections&format=csv|xlsx
       ?start_date=...&end_date=...    Projection range filter

IMPORT SEMANTICS:
  Valid rows import even when other rows fail; the response reports every
  row's outcome. Supplier names are matched against the suppliers already
  in the database; unmatched names reject the row with suggestions rather
  than silently creating suppliers with unknown payment terms.

SEE ALSO:
  - importer/: The pipeline itself
  - handlers.go: Contract persistence helpers
*/
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/commission-engine/importer"
	"github.com/warp/commission-engine/store"
)

const maxImportBytes = importer.MaxFileSizeMB << 20

// ImportContracts handles a spreadsheet upload.
func (h *Handler) ImportContracts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, `Missing "file" upload field`, err)
		return
	}
	defer file.Close()

	if !importer.IsSupportedFileType(header.Filename) {
		writeError(w, http.StatusBadRequest, "Unsupported file type: upload CSV or Excel", nil)
		return
	}

	parsed, err := importer.Parse(header.Filename, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse file", err)
		return
	}

	mapping := importer.AutoMapColumns(parsed.Headers)
	if missing := importer.UnmappedRequiredFields(mapping); len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, tf := range missing {
			labels[i] = tf.Label
		}
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Could not detect columns for required fields: %v", labels), nil)
		return
	}

	sups, err := h.Store.ListSuppliers(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list suppliers", err)
		return
	}
	names := make([]string, len(sups))
	byName := make(map[string]store.Supplier, len(sups))
	for i, s := range sups {
		names[i] = s.Name
		byName[s.Name] = s
	}

	// With an empty database, validate against the built-in catalogue.
	var matchNames []string
	if len(names) > 0 {
		matchNames = names
	}
	results := importer.ValidateRows(parsed.Rows, mapping, matchNames)

	dryRun := r.URL.Query().Get("dry_run") == "true"
	resp := ImportResponse{
		Summary: importer.Summarize(results),
		DryRun:  dryRun,
		Rows:    make([]ImportRowDTO, len(results)),
	}
	for i, res := range results {
		resp.Rows[i] = ImportRowDTO{
			RowNumber: res.RowNumber,
			Valid:     res.Valid,
			Errors:    res.Errors,
			Warnings:  res.Warnings,
		}
	}

	if dryRun {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	for _, res := range results {
		if !res.Valid || res.Contract == nil {
			continue
		}
		ic := res.Contract

		sup, ok := byName[ic.SupplierName]
		if !ok {
			created := store.Supplier{
				ID:   fmt.Sprintf("sup-%d", time.Now().UnixNano()),
				Name: ic.SupplierName,
			}
			if err := h.Store.SaveSupplier(ctx, created); err != nil && !errors.Is(err, store.ErrDuplicateName) {
				writeError(w, http.StatusInternalServerError, "Failed to create supplier", err)
				return
			}
			byName[ic.SupplierName] = created
			sup = created
		}

		c := store.Contract{
			ID:                fmt.Sprintf("con-%d-%d", time.Now().UnixNano(), res.RowNumber),
			SupplierID:        sup.ID,
			SupplierName:      sup.Name,
			CompanyName:       ic.CompanyName,
			MeterNumber:       ic.MeterNumber,
			PreviousSupplier:  ic.PreviousSupplier,
			EnergyType:        ic.EnergyType,
			LockInDate:        ic.LockInDate,
			ContractStartDate: ic.ContractStartDate,
			ContractEndDate:   ic.ContractEndDate,
			CommsSC:           ic.CommsSC,
			CommsUR:           ic.CommsUR,
			ContractValue:     ic.ContractValue,
		}
		if err := h.Store.SaveContract(ctx, c); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save imported contract", err)
			return
		}
		if err := h.regenerateContract(ctx, c, sup); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to compute projections", err)
			return
		}
		resp.Imported++
	}

	writeJSON(w, http.StatusOK, resp)
}

// ImportErrorReport re-validates an upload and returns a CSV error report.
func (h *Handler) ImportErrorReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, `Missing "file" upload field`, err)
		return
	}
	defer file.Close()

	parsed, err := importer.Parse(header.Filename, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse file", err)
		return
	}

	results := importer.ValidateRows(parsed.Rows, importer.AutoMapColumns(parsed.Headers), nil)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="import-errors.csv"`)
	w.Write([]byte(importer.ErrorReportCSV(results)))
}

// =============================================================================
// EXPORT
// =============================================================================

// Export streams contracts or projections as CSV or an Excel workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	switch r.URL.Query().Get("type") {
	case "contracts":
		h.exportContracts(w, r, format)
	default:
		h.exportProjections(w, r, format)
	}
}

func (h *Handler) exportContracts(w http.ResponseWriter, r *http.Request, format string) {
	contracts, err := h.Store.ListContracts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}

	name := fmt.Sprintf("contracts-%s", time.Now().Format(dateLayout))
	if format == "xlsx" {
		setDownloadHeaders(w, name+".xlsx", xlsxContentType)
		if err := importer.WriteContractsXLSX(w, contracts); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to export contracts", err)
		}
		return
	}
	setDownloadHeaders(w, name+".csv", "text/csv")
	if err := importer.WriteContractsCSV(w, contracts); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export contracts", err)
	}
}

func (h *Handler) exportProjections(w http.ResponseWriter, r *http.Request, format string) {
	ctx := r.Context()
	labeled, err := h.computeLabeled(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute projections", err)
		return
	}

	contracts, err := h.Store.ListContracts(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}
	byID := make(map[string]store.Contract, len(contracts))
	for _, c := range contracts {
		byID[c.ID] = c
	}

	from, to, bounded := monthRange(r)
	var rows []importer.ProjectionRow
	for _, e := range labeled {
		if !inRange(e.Month, from, to, bounded) {
			continue
		}
		c := byID[e.ContractID]
		rows = append(rows, importer.ProjectionRow{
			Month:             e.Month.String(),
			MonthKey:          e.Month.Key(),
			CompanyName:       e.Company,
			SupplierName:      e.Supplier,
			PaymentType:       string(e.Type),
			Amount:            e.Amount,
			ContractStartDate: c.ContractStartDate,
			ContractEndDate:   c.ContractEndDate,
			ContractValue:     c.ContractValue,
		})
	}

	rangeLabel := "all"
	if bounded {
		rangeLabel = fmt.Sprintf("%s-to-%s", from.Key(), to.Key())
	}
	name := fmt.Sprintf("projections-%s", rangeLabel)

	if format == "xlsx" {
		setDownloadHeaders(w, name+".xlsx", xlsxContentType)
		if err := importer.WriteProjectionsXLSX(w, rows); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to export projections", err)
		}
		return
	}
	setDownloadHeaders(w, name+".csv", "text/csv")
	if err := importer.WriteProjectionsCSV(w, rows); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export projections", err)
	}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func setDownloadHeaders(w http.ResponseWriter, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
