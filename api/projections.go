/*
projections.go - Projection, regeneration, and dashboard handlers

PURPOSE:
  The reporting surface. Projections are computed live from contracts on
  every request (the engine is cheap and deterministic), so reports always
  reflect current terms. The persisted projection rows exist for the
  regenerate endpoint and external consumers of the database.

ENDPOINTS:
  GET  /api/projections                 Grouped projections
       ?group_by=month|supplier|company|detail (default month)
       ?start_date=YYYY-MM[-DD]&end_date=YYYY-MM[-DD]
  POST /api/projections/regenerate      Rebuild persisted projection rows
  GET  /api/dashboard/stats             Dashboard summary

MONTH GROUPING:
  With a date range, the monthly series is zero-filled: every month in the
  range appears, including months with no payments. Without a range, only
  months that have payments appear, in chronological order.

SEE ALSO:
  - terms/aggregate.go: The reductions behind each grouping
  - handlers.go: Engine invocation helpers
*/
package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/store"
	"github.com/warp/commission-engine/terms"
)

// computeLabeled runs the engine over every contract and labels the
// resulting events with contract context.
func (h *Handler) computeLabeled(r *http.Request) ([]terms.LabeledEvent, error) {
	ctx := r.Context()
	sups, err := h.Store.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]store.Supplier, len(sups))
	for _, s := range sups {
		byID[s.ID] = s
	}

	contracts, err := h.Store.ListContracts(ctx)
	if err != nil {
		return nil, err
	}

	var out []terms.LabeledEvent
	for _, c := range contracts {
		sup, ok := byID[c.SupplierID]
		if !ok {
			sup = store.Supplier{Name: c.SupplierName}
		}
		for _, e := range h.projectContract(c, sup) {
			out = append(out, terms.LabeledEvent{
				PaymentEvent: e,
				ContractID:   c.ID,
				Company:      c.CompanyName,
				Supplier:     sup.Name,
			})
		}
	}
	return out, nil
}

// monthRange parses optional start_date/end_date query params. Both
// YYYY-MM-DD and YYYY-MM are accepted; the day is ignored.
func monthRange(r *http.Request) (from, to terms.Month, ok bool) {
	parse := func(s string) (terms.Month, bool) {
		if t, err := time.Parse(dateLayout, s); err == nil {
			return terms.MonthOf(t), true
		}
		if m, err := terms.ParseMonthKey(s); err == nil {
			return m, true
		}
		return terms.Month{}, false
	}

	q := r.URL.Query()
	fromStr, toStr := q.Get("start_date"), q.Get("end_date")
	if fromStr == "" || toStr == "" {
		return terms.Month{}, terms.Month{}, false
	}
	from, okFrom := parse(fromStr)
	to, okTo := parse(toStr)
	return from, to, okFrom && okTo
}

func inRange(m terms.Month, from, to terms.Month, bounded bool) bool {
	if !bounded {
		return true
	}
	return !m.Before(from) && !m.After(to)
}

// GetProjections returns projections grouped per the group_by parameter.
func (h *Handler) GetProjections(w http.ResponseWriter, r *http.Request) {
	labeled, err := h.computeLabeled(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute projections", err)
		return
	}

	from, to, bounded := monthRange(r)
	var filtered []terms.LabeledEvent
	for _, e := range labeled {
		if inRange(e.Month, from, to, bounded) {
			filtered = append(filtered, e)
		}
	}

	switch r.URL.Query().Get("group_by") {
	case "supplier":
		writeJSON(w, http.StatusOK, nameTotalDTOs(terms.RankedTotals(terms.TotalsBySupplier(filtered))))
	case "company":
		writeJSON(w, http.StatusOK, nameTotalDTOs(terms.RankedTotals(terms.TotalsByCompany(filtered))))
	case "detail":
		writeJSON(w, http.StatusOK, detailDTOs(filtered))
	default:
		writeJSON(w, http.StatusOK, h.monthlyDTOs(filtered, from, to, bounded))
	}
}

func (h *Handler) monthlyDTOs(labeled []terms.LabeledEvent, from, to terms.Month, bounded bool) []MonthProjectionDTO {
	events := make([]terms.PaymentEvent, len(labeled))
	for i, e := range labeled {
		events[i] = e.PaymentEvent
	}
	totals := terms.TotalsByMonth(events)

	if bounded {
		series := terms.MonthlySeries(totals, from, to)
		out := make([]MonthProjectionDTO, len(series))
		for i, p := range series {
			out[i] = MonthProjectionDTO{
				Month:    p.Month.String(),
				MonthKey: p.Month.Key(),
				Amount:   amount(p.Amount),
			}
		}
		return out
	}

	// Unbounded: only months that have payments, in order.
	seen := make(map[string]bool)
	var months []terms.Month
	for _, e := range events {
		if !seen[e.Month.Key()] {
			seen[e.Month.Key()] = true
			months = append(months, e.Month)
		}
	}
	sortMonths(months)

	out := make([]MonthProjectionDTO, len(months))
	for i, m := range months {
		out[i] = MonthProjectionDTO{
			Month:    m.String(),
			MonthKey: m.Key(),
			Amount:   amount(totals[m.Key()]),
		}
	}
	return out
}

func sortMonths(months []terms.Month) {
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
}

func nameTotalDTOs(ranked []terms.NameTotal) []NameTotalDTO {
	out := make([]NameTotalDTO, len(ranked))
	for i, t := range ranked {
		out[i] = NameTotalDTO{Name: t.Name, Amount: amount(t.Amount)}
	}
	return out
}

func detailDTOs(labeled []terms.LabeledEvent) []ProjectionDetailDTO {
	out := make([]ProjectionDetailDTO, len(labeled))
	for i, e := range labeled {
		out[i] = ProjectionDetailDTO{
			Month:        e.Month.String(),
			MonthKey:     e.Month.Key(),
			Amount:       amount(e.Amount),
			PaymentType:  string(e.Type),
			CompanyName:  e.Company,
			SupplierName: e.Supplier,
			ContractID:   e.ContractID,
		}
	}
	return out
}

// GetContractProjections returns one contract's persisted projection rows.
func (h *Handler) GetContractProjections(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.ListProjectionsByContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projections", err)
		return
	}

	out := make([]MonthProjectionDTO, len(rows))
	for i, p := range rows {
		m, _ := terms.ParseMonthKey(p.MonthKey)
		out[i] = MonthProjectionDTO{
			Month:    m.String(),
			MonthKey: p.MonthKey,
			Amount:   amount(p.Amount),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// RegenerateProjections recomputes and persists projections for every
// contract. A contract that fails is reported, not fatal.
func (h *Handler) RegenerateProjections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sups, err := h.Store.ListSuppliers(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list suppliers", err)
		return
	}
	byID := make(map[string]store.Supplier, len(sups))
	for _, s := range sups {
		byID[s.ID] = s
	}

	contracts, err := h.Store.ListContracts(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}

	resp := RegenerateResponse{Success: true, Total: len(contracts), Errors: []RegenerateError{}}
	for _, c := range contracts {
		sup, ok := byID[c.SupplierID]
		if !ok {
			sup = store.Supplier{Name: c.SupplierName}
		}
		if err := h.regenerateContract(ctx, c, sup); err != nil {
			resp.Errors = append(resp.Errors, RegenerateError{
				ContractID:  c.ID,
				CompanyName: c.CompanyName,
				Error:       err.Error(),
			})
			continue
		}
		resp.Regenerated++
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// DASHBOARD
// =============================================================================

// DashboardStats returns the dashboard summary.
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.Store.ListContracts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}
	labeled, err := h.computeLabeled(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute projections", err)
		return
	}

	now := terms.MonthOf(time.Now())
	yearStart := terms.NewMonth(now.Year(), time.January)
	yearEnd := terms.NewMonth(now.Year(), time.December)

	totalValue := decimal.Zero
	for _, c := range contracts {
		totalValue = totalValue.Add(c.ContractValue)
	}

	currentMonth := decimal.Zero
	currentYear := decimal.Zero
	projectedToDate := decimal.Zero
	for _, e := range labeled {
		if e.Month.Equal(now) {
			currentMonth = currentMonth.Add(e.Amount)
		}
		if !e.Month.Before(yearStart) && !e.Month.After(yearEnd) {
			currentYear = currentYear.Add(e.Amount)
		}
		if !e.Month.After(now) {
			projectedToDate = projectedToDate.Add(e.Amount)
		}
	}

	stats := DashboardStatsDTO{
		TotalContracts:         len(contracts),
		TotalContractValue:     amount(totalValue),
		CurrentMonthProjection: amount(currentMonth),
		CurrentYearProjection:  amount(currentYear),
		MonthlyProjections:     h.next12Months(labeled, now),
		RecentContracts:        recentContracts(contracts, 5),
		SupplierBreakdown:      supplierValueBreakdown(contracts, 5),
		ProjectedToDate:        amount(projectedToDate),
		SupplierPaymentStatus:  supplierStatus(labeled, now, 10),
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) next12Months(labeled []terms.LabeledEvent, from terms.Month) []MonthProjectionDTO {
	events := make([]terms.PaymentEvent, len(labeled))
	for i, e := range labeled {
		events[i] = e.PaymentEvent
	}
	totals := terms.TotalsByMonth(events)
	series := terms.MonthlySeries(totals, from, from.Add(11))

	out := make([]MonthProjectionDTO, len(series))
	for i, p := range series {
		out[i] = MonthProjectionDTO{
			Month:    p.Month.String(),
			MonthKey: p.Month.Key(),
			Amount:   amount(p.Amount),
		}
	}
	return out
}

func recentContracts(contracts []store.Contract, n int) []ContractDTO {
	if len(contracts) > n {
		contracts = contracts[:n] // already newest first
	}
	out := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		out[i] = contractDTO(c)
	}
	return out
}

func supplierValueBreakdown(contracts []store.Contract, n int) []NameTotalDTO {
	totals := make(map[string]decimal.Decimal)
	for _, c := range contracts {
		totals[c.SupplierName] = totals[c.SupplierName].Add(c.ContractValue)
	}
	ranked := terms.RankedTotals(totals)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return nameTotalDTOs(ranked)
}

func supplierStatus(labeled []terms.LabeledEvent, now terms.Month, n int) []SupplierStatusDTO {
	byName := make(map[string]*SupplierStatusDTO)
	var order []string
	for _, e := range labeled {
		st, ok := byName[e.Supplier]
		if !ok {
			st = &SupplierStatusDTO{SupplierName: e.Supplier}
			byName[e.Supplier] = st
			order = append(order, e.Supplier)
		}
		if !e.Month.After(now) {
			st.Outstanding += amount(e.Amount)
			st.OutstandingCount++
		} else {
			st.Upcoming += amount(e.Amount)
			st.UpcomingCount++
		}
	}

	out := make([]SupplierStatusDTO, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	// Largest outstanding first.
	sort.Slice(out, func(i, j int) bool { return out[i].Outstanding > out[j].Outstanding })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
