/*
aggregate.go - Pure reductions over projected payments

PURPOSE:
  Reporting surfaces (dashboards, CSV export, month-range charts) consume
  these reductions. Everything here is a pure fold; missing keys default to
  zero and a requested month range is always filled completely - a month
  with no payments yields an explicit zero entry, never an omission.

SEE ALSO:
  - types.go: PaymentEvent / LabeledEvent
*/
package terms

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MonthTotal is one point of a monthly series.
type MonthTotal struct {
	Month  Month
	Amount decimal.Decimal
}

// NameTotal is one row of a supplier or company breakdown.
type NameTotal struct {
	Name   string
	Amount decimal.Decimal
}

// SumAmounts totals the amounts of all events.
func SumAmounts(events []PaymentEvent) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		total = total.Add(e.Amount)
	}
	return total
}

// TotalsByMonth folds events into a map keyed by canonical "YYYY-MM".
func TotalsByMonth(events []PaymentEvent) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range events {
		totals[e.Month.Key()] = totals[e.Month.Key()].Add(e.Amount)
	}
	return totals
}

// MonthlySeries expands month totals into an ordered series covering every
// month from from through to inclusive. Months without payments appear with
// a zero amount.
func MonthlySeries(totals map[string]decimal.Decimal, from, to Month) []MonthTotal {
	if to.Before(from) {
		return nil
	}
	series := make([]MonthTotal, 0, to.index()-from.index()+1)
	for m := from; !m.After(to); m = m.Add(1) {
		series = append(series, MonthTotal{Month: m, Amount: totals[m.Key()]})
	}
	return series
}

// TotalsBySupplier folds labeled events into per-supplier totals.
func TotalsBySupplier(rows []LabeledEvent) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, r := range rows {
		totals[r.Supplier] = totals[r.Supplier].Add(r.Amount)
	}
	return totals
}

// TotalsByCompany folds labeled events into per-company totals.
func TotalsByCompany(rows []LabeledEvent) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, r := range rows {
		totals[r.Company] = totals[r.Company].Add(r.Amount)
	}
	return totals
}

// RankedTotals orders a name->amount map by descending amount, ties by name,
// for breakdown listings.
func RankedTotals(totals map[string]decimal.Decimal) []NameTotal {
	ranked := make([]NameTotal, 0, len(totals))
	for name, amount := range totals {
		ranked = append(ranked, NameTotal{Name: name, Amount: amount})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Amount.Equal(ranked[j].Amount) {
			return ranked[i].Amount.GreaterThan(ranked[j].Amount)
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}
