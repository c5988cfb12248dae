/*
schedule.go - The schedule calculator

PURPOSE:
  Interprets a RuleSet against a Contract and produces the ordered list of
  projected payment events. This is the only place payment-term semantics
  live; suppliers differ only in the RuleSet data they carry.

ALGORITHM:
  1. Resolve the active split list (first matching conditional rule, else
     the defaults).
  2. If the rule-set has an uplift cap and the contract's rate exceeds it,
     the splits apply to value*cap/rate and the excess is spread as equal
     monthly arrears from CSD+1 through CED+1 inclusive.
  3. If the rule-set has a length cap and the contract is longer, the value
     is prorated into a paid-through tranche and a remainder tranche around
     the CSD+ReconciliationOffset boundary.
  4. Each split lands in the month of its anchor date shifted by its offset,
     normalized to first-of-month, with amount = value * percentage / 100.
  5. Events are sorted chronologically; ties keep rule-definition order.

FAILURE SEMANTICS:
  Calculate never returns an error. A contract with CED before CSD yields
  whatever the arithmetic yields (possibly out-of-order months and an empty
  arrears run); date sanity belongs to the caller.

SEE ALSO:
  - ruleset.go: The schema being interpreted
  - month.go:   Whole-month differences and month arithmetic
*/
package terms

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Calculate evaluates the rule-set against the contract and returns the
// projected payments in chronological order. It is pure and safe for
// concurrent use: no clock, no I/O, no shared state.
func Calculate(c Contract, rs RuleSet) []PaymentEvent {
	splits := rs.ActivePayments(c)
	if len(splits) == 0 {
		return nil
	}

	payable := c.ContractValue
	var arrears []PaymentEvent

	if rs.UpliftCap != nil && c.UpliftRate.GreaterThan(*rs.UpliftCap) {
		capped := c.ContractValue.Mul(*rs.UpliftCap).Div(c.UpliftRate)
		arrears = arrearsEvents(c, c.ContractValue.Sub(capped))
		payable = capped
	}

	var events []PaymentEvent
	if tranche := lengthCapEvents(c, rs, splits, payable); tranche != nil {
		events = tranche
	} else {
		events = splitEvents(c, splits, payable)
	}
	events = append(events, arrears...)

	// Chronological order; stable so same-month events keep the order the
	// rule definition emitted them in.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Month.Before(events[j].Month)
	})
	return events
}

// splitEvents applies each split's percentage of value to its month.
func splitEvents(c Contract, splits []PaymentSplit, value decimal.Decimal) []PaymentEvent {
	events := make([]PaymentEvent, 0, len(splits))
	for _, s := range splits {
		events = append(events, PaymentEvent{
			Month:  splitMonth(c, s),
			Amount: share(value, s.Percentage),
			Type:   s.Type,
		})
	}
	return events
}

// splitMonth resolves the calendar month a split lands in: anchor date,
// shifted by the offset in the timing direction, normalized to its month.
func splitMonth(c Contract, s PaymentSplit) Month {
	var anchor Month
	switch s.Trigger {
	case TriggerLockIn:
		anchor = MonthOf(c.LockInDate)
	case TriggerCED:
		anchor = MonthOf(c.ContractEndDate)
	default:
		anchor = MonthOf(c.ContractStartDate)
	}

	switch s.Timing {
	case TimingBefore:
		return anchor.Add(-s.MonthsOffset)
	case TimingAfter:
		return anchor.Add(s.MonthsOffset)
	default: // TimingAt
		return anchor
	}
}

// share is value * percentage / 100.
func share(value, percentage decimal.Decimal) decimal.Decimal {
	return value.Mul(percentage).Div(hundred)
}

// =============================================================================
// UPLIFT-CAP ARREARS SPREADING
// =============================================================================

// arrearsEvents spreads total evenly across consecutive months from CSD+1
// through CED+1 inclusive. The divisor is wholeMonths(CED,CSD)+1, matching
// the observed terms: the CED+1 boundary month is part of the spread, one
// month beyond the supply span itself.
func arrearsEvents(c Contract, total decimal.Decimal) []PaymentEvent {
	count := WholeMonthsBetween(c.ContractEndDate, c.ContractStartDate) + 1
	if count < 1 {
		count = 1
	}
	per := total.Div(decimal.NewFromInt(int64(count)))

	var events []PaymentEvent
	end := MonthOf(c.ContractEndDate).Add(1)
	for m := MonthOf(c.ContractStartDate).Add(1); !m.After(end); m = m.Add(1) {
		events = append(events, PaymentEvent{Month: m, Amount: per, Type: PaymentArrears})
	}
	return events
}

// =============================================================================
// LENGTH-CAP PRORATION
// =============================================================================

// lengthCapEvents handles contracts longer than the rule-set's pay-through
// boundary. Returns nil when the cap does not apply.
//
// The split percentages are applied to both tranches. In the paid-through
// tranche every split keeps its own month except the final one, which
// reconciles at CSD+ReconciliationOffset. The remainder tranche pays out at
// that same boundary except its final split, which stays at its configured
// anchor (the true end-of-contract reconciliation).
func lengthCapEvents(c Contract, rs RuleSet, splits []PaymentSplit, value decimal.Decimal) []PaymentEvent {
	if rs.LengthCap == nil {
		return nil
	}
	length := WholeMonthsBetween(c.ContractEndDate, c.ContractStartDate)
	if length <= rs.LengthCap.Months {
		return nil
	}

	paidThrough := value.
		Mul(decimal.NewFromInt(int64(rs.LengthCap.Months))).
		Div(decimal.NewFromInt(int64(length)))
	remainder := value.Sub(paidThrough)
	boundary := MonthOf(c.ContractStartDate).Add(rs.LengthCap.ReconciliationOffset)

	last := len(splits) - 1
	events := make([]PaymentEvent, 0, 2*len(splits))
	for i, s := range splits {
		m := splitMonth(c, s)
		if i == last {
			m = boundary
		}
		events = append(events, PaymentEvent{Month: m, Amount: share(paidThrough, s.Percentage), Type: s.Type})
	}
	for i, s := range splits {
		m := boundary
		if i == last {
			m = splitMonth(c, s)
		}
		events = append(events, PaymentEvent{Month: m, Amount: share(remainder, s.Percentage), Type: s.Type})
	}
	return events
}
