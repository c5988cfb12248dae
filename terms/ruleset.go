/*
ruleset.go - Declarative payment-terms schema

PURPOSE:
  Defines the data that describes a supplier's payment terms: an ordered
  list of percentage splits, optional conditional branches, and optional
  caps. One RuleSet replaces one hard-coded per-supplier function; the
  calculator in schedule.go interprets it.

KEY CONCEPTS:
  - PaymentSplit: "X% of the value, N months before/at/after an anchor date"
  - ConditionalRule: first-match-wins branch that REPLACES the default splits
  - UpliftCap: rate ceiling; the excess share is paid as monthly arrears
  - LengthCap: pay-through boundary for very long contracts

VALIDATION:
  Every split list (default or conditional) must sum to exactly 100%. This
  is a configuration-authoring contract enforced by Validate() at save time,
  NOT re-checked inside Calculate - the calculator never silently fixes up
  an invalid sum.

EXAMPLE (the universal default rule):
  rs := terms.RuleSet{
      Name: "default",
      DefaultPayments: []terms.PaymentSplit{
          {Percentage: dec(80), Trigger: terms.TriggerCSD, Timing: terms.TimingAfter, MonthsOffset: 1, Type: terms.PaymentLive},
          {Percentage: dec(20), Trigger: terms.TriggerCED, Timing: terms.TimingAfter, MonthsOffset: 2, Type: terms.PaymentReconciliation},
      },
  }

SEE ALSO:
  - schedule.go: Calculate interprets this schema
  - errors.go:   Validation error types
*/
package terms

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SPLIT PRIMITIVES
// =============================================================================

// Trigger names the contract date a split is anchored on.
type Trigger string

const (
	TriggerLockIn Trigger = "lock_in"
	TriggerCSD    Trigger = "csd"
	TriggerCED    Trigger = "ced"
)

// Timing is the direction of the months offset from the anchor.
type Timing string

const (
	TimingAt     Timing = "at"     // Offset forced to zero
	TimingBefore Timing = "before" // Subtract MonthsOffset
	TimingAfter  Timing = "after"  // Add MonthsOffset
)

// PaymentSplit projects one slice of the contract value onto a month.
type PaymentSplit struct {
	Percentage   decimal.Decimal // 0-100
	Trigger      Trigger
	Timing       Timing
	MonthsOffset int // Non-negative; direction comes from Timing
	Type         PaymentType
}

// =============================================================================
// CONDITIONAL RULES
// =============================================================================

// Condition names a derived contract metric a rule can branch on.
// Month-based conditions are whole-month differences between the relevant
// contract dates.
type Condition string

const (
	ConditionMonthsToCSD    Condition = "months_to_csd"   // CSD - lock-in
	ConditionContractLength Condition = "contract_length" // CED - CSD
	ConditionUpliftRate     Condition = "uplift_rate"
)

// Operator compares the condition value against the rule threshold.
type Operator string

const (
	OpLTE Operator = "lte"
	OpGT  Operator = "gt"
	OpGTE Operator = "gte"
	OpLT  Operator = "lt"
)

// ConditionalRule swaps in an alternative split list when its condition
// holds. Rules are evaluated top-to-bottom and the first match wins; its
// Payments entirely replace the defaults (no merging).
type ConditionalRule struct {
	Condition Condition
	Operator  Operator
	Value     decimal.Decimal
	Payments  []PaymentSplit
}

// Matches reports whether the rule's condition holds for the contract.
func (r ConditionalRule) Matches(c Contract) bool {
	var v decimal.Decimal
	switch r.Condition {
	case ConditionMonthsToCSD:
		v = decimal.NewFromInt(int64(WholeMonthsBetween(c.ContractStartDate, c.LockInDate)))
	case ConditionContractLength:
		v = decimal.NewFromInt(int64(WholeMonthsBetween(c.ContractEndDate, c.ContractStartDate)))
	case ConditionUpliftRate:
		v = c.UpliftRate
	default:
		return false
	}

	switch r.Operator {
	case OpLTE:
		return v.LessThanOrEqual(r.Value)
	case OpGT:
		return v.GreaterThan(r.Value)
	case OpGTE:
		return v.GreaterThanOrEqual(r.Value)
	case OpLT:
		return v.LessThan(r.Value)
	default:
		return false
	}
}

// =============================================================================
// RULE SET
// =============================================================================

// LengthCap describes pay-through-then-reconcile handling for contracts
// longer than Months. The paid-through tranche is Months/length of the
// value; its final split lands at CSD + ReconciliationOffset months, where
// the remainder tranche also starts paying out.
//
// ReconciliationOffset is configured independently of Months because the
// observed Crown Gas & Power terms reconcile the 36-month boundary at
// CSD+38 - two months of collection lag.
type LengthCap struct {
	Months               int
	ReconciliationOffset int
}

// RuleSet is the complete declarative payment-terms configuration for one
// supplier. The zero value is not usable; DefaultPayments must be present.
type RuleSet struct {
	Name        string
	Description string

	// DefaultPayments apply when no conditional rule matches.
	DefaultPayments []PaymentSplit

	// ConditionalRules are evaluated in order; first match wins.
	ConditionalRules []ConditionalRule

	// UpliftCap in p/kWh. When the contract's uplift rate exceeds it, the
	// split applies to value*cap/rate and the excess is spread as arrears.
	UpliftCap *decimal.Decimal

	// LengthCap, when set, prorates contracts longer than its boundary.
	LengthCap *LengthCap
}

// ActivePayments resolves which split list applies to the contract.
func (rs RuleSet) ActivePayments(c Contract) []PaymentSplit {
	for _, rule := range rs.ConditionalRules {
		if rule.Matches(c) {
			return rule.Payments
		}
	}
	return rs.DefaultPayments
}

// =============================================================================
// VALIDATION - Enforced at configuration save time, not per calculation
// =============================================================================

var hundred = decimal.NewFromInt(100)

// Validate checks the authoring invariants: every split list sums to
// exactly 100%, offsets are non-negative, and all enumeration values are
// known. Callers persisting supplier terms must reject configurations that
// fail this; Calculate assumes it holds.
func (rs RuleSet) Validate() error {
	if err := validateSplits(rs.DefaultPayments, -1); err != nil {
		return err
	}
	for i, rule := range rs.ConditionalRules {
		switch rule.Condition {
		case ConditionMonthsToCSD, ConditionContractLength, ConditionUpliftRate:
		default:
			return &RuleConfigError{RuleIndex: i, Field: "condition", Detail: string(rule.Condition)}
		}
		switch rule.Operator {
		case OpLTE, OpGT, OpGTE, OpLT:
		default:
			return &RuleConfigError{RuleIndex: i, Field: "operator", Detail: string(rule.Operator)}
		}
		if err := validateSplits(rule.Payments, i); err != nil {
			return err
		}
	}
	if rs.LengthCap != nil && rs.LengthCap.Months <= 0 {
		return &RuleConfigError{RuleIndex: -1, Field: "length_cap", Detail: "months must be positive"}
	}
	return nil
}

func validateSplits(splits []PaymentSplit, ruleIndex int) error {
	if len(splits) == 0 {
		return &RuleConfigError{RuleIndex: ruleIndex, Field: "payments", Detail: "at least one split required"}
	}

	sum := decimal.Zero
	for _, s := range splits {
		switch s.Trigger {
		case TriggerLockIn, TriggerCSD, TriggerCED:
		default:
			return &RuleConfigError{RuleIndex: ruleIndex, Field: "trigger", Detail: string(s.Trigger)}
		}
		switch s.Timing {
		case TimingAt, TimingBefore, TimingAfter:
		default:
			return &RuleConfigError{RuleIndex: ruleIndex, Field: "timing", Detail: string(s.Timing)}
		}
		switch s.Type {
		case PaymentSignature, PaymentLive, PaymentReconciliation, PaymentArrears:
		default:
			return &RuleConfigError{RuleIndex: ruleIndex, Field: "payment_type", Detail: string(s.Type)}
		}
		if s.MonthsOffset < 0 {
			return &RuleConfigError{RuleIndex: ruleIndex, Field: "months_offset", Detail: "must be non-negative"}
		}
		if s.Timing == TimingAt && s.MonthsOffset != 0 {
			return &RuleConfigError{RuleIndex: ruleIndex, Field: "months_offset", Detail: `must be zero when timing is "at"`}
		}
		sum = sum.Add(s.Percentage)
	}

	if !sum.Equal(hundred) {
		return &PercentageSumError{RuleIndex: ruleIndex, Sum: sum}
	}
	return nil
}
