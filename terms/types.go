/*
Package terms provides the commission payment projection engine.

PURPOSE:
  This package contains the types and algorithms for projecting when and in
  what amounts commission payments are expected for an energy-supply
  brokerage contract. A supplier's payment terms are expressed as data (a
  RuleSet of percentage splits and conditional branches) and interpreted by
  one generic calculator, instead of one hard-coded function per supplier.

KEY CONCEPTS IN THIS FILE (types.go):
  - Contract: The immutable input to a calculation (key dates and values)
  - PaymentEvent: One projected payment (month, amount, type)
  - PaymentType: Why the payment occurs (signature/live/reconciliation/arrears)

DESIGN PRINCIPLES:
  1. Purity: Calculate is a function of its inputs - no I/O, no clock, no state
  2. Precision: Uses decimal.Decimal to avoid floating-point drift in money
  3. Fail-open: Malformed dates produce a (possibly nonsensical) schedule
     rather than an error; date sanity is the caller's concern
  4. Determinism: Identical inputs always yield identical output lists

USAGE:
  contract := terms.Contract{
      LockInDate:        lockIn,
      ContractStartDate: csd,
      ContractEndDate:   ced,
      ContractValue:     decimal.NewFromInt(10000),
      UpliftRate:        decimal.NewFromFloat(1.2),
  }
  events := terms.Calculate(contract, ruleSet)

SEE ALSO:
  - ruleset.go:  RuleSet / PaymentSplit / ConditionalRule schema
  - schedule.go: The calculator that interprets a RuleSet
  - month.go:    Calendar-month arithmetic
  - aggregate.go: Reductions over projected events
*/
package terms

import (
	"github.com/shopspring/decimal"
	"time"
)

// =============================================================================
// CONTRACT - Immutable input for one calculation call
// =============================================================================

// Contract carries the dates and values a rule-set is evaluated against.
// ContractStartDate is commonly abbreviated CSD, ContractEndDate CED.
//
// The engine does not enforce LockInDate <= ContractStartDate or
// ContractStartDate < ContractEndDate; conditional rules handle negative
// or zero offsets gracefully and validation belongs upstream.
type Contract struct {
	LockInDate        time.Time
	ContractStartDate time.Time
	ContractEndDate   time.Time

	// ContractValue is the total commission value split across the
	// projected payments.
	ContractValue decimal.Decimal

	// UpliftRate is the commission rate in pence/kWh (a.k.a. comms UR).
	// Only rules that branch on it (uplift caps) read this.
	UpliftRate decimal.Decimal
}

// =============================================================================
// PAYMENT EVENT - One projected payment
// =============================================================================

// PaymentType tags why a payment occurs. It is a closed enumeration used for
// reporting and badging; calculation branching uses Trigger/Timing instead.
type PaymentType string

const (
	PaymentSignature      PaymentType = "signature"      // On contract signing
	PaymentLive           PaymentType = "live"           // On supply start
	PaymentReconciliation PaymentType = "reconciliation" // Final true-up
	PaymentArrears        PaymentType = "arrears"        // Capped-excess monthly trickle
)

// PaymentEvent is a single projected payment. Events are produced fresh on
// every calculation call and never mutated; consumers may persist copies
// keyed by (contractID, month, type).
type PaymentEvent struct {
	Month  Month
	Amount decimal.Decimal
	Type   PaymentType
}

// LabeledEvent attaches contract context to a PaymentEvent so reporting
// surfaces can group by supplier or company. The engine itself only ever
// emits plain PaymentEvents.
type LabeledEvent struct {
	PaymentEvent
	ContractID string
	Company    string
	Supplier   string
}
