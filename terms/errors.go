/*
errors.go - Centralized error types for the projection engine

PURPOSE:
  All error types in one place. Calculation itself never fails (the engine
  is fail-open: wrong projections are a data-quality issue, not a system
  failure), so everything here concerns configuration authoring.

SEE ALSO:
  - ruleset.go: Validate() produces these
*/
package terms

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrPercentageSum is returned when a split list does not sum to 100%.
	ErrPercentageSum = errors.New("payment splits must sum to 100%")

	// ErrRuleConfig is returned for any other malformed rule-set field.
	ErrRuleConfig = errors.New("invalid rule-set configuration")
)

// =============================================================================
// STRUCTURED ERRORS - Carry authoring context
// =============================================================================

// PercentageSumError reports the offending sum. RuleIndex is -1 for the
// default payments, otherwise the index of the conditional rule.
type PercentageSumError struct {
	RuleIndex int
	Sum       decimal.Decimal
}

func (e *PercentageSumError) Error() string {
	if e.RuleIndex < 0 {
		return fmt.Sprintf("default payments sum to %s%%, want 100%%", e.Sum)
	}
	return fmt.Sprintf("conditional rule %d payments sum to %s%%, want 100%%", e.RuleIndex, e.Sum)
}

func (e *PercentageSumError) Unwrap() error { return ErrPercentageSum }

// RuleConfigError reports a malformed field in a rule-set.
type RuleConfigError struct {
	RuleIndex int // -1 = default payments / rule-set level
	Field     string
	Detail    string
}

func (e *RuleConfigError) Error() string {
	if e.RuleIndex < 0 {
		return fmt.Sprintf("invalid rule-set %s: %s", e.Field, e.Detail)
	}
	return fmt.Sprintf("invalid %s in conditional rule %d: %s", e.Field, e.RuleIndex, e.Detail)
}

func (e *RuleConfigError) Unwrap() error { return ErrRuleConfig }
