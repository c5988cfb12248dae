/*
Package factory provides JSON to Go rule-set conversion.

PURPOSE:
  Converts JSON payment-terms definitions into terms.RuleSet values. This
  enables supplier configuration without code changes - operations staff
  can author terms in JSON (via the admin API), and the factory creates the
  proper Go structs. The same JSON is what the store persists per supplier.

WHY JSON?
  - Non-developers can modify payment terms
  - Easy integration with an admin UI
  - Version control / database storage of term configs

JSON SCHEMA:
  {
    "name": "brook-green",
    "description": "80% on live, 20% reconciliation, >1.5p/kWh in arrears",
    "default_payments": [
      {"percentage": 80, "trigger": "csd", "timing": "after", "months_offset": 1, "payment_type": "live"},
      {"percentage": 20, "trigger": "ced", "timing": "after", "months_offset": 2, "payment_type": "reconciliation"}
    ],
    "conditional_rules": [
      {"condition": "months_to_csd", "operator": "gt", "value": 24, "payments": [...]}
    ],
    "uplift_cap": 1.5,
    "length_cap": {"months": 36, "reconciliation_offset": 38}
  }

VALIDATION:
  Parsing always runs terms.RuleSet.Validate() - this is the configuration
  save-time enforcement point for the percent-sum-to-100 invariant. A JSON
  document that parses but fails validation is rejected here, never inside
  the calculator.

USAGE:
  f := factory.NewTermsFactory()
  rs, err := f.ParseRuleSet(jsonStr)

SEE ALSO:
  - terms/ruleset.go: Target schema and Validate
  - suppliers/presets.go: Canned preset JSON builders
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/terms"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleSetJSON is the JSON representation of a supplier's payment terms.
type RuleSetJSON struct {
	Name             string            `json:"name,omitempty"`
	Description      string            `json:"description,omitempty"`
	DefaultPayments  []SplitJSON       `json:"default_payments"`
	ConditionalRules []ConditionalJSON `json:"conditional_rules,omitempty"`
	UpliftCap        *float64          `json:"uplift_cap,omitempty"`
	LengthCap        *LengthCapJSON    `json:"length_cap,omitempty"`
}

// SplitJSON represents one payment split.
type SplitJSON struct {
	Percentage   float64 `json:"percentage"`
	Trigger      string  `json:"trigger"`       // lock_in, csd, ced
	Timing       string  `json:"timing"`        // at, before, after
	MonthsOffset int     `json:"months_offset"` // 0 = at trigger
	PaymentType  string  `json:"payment_type"`  // signature, live, reconciliation, arrears
}

// ConditionalJSON represents a first-match-wins conditional branch.
type ConditionalJSON struct {
	Condition string      `json:"condition"` // months_to_csd, contract_length, uplift_rate
	Operator  string      `json:"operator"`  // lte, gt, gte, lt
	Value     float64     `json:"value"`
	Payments  []SplitJSON `json:"payments"`
}

// LengthCapJSON represents pay-through handling for long contracts.
type LengthCapJSON struct {
	Months               int `json:"months"`
	ReconciliationOffset int `json:"reconciliation_offset"`
}

// =============================================================================
// TERMS FACTORY
// =============================================================================

// TermsFactory converts JSON payment terms to Go structs and back.
type TermsFactory struct{}

// NewTermsFactory creates a new terms factory.
func NewTermsFactory() *TermsFactory {
	return &TermsFactory{}
}

// ParseRuleSet parses and validates a JSON string into a RuleSet.
func (f *TermsFactory) ParseRuleSet(jsonStr string) (*terms.RuleSet, error) {
	var rj RuleSetJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return nil, fmt.Errorf("failed to parse payment terms JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// FromJSON converts RuleSetJSON to a validated terms.RuleSet.
func (f *TermsFactory) FromJSON(rj RuleSetJSON) (*terms.RuleSet, error) {
	rs := &terms.RuleSet{
		Name:            rj.Name,
		Description:     rj.Description,
		DefaultPayments: splitsFromJSON(rj.DefaultPayments),
	}

	for _, cj := range rj.ConditionalRules {
		rs.ConditionalRules = append(rs.ConditionalRules, terms.ConditionalRule{
			Condition: terms.Condition(cj.Condition),
			Operator:  terms.Operator(cj.Operator),
			Value:     decimal.NewFromFloat(cj.Value),
			Payments:  splitsFromJSON(cj.Payments),
		})
	}

	if rj.UpliftCap != nil {
		cap := decimal.NewFromFloat(*rj.UpliftCap)
		rs.UpliftCap = &cap
	}
	if rj.LengthCap != nil {
		rs.LengthCap = &terms.LengthCap{
			Months:               rj.LengthCap.Months,
			ReconciliationOffset: rj.LengthCap.ReconciliationOffset,
		}
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

// ToJSON converts a RuleSet to its JSON representation.
func (f *TermsFactory) ToJSON(rs terms.RuleSet) RuleSetJSON {
	rj := RuleSetJSON{
		Name:            rs.Name,
		Description:     rs.Description,
		DefaultPayments: splitsToJSON(rs.DefaultPayments),
	}

	for _, rule := range rs.ConditionalRules {
		v, _ := rule.Value.Float64()
		rj.ConditionalRules = append(rj.ConditionalRules, ConditionalJSON{
			Condition: string(rule.Condition),
			Operator:  string(rule.Operator),
			Value:     v,
			Payments:  splitsToJSON(rule.Payments),
		})
	}

	if rs.UpliftCap != nil {
		v, _ := rs.UpliftCap.Float64()
		rj.UpliftCap = &v
	}
	if rs.LengthCap != nil {
		rj.LengthCap = &LengthCapJSON{
			Months:               rs.LengthCap.Months,
			ReconciliationOffset: rs.LengthCap.ReconciliationOffset,
		}
	}
	return rj
}

// MarshalRuleSet renders a RuleSet as indented JSON, the form stored per
// supplier and edited through the admin API.
func (f *TermsFactory) MarshalRuleSet(rs terms.RuleSet) (string, error) {
	b, err := json.MarshalIndent(f.ToJSON(rs), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment terms: %w", err)
	}
	return string(b), nil
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func splitsFromJSON(sjs []SplitJSON) []terms.PaymentSplit {
	splits := make([]terms.PaymentSplit, 0, len(sjs))
	for _, sj := range sjs {
		splits = append(splits, terms.PaymentSplit{
			Percentage:   decimal.NewFromFloat(sj.Percentage),
			Trigger:      terms.Trigger(sj.Trigger),
			Timing:       terms.Timing(sj.Timing),
			MonthsOffset: sj.MonthsOffset,
			Type:         terms.PaymentType(sj.PaymentType),
		})
	}
	return splits
}

func splitsToJSON(splits []terms.PaymentSplit) []SplitJSON {
	sjs := make([]SplitJSON, 0, len(splits))
	for _, s := range splits {
		p, _ := s.Percentage.Float64()
		sjs = append(sjs, SplitJSON{
			Percentage:   p,
			Trigger:      string(s.Trigger),
			Timing:       string(s.Timing),
			MonthsOffset: s.MonthsOffset,
			PaymentType:  string(s.Type),
		})
	}
	return sjs
}
