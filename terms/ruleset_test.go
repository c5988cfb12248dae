package terms_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/terms"
)

// =============================================================================
// VALIDATION TESTS - Authoring invariants enforced at save time
// =============================================================================

func TestValidate_AcceptsWellFormedRuleSet(t *testing.T) {
	if err := conditionalRule().Validate(); err != nil {
		t.Errorf("valid rule-set rejected: %v", err)
	}
}

func TestValidate_RejectsSplitsNotSummingTo100(t *testing.T) {
	rs := terms.RuleSet{
		DefaultPayments: []terms.PaymentSplit{
			{Percentage: dec(80), Trigger: terms.TriggerCSD, Timing: terms.TimingAfter, MonthsOffset: 1, Type: terms.PaymentLive},
			{Percentage: dec(30), Trigger: terms.TriggerCED, Timing: terms.TimingAfter, MonthsOffset: 2, Type: terms.PaymentReconciliation},
		},
	}

	err := rs.Validate()
	if err == nil {
		t.Fatal("expected percentage-sum error")
	}
	if !errors.Is(err, terms.ErrPercentageSum) {
		t.Errorf("expected ErrPercentageSum, got %v", err)
	}

	var sumErr *terms.PercentageSumError
	if !errors.As(err, &sumErr) {
		t.Fatalf("expected *PercentageSumError, got %T", err)
	}
	if !sumErr.Sum.Equal(dec(110)) {
		t.Errorf("reported sum = %s, want 110", sumErr.Sum)
	}
	if sumErr.RuleIndex != -1 {
		t.Errorf("rule index = %d, want -1 for defaults", sumErr.RuleIndex)
	}
}

func TestValidate_RejectsConditionalSplitsNotSummingTo100(t *testing.T) {
	rs := conditionalRule()
	rs.ConditionalRules[0].Payments[0].Percentage = dec(50)

	var sumErr *terms.PercentageSumError
	if err := rs.Validate(); !errors.As(err, &sumErr) {
		t.Fatalf("expected *PercentageSumError, got %v", err)
	} else if sumErr.RuleIndex != 0 {
		t.Errorf("rule index = %d, want 0", sumErr.RuleIndex)
	}
}

func TestValidate_FractionalPercentagesSummingExactly(t *testing.T) {
	// Decimal arithmetic: 33.33 + 33.33 + 33.34 is exactly 100.
	rs := terms.RuleSet{
		DefaultPayments: []terms.PaymentSplit{
			{Percentage: decimal.NewFromFloat(33.33), Trigger: terms.TriggerLockIn, Timing: terms.TimingAt, Type: terms.PaymentSignature},
			{Percentage: decimal.NewFromFloat(33.33), Trigger: terms.TriggerCSD, Timing: terms.TimingAt, Type: terms.PaymentLive},
			{Percentage: decimal.NewFromFloat(33.34), Trigger: terms.TriggerCED, Timing: terms.TimingAt, Type: terms.PaymentReconciliation},
		},
	}

	if err := rs.Validate(); err != nil {
		t.Errorf("exact fractional sum rejected: %v", err)
	}
}

func TestValidate_RejectsBadEnums(t *testing.T) {
	base := func() terms.RuleSet {
		rs := defaultRule()
		return rs
	}

	cases := []struct {
		name   string
		mutate func(*terms.RuleSet)
	}{
		{"unknown trigger", func(rs *terms.RuleSet) { rs.DefaultPayments[0].Trigger = "go_live" }},
		{"unknown timing", func(rs *terms.RuleSet) { rs.DefaultPayments[0].Timing = "around" }},
		{"unknown payment type", func(rs *terms.RuleSet) { rs.DefaultPayments[0].Type = "bonus" }},
		{"negative offset", func(rs *terms.RuleSet) { rs.DefaultPayments[0].MonthsOffset = -1 }},
		{"offset with at timing", func(rs *terms.RuleSet) {
			rs.DefaultPayments[0].Timing = terms.TimingAt
			rs.DefaultPayments[0].MonthsOffset = 2
		}},
		{"no splits", func(rs *terms.RuleSet) { rs.DefaultPayments = nil }},
		{"zero length cap", func(rs *terms.RuleSet) { rs.LengthCap = &terms.LengthCap{Months: 0} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rs := base()
			tc.mutate(&rs)
			err := rs.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, terms.ErrRuleConfig) && !errors.Is(err, terms.ErrPercentageSum) {
				t.Errorf("unexpected error type: %v", err)
			}
		})
	}
}

func TestValidate_RejectsBadConditionals(t *testing.T) {
	rs := conditionalRule()
	rs.ConditionalRules[0].Condition = "moon_phase"
	if err := rs.Validate(); !errors.Is(err, terms.ErrRuleConfig) {
		t.Errorf("expected ErrRuleConfig for unknown condition, got %v", err)
	}

	rs = conditionalRule()
	rs.ConditionalRules[0].Operator = "~="
	if err := rs.Validate(); !errors.Is(err, terms.ErrRuleConfig) {
		t.Errorf("expected ErrRuleConfig for unknown operator, got %v", err)
	}
}

// =============================================================================
// CONDITION MATCHING TESTS
// =============================================================================

func TestConditionalRule_Matches(t *testing.T) {
	c := terms.Contract{
		LockInDate:        date(2025, 1, 1),
		ContractStartDate: date(2025, 7, 1),  // 6 whole months out
		ContractEndDate:   date(2027, 7, 1),  // 24 month length
		UpliftRate:        decimal.NewFromFloat(2.0),
	}

	cases := []struct {
		name string
		rule terms.ConditionalRule
		want bool
	}{
		{"months_to_csd gt holds", terms.ConditionalRule{Condition: terms.ConditionMonthsToCSD, Operator: terms.OpGT, Value: dec(5)}, true},
		{"months_to_csd gt fails", terms.ConditionalRule{Condition: terms.ConditionMonthsToCSD, Operator: terms.OpGT, Value: dec(6)}, false},
		{"months_to_csd lte boundary", terms.ConditionalRule{Condition: terms.ConditionMonthsToCSD, Operator: terms.OpLTE, Value: dec(6)}, true},
		{"contract_length gte", terms.ConditionalRule{Condition: terms.ConditionContractLength, Operator: terms.OpGTE, Value: dec(24)}, true},
		{"contract_length lt fails", terms.ConditionalRule{Condition: terms.ConditionContractLength, Operator: terms.OpLT, Value: dec(24)}, false},
		{"uplift_rate gt", terms.ConditionalRule{Condition: terms.ConditionUpliftRate, Operator: terms.OpGT, Value: decimal.NewFromFloat(1.5)}, true},
		{"unknown condition never matches", terms.ConditionalRule{Condition: "unknown", Operator: terms.OpGT, Value: dec(0)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule.Matches(c); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestActivePayments_FirstMatchWins(t *testing.T) {
	// Two rules both match; the first one's payments must be used.
	first := []terms.PaymentSplit{{Percentage: dec(100), Trigger: terms.TriggerCSD, Timing: terms.TimingAt, Type: terms.PaymentLive}}
	second := []terms.PaymentSplit{{Percentage: dec(100), Trigger: terms.TriggerCED, Timing: terms.TimingAt, Type: terms.PaymentReconciliation}}

	rs := defaultRule()
	rs.ConditionalRules = []terms.ConditionalRule{
		{Condition: terms.ConditionUpliftRate, Operator: terms.OpGTE, Value: dec(0), Payments: first},
		{Condition: terms.ConditionUpliftRate, Operator: terms.OpGTE, Value: dec(0), Payments: second},
	}

	got := rs.ActivePayments(terms.Contract{})
	if len(got) != 1 || got[0].Trigger != terms.TriggerCSD {
		t.Errorf("expected first rule's payments, got %+v", got)
	}
}
