/*
Package suppliers carries the built-in payment-term rule-sets for known
energy suppliers and resolves free-text supplier names onto them.

PURPOSE:
  Historically each supplier's terms lived in a separate hard-coded
  calculation; here they are data - one terms.RuleSet per supplier family,
  interpreted by the generic calculator. Name-based resolution survives as
  a bridge for imported data; structured configurations stored against a
  supplier are the preferred path and bypass this package entirely.

RESOLUTION:
  Resolve() matches case-insensitively after trimming, checks exact names
  first and then family prefixes (a name starting with "brook green" gets
  the Brook Green rule regardless of suffix variant). Anything unmatched
  falls through to Default() - 80% live at CSD+1, 20% reconciliation at
  CED+2. Resolution never fails; the default is the universal safety net
  for unknown or newly added suppliers.

SEE ALSO:
  - list.go:  The fixed catalogue of valid supplier names + fuzzy matching
  - terms/:   The schema and calculator these rule-sets feed
*/
package suppliers

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/terms"
)

// =============================================================================
// SPLIT SHORTHANDS
// =============================================================================

func pct(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

func split(p int, trigger terms.Trigger, timing terms.Timing, offset int, pt terms.PaymentType) terms.PaymentSplit {
	return terms.PaymentSplit{
		Percentage:   pct(p),
		Trigger:      trigger,
		Timing:       timing,
		MonthsOffset: offset,
		Type:         pt,
	}
}

func liveAfterCSD(p, months int) terms.PaymentSplit {
	return split(p, terms.TriggerCSD, terms.TimingAfter, months, terms.PaymentLive)
}

func reconAfterCED(p, months int) terms.PaymentSplit {
	return split(p, terms.TriggerCED, terms.TimingAfter, months, terms.PaymentReconciliation)
}

// =============================================================================
// NAMED RULE SETS
// =============================================================================

// Default is the universal fallback: 80% on live one month after CSD, 20%
// reconciliation two months after CED.
func Default() terms.RuleSet {
	return terms.RuleSet{
		Name:        "default",
		Description: "80% on live, 20% 2 months after CED",
		DefaultPayments: []terms.PaymentSplit{
			liveAfterCSD(80, 1),
			reconAfterCED(20, 2),
		},
	}
}

func britishGasAcquisition() terms.RuleSet {
	return terms.RuleSet{
		Name:        "british-gas-acquisition",
		Description: "70% on live (month after CSD), 30% reconciliation 2 months after CED",
		DefaultPayments: []terms.PaymentSplit{
			liveAfterCSD(70, 1),
			reconAfterCED(30, 2),
		},
	}
}

func britishGasRenewal() terms.RuleSet {
	return terms.RuleSet{
		Name:        "british-gas-renewal",
		Description: "70% on signature (month after lock-in), 30% reconciliation 2 months after CED",
		DefaultPayments: []terms.PaymentSplit{
			split(70, terms.TriggerLockIn, terms.TimingAfter, 1, terms.PaymentSignature),
			reconAfterCED(30, 2),
		},
	}
}

func brookGreen() terms.RuleSet {
	cap := decimal.NewFromFloat(1.5)
	return terms.RuleSet{
		Name:        "brook-green",
		Description: "80% on live, 20% reconciliation. Anything over 1.5p/kWh paid monthly in arrears",
		DefaultPayments: []terms.PaymentSplit{
			liveAfterCSD(80, 1),
			reconAfterCED(20, 2),
		},
		UpliftCap: &cap,
	}
}

// coronaUpfront pays 80% on signature the month after lock-in, unless the
// contract starts more than 18 months out - then the signature payment
// waits until 18 months before CSD.
func coronaUpfront() terms.RuleSet {
	return terms.RuleSet{
		Name:        "corona-upfront",
		Description: "80% signature (18 months before CSD if >18 months out), 20% reconciliation 2 months after CED",
		DefaultPayments: []terms.PaymentSplit{
			split(80, terms.TriggerLockIn, terms.TimingAfter, 1, terms.PaymentSignature),
			reconAfterCED(20, 2),
		},
		ConditionalRules: []terms.ConditionalRule{{
			Condition: terms.ConditionMonthsToCSD,
			Operator:  terms.OpGT,
			Value:     pct(18),
			Payments: []terms.PaymentSplit{
				split(80, terms.TriggerCSD, terms.TimingBefore, 18, terms.PaymentSignature),
				reconAfterCED(20, 2),
			},
		}},
	}
}

// crownGasPower pays the standard 80/20 up to 36 months; longer contracts
// are prorated and reconciled at CSD+38 (the two extra months are the
// supplier's observed collection lag - preserved, not "fixed" to +36).
func crownGasPower() terms.RuleSet {
	return terms.RuleSet{
		Name:        "crown-gas-power",
		Description: "80% live up to 36 months, longer contracts reconciled at 36 months then remainder paid 80%",
		DefaultPayments: []terms.PaymentSplit{
			liveAfterCSD(80, 1),
			reconAfterCED(20, 2),
		},
		LengthCap: &terms.LengthCap{Months: 36, ReconciliationOffset: 38},
	}
}

func engieAcquisition() terms.RuleSet {
	return terms.RuleSet{
		Name:        "engie-acquisition",
		Description: "50% signature, 30% live, 20% 2 months after CED. If >2 years to CSD from lock-in, paid 80% live",
		DefaultPayments: []terms.PaymentSplit{
			split(50, terms.TriggerLockIn, terms.TimingAfter, 1, terms.PaymentSignature),
			split(30, terms.TriggerCSD, terms.TimingAt, 0, terms.PaymentLive),
			reconAfterCED(20, 2),
		},
		ConditionalRules: []terms.ConditionalRule{{
			Condition: terms.ConditionMonthsToCSD,
			Operator:  terms.OpGT,
			Value:     pct(24),
			Payments: []terms.PaymentSplit{
				split(80, terms.TriggerCSD, terms.TimingAt, 0, terms.PaymentLive),
				reconAfterCED(20, 2),
			},
		}},
	}
}

func eonNextAcquisition() terms.RuleSet {
	return terms.RuleSet{
		Name:        "eonnext-acquisition",
		Description: "80% live (at CSD month), 20% 2 months after CED",
		DefaultPayments: []terms.PaymentSplit{
			split(80, terms.TriggerCSD, terms.TimingAt, 0, terms.PaymentLive),
			reconAfterCED(20, 2),
		},
	}
}

func eonNextRenewal() terms.RuleSet {
	return terms.RuleSet{
		Name:        "eonnext-renewal",
		Description: "80% signature (1 month after lock-in), 20% 2 months after CED",
		DefaultPayments: []terms.PaymentSplit{
			split(80, terms.TriggerLockIn, terms.TimingAfter, 1, terms.PaymentSignature),
			reconAfterCED(20, 2),
		},
	}
}

func npower() terms.RuleSet {
	return terms.RuleSet{
		Name:        "npower",
		Description: "≤24 months to CSD: 80% at lock-in, 20% at CED. >24 months: 40-40-20",
		DefaultPayments: []terms.PaymentSplit{
			split(80, terms.TriggerLockIn, terms.TimingAt, 0, terms.PaymentSignature),
			split(20, terms.TriggerCED, terms.TimingAt, 0, terms.PaymentReconciliation),
		},
		ConditionalRules: []terms.ConditionalRule{{
			Condition: terms.ConditionMonthsToCSD,
			Operator:  terms.OpGT,
			Value:     pct(24),
			Payments: []terms.PaymentSplit{
				split(40, terms.TriggerLockIn, terms.TimingAt, 0, terms.PaymentSignature),
				split(40, terms.TriggerCSD, terms.TimingAt, 0, terms.PaymentLive),
				split(20, terms.TriggerCED, terms.TimingAt, 0, terms.PaymentReconciliation),
			},
		}},
	}
}

func smartestEnergy() terms.RuleSet {
	return terms.RuleSet{
		Name:        "smartest-energy",
		Description: "20% signature, 60% live (~15 days after), 20% 6 weeks after CED",
		DefaultPayments: []terms.PaymentSplit{
			split(20, terms.TriggerLockIn, terms.TimingAt, 0, terms.PaymentSignature),
			split(60, terms.TriggerCSD, terms.TimingAt, 0, terms.PaymentLive),
			reconAfterCED(20, 2),
		},
	}
}

func totalEnergiesAcquisition() terms.RuleSet {
	return terms.RuleSet{
		Name:        "totalenergies-acquisition",
		Description: "≤12 months to CSD: 40% at lock-in, 40% at CSD, 20% at CED. >12 months: 40% at CSD-12mo, 40% at CSD, 20% at CED",
		DefaultPayments: []terms.PaymentSplit{
			split(40, terms.TriggerLockIn, terms.TimingAt, 0, terms.PaymentSignature),
			split(40, terms.TriggerCSD, terms.TimingAt, 0, terms.PaymentLive),
			split(20, terms.TriggerCED, terms.TimingAt, 0, terms.PaymentReconciliation),
		},
		ConditionalRules: []terms.ConditionalRule{{
			Condition: terms.ConditionMonthsToCSD,
			Operator:  terms.OpGT,
			Value:     pct(12),
			Payments: []terms.PaymentSplit{
				split(40, terms.TriggerCSD, terms.TimingBefore, 12, terms.PaymentSignature),
				split(40, terms.TriggerCSD, terms.TimingAt, 0, terms.PaymentLive),
				split(20, terms.TriggerCED, terms.TimingAt, 0, terms.PaymentReconciliation),
			},
		}},
	}
}

func totalEnergiesRenewal() terms.RuleSet {
	return terms.RuleSet{
		Name:        "totalenergies-renewal",
		Description: "80% at lock-in month, 20% at CED month",
		DefaultPayments: []terms.PaymentSplit{
			split(80, terms.TriggerLockIn, terms.TimingAt, 0, terms.PaymentSignature),
			split(20, terms.TriggerCED, terms.TimingAt, 0, terms.PaymentReconciliation),
		},
	}
}

// =============================================================================
// NAME RESOLUTION (legacy bridge)
// =============================================================================

// Resolve maps a free-text supplier name to its rule-set. Matching trims
// whitespace, is case-insensitive, checks exact variant names before family
// prefixes, and never fails - unknown names get Default().
func Resolve(name string) terms.RuleSet {
	n := strings.ToLower(strings.TrimSpace(name))

	switch n {
	case "british gas acquisition":
		return britishGasAcquisition()
	case "british gas renewal":
		return britishGasRenewal()
	case "corona acquisition upfront", "corona renewal upfront":
		return coronaUpfront()
	case "corona acquisition no upfront", "corona renewal no upfront":
		return Default()
	case "eonnext acquisition":
		return eonNextAcquisition()
	case "eonnext renewal":
		return eonNextRenewal()
	}

	switch {
	case strings.HasPrefix(n, "brook green"):
		return brookGreen()
	case strings.HasPrefix(n, "crown gas & power"):
		return crownGasPower()
	case strings.HasPrefix(n, "engie acquisition"):
		return engieAcquisition()
	case strings.HasPrefix(n, "engie renewal"):
		return Default()
	case strings.HasPrefix(n, "npower"):
		return npower()
	case strings.HasPrefix(n, "smartest energy"):
		return smartestEnergy()
	case strings.HasPrefix(n, "totalenergies acquisition"):
		return totalEnergiesAcquisition()
	case strings.HasPrefix(n, "totalenergies renewal"):
		return totalEnergiesRenewal()
	}

	return Default()
}
