/*
presets.go - Canned payment-terms JSON builders

These build JSON strings for the common split shapes seen across the
supplier base, ready for factory.ParseRuleSet. They construct JSON directly
to avoid an import cycle with the factory package.

USAGE:
  jsonStr := suppliers.Standard8020LiveJSON()
  rs, err := factory.NewTermsFactory().ParseRuleSet(jsonStr)
*/
package suppliers

import "encoding/json"

func splitMap(pct float64, trigger, timing string, offset int, paymentType string) map[string]interface{} {
	return map[string]interface{}{
		"percentage":    pct,
		"trigger":       trigger,
		"timing":        timing,
		"months_offset": offset,
		"payment_type":  paymentType,
	}
}

func presetJSON(name, description string, payments ...map[string]interface{}) string {
	pj := map[string]interface{}{
		"name":             name,
		"description":      description,
		"default_payments": payments,
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}

// Standard8020LiveJSON returns JSON for 80% live (CSD+1), 20% reconciliation (CED+2).
func Standard8020LiveJSON() string {
	return presetJSON("standard_80_20_live",
		"80% live (CSD+1), 20% reconciliation (CED+2)",
		splitMap(80, "csd", "after", 1, "live"),
		splitMap(20, "ced", "after", 2, "reconciliation"))
}

// Standard8020SignatureJSON returns JSON for 80% signature (lock-in+1), 20% reconciliation (CED+2).
func Standard8020SignatureJSON() string {
	return presetJSON("standard_80_20_signature",
		"80% signature (Lock-in+1), 20% reconciliation (CED+2)",
		splitMap(80, "lock_in", "after", 1, "signature"),
		splitMap(20, "ced", "after", 2, "reconciliation"))
}

// Standard7030LiveJSON returns JSON for 70% live (CSD+1), 30% reconciliation (CED+2).
func Standard7030LiveJSON() string {
	return presetJSON("standard_70_30_live",
		"70% live (CSD+1), 30% reconciliation (CED+2)",
		splitMap(70, "csd", "after", 1, "live"),
		splitMap(30, "ced", "after", 2, "reconciliation"))
}

// Standard503020JSON returns JSON for 50% signature, 30% live at CSD, 20% reconciliation (CED+2).
func Standard503020JSON() string {
	return presetJSON("standard_50_30_20",
		"50% signature (Lock-in+1), 30% live (CSD), 20% reconciliation (CED+2)",
		splitMap(50, "lock_in", "after", 1, "signature"),
		splitMap(30, "csd", "at", 0, "live"),
		splitMap(20, "ced", "after", 2, "reconciliation"))
}

// Standard404020JSON returns JSON for 40/40/20 at lock-in/CSD/CED.
func Standard404020JSON() string {
	return presetJSON("standard_40_40_20",
		"40% signature (Lock-in), 40% live (CSD), 20% reconciliation (CED)",
		splitMap(40, "lock_in", "at", 0, "signature"),
		splitMap(40, "csd", "at", 0, "live"),
		splitMap(20, "ced", "at", 0, "reconciliation"))
}

// Standard206020JSON returns JSON for 20% signature, 60% live at CSD, 20% reconciliation (CED+2).
func Standard206020JSON() string {
	return presetJSON("standard_20_60_20",
		"20% signature (Lock-in), 60% live (CSD), 20% reconciliation (CED+2)",
		splitMap(20, "lock_in", "at", 0, "signature"),
		splitMap(60, "csd", "at", 0, "live"),
		splitMap(20, "ced", "after", 2, "reconciliation"))
}

// PresetJSONs lists every preset by its name.
func PresetJSONs() map[string]string {
	return map[string]string{
		"standard_80_20_live":      Standard8020LiveJSON(),
		"standard_80_20_signature": Standard8020SignatureJSON(),
		"standard_70_30_live":      Standard7030LiveJSON(),
		"standard_50_30_20":        Standard503020JSON(),
		"standard_40_40_20":        Standard404020JSON(),
		"standard_20_60_20":        Standard206020JSON(),
	}
}
