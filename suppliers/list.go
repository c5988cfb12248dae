package suppliers

import "strings"

// =============================================================================
// VALID SUPPLIER CATALOGUE - Fixed list used for bulk-import validation
// =============================================================================

// ValidSuppliers is the fixed catalogue of supplier variant names accepted
// by the import pipeline. Imported rows must name one of these (matched
// case-insensitively); everything else is rejected with suggestions.
var ValidSuppliers = []string{
	"Airticity Acquisition",
	"Airticity Renewal",
	"British Gas Acquisition",
	"British Gas Renewal",
	"Brook Green Acquisition No Upfront",
	"Brook Green Acquisition Upfront",
	"Brook Green Renewal No Upfront",
	"Brook Green Renewal Upfront",
	"Corona Acquisition No Upfront",
	"Corona Acquisition Upfront",
	"Corona Renewal No Upfront",
	"Corona Renewal Upfront",
	"Crown Gas & Power Acquisition No Upfront",
	"Crown Gas & Power Acquisition Upfront",
	"Crown Gas & Power Renewal No Upfront",
	"Crown Gas & Power Renewal Upfront",
	"D-Energi Acquisition",
	"D-Energi Renewal",
	"Drax Acquisition",
	"Drax Renewal",
	"Dyce Energy Acquisition",
	"Dyce Energy Renewal",
	"Ecotricity Acquisition",
	"Ecotricity Renewal",
	"EDF Acquisition",
	"EDF Renewal",
	"Engie Acquisition No Upfront",
	"Engie Acquisition Upfront",
	"Engie Renewal No Upfront",
	"Engie Renewal Upfront",
	"EonNext Acquisition",
	"EonNext Renewal",
	"Jellyfish Acquisition",
	"Jellyfish Renewal",
	"Npower Acquisition No Upfront",
	"Npower Acquisition Upfront",
	"Npower Renewal No Upfront",
	"Npower Renewal Upfront",
	"Pozitive Energy Acquisition",
	"Pozitive Energy Renewal",
	"Regent Gas Acquisition",
	"Regent Gas Renewal",
	"Scottish Power Acquisition",
	"Scottish Power Renewal",
	"Sefe Acquisition",
	"Sefe Renewal",
	"Shell Energy Acquisition",
	"Shell Energy Renewal",
	"Smartest Energy Acquisition",
	"Smartest Energy Renewal",
	"SSE Acquisition",
	"SSE Renewal",
	"TEM-Energy Acquisition",
	"TEM-Energy Renewal",
	"Totalenergies Acquisition No Upfront",
	"Totalenergies Acquisition Upfront",
	"Totalenergies Renewal No Upfront",
	"Totalenergies Renewal Upfront",
	"United Gas & Power Acquisition",
	"United Gas & Power Renewal",
	"Utilita Acquisition",
	"Utilita Renewal",
	"Valda Energy Acquisition",
	"Valda Energy Renewal",
	"Yorkshire Gas & Power Acquisition",
	"Yorkshire Gas & Power Renewal",
	"Yu Energy Acquisition",
	"Yu Energy Renewal",
}

// lookup is a normalized name -> canonical name index.
var lookup = func() map[string]string {
	m := make(map[string]string, len(ValidSuppliers))
	for _, s := range ValidSuppliers {
		m[normalize(s)] = s
	}
	return m
}()

// legacyAliases maps old-style supplier names to the variants they split
// into, for better suggestions on imports of historical spreadsheets.
var legacyAliases = map[string][]string{
	"british gas":               {"British Gas Acquisition", "British Gas Renewal"},
	"brook green supply":        {"Brook Green Acquisition No Upfront", "Brook Green Acquisition Upfront", "Brook Green Renewal No Upfront", "Brook Green Renewal Upfront"},
	"corona":                    {"Corona Acquisition No Upfront", "Corona Renewal No Upfront"},
	"corona upfront":            {"Corona Acquisition Upfront", "Corona Renewal Upfront"},
	"crown gas & power":         {"Crown Gas & Power Acquisition No Upfront", "Crown Gas & Power Renewal No Upfront"},
	"crown gas & power upfront": {"Crown Gas & Power Acquisition Upfront", "Crown Gas & Power Renewal Upfront"},
	"engie":                     {"Engie Acquisition No Upfront", "Engie Acquisition Upfront", "Engie Renewal No Upfront", "Engie Renewal Upfront"},
	"engie renewal":             {"Engie Renewal No Upfront", "Engie Renewal Upfront"},
	"eonnext":                   {"EonNext Acquisition", "EonNext Renewal"},
	"npower":                    {"Npower Acquisition No Upfront", "Npower Acquisition Upfront", "Npower Renewal No Upfront", "Npower Renewal Upfront"},
	"npower upfront":            {"Npower Acquisition Upfront", "Npower Renewal Upfront"},
	"npower upfront/npower":     {"Npower Acquisition Upfront", "Npower Acquisition No Upfront"},
	"smartest energy":           {"Smartest Energy Acquisition", "Smartest Energy Renewal"},
	"totalenergies":             {"Totalenergies Acquisition No Upfront", "Totalenergies Acquisition Upfront", "Totalenergies Renewal No Upfront", "Totalenergies Renewal Upfront"},
	"total energies":            {"Totalenergies Acquisition No Upfront", "Totalenergies Acquisition Upfront", "Totalenergies Renewal No Upfront", "Totalenergies Renewal Upfront"},
}

const maxSuggestions = 5

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Match returns the canonical supplier name for input, or "" when the name
// is not in the fixed catalogue. Matching is exact after normalization.
func Match(input string) string {
	return lookup[normalize(input)]
}

// IsValid reports whether input names a catalogued supplier.
func IsValid(input string) bool { return Match(input) != "" }

// MatchIn matches input against a dynamic list of supplier names (e.g. the
// suppliers currently in the database) instead of the fixed catalogue.
func MatchIn(input string, names []string) string {
	n := normalize(input)
	for _, name := range names {
		if normalize(name) == n {
			return name
		}
	}
	return ""
}

// Suggest returns up to five likely intended supplier names for an
// unmatched input: legacy aliases first, then bidirectional substring
// matches against the catalogue.
func Suggest(input string) []string {
	n := normalize(input)
	if n == "" {
		return nil
	}
	if aliases, ok := legacyAliases[n]; ok {
		return clip(aliases)
	}
	return clip(substringMatches(n, ValidSuppliers))
}

// SuggestIn suggests from a dynamic supplier-name list.
func SuggestIn(input string, names []string) []string {
	n := normalize(input)
	if n == "" {
		return nil
	}
	return clip(substringMatches(n, names))
}

func substringMatches(normalized string, names []string) []string {
	var out []string
	for _, s := range names {
		sn := normalize(s)
		if strings.Contains(sn, normalized) || strings.Contains(normalized, sn) {
			out = append(out, s)
		}
	}
	return out
}

func clip(s []string) []string {
	if len(s) > maxSuggestions {
		return s[:maxSuggestions]
	}
	return s
}
