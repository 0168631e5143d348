// Package glossary holds the built-in insurance term definitions and the
// key normalization used to look them up from clicked terms.
package glossary

import (
	"regexp"
	"sort"
	"strings"
)

var definitions = map[string]string{
	"copay":              "Copay: A fixed amount you pay for a covered service (e.g., $25 for urgent care). You pay it at the visit.",
	"co-pay":             "Copay: A fixed amount you pay for a covered service (e.g., $25 for urgent care). You pay it at the visit.",
	"deductible":         "Deductible: The amount you pay out of pocket each year before the plan starts paying for most services.",
	"deductibles":        "Deductible: The amount you pay out of pocket each year before the plan starts paying for most services.",
	"coinsurance":        "Coinsurance: Your share of costs after the deductible, usually a percentage (e.g., plan pays 80%, you pay 20%).",
	"out-of-pocket max":  "Out-of-pocket maximum: The most you pay in a year. After you hit it, the plan pays 100% of covered services.",
	"out of pocket max":  "Out-of-pocket maximum: The most you pay in a year. After you hit it, the plan pays 100% of covered services.",
	"out-of-pocket":      "Out-of-pocket costs: What you pay yourself (copays, deductible, coinsurance), not counting your premium.",
	"allowed amount":     "Allowed Amount: The price the plan uses to calculate your share (not always the billed amount).",
	"in-network":         "In-network: Providers contracted with your plan. You pay less when you stay in-network.",
	"preferred provider": "Same idea as in-network, contracted providers with lower costs.",
	"out-of-network":     "Out-of-network: Providers without a contract with your plan. You usually pay much more.",
	"premium":            "Premium: The amount you (or ASU) pay for the insurance plan itself, usually per semester or year.",
	"referral":           "Referral: Approval from ASU Health Services you may need before the plan covers certain outside care.",
	"shc":                "SHC (Student Health Center): ASU Health Services, 451 E University Dr, Tempe. Usually your cheapest first stop for care.",
	"insurance provider": "Insurance provider: The company that runs your plan (for ASU SHIP, UnitedHealthcare StudentResources).",
}

var edgeTrimRe = regexp.MustCompile(`^[^\w]+|[^\w]+$`)

// NormalizeKey lowercases a raw term and trims non-word characters from
// both ends so that clicked display text maps back to a glossary key.
func NormalizeKey(raw string) string {
	return edgeTrimRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "")
}

// Lookup returns the definition for a term, normalizing the key first.
func Lookup(term string) (string, bool) {
	def, ok := definitions[NormalizeKey(term)]
	return def, ok
}

// Terms returns all glossary keys, longest first so that multi-word terms
// win over their substrings when building a highlight pattern. Keys of
// equal length sort alphabetically for a stable order.
func Terms() []string {
	terms := make([]string, 0, len(definitions))
	for k := range definitions {
		terms = append(terms, k)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	return terms
}

// All returns a copy of the full glossary.
func All() map[string]string {
	out := make(map[string]string, len(definitions))
	for k, v := range definitions {
		out[k] = v
	}
	return out
}
