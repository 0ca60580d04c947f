package verify

import (
	"fmt"
	"sort"
	"strings"
)

// Flag thresholds for suspected hallucination. Both must hold: the dual
// threshold avoids flagging a single rounding discrepancy while still
// catching wholesale fabrication.
const (
	unmatchedRatioThreshold = 0.5
	unmatchedCountThreshold = 2
)

// CheckNumericConsistency cross-references significant numbers in the
// response against numbers in the raw tool outputs to flag fabricated
// values. Returns (true, "") when consistent or there is nothing to
// cross-reference, and (false, detail) when hallucination is suspected.
func CheckNumericConsistency(response string, toolOutputs []string) (bool, string) {
	if len(toolOutputs) == 0 {
		return true, ""
	}

	responseNumbers := ExtractNumbers(response)
	if len(responseNumbers) == 0 {
		return true, ""
	}

	toolNumbers := ExtractNumbers(strings.Join(toolOutputs, " "))
	if len(toolNumbers) == 0 {
		return true, ""
	}

	var unmatched []string
	for rn := range responseNumbers {
		if !matchesAny(rn, toolNumbers) {
			unmatched = append(unmatched, rn)
		}
	}
	if len(unmatched) == 0 {
		return true, ""
	}
	sort.Strings(unmatched)

	ratio := float64(len(unmatched)) / float64(len(responseNumbers))
	if ratio > unmatchedRatioThreshold && len(unmatched) >= unmatchedCountThreshold {
		sample := unmatched
		if len(sample) > 5 {
			sample = sample[:5]
		}
		return false, fmt.Sprintf(
			"Potential hallucination: %d/%d numbers in response not found in "+
				"tool outputs. Unmatched: %s",
			len(unmatched), len(responseNumbers), strings.Join(sample, ", "))
	}

	return true, ""
}

// matchesAny reports whether a response number matches any tool number,
// allowing for formatting differences (52,450.00 vs 52450). The substring
// rule is intentionally loose: it trades occasional false negatives for
// not flagging formatting noise.
func matchesAny(rn string, toolNumbers map[string]bool) bool {
	rnBase := stripTrailingZeros(rn)
	for tn := range toolNumbers {
		if rnBase == stripTrailingZeros(tn) || strings.Contains(tn, rn) || strings.Contains(rn, tn) {
			return true
		}
	}
	return false
}

// stripTrailingZeros normalizes "52450.00" and "52450." to "52450".
func stripTrailingZeros(n string) string {
	if !strings.Contains(n, ".") {
		return n
	}
	return strings.TrimRight(strings.TrimRight(n, "0"), ".")
}
