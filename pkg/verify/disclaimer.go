package verify

import "regexp"

// disclaimerPatterns match accepted disclaimer phrasings, case-insensitive.
var disclaimerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)not financial advice`),
	regexp.MustCompile(`(?i)not a recommendation`),
	regexp.MustCompile(`(?i)informational purposes`),
	regexp.MustCompile(`(?i)consult.*(?:financial|professional|advisor)`),
	regexp.MustCompile(`(?i)does not constitute.*advice`),
	regexp.MustCompile(`(?i)for informational`),
	regexp.MustCompile(`(?i)not intended as.*advice`),
	regexp.MustCompile(`(?i)disclaimer`),
}

// financialAnalysisTools are the tools whose output constitutes financial
// analysis and therefore requires a disclaimer. Deliberately narrower than
// portfolioTools: pure data retrieval (transactions, market lookup) is not
// advice.
var financialAnalysisTools = map[string]bool{
	"portfolio_analysis":   true,
	"benchmark_comparison": true,
	"risk_assessment":      true,
	"dividend_analysis":    true,
}

// HasDisclaimer reports whether text contains any accepted disclaimer
// phrasing. Shared with the offline eval scorers so both stay consistent.
func HasDisclaimer(text string) bool {
	for _, p := range disclaimerPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// CheckDisclaimer verifies that a response produced with financial analysis
// tools carries a disclaimer. Returns (true, "") when a disclaimer is
// present or not required, and (false, suggestion) when one is missing.
func CheckDisclaimer(response string, toolsUsed []string) (bool, string) {
	required := false
	for _, tool := range toolsUsed {
		if financialAnalysisTools[tool] {
			required = true
			break
		}
	}
	if !required {
		return true, ""
	}
	if HasDisclaimer(response) {
		return true, ""
	}

	return false, "Response uses financial analysis tools but lacks a disclaimer. " +
		"Consider adding: 'This is for informational purposes only and does not " +
		"constitute financial advice.'"
}
