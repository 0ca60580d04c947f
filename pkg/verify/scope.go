package verify

import (
	"fmt"
	"regexp"
	"strings"
)

// unambiguousSignals are terms that are financial in virtually all contexts.
// Each match is worth 2 points.
var unambiguousSignals = []*regexp.Regexp{
	regexp.MustCompile(`\bportfolio\b`),
	regexp.MustCompile(`\bholdings?\b`),
	regexp.MustCompile(`\ballocation\b`),
	regexp.MustCompile(`\bdividends?\b`),
	regexp.MustCompile(`\bbenchmark\b`),
	regexp.MustCompile(`\bmarket\s+data\b`),
	regexp.MustCompile(`\bticker\b`),
	regexp.MustCompile(`\binvest\w*`),
	regexp.MustCompile(`\bshares?\b`),
	regexp.MustCompile(`\betf\b`),
	regexp.MustCompile(`\bnet\s+worth\b`),
}

// ambiguousSignals are terms common in everyday language that only weakly
// indicate financial content. Each match is worth 1 point. Word boundaries
// avoid substring false positives.
var ambiguousSignals = []*regexp.Regexp{
	regexp.MustCompile(`\brisk\b`),
	regexp.MustCompile(`\breturns?\b`),
	regexp.MustCompile(`\borders?\b`),
	regexp.MustCompile(`\btransactions?\b`),
	regexp.MustCompile(`\baccounts?\b`),
	regexp.MustCompile(`\bcurrency\b`),
	regexp.MustCompile(`\bassets?\b`),
	regexp.MustCompile(`\bstocks?\b`),
	regexp.MustCompile(`\bbonds?\b`),
	regexp.MustCompile(`\bfunds?\b`),
	regexp.MustCompile(`\bbalance\b`),
	regexp.MustCompile(`\bperformance\b`),
	regexp.MustCompile(`\bsymbol\b`),
	regexp.MustCompile(`\bpreferences?\b`),
}

// declinedPatterns match phrases indicating the agent correctly declined
// an off-topic request; declining is itself correct behavior.
var declinedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`portfolio assistant`),
	regexp.MustCompile(`can(?:'t| not|not) help with`),
	regexp.MustCompile(`outside (?:my|the) scope`),
	regexp.MustCompile(`only (?:help|assist) with.*(?:portfolio|invest|financ)`),
	regexp.MustCompile(`not (?:able|designed) to`),
	regexp.MustCompile(`(?:unrelated|off.topic)`),
}

// portfolioTools lists every tool that engages with real portfolio data.
// Any of these being called is proof the response is in scope.
var portfolioTools = map[string]bool{
	"portfolio_analysis":     true,
	"transaction_history":    true,
	"market_data":            true,
	"risk_assessment":        true,
	"benchmark_comparison":   true,
	"dividend_analysis":      true,
	"account_summary":        true,
	"create_order":           true,
	"delete_order":           true,
	"get_user_preferences":   true,
	"save_user_preference":   true,
	"delete_user_preference": true,
}

// onTopicThreshold is the minimum weighted keyword score for a response
// with no tool usage to count as on-topic.
const onTopicThreshold = 3

// shortResponseWords is the word count under which responses (greetings,
// acknowledgements) are never flagged.
const shortResponseWords = 20

// CheckScope classifies whether a response stays within financial/portfolio
// scope. Returns (true, "") when on-topic or correctly declined, and
// (false, detail) when the response appears off-topic.
func CheckScope(response string, toolsUsed []string) (bool, string) {
	lower := strings.ToLower(response)

	// Tool usage is proof of engaging with portfolio data.
	for _, tool := range toolsUsed {
		if portfolioTools[tool] {
			return true, ""
		}
	}

	// Declining an off-scope request is correct behavior, not a failure.
	for _, p := range declinedPatterns {
		if p.MatchString(lower) {
			return true, ""
		}
	}

	// Weighted keyword scoring. A single-tier count produced false positives
	// on generic words like "risk"; the two-tier weighting with a threshold
	// keeps both false accepts and false rejects low.
	score := 0
	for _, p := range unambiguousSignals {
		if p.MatchString(lower) {
			score += 2
		}
	}
	for _, p := range ambiguousSignals {
		if p.MatchString(lower) {
			score++
		}
	}
	if score >= onTopicThreshold {
		return true, ""
	}

	if len(strings.Fields(response)) < shortResponseWords {
		return true, ""
	}

	return false, fmt.Sprintf(
		"Response may be off-topic: no portfolio tools were called and the "+
			"content lacks financial/portfolio keywords (signal score %d). The "+
			"agent should either use tools to answer portfolio questions or "+
			"decline off-topic requests.", score)
}
