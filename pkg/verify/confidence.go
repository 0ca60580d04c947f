package verify

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// LowConfidenceThreshold is the score cutoff below which the caveat is
// appended to the response.
const LowConfidenceThreshold = 0.4

// LowConfidenceCaveat is the fixed caveat appended to low-confidence
// responses.
const LowConfidenceCaveat = "\n\n> **Note:** This response has lower confidence " +
	"because it is based on limited or no tool data. Please verify the " +
	"information with your portfolio directly."

// dataTools return authoritative data from the Ghostfolio backend.
var dataTools = map[string]bool{
	"portfolio_analysis":   true,
	"transaction_history":  true,
	"market_data":          true,
	"risk_assessment":      true,
	"benchmark_comparison": true,
	"dividend_analysis":    true,
	"account_summary":      true,
}

// externalTools source data from third-party APIs outside the portfolio
// backend and are treated as less reliable.
var externalTools = map[string]bool{
	"market_news":          true,
	"congressional_trades": true,
}

// externalFailureSignals mark an external tool output as degraded.
var externalFailureSignals = []string{
	"rate limit",
	"timed out",
	"timeout",
	"api key",
	"error",
}

// hedgingPatterns match language that signals uncertainty.
var hedgingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bapproximately\b`),
	regexp.MustCompile(`\brough(?:ly)?\b`),
	regexp.MustCompile(`\bestimate[ds]?\b`),
	regexp.MustCompile(`\bmight\b`),
	regexp.MustCompile(`\bcould be\b`),
	regexp.MustCompile(`\bpossibly\b`),
	regexp.MustCompile(`\bunclear\b`),
	regexp.MustCompile(`\bnot sure\b`),
	regexp.MustCompile(`\bi(?:'m| am) not certain\b`),
	regexp.MustCompile(`\bgenerally\b`),
	regexp.MustCompile(`\btypically\b`),
	regexp.MustCompile(`\bit depends\b`),
}

// concreteDataPatterns match concrete numeric content in a response.
var concreteDataPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$[\d,]+\.?\d*`),        // dollar amounts
	regexp.MustCompile(`\d+\.\d+%`),             // percentages with decimals
	regexp.MustCompile(`\b\d{2,}(?:,\d{3})*\b`), // large numbers
}

// ScoreConfidence scores an agent response from 0.0 to 1.0 and returns a
// detail string listing the contributing factors with signed deltas.
//
// Only a detected external-tool failure can push the score below
// LowConfidenceThreshold: the caveat is specifically about third-party data
// reliability, so it must never fire for conversational replies,
// Ghostfolio-backed answers, or merely hedged prose. Absent such a failure
// the score is floored at the threshold.
func ScoreConfidence(response string, toolsUsed, toolOutputs []string) (float64, string) {
	lower := strings.ToLower(response)

	score := 0.5
	var factors []string

	// Authoritative data tools used (strong signal).
	dataCount := 0
	seen := make(map[string]bool)
	for _, tool := range toolsUsed {
		if dataTools[tool] && !seen[tool] {
			seen[tool] = true
			dataCount++
		}
	}
	if dataCount > 0 {
		bonus := math.Min(float64(dataCount)*0.15, 0.3)
		score += bonus
		factors = append(factors, fmt.Sprintf("+%.2f data tools called (%d)", bonus, dataCount))
	}

	// Tool outputs present and non-error (data was actually returned).
	if anySuccessfulOutput(toolOutputs) {
		score += 0.1
		factors = append(factors, "+0.10 tool outputs received")
	}

	// Concrete numeric data in the response.
	concrete := 0
	for _, p := range concreteDataPatterns {
		if p.MatchString(response) {
			concrete++
		}
	}
	if concrete >= 2 {
		score += 0.1
		factors = append(factors, "+0.10 concrete numeric data present")
	}

	// External tool degradation: the only signal allowed to drive the score
	// below the low-confidence threshold.
	externalFailure := false
	if usesExternalTool(toolsUsed) && anyDegradedOutput(toolOutputs) {
		externalFailure = true
		score -= 0.3
		factors = append(factors, "-0.30 external tool failure detected")
	}

	// Hedging language: informational penalty, capped so it cannot cross
	// the threshold on its own.
	hedging := 0
	for _, p := range hedgingPatterns {
		if p.MatchString(lower) {
			hedging++
		}
	}
	if hedging >= 2 {
		penalty := math.Min(float64(hedging)*0.05, 0.15)
		score -= penalty
		factors = append(factors, fmt.Sprintf("-%.2f hedging language (%d instances)", penalty, hedging))
	}

	score = math.Round(math.Max(0, math.Min(1, score))*100) / 100

	if !externalFailure && score < LowConfidenceThreshold {
		score = LowConfidenceThreshold
		factors = append(factors, fmt.Sprintf("floor %.2f (no external tool failure)", LowConfidenceThreshold))
	}

	detail := fmt.Sprintf("confidence=%.2f", score)
	if len(factors) > 0 {
		detail += " (" + strings.Join(factors, ", ") + ")"
	}
	return score, detail
}

// anySuccessfulOutput reports whether any tool output is non-empty and does
// not look like an error (first 50 characters).
func anySuccessfulOutput(toolOutputs []string) bool {
	for _, out := range toolOutputs {
		if out == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(head(out, 50)), "error") {
			return true
		}
	}
	return false
}

// anyDegradedOutput reports whether any tool output carries a failure signal
// (rate limit, timeout, missing API key, explicit error text).
func anyDegradedOutput(toolOutputs []string) bool {
	for _, out := range toolOutputs {
		lower := strings.ToLower(out)
		for _, signal := range externalFailureSignals {
			if strings.Contains(lower, signal) {
				return true
			}
		}
	}
	return false
}

func usesExternalTool(toolsUsed []string) bool {
	for _, tool := range toolsUsed {
		if externalTools[tool] {
			return true
		}
	}
	return false
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
