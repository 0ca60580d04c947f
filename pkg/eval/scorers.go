package eval

import (
	"fmt"
	"regexp"
	"strings"
)

// CheckOutcome is the result of one check against one case.
type CheckOutcome struct {
	Name   string `json:"check"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

// CaseResult is the scored outcome of one eval case.
type CaseResult struct {
	CaseID      string         `json:"case_id"`
	Category    string         `json:"category"`
	Source      string         `json:"source"`
	Description string         `json:"description,omitempty"`
	Passed      bool           `json:"passed"`
	Checks      []CheckOutcome `json:"checks"`
	LatencyMS   float64        `json:"latency_ms"`
	ToolsCalled []string       `json:"tools_called,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Evaluate scores a transcript against a case's checks. Cases with no
// explicit check list (golden-set style) get an implicit tool expectation:
// expected_tools present means at least one must have been called; absent
// means no tools should have been called. The llm_judge check is skipped
// here; the runner dispatches it separately since it needs a network call.
func Evaluate(c Case, t Transcript) CaseResult {
	result := CaseResult{
		CaseID:      c.ID,
		Category:    c.Category,
		Source:      c.Source,
		Description: c.Description,
		ToolsCalled: t.ToolsCalled,
		Error:       t.Err,
	}

	for _, name := range c.Checks {
		if name == CheckLLMJudge {
			continue
		}
		fn, ok := checkTable[name]
		if !ok || fn == nil {
			result.Checks = append(result.Checks, CheckOutcome{
				Name: name, Passed: false, Reason: fmt.Sprintf("Unknown check: %s", name),
			})
			continue
		}
		passed, reason := runCheck(fn, t)
		result.Checks = append(result.Checks, CheckOutcome{Name: name, Passed: passed, Reason: reason})
	}

	if len(c.Checks) == 0 {
		result.Checks = append(result.Checks, implicitToolCheck(c, t))
	}
	if len(c.ExpectedPatterns) > 0 {
		passed, reason := matchExpectedPatterns(t.Output, c.ExpectedPatterns)
		result.Checks = append(result.Checks, CheckOutcome{Name: "expected_patterns", Passed: passed, Reason: reason})
	}
	if len(c.MustContain) > 0 {
		passed, reason := mustContainAll(t.Output, c.MustContain)
		result.Checks = append(result.Checks, CheckOutcome{Name: "must_contain", Passed: passed, Reason: reason})
	}
	if len(c.MustNotContain) > 0 {
		passed, reason := mustNotContainAny(t.Output, c.MustNotContain)
		result.Checks = append(result.Checks, CheckOutcome{Name: "must_not_contain", Passed: passed, Reason: reason})
	}

	result.Passed = true
	for _, check := range result.Checks {
		if !check.Passed {
			result.Passed = false
			break
		}
	}
	return result
}

// runCheck shields the scorer from a panicking check implementation.
func runCheck(fn CheckFunc, t Transcript) (passed bool, reason string) {
	defer func() {
		if r := recover(); r != nil {
			passed = false
			reason = fmt.Sprintf("Check error: %v", r)
		}
	}()
	return fn(t)
}

func implicitToolCheck(c Case, t Transcript) CheckOutcome {
	if len(c.ExpectedTools) > 0 {
		matched := intersect(t.ToolsCalled, c.ExpectedTools)
		if len(matched) > 0 {
			return CheckOutcome{Name: "expected_tools", Passed: true, Reason: fmt.Sprintf("Called: %v", matched)}
		}
		return CheckOutcome{
			Name: "expected_tools", Passed: false,
			Reason: fmt.Sprintf("Expected one of %v, got %v", c.ExpectedTools, t.ToolsCalled),
		}
	}
	if len(t.ToolsCalled) > 0 {
		return CheckOutcome{Name: "no_tools", Passed: false, Reason: fmt.Sprintf("Expected no tools, got %v", t.ToolsCalled)}
	}
	return CheckOutcome{Name: "no_tools", Passed: true, Reason: "No tools called (as expected)"}
}

func matchExpectedPatterns(output string, patterns []string) (bool, string) {
	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return false, fmt.Sprintf("Bad pattern %q: %v", pattern, err)
		}
		if re.MatchString(output) {
			return true, fmt.Sprintf("Pattern %q matched.", pattern)
		}
	}
	return false, fmt.Sprintf("None of the expected patterns %v found in response.", patterns)
}

func mustContainAll(output string, required []string) (bool, string) {
	outputLower := strings.ToLower(output)
	var missing []string
	for _, keyword := range required {
		if !strings.Contains(outputLower, strings.ToLower(keyword)) {
			missing = append(missing, keyword)
		}
	}
	if len(missing) > 0 {
		return false, fmt.Sprintf("Missing required keywords: %v", missing)
	}
	return true, fmt.Sprintf("All %d required keywords present.", len(required))
}

func mustNotContainAny(output string, banned []string) (bool, string) {
	outputLower := strings.ToLower(output)
	var found []string
	for _, phrase := range banned {
		if strings.Contains(outputLower, strings.ToLower(phrase)) {
			found = append(found, phrase)
		}
	}
	if len(found) > 0 {
		return false, fmt.Sprintf("Banned phrases present: %v", found)
	}
	return true, "No banned phrases present."
}
