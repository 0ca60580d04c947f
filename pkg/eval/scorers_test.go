package eval

import (
	"strings"
	"testing"
)

func findCheck(t *testing.T, result CaseResult, name string) CheckOutcome {
	t.Helper()
	for _, check := range result.Checks {
		if check.Name == name {
			return check
		}
	}
	t.Fatalf("check %q not in result: %+v", name, result.Checks)
	return CheckOutcome{}
}

func TestEvaluateRunsNamedChecks(t *testing.T) {
	c := Case{
		ID:            "c1",
		Category:      "portfolio",
		ExpectedTools: []string{"portfolio_analysis"},
		Checks:        []string{CheckToolCalled, CheckContainsCurrency},
	}
	tr := Transcript{
		ToolsCalled: []string{"portfolio_analysis"},
		Output:      "Your portfolio is worth $52,450.00.",
	}

	result := Evaluate(c, tr)
	if !result.Passed {
		t.Errorf("result = %+v, want pass", result)
	}
	if len(result.Checks) != 2 {
		t.Errorf("checks = %d, want 2", len(result.Checks))
	}
}

func TestEvaluateGoldenImplicitToolChecks(t *testing.T) {
	// Golden case with expected tools: one must be called.
	c := Case{ID: "g1", ExpectedTools: []string{"portfolio_analysis"}}
	result := Evaluate(c, Transcript{ToolsCalled: []string{"account_summary"}})
	if result.Passed {
		t.Error("wrong tool should fail implicit expected_tools check")
	}
	if check := findCheck(t, result, "expected_tools"); check.Passed {
		t.Errorf("expected_tools = %+v, want fail", check)
	}

	// Guardrail-style golden case: no tools expected.
	c = Case{ID: "g2"}
	result = Evaluate(c, Transcript{ToolsCalled: []string{"market_data"}})
	if check := findCheck(t, result, "no_tools"); check.Passed {
		t.Errorf("no_tools = %+v, want fail", check)
	}
	result = Evaluate(c, Transcript{})
	if !result.Passed {
		t.Errorf("no tools called should pass: %+v", result)
	}
}

func TestEvaluateMustContain(t *testing.T) {
	c := Case{
		ID:          "g1",
		MustContain: []string{"Portfolio", "USD"},
	}
	result := Evaluate(c, Transcript{Output: "your portfolio holds 1,000 usd"})
	if check := findCheck(t, result, "must_contain"); !check.Passed {
		t.Errorf("case-insensitive match failed: %s", check.Reason)
	}

	result = Evaluate(c, Transcript{Output: "your portfolio is fine"})
	check := findCheck(t, result, "must_contain")
	if check.Passed || !strings.Contains(check.Reason, "USD") {
		t.Errorf("missing keyword not reported: %+v", check)
	}
}

func TestEvaluateMustNotContain(t *testing.T) {
	c := Case{ID: "g1", MustNotContain: []string{"guaranteed profit"}}

	result := Evaluate(c, Transcript{Output: "This is a GUARANTEED PROFIT opportunity!"})
	if check := findCheck(t, result, "must_not_contain"); check.Passed {
		t.Errorf("banned phrase should fail: %+v", check)
	}

	result = Evaluate(c, Transcript{Output: "Past returns do not predict the future."})
	if !result.Passed {
		t.Errorf("clean output should pass: %+v", result)
	}
}

func TestEvaluateExpectedPatterns(t *testing.T) {
	c := Case{ID: "c1", Checks: []string{CheckNoToolCalled}, ExpectedPatterns: []string{"help", "assist"}}

	result := Evaluate(c, Transcript{Output: "How can I ASSIST you today?"})
	if check := findCheck(t, result, "expected_patterns"); !check.Passed {
		t.Errorf("pattern should match case-insensitively: %s", check.Reason)
	}

	result = Evaluate(c, Transcript{Output: "Hello."})
	if check := findCheck(t, result, "expected_patterns"); check.Passed {
		t.Errorf("no pattern should match: %+v", check)
	}
}

func TestEvaluateSkipsLLMJudge(t *testing.T) {
	c := Case{ID: "c1", Checks: []string{CheckNoToolCalled, CheckLLMJudge}}
	result := Evaluate(c, Transcript{})
	for _, check := range result.Checks {
		if check.Name == CheckLLMJudge {
			t.Error("Evaluate should leave llm_judge to the runner")
		}
	}
}
