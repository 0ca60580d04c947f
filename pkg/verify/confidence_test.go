package verify

import (
	"strings"
	"testing"
)

func TestScoreConfidenceDataBacked(t *testing.T) {
	score, detail := ScoreConfidence(
		"Your portfolio is worth $52,450.00 USD with a return of 12.34%.",
		[]string{"portfolio_analysis", "benchmark_comparison"},
		[]string{"Portfolio Value: $52,450.00", "Benchmark return: 10.20%"},
	)
	if score < 0.8 {
		t.Errorf("score = %.2f, want >= 0.8 (%s)", score, detail)
	}
	if !strings.Contains(detail, "confidence=") {
		t.Errorf("detail = %q, want confidence= prefix", detail)
	}
	if !strings.Contains(detail, "+0.30 data tools called (2)") {
		t.Errorf("detail = %q, want data tool factor", detail)
	}
}

func TestScoreConfidenceExternalFailure(t *testing.T) {
	tests := []struct {
		name     string
		response string
		tools    []string
		outputs  []string
	}{
		{
			"news feed down",
			"Here is the latest market news for today.",
			[]string{"market_news"},
			[]string{"Error: rate limit exceeded"},
		},
		{
			"congress feed down",
			"I could not retrieve congressional trading data right now.",
			[]string{"congressional_trades"},
			[]string{"Error: congressional trades unavailable: rate limit exceeded"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, detail := ScoreConfidence(tt.response, tt.tools, tt.outputs)
			if score >= LowConfidenceThreshold {
				t.Errorf("score = %.2f, want below threshold %.2f (%s)", score, LowConfidenceThreshold, detail)
			}
			if !strings.Contains(detail, "external tool failure") {
				t.Errorf("detail = %q, want external failure factor", detail)
			}
		})
	}
}

func TestScoreConfidenceFloor(t *testing.T) {
	tests := []struct {
		name     string
		response string
		tools    []string
		outputs  []string
	}{
		{"plain greeting", "Hi! How can I help you today?", nil, nil},
		{
			"heavy hedging without external tools",
			"It might be roughly this, but I'm not sure; it depends and is generally unclear, possibly an estimate at best.",
			nil,
			nil,
		},
		{
			"backend error without external tools",
			"I could not retrieve your data.",
			[]string{"portfolio_analysis"},
			[]string{"Error: upstream unavailable"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, detail := ScoreConfidence(tt.response, tt.tools, tt.outputs)
			if score < LowConfidenceThreshold {
				t.Errorf("score = %.2f, want >= %.2f (%s)", score, LowConfidenceThreshold, detail)
			}
		})
	}
}

func TestScoreConfidenceClamped(t *testing.T) {
	inputs := []struct {
		response string
		tools    []string
		outputs  []string
	}{
		{"", nil, nil},
		{"$10,000.00 and 12.50% and 99999", []string{"portfolio_analysis", "market_data", "account_summary", "risk_assessment"}, []string{"data", "data", "data"}},
		{"might possibly be unclear, not sure, it depends", []string{"market_news"}, []string{"Error: timeout talking to feed"}},
	}
	for _, in := range inputs {
		score, _ := ScoreConfidence(in.response, in.tools, in.outputs)
		if score < 0 || score > 1 {
			t.Errorf("score %.2f out of [0,1] for %q", score, in.response)
		}
	}
}

func TestScoreConfidenceMonotonicInDataTools(t *testing.T) {
	response := "Your balance is $10,000.00, up 5.25% this year."
	outputs := []string{"Balance: 10000.00"}

	tools := []string{}
	prev, _ := ScoreConfidence(response, tools, outputs)
	for _, tool := range []string{"portfolio_analysis", "market_data", "account_summary"} {
		tools = append(tools, tool)
		score, detail := ScoreConfidence(response, tools, outputs)
		if score < prev {
			t.Errorf("adding %s decreased score %.2f -> %.2f (%s)", tool, prev, score, detail)
		}
		prev = score
	}
}

func TestScoreConfidenceHedgingAlone(t *testing.T) {
	// The hedging penalty is informational: capped so it can never cross
	// the low-confidence threshold by itself.
	score, _ := ScoreConfidence(
		"It might be approximately right, but I'm not sure; it generally depends and is typically unclear, possibly a rough estimate.",
		[]string{"portfolio_analysis"},
		[]string{"Holdings: VTI 10 shares"},
	)
	if score < LowConfidenceThreshold {
		t.Errorf("score = %.2f, hedging alone must not cross the threshold", score)
	}
}
