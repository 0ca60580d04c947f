package verify

import (
	"strings"
	"testing"
)

func TestCheckScope(t *testing.T) {
	tests := []struct {
		name     string
		response string
		tools    []string
		want     bool
	}{
		{
			"portfolio tool used",
			"Here is some text that is otherwise completely unrelated to anything financial at all, going on for quite a while now.",
			[]string{"portfolio_analysis"},
			true,
		},
		{
			"correct decline",
			"I'm a portfolio assistant and can only help with questions about your investments, so I'm afraid that topic is outside my scope here.",
			nil,
			true,
		},
		{
			"unambiguous keywords reach threshold",
			"Diversifying your portfolio across several asset classes tends to reduce concentration and improves the resilience of your holdings over longer horizons of time.",
			nil,
			true,
		},
		{
			"short greeting",
			"Hi! How can I help you today?",
			nil,
			true,
		},
		{
			"off topic long response",
			"The capital of France is Paris, which has been the center of the country for many centuries and today holds a population of approximately 2.1 million residents inside the city itself.",
			nil,
			false,
		},
		{
			"single ambiguous keyword is not enough",
			"Taking a risk on a new hobby can be rewarding, and many people find that learning an instrument later in life brings them a great deal of joy and connection.",
			nil,
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, detail := CheckScope(tt.response, tt.tools)
			if got != tt.want {
				t.Errorf("CheckScope() = %v, want %v (detail: %s)", got, tt.want, detail)
			}
			if !got && detail == "" {
				t.Error("failed check should carry a detail")
			}
		})
	}
}

func TestCheckScopeWordBoundaries(t *testing.T) {
	// "therapist" must not match via embedded substrings; the response is
	// long enough to bypass the short-response exemption.
	response := strings.Repeat("My therapist recommended journaling and daily walks through the park. ", 4)
	got, _ := CheckScope(response, nil)
	if got {
		t.Error("substring matches inside unrelated words should not count as signals")
	}
}

func TestCheckScopeOffTopicDetail(t *testing.T) {
	response := strings.Repeat("Here is a long discussion about gardening, soil, and the weather this season. ", 3)
	got, detail := CheckScope(response, nil)
	if got {
		t.Fatal("expected off-topic")
	}
	if !strings.Contains(detail, "off-topic") {
		t.Errorf("detail = %q, want mention of off-topic", detail)
	}
}
