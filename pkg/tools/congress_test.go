package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeCongress implements CongressSource with canned trades.
type fakeCongress struct {
	trades []CongressTrade
	err    error
}

func (f *fakeCongress) Trades(context.Context, string, string, string) ([]CongressTrade, error) {
	return f.trades, f.err
}

func isoDaysAgo(days int) string {
	return time.Now().AddDate(0, 0, -days).Format("2006-01-02")
}

func TestCongressionalTradesFiltersAndRenders(t *testing.T) {
	source := &fakeCongress{trades: []CongressTrade{
		{Representative: "Jane Doe", Party: "D", Chamber: "senate", Ticker: "NVDA",
			Transaction: "Purchase", Amount: "$15,001 - $50,000", TransactionDate: isoDaysAgo(5)},
		{Representative: "John Roe", Party: "R", Chamber: "representatives", Ticker: "AAPL",
			Transaction: "Sale", Amount: "$1,001 - $15,000", TransactionDate: isoDaysAgo(30)},
		{Representative: "Old Trade", Party: "I", Chamber: "senate", Ticker: "MSFT",
			Transaction: "Purchase", Amount: "$1,001 - $15,000", TransactionDate: isoDaysAgo(200)},
	}}
	tool := &congressionalTradesTool{congress: source}

	out, err := tool.Execute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{"Jane Doe", "John Roe", "NVDA", "self-reported"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Old Trade") {
		t.Errorf("output includes trade outside the 90-day window:\n%s", out)
	}
	// Most recent trade comes first.
	if strings.Index(out, "Jane Doe") > strings.Index(out, "John Roe") {
		t.Error("trades not sorted most recent first")
	}
}

func TestCongressionalTradesCapsRows(t *testing.T) {
	source := &fakeCongress{}
	for i := 0; i < maxCongressTrades+5; i++ {
		source.trades = append(source.trades, CongressTrade{
			Representative:  fmt.Sprintf("Member %d", i),
			Ticker:          "VTI",
			Transaction:     "Purchase",
			TransactionDate: isoDaysAgo(i % 30),
		})
	}
	tool := &congressionalTradesTool{congress: source}

	out, err := tool.Execute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	rows := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "| Member") {
			rows++
		}
	}
	if rows != maxCongressTrades {
		t.Errorf("rendered %d rows, want %d", rows, maxCongressTrades)
	}
}

func TestCongressionalTradesRejectsBadChamber(t *testing.T) {
	tool := &congressionalTradesTool{congress: &fakeCongress{}}
	if _, err := tool.Execute(context.Background(), map[string]any{"chamber": "parliament"}); err == nil {
		t.Error("Execute() with unknown chamber should fail")
	}
}

func TestCongressionalTradesEmptyResult(t *testing.T) {
	tool := &congressionalTradesTool{congress: &fakeCongress{}}

	out, err := tool.Execute(context.Background(), map[string]any{"query": "Nobody", "ticker": "nvda"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "No congressional trades found") {
		t.Errorf("output = %q, want empty-result message", out)
	}
	if !strings.Contains(out, `"Nobody"`) || !strings.Contains(out, `"NVDA"`) {
		t.Errorf("output = %q, want applied filters named", out)
	}
}

func TestCongressionalTradesReportsFailureAsOutput(t *testing.T) {
	tool := &congressionalTradesTool{congress: &fakeCongress{err: fmt.Errorf("congress feed rate limit exceeded")}}

	out, err := tool.Execute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Execute() error = %v, feed failures should be tool output", err)
	}
	if !strings.Contains(out, "Error:") || !strings.Contains(out, "rate limit") {
		t.Errorf("output = %q, want degraded-feed message", out)
	}
}

func TestCongressClientSelectsEndpoint(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]map[string]string{
			{"Representative": "Jane Doe", "Ticker": "NVDA", "Date": "2026-08-01", "Amount": "$1,001 - $15,000"},
		})
	}))
	defer server.Close()

	client := NewCongressClient(server.URL, "quiver-key")

	tests := []struct {
		name       string
		politician string
		chamber    string
		ticker     string
		wantPath   string
		wantQuery  string
	}{
		{"default live feed", "", "", "", "/live/congresstrading", ""},
		{"politician filter", "Pelosi", "", "", "/live/congresstrading", "representative=Pelosi"},
		{"house feed", "", "house", "", "/live/housetrading", ""},
		{"senate feed", "", "senate", "", "/live/senatetrading", ""},
		{"ticker wins", "Pelosi", "senate", "nvda", "/historical/congresstrading/NVDA", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trades, err := client.Trades(context.Background(), tt.politician, tt.chamber, tt.ticker)
			if err != nil {
				t.Fatalf("Trades() error = %v", err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			if gotQuery != tt.wantQuery {
				t.Errorf("query = %q, want %q", gotQuery, tt.wantQuery)
			}
			if gotAuth != "Bearer quiver-key" {
				t.Errorf("auth header = %q", gotAuth)
			}
			// Historical-endpoint field names map onto the canonical struct.
			if len(trades) != 1 || trades[0].TransactionDate != "2026-08-01" || trades[0].Amount != "$1,001 - $15,000" {
				t.Errorf("trades = %+v", trades)
			}
		})
	}
}

func TestCongressClientReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewCongressClient(server.URL, "quiver-key")
	_, err := client.Trades(context.Background(), "", "", "")
	if err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Errorf("Trades() error = %v, want rate limit error", err)
	}
}
