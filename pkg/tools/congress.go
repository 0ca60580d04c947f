package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// DefaultCongressBaseURL is the QuiverQuant API root.
const DefaultCongressBaseURL = "https://api.quiverquant.com/beta"

const (
	maxCongressTrades   = 20
	defaultTradeWindow  = 90
	congressFetchWindow = 30 * time.Second
	maxCongressBytes    = 4 << 20
)

// CongressTrade is one disclosed stock trade by a member of Congress.
type CongressTrade struct {
	Representative  string
	Party           string
	Chamber         string
	Ticker          string
	Transaction     string
	Amount          string
	TransactionDate string
	ReportDate      string
}

// CongressClient fetches disclosed trades from the QuiverQuant API.
// Implements CongressSource.
type CongressClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewCongressClient creates a client for the given API root
// (DefaultCongressBaseURL when empty).
func NewCongressClient(baseURL, apiKey string) *CongressClient {
	if baseURL == "" {
		baseURL = DefaultCongressBaseURL
	}
	return &CongressClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: congressFetchWindow},
	}
}

// quiverTrade mirrors the API payload. Field names vary per endpoint:
// historical rows carry Date/Amount where live rows carry
// TransactionDate/Range.
type quiverTrade struct {
	Representative  string `json:"Representative"`
	Party           string `json:"Party"`
	House           string `json:"House"`
	Ticker          string `json:"Ticker"`
	Transaction     string `json:"Transaction"`
	Range           string `json:"Range"`
	Amount          string `json:"Amount"`
	TransactionDate string `json:"TransactionDate"`
	Date            string `json:"Date"`
	ReportDate      string `json:"ReportDate"`
}

// Trades fetches recent disclosed trades, narrowed server-side where the API
// allows: a ticker selects the historical per-symbol endpoint, otherwise the
// chamber picks the live feed and the politician name becomes a query filter.
func (c *CongressClient) Trades(ctx context.Context, politician, chamber, ticker string) ([]CongressTrade, error) {
	endpoint := c.baseURL + "/live/congresstrading"
	switch {
	case ticker != "":
		endpoint = c.baseURL + "/historical/congresstrading/" + url.PathEscape(strings.ToUpper(ticker))
	case strings.EqualFold(chamber, "house"):
		endpoint = c.baseURL + "/live/housetrading"
	case strings.EqualFold(chamber, "senate"):
		endpoint = c.baseURL + "/live/senatetrading"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build congress request: %w", err)
	}
	if politician != "" && ticker == "" {
		q := req.URL.Query()
		q.Set("representative", politician)
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch congress trades: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("congress feed rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("congress feed returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCongressBytes))
	if err != nil {
		return nil, fmt.Errorf("read congress feed: %w", err)
	}

	var raw []quiverTrade
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse congress feed: %w", err)
	}

	trades := make([]CongressTrade, 0, len(raw))
	for _, r := range raw {
		trades = append(trades, CongressTrade{
			Representative:  r.Representative,
			Party:           r.Party,
			Chamber:         r.House,
			Ticker:          r.Ticker,
			Transaction:     r.Transaction,
			Amount:          firstNonEmpty(r.Range, r.Amount),
			TransactionDate: firstNonEmpty(r.TransactionDate, r.Date),
			ReportDate:      r.ReportDate,
		})
	}
	return trades, nil
}

// congressionalTradesTool lists recent disclosed trades by members of
// Congress. Feed failures are reported as tool output rather than errors so
// the agent can still answer, at reduced confidence.
type congressionalTradesTool struct {
	congress CongressSource
}

func (t *congressionalTradesTool) Name() string { return "congressional_trades" }

func (t *congressionalTradesTool) Description() string {
	return "Fetch recent stock trades disclosed by members of the U.S. Congress, optionally filtered by politician name, chamber, or ticker."
}

func (t *congressionalTradesTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"query":   stringProp("Politician name to filter by, e.g. Pelosi (optional)"),
		"chamber": stringProp("Chamber filter: senate or house (optional)"),
		"ticker":  stringProp("Ticker symbol to see which politicians traded it, e.g. NVDA (optional)"),
		"days":    numberProp("How many days back to look (default 90)"),
	})
}

func (t *congressionalTradesTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	politician := strings.TrimSpace(stringArg(args, "query", ""))
	chamber := strings.ToLower(strings.TrimSpace(stringArg(args, "chamber", "")))
	ticker := strings.ToUpper(strings.TrimSpace(stringArg(args, "ticker", "")))
	days := int(floatArg(args, "days", defaultTradeWindow))
	if days <= 0 {
		days = defaultTradeWindow
	}
	if chamber != "" && chamber != "senate" && chamber != "house" {
		return "", fmt.Errorf("chamber must be senate or house")
	}

	trades, err := t.congress.Trades(ctx, politician, chamber, ticker)
	if err != nil {
		return fmt.Sprintf("Error: congressional trades unavailable: %v", err), nil
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	var recent []CongressTrade
	for _, trade := range trades {
		if when, ok := tradeDate(trade.TransactionDate); ok && when.Before(cutoff) {
			continue
		}
		recent = append(recent, trade)
	}
	if len(recent) == 0 {
		return fmt.Sprintf("No congressional trades found%s in the last %d days.",
			tradeFilterDesc(politician, chamber, ticker), days), nil
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].TransactionDate > recent[j].TransactionDate
	})
	if len(recent) > maxCongressTrades {
		recent = recent[:maxCongressTrades]
	}

	var b strings.Builder
	b.WriteString("Congressional stock trades:\n\n")
	b.WriteString("| Politician | Party | Chamber | Ticker | Transaction | Amount | Date | Reported |\n")
	b.WriteString("|------------|-------|---------|--------|-------------|--------|------|----------|\n")
	for _, trade := range recent {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			orNA(trade.Representative), orNA(trade.Party), orNA(trade.Chamber),
			orNA(trade.Ticker), orNA(trade.Transaction), orNA(trade.Amount),
			orNA(dateOnly(trade.TransactionDate)), orNA(dateOnly(trade.ReportDate)))
	}
	b.WriteString("\nNote: congressional trades are self-reported and may be disclosed up to 45 days after the transaction date.")
	return b.String(), nil
}

// tradeDate parses the date prefix of an API timestamp. Unparseable dates
// are kept rather than filtered out.
func tradeDate(s string) (time.Time, bool) {
	if len(s) < 10 {
		return time.Time{}, false
	}
	when, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return time.Time{}, false
	}
	return when, true
}

func tradeFilterDesc(politician, chamber, ticker string) string {
	var parts []string
	if politician != "" {
		parts = append(parts, fmt.Sprintf("politician %q", politician))
	}
	if chamber != "" {
		parts = append(parts, fmt.Sprintf("chamber %q", chamber))
	}
	if ticker != "" {
		parts = append(parts, fmt.Sprintf("ticker %q", ticker))
	}
	if len(parts) == 0 {
		return ""
	}
	return " matching " + strings.Join(parts, ", ")
}

func dateOnly(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
