package ghostfolio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseBytes caps backend response bodies.
const maxResponseBytes = 10 * 1024 * 1024

// Client is a bearer-token HTTP client for the Ghostfolio REST API.
// A single Client is safe for concurrent use and reuses connections.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Ghostfolio API client for the given base URL and token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Method: method, Path: path}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// rangeParams builds the common range/filter query parameters.
func rangeParams(dateRange string, filters map[string]string) url.Values {
	params := url.Values{}
	if dateRange != "" {
		params.Set("range", dateRange)
	}
	for _, key := range []string{"accounts", "assetClasses", "dataSource", "symbol", "tags"} {
		if v, ok := filters[key]; ok && v != "" {
			params.Set(key, v)
		}
	}
	return params
}

// PortfolioDetails fetches holdings and allocation data.
func (c *Client) PortfolioDetails(ctx context.Context, dateRange string, filters map[string]string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.get(ctx, "/api/v1/portfolio/details", rangeParams(dateRange, filters), &out)
	return out, err
}

// PortfolioPerformance fetches performance data for the given range.
func (c *Client) PortfolioPerformance(ctx context.Context, dateRange string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.get(ctx, "/api/v2/portfolio/performance", rangeParams(dateRange, nil), &out)
	return out, err
}

// PortfolioReport fetches the rule-based portfolio risk report.
func (c *Client) PortfolioReport(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.get(ctx, "/api/v1/portfolio/report", nil, &out)
	return out, err
}

// Dividends fetches dividend history for the given range.
func (c *Client) Dividends(ctx context.Context, dateRange string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.get(ctx, "/api/v1/portfolio/dividends", rangeParams(dateRange, nil), &out)
	return out, err
}

// Accounts fetches all accounts with balances.
func (c *Client) Accounts(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.get(ctx, "/api/v1/account", nil, &out)
	return out, err
}

// Benchmarks fetches the configured benchmark list.
func (c *Client) Benchmarks(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.get(ctx, "/api/v1/benchmarks", nil, &out)
	return out, err
}

// Orders fetches transaction history, optionally paginated.
func (c *Client) Orders(ctx context.Context, skip, take int) (json.RawMessage, error) {
	params := url.Values{}
	if skip > 0 {
		params.Set("skip", fmt.Sprintf("%d", skip))
	}
	if take > 0 {
		params.Set("take", fmt.Sprintf("%d", take))
	}
	var out json.RawMessage
	err := c.get(ctx, "/api/v1/order", params, &out)
	return out, err
}

// OrderRequest is the payload for creating an order.
type OrderRequest struct {
	AccountID  string  `json:"accountId,omitempty"`
	Currency   string  `json:"currency"`
	DataSource string  `json:"dataSource"`
	Date       string  `json:"date"`
	Fee        float64 `json:"fee"`
	Quantity   float64 `json:"quantity"`
	Symbol     string  `json:"symbol"`
	Type       string  `json:"type"` // "BUY" or "SELL"
	UnitPrice  float64 `json:"unitPrice"`
}

// CreateOrder creates a buy/sell order.
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, http.MethodPost, "/api/v1/order", nil, order, &out)
	return out, err
}

// DeleteOrder deletes an order by ID.
func (c *Client) DeleteOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/order/"+url.PathEscape(orderID), nil, nil, nil)
}

// SymbolProfile is the asset profile returned by the symbol endpoint.
type SymbolProfile struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Currency      string  `json:"currency"`
	DataSource    string  `json:"dataSource"`
	AssetClass    string  `json:"assetClass"`
	AssetSubClass string  `json:"assetSubClass"`
	MarketPrice   float64 `json:"marketPrice"`
}

// GetSymbolProfile fetches the profile for an exact symbol from a data source.
// Returns a *StatusError with code 404 when the symbol is unknown.
func (c *Client) GetSymbolProfile(ctx context.Context, dataSource, symbol string) (*SymbolProfile, error) {
	path := fmt.Sprintf("/api/v1/symbol/%s/%s", url.PathEscape(dataSource), url.PathEscape(symbol))
	var out SymbolProfile
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupItem is a single candidate from a fuzzy symbol search.
type LookupItem struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Currency      string `json:"currency"`
	DataSource    string `json:"dataSource"`
	AssetClass    string `json:"assetClass"`
	AssetSubClass string `json:"assetSubClass"`
}

// SymbolLookup runs a fuzzy search across all data sources.
func (c *Client) SymbolLookup(ctx context.Context, query string) ([]LookupItem, error) {
	params := url.Values{}
	params.Set("query", query)
	var out struct {
		Items []LookupItem `json:"items"`
	}
	if err := c.get(ctx, "/api/v1/symbol/lookup", params, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
