package tools

import (
	"context"
	"fmt"
	"strings"
)

// marketDataTool looks up quote and profile data for a symbol.
type marketDataTool struct {
	backend Backend
}

func (t *marketDataTool) Name() string { return "market_data" }

func (t *marketDataTool) Description() string {
	return "Look up market data for a ticker symbol: current price, currency, asset class, and sector profile."
}

func (t *marketDataTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"symbol":      stringProp("Ticker symbol, e.g. AAPL"),
		"data_source": stringProp("Market data source (default YAHOO)"),
	}, "symbol")
}

func (t *marketDataTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(stringArg(args, "symbol", "")))
	if symbol == "" {
		return "", fmt.Errorf("symbol is required")
	}
	dataSource := stringArg(args, "data_source", "YAHOO")

	profile, err := t.backend.GetSymbolProfile(ctx, dataSource, symbol)
	if err != nil {
		return "", fmt.Errorf("symbol profile: %w", err)
	}
	return fmt.Sprintf(
		"Symbol profile for %s:\nName: %s\nCurrency: %s\nData source: %s\nAsset class: %s / %s\nMarket price: %.2f",
		profile.Symbol, profile.Name, profile.Currency, profile.DataSource,
		profile.AssetClass, profile.AssetSubClass, profile.MarketPrice,
	), nil
}

// marketNewsTool fetches headlines from the external feed. Feed failures are
// reported as tool output rather than errors so the agent can still answer,
// at reduced confidence.
type marketNewsTool struct {
	news NewsSource
}

func (t *marketNewsTool) Name() string { return "market_news" }

func (t *marketNewsTool) Description() string {
	return "Fetch recent market news headlines, optionally filtered by a query such as a company name or ticker."
}

func (t *marketNewsTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"query": stringProp("Search query, e.g. a ticker or company name (optional)"),
	})
}

func (t *marketNewsTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query", "")
	headlines, err := t.news.Headlines(ctx, query)
	if err != nil {
		return fmt.Sprintf("Error: news feed unavailable: %v", err), nil
	}
	return headlines, nil
}
