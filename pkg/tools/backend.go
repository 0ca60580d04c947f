package tools

import (
	"context"
	"encoding/json"

	"github.com/agentforge/agentforge/pkg/ghostfolio"
	"github.com/agentforge/agentforge/pkg/memory"
	"github.com/agentforge/agentforge/pkg/verify"
)

// Backend is the portfolio API surface the tools consume. Satisfied by
// *ghostfolio.Client; faked in tests.
type Backend interface {
	PortfolioDetails(ctx context.Context, dateRange string, filters map[string]string) (json.RawMessage, error)
	PortfolioPerformance(ctx context.Context, dateRange string) (json.RawMessage, error)
	PortfolioReport(ctx context.Context) (json.RawMessage, error)
	Dividends(ctx context.Context, dateRange string) (json.RawMessage, error)
	Accounts(ctx context.Context) (json.RawMessage, error)
	Benchmarks(ctx context.Context) (json.RawMessage, error)
	Orders(ctx context.Context, skip, take int) (json.RawMessage, error)
	CreateOrder(ctx context.Context, order ghostfolio.OrderRequest) (json.RawMessage, error)
	DeleteOrder(ctx context.Context, orderID string) error
	GetSymbolProfile(ctx context.Context, dataSource, symbol string) (*ghostfolio.SymbolProfile, error)
	SymbolLookup(ctx context.Context, query string) ([]ghostfolio.LookupItem, error)
}

// NewsSource fetches headlines from a third-party feed. Distinct from
// Backend: its data does not come from the user's own portfolio and is
// treated as less reliable downstream.
type NewsSource interface {
	Headlines(ctx context.Context, query string) (string, error)
}

// CongressSource fetches disclosed congressional stock trades from a
// third-party API. Like NewsSource its data is external, so it is treated
// as less reliable downstream.
type CongressSource interface {
	Trades(ctx context.Context, politician, chamber, ticker string) ([]CongressTrade, error)
}

// Deps carries everything a per-request tool set needs.
type Deps struct {
	Backend   Backend
	Store     *memory.Store
	News      NewsSource
	Congress  CongressSource
	AuthToken string
}

// NewRegistryForRequest builds the full tool set for one chat request.
// Tools are cheap per-request values; the backend client carries the
// request's bearer token.
func NewRegistryForRequest(deps Deps) (*Registry, error) {
	registry := NewRegistry()
	ticker := verify.NewTickerVerifier(deps.Backend)

	all := []Tool{
		&portfolioAnalysisTool{backend: deps.Backend},
		&transactionHistoryTool{backend: deps.Backend},
		&marketDataTool{backend: deps.Backend},
		&riskAssessmentTool{backend: deps.Backend},
		&benchmarkComparisonTool{backend: deps.Backend},
		&dividendAnalysisTool{backend: deps.Backend},
		&accountSummaryTool{backend: deps.Backend},
		&createOrderTool{backend: deps.Backend, ticker: ticker},
		&deleteOrderTool{backend: deps.Backend},
	}
	if deps.Store != nil {
		all = append(all,
			&getPreferencesTool{store: deps.Store, authToken: deps.AuthToken},
			&savePreferenceTool{store: deps.Store, authToken: deps.AuthToken},
			&deletePreferenceTool{store: deps.Store, authToken: deps.AuthToken},
		)
	}
	if deps.News != nil {
		all = append(all, &marketNewsTool{news: deps.News})
	}
	if deps.Congress != nil {
		all = append(all, &congressionalTradesTool{congress: deps.Congress})
	}

	for _, tool := range all {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
