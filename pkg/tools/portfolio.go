package tools

import (
	"context"
	"fmt"
)

// portfolioAnalysisTool reports holdings, allocation, and performance.
type portfolioAnalysisTool struct {
	backend Backend
}

func (t *portfolioAnalysisTool) Name() string { return "portfolio_analysis" }

func (t *portfolioAnalysisTool) Description() string {
	return "Analyze the user's portfolio: current holdings, allocation by asset class, and overall performance for a date range."
}

func (t *portfolioAnalysisTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"range": stringProp("Date range: 1d, mtd, wtd, ytd, 1y, 5y, or max (default max)"),
	})
}

func (t *portfolioAnalysisTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	dateRange := stringArg(args, "range", "max")

	details, err := t.backend.PortfolioDetails(ctx, dateRange, nil)
	if err != nil {
		return "", fmt.Errorf("portfolio details: %w", err)
	}
	performance, err := t.backend.PortfolioPerformance(ctx, dateRange)
	if err != nil {
		return "", fmt.Errorf("portfolio performance: %w", err)
	}

	return "Portfolio details:\n" + renderJSON(details) +
		"\n\nPerformance (" + dateRange + "):\n" + renderJSON(performance), nil
}

// riskAssessmentTool surfaces the backend's rule-based risk report.
type riskAssessmentTool struct {
	backend Backend
}

func (t *riskAssessmentTool) Name() string { return "risk_assessment" }

func (t *riskAssessmentTool) Description() string {
	return "Run the portfolio risk report: concentration, currency cluster, fee, and allocation rules."
}

func (t *riskAssessmentTool) Parameters() map[string]any {
	return objectSchema(map[string]any{})
}

func (t *riskAssessmentTool) Execute(ctx context.Context, _ map[string]any) (string, error) {
	report, err := t.backend.PortfolioReport(ctx)
	if err != nil {
		return "", fmt.Errorf("portfolio report: %w", err)
	}
	return "Risk report:\n" + renderJSON(report), nil
}

// benchmarkComparisonTool compares portfolio performance to benchmarks.
type benchmarkComparisonTool struct {
	backend Backend
}

func (t *benchmarkComparisonTool) Name() string { return "benchmark_comparison" }

func (t *benchmarkComparisonTool) Description() string {
	return "Compare portfolio performance against the configured benchmarks for a date range."
}

func (t *benchmarkComparisonTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"range": stringProp("Date range: 1d, mtd, wtd, ytd, 1y, 5y, or max (default max)"),
	})
}

func (t *benchmarkComparisonTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	dateRange := stringArg(args, "range", "max")

	benchmarks, err := t.backend.Benchmarks(ctx)
	if err != nil {
		return "", fmt.Errorf("benchmarks: %w", err)
	}
	performance, err := t.backend.PortfolioPerformance(ctx, dateRange)
	if err != nil {
		return "", fmt.Errorf("portfolio performance: %w", err)
	}

	return "Benchmarks:\n" + renderJSON(benchmarks) +
		"\n\nPortfolio performance (" + dateRange + "):\n" + renderJSON(performance), nil
}

// dividendAnalysisTool reports dividend history.
type dividendAnalysisTool struct {
	backend Backend
}

func (t *dividendAnalysisTool) Name() string { return "dividend_analysis" }

func (t *dividendAnalysisTool) Description() string {
	return "Summarize dividends received over a date range."
}

func (t *dividendAnalysisTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"range": stringProp("Date range: 1d, mtd, wtd, ytd, 1y, 5y, or max (default max)"),
	})
}

func (t *dividendAnalysisTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	dateRange := stringArg(args, "range", "max")
	dividends, err := t.backend.Dividends(ctx, dateRange)
	if err != nil {
		return "", fmt.Errorf("dividends: %w", err)
	}
	return "Dividends (" + dateRange + "):\n" + renderJSON(dividends), nil
}

// accountSummaryTool lists accounts and balances.
type accountSummaryTool struct {
	backend Backend
}

func (t *accountSummaryTool) Name() string { return "account_summary" }

func (t *accountSummaryTool) Description() string {
	return "List the user's accounts with platforms, balances, and currencies."
}

func (t *accountSummaryTool) Parameters() map[string]any {
	return objectSchema(map[string]any{})
}

func (t *accountSummaryTool) Execute(ctx context.Context, _ map[string]any) (string, error) {
	accounts, err := t.backend.Accounts(ctx)
	if err != nil {
		return "", fmt.Errorf("accounts: %w", err)
	}
	return "Accounts:\n" + renderJSON(accounts), nil
}
