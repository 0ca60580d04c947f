package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentforge/agentforge/pkg/ghostfolio"
)

// DefaultDataSource is used when the caller does not name one.
const DefaultDataSource = "YAHOO"

// SymbolClient is the minimal backend surface the ticker verifier needs,
// so it can be tested against a fake without a live backend.
type SymbolClient interface {
	GetSymbolProfile(ctx context.Context, dataSource, symbol string) (*ghostfolio.SymbolProfile, error)
	SymbolLookup(ctx context.Context, query string) ([]ghostfolio.LookupItem, error)
}

// TickerVerifier confirms ticker symbols resolve to real securities via a
// two-stage lookup: direct profile first, then fuzzy search.
type TickerVerifier struct {
	client SymbolClient
}

// NewTickerVerifier creates a verifier backed by the given symbol client.
func NewTickerVerifier(client SymbolClient) *TickerVerifier {
	return &TickerVerifier{client: client}
}

// Verify checks whether symbol resolves to a real security in dataSource
// (DefaultDataSource when empty). Returns (true, "") for valid symbols and
// (false, reason) otherwise.
//
// A search-stage backend failure is treated as valid (fail open) rather
// than blocking a legitimate order on an infrastructure hiccup. A direct
// lookup failure other than 404 fails closed with the status code, since
// that indicates the backend itself is unhealthy rather than missing data.
func (v *TickerVerifier) Verify(ctx context.Context, symbol, dataSource string) (bool, string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return false, "Symbol is empty."
	}
	if dataSource == "" {
		dataSource = DefaultDataSource
	}

	// Stage 1: direct profile lookup (fast path).
	profile, err := v.client.GetSymbolProfile(ctx, dataSource, symbol)
	switch {
	case err == nil:
		if profile != nil && profile.Symbol != "" {
			return true, ""
		}
		// Empty profile: fall through to search.
	case ghostfolio.IsNotFound(err):
		// Symbol unknown to the profile endpoint; try search.
	case ghostfolio.StatusCode(err) != 0:
		return false, fmt.Sprintf("Error verifying symbol: %d", ghostfolio.StatusCode(err))
	default:
		return false, fmt.Sprintf("Error verifying symbol: %v", err)
	}

	// Stage 2: fuzzy search across data sources.
	items, err := v.client.SymbolLookup(ctx, symbol)
	if err != nil {
		// Search unreachable: fail open so infrastructure issues don't
		// block user actions.
		return true, ""
	}

	if len(items) == 0 {
		return false, fmt.Sprintf("Symbol '%s' not found in any data source.", symbol)
	}

	var suggestions []string
	for _, item := range items {
		if strings.ToUpper(item.Symbol) == symbol {
			return true, ""
		}
		if len(suggestions) < 5 {
			name := item.Name
			if name == "" {
				name = "?"
			}
			suggestions = append(suggestions, fmt.Sprintf("%s (%s)", item.Symbol, name))
		}
	}

	return false, fmt.Sprintf("Symbol '%s' not found. Did you mean: %s?",
		symbol, strings.Join(suggestions, ", "))
}
