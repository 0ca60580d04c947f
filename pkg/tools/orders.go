package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentforge/agentforge/pkg/ghostfolio"
	"github.com/agentforge/agentforge/pkg/verify"
)

// transactionHistoryTool pages through past orders.
type transactionHistoryTool struct {
	backend Backend
}

func (t *transactionHistoryTool) Name() string { return "transaction_history" }

func (t *transactionHistoryTool) Description() string {
	return "List past transactions (buys, sells, dividends, fees) in reverse chronological order."
}

func (t *transactionHistoryTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"skip": numberProp("Number of transactions to skip (default 0)"),
		"take": numberProp("Number of transactions to return (default 25, max 100)"),
	})
}

func (t *transactionHistoryTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	skip := int(floatArg(args, "skip", 0))
	take := int(floatArg(args, "take", 25))
	if skip < 0 {
		skip = 0
	}
	if take <= 0 || take > 100 {
		take = 25
	}

	orders, err := t.backend.Orders(ctx, skip, take)
	if err != nil {
		return "", fmt.Errorf("orders: %w", err)
	}
	return fmt.Sprintf("Transactions (skip=%d take=%d):\n%s", skip, take, renderJSON(orders)), nil
}

// createOrderTool records a new transaction. The ticker is verified against
// the backend's symbol data before anything is written; an unverifiable
// symbol aborts the order and the reason is returned to the model so it can
// relay suggestions to the user.
type createOrderTool struct {
	backend Backend
	ticker  *verify.TickerVerifier
}

func (t *createOrderTool) Name() string { return "create_order" }

func (t *createOrderTool) Description() string {
	return "Record a new transaction (BUY, SELL, DIVIDEND, FEE, INTEREST, ITEM, LIABILITY) for a ticker symbol. The symbol is verified before the order is created."
}

func (t *createOrderTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"symbol":      stringProp("Ticker symbol, e.g. AAPL"),
		"type":        stringProp("Order type: BUY, SELL, DIVIDEND, FEE, INTEREST, ITEM, or LIABILITY"),
		"quantity":    numberProp("Number of units"),
		"unit_price":  numberProp("Price per unit"),
		"currency":    stringProp("Currency code, e.g. USD (default USD)"),
		"data_source": stringProp("Market data source (default YAHOO)"),
		"date":        stringProp("Trade date in ISO 8601, e.g. 2026-08-24 (default today)"),
		"account_id":  stringProp("Account to book the order against (optional)"),
		"fee":         numberProp("Transaction fee (default 0)"),
	}, "symbol", "type", "quantity", "unit_price")
}

func (t *createOrderTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(stringArg(args, "symbol", "")))
	dataSource := stringArg(args, "data_source", verify.DefaultDataSource)

	valid, reason := t.ticker.Verify(ctx, symbol, dataSource)
	if !valid {
		return reason, nil
	}

	order := ghostfolio.OrderRequest{
		Symbol:     symbol,
		Type:       strings.ToUpper(stringArg(args, "type", "BUY")),
		Quantity:   floatArg(args, "quantity", 0),
		UnitPrice:  floatArg(args, "unit_price", 0),
		Currency:   strings.ToUpper(stringArg(args, "currency", "USD")),
		DataSource: dataSource,
		Date:       stringArg(args, "date", ""),
		AccountID:  stringArg(args, "account_id", ""),
		Fee:        floatArg(args, "fee", 0),
	}
	created, err := t.backend.CreateOrder(ctx, order)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	return "Order created:\n" + renderJSON(created), nil
}

// deleteOrderTool removes a transaction by id.
type deleteOrderTool struct {
	backend Backend
}

func (t *deleteOrderTool) Name() string { return "delete_order" }

func (t *deleteOrderTool) Description() string {
	return "Delete a transaction by its id. The id comes from transaction_history output."
}

func (t *deleteOrderTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"order_id": stringProp("Id of the transaction to delete"),
	}, "order_id")
}

func (t *deleteOrderTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	orderID := stringArg(args, "order_id", "")
	if orderID == "" {
		return "", fmt.Errorf("order_id is required")
	}
	if err := t.backend.DeleteOrder(ctx, orderID); err != nil {
		return "", fmt.Errorf("delete order: %w", err)
	}
	return fmt.Sprintf("Order %s deleted.", orderID), nil
}
