// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const stooqEndpoint = "https://stooq.com/q/l/"

// StockPriceTool answers get_stock_price calls from the Stooq quote CSV
// endpoint, which needs no API key.
type StockPriceTool struct {
	endpoint   string
	httpClient *http.Client
}

// NewStockPriceTool creates the tool against the public quote endpoint.
func NewStockPriceTool() *StockPriceTool {
	return &StockPriceTool{
		endpoint:   stooqEndpoint,
		httpClient: &http.Client{},
	}
}

// Definition implements Tool.
func (t *StockPriceTool) Definition() Definition {
	return Definition{
		Name:        "get_stock_price",
		Description: "Get the latest price for a stock ticker symbol.",
		Parameters: objectSchema(map[string]any{
			"symbol": map[string]any{
				"type":        "string",
				"description": "The ticker symbol, e.g. AAPL",
			},
		}, "symbol"),
		FallbackField: "symbol",
	}
}

// Execute implements Tool.
func (t *StockPriceTool) Execute(ctx context.Context, args Arguments) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(args.StringOr("symbol", "")))
	if symbol == "" {
		return "Error: get_stock_price requires a ticker symbol.", nil
	}

	// Stooq lists US tickers with a .us suffix.
	quoted := symbol
	if !strings.Contains(quoted, ".") {
		quoted += ".US"
	}

	params := url.Values{}
	params.Set("s", strings.ToLower(quoted))
	params.Set("f", "sd2t2ohlcv")
	params.Set("h", "")
	params.Set("e", "csv")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("quote request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("quote endpoint returned status %d", resp.StatusCode)
	}

	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse quote csv: %w", err)
	}
	// Header row plus one quote row: Symbol,Date,Time,Open,High,Low,Close,Volume.
	if len(records) < 2 || len(records[1]) < 7 {
		return "", fmt.Errorf("unexpected quote response for %s", symbol)
	}

	row := records[1]
	date, closePrice := row[1], row[6]
	if closePrice == "N/D" || closePrice == "" {
		return fmt.Sprintf("No quote available for %s.", symbol), nil
	}
	return fmt.Sprintf("%s closed at %s on %s.", symbol, closePrice, date), nil
}
