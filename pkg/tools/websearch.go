// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"

	"github.com/solconnect/assistants-gw/pkg/websearch"
)

// WebSearchTool answers web_search calls through a configured search
// provider.
type WebSearchTool struct {
	provider   websearch.Provider
	maxResults int
}

// NewWebSearchTool wraps a search provider as a tool. maxResults <= 0
// defaults to 5.
func NewWebSearchTool(provider websearch.Provider, maxResults int) *WebSearchTool {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &WebSearchTool{provider: provider, maxResults: maxResults}
}

// Definition implements Tool.
func (t *WebSearchTool) Definition() Definition {
	return Definition{
		Name:        "web_search",
		Description: "Search the web for current information. Use this when the user asks about recent events or facts you are unsure about.",
		Parameters: objectSchema(map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query",
			},
		}, "query"),
		FallbackField: "query",
	}
}

// Execute implements Tool.
func (t *WebSearchTool) Execute(ctx context.Context, args Arguments) (string, error) {
	query := t.queryFrom(args)
	if query == "" {
		return "Error: web_search requires a query.", nil
	}

	results, err := t.provider.Search(ctx, query, t.maxResults)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}
	return websearch.FormatResults(results), nil
}

func (t *WebSearchTool) queryFrom(args Arguments) string {
	if q := args.String("query"); q != "" {
		return q
	}
	// Some models emit "q" or "search_query" despite the schema.
	if q := args.String("q"); q != "" {
		return q
	}
	return args.String("search_query")
}
