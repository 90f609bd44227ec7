// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package websearch provides pluggable web search backends for the
// web_search tool.
package websearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/solconnect/assistants-gw/pkg/provider"
)

// Providers is the registry of search backends. Implementations
// self-register via init().
var Providers = provider.NewRegistry[Provider]("web_search")

// SearchResult represents a single web search result.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// Provider performs web searches against an external API.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// FormatResults renders results as the plain-text block handed back to
// the model as tool output.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n%s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			b.WriteString(r.Snippet)
			b.WriteString("\n")
		}
		if i < len(results)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
