// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
)

// FileSearchTool is a placeholder for document retrieval. The schema is
// advertised so assistants configured with it keep working, but no
// document store is wired yet, so every query reports that nothing is
// indexed.
type FileSearchTool struct{}

// NewFileSearchTool creates the placeholder tool.
func NewFileSearchTool() *FileSearchTool { return &FileSearchTool{} }

// Definition implements Tool.
func (t *FileSearchTool) Definition() Definition {
	return Definition{
		Name:        "file_search",
		Description: "Search uploaded documents for relevant passages.",
		Parameters: objectSchema(map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The document search query",
			},
		}, "query"),
		FallbackField: "query",
	}
}

// Execute implements Tool.
func (t *FileSearchTool) Execute(_ context.Context, args Arguments) (string, error) {
	query := args.StringOr("query", "")
	if query == "" {
		return "File search is not configured for this workspace; no documents are indexed.", nil
	}
	return fmt.Sprintf("File search is not configured for this workspace; no documents are indexed for query %q.", query), nil
}
