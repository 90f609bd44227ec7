// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// JiraConfig holds the Jira Cloud connection settings.
type JiraConfig struct {
	BaseURL  string
	Email    string
	APIToken string
}

// JiraTool answers jira_run_agent_query calls by running a JQL search
// against the Jira Cloud REST API.
type JiraTool struct {
	cfg        JiraConfig
	maxResults int
	httpClient *http.Client
}

// NewJiraTool creates the tool for the configured Jira site.
func NewJiraTool(cfg JiraConfig) *JiraTool {
	return &JiraTool{
		cfg:        cfg,
		maxResults: 10,
		httpClient: &http.Client{},
	}
}

// Definition implements Tool.
func (t *JiraTool) Definition() Definition {
	return Definition{
		Name:        "jira_run_agent_query",
		Description: "Run a JQL query against Jira and return matching issues.",
		Parameters: objectSchema(map[string]any{
			"jira_query": map[string]any{
				"type":        "string",
				"description": "The JQL query, e.g. project = OPS AND status = Open",
			},
		}, "jira_query"),
		FallbackField: "jira_query",
	}
}

type jiraSearchResponse struct {
	Total  int `json:"total"`
	Issues []struct {
		Key    string `json:"key"`
		Fields struct {
			Summary string `json:"summary"`
			Status  struct {
				Name string `json:"name"`
			} `json:"status"`
			Assignee *struct {
				DisplayName string `json:"displayName"`
			} `json:"assignee"`
		} `json:"fields"`
	} `json:"issues"`
}

// Execute implements Tool.
func (t *JiraTool) Execute(ctx context.Context, args Arguments) (string, error) {
	jql := strings.TrimSpace(args.StringOr("jira_query", args.String("jql")))
	if jql == "" {
		return "Error: jira_run_agent_query requires a JQL query.", nil
	}

	params := url.Values{}
	params.Set("jql", jql)
	params.Set("maxResults", fmt.Sprintf("%d", t.maxResults))
	params.Set("fields", "summary,status,assignee")

	endpoint := strings.TrimSuffix(t.cfg.BaseURL, "/") + "/rest/api/2/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(t.cfg.Email, t.cfg.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("jira request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("jira returned status %d", resp.StatusCode)
	}

	var sr jiraSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("decode jira response: %w", err)
	}

	if len(sr.Issues) == 0 {
		return "No Jira issues matched the query.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d issue(s) found:\n", sr.Total)
	for _, issue := range sr.Issues {
		assignee := "unassigned"
		if issue.Fields.Assignee != nil {
			assignee = issue.Fields.Assignee.DisplayName
		}
		fmt.Fprintf(&b, "- %s: %s [%s, %s]\n", issue.Key, issue.Fields.Summary, issue.Fields.Status.Name, assignee)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
