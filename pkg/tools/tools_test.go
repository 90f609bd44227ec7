// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/solconnect/assistants-gw/pkg/websearch"
	"github.com/solconnect/assistants-gw/pkg/workato"
)

type stubSearchProvider struct {
	query   string
	results []websearch.SearchResult
	err     error
}

func (p *stubSearchProvider) Search(_ context.Context, query string, _ int) ([]websearch.SearchResult, error) {
	p.query = query
	return p.results, p.err
}

func TestWebSearchTool_Execute(t *testing.T) {
	provider := &stubSearchProvider{
		results: []websearch.SearchResult{
			{Title: "Go 1.25 released", URL: "https://go.dev/blog", Snippet: "The latest release."},
		},
	}
	tool := NewWebSearchTool(provider, 5)

	out, err := tool.Execute(context.Background(), Arguments{"query": "go release"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.query != "go release" {
		t.Errorf("expected query to reach provider, got %q", provider.query)
	}
	if !strings.Contains(out, "Go 1.25 released") {
		t.Errorf("expected formatted result, got %q", out)
	}
}

func TestWebSearchTool_EmptyQuery(t *testing.T) {
	tool := NewWebSearchTool(&stubSearchProvider{}, 5)

	out, err := tool.Execute(context.Background(), Arguments{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "requires a query") {
		t.Errorf("expected guidance text, got %q", out)
	}
}

func TestFileSearchTool_Execute(t *testing.T) {
	tool := NewFileSearchTool()

	out, err := tool.Execute(context.Background(), Arguments{"query": "onboarding guide"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "no documents are indexed") {
		t.Errorf("expected placeholder text, got %q", out)
	}
	if !strings.Contains(out, "onboarding guide") {
		t.Errorf("expected query echoed, got %q", out)
	}
}

func TestStockPriceTool_Execute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("s"); got != "aapl.us" {
			t.Errorf("expected aapl.us, got %q", got)
		}
		w.Write([]byte("Symbol,Date,Time,Open,High,Low,Close,Volume\nAAPL.US,2026-08-27,22:00:00,231.1,233.9,229.5,232.56,41200000\n"))
	}))
	defer server.Close()

	tool := NewStockPriceTool()
	tool.endpoint = server.URL

	out, err := tool.Execute(context.Background(), Arguments{"symbol": "aapl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "AAPL closed at 232.56 on 2026-08-27") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestStockPriceTool_NoQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Symbol,Date,Time,Open,High,Low,Close,Volume\nBOGUS.US,N/D,N/D,N/D,N/D,N/D,N/D,N/D\n"))
	}))
	defer server.Close()

	tool := NewStockPriceTool()
	tool.endpoint = server.URL

	out, err := tool.Execute(context.Background(), Arguments{"symbol": "bogus"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No quote available") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestWeatherTool_Execute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("apikey"); got != "tm-key" {
			t.Errorf("expected apikey param, got %q", got)
		}
		if got := r.URL.Query().Get("location"); got != "Sydney" {
			t.Errorf("expected default location Sydney, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"values": map[string]any{"temperature": 18.4, "humidity": 62.0, "windSpeed": 3.2},
			},
			"location": map[string]any{"name": "Sydney"},
		})
	}))
	defer server.Close()

	tool := NewWeatherTool("tm-key")
	tool.endpoint = server.URL

	out, err := tool.Execute(context.Background(), Arguments{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Sydney") || !strings.Contains(out, "18.4") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestJiraTool_Execute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "bot@example.com" || pass != "jira-token" {
			t.Errorf("expected basic auth, got %q %q", user, pass)
		}
		if got := r.URL.Query().Get("jql"); got != "project = OPS" {
			t.Errorf("unexpected jql: %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"total": 1,
			"issues": []map[string]any{
				{
					"key": "OPS-42",
					"fields": map[string]any{
						"summary":  "Renew certificates",
						"status":   map[string]any{"name": "Open"},
						"assignee": map[string]any{"displayName": "Dana"},
					},
				},
			},
		})
	}))
	defer server.Close()

	tool := NewJiraTool(JiraConfig{BaseURL: server.URL, Email: "bot@example.com", APIToken: "jira-token"})

	out, err := tool.Execute(context.Background(), Arguments{"jira_query": "project = OPS"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "OPS-42") || !strings.Contains(out, "Renew certificates") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestAirportTool_Execute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("code"); got != "syd" {
			t.Errorf("expected syd, got %q", got)
		}
		w.Write([]byte(`{"result":{"response":{"airport":{"pluginData":{"details":{
			"name":"Sydney Kingsford Smith Airport",
			"code":{"iata":"SYD","icao":"YSSY"},
			"position":{"latitude":-33.9461,"longitude":151.1772,
				"region":{"city":"Sydney"},"country":{"name":"Australia"}},
			"timezone":{"name":"Australia/Sydney"}}}}}}}`))
	}))
	defer server.Close()

	tool := NewAirportTool()
	tool.endpoint = server.URL

	out, err := tool.Execute(context.Background(), Arguments{"airport_code": "SYD"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Kingsford Smith") || !strings.Contains(out, "YSSY") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestWorkatoActionTool_SearchContactRewrite(t *testing.T) {
	var received workato.ActionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Solomon-Consumer-Key"); got != "sck-acme" {
			t.Errorf("expected consumer key header, got %q", got)
		}
		if got := r.Header.Get("X-Thread-ID"); got != "thread_9" {
			t.Errorf("expected thread id header, got %q", got)
		}
		json.NewDecoder(r.Body).Decode(&received)
		w.Write([]byte(`{"matches":1}`))
	}))
	defer server.Close()

	relay := workato.NewRelay(workato.Config{EndpointURL: server.URL, APIToken: "wk-token"})
	tool := NewWorkatoActionTool(relay)

	ctx := WithCallContext(context.Background(), CallContext{ConsumerKey: "sck-acme", ThreadID: "thread_9"})
	out, err := tool.Execute(ctx, Arguments{
		"action_type": "search_contact",
		"system":      "salesforce",
		"payload":     map[string]any{"name": "Ada Lovelace"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "matches") {
		t.Errorf("expected relay response, got %q", out)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(received.Payload), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload["contact_name"] != "Ada Lovelace" {
		t.Errorf("expected name rewritten to contact_name, got %v", payload)
	}
	if _, exists := payload["name"]; exists {
		t.Error("expected original name field removed")
	}
}

type recordingMemory struct {
	updates map[string]any
}

func (m *recordingMemory) UpdateSlot(name string, value any) bool {
	known := map[string]bool{"user_name": true, "company_name": true}
	if !known[name] {
		return false
	}
	if m.updates == nil {
		m.updates = make(map[string]any)
	}
	m.updates[name] = value
	return true
}

func TestSessionMemoryTool_Execute(t *testing.T) {
	mem := &recordingMemory{}
	tool := NewSessionMemoryTool(mem)

	out, err := tool.Execute(context.Background(), Arguments{"field": "user_name", "value": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Recorded") {
		t.Errorf("unexpected output: %q", out)
	}
	if mem.updates["user_name"] != "Ada" {
		t.Errorf("expected slot update, got %v", mem.updates)
	}

	out, err = tool.Execute(context.Background(), Arguments{"field": "shoe_size", "value": 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "not a known memory field") {
		t.Errorf("unexpected output: %q", out)
	}
}
