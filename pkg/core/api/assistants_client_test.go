// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_CreateRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/threads/thread_1/runs" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		if got := r.Header.Get("OpenAI-Beta"); got != "assistants=v2" {
			t.Errorf("expected beta header, got %q", got)
		}

		var req RunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.AssistantID != "asst_1" {
			t.Errorf("expected assistant asst_1, got %q", req.AssistantID)
		}
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "get_weather_data" {
			t.Errorf("unexpected tools payload: %+v", req.Tools)
		}

		json.NewEncoder(w).Encode(Run{
			ID:          "run_1",
			ThreadID:    "thread_1",
			AssistantID: "asst_1",
			Status:      RunStatusQueued,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-test", time.Second)
	run, err := client.CreateRun(context.Background(), "thread_1", &RunRequest{
		AssistantID: "asst_1",
		Tools: []Tool{
			{Type: "function", Function: ToolFunction{Name: "get_weather_data"}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.ID != "run_1" || run.Status != RunStatusQueued {
		t.Errorf("unexpected run: %+v", run)
	}
}

func TestClient_ListMessages_QueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "20" {
			t.Errorf("expected limit=20, got %q", got)
		}
		if got := r.URL.Query().Get("order"); got != "desc" {
			t.Errorf("expected order=desc, got %q", got)
		}
		json.NewEncoder(w).Encode(MessageList{
			Object: "list",
			Data: []ThreadMessage{
				{
					ID:   "msg_1",
					Role: "assistant",
					Content: []MessageContent{
						{Type: "text", Text: &MessageText{Value: "hello "}},
						{Type: "text", Text: &MessageText{Value: "world"}},
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-test", time.Second)
	list, err := client.ListMessages(context.Background(), "thread_1", 20, "desc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Data) != 1 {
		t.Fatalf("expected 1 message, got %d", len(list.Data))
	}
	if got := list.Data[0].TextContent(); got != "hello world" {
		t.Errorf("expected concatenated text, got %q", got)
	}
}

func TestClient_SubmitToolOutputs_Batch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ToolOutputs []ToolOutput `json:"tool_outputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(body.ToolOutputs) != 2 {
			t.Errorf("expected 2 outputs, got %d", len(body.ToolOutputs))
		}
		json.NewEncoder(w).Encode(Run{ID: "run_1", Status: RunStatusInProgress})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-test", time.Second)
	outputs := []ToolOutput{
		{ToolCallID: "call_1", Output: "5"},
		{ToolCallID: "call_2", Output: "sunny"},
	}
	run, err := client.SubmitToolOutputs(context.Background(), "thread_1", "run_1", outputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != RunStatusInProgress {
		t.Errorf("unexpected status %q", run.Status)
	}
}

func TestClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Incorrect API key provided", "type": "invalid_request_error"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-bad", time.Second)
	_, err := client.GetRun(context.Background(), "thread_1", "run_1")
	if err == nil {
		t.Fatal("expected error")
	}

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
	if ue.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", ue.StatusCode)
	}
	if !ue.IsAuth() {
		t.Error("401 should be reported as auth error")
	}
	if ue.Message != "Incorrect API key provided" {
		t.Errorf("expected parsed upstream message, got %q", ue.Message)
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL, "sk-test", time.Second)
	_, err := client.CreateThread(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
	if te.Op != "create_thread" {
		t.Errorf("expected op create_thread, got %q", te.Op)
	}
}

func TestRunStatus_Terminal(t *testing.T) {
	tests := []struct {
		status   RunStatus
		terminal bool
	}{
		{RunStatusQueued, false},
		{RunStatusInProgress, false},
		{RunStatusRequiresAction, false},
		{RunStatusCancelling, false},
		{RunStatusCompleted, true},
		{RunStatusFailed, true},
		{RunStatusCancelled, true},
		{RunStatusExpired, true},
		{RunStatusIncomplete, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Errorf("Terminal(%q) = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestRun_PendingToolCalls(t *testing.T) {
	run := &Run{
		Status: RunStatusRequiresAction,
		RequiredAction: &RequiredAction{
			Type: "submit_tool_outputs",
			SubmitToolOutputs: &SubmitToolOutputsDetail{
				ToolCalls: []ToolCallRequest{
					{ID: "call_1", Type: "function", Function: ToolCallFunction{Name: "add", Arguments: `{"a":2,"b":3}`}},
				},
			},
		},
	}
	calls := run.PendingToolCalls()
	if len(calls) != 1 || calls[0].Function.Name != "add" {
		t.Errorf("unexpected pending calls: %+v", calls)
	}

	run.Status = RunStatusInProgress
	if run.PendingToolCalls() != nil {
		t.Error("non-requires_action run should have no pending calls")
	}
}
