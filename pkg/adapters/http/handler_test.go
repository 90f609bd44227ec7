// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"github.com/solconnect/assistants-gw/pkg/core/api"
	"github.com/solconnect/assistants-gw/pkg/core/config"
	"github.com/solconnect/assistants-gw/pkg/observability/logging"
	"github.com/solconnect/assistants-gw/pkg/tenant"
	"github.com/solconnect/assistants-gw/pkg/tools"
)

func newTestHandler(t *testing.T) (*Handler, *api.MockAssistantsClient) {
	t.Helper()

	resolver := tenant.NewStaticResolver("")
	resolver.Add(&tenant.ConsumerInfo{
		ConsumerKey:  "sck-acme",
		CustomerName: "Acme Corp",
		OpenAIAPIKey: "sk-acme",
	})

	mock := api.NewMockAssistantsClient()
	store := NewSessionStore(resolver, tools.NewRegistry(nil), logging.Discard(), config.UpstreamConfig{
		AssistantID:  "asst_1",
		PollInterval: time.Millisecond,
		RunTimeout:   time.Second,
	})
	store.newClient = func(string) (api.AssistantsClient, api.CompletionsClient) {
		return mock, nil
	}

	return New(store, logging.Discard()), mock
}

func chatRequest(t *testing.T, sessionID, message, consumerKey string) *http.Request {
	t.Helper()
	body, _ := json.Marshal(ChatRequest{SessionID: sessionID, Message: message})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(body))
	if consumerKey != "" {
		req.Header.Set(consumerKeyHeader, consumerKey)
	}
	return req
}

func TestHandler_Health(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_Chat(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest(t, "", "hello", "sck-acme"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != "mock reply" {
		t.Errorf("expected mock reply, got %q", resp.Reply)
	}
	if resp.SessionID == "" || resp.ThreadID == "" {
		t.Errorf("expected session and thread ids, got %+v", resp)
	}
}

func TestHandler_Chat_SessionReuse(t *testing.T) {
	h, mock := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest(t, "", "first", "sck-acme"))
	var resp ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest(t, resp.SessionID, "second", "sck-acme"))

	var again ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &again)
	if again.SessionID != resp.SessionID {
		t.Errorf("expected same session, got %q and %q", resp.SessionID, again.SessionID)
	}
	if again.ThreadID != resp.ThreadID {
		t.Errorf("expected same thread, got %q and %q", resp.ThreadID, again.ThreadID)
	}
	if mock.CreatedThreads != 1 {
		t.Errorf("expected one upstream thread, got %d", mock.CreatedThreads)
	}
}

func TestHandler_Chat_MissingConsumerKey(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest(t, "", "hello", ""))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandler_Chat_UnknownConsumer(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest(t, "", "hello", "sck-nobody"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_ChatStream(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.Messages = []api.ThreadMessage{
		{
			Role: "assistant",
			Content: []api.MessageContent{
				{Type: "text", Text: &api.MessageText{Value: "One. Two"}},
			},
		},
	}

	body, _ := json.Marshal(ChatRequest{Message: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", bytes.NewReader(body))
	req.Header.Set(consumerKeyHeader, "sck-acme")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("expected SSE content type, got %q", got)
	}

	out := rec.Body.String()
	if !strings.Contains(out, "event: message") {
		t.Errorf("expected message events, got %s", out)
	}
	if !strings.Contains(out, "event: done") {
		t.Errorf("expected done event, got %s", out)
	}
	if !strings.Contains(out, "One. ") || !strings.Contains(out, "Two") {
		t.Errorf("expected reply fragments, got %s", out)
	}
}

func TestHandler_SessionHistory(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest(t, "", "hello", "sck-acme"))
	var resp ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+resp.SessionID+"/history", nil)
	req.Header.Set(consumerKeyHeader, "sck-acme")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out struct {
		History []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(out.History) != 2 || out.History[0].Role != "user" || out.History[1].Role != "assistant" {
		t.Errorf("unexpected history: %+v", out.History)
	}
}

func TestHandler_SessionHistory_WrongConsumer(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest(t, "", "hello", "sck-acme"))
	var resp ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+resp.SessionID+"/history", nil)
	req.Header.Set(consumerKeyHeader, "sck-other")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandler_SessionClear(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest(t, "", "hello", "sck-acme"))
	var resp ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+resp.SessionID+"/clear", nil)
	req.Header.Set(consumerKeyHeader, "sck-acme")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out struct {
		ThreadID string `json:"thread_id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &out)
	if out.ThreadID == "" || out.ThreadID == resp.ThreadID {
		t.Errorf("expected a fresh thread, got %q (old %q)", out.ThreadID, resp.ThreadID)
	}
}

func TestHandler_DeleteSession(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest(t, "", "hello", "sck-acme"))
	var resp ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+resp.SessionID, nil)
	req.Header.Set(consumerKeyHeader, "sck-acme")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if h.sessions.Len() != 0 {
		t.Errorf("expected session removed, %d remain", h.sessions.Len())
	}

	// Gone now.
	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/"+resp.SessionID+"/history", nil)
	req.Header.Set(consumerKeyHeader, "sck-acme")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_ChatWS(t *testing.T) {
	h, _ := newTestHandler(t)
	server := httptest.NewServer(h)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/chat/ws?consumer_key=sck-acme"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// First frame announces the session.
	var hello wsServerMessage
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read session frame: %v", err)
	}
	json.Unmarshal(data, &hello)
	if hello.Type != "session" || hello.SessionID == "" {
		t.Fatalf("unexpected hello frame: %+v", hello)
	}

	out, _ := json.Marshal(wsClientMessage{Type: "message", Message: "hello"})
	if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
		t.Fatalf("write: %v", err)
	}

	var gotReply, gotDone bool
	for !gotDone {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg wsServerMessage
		json.Unmarshal(data, &msg)
		switch msg.Type {
		case "message":
			if strings.Contains(msg.Content, "mock reply") {
				gotReply = true
			}
		case "error":
			t.Fatalf("unexpected error frame: %s", msg.Content)
		case "done":
			gotDone = true
		}
	}
	if !gotReply {
		t.Error("expected the reply to arrive over the socket")
	}
}
