// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package http is the HTTP and WebSocket adapter in front of the
// conversation bridge.
package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/solconnect/assistants-gw/pkg/core/bridge"
	"github.com/solconnect/assistants-gw/pkg/observability/logging"
	"github.com/solconnect/assistants-gw/pkg/tenant"
)

// consumerKeyHeader identifies the tenant on every conversation request.
const consumerKeyHeader = "X-Solomon-Consumer-Key"

// Handler implements the HTTP adapter
type Handler struct {
	sessions *SessionStore
	logger   *logging.Logger
	mux      *http.ServeMux
}

// New creates a new HTTP handler
func New(sessions *SessionStore, logger *logging.Logger) *Handler {
	h := &Handler{
		sessions: sessions,
		logger:   logger,
		mux:      http.NewServeMux(),
	}

	// Register routes
	h.mux.HandleFunc("GET /health", h.handleHealth)

	// Chat API
	h.mux.HandleFunc("POST /v1/chat", h.handleChat)
	h.mux.HandleFunc("POST /v1/chat/stream", h.handleChatStream)
	h.mux.HandleFunc("GET /v1/chat/ws", h.handleChatWS)

	// Sessions API
	h.mux.HandleFunc("GET /v1/sessions/{id}/history", h.handleSessionHistory)
	h.mux.HandleFunc("GET /v1/sessions/{id}/memory", h.handleSessionMemory)
	h.mux.HandleFunc("POST /v1/sessions/{id}/clear", h.handleSessionClear)
	h.mux.HandleFunc("DELETE /v1/sessions/{id}", h.handleDeleteSession)

	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Request",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	h.mux.ServeHTTP(w, r)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}

// ChatRequest is the body of POST /v1/chat and /v1/chat/stream.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the body of a synchronous chat reply.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	ThreadID  string `json:"thread_id"`
	Reply     string `json:"reply"`
}

// sessionFor parses the chat request and finds or creates its session.
// Writes the error response itself when it returns nil.
func (h *Handler) sessionFor(w http.ResponseWriter, r *http.Request, req *ChatRequest) *Session {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.logger.Error("Failed to parse request", "error", err)
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return nil
	}
	if req.Message == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return nil
	}

	consumerKey := r.Header.Get(consumerKeyHeader)
	if consumerKey == "" {
		h.writeError(w, http.StatusUnauthorized, "missing_consumer_key", fmt.Sprintf("%s header is required", consumerKeyHeader))
		return nil
	}

	sess, err := h.sessions.GetOrCreate(r.Context(), req.SessionID, consumerKey)
	if err != nil {
		if errors.Is(err, tenant.ErrConsumerNotFound) {
			h.writeError(w, http.StatusForbidden, "unknown_consumer", "consumer key is not registered")
			return nil
		}
		h.logger.Error("Failed to create session", "error", err)
		h.writeError(w, http.StatusInternalServerError, "session_error", err.Error())
		return nil
	}
	return sess
}

// handleChat handles a synchronous conversation turn.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	sess := h.sessionFor(w, r, &req)
	if sess == nil {
		return
	}

	h.logger.Info("Processing chat turn", "session_id", sess.ID)

	reply, err := sess.Bridge.Send(r.Context(), req.Message)
	if err != nil {
		h.logger.Error("Chat turn failed", "session_id", sess.ID, "error", err)
		h.writeError(w, http.StatusBadGateway, "turn_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ChatResponse{
		SessionID: sess.ID,
		ThreadID:  sess.Bridge.ThreadID(),
		Reply:     reply,
	})
}

// handleChatStream replays the reply as SSE fragments.
func (h *Handler) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	sess := h.sessionFor(w, r, &req)
	if sess == nil {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming_not_supported", "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Session-ID", sess.ID)
	w.WriteHeader(http.StatusOK)

	for event := range sess.Bridge.SendStream(r.Context(), req.Message) {
		data, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("Failed to marshal event", "error", err)
			continue
		}
		fmt.Fprintf(w, "event: %s\n", event.Type)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	h.logger.Info("Streaming completed", "session_id", sess.ID)
}

// handleSessionHistory returns the session transcript, oldest first.
func (h *Handler) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authorizedSession(w, r)
	if !ok {
		return
	}

	entries := sess.Bridge.History()
	if entries == nil {
		entries = []bridge.HistoryEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": sess.ID,
		"history":    entries,
	})
}

// handleSessionMemory returns the session memory slots.
func (h *Handler) handleSessionMemory(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authorizedSession(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": sess.ID,
		"memory":     sess.Bridge.Memory().Snapshot(),
	})
}

// handleSessionClear drops the transcript and starts a fresh thread.
func (h *Handler) handleSessionClear(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authorizedSession(w, r)
	if !ok {
		return
	}

	if err := sess.Bridge.Clear(r.Context()); err != nil {
		h.logger.Error("Failed to clear session", "session_id", sess.ID, "error", err)
		h.writeError(w, http.StatusBadGateway, "clear_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": sess.ID,
		"thread_id":  sess.Bridge.ThreadID(),
	})
}

// handleDeleteSession forgets the session. The upstream thread is
// abandoned, not deleted.
func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authorizedSession(w, r)
	if !ok {
		return
	}

	h.sessions.Delete(sess.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"id":      sess.ID,
		"deleted": true,
	})
}

// authorizedSession loads the path session and checks it belongs to the
// requesting consumer. Writes the error response itself on failure.
func (h *Handler) authorizedSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sessionID := r.PathValue("id")
	sess, ok := h.sessions.Get(sessionID)
	if !ok {
		h.writeError(w, http.StatusNotFound, "session_not_found", fmt.Sprintf("no session %s", sessionID))
		return nil, false
	}
	if key := r.Header.Get(consumerKeyHeader); key != sess.ConsumerKey {
		h.writeError(w, http.StatusForbidden, "wrong_consumer", "session belongs to a different consumer")
		return nil, false
	}
	return sess, true
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"type":    errType,
			"message": message,
		},
	})
}

// generateID generates a unique ID with a prefix
func generateID(prefix string) string {
	b := make([]byte, 16)
	rand.Read(b)
	return prefix + hex.EncodeToString(b)
}
