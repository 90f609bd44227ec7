// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"nhooyr.io/websocket"

	"github.com/solconnect/assistants-gw/pkg/tenant"
)

// wsClientMessage is one inbound frame on the chat socket.
type wsClientMessage struct {
	Type    string `json:"type"` // "message" or "clear"
	Message string `json:"message,omitempty"`
}

// wsServerMessage is one outbound frame. Stream events are forwarded
// with their bridge-level type; session_id is sent once on connect.
type wsServerMessage struct {
	Type      string `json:"type"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	ThreadID  string `json:"thread_id,omitempty"`
}

// handleChatWS runs a conversation over a websocket. The session id and
// consumer key arrive as query parameter and header (or query fallback,
// for browser clients that cannot set headers).
func (h *Handler) handleChatWS(w http.ResponseWriter, r *http.Request) {
	consumerKey := r.Header.Get(consumerKeyHeader)
	if consumerKey == "" {
		consumerKey = r.URL.Query().Get("consumer_key")
	}
	if consumerKey == "" {
		h.writeError(w, http.StatusUnauthorized, "missing_consumer_key", "consumer key is required")
		return
	}

	sess, err := h.sessions.GetOrCreate(r.Context(), r.URL.Query().Get("session_id"), consumerKey)
	if err != nil {
		if errors.Is(err, tenant.ErrConsumerNotFound) {
			h.writeError(w, http.StatusForbidden, "unknown_consumer", "consumer key is not registered")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "session_error", err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "server error")

	ctx := r.Context()
	conn.SetReadLimit(64 * 1024)

	h.wsSend(ctx, conn, wsServerMessage{Type: "session", SessionID: sess.ID})

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				h.logger.Debug("websocket closed", "session_id", sess.ID, "error", err)
			}
			return
		}

		var msg wsClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.wsSend(ctx, conn, wsServerMessage{Type: "error", Content: "invalid message format"})
			continue
		}

		switch msg.Type {
		case "message":
			if msg.Message == "" {
				h.wsSend(ctx, conn, wsServerMessage{Type: "error", Content: "message is required"})
				continue
			}
			for event := range sess.Bridge.SendStream(ctx, msg.Message) {
				h.wsSend(ctx, conn, wsServerMessage{Type: string(event.Type), Content: event.Content})
			}
		case "clear":
			if err := sess.Bridge.Clear(ctx); err != nil {
				h.wsSend(ctx, conn, wsServerMessage{Type: "error", Content: err.Error()})
				continue
			}
			h.wsSend(ctx, conn, wsServerMessage{Type: "cleared", ThreadID: sess.Bridge.ThreadID()})
		default:
			h.wsSend(ctx, conn, wsServerMessage{Type: "error", Content: "unknown message type"})
		}
	}
}

func (h *Handler) wsSend(ctx context.Context, conn *websocket.Conn, msg wsServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", "error", err)
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		h.logger.Debug("websocket write failed", "error", err)
	}
}
