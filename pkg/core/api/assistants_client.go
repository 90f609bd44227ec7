// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// betaHeader must accompany every assistants API call.
const betaHeader = "assistants=v2"

// AssistantsClient is a thin request/response wrapper around the upstream
// assistants REST API. One method per upstream operation; no retries.
type AssistantsClient interface {
	RetrieveAssistant(ctx context.Context, assistantID string) (*Assistant, error)
	CreateThread(ctx context.Context, req *ThreadRequest) (*Thread, error)
	DeleteThread(ctx context.Context, threadID string) (*Deleted, error)
	CreateMessage(ctx context.Context, threadID string, req *MessageRequest) (*ThreadMessage, error)
	ListMessages(ctx context.Context, threadID string, limit int, order string) (*MessageList, error)
	CreateRun(ctx context.Context, threadID string, req *RunRequest) (*Run, error)
	GetRun(ctx context.Context, threadID, runID string) (*Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error)
	CancelRun(ctx context.Context, threadID, runID string) (*Run, error)
}

// Client implements AssistantsClient against an OpenAI-compatible backend.
// The credential is bound at construction; the tenant resolver hands out
// one client per consumer.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an assistants API client. baseURL defaults to the
// public OpenAI endpoint when empty.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RetrieveAssistant fetches the assistant resource, verifying it exists.
func (c *Client) RetrieveAssistant(ctx context.Context, assistantID string) (*Assistant, error) {
	var out Assistant
	if err := c.do(ctx, "retrieve_assistant", http.MethodGet, "/assistants/"+assistantID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateThread creates a conversation thread, optionally seeded with
// messages.
func (c *Client) CreateThread(ctx context.Context, req *ThreadRequest) (*Thread, error) {
	if req == nil {
		req = &ThreadRequest{}
	}
	var out Thread
	if err := c.do(ctx, "create_thread", http.MethodPost, "/threads", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteThread removes a thread upstream.
func (c *Client) DeleteThread(ctx context.Context, threadID string) (*Deleted, error) {
	var out Deleted
	if err := c.do(ctx, "delete_thread", http.MethodDelete, "/threads/"+threadID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMessage appends a message to a thread.
func (c *Client) CreateMessage(ctx context.Context, threadID string, req *MessageRequest) (*ThreadMessage, error) {
	var out ThreadMessage
	if err := c.do(ctx, "create_message", http.MethodPost, "/threads/"+threadID+"/messages", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages lists thread messages. order is "asc" or "desc"; empty
// keeps the upstream default (newest first).
func (c *Client) ListMessages(ctx context.Context, threadID string, limit int, order string) (*MessageList, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if order != "" {
		q.Set("order", order)
	}
	path := "/threads/" + threadID + "/messages"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out MessageList
	if err := c.do(ctx, "list_messages", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRun starts a run against a thread.
func (c *Client) CreateRun(ctx context.Context, threadID string, req *RunRequest) (*Run, error) {
	var out Run
	if err := c.do(ctx, "create_run", http.MethodPost, "/threads/"+threadID+"/runs", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRun fetches the current run state.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var out Run
	if err := c.do(ctx, "get_run", http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitToolOutputs answers every pending tool call of a requires_action
// run in a single batch. Partial submissions are rejected upstream.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error) {
	body := struct {
		ToolOutputs []ToolOutput `json:"tool_outputs"`
	}{ToolOutputs: outputs}
	var out Run
	path := "/threads/" + threadID + "/runs/" + runID + "/submit_tool_outputs"
	if err := c.do(ctx, "submit_tool_outputs", http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelRun requests upstream cancellation of an in-flight run. The
// orchestrator never calls this on timeout; it is for explicit caller
// cancellation only.
func (c *Client) CancelRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var out Run
	path := "/threads/" + threadID + "/runs/" + runID + "/cancel"
	if err := c.do(ctx, "cancel_run", http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// upstreamErrorBody is the error envelope the upstream API returns.
type upstreamErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// do issues one HTTP request and decodes the response into out.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("OpenAI-Beta", betaHeader)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		var envelope upstreamErrorBody
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error.Message != "" {
			msg = envelope.Error.Message
		}
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}
