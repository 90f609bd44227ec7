// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package workato forwards action payloads to a Workato webhook endpoint.
package workato

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Config for the webhook relay.
type Config struct {
	EndpointURL string
	APIToken    string
}

// ActionRequest is the payload shape the Workato recipe expects.
type ActionRequest struct {
	ActionType string `json:"action_type"`
	System     string `json:"system"`
	Payload    string `json:"payload"` // JSON string
	Schema     string `json:"schema"`  // JSON string, usually "{}"
}

// Relay posts action payloads to the configured endpoint. Fire-and-forget
// beyond the 2xx check: the response body is returned verbatim for the
// model to read, but nothing is persisted.
type Relay struct {
	cfg        Config
	httpClient *http.Client
}

// NewRelay creates a relay for the configured endpoint.
func NewRelay(cfg Config) *Relay {
	return &Relay{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// Forward posts the action to the webhook. consumerKey and threadID are
// propagated as headers so the receiving recipe can correlate the event.
func (r *Relay) Forward(ctx context.Context, consumerKey, threadID string, action *ActionRequest) (string, error) {
	body, err := json.Marshal(action)
	if err != nil {
		return "", fmt.Errorf("marshal action: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.EndpointURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-TOKEN", r.cfg.APIToken)
	if consumerKey != "" {
		req.Header.Set("X-Solomon-Consumer-Key", consumerKey)
	}
	if threadID != "" {
		req.Header.Set("X-Thread-ID", threadID)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("workato request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("workato returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return string(respBody), nil
}
