// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/solconnect/assistants-gw/pkg/workato"
)

// WorkatoActionTool answers execute_workato_action calls by relaying the
// requested action to the configured Workato webhook.
type WorkatoActionTool struct {
	relay *workato.Relay
}

// NewWorkatoActionTool wraps a relay as a tool.
func NewWorkatoActionTool(relay *workato.Relay) *WorkatoActionTool {
	return &WorkatoActionTool{relay: relay}
}

// Definition implements Tool.
func (t *WorkatoActionTool) Definition() Definition {
	return Definition{
		Name:        "execute_workato_action",
		Description: "Execute an action in a connected business system (CRM, ticketing, messaging) through the automation platform.",
		Parameters: objectSchema(map[string]any{
			"action_type": map[string]any{
				"type":        "string",
				"description": "The action to perform, e.g. search_contact or create_ticket",
			},
			"system": map[string]any{
				"type":        "string",
				"description": "The target system, e.g. salesforce or zendesk",
			},
			"payload": map[string]any{
				"type":        "object",
				"description": "Action parameters as key/value pairs",
			},
		}, "action_type"),
		FallbackField: "action_type",
	}
}

// Execute implements Tool.
func (t *WorkatoActionTool) Execute(ctx context.Context, args Arguments) (string, error) {
	actionType := args.StringOr("action_type", args.String("type"))
	if actionType == "" {
		return "Error: execute_workato_action requires an action_type.", nil
	}

	rawPayload := args["payload"]
	if rawPayload == nil {
		// Some models emit the payload as a pre-serialized string.
		rawPayload = args["payload_json"]
	}
	payload := normalizePayload(actionType, rawPayload)
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	cc := CallContextFrom(ctx)
	resp, err := t.relay.Forward(ctx, cc.ConsumerKey, cc.ThreadID, &workato.ActionRequest{
		ActionType: actionType,
		System:     args.StringOr("system", ""),
		Payload:    string(payloadJSON),
		Schema:     "{}",
	})
	if err != nil {
		return "", err
	}
	if resp == "" {
		return fmt.Sprintf("Action %s submitted.", actionType), nil
	}
	return resp, nil
}

// normalizePayload coerces the payload argument to a map and applies
// per-action field rewrites the receiving recipes expect. search_contact
// recipes read contact_name, but models routinely emit name.
func normalizePayload(actionType string, raw any) map[string]any {
	payload := map[string]any{}
	switch v := raw.(type) {
	case map[string]any:
		for k, val := range v {
			payload[k] = val
		}
	case string:
		if err := json.Unmarshal([]byte(v), &payload); err != nil {
			payload = map[string]any{"value": v}
		}
	}

	if actionType == "search_contact" {
		if name, ok := payload["name"]; ok {
			if _, exists := payload["contact_name"]; !exists {
				payload["contact_name"] = name
			}
			delete(payload, "name")
		}
	}
	return payload
}
