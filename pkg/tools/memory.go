// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
)

// MemoryStore receives session memory updates from the
// update_session_memory tool. Implemented by the conversation bridge.
type MemoryStore interface {
	// UpdateSlot stores value under the named slot. Returns false when
	// the slot name is not recognized.
	UpdateSlot(name string, value any) bool
}

// SessionMemoryTool lets the assistant persist facts about the current
// conversation into its session memory slots.
type SessionMemoryTool struct {
	store MemoryStore
}

// NewSessionMemoryTool wraps a memory store as a tool. Each conversation
// gets its own instance bound to that conversation's store.
func NewSessionMemoryTool(store MemoryStore) *SessionMemoryTool {
	return &SessionMemoryTool{store: store}
}

// Definition implements Tool.
func (t *SessionMemoryTool) Definition() Definition {
	return Definition{
		Name:        "update_session_memory",
		Description: "Record a fact learned about the user or their organization, such as their name, company, or automation goals.",
		Parameters: objectSchema(map[string]any{
			"field": map[string]any{
				"type":        "string",
				"description": "The memory slot to update",
				"enum": []string{
					"user_name", "user_email", "company_name", "departments",
					"tools_used", "top_pain_points", "current_automation",
					"automation_goals", "key_metrics", "has_automation_owner",
				},
			},
			"value": map[string]any{
				"description": "The value to store",
			},
		}, "field", "value"),
		FallbackField: "field",
	}
}

// Execute implements Tool.
func (t *SessionMemoryTool) Execute(_ context.Context, args Arguments) (string, error) {
	field := args.StringOr("field", args.String("key"))
	if field == "" {
		return "Error: update_session_memory requires a field name.", nil
	}

	value, ok := args["value"]
	if !ok {
		return fmt.Sprintf("Error: no value provided for %s.", field), nil
	}

	if !t.store.UpdateSlot(field, value) {
		return fmt.Sprintf("Error: %q is not a known memory field.", field), nil
	}
	return fmt.Sprintf("Recorded %s.", field), nil
}
