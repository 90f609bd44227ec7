// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools implements the function tools exposed to the assistant
// and the registry that dispatches requested tool calls.
package tools

import (
	"context"

	"github.com/solconnect/assistants-gw/pkg/core/api"
)

// Definition describes a tool to the model.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any

	// FallbackField, when set, receives the raw argument string if the
	// model emits arguments that are not a JSON object.
	FallbackField string
}

// Schema renders the definition in the wire shape the upstream API expects.
func (d Definition) Schema() api.Tool {
	return api.Tool{
		Type: "function",
		Function: api.ToolFunction{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
		},
	}
}

// Tool is one function the assistant can call. Execute returns the text
// placed in the tool output; an error is textualized by the registry, it
// never aborts the run.
type Tool interface {
	Definition() Definition
	Execute(ctx context.Context, args Arguments) (string, error)
}

// CallContext carries per-conversation identifiers to tools that need
// them, such as the Workato relay headers.
type CallContext struct {
	ConsumerKey string
	ThreadID    string
}

type callContextKey struct{}

// WithCallContext attaches conversation identifiers for the duration of
// a dispatch.
func WithCallContext(ctx context.Context, cc CallContext) context.Context {
	return context.WithValue(ctx, callContextKey{}, cc)
}

// CallContextFrom returns the attached CallContext, or the zero value.
func CallContextFrom(ctx context.Context) CallContext {
	cc, _ := ctx.Value(callContextKey{}).(CallContext)
	return cc
}

// objectSchema builds the JSON schema for a tool taking the given
// properties, with the listed required fields.
func objectSchema(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
