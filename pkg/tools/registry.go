// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"

	"github.com/solconnect/assistants-gw/pkg/core/api"
	"github.com/solconnect/assistants-gw/pkg/observability/logging"
)

// Registry holds the tool table for a deployment. The table is built
// explicitly at startup; tools never self-register through globals.
type Registry struct {
	tools  map[string]Tool
	order  []string
	logger *logging.Logger
}

// NewRegistry builds a registry from an explicit tool list. Later tools
// replace earlier ones with the same name.
func NewRegistry(logger *logging.Logger, tools ...Tool) *Registry {
	if logger == nil {
		logger = logging.Discard()
	}
	r := &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
	for _, t := range tools {
		r.add(t)
	}
	return r
}

func (r *Registry) add(t Tool) {
	name := t.Definition().Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// With returns a copy of the registry extended with additional tools.
// Used to attach per-conversation tools to a shared base table.
func (r *Registry) With(extra ...Tool) *Registry {
	derived := &Registry{
		tools:  make(map[string]Tool, len(r.tools)+len(extra)),
		order:  append([]string(nil), r.order...),
		logger: r.logger,
	}
	for name, t := range r.tools {
		derived.tools[name] = t
	}
	for _, t := range extra {
		derived.add(t)
	}
	return derived
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// List returns the registered tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Schemas renders every registered tool in the upstream wire shape.
func (r *Registry) Schemas() []api.Tool {
	schemas := make([]api.Tool, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, r.tools[name].Definition().Schema())
	}
	return schemas
}

// Dispatch executes one requested tool call and always produces exactly
// one output for it. Unknown tools and execution failures become error
// text in the output so the run can continue.
func (r *Registry) Dispatch(ctx context.Context, call api.ToolCallRequest) api.ToolOutput {
	name := call.Function.Name

	tool, ok := r.Get(name)
	if !ok {
		r.logger.Warn("requested tool is not registered", "tool", name, "call_id", call.ID)
		return api.ToolOutput{
			ToolCallID: call.ID,
			Output:     fmt.Sprintf("Error: tool %q is not available.", name),
		}
	}

	args := Coerce(call.Function.Arguments, tool.Definition().FallbackField)

	out, err := r.execute(ctx, tool, args)
	if err != nil {
		r.logger.Warn("tool execution failed", "tool", name, "call_id", call.ID, "error", err)
		return api.ToolOutput{
			ToolCallID: call.ID,
			Output:     fmt.Sprintf("Error executing %s: %v", name, err),
		}
	}

	r.logger.Debug("tool executed", "tool", name, "call_id", call.ID, "output_len", len(out))
	return api.ToolOutput{ToolCallID: call.ID, Output: out}
}

// execute isolates tool panics so a misbehaving tool cannot take down
// the poll loop.
func (r *Registry) execute(ctx context.Context, tool Tool, args Arguments) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return tool.Execute(ctx, args)
}
