// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package api

// Wire types for the upstream assistants API. Field sets are trimmed to
// what the gateway reads; unknown response fields are ignored on decode.

// RunStatus is the lifecycle state of a run as reported upstream.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusExpired        RunStatus = "expired"
	RunStatusIncomplete     RunStatus = "incomplete"
)

// Terminal reports whether the status is final. A terminal run is never
// polled again.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired, RunStatusIncomplete:
		return true
	}
	return false
}

// Assistant is the upstream assistant resource.
type Assistant struct {
	ID           string `json:"id"`
	Object       string `json:"object"`
	Name         string `json:"name"`
	Model        string `json:"model"`
	Instructions string `json:"instructions"`
}

// Thread is an opaque server-side conversation container.
type Thread struct {
	ID        string            `json:"id"`
	Object    string            `json:"object"`
	CreatedAt int64             `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// MessageText holds the text portion of a message content block.
type MessageText struct {
	Value string `json:"value"`
}

// MessageContent is one content block of a thread message.
type MessageContent struct {
	Type string       `json:"type"`
	Text *MessageText `json:"text,omitempty"`
}

// ThreadMessage is a message appended to a thread.
type ThreadMessage struct {
	ID        string           `json:"id"`
	Object    string           `json:"object"`
	CreatedAt int64            `json:"created_at"`
	ThreadID  string           `json:"thread_id"`
	Role      string           `json:"role"`
	Content   []MessageContent `json:"content"`
}

// TextContent concatenates all text blocks of the message.
func (m *ThreadMessage) TextContent() string {
	var out string
	for _, c := range m.Content {
		if c.Type == "text" && c.Text != nil {
			out += c.Text.Value
		}
	}
	return out
}

// MessageList is a paginated message listing, newest first by default.
type MessageList struct {
	Object  string          `json:"object"`
	Data    []ThreadMessage `json:"data"`
	FirstID string          `json:"first_id"`
	LastID  string          `json:"last_id"`
	HasMore bool            `json:"has_more"`
}

// ToolFunction describes a callable function exposed to the model.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Tool is the schema shape the upstream API expects:
// {"type":"function","function":{...}}.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolCallFunction is the function invocation requested by the model.
// Arguments is an opaque string, conventionally JSON.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCallRequest is one pending tool call from a requires_action run.
type ToolCallRequest struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolOutput answers one ToolCallRequest.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// SubmitToolOutputsDetail lists the tool calls a run is waiting on.
type SubmitToolOutputsDetail struct {
	ToolCalls []ToolCallRequest `json:"tool_calls"`
}

// RequiredAction is present while a run is in requires_action.
type RequiredAction struct {
	Type              string                   `json:"type"`
	SubmitToolOutputs *SubmitToolOutputsDetail `json:"submit_tool_outputs,omitempty"`
}

// RunError is the upstream-reported failure detail of a terminal run.
type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Run is one attempt to produce the next assistant turn on a thread.
type Run struct {
	ID             string          `json:"id"`
	Object         string          `json:"object"`
	CreatedAt      int64           `json:"created_at"`
	ThreadID       string          `json:"thread_id"`
	AssistantID    string          `json:"assistant_id"`
	Status         RunStatus       `json:"status"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
	LastError      *RunError       `json:"last_error,omitempty"`
	StartedAt      int64           `json:"started_at,omitempty"`
	CompletedAt    int64           `json:"completed_at,omitempty"`
}

// PendingToolCalls returns the tool calls a requires_action run is waiting
// on, or nil for any other state.
func (r *Run) PendingToolCalls() []ToolCallRequest {
	if r.Status != RunStatusRequiresAction || r.RequiredAction == nil || r.RequiredAction.SubmitToolOutputs == nil {
		return nil
	}
	return r.RequiredAction.SubmitToolOutputs.ToolCalls
}

// RunRequest creates a run against a thread. An empty Tools slice means
// the assistant's own tool configuration applies.
type RunRequest struct {
	AssistantID  string `json:"assistant_id"`
	Instructions string `json:"instructions,omitempty"`
	Tools        []Tool `json:"tools,omitempty"`
}

// MessageRequest appends a message to a thread.
type MessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ThreadRequest creates a thread, optionally seeded with messages.
type ThreadRequest struct {
	Messages []MessageRequest  `json:"messages,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Deleted is the upstream deletion acknowledgement.
type Deleted struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}
