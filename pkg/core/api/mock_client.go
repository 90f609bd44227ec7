// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"sync"
)

// MockAssistantsClient is a scripted in-memory implementation for tests.
// The Script holds the run snapshots observed by successive status
// observations: CreateRun returns Script[0], each later observation
// advances by one and the last entry repeats.
type MockAssistantsClient struct {
	mu  sync.Mutex
	pos int

	Script   []Run
	Messages []ThreadMessage

	// Recorded calls, in order.
	CreatedThreads  int
	CreatedMessages []MessageRequest
	CreatedRuns     []RunRequest
	Submitted       [][]ToolOutput
	CancelledRuns   []string
	DeletedThreads  []string

	// Error injection. GetRunErrs maps observation index (0-based, counting
	// GetRun calls only) to an error returned instead of a snapshot.
	CreateThreadErr error
	CreateRunErr    error
	SubmitErr       error
	ListMessagesErr error
	GetRunErrs      map[int]error

	getRunCalls int
}

// NewMockAssistantsClient creates a mock whose run completes immediately.
func NewMockAssistantsClient() *MockAssistantsClient {
	return &MockAssistantsClient{
		Script: []Run{{ID: "run_mock", Status: RunStatusCompleted}},
		Messages: []ThreadMessage{
			{
				ID:   "msg_mock",
				Role: "assistant",
				Content: []MessageContent{
					{Type: "text", Text: &MessageText{Value: "mock reply"}},
				},
			},
		},
	}
}

func (m *MockAssistantsClient) next(threadID string) Run {
	if len(m.Script) == 0 {
		return Run{ID: "run_mock", ThreadID: threadID, Status: RunStatusCompleted}
	}
	run := m.Script[m.pos]
	if m.pos < len(m.Script)-1 {
		m.pos++
	}
	if run.ID == "" {
		run.ID = "run_mock"
	}
	if run.ThreadID == "" {
		run.ThreadID = threadID
	}
	return run
}

// RetrieveAssistant implements AssistantsClient.
func (m *MockAssistantsClient) RetrieveAssistant(_ context.Context, assistantID string) (*Assistant, error) {
	return &Assistant{ID: assistantID, Object: "assistant", Name: "mock assistant"}, nil
}

// CreateThread implements AssistantsClient.
func (m *MockAssistantsClient) CreateThread(_ context.Context, _ *ThreadRequest) (*Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateThreadErr != nil {
		return nil, m.CreateThreadErr
	}
	m.CreatedThreads++
	return &Thread{ID: fmt.Sprintf("thread_mock_%d", m.CreatedThreads), Object: "thread"}, nil
}

// DeleteThread implements AssistantsClient.
func (m *MockAssistantsClient) DeleteThread(_ context.Context, threadID string) (*Deleted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletedThreads = append(m.DeletedThreads, threadID)
	return &Deleted{ID: threadID, Object: "thread.deleted", Deleted: true}, nil
}

// CreateMessage implements AssistantsClient.
func (m *MockAssistantsClient) CreateMessage(_ context.Context, threadID string, req *MessageRequest) (*ThreadMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatedMessages = append(m.CreatedMessages, *req)
	return &ThreadMessage{
		ID:       fmt.Sprintf("msg_mock_%d", len(m.CreatedMessages)),
		ThreadID: threadID,
		Role:     req.Role,
		Content:  []MessageContent{{Type: "text", Text: &MessageText{Value: req.Content}}},
	}, nil
}

// ListMessages implements AssistantsClient.
func (m *MockAssistantsClient) ListMessages(_ context.Context, threadID string, _ int, _ string) (*MessageList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListMessagesErr != nil {
		return nil, m.ListMessagesErr
	}
	data := make([]ThreadMessage, len(m.Messages))
	copy(data, m.Messages)
	for i := range data {
		data[i].ThreadID = threadID
	}
	return &MessageList{Object: "list", Data: data}, nil
}

// CreateRun implements AssistantsClient.
func (m *MockAssistantsClient) CreateRun(_ context.Context, threadID string, req *RunRequest) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateRunErr != nil {
		return nil, m.CreateRunErr
	}
	m.CreatedRuns = append(m.CreatedRuns, *req)
	run := m.next(threadID)
	return &run, nil
}

// GetRun implements AssistantsClient.
func (m *MockAssistantsClient) GetRun(_ context.Context, threadID, _ string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := m.getRunCalls
	m.getRunCalls++
	if err, ok := m.GetRunErrs[call]; ok {
		return nil, err
	}
	run := m.next(threadID)
	return &run, nil
}

// SubmitToolOutputs implements AssistantsClient. The returned run keeps
// its last observed status; callers must re-poll to see progress.
func (m *MockAssistantsClient) SubmitToolOutputs(_ context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubmitErr != nil {
		return nil, m.SubmitErr
	}
	recorded := make([]ToolOutput, len(outputs))
	copy(recorded, outputs)
	m.Submitted = append(m.Submitted, recorded)
	return &Run{ID: runID, ThreadID: threadID, Status: RunStatusRequiresAction}, nil
}

// CancelRun implements AssistantsClient.
func (m *MockAssistantsClient) CancelRun(_ context.Context, threadID, runID string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelledRuns = append(m.CancelledRuns, runID)
	return &Run{ID: runID, ThreadID: threadID, Status: RunStatusCancelling}, nil
}
