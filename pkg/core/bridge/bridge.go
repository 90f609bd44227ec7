// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge manages one conversation with the upstream assistant:
// thread lifetime, bounded transcript history, session memory, and the
// sync and streaming reply paths.
package bridge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/solconnect/assistants-gw/pkg/core/api"
	"github.com/solconnect/assistants-gw/pkg/core/orchestrator"
	"github.com/solconnect/assistants-gw/pkg/observability/logging"
	"github.com/solconnect/assistants-gw/pkg/tools"
)

const (
	defaultChunkDelay      = 100 * time.Millisecond
	defaultCompletionModel = "gpt-4o"
)

// Config tunes one conversation bridge.
type Config struct {
	AssistantID  string
	ConsumerKey  string
	Instructions string

	// HistoryCapacity bounds the in-memory transcript. Defaults to 50.
	HistoryCapacity int

	// ChunkDelay is the pause between replayed fragments in SendStream.
	// Defaults to 100ms.
	ChunkDelay time.Duration

	// CompletionModel is used by the direct completions path.
	CompletionModel string
}

// Bridge is one conversation. All entry points serialize on an internal
// mutex: at most one run is in flight per thread.
type Bridge struct {
	mu          sync.Mutex
	client      api.AssistantsClient
	completions api.CompletionsClient
	orch        *orchestrator.Orchestrator
	registry    *tools.Registry
	logger      *logging.Logger
	cfg         Config

	threadID string
	history  *history
	memory   *Memory
}

// New creates a bridge. completions may be nil when the direct streaming
// path is not configured. The base registry is extended with this
// conversation's session memory tool.
func New(client api.AssistantsClient, completions api.CompletionsClient, orch *orchestrator.Orchestrator, base *tools.Registry, logger *logging.Logger, cfg Config) *Bridge {
	if logger == nil {
		logger = logging.Discard()
	}
	if base == nil {
		base = tools.NewRegistry(logger)
	}
	if cfg.ChunkDelay <= 0 {
		cfg.ChunkDelay = defaultChunkDelay
	}
	if cfg.CompletionModel == "" {
		cfg.CompletionModel = defaultCompletionModel
	}

	memory := NewMemory()
	return &Bridge{
		client:      client,
		completions: completions,
		orch:        orch,
		registry:    base.With(tools.NewSessionMemoryTool(memory)),
		logger:      logger,
		cfg:         cfg,
		history:     newHistory(cfg.HistoryCapacity),
		memory:      memory,
	}
}

// Start verifies the assistant exists and creates the conversation
// thread. Optional; Send creates the thread lazily when needed.
func (b *Bridge) Start(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.client.RetrieveAssistant(ctx, b.cfg.AssistantID); err != nil {
		return "", err
	}
	if err := b.ensureThreadLocked(ctx); err != nil {
		return "", err
	}
	return b.threadID, nil
}

func (b *Bridge) ensureThreadLocked(ctx context.Context) error {
	if b.threadID != "" {
		return nil
	}
	thread, err := b.client.CreateThread(ctx, nil)
	if err != nil {
		return err
	}
	b.threadID = thread.ID
	b.logger.Info("conversation thread created", "thread_id", b.threadID)
	return nil
}

// Send runs one synchronous turn and returns the assistant's reply.
// On failure the user message stays in the transcript and no assistant
// entry is added.
func (b *Bridge) Send(ctx context.Context, text string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sendLocked(ctx, text)
}

func (b *Bridge) sendLocked(ctx context.Context, text string) (string, error) {
	if err := b.ensureThreadLocked(ctx); err != nil {
		return "", err
	}

	b.history.append(HistoryEntry{Role: "user", Content: text})

	res, err := b.orch.RunTurn(ctx, &orchestrator.TurnRequest{
		ThreadID:     b.threadID,
		AssistantID:  b.cfg.AssistantID,
		Message:      text,
		Instructions: b.cfg.Instructions,
		Registry:     b.registry,
		ConsumerKey:  b.cfg.ConsumerKey,
	})
	if err != nil {
		return "", err
	}

	if res.Reply != "" {
		b.history.append(HistoryEntry{Role: "assistant", Content: res.Reply})
	}
	return res.Reply, nil
}

// EventType classifies stream events.
type EventType string

const (
	EventMessage EventType = "message"
	EventError   EventType = "error"
	EventDone    EventType = "done"
)

// StreamEvent is one item on a streaming reply channel.
type StreamEvent struct {
	Type    EventType `json:"type"`
	Content string    `json:"content,omitempty"`
}

// SendStream runs one turn and replays the complete reply as
// sentence-sized fragments with a short delay between them. This is
// simulated streaming: the full reply exists before the first fragment
// is sent. The channel is closed after a done or error event.
func (b *Bridge) SendStream(ctx context.Context, text string) <-chan StreamEvent {
	events := make(chan StreamEvent)

	go func() {
		defer close(events)

		b.mu.Lock()
		reply, err := b.sendLocked(ctx, text)
		b.mu.Unlock()

		if err != nil {
			events <- StreamEvent{Type: EventError, Content: err.Error()}
			return
		}

		for _, fragment := range splitFragments(reply) {
			select {
			case <-ctx.Done():
				return
			case events <- StreamEvent{Type: EventMessage, Content: fragment}:
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(b.cfg.ChunkDelay):
			}
		}
		events <- StreamEvent{Type: EventDone}
	}()

	return events
}

// CompletionStream runs one turn over the direct completions API with
// genuine token-level streaming. The thread/run flow is bypassed, so
// assistant-level tools are not available on this path; the transcript
// provides the conversation context instead.
func (b *Bridge) CompletionStream(ctx context.Context, text string) (<-chan StreamEvent, error) {
	if b.completions == nil {
		return nil, errors.New("completions streaming is not configured")
	}

	events := make(chan StreamEvent)

	go func() {
		defer close(events)

		b.mu.Lock()
		defer b.mu.Unlock()

		b.history.append(HistoryEntry{Role: "user", Content: text})

		messages := make([]api.ChatMessage, 0, b.history.len()+1)
		if b.cfg.Instructions != "" {
			messages = append(messages, api.ChatMessage{Role: "system", Content: b.cfg.Instructions})
		}
		for _, e := range b.history.snapshot() {
			messages = append(messages, api.ChatMessage{Role: e.Role, Content: e.Content})
		}

		deltas, err := b.completions.Stream(ctx, b.cfg.CompletionModel, messages)
		if err != nil {
			events <- StreamEvent{Type: EventError, Content: err.Error()}
			return
		}

		var full strings.Builder
		for delta := range deltas {
			if delta.Err != nil {
				events <- StreamEvent{Type: EventError, Content: delta.Err.Error()}
				return
			}
			if delta.Content != "" {
				full.WriteString(delta.Content)
				select {
				case <-ctx.Done():
					return
				case events <- StreamEvent{Type: EventMessage, Content: delta.Content}:
				}
			}
			if delta.Done {
				break
			}
		}

		if full.Len() > 0 {
			b.history.append(HistoryEntry{Role: "assistant", Content: full.String()})
		}
		events <- StreamEvent{Type: EventDone}
	}()

	return events, nil
}

// History returns a copy of the transcript, oldest first.
func (b *Bridge) History() []HistoryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.snapshot()
}

// Memory returns the conversation's session memory store.
func (b *Bridge) Memory() *Memory { return b.memory }

// ThreadID returns the current upstream thread id, or "" before the
// first turn.
func (b *Bridge) ThreadID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.threadID
}

// Clear drops the transcript and session memory and starts a fresh
// upstream thread. The old thread is abandoned, not deleted.
func (b *Bridge) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.history.clear()
	b.memory.Clear()

	old := b.threadID
	b.threadID = ""
	if err := b.ensureThreadLocked(ctx); err != nil {
		return err
	}
	b.logger.Info("conversation cleared", "old_thread_id", old, "thread_id", b.threadID)
	return nil
}

// splitFragments cuts a reply into sentence-sized pieces for replay.
func splitFragments(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, ". ")
	fragments := make([]string, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i < len(parts)-1 {
			part += ". "
		}
		fragments = append(fragments, part)
	}
	return fragments
}
