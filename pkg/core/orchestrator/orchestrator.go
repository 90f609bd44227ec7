// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator drives assistant runs through their poll loop,
// executing requested tool calls until the run reaches a terminal state.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/solconnect/assistants-gw/pkg/core/api"
	"github.com/solconnect/assistants-gw/pkg/observability/logging"
	"github.com/solconnect/assistants-gw/pkg/tools"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultRunTimeout   = 300 * time.Second
)

// Config tunes the poll loop.
type Config struct {
	// PollInterval is the delay between status polls. Defaults to 5s.
	PollInterval time.Duration
	// RunTimeout is the wall-clock budget for one turn, including all
	// tool-call rounds. Defaults to 300s.
	RunTimeout time.Duration
}

// Orchestrator executes one conversational turn at a time against the
// upstream assistants API.
type Orchestrator struct {
	client       api.AssistantsClient
	registry     *tools.Registry
	logger       *logging.Logger
	pollInterval time.Duration
	runTimeout   time.Duration
}

// New creates an orchestrator. registry may be nil when no tools are
// exposed.
func New(client api.AssistantsClient, registry *tools.Registry, logger *logging.Logger, cfg Config) *Orchestrator {
	if logger == nil {
		logger = logging.Discard()
	}
	if registry == nil {
		registry = tools.NewRegistry(logger)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = defaultRunTimeout
	}
	return &Orchestrator{
		client:       client,
		registry:     registry,
		logger:       logger,
		pollInterval: cfg.PollInterval,
		runTimeout:   cfg.RunTimeout,
	}
}

// TurnRequest is one user turn. When ThreadID is empty a new thread is
// created. When Tools is empty the registry's full schema set is
// advertised on the run.
type TurnRequest struct {
	ThreadID     string
	AssistantID  string
	Message      string
	Instructions string
	Tools        []api.Tool

	// Registry overrides the orchestrator's tool table for this turn.
	// Used to attach per-conversation tools such as session memory.
	Registry *tools.Registry

	// ConsumerKey is propagated to tools through the call context.
	ConsumerKey string
}

// TurnResult is the outcome of a completed turn.
type TurnResult struct {
	ThreadID string
	RunID    string
	Status   api.RunStatus
	Reply    string
}

// RunTurn appends the user message, creates a run, and drives it to
// completion. Tool calls requested along the way are dispatched through
// the registry; every requested call receives exactly one output.
func (o *Orchestrator) RunTurn(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	registry := req.Registry
	if registry == nil {
		registry = o.registry
	}

	threadID := req.ThreadID
	if threadID == "" {
		thread, err := o.client.CreateThread(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("create thread: %w", err)
		}
		threadID = thread.ID
		o.logger.Debug("created thread", "thread_id", threadID)
	}

	if req.Message != "" {
		_, err := o.client.CreateMessage(ctx, threadID, &api.MessageRequest{
			Role:    "user",
			Content: req.Message,
		})
		if err != nil {
			return nil, fmt.Errorf("append message: %w", err)
		}
	}

	runTools := req.Tools
	if len(runTools) == 0 {
		runTools = registry.Schemas()
	}

	run, err := o.client.CreateRun(ctx, threadID, &api.RunRequest{
		AssistantID:  req.AssistantID,
		Instructions: req.Instructions,
		Tools:        runTools,
	})
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	o.logger.Info("run created", "thread_id", threadID, "run_id", run.ID, "status", run.Status)

	toolCtx := tools.WithCallContext(ctx, tools.CallContext{
		ConsumerKey: req.ConsumerKey,
		ThreadID:    threadID,
	})

	run, err = o.pollToCompletion(ctx, toolCtx, registry, threadID, run)
	if err != nil {
		return nil, err
	}

	result := &TurnResult{
		ThreadID: threadID,
		RunID:    run.ID,
		Status:   run.Status,
	}

	if run.Status != api.RunStatusCompleted {
		return nil, &RunFailedError{RunID: run.ID, Status: run.Status, LastError: run.LastError}
	}

	reply, err := o.latestAssistantReply(ctx, threadID)
	if err != nil {
		return nil, err
	}
	result.Reply = reply
	return result, nil
}

// pollToCompletion drives one run to a terminal status. The status
// returned by CreateRun is inspected before the first sleep; the status
// returned by SubmitToolOutputs is never trusted, the next poll decides.
func (o *Orchestrator) pollToCompletion(ctx, toolCtx context.Context, registry *tools.Registry, threadID string, run *api.Run) (*api.Run, error) {
	deadline := time.Now().Add(o.runTimeout)

	for {
		if run.Status.Terminal() {
			return run, nil
		}

		if run.Status == api.RunStatusRequiresAction {
			if err := o.serviceToolCalls(toolCtx, registry, threadID, run); err != nil {
				return nil, err
			}
			// The submit response status is not authoritative. Mark the
			// local snapshot in_progress so a failed poll cannot re-run
			// the same tool calls; the next successful poll decides.
			serviced := *run
			serviced.Status = api.RunStatusInProgress
			serviced.RequiredAction = nil
			run = &serviced
		}

		if time.Now().After(deadline) {
			o.logger.Warn("run timed out", "thread_id", threadID, "run_id", run.ID, "budget", o.runTimeout)
			return nil, &RunTimeoutError{RunID: run.ID, Budget: o.runTimeout}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(o.pollInterval):
		}

		next, err := o.client.GetRun(ctx, threadID, run.ID)
		if err != nil {
			if transientPollError(err) {
				o.logger.Warn("run poll failed, retrying", "thread_id", threadID, "run_id", run.ID, "error", err)
				continue
			}
			return nil, fmt.Errorf("poll run: %w", err)
		}

		if !validTransition(run.Status, next.Status) {
			o.logger.Warn("run regressed to an earlier status",
				"thread_id", threadID, "run_id", run.ID, "from", run.Status, "to", next.Status)
		}
		run = next
	}
}

// serviceToolCalls executes every pending tool call of a requires_action
// run and submits the batch. Exactly one output is produced per request:
// unknown tools and failures become error text rather than missing
// entries.
func (o *Orchestrator) serviceToolCalls(toolCtx context.Context, registry *tools.Registry, threadID string, run *api.Run) error {
	calls := run.PendingToolCalls()
	if len(calls) == 0 {
		return fmt.Errorf("run %s requires action but lists no tool calls", run.ID)
	}

	o.logger.Info("servicing tool calls", "thread_id", threadID, "run_id", run.ID, "count", len(calls))

	outputs := make([]api.ToolOutput, 0, len(calls))
	for _, call := range calls {
		outputs = append(outputs, registry.Dispatch(toolCtx, call))
	}

	if _, err := o.client.SubmitToolOutputs(toolCtx, threadID, run.ID, outputs); err != nil {
		return fmt.Errorf("submit tool outputs: %w", err)
	}
	return nil
}

// latestAssistantReply returns the text of the newest assistant message
// on the thread, or "" when the run produced none.
func (o *Orchestrator) latestAssistantReply(ctx context.Context, threadID string) (string, error) {
	list, err := o.client.ListMessages(ctx, threadID, 20, "desc")
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}
	for i := range list.Data {
		if list.Data[i].Role == "assistant" {
			return list.Data[i].TextContent(), nil
		}
	}
	return "", nil
}

// Cancel requests cancellation of an in-flight run. The upstream moves
// the run through cancelling to cancelled asynchronously.
func (o *Orchestrator) Cancel(ctx context.Context, threadID, runID string) error {
	if _, err := o.client.CancelRun(ctx, threadID, runID); err != nil {
		return fmt.Errorf("cancel run: %w", err)
	}
	return nil
}

// transientPollError reports whether a poll failure should be retried on
// the next tick. Transport errors and upstream 5xx responses are
// transient; 4xx responses are not.
func transientPollError(err error) bool {
	var te *api.TransportError
	if errors.As(err, &te) {
		return true
	}
	var ue *api.UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode >= 500
	}
	return false
}
