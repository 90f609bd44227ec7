// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/solconnect/assistants-gw/pkg/core/api"
	"github.com/solconnect/assistants-gw/pkg/core/bridge"
	"github.com/solconnect/assistants-gw/pkg/core/config"
	"github.com/solconnect/assistants-gw/pkg/core/orchestrator"
	"github.com/solconnect/assistants-gw/pkg/observability/logging"
	"github.com/solconnect/assistants-gw/pkg/tenant"
	"github.com/solconnect/assistants-gw/pkg/tools"
)

// Session is one live conversation bound to a consumer.
type Session struct {
	ID          string    `json:"id"`
	ConsumerKey string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`

	Bridge *bridge.Bridge `json:"-"`
}

// ClientFactory builds the upstream client for a resolved credential.
// Overridable in tests to point sessions at a mock.
type ClientFactory func(apiKey string) (api.AssistantsClient, api.CompletionsClient)

// SessionStore tracks live conversations in memory. Sessions are lost on
// restart together with their history and session memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	resolver  tenant.Resolver
	registry  *tools.Registry
	logger    *logging.Logger
	upstream  config.UpstreamConfig
	newClient ClientFactory
}

// NewSessionStore creates a store that builds one bridge per session,
// with the upstream credential resolved from the session's consumer key.
func NewSessionStore(resolver tenant.Resolver, registry *tools.Registry, logger *logging.Logger, upstream config.UpstreamConfig) *SessionStore {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &SessionStore{
		sessions: make(map[string]*Session),
		resolver: resolver,
		registry: registry,
		logger:   logger,
		upstream: upstream,
	}
	s.newClient = func(apiKey string) (api.AssistantsClient, api.CompletionsClient) {
		return api.NewClient(upstream.Endpoint, apiKey, upstream.HTTPTimeout),
			api.NewOpenAICompletionsClient(upstream.Endpoint, apiKey)
	}
	return s
}

// GetOrCreate returns the session with the given id, creating it when the
// id is empty or unknown. Creation resolves the consumer's upstream
// credential; an unknown consumer key fails.
func (s *SessionStore) GetOrCreate(ctx context.Context, sessionID, consumerKey string) (*Session, error) {
	if sessionID != "" {
		s.mu.RLock()
		sess, ok := s.sessions[sessionID]
		s.mu.RUnlock()
		if ok {
			if sess.ConsumerKey != consumerKey {
				return nil, fmt.Errorf("session %s belongs to a different consumer", sessionID)
			}
			return sess, nil
		}
	}

	apiKey, err := s.resolver.ResolveAPIKey(ctx, consumerKey)
	if err != nil {
		return nil, err
	}

	client, completions := s.newClient(apiKey)
	orch := orchestrator.New(client, s.registry, s.logger, orchestrator.Config{
		PollInterval: s.upstream.PollInterval,
		RunTimeout:   s.upstream.RunTimeout,
	})

	sess := &Session{
		ID:          generateID("sess_"),
		ConsumerKey: consumerKey,
		CreatedAt:   time.Now().UTC(),
		Bridge: bridge.New(client, completions, orch, s.registry, s.logger, bridge.Config{
			AssistantID: s.upstream.AssistantID,
			ConsumerKey: consumerKey,
		}),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("session created", "session_id", sess.ID)
	return sess, nil
}

// Get returns an existing session.
func (s *SessionStore) Get(sessionID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	return sess, ok
}

// Delete removes a session. The upstream thread is abandoned.
func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	return true
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
