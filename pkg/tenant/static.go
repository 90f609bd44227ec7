// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tenant

import (
	"context"
	"sync"
)

func init() {
	Stores.Register("static", func(_ context.Context, params map[string]string) (Resolver, error) {
		return NewStaticResolver(params["api_key"]), nil
	})
}

// StaticResolver is an in-memory resolver for single-tenant deployments
// and tests. When a fallback key is set, unknown consumer keys resolve to
// it instead of failing.
type StaticResolver struct {
	mu          sync.RWMutex
	consumers   map[string]*ConsumerInfo
	fallbackKey string
}

// NewStaticResolver creates a static resolver. fallbackKey may be empty.
func NewStaticResolver(fallbackKey string) *StaticResolver {
	return &StaticResolver{
		consumers:   make(map[string]*ConsumerInfo),
		fallbackKey: fallbackKey,
	}
}

// Add registers a consumer record.
func (r *StaticResolver) Add(info *ConsumerInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumers[info.ConsumerKey] = info
}

// ResolveAPIKey implements Resolver.
func (r *StaticResolver) ResolveAPIKey(_ context.Context, consumerKey string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if info, ok := r.consumers[consumerKey]; ok {
		return info.OpenAIAPIKey, nil
	}
	if r.fallbackKey != "" {
		return r.fallbackKey, nil
	}
	return "", ErrConsumerNotFound
}

// GetConsumerInfo implements Resolver.
func (r *StaticResolver) GetConsumerInfo(_ context.Context, consumerKey string) (*ConsumerInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if info, ok := r.consumers[consumerKey]; ok {
		copied := *info
		return &copied, nil
	}
	return nil, ErrConsumerNotFound
}

// Close implements Resolver.
func (r *StaticResolver) Close() error { return nil }
