// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package tenant resolves Solomon consumer keys to upstream API
// credentials. The consumer key is an opaque per-customer identifier; the
// credential it maps to is the OpenAI API key billed to that customer.
package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/solconnect/assistants-gw/pkg/provider"
)

// Stores is the registry of resolver backends. Implementations
// self-register via init().
var Stores = provider.NewRegistry[Resolver]("tenant_store")

// ErrConsumerNotFound is returned when no row matches the consumer key.
var ErrConsumerNotFound = errors.New("tenant: consumer key not found")

// ConsumerInfo is the full consumer record.
type ConsumerInfo struct {
	ConsumerKey   string
	CustomerName  string
	CustomerEmail string
	PlanLevel     string
	OpenAIAPIKey  string
	CreatedAt     time.Time
	ModifiedAt    time.Time
}

// Resolver maps an opaque consumer key to an upstream API credential.
type Resolver interface {
	// ResolveAPIKey returns the OpenAI API key for the consumer, or
	// ErrConsumerNotFound.
	ResolveAPIKey(ctx context.Context, consumerKey string) (string, error)

	// GetConsumerInfo returns the full consumer record, or
	// ErrConsumerNotFound.
	GetConsumerInfo(ctx context.Context, consumerKey string) (*ConsumerInfo, error)

	// Close releases backend resources.
	Close() error
}
