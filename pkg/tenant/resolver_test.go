// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tenant

import (
	"context"
	"errors"
	"testing"
)

func TestStaticResolver_ResolveAPIKey(t *testing.T) {
	r := NewStaticResolver("")
	r.Add(&ConsumerInfo{
		ConsumerKey:  "sck-acme",
		CustomerName: "Acme Corp",
		OpenAIAPIKey: "sk-acme",
	})

	key, err := r.ResolveAPIKey(context.Background(), "sck-acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "sk-acme" {
		t.Errorf("expected sk-acme, got %q", key)
	}

	_, err = r.ResolveAPIKey(context.Background(), "sck-unknown")
	if !errors.Is(err, ErrConsumerNotFound) {
		t.Errorf("expected ErrConsumerNotFound, got %v", err)
	}
}

func TestStaticResolver_Fallback(t *testing.T) {
	r := NewStaticResolver("sk-fallback")

	key, err := r.ResolveAPIKey(context.Background(), "sck-anyone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "sk-fallback" {
		t.Errorf("expected fallback key, got %q", key)
	}

	// GetConsumerInfo never falls back: there is no record to return.
	if _, err := r.GetConsumerInfo(context.Background(), "sck-anyone"); !errors.Is(err, ErrConsumerNotFound) {
		t.Errorf("expected ErrConsumerNotFound, got %v", err)
	}
}

func TestSQLiteResolver_RoundTrip(t *testing.T) {
	r, err := NewSQLiteResolver(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer r.Close()

	ctx := context.Background()
	err = r.AddConsumer(ctx, &ConsumerInfo{
		ConsumerKey:   "sck-acme",
		CustomerName:  "Acme Corp",
		CustomerEmail: "ops@acme.example",
		PlanLevel:     "enterprise",
		OpenAIAPIKey:  "sk-acme",
	})
	if err != nil {
		t.Fatalf("add consumer: %v", err)
	}

	key, err := r.ResolveAPIKey(ctx, "sck-acme")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if key != "sk-acme" {
		t.Errorf("expected sk-acme, got %q", key)
	}

	info, err := r.GetConsumerInfo(ctx, "sck-acme")
	if err != nil {
		t.Fatalf("get info: %v", err)
	}
	if info.CustomerName != "Acme Corp" || info.PlanLevel != "enterprise" {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.CreatedAt.IsZero() {
		t.Error("expected create_date to be populated")
	}

	if _, err := r.ResolveAPIKey(ctx, "sck-missing"); !errors.Is(err, ErrConsumerNotFound) {
		t.Errorf("expected ErrConsumerNotFound, got %v", err)
	}
}

func TestStores_Registered(t *testing.T) {
	available := Stores.Available()
	want := map[string]bool{"postgres": false, "sqlite": false, "static": false}
	for _, name := range available {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("expected %s backend to be registered", name)
		}
	}
}

func TestStores_StaticFromRegistry(t *testing.T) {
	r, err := Stores.New(context.Background(), "static", map[string]string{"api_key": "sk-dev"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	key, err := r.ResolveAPIKey(context.Background(), "sck-whatever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "sk-dev" {
		t.Errorf("expected sk-dev, got %q", key)
	}
}
