// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import "sync"

// memorySlots are the facts the assistant is allowed to record about a
// conversation. List-valued slots accumulate; the rest are scalars.
var memorySlots = []string{
	"user_name",
	"user_email",
	"company_name",
	"departments",
	"tools_used",
	"top_pain_points",
	"current_automation",
	"automation_goals",
	"key_metrics",
	"has_automation_owner",
}

var listSlots = map[string]bool{
	"departments":     true,
	"tools_used":      true,
	"top_pain_points": true,
}

// Memory is the per-conversation slot store. It lives only in process
// memory and is lost on restart.
type Memory struct {
	mu    sync.RWMutex
	slots map[string]any
}

// NewMemory creates an empty slot store.
func NewMemory() *Memory {
	m := &Memory{}
	m.reset()
	return m
}

func (m *Memory) reset() {
	m.slots = make(map[string]any, len(memorySlots))
	for _, name := range memorySlots {
		if listSlots[name] {
			m.slots[name] = []any{}
		} else {
			m.slots[name] = nil
		}
	}
}

// UpdateSlot stores value under the named slot. List slots append unless
// the value is itself a list, which replaces. Returns false for unknown
// slot names.
func (m *Memory) UpdateSlot(name string, value any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.slots[name]
	if !ok {
		return false
	}

	if listSlots[name] {
		if incoming, isList := value.([]any); isList {
			m.slots[name] = incoming
			return true
		}
		list, _ := current.([]any)
		m.slots[name] = append(list, value)
		return true
	}

	m.slots[name] = value
	return true
}

// Get returns the slot value, or nil for unknown names.
func (m *Memory) Get(name string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.slots[name]
}

// Snapshot returns a copy of every slot.
func (m *Memory) Snapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.slots))
	for k, v := range m.slots {
		out[k] = v
	}
	return out
}

// Clear resets every slot to its empty value.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}
