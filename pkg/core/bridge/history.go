// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

// DefaultHistoryCapacity bounds the in-memory transcript per
// conversation. Oldest entries are evicted first.
const DefaultHistoryCapacity = 50

// HistoryEntry is one transcript line.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// history is a fixed-capacity ring of transcript entries. Not
// goroutine-safe; the bridge serializes access.
type history struct {
	entries []HistoryEntry
	head    int
	size    int
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &history{entries: make([]HistoryEntry, capacity)}
}

// append records an entry, evicting the oldest when full.
func (h *history) append(e HistoryEntry) {
	tail := (h.head + h.size) % len(h.entries)
	h.entries[tail] = e
	if h.size < len(h.entries) {
		h.size++
	} else {
		h.head = (h.head + 1) % len(h.entries)
	}
}

// snapshot returns the entries oldest first. The returned slice is a
// copy.
func (h *history) snapshot() []HistoryEntry {
	out := make([]HistoryEntry, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.entries[(h.head+i)%len(h.entries)]
	}
	return out
}

func (h *history) clear() {
	h.head = 0
	h.size = 0
}

func (h *history) len() int { return h.size }
