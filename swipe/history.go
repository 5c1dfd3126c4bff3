// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package swipe

import "github.com/danielhkuo/policy-swipe/models"

// History is the LIFO undo log of committed swipes
type History struct {
	entries []models.HistoryEntry
}

func (h *History) Push(entry models.HistoryEntry) {
	h.entries = append(h.entries, entry)
}

// Pop removes the most recent entry; ok is false when empty
func (h *History) Pop() (entry models.HistoryEntry, ok bool) {
	if len(h.entries) == 0 {
		return models.HistoryEntry{}, false
	}
	last := len(h.entries) - 1
	entry = h.entries[last]
	h.entries = h.entries[:last]
	return entry, true
}

func (h *History) Len() int {
	return len(h.entries)
}
