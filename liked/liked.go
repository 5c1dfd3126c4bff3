// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package liked

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Storage is the durable key-value contract the liked set persists through
type Storage interface {
	// Get returns the value for key; ok is false when the key was never written
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
}

// Set is an insertion-ordered set of liked policy ids. Every effective
// mutation writes the whole set under one key. If storage fails the set keeps
// working in memory and reports Degraded. A Set is safe for concurrent use.
type Set struct {
	storage Storage
	key     string

	mu       sync.Mutex
	ids      []string
	members  map[string]bool
	degraded bool
	// the initial read failed, so the members may not reflect storage
	unavailable bool
}

// Load reads the set stored under key. A missing key yields an empty set;
// unreadable or malformed data yields an empty, degraded set.
func Load(ctx context.Context, storage Storage, key string) *Set {
	s := &Set{
		storage: storage,
		key:     key,
		members: make(map[string]bool),
	}

	raw, ok, err := storage.Get(ctx, key)
	if err != nil {
		slog.Warn("liked set unavailable, continuing in memory", "key", key, "error", err)
		s.degraded = true
		s.unavailable = true
		return s
	}
	if !ok {
		return s
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		slog.Warn("liked set is malformed, starting empty", "key", key, "error", err)
		s.degraded = true
		return s
	}
	for _, id := range ids {
		if id == "" || s.members[id] {
			continue
		}
		s.members[id] = true
		s.ids = append(s.ids, id)
	}
	return s
}

func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[id]
}

// Add inserts id; adding an existing id does nothing
func (s *Set) Add(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" || s.members[id] {
		return
	}
	s.members[id] = true
	s.ids = append(s.ids, id)
	s.persist(ctx)
}

// Remove deletes id; removing an absent id does nothing
func (s *Set) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.members[id] {
		return
	}
	delete(s.members, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	s.persist(ctx)
}

// List returns the ids in insertion order
func (s *Set) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Degraded reports whether the last load or write failed
func (s *Set) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Exclusion returns the members as a lookup map for deck building
func (s *Set) Exclusion() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.members))
	for id := range s.members {
		out[id] = true
	}
	return out
}

// persist writes the whole set. s.mu must be held.
func (s *Set) persist(ctx context.Context) {
	ids := s.ids
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		slog.Warn("failed to encode liked set", "key", s.key, "error", err)
		s.degraded = true
		return
	}
	if err := s.storage.Put(ctx, s.key, raw); err != nil {
		slog.Warn("failed to persist liked set, change kept in memory only", "key", s.key, "error", err)
		s.degraded = true
		return
	}
	s.degraded = false
}

// Registry hands out one shared Set per key, so every session and view of a
// device reads and writes the same members. Writers never replace each
// other's changes with a stale copy.
type Registry struct {
	storage Storage

	mu   sync.Mutex
	sets map[string]*Set
}

func NewRegistry(storage Storage) *Registry {
	return &Registry{storage: storage, sets: make(map[string]*Set)}
}

// Get returns the Set for key, loading it on first use. A set whose load hit
// a storage error is not kept, so the next Get reads storage again.
func (r *Registry) Get(ctx context.Context, key string) *Set {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sets[key]; ok {
		return s
	}
	s := Load(ctx, r.storage, key)
	if !s.unavailable {
		r.sets[key] = s
	}
	return s
}

// MemoryStorage is an in-process Storage
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStorage) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}
