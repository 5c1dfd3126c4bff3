// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"errors"
	"strings"

	"github.com/danielhkuo/policy-swipe/models"
)

var ErrNotFound = errors.New("policy not found")

// Store is a read-only snapshot of the policy feed
type Store struct {
	items []models.PolicyItem
	index map[string]int
}

// New builds a Store from feed records. Empty genres become models.GenreOther
// and a repeated id keeps its first record.
func New(items []models.PolicyItem) *Store {
	s := &Store{
		items: make([]models.PolicyItem, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		if _, dup := s.index[item.ID]; dup {
			continue
		}
		if strings.TrimSpace(item.Genre) == "" {
			item.Genre = models.GenreOther
		}
		s.index[item.ID] = len(s.items)
		s.items = append(s.items, item)
	}
	return s
}

func (s *Store) Len() int {
	return len(s.items)
}

// All returns every item in feed order
func (s *Store) All() []models.PolicyItem {
	out := make([]models.PolicyItem, len(s.items))
	copy(out, s.items)
	return out
}

// Filter returns the items matching pred, in feed order
func (s *Store) Filter(pred func(models.PolicyItem) bool) []models.PolicyItem {
	out := []models.PolicyItem{}
	for _, item := range s.items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// ByID looks up a single item. Unknown ids return ErrNotFound, which callers
// should treat as a no-op since ids may go stale across reloads.
func (s *Store) ByID(id string) (models.PolicyItem, error) {
	i, ok := s.index[id]
	if !ok {
		return models.PolicyItem{}, ErrNotFound
	}
	return s.items[i], nil
}

// Search does a case-insensitive substring match over titles, and over
// summaries too when includeSummary is set. An empty query matches everything.
func (s *Store) Search(query string, includeSummary bool) []models.PolicyItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.All()
	}
	return s.Filter(func(item models.PolicyItem) bool {
		if strings.Contains(strings.ToLower(item.Title), q) {
			return true
		}
		return includeSummary && strings.Contains(strings.ToLower(item.Summary), q)
	})
}

// Genres lists distinct genres in order of first appearance
func (s *Store) Genres() []string {
	seen := make(map[string]bool)
	genres := []string{}
	for _, item := range s.items {
		if !seen[item.Genre] {
			seen[item.Genre] = true
			genres = append(genres, item.Genre)
		}
	}
	return genres
}

// Resolve maps ids to items, silently skipping ids that are no longer in the
// catalog.
func (s *Store) Resolve(ids []string) []models.PolicyItem {
	out := make([]models.PolicyItem, 0, len(ids))
	for _, id := range ids {
		item, err := s.ByID(id)
		if err != nil {
			continue
		}
		out = append(out, item)
	}
	return out
}
