// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package deck

import (
	"errors"
	"slices"

	"github.com/danielhkuo/policy-swipe/models"
)

// ErrExhausted means every card of the current build has been released
var ErrExhausted = errors.New("all cards viewed")

// Pager releases a built ordering in batches for "load more"
type Pager struct {
	pending []models.PolicyItem
}

func NewPager(ordered []models.PolicyItem) *Pager {
	return &Pager{pending: append([]models.PolicyItem(nil), ordered...)}
}

// Next releases up to batchSize cards. batchSize <= 0 releases the rest.
// Once nothing is left it returns no cards and ErrExhausted.
func (p *Pager) Next(batchSize int) ([]models.PolicyItem, error) {
	if len(p.pending) == 0 {
		return nil, ErrExhausted
	}
	n := len(p.pending)
	if batchSize > 0 && batchSize < n {
		n = batchSize
	}
	out := p.pending[:n:n]
	p.pending = p.pending[n:]
	return out, nil
}

func (p *Pager) Remaining() int {
	return len(p.pending)
}

// Remove withdraws an unreleased card so it is never released
func (p *Pager) Remove(id string) bool {
	i := slices.IndexFunc(p.pending, func(item models.PolicyItem) bool { return item.ID == id })
	if i < 0 {
		return false
	}
	p.pending = slices.Delete(slices.Clone(p.pending), i, i+1)
	return true
}
