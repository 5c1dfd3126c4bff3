// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package swipe

import (
	"strings"

	"github.com/danielhkuo/policy-swipe/deck"
	"github.com/danielhkuo/policy-swipe/models"
)

// LoadMore appends the next batch to the back of the deck. It returns
// deck.ErrExhausted once every card of the current build was released.
func (c *Controller) LoadMore() (int, error) {
	items, err := c.pager.Next(c.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	c.deck.Append(items)
	return len(items), nil
}

// Restart rebuilds the deck from the whole catalog minus liked ids and
// releases the first batch. History is kept so undo still works.
func (c *Controller) Restart() error {
	if c.Locked() {
		return ErrLocked
	}
	c.reset()
	c.rebuild()
	return nil
}

// Search replaces the visible deck with catalog matches in feed order,
// bypassing genre balancing. An empty query restores the balanced deck.
func (c *Controller) Search(query string, includeSummary bool) error {
	if strings.TrimSpace(query) == "" {
		return c.Restart()
	}
	if c.Locked() {
		return ErrLocked
	}
	c.reset()
	c.deck.Reset(c.catalog.Search(query, includeSummary))
	c.pager = deck.NewPager(nil)
	return nil
}

// Snapshot describes the session for rendering
func (c *Controller) Snapshot() models.SessionSnapshot {
	cards := c.deck.Items()
	return models.SessionSnapshot{
		Phase:         string(c.phase),
		Locked:        c.Locked(),
		Cards:         cards,
		Remaining:     c.pager.Remaining(),
		HistoryLen:    c.history.Len(),
		LikedCount:    c.liked.Len(),
		Empty:         len(cards) == 0 && c.pager.Remaining() == 0,
		LikeDirection: string(c.cfg.LikeDirection),
	}
}

// Front returns the card currently eligible for gestures
func (c *Controller) Front() (models.PolicyItem, bool) {
	return c.deck.Front()
}

func (c *Controller) rebuild() {
	ordered := c.builder.Build(c.catalog.All(), c.liked.Exclusion())
	c.pager = deck.NewPager(ordered)
	c.deck.Reset(nil)
	if items, err := c.pager.Next(c.cfg.BatchSize); err == nil {
		c.deck.Append(items)
	}
}
