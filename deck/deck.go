// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package deck

import (
	"slices"

	"github.com/danielhkuo/policy-swipe/models"
)

// Deck is the FIFO queue of cards awaiting presentation. The front card is the
// only one eligible for gestures.
type Deck struct {
	items []models.PolicyItem
}

func New(items []models.PolicyItem) *Deck {
	d := &Deck{}
	d.Append(items)
	return d
}

// Front returns the next card, if any
func (d *Deck) Front() (models.PolicyItem, bool) {
	if len(d.items) == 0 {
		return models.PolicyItem{}, false
	}
	return d.items[0], true
}

// PopFront removes and returns the front card
func (d *Deck) PopFront() (models.PolicyItem, bool) {
	item, ok := d.Front()
	if !ok {
		return item, false
	}
	d.items = d.items[1:]
	return item, true
}

// PushFront puts item back on top, used by undo
func (d *Deck) PushFront(item models.PolicyItem) {
	d.items = append([]models.PolicyItem{item}, d.items...)
}

// Remove drops the card with id, reporting whether it was present
func (d *Deck) Remove(id string) bool {
	i := slices.IndexFunc(d.items, func(item models.PolicyItem) bool { return item.ID == id })
	if i < 0 {
		return false
	}
	d.items = slices.Delete(slices.Clone(d.items), i, i+1)
	return true
}

func (d *Deck) Append(items []models.PolicyItem) {
	d.items = append(d.items, items...)
}

// Reset replaces the whole deck
func (d *Deck) Reset(items []models.PolicyItem) {
	d.items = append([]models.PolicyItem(nil), items...)
}

func (d *Deck) Len() int {
	return len(d.items)
}

// Items returns a copy of the deck, front first
func (d *Deck) Items() []models.PolicyItem {
	out := make([]models.PolicyItem, len(d.items))
	copy(out, d.items)
	return out
}
