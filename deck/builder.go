// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package deck

import (
	"math/rand/v2"

	"github.com/danielhkuo/policy-swipe/models"
)

// DefaultChunkSize is how many cards each genre contributes per round
const DefaultChunkSize = 3

// Builder orders candidates with a genre-balanced round robin: each round
// takes up to ChunkSize cards from every genre that still has cards, then
// shuffles the round. While two or more genres remain, no run of one genre is
// longer than ChunkSize.
type Builder struct {
	ChunkSize int
	Rand      *rand.Rand // nil uses the global source
}

// Build returns the full ordering of candidates minus excluded ids
func (b Builder) Build(candidates []models.PolicyItem, excluding map[string]bool) []models.PolicyItem {
	chunk := b.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	// Partition by genre, keeping first-appearance order of genres
	groups := make(map[string][]models.PolicyItem)
	var genres []string
	total := 0
	for _, item := range candidates {
		if excluding[item.ID] {
			continue
		}
		if _, ok := groups[item.Genre]; !ok {
			genres = append(genres, item.Genre)
		}
		groups[item.Genre] = append(groups[item.Genre], item)
		total++
	}

	for _, genre := range genres {
		b.shuffle(groups[genre])
	}

	out := make([]models.PolicyItem, 0, total)
	for {
		var round []models.PolicyItem
		for _, genre := range genres {
			group := groups[genre]
			n := min(chunk, len(group))
			round = append(round, group[:n]...)
			groups[genre] = group[n:]
		}
		if len(round) == 0 {
			break
		}

		b.shuffle(round)
		if len(out) > 0 {
			breakBoundaryRun(out[len(out)-1].Genre, round)
		}
		out = append(out, round...)
	}
	return out
}

// breakBoundaryRun keeps a same-genre run from continuing across rounds by
// swapping the round's first card with its first card of another genre.
func breakBoundaryRun(prevGenre string, round []models.PolicyItem) {
	if round[0].Genre != prevGenre {
		return
	}
	for j := 1; j < len(round); j++ {
		if round[j].Genre != prevGenre {
			round[0], round[j] = round[j], round[0]
			return
		}
	}
}

func (b Builder) shuffle(items []models.PolicyItem) {
	swap := func(i, j int) { items[i], items[j] = items[j], items[i] }
	if b.Rand != nil {
		b.Rand.Shuffle(len(items), swap)
		return
	}
	rand.Shuffle(len(items), swap)
}
