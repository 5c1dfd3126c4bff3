// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analysis

import (
	"math"
	"sort"

	"github.com/danielhkuo/policy-swipe/models"
)

// Breakdown counts liked items per genre. Shares are sorted by count
// descending, then genre name; percentages are rounded to one decimal.
func Breakdown(items []models.PolicyItem) []models.GenreShare {
	shares := []models.GenreShare{}
	if len(items) == 0 {
		return shares
	}

	counts := make(map[string]int)
	for _, item := range items {
		genre := item.Genre
		if genre == "" {
			genre = models.GenreOther
		}
		counts[genre]++
	}

	total := float64(len(items))
	for genre, count := range counts {
		shares = append(shares, models.GenreShare{
			Genre:      genre,
			Count:      count,
			Percentage: math.Round(float64(count)/total*1000) / 10,
		})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Genre < shares[j].Genre
	})
	return shares
}
