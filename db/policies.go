// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/danielhkuo/policy-swipe/auth"
	"github.com/danielhkuo/policy-swipe/models"
)

// LoadPolicies returns every stored policy in feed order
func LoadPolicies(ctx context.Context, db *sql.DB) ([]models.PolicyItem, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, title, summary, period, link, genre
		FROM policy
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query policies: %w", err)
	}
	defer rows.Close()

	var items []models.PolicyItem
	for rows.Next() {
		var item models.PolicyItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Summary, &item.Period, &item.Link, &item.Genre); err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// feedID accepts both numeric and string ids in the data feed
type feedID string

func (f *feedID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = feedID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", data)
	}
	*f = feedID(n.String())
	return nil
}

type feedItem struct {
	ID      feedID `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Period  string `json:"period"`
	Link    string `json:"link"`
	Genre   string `json:"genre"`
}

// SeedPolicies inserts the policies of a JSON array feed, appended after the
// existing ones. Items without an id get a random one; items whose id already
// exists are skipped, as are items whose title has no letter or digit
// (garbled encodings). It returns the number of inserted rows.
func SeedPolicies(ctx context.Context, db *sql.DB, r io.Reader) (int, error) {
	var feed []feedItem
	if err := json.NewDecoder(r).Decode(&feed); err != nil {
		return 0, fmt.Errorf("failed to decode policy feed: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var position int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) FROM policy`).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("failed to read feed position: %w", err)
	}

	inserted := 0
	for i, item := range feed {
		if !readable(item.Title) {
			slog.Warn("skipping unreadable policy", "index", i, "id", string(item.ID))
			continue
		}

		id := strings.TrimSpace(string(item.ID))
		if id == "" {
			if id, err = auth.GenerateID(8); err != nil {
				return 0, err
			}
		}
		genre := strings.TrimSpace(item.Genre)
		if genre == "" {
			genre = models.GenreOther
		}

		position++
		res, err := tx.ExecContext(ctx, `
			INSERT INTO policy (id, title, summary, period, link, genre, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING
		`, id, strings.TrimSpace(item.Title), item.Summary, item.Period, item.Link, genre, position)
		if err != nil {
			return 0, fmt.Errorf("failed to insert policy %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit policies: %w", err)
	}
	return inserted, nil
}

// readable reports whether s contains at least one letter or digit
func readable(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
