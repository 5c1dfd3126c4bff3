// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/policy-swipe/catalog"
	"github.com/danielhkuo/policy-swipe/cliparse"
	"github.com/danielhkuo/policy-swipe/db"
	"github.com/danielhkuo/policy-swipe/models"
	"github.com/danielhkuo/policy-swipe/swipe"
)

// TestDeviceUUID is a valid X-Device-UUID for requests
const TestDeviceUUID = "6f1c2e3a-4b5d-4c6e-8f70-1a2b3c4d5e6f"

// Genres used by SamplePolicies, in feed order
var SampleGenres = []string{"housing", "jobs", "transport"}

// SetupTestDB creates a fresh SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// One connection keeps SQLite writes serialized
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	sc := swipe.DefaultConfig()
	sc.BatchSize = 5
	sc.AnalysisThreshold = 3

	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    "file:test.db",
		DatabaseType:   "sqlite",
		SessionKeySalt: "test-session-salt",
		DeviceSalt:     "test-device-salt",
		Swipe:          sc,
	}
}

// SamplePolicies returns twelve policies spread evenly over SampleGenres.
// The title of p1 is "Transit Refund", the rest are "Policy N".
func SamplePolicies() []models.PolicyItem {
	items := make([]models.PolicyItem, 0, 12)
	for i := 1; i <= 12; i++ {
		items = append(items, models.PolicyItem{
			ID:      fmt.Sprintf("p%d", i),
			Title:   fmt.Sprintf("Policy %d", i),
			Summary: fmt.Sprintf("Summary of policy %d", i),
			Period:  "2025-01-01 ~ 2025-12-31",
			Link:    fmt.Sprintf("https://example.org/policies/%d", i),
			Genre:   SampleGenres[(i-1)%len(SampleGenres)],
		})
	}
	items[0].Title = "Transit Refund"
	return items
}

// SeedTestPolicies stores SamplePolicies through the feed importer and
// returns the catalog loaded back from the database
func SeedTestPolicies(t *testing.T, conn *sql.DB) *catalog.Store {
	t.Helper()
	ctx := context.Background()

	feed, err := json.Marshal(SamplePolicies())
	if err != nil {
		t.Fatalf("Failed to encode feed: %v", err)
	}
	if _, err := db.SeedPolicies(ctx, conn, bytes.NewReader(feed)); err != nil {
		t.Fatalf("Failed to seed policies: %v", err)
	}

	items, err := db.LoadPolicies(ctx, conn)
	if err != nil {
		t.Fatalf("Failed to load policies: %v", err)
	}
	return catalog.New(items)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
