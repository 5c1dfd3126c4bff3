// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/policy-swipe/liked"
	"github.com/danielhkuo/policy-swipe/models"
)

const DefaultTimeout = 10 * time.Second

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "analysis_requests_total",
	Help: "Remote nickname analysis requests by result",
}, []string{"result"})

// Label is the cached result of the last successful analysis
type Label struct {
	Nickname  string    `json:"nickname"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service sends liked-item summaries to the remote analyzer and caches the
// returned nickname under a per-device storage key. Requests for the same key
// that overlap are collapsed into one.
type Service struct {
	requester Requester
	storage   liked.Storage
	timeout   time.Duration
	now       func() time.Time

	group singleflight.Group
	wg    sync.WaitGroup
}

// NewService returns a Service. A nil requester disables remote analysis;
// cached labels can still be read.
func NewService(requester Requester, storage liked.Storage) *Service {
	return &Service{
		requester: requester,
		storage:   storage,
		timeout:   DefaultTimeout,
		now:       time.Now,
	}
}

// Enabled reports whether a remote analyzer is configured
func (s *Service) Enabled() bool {
	return s.requester != nil
}

// Request runs one analysis synchronously and stores the label under key.
// On failure the previously stored label is left untouched.
func (s *Service) Request(ctx context.Context, key string, items []models.PolicyItem) (string, error) {
	if s.requester == nil {
		return "", fmt.Errorf("remote analysis is not configured")
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		nickname, err := s.requester.Nickname(ctx, summarize(items))
		if err != nil {
			requestsTotal.WithLabelValues("error").Inc()
			return "", err
		}
		requestsTotal.WithLabelValues("ok").Inc()

		data, err := json.Marshal(Label{Nickname: nickname, UpdatedAt: s.now().UTC()})
		if err != nil {
			return "", err
		}
		if err := s.storage.Put(ctx, key, data); err != nil {
			return "", fmt.Errorf("store analysis label: %w", err)
		}
		return nickname, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Label returns the cached label for key; ok is false when none exists or
// the stored value is unreadable.
func (s *Service) Label(ctx context.Context, key string) (Label, bool) {
	data, found, err := s.storage.Get(ctx, key)
	if err != nil {
		slog.Warn("failed to read analysis label", "key", key, "error", err)
		return Label{}, false
	}
	if !found {
		return Label{}, false
	}
	var label Label
	if err := json.Unmarshal(data, &label); err != nil {
		slog.Warn("ignoring malformed analysis label", "key", key, "error", err)
		return Label{}, false
	}
	return label, true
}

// For binds the service to one device's storage key. The result satisfies
// the swipe controller's analyzer hook.
func (s *Service) For(key string) *Trigger {
	return &Trigger{service: s, key: key}
}

// Wait blocks until every background analysis has finished
func (s *Service) Wait() {
	s.wg.Wait()
}

// Trigger fires background analyses for a single device
type Trigger struct {
	service *Service
	key     string
}

// Analyze starts a request in the background and returns immediately.
// Failures are logged.
func (t *Trigger) Analyze(items []models.PolicyItem) {
	s := t.service
	if s.requester == nil {
		slog.Debug("remote analysis disabled, skipping", "key", t.key)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		nickname, err := s.Request(ctx, t.key, items)
		if err != nil {
			slog.Error("remote analysis failed", "key", t.key, "liked", len(items), "error", err)
			return
		}
		slog.Info("analysis label updated", "key", t.key, "nickname", nickname)
	}()
}

func summarize(items []models.PolicyItem) Request {
	req := Request{
		Titles: make([]string, 0, len(items)),
		Genres: make([]string, 0, len(items)),
	}
	for _, item := range items {
		req.Titles = append(req.Titles, item.Title)
		req.Genres = append(req.Genres, item.Genre)
	}
	return req
}
