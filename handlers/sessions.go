// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielhkuo/policy-swipe/analysis"
	"github.com/danielhkuo/policy-swipe/auth"
	"github.com/danielhkuo/policy-swipe/catalog"
	"github.com/danielhkuo/policy-swipe/cliparse"
	"github.com/danielhkuo/policy-swipe/deck"
	"github.com/danielhkuo/policy-swipe/liked"
	"github.com/danielhkuo/policy-swipe/middleware"
	"github.com/danielhkuo/policy-swipe/models"
	"github.com/danielhkuo/policy-swipe/swipe"
)

// SessionTTL is how long an untouched session survives
const SessionTTL = time.Hour

// Informational messages; these are 200 responses, not errors
const (
	MsgNothingToUndo = "nothing to undo"
	MsgAllViewed     = "all cards viewed"
)

var sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "swipe_sessions_active",
	Help: "Swipe sessions held in memory",
})

// session serializes events for one controller, like a UI event loop
type session struct {
	mu       sync.Mutex
	ctrl     *swipe.Controller
	lastSeen time.Time
}

type SessionHandler struct {
	likes    *liked.Registry
	cfg      cliparse.Config
	store    *catalog.Store
	analysis *analysis.Service

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionHandler creates a handler holding swipe sessions in memory.
// Sessions of one device share its liked set through likes. analysisSvc may
// be nil.
func NewSessionHandler(likes *liked.Registry, cfg cliparse.Config, store *catalog.Store, analysisSvc *analysis.Service) *SessionHandler {
	return &SessionHandler{
		likes:    likes,
		cfg:      cfg,
		store:    store,
		analysis: analysisSvc,
		sessions: make(map[string]*session),
	}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	hash, ok := deviceHash(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.CreateSessionRequest
	if r.ContentLength != 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}
	if req.ViewportWidth < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "viewport_width cannot be negative")
		return
	}

	opts := swipe.Options{
		Config:        h.cfg.Swipe,
		Catalog:       h.store,
		Liked:         h.likes.Get(r.Context(), auth.LikedKey(hash)),
		ViewportWidth: req.ViewportWidth,
	}
	if h.analysis != nil && h.analysis.Enabled() {
		opts.Analyzer = h.analysis.For(auth.AnalysisKey(hash))
	}
	ctrl := swipe.NewController(opts)

	sessionID := auth.NewSessionID()
	h.mu.Lock()
	h.pruneLocked(time.Now())
	h.sessions[sessionID] = &session{ctrl: ctrl, lastSeen: time.Now()}
	sessionsActive.Set(float64(len(h.sessions)))
	h.mu.Unlock()

	snap := ctrl.Snapshot()
	if snap.Empty {
		slog.Warn("session started with an empty deck", "session_id", sessionID, "catalog_size", h.store.Len())
	}
	slog.Info("session created", "session_id", sessionID, "cards", len(snap.Cards), "liked", snap.LikedCount)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID:  sessionID,
		SessionKey: auth.GenerateSessionKey(sessionID, h.cfg.SessionKeySalt),
		Session:    snap,
	})
}

// GetSession handles GET /sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session) {
		middleware.JSONResponse(w, http.StatusOK, s.ctrl.Snapshot())
	})
}

// DeleteSession handles DELETE /sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	_, found := h.sessions[sessionID]
	delete(h.sessions, sessionID)
	sessionsActive.Set(float64(len(h.sessions)))
	h.mu.Unlock()

	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	slog.Info("session deleted", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// PointerDown handles POST /sessions/{id}/pointer/down
func (h *SessionHandler) PointerDown(w http.ResponseWriter, r *http.Request) {
	var req models.PointerDownRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CardID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "card_id is required")
		return
	}

	h.withSession(w, r, func(s *session) {
		err := s.ctrl.PointerDown(r.Context(), req.CardID, swipe.Point{X: req.X, Y: req.Y})
		resp := models.PointerDownResponse{Accepted: err == nil, Phase: string(s.ctrl.Phase())}
		switch {
		case err == nil:
		case errors.Is(err, swipe.ErrLocked), errors.Is(err, swipe.ErrNotFront):
			resp.Reason = err.Error()
		default:
			swipeError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, resp)
	})
}

// PointerMove handles POST /sessions/{id}/pointer/move
func (h *SessionHandler) PointerMove(w http.ResponseWriter, r *http.Request) {
	var req models.PointerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.withSession(w, r, func(s *session) {
		f, err := s.ctrl.PointerMove(swipe.Point{X: req.X, Y: req.Y})
		if err != nil {
			swipeError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.FrameResponse{
			OffsetX:     f.OffsetX,
			OffsetY:     f.OffsetY,
			Rotation:    f.Rotation,
			LikeOpacity: f.LikeOpacity,
			PassOpacity: f.PassOpacity,
		})
	})
}

// PointerUp handles POST /sessions/{id}/pointer/up
func (h *SessionHandler) PointerUp(w http.ResponseWriter, r *http.Request) {
	var req models.PointerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.withSession(w, r, func(s *session) {
		out, err := s.ctrl.PointerUp(swipe.Point{X: req.X, Y: req.Y})
		if err != nil {
			swipeError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, outcomeResponse(out, s.ctrl.Phase()))
	})
}

// PointerCancel handles POST /sessions/{id}/pointer/cancel
func (h *SessionHandler) PointerCancel(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session) {
		s.ctrl.Cancel()
		middleware.JSONResponse(w, http.StatusOK, s.ctrl.Snapshot())
	})
}

// CompleteTransition handles POST /sessions/{id}/transitions/{tid}/complete
func (h *SessionHandler) CompleteTransition(w http.ResponseWriter, r *http.Request) {
	tid, err := strconv.ParseUint(r.PathValue("tid"), 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "transition id must be a positive integer")
		return
	}

	h.withSession(w, r, func(s *session) {
		out, err := s.ctrl.Complete(r.Context(), tid)
		if err != nil {
			swipeError(w, err)
			return
		}
		if out.Committed != nil {
			slog.Info("swipe committed",
				"policy_id", out.Committed.Item.ID,
				"decision", out.Committed.Decision,
			)
		}
		middleware.JSONResponse(w, http.StatusOK, outcomeResponse(out, s.ctrl.Phase()))
	})
}

// Key handles POST /sessions/{id}/keys/{direction}
func (h *SessionHandler) Key(w http.ResponseWriter, r *http.Request) {
	dir := swipe.Direction(r.PathValue("direction"))

	h.withSession(w, r, func(s *session) {
		out, err := s.ctrl.Key(dir)
		if err != nil {
			swipeError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, outcomeResponse(out, s.ctrl.Phase()))
	})
}

// Undo handles POST /sessions/{id}/undo
func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session) {
		entry, err := s.ctrl.Undo(r.Context())
		if errors.Is(err, swipe.ErrNothingToUndo) {
			middleware.JSONResponse(w, http.StatusOK, models.UndoResponse{
				Message: MsgNothingToUndo,
				Session: s.ctrl.Snapshot(),
			})
			return
		}
		if err != nil {
			swipeError(w, err)
			return
		}
		slog.Info("swipe undone", "policy_id", entry.Item.ID, "decision", entry.Decision)
		middleware.JSONResponse(w, http.StatusOK, models.UndoResponse{
			Restored: &entry,
			Session:  s.ctrl.Snapshot(),
		})
	})
}

// LoadMore handles POST /sessions/{id}/more
func (h *SessionHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session) {
		n, err := s.ctrl.LoadMore()
		resp := models.LoadMoreResponse{Released: n}
		if errors.Is(err, deck.ErrExhausted) {
			resp.Message = MsgAllViewed
		} else if err != nil {
			swipeError(w, err)
			return
		}
		resp.Session = s.ctrl.Snapshot()
		middleware.JSONResponse(w, http.StatusOK, resp)
	})
}

// Restart handles POST /sessions/{id}/restart
func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session) {
		if err := s.ctrl.Restart(); err != nil {
			swipeError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, s.ctrl.Snapshot())
	})
}

// Search handles GET /sessions/{id}/search?q=
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	includeSummary := r.URL.Query().Get("summary") == "1"

	h.withSession(w, r, func(s *session) {
		if err := s.ctrl.Search(query, includeSummary); err != nil {
			swipeError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, s.ctrl.Snapshot())
	})
}

// authorize checks the session key header against the path id
func (h *SessionHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return "", false
	}

	key := r.Header.Get(middleware.HeaderSessionKey)
	if err := auth.ValidateSessionKey(sessionID, key, h.cfg.SessionKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session key")
		return "", false
	}
	return sessionID, true
}

// withSession runs fn with the session locked
func (h *SessionHandler) withSession(w http.ResponseWriter, r *http.Request, fn func(s *session)) {
	sessionID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	s, found := h.sessions[sessionID]
	h.mu.Unlock()
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	fn(s)
}

// pruneLocked drops sessions idle for longer than SessionTTL. h.mu must be held.
func (h *SessionHandler) pruneLocked(now time.Time) {
	for id, s := range h.sessions {
		if !s.mu.TryLock() {
			continue
		}
		idle := now.Sub(s.lastSeen)
		s.mu.Unlock()
		if idle > SessionTTL {
			delete(h.sessions, id)
			slog.Info("session expired", "session_id", id, "idle", idle.Round(time.Second))
		}
	}
}

// swipeError maps controller errors to HTTP responses
func swipeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, swipe.ErrInvalidDirection):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, swipe.ErrLocked),
		errors.Is(err, swipe.ErrNotFront),
		errors.Is(err, swipe.ErrNoGesture),
		errors.Is(err, swipe.ErrGestureActive),
		errors.Is(err, swipe.ErrStaleGesture),
		errors.Is(err, swipe.ErrStaleTransition),
		errors.Is(err, swipe.ErrEmptyDeck):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	default:
		slog.Error("swipe operation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Swipe operation failed")
	}
}

func outcomeResponse(out swipe.Outcome, phase swipe.Phase) models.OutcomeResponse {
	resp := models.OutcomeResponse{
		Kind:         string(out.Kind),
		Phase:        string(phase),
		TransitionID: out.TransitionID,
		Direction:    string(out.Direction),
		Decision:     out.Decision,
		Committed:    out.Committed,
	}
	if out.Item.ID != "" {
		item := out.Item
		resp.Card = &item
	}
	if out.Kind == swipe.OutcomeClick {
		resp.Link = out.Item.Link
	}
	return resp
}
