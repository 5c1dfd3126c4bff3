// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danielhkuo/policy-swipe/analysis"
	"github.com/danielhkuo/policy-swipe/auth"
	"github.com/danielhkuo/policy-swipe/catalog"
	"github.com/danielhkuo/policy-swipe/cliparse"
	"github.com/danielhkuo/policy-swipe/db"
	"github.com/danielhkuo/policy-swipe/liked"
	"github.com/danielhkuo/policy-swipe/middleware"
	"github.com/danielhkuo/policy-swipe/models"
	"github.com/danielhkuo/policy-swipe/swipe"
	"github.com/danielhkuo/policy-swipe/testutil"
)

type testEnv struct {
	t        *testing.T
	conn     *sql.DB
	cfg      cliparse.Config
	store    *catalog.Store
	kv       *db.KV
	likes    *liked.Registry
	sessions *SessionHandler
}

func newTestEnv(t *testing.T, svc *analysis.Service) *testEnv {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	store := testutil.SeedTestPolicies(t, conn)
	kv := db.NewKV(conn)
	likes := liked.NewRegistry(kv)

	return &testEnv{
		t:        t,
		conn:     conn,
		cfg:      cfg,
		store:    store,
		kv:       kv,
		likes:    likes,
		sessions: NewSessionHandler(likes, cfg, store, svc),
	}
}

// do calls fn directly; pathValues are name/value pairs
func (e *testEnv) do(fn http.HandlerFunc, method, path string, body any, headers map[string]string, pathValues ...string) *httptest.ResponseRecorder {
	e.t.Helper()
	req := testutil.MakeRequest(method, path, body, headers)
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	w := httptest.NewRecorder()
	fn(w, req)
	return w
}

func deviceHeaders(deviceUUID string) map[string]string {
	return map[string]string{middleware.HeaderDeviceUUID: deviceUUID}
}

func (e *testEnv) createSession(deviceUUID string) models.CreateSessionResponse {
	e.t.Helper()
	w := e.do(e.sessions.CreateSession, "POST", "/sessions",
		models.CreateSessionRequest{ViewportWidth: 400}, deviceHeaders(deviceUUID))
	testutil.AssertStatus(e.t, w, http.StatusCreated)

	var resp models.CreateSessionResponse
	testutil.AssertJSON(e.t, w, &resp)
	return resp
}

// call invokes a session route with the session's id and key
func (e *testEnv) call(s models.CreateSessionResponse, fn http.HandlerFunc, method, suffix string, body any, pathValues ...string) *httptest.ResponseRecorder {
	e.t.Helper()
	headers := map[string]string{middleware.HeaderSessionKey: s.SessionKey}
	values := append([]string{"id", s.SessionID}, pathValues...)
	return e.do(fn, method, "/sessions/"+s.SessionID+suffix, body, headers, values...)
}

func (e *testEnv) snapshot(s models.CreateSessionResponse) models.SessionSnapshot {
	e.t.Helper()
	w := e.call(s, e.sessions.GetSession, "GET", "", nil)
	testutil.AssertStatus(e.t, w, http.StatusOK)
	var snap models.SessionSnapshot
	testutil.AssertJSON(e.t, w, &snap)
	return snap
}

// swipeFront drags the front card by dx and completes the transition
func (e *testEnv) swipeFront(s models.CreateSessionResponse, dx float64) models.OutcomeResponse {
	e.t.Helper()
	front := e.snapshot(s).Cards[0]

	w := e.call(s, e.sessions.PointerDown, "POST", "/pointer/down",
		models.PointerDownRequest{CardID: front.ID, X: 200, Y: 200})
	testutil.AssertStatus(e.t, w, http.StatusOK)

	w = e.call(s, e.sessions.PointerUp, "POST", "/pointer/up", models.PointerRequest{X: 200 + dx, Y: 200})
	testutil.AssertStatus(e.t, w, http.StatusOK)
	var out models.OutcomeResponse
	testutil.AssertJSON(e.t, w, &out)
	if out.Kind != string(swipe.OutcomeCommit) {
		e.t.Fatalf("Expected commit outcome, got %q", out.Kind)
	}

	return e.complete(s, out.TransitionID)
}

func (e *testEnv) complete(s models.CreateSessionResponse, tid uint64) models.OutcomeResponse {
	e.t.Helper()
	id := strconv.FormatUint(tid, 10)
	w := e.call(s, e.sessions.CompleteTransition, "POST", "/transitions/"+id+"/complete", nil, "tid", id)
	testutil.AssertStatus(e.t, w, http.StatusOK)
	var out models.OutcomeResponse
	testutil.AssertJSON(e.t, w, &out)
	return out
}

// storedLiked reads the device's liked set straight from storage
func (e *testEnv) storedLiked(deviceUUID string) *liked.Set {
	e.t.Helper()
	deviceID, err := auth.ParseDeviceID(deviceUUID)
	if err != nil {
		e.t.Fatal(err)
	}
	key := auth.LikedKey(auth.HashDevice(deviceID, e.cfg.DeviceSalt))
	return liked.Load(context.Background(), e.kv, key)
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		headers    map[string]string
		body       any
		wantStatus int
	}{
		{"missing device header", nil, nil, http.StatusBadRequest},
		{"invalid device uuid", deviceHeaders("not-a-uuid"), nil, http.StatusBadRequest},
		{"negative viewport", deviceHeaders(testutil.TestDeviceUUID), models.CreateSessionRequest{ViewportWidth: -1}, http.StatusBadRequest},
		{"no body", deviceHeaders(testutil.TestDeviceUUID), nil, http.StatusCreated},
		{"with viewport", deviceHeaders(testutil.TestDeviceUUID), models.CreateSessionRequest{ViewportWidth: 800}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(env.sessions.CreateSession, "POST", "/sessions", tt.body, tt.headers)
			testutil.AssertStatus(t, w, tt.wantStatus)
			if tt.wantStatus != http.StatusCreated {
				return
			}

			var resp models.CreateSessionResponse
			testutil.AssertJSON(t, w, &resp)
			if err := auth.ValidateSessionKey(resp.SessionID, resp.SessionKey, env.cfg.SessionKeySalt); err != nil {
				t.Errorf("Session key does not validate: %v", err)
			}
			if len(resp.Session.Cards) != env.cfg.Swipe.BatchSize {
				t.Errorf("Expected %d cards, got %d", env.cfg.Swipe.BatchSize, len(resp.Session.Cards))
			}
			if resp.Session.Remaining != 12-env.cfg.Swipe.BatchSize {
				t.Errorf("Expected %d remaining, got %d", 12-env.cfg.Swipe.BatchSize, resp.Session.Remaining)
			}
			if resp.Session.Phase != string(swipe.PhaseIdle) || resp.Session.Empty {
				t.Errorf("Unexpected initial snapshot: %+v", resp.Session)
			}
		})
	}
}

func TestSessionAuthorization(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(testutil.TestDeviceUUID)

	t.Run("wrong key", func(t *testing.T) {
		w := env.do(env.sessions.GetSession, "GET", "/sessions/"+s.SessionID, nil,
			map[string]string{middleware.HeaderSessionKey: "wrong"}, "id", s.SessionID)
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("key of another session", func(t *testing.T) {
		other := env.createSession(testutil.TestDeviceUUID)
		w := env.do(env.sessions.GetSession, "GET", "/sessions/"+s.SessionID, nil,
			map[string]string{middleware.HeaderSessionKey: other.SessionKey}, "id", s.SessionID)
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("unknown session with valid key", func(t *testing.T) {
		ghost := auth.NewSessionID()
		w := env.do(env.sessions.GetSession, "GET", "/sessions/"+ghost, nil,
			map[string]string{middleware.HeaderSessionKey: auth.GenerateSessionKey(ghost, env.cfg.SessionKeySalt)}, "id", ghost)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestDragCommitFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(testutil.TestDeviceUUID)
	cards := s.Session.Cards

	w := env.call(s, env.sessions.PointerDown, "POST", "/pointer/down",
		models.PointerDownRequest{CardID: cards[0].ID, X: 100, Y: 100})
	testutil.AssertStatus(t, w, http.StatusOK)
	var down models.PointerDownResponse
	testutil.AssertJSON(t, w, &down)
	if !down.Accepted || down.Phase != string(swipe.PhaseDragging) {
		t.Fatalf("Expected accepted drag, got %+v", down)
	}

	w = env.call(s, env.sessions.PointerMove, "POST", "/pointer/move", models.PointerRequest{X: 150, Y: 100})
	testutil.AssertStatus(t, w, http.StatusOK)
	var frame models.FrameResponse
	testutil.AssertJSON(t, w, &frame)
	if frame.OffsetX != 50 || frame.Rotation != 2.5 || frame.LikeOpacity != 0.5 {
		t.Errorf("Unexpected frame: %+v", frame)
	}

	w = env.call(s, env.sessions.PointerUp, "POST", "/pointer/up", models.PointerRequest{X: 201, Y: 100})
	testutil.AssertStatus(t, w, http.StatusOK)
	var out models.OutcomeResponse
	testutil.AssertJSON(t, w, &out)
	if out.Kind != string(swipe.OutcomeCommit) || out.Decision != models.DecisionLike || out.TransitionID == 0 {
		t.Fatalf("Expected like commit, got %+v", out)
	}

	// A pointer-down before the transition completes is dropped
	w = env.call(s, env.sessions.PointerDown, "POST", "/pointer/down",
		models.PointerDownRequest{CardID: cards[1].ID})
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &down)
	if down.Accepted || down.Reason != swipe.ErrLocked.Error() {
		t.Errorf("Expected locked rejection, got %+v", down)
	}
	if env.storedLiked(testutil.TestDeviceUUID).Len() != 0 {
		t.Error("Liked set changed before the transition completed")
	}

	done := env.complete(s, out.TransitionID)
	if done.Kind != string(swipe.OutcomeCommitted) || done.Committed == nil || done.Committed.Item.ID != cards[0].ID {
		t.Fatalf("Expected committed %s, got %+v", cards[0].ID, done)
	}

	if !env.storedLiked(testutil.TestDeviceUUID).Contains(cards[0].ID) {
		t.Error("Liked set was not persisted")
	}
	snap := env.snapshot(s)
	if snap.Cards[0].ID != cards[1].ID || snap.HistoryLen != 1 || snap.LikedCount != 1 {
		t.Errorf("Unexpected snapshot after commit: %+v", snap)
	}
}

func TestClickReturnsLink(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(testutil.TestDeviceUUID)
	front := s.Session.Cards[0]

	env.call(s, env.sessions.PointerDown, "POST", "/pointer/down", models.PointerDownRequest{CardID: front.ID, X: 10, Y: 10})
	w := env.call(s, env.sessions.PointerUp, "POST", "/pointer/up", models.PointerRequest{X: 13, Y: 14})
	testutil.AssertStatus(t, w, http.StatusOK)

	var out models.OutcomeResponse
	testutil.AssertJSON(t, w, &out)
	if out.Kind != string(swipe.OutcomeClick) || out.Link != front.Link {
		t.Errorf("Expected click with link %s, got %+v", front.Link, out)
	}
	if snap := env.snapshot(s); snap.HistoryLen != 0 || snap.Cards[0].ID != front.ID {
		t.Errorf("Click mutated the session: %+v", snap)
	}
}

func TestShortDragReturns(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(testutil.TestDeviceUUID)
	front := s.Session.Cards[0]

	env.call(s, env.sessions.PointerDown, "POST", "/pointer/down", models.PointerDownRequest{CardID: front.ID})
	w := env.call(s, env.sessions.PointerUp, "POST", "/pointer/up", models.PointerRequest{X: -99})
	var out models.OutcomeResponse
	testutil.AssertJSON(t, w, &out)
	if out.Kind != string(swipe.OutcomeReturn) {
		t.Fatalf("Expected return, got %+v", out)
	}

	settled := env.complete(s, out.TransitionID)
	if settled.Kind != string(swipe.OutcomeSettled) || settled.Phase != string(swipe.PhaseIdle) {
		t.Errorf("Expected settled idle, got %+v", settled)
	}
}

func TestPointerDownOnBackCard(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(testutil.TestDeviceUUID)

	w := env.call(s, env.sessions.PointerDown, "POST", "/pointer/down",
		models.PointerDownRequest{CardID: s.Session.Cards[2].ID})
	testutil.AssertStatus(t, w, http.StatusOK)
	var down models.PointerDownResponse
	testutil.AssertJSON(t, w, &down)
	if down.Accepted || down.Reason != swipe.ErrNotFront.Error() {
		t.Errorf("Expected not-front rejection, got %+v", down)
	}

	w = env.call(s, env.sessions.PointerDown, "POST", "/pointer/down", models.PointerDownRequest{})
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestPointerEventsWithoutDrag(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(testutil.TestDeviceUUID)

	w := env.call(s, env.sessions.PointerMove, "POST", "/pointer/move", models.PointerRequest{X: 5})
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = env.call(s, env.sessions.PointerUp, "POST", "/pointer/up", models.PointerRequest{X: 5})
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = env.call(s, env.sessions.PointerCancel, "POST", "/pointer/cancel", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestCompleteTransitionErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(testutil.TestDeviceUUID)

	w := env.call(s, env.sessions.CompleteTransition, "POST", "/transitions/abc/complete", nil, "tid", "abc")
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = env.call(s, env.sessions.CompleteTransition, "POST", "/transitions/42/complete", nil, "tid", "42")
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestKeySwipe(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(testutil.TestDeviceUUID)

	w := env.call(s, env.sessions.Key, "POST", "/keys/up", nil, "direction", "up")
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = env.call(s, env.sessions.Key, "POST", "/keys/left", nil, "direction", "left")
	testutil.AssertStatus(t, w, http.StatusOK)
	var out models.OutcomeResponse
	testutil.AssertJSON(t, w, &out)
	if out.Decision != models.DecisionPass || out.Phase != string(swipe.PhaseCommittingPass) {
		t.Fatalf("Expected pass commit, got %+v", out)
	}

	// Second key press while locked
	w = env.call(s, env.sessions.Key, "POST", "/keys/right", nil, "direction", "right")
	testutil.AssertStatus(t, w, http.StatusConflict)

	env.complete(s, out.TransitionID)
	if env.storedLiked(testutil.TestDeviceUUID).Len() != 0 {
		t.Error("A pass must not touch the liked set")
	}
}

func TestUndo(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(testutil.TestDeviceUUID)
	front := s.Session.Cards[0]

	w := env.call(s, env.sessions.Undo, "POST", "/undo", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.UndoResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != MsgNothingToUndo || resp.Restored != nil {
		t.Errorf("Expected informational message, got %+v", resp)
	}

	env.swipeFront(s, 150)

	w = env.call(s, env.sessions.Undo, "POST", "/undo", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	resp = models.UndoResponse{}
	testutil.AssertJSON(t, w, &resp)
	if resp.Restored == nil || resp.Restored.Item.ID != front.ID || resp.Restored.Decision != models.DecisionLike {
		t.Fatalf("Expected %s restored, got %+v", front.ID, resp)
	}
	if resp.Session.Cards[0].ID != front.ID {
		t.Errorf("Restored card is not at the front")
	}
	if env.storedLiked(testutil.TestDeviceUUID).Contains(front.ID) {
		t.Error("Undo did not remove the like from storage")
	}
}

func TestLoadMore(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(testutil.TestDeviceUUID)

	wantReleased := []int{5, 2, 0}
	for i, want := range wantReleased {
		w := env.call(s, env.sessions.LoadMore, "POST", "/more", nil)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.LoadMoreResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Released != want {
			t.Errorf("Load %d: expected %d released, got %d", i, want, resp.Released)
		}
		if want == 0 && resp.Message != MsgAllViewed {
			t.Errorf("Expected %q, got %q", MsgAllViewed, resp.Message)
		}
	}

	if snap := env.snapshot(s); len(snap.Cards) != 12 || snap.Remaining != 0 {
		t.Errorf("Expected all 12 cards visible, got %d (remaining %d)", len(snap.Cards), snap.Remaining)
	}
}

func TestSearchAndRestart(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(testutil.TestDeviceUUID)

	w := env.call(s, env.sessions.Search, "GET", "/search?q=transit", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var snap models.SessionSnapshot
	testutil.AssertJSON(t, w, &snap)
	if len(snap.Cards) != 1 || snap.Cards[0].ID != "p1" {
		t.Fatalf("Expected only p1, got %+v", snap.Cards)
	}

	w = env.call(s, env.sessions.Search, "GET", "/search?q=summary+of+policy+7&summary=1", nil)
	snap = models.SessionSnapshot{}
	testutil.AssertJSON(t, w, &snap)
	if len(snap.Cards) != 1 || snap.Cards[0].ID != "p7" {
		t.Fatalf("Expected summary match p7, got %+v", snap.Cards)
	}

	w = env.call(s, env.sessions.Restart, "POST", "/restart", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	snap = models.SessionSnapshot{}
	testutil.AssertJSON(t, w, &snap)
	if len(snap.Cards) != 5 || snap.Remaining != 7 {
		t.Errorf("Expected a fresh deck after restart, got %d cards, %d remaining", len(snap.Cards), snap.Remaining)
	}
}

func TestNewSessionExcludesLiked(t *testing.T) {
	env := newTestEnv(t, nil)
	first := env.createSession(testutil.TestDeviceUUID)
	likedID := first.Session.Cards[0].ID
	env.swipeFront(first, 150)

	second := env.createSession(testutil.TestDeviceUUID)
	if second.Session.LikedCount != 1 {
		t.Errorf("Expected 1 liked, got %d", second.Session.LikedCount)
	}
	if got := len(second.Session.Cards) + second.Session.Remaining; got != 11 {
		t.Errorf("Expected 11 candidates, got %d", got)
	}
	for _, card := range second.Session.Cards {
		if card.ID == likedID {
			t.Errorf("Liked card %s dealt again", likedID)
		}
	}

	// A different device is unaffected
	other := env.createSession("0e4f9b1c-2d3a-4e5f-9a8b-7c6d5e4f3a2b")
	if other.Session.LikedCount != 0 || other.Session.Remaining+len(other.Session.Cards) != 12 {
		t.Errorf("Liked set leaked across devices: %+v", other.Session)
	}
}

func TestDeleteSession(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(testutil.TestDeviceUUID)

	w := env.call(s, env.sessions.DeleteSession, "DELETE", "", nil)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	w = env.call(s, env.sessions.GetSession, "GET", "", nil)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = env.call(s, env.sessions.DeleteSession, "DELETE", "", nil)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestEmptyCatalogSession(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewSessionHandler(liked.NewRegistry(db.NewKV(conn)), cfg, catalog.New(nil), nil)

	req := testutil.MakeRequest("POST", "/sessions", nil, deviceHeaders(testutil.TestDeviceUUID))
	w := httptest.NewRecorder()
	h.CreateSession(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreateSessionResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Session.Empty || len(resp.Session.Cards) != 0 {
		t.Errorf("Expected empty deck, got %+v", resp.Session)
	}
}
