// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/policy-swipe/analysis"
	"github.com/danielhkuo/policy-swipe/catalog"
	"github.com/danielhkuo/policy-swipe/cliparse"
	"github.com/danielhkuo/policy-swipe/db"
	"github.com/danielhkuo/policy-swipe/handlers"
	"github.com/danielhkuo/policy-swipe/liked"
	"github.com/danielhkuo/policy-swipe/middleware"
)

// Version is served on the root endpoint
const Version = "policy-swipe API v1"

// NewRouter registers every endpoint. analysisSvc may be nil.
func NewRouter(conn *sql.DB, cfg cliparse.Config, store *catalog.Store, analysisSvc *analysis.Service) *http.ServeMux {
	mux := http.NewServeMux()
	likes := liked.NewRegistry(db.NewKV(conn))

	// Initialize handlers
	policyHandler := handlers.NewPolicyHandler(store)
	sessionHandler := handlers.NewSessionHandler(likes, cfg, store, analysisSvc)
	likedHandler := handlers.NewLikedHandler(likes, cfg, store)
	analysisHandler := handlers.NewAnalysisHandler(likes, cfg, store, analysisSvc)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Catalog (public)
	mux.HandleFunc("GET /policies", middleware.WithLogging(policyHandler.ListPolicies))
	mux.HandleFunc("GET /policies/{id}", middleware.WithLogging(policyHandler.GetPolicy))

	// Swipe sessions (X-Device-UUID to create, X-Session-Key afterwards)
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("DELETE /sessions/{id}", middleware.WithLogging(sessionHandler.DeleteSession))

	// Gesture events
	mux.HandleFunc("POST /sessions/{id}/pointer/down", middleware.WithLogging(sessionHandler.PointerDown))
	mux.HandleFunc("POST /sessions/{id}/pointer/move", sessionHandler.PointerMove) // too chatty to log
	mux.HandleFunc("POST /sessions/{id}/pointer/up", middleware.WithLogging(sessionHandler.PointerUp))
	mux.HandleFunc("POST /sessions/{id}/pointer/cancel", middleware.WithLogging(sessionHandler.PointerCancel))
	mux.HandleFunc("POST /sessions/{id}/transitions/{tid}/complete", middleware.WithLogging(sessionHandler.CompleteTransition))
	mux.HandleFunc("POST /sessions/{id}/keys/{direction}", middleware.WithLogging(sessionHandler.Key))

	// Deck lifecycle
	mux.HandleFunc("POST /sessions/{id}/undo", middleware.WithLogging(sessionHandler.Undo))
	mux.HandleFunc("POST /sessions/{id}/more", middleware.WithLogging(sessionHandler.LoadMore))
	mux.HandleFunc("POST /sessions/{id}/restart", middleware.WithLogging(sessionHandler.Restart))
	mux.HandleFunc("GET /sessions/{id}/search", middleware.WithLogging(sessionHandler.Search))

	// Device views (X-Device-UUID)
	mux.HandleFunc("GET /liked", middleware.WithLogging(likedHandler.GetLiked))
	mux.HandleFunc("DELETE /liked/{policyID}", middleware.WithLogging(likedHandler.RemoveLiked))
	mux.HandleFunc("GET /analysis", middleware.WithLogging(analysisHandler.GetAnalysis))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(Version))
	})

	return mux
}
