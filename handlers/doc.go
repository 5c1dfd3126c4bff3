// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Policy Swipe API.

# Handler Types

Each handler is a struct with storage, catalog and config dependencies:

  - PolicyHandler: Catalog listing and search
  - SessionHandler: Swipe sessions and their gesture events
  - LikedHandler: The device's liked list
  - AnalysisHandler: Genre breakdown and nickname

Handlers are created via constructor functions:

	sessionHandler := handlers.NewSessionHandler(likes, cfg, store, analysisSvc)

# Sessions

A session holds one swipe controller in memory. Creating one requires the
X-Device-UUID header; every later call requires the returned X-Session-Key.

	POST /sessions                                 → CreateSession
	POST /sessions/{id}/pointer/down               → PointerDown
	POST /sessions/{id}/pointer/move               → PointerMove (render frame)
	POST /sessions/{id}/pointer/up                 → PointerUp (click, commit or return)
	POST /sessions/{id}/transitions/{tid}/complete → CompleteTransition

A commit is applied only when the client reports its exit animation done.
Until then the session is locked: pointer-downs come back with
accepted=false, other events get 409.

Events for one session are handled one at a time. Sessions idle for
SessionTTL are dropped on the next CreateSession.

# Informational Responses

Undo with empty history, load more with nothing left and analysis with no
likes answer 200 with a message rather than an error.

# Device Views

	GET    /liked            → GetLiked
	DELETE /liked/{policyID} → RemoveLiked
	GET    /analysis         → GetAnalysis

These read the liked set stored for the X-Device-UUID header.
*/
package handlers
