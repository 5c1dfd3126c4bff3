// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Policy Swipe API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(conn, cfg, store, analysisSvc)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Catalog (public):

	GET /policies?q=&summary=1 - List or search policies
	GET /policies/{id}         - Single policy

Sessions (X-Device-UUID to create, X-Session-Key afterwards):

	POST   /sessions                                 - Start a session
	GET    /sessions/{id}                            - Snapshot
	DELETE /sessions/{id}                            - End session
	POST   /sessions/{id}/pointer/down               - Start drag
	POST   /sessions/{id}/pointer/move               - Drag frame
	POST   /sessions/{id}/pointer/up                 - Release
	POST   /sessions/{id}/pointer/cancel             - Abandon drag
	POST   /sessions/{id}/transitions/{tid}/complete - Animation done
	POST   /sessions/{id}/keys/{direction}           - Arrow key
	POST   /sessions/{id}/undo                       - Undo last swipe
	POST   /sessions/{id}/more                       - Load more
	POST   /sessions/{id}/restart                    - Rebuild deck
	GET    /sessions/{id}/search?q=&summary=1        - Search deck

Device views (X-Device-UUID):

	GET    /liked
	DELETE /liked/{policyID}
	GET    /analysis

Pointer moves are not logged.
*/
package router
