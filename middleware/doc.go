// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware holds the glue shared by every swipe route: access logs,
CORS for the browser client, JSON encoding and the two identity headers.

# Routing

Each route is registered through WithLogging, which records one access log
line after the handler returns:

	mux.HandleFunc("POST /sessions/{id}/pointer/up", middleware.WithLogging(sessionHandler.PointerUp))

The line carries method, path, status, client_ip and duration_ms. A 5xx is
logged at error level; a 409 from a locked session stays at info.

The whole mux is then wrapped once:

	handler := middleware.CORS(mux)

Preflight requests are answered directly. HeaderDeviceUUID and
HeaderSessionKey are allowed alongside Content-Type, so the client can send
them on cross-origin calls.

# Gesture Bodies

Pointer events arrive as small JSON bodies:

	var req models.PointerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

and the outcome goes back with JSONResponse:

	middleware.JSONResponse(w, http.StatusOK, models.OutcomeResponse{Kind: "commit", TransitionID: 7})

Errors always use models.ErrorResponse, with the status text as "error":

	{"error": "Conflict", "message": "a swipe is still being committed"}

GetClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
the connection address. It only feeds the access log.
*/
package middleware
