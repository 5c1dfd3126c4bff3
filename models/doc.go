// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - PolicyItem: id, title, summary, period, link, genre
  - HistoryEntry: item + decision ("like" or "pass")
  - GenreShare: genre, count, percentage (one decimal place)

Feed records without a genre are filed under GenreOther.

# Request Types

Types for parsing incoming JSON:

  - CreateSessionRequest: viewport_width
  - PointerDownRequest: card_id, x, y
  - PointerRequest: x, y

# Response Types

Types for JSON responses:

  - CreateSessionResponse: session_id, session_key, session
  - SessionSnapshot: phase, visible cards, remaining, history and liked counts
  - FrameResponse: drag offsets, rotation, indicator opacities
  - OutcomeResponse: click / commit / return / committed results
  - UndoResponse, LoadMoreResponse: informational message when there is
    nothing to undo or nothing left to load
  - PoliciesResponse, LikedResponse, AnalysisResponse
  - ErrorResponse: error, message
*/
package models
