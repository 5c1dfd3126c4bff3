// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Policy Swipe API server.

Policy Swipe deals government policy cards one at a time. A drag past the
commit threshold (or an arrow key) likes or passes the front card, the deck
is balanced across genres, and likes persist per device so the next session
skips them. After enough likes a remote service names the user's taste.

# Starting the Server

The server requires environment variables or CLI flags for configuration.
A .env file in the working directory is loaded first:

	DATABASE_URL=policies.db SEED_FILE=policies.json go run .

Or with flags:

	go run . -p 3318 -d "postgres://..." -t postgres -seed policies.json

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - SESSION_KEY_SALT (-session-salt): Secret for session key HMAC
  - DEVICE_SALT (-device-salt): Secret for hashing device UUIDs

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - SEED_FILE (-seed): JSON policy feed imported at startup
  - TUNING_FILE (-tuning): YAML swipe tuning
  - ANALYSIS_URL (-analysis-url): Remote nickname endpoint
  - LIKE_DIRECTION, BATCH_SIZE, COMMIT_THRESHOLD, ANALYSIS_THRESHOLD

# Architecture

  - swipe: Gesture state machine, undo history, deck lifecycle
  - deck: Genre-balanced ordering, visible deck, load-more pager
  - catalog: Immutable policy catalog and search
  - liked: Persistent liked set
  - analysis: Genre breakdown and remote nickname labels
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Session keys and device hashing
  - db: Schema, policy import, key-value store
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
