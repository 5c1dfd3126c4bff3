// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package analysis summarizes a device's liked policies.

# Genre Breakdown

Breakdown counts liked items per genre and computes each genre's share:

	shares := analysis.Breakdown(store.Resolve(set.List()))

Shares are ordered by count, ties broken by genre name. Percentages are
rounded to one decimal place.

# Nickname Labels

A Service posts the liked titles and genres to a remote endpoint and stores
the returned nickname under the device's key:

	svc := analysis.NewService(analysis.NewHTTPClient(cfg.AnalysisURL), kv)
	ctrl := swipe.NewController(swipe.Options{Analyzer: svc.For(key), ...})

Trigger.Analyze never blocks: the request runs on its own goroutine and
failures only log. Overlapping requests for the same key share one remote
call. The last successful label is returned by Label; a failed request leaves
it unchanged.
*/
package analysis
