package swipe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swipe_commits_total",
		Help: "Committed swipes by decision",
	}, []string{"decision"})

	undoTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swipe_undo_total",
		Help: "Swipes reverted by undo",
	})

	clicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swipe_clicks_total",
		Help: "Gestures classified as clicks",
	})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swipe_gestures_rejected_total",
		Help: "Gesture starts dropped, by reason",
	}, []string{"reason"})

	forcedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swipe_forced_completions_total",
		Help: "Commit transitions completed because the client never reported them",
	})
)
