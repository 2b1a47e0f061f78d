package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_actions_total",
			Help: "Committed player actions by type",
		},
		[]string{"action_type"},
	)
	ActionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_actions_rejected_total",
			Help: "Rejected player actions by error kind",
		},
		[]string{"kind"},
	)
	StaleWrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "game_stale_writes_total",
			Help: "Commits that lost the version race and were retried",
		},
	)
	DuplicateActions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "game_duplicate_actions_total",
			Help: "Submissions resolved from the action log without executing",
		},
	)
	SyncGaps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "game_sync_checks_with_gap_total",
			Help: "Sync checks that reported a version gap",
		},
	)
	PublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "game_broadcast_publish_failures_total",
			Help: "State updates that could not be published to the broadcast channel",
		},
	)
	SessionsMarkedStale = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "game_sessions_marked_disconnected_total",
			Help: "Sessions flagged disconnected by the heartbeat sweep",
		},
	)
	RoomsAbandoned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "game_rooms_abandoned_total",
			Help: "Rooms flagged abandoned by the liveness sweep",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ActionsTotal, ActionsRejected, StaleWrites, DuplicateActions,
		SyncGaps, PublishFailures, SessionsMarkedStale, RoomsAbandoned,
	)
}
