package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "watchroom_sessions_open",
		Help: "Currently connected sessions",
	})

	metricRoomsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "watchroom_rooms_live",
		Help: "Rooms with at least one member",
	})

	metricActionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "watchroom_actions_applied_total",
		Help: "Playback actions applied, by kind",
	}, []string{"kind"})

	metricBroadcastDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watchroom_broadcast_dropped_total",
		Help: "Broadcast frames dropped on backpressure",
	})

	metricSignalsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watchroom_signals_relayed_total",
		Help: "Signaling payloads relayed to a live target",
	})

	metricSignalsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watchroom_signals_dropped_total",
		Help: "Signaling payloads dropped for a missing target",
	})
)
