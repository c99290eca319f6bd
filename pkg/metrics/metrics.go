package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rollwatch"

// Webhook outcomes
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeIgnored   = "ignored"
	OutcomeUpgrade   = "upgrade"
)

var (
	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Webhook deliveries by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	UpgradesDetectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upgrades_detected_total",
			Help:      "Episode downloads classified as quality upgrades",
		},
	)

	SeasonCompletionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "season_completions_total",
			Help:      "Seasons whose expected episodes all arrived",
		},
	)

	StaleSeasonsFlushedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_seasons_flushed_total",
			Help:      "Incomplete seasons flushed after the queue max age",
		},
	)

	QueuedShows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "webhook_queue_shows",
			Help:      "Shows currently held in the webhook queue",
		},
	)

	SessionsProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_processed_total",
			Help:      "Episode playback sessions evaluated by the session monitor",
		},
	)

	SearchesTriggeredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_triggered_total",
			Help:      "Season searches triggered by the session monitor",
		},
		[]string{"reason"},
	)

	RollingUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rolling_updates_total",
			Help:      "Rolling show frontier changes by action",
		},
		[]string{"action"},
	)

	MonitorErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monitor_errors_total",
			Help:      "Errors recorded by session monitor runs",
		},
	)
)
