// Package metrics provides Prometheus metrics for the vesselradar service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vesselradar"

var (
	// LocationLookupsTotal counts resolved locations by the tier that answered.
	LocationLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "location",
			Name:      "lookups_total",
			Help:      "Total number of location resolutions by source",
		},
		[]string{"source"},
	)

	// IdentityLookupsTotal counts resolved identities by tier.
	IdentityLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "lookups_total",
			Help:      "Total number of identity resolutions by tier",
		},
		[]string{"tier"},
	)

	PersistenceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "write_failures_total",
			Help:      "Total number of non-fatal persistence write failures",
		},
		[]string{"store"},
	)

	AISRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ais",
			Name:      "requests_total",
			Help:      "Total number of outbound AIS provider requests",
		},
		[]string{"operation", "status_code"},
	)

	AISRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ais",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound AIS provider requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	RateLimitHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "hits_total",
			Help:      "Total number of requests rejected by a rate limit",
		},
		[]string{"limit"},
	)

	SyncItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "items_total",
			Help:      "Total number of batch sync items by outcome",
		},
		[]string{"status"},
	)

	SyncRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "run_duration_seconds",
			Help:      "Duration of batch sync runs in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)
)

func RecordLocationLookup(source string) {
	LocationLookupsTotal.WithLabelValues(source).Inc()
}

func RecordIdentityLookup(tier string) {
	IdentityLookupsTotal.WithLabelValues(tier).Inc()
}

func RecordPersistenceFailure(store string) {
	PersistenceFailuresTotal.WithLabelValues(store).Inc()
}

func RecordAISRequest(operation, statusCode string, durationSeconds float64) {
	AISRequestsTotal.WithLabelValues(operation, statusCode).Inc()
	AISRequestDuration.WithLabelValues(operation).Observe(durationSeconds)
}

func RecordRateLimitHit(limit string) {
	RateLimitHitsTotal.WithLabelValues(limit).Inc()
}

func RecordSyncItem(status string) {
	SyncItemsTotal.WithLabelValues(status).Inc()
}

func RecordSyncRun(durationSeconds float64) {
	SyncRunDuration.Observe(durationSeconds)
}

func RecordKafkaPublish(topic, status string) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
}
