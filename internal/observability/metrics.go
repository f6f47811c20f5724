package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	decryptFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agenda",
		Subsystem: "crypto",
		Name:      "decrypt_fallbacks_total",
		Help:      "Stored values returned verbatim because they could not be decrypted, by reason.",
	}, []string{"reason"})
	reconcileRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agenda",
		Subsystem: "reconcile",
		Name:      "runs_total",
		Help:      "Priority reconciliation invocations.",
	})
	reconcileWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agenda",
		Subsystem: "reconcile",
		Name:      "priority_writes_total",
		Help:      "Priority values persisted by reconciliation runs.",
	})
	eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agenda",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Activity lifecycle events handed to the broker, by type.",
	}, []string{"type"})
)

// Decrypt fallback reasons. A value without the ciphertext prefix is
// pre-encryption legacy data; a value with the prefix that fails
// authentication is corrupt or was written under another key.
const (
	FallbackPlaintext = "plaintext"
	FallbackCorrupt   = "corrupt"
)

func init() {
	prometheus.MustRegister(decryptFallbacks, reconcileRuns, reconcileWrites, eventsPublished)
}

// RecordDecryptFallback counts a decrypt attempt that returned the stored
// value unchanged.
func RecordDecryptFallback(reason string) {
	decryptFallbacks.WithLabelValues(reason).Inc()
}

// RecordReconcileRun counts one reconciliation pass and the priority
// updates it persisted.
func RecordReconcileRun(writes int) {
	reconcileRuns.Inc()
	reconcileWrites.Add(float64(writes))
}

// RecordEventPublished counts a lifecycle event accepted by the publisher.
func RecordEventPublished(eventType string) {
	eventsPublished.WithLabelValues(eventType).Inc()
}
