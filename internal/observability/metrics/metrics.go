package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hris_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hris_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	authRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hris_auth_rejections_total",
		Help: "Requests rejected by the tenant guard or role gate, by reason",
	}, []string{"reason"})

	orphanIdentities = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hris_orphan_identities_total",
		Help: "Identities left behind by a failed compensating delete",
	})

	tenantCascadeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hris_tenant_cascade_failures_total",
		Help: "Tenant deletions rolled back, by the collection that failed",
	}, []string{"collection"})

	notificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hris_notification_failures_total",
		Help: "Outbound notifications that could not be delivered, by kind",
	}, []string{"kind"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordAuthRejection(reason string) {
	authRejections.WithLabelValues(reason).Inc()
}

func RecordOrphanIdentity() {
	orphanIdentities.Inc()
}

func RecordCascadeFailure(collection string) {
	tenantCascadeFailures.WithLabelValues(collection).Inc()
}

func RecordNotificationFailure(kind string) {
	notificationFailures.WithLabelValues(kind).Inc()
}

// AuthRejections exposes the counter for assertions in tests.
func AuthRejections() *prometheus.CounterVec {
	return authRejections
}

func OrphanIdentities() prometheus.Counter {
	return orphanIdentities
}

func CascadeFailures() *prometheus.CounterVec {
	return tenantCascadeFailures
}
