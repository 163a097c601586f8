package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "code"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	// Dispatch
	attempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailing_attempts_total",
			Help: "Delivery attempts recorded, by result.",
		},
		[]string{"result"},
	)
	campaignsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailing_campaigns_skipped_total",
			Help: "Campaigns skipped during a dispatch cycle, by reason.",
		},
		[]string{"reason"},
	)
	campaignsHalted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mailing_campaigns_halted_total",
			Help: "Campaigns whose recipient loop stopped on a recipient without address.",
		},
	)
	cycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailing_dispatch_cycles_total",
			Help: "Dispatch cycles run, by trigger and outcome.",
		},
		[]string{"trigger", "outcome"},
	)
	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mailing_dispatch_cycle_duration_seconds",
			Help:    "Dispatch cycle duration in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	registerOnce sync.Once
)

// Register adds every collector to the default registry. Safe to call twice.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			attempts,
			campaignsSkipped,
			campaignsHalted,
			cycles,
			cycleDuration,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveHTTPRequest(method, route, code string, d time.Duration) {
	httpRequests.WithLabelValues(method, route, code).Inc()
	httpDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

func IncAttempt(result string)        { attempts.WithLabelValues(result).Inc() }
func IncCampaignSkipped(reason string) { campaignsSkipped.WithLabelValues(reason).Inc() }
func IncCampaignHalted()              { campaignsHalted.Inc() }

func ObserveCycle(trigger string, failed bool, d time.Duration) {
	outcome := "ok"
	if failed {
		outcome = "infrastructure_error"
	}
	cycles.WithLabelValues(trigger, outcome).Inc()
	cycleDuration.Observe(d.Seconds())
}
