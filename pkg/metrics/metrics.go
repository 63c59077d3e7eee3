package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/showroom/pkg/entitlement"
)

const namespace = "showroom"

// Collector records entitlement decisions and HTTP traffic. It implements
// entitlement.Observer.
type Collector struct {
	quotaChecks   *prometheus.CounterVec
	tierFallbacks prometheus.Counter
	httpDuration  *prometheus.HistogramVec
	gatherer      prometheus.Gatherer
}

var _ entitlement.Observer = (*Collector)(nil)

// New registers the collector's metrics with reg. A nil reg uses a fresh
// registry, which keeps tests isolated.
func New(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Collector{
		quotaChecks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_checks_total",
			Help:      "Quota decisions by resource, tier and outcome.",
		}, []string{"resource", "tier", "outcome"}),
		tierFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_fallbacks_total",
			Help:      "Subscriptions with an unrecognized tier resolved as FREE.",
		}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		gatherer: reg,
	}
}

func (c *Collector) QuotaChecked(d entitlement.QuotaDecision) {
	outcome := "allowed"
	if !d.CanAddMore {
		outcome = "denied"
	}
	c.quotaChecks.WithLabelValues(string(d.Resource), d.Tier.String(), outcome).Inc()
}

func (c *Collector) TierFallback(string) {
	// The raw value is not a label: it is unbounded.
	c.tierFallbacks.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Middleware observes request latency labelled by the chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		c.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
