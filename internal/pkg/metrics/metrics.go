package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timetrack_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetrack_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	accessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timetrack_access_decisions_total",
		Help: "Access checks by requester role, target kind and result",
	}, []string{"role", "kind", "result"})

	scopeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timetrack_scope_cache_lookups_total",
		Help: "Manager scope cache lookups by result",
	}, []string{"result"})

	clockEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timetrack_clock_events_total",
		Help: "Clock-in and clock-out events",
	}, []string{"event", "late"})

	latenessCounterFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timetrack_lateness_counter_failures_total",
		Help: "Lateness counter updates that failed during clock-out",
	})

	latenessReconciled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timetrack_lateness_reconciled_users_total",
		Help: "User counters rewritten by the reconciliation job",
	})

	kpiComputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetrack_kpi_compute_duration_seconds",
		Help:    "Duration of KPI computations",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode", "scope"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveAccessDecision counts an access check outcome.
func ObserveAccessDecision(role, kind string, allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	accessDecisions.WithLabelValues(role, kind, result).Inc()
}

// ObserveScopeCache counts a cache hit, miss or error.
func ObserveScopeCache(result string) {
	scopeCacheLookups.WithLabelValues(result).Inc()
}

// ObserveClockEvent counts a clock-in or clock-out.
func ObserveClockEvent(event string, late bool) {
	clockEvents.WithLabelValues(event, strconv.FormatBool(late)).Inc()
}

func IncLatenessCounterFailure() {
	latenessCounterFailures.Inc()
}

func AddLatenessReconciled(n int64) {
	latenessReconciled.Add(float64(n))
}

// ObserveKPICompute records how long a KPI computation took.
func ObserveKPICompute(mode, scope string, duration time.Duration) {
	kpiComputeDuration.WithLabelValues(mode, scope).Observe(duration.Seconds())
}

// Middleware records request count and latency labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ObserveHTTPRequest(r.Method, route, status, time.Since(start))
	})
}
