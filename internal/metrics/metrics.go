package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	serviceStarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "droolsctl",
			Subsystem: "service",
			Name:      "starts_total",
			Help:      "Number of successful service starts.",
		}, []string{"name"},
	)
	serviceStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "droolsctl",
			Subsystem: "service",
			Name:      "stops_total",
			Help:      "Number of successful service stops.",
		}, []string{"name"},
	)
	serviceStartErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "droolsctl",
			Subsystem: "service",
			Name:      "start_errors_total",
			Help:      "Number of failed start attempts (setup errors included).",
		}, []string{"name"},
	)
	stalePIDFiles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "droolsctl",
			Subsystem: "service",
			Name:      "stale_pidfiles_total",
			Help:      "Number of stale pid files discovered and cleared.",
		}, []string{"name"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	for _, c := range []prometheus.Collector{serviceStarts, serviceStops, serviceStartErrors, stalePIDFiles} {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// RegisterDefault registers against the default prometheus registry.
func RegisterDefault() error { return Register(prometheus.DefaultRegisterer) }

func IncStart(name string)      { serviceStarts.WithLabelValues(name).Inc() }
func IncStop(name string)       { serviceStops.WithLabelValues(name).Inc() }
func IncStartError(name string) { serviceStartErrors.WithLabelValues(name).Inc() }
func IncStale(name string)      { stalePIDFiles.WithLabelValues(name).Inc() }

// Serve exposes /metrics on the given listen address and blocks.
func Serve(listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
