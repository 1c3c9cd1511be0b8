// Package droolsctl manages the lifecycle of a single long-running web
// service through its pid file: idempotent start, best-effort stop, read-only
// status, restart and checkout updates. It is the embeddable face of the
// droolsctl CLI.
package droolsctl

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	icfg "github.com/Lakshya-serigor/droolsctl/internal/config"
	"github.com/Lakshya-serigor/droolsctl/internal/controller"
	"github.com/Lakshya-serigor/droolsctl/internal/history"
	"github.com/Lakshya-serigor/droolsctl/internal/metrics"
	iapi "github.com/Lakshya-serigor/droolsctl/internal/server"
	"github.com/Lakshya-serigor/droolsctl/internal/setup"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = controller.Config

type Status = controller.Status

type SetupOptions = setup.Options

type HistoryConfig = history.Config

type HistorySink = history.Sink

// Noop outcomes and helpers.
var (
	ErrAlreadyRunning = controller.ErrAlreadyRunning
	ErrNotRunning     = controller.ErrNotRunning
)

// IsNoop reports whether err is an outcome callers treat as success
// (already running, not running, recovered stale pid file).
func IsNoop(err error) bool { return controller.IsNoop(err) }

// Controller is a thin facade over internal/controller.Controller.
// It provides a stable public API for embedding.
type Controller struct{ inner *controller.Controller }

func New(cfg Config) *Controller {
	return &Controller{inner: controller.New(cfg)}
}

// SetPreflight installs a check that must pass before anything is spawned.
func (c *Controller) SetPreflight(f func() error) { c.inner.SetPreflight(f) }

// SetSink installs an optional lifecycle-event sink.
func (c *Controller) SetSink(s HistorySink) { c.inner.SetSink(s) }

func (c *Controller) Start(ctx context.Context) error   { return c.inner.Start(ctx) }
func (c *Controller) Stop(ctx context.Context) error    { return c.inner.Stop(ctx) }
func (c *Controller) Restart(ctx context.Context) error { return c.inner.Restart(ctx) }
func (c *Controller) Status(ctx context.Context) Status { return c.inner.Status(ctx) }

// LoadConfig reads the TOML config file at path ("" for pure defaults).
func LoadConfig(path string) (*icfg.Config, error) {
	return icfg.Load(path)
}

// NewHTTPServer starts an HTTP server exposing the control surface for the
// given controller.
func NewHTTPServer(addr, basePath string, c *Controller) *http.Server {
	return iapi.NewServer(addr, basePath, c.inner)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.RegisterDefault() }

// ServeMetrics runs an HTTP server on addr exposing /metrics using the
// default registry. It blocks in the caller goroutine.
func ServeMetrics(addr string) error { return metrics.Serve(addr) }
