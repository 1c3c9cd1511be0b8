package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Lakshya-serigor/droolsctl/internal/controller"
)

// Lifecycle is the surface the router exposes. *controller.Controller
// satisfies it; tests substitute a fake.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	Status(ctx context.Context) controller.Status
}

// Router provides embeddable HTTP handlers for the managed service.
// Endpoints:
//
//	GET  {basePath}/status    liveness probe as JSON (read-only)
//	POST {basePath}/start
//	POST {basePath}/stop
//	POST {basePath}/restart
//	GET  {basePath}/healthz   controller health
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	ctl      Lifecycle
	basePath string
}

// NewRouter constructs a Router with configurable basePath.
// Example basePath: "/api" results in /api/start, /api/stop, /api/status.
func NewRouter(ctl Lifecycle, basePath string) *Router {
	return &Router{ctl: ctl, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in any mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/status", r.handleStatus)
	group.POST("/start", r.handleStart)
	group.POST("/stop", r.handleStop)
	group.POST("/restart", r.handleRestart)
	group.GET("/healthz", r.handleHealthz)
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// Shut it down by calling the returned server's Close or Shutdown.
func NewServer(addr, basePath string, ctl Lifecycle) *http.Server {
	r := NewRouter(ctl, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func (r *Router) handleStatus(c *gin.Context) {
	st := r.ctl.Status(c.Request.Context())
	writeJSON(c, http.StatusOK, st)
}

func (r *Router) handleStart(c *gin.Context) {
	r.apply(c, r.ctl.Start)
}

func (r *Router) handleStop(c *gin.Context) {
	r.apply(c, r.ctl.Stop)
}

func (r *Router) handleRestart(c *gin.Context) {
	r.apply(c, r.ctl.Restart)
}

func (r *Router) handleHealthz(c *gin.Context) {
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

// apply runs a lifecycle operation and maps its error to a response.
// No-op outcomes (already running, not running, stale pidfile recovered)
// report success with a message, mirroring the CLI.
func (r *Router) apply(c *gin.Context, op func(context.Context) error) {
	err := op(c.Request.Context())
	if err == nil {
		writeJSON(c, http.StatusOK, okResp{OK: true})
		return
	}
	if controller.IsNoop(err) {
		writeJSON(c, http.StatusOK, okResp{OK: true, Message: err.Error()})
		return
	}
	writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
}
