// Package controller owns the lifecycle of a single managed service tracked
// through a pid file: start, stop, status and restart. The pid file is the
// only persisted state; the controller never trusts it blindly and recovers
// from staleness (crashes, external kill -9).
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Lakshya-serigor/droolsctl/internal/history"
	"github.com/Lakshya-serigor/droolsctl/internal/logger"
	"github.com/Lakshya-serigor/droolsctl/internal/metrics"
	"github.com/Lakshya-serigor/droolsctl/internal/pidfile"
	"github.com/Lakshya-serigor/droolsctl/internal/probe"
)

const (
	defaultStopWait      = 5 * time.Second
	defaultRestartSettle = 1 * time.Second
	pollInterval         = 50 * time.Millisecond
)

// Config describes the managed service.
type Config struct {
	Name          string
	Command       string
	WorkDir       string
	Env           []string
	PIDFile       string
	StopWait      time.Duration // how long Stop waits for the process to exit
	RestartSettle time.Duration // delay between stop and start during Restart
	Log           logger.Config // service stdout+stderr destination
}

// Status is the result of a liveness report.
type Status struct {
	Name       string `json:"name"`
	Running    bool   `json:"running"`
	PID        int    `json:"pid,omitempty"`
	Stale      bool   `json:"stale,omitempty"`
	DetectedBy string `json:"detected_by,omitempty"`
}

// Controller is the single owner of the pid file state. All mutating
// operations hold an advisory file lock across the read-probe-act sequence so
// concurrent invocations cannot launch duplicates or lose the pid record.
type Controller struct {
	cfg       Config
	backend   Backend
	prober    probe.Prober
	preflight func() error
	sink      history.Sink
	log       *slog.Logger
	lock      *pidfile.Lock
}

func New(cfg Config) *Controller {
	if cfg.StopWait <= 0 {
		cfg.StopWait = defaultStopWait
	}
	if cfg.RestartSettle <= 0 {
		cfg.RestartSettle = defaultRestartSettle
	}
	return &Controller{
		cfg:     cfg,
		backend: OSBackend{},
		prober:  probe.OS{},
		log:     slog.Default(),
		lock:    pidfile.NewLock(cfg.PIDFile),
	}
}

// SetBackend replaces the process backend (tests inject a fake here).
func (c *Controller) SetBackend(b Backend) { c.backend = b }

// SetProber replaces the liveness prober.
func (c *Controller) SetProber(p probe.Prober) { c.prober = p }

// SetPreflight installs a check that must pass before anything is spawned.
// A failure is fatal: Start returns it without side effects.
func (c *Controller) SetPreflight(f func() error) { c.preflight = f }

// SetSink installs an optional lifecycle-event sink.
func (c *Controller) SetSink(s history.Sink) { c.sink = s }

// SetLogger replaces the controller's logger.
func (c *Controller) SetLogger(l *slog.Logger) {
	if l != nil {
		c.log = l
	}
}

// Start launches the service unless it is already running. A stale pid file
// is cleared before launching. Returns ErrAlreadyRunning (a noop) when a live
// instance exists.
func (c *Controller) Start(ctx context.Context) error {
	if c.preflight != nil {
		if err := c.preflight(); err != nil {
			metrics.IncStartError(c.cfg.Name)
			return err
		}
	}
	if err := c.lock.Acquire(ctx); err != nil {
		return fmt.Errorf("acquire pidfile lock: %w", err)
	}
	defer func() { _ = c.lock.Release() }()

	if pid, meta, err := pidfile.Read(c.cfg.PIDFile); err == nil {
		if c.prober.AliveAt(pid, meta.StartUnix) {
			c.log.Info("service already running", "name", c.cfg.Name, "pid", pid)
			return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
		}
		c.recoverStale(ctx, pid)
	} else if !os.IsNotExist(err) {
		// Unparseable pid file: same treatment as a stale one.
		if clrErr := c.clearUnreadable(ctx, err); clrErr != nil {
			return clrErr
		}
	}

	pid, err := c.backend.Spawn(ctx, SpawnSpec{
		Name:    c.cfg.Name,
		Command: c.cfg.Command,
		WorkDir: c.cfg.WorkDir,
		Env:     c.cfg.Env,
		Log:     c.cfg.Log,
	})
	if err != nil {
		metrics.IncStartError(c.cfg.Name)
		return fmt.Errorf("spawn %s: %w", c.cfg.Name, err)
	}
	meta := pidfile.Meta{StartUnix: c.prober.StartUnix(pid)}
	if err := pidfile.Write(c.cfg.PIDFile, pid, meta); err != nil {
		return fmt.Errorf("record pid %d: %w", pid, err)
	}
	metrics.IncStart(c.cfg.Name)
	c.record(ctx, history.EventStart, pid, nil)
	c.log.Info("service started", "name", c.cfg.Name, "pid", pid)
	return nil
}

// Stop terminates the running service and removes the pid file. With no pid
// file it returns ErrNotRunning; with a dead recorded pid it self-heals and
// returns a StaleError. A process that ignores the termination signal is
// surfaced as an error, never force-killed.
func (c *Controller) Stop(ctx context.Context) error {
	if err := c.lock.Acquire(ctx); err != nil {
		return fmt.Errorf("acquire pidfile lock: %w", err)
	}
	defer func() { _ = c.lock.Release() }()

	pid, meta, err := pidfile.Read(c.cfg.PIDFile)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotRunning
		}
		if clrErr := c.clearUnreadable(ctx, err); clrErr != nil {
			return clrErr
		}
		return &StaleError{}
	}
	if !c.prober.AliveAt(pid, meta.StartUnix) {
		c.recoverStale(ctx, pid)
		return &StaleError{PID: pid}
	}

	if err := c.backend.Terminate(pid); err != nil {
		return fmt.Errorf("terminate pid %d: %w", pid, err)
	}
	if err := c.waitGone(ctx, pid, meta.StartUnix); err != nil {
		return err
	}
	if err := pidfile.Remove(c.cfg.PIDFile); err != nil {
		return err
	}
	metrics.IncStop(c.cfg.Name)
	c.record(ctx, history.EventStop, pid, nil)
	c.log.Info("service stopped", "name", c.cfg.Name, "pid", pid)
	return nil
}

// Status reports liveness without mutating any state. A stale pid file is
// flagged but left in place; the next stop or start clears it.
func (c *Controller) Status(context.Context) Status {
	st := Status{Name: c.cfg.Name}
	pid, meta, err := pidfile.Read(c.cfg.PIDFile)
	if err != nil {
		if !os.IsNotExist(err) {
			st.Stale = true
		}
		return st
	}
	st.PID = pid
	if c.prober.AliveAt(pid, meta.StartUnix) {
		st.Running = true
		st.DetectedBy = "pidfile:" + c.cfg.PIDFile
	} else {
		st.Stale = true
	}
	return st
}

// Restart stops the service, lets it settle, and starts it again. Stop noops
// (not running, stale file) do not prevent the start. Not atomic: an external
// start during the settle window wins the race.
func (c *Controller) Restart(ctx context.Context) error {
	if err := c.Stop(ctx); err != nil && !IsNoop(err) {
		return err
	}
	select {
	case <-time.After(c.cfg.RestartSettle):
	case <-ctx.Done():
		return ctx.Err()
	}
	return c.Start(ctx)
}

// clearUnreadable removes a pid file that cannot be parsed, treating it as a
// stale record with no usable pid. Caller holds the lock.
func (c *Controller) clearUnreadable(ctx context.Context, readErr error) error {
	c.log.Warn("unreadable pid file, clearing", "path", c.cfg.PIDFile, "err", readErr)
	if err := pidfile.Remove(c.cfg.PIDFile); err != nil {
		return err
	}
	metrics.IncStale(c.cfg.Name)
	c.record(ctx, history.EventStaleRecovered, 0, readErr)
	return nil
}

// recoverStale clears a pid file whose process is gone. Caller holds the lock.
func (c *Controller) recoverStale(ctx context.Context, pid int) {
	c.log.Warn("stale pid file: recorded process is gone", "name", c.cfg.Name, "pid", pid)
	_ = pidfile.Remove(c.cfg.PIDFile)
	metrics.IncStale(c.cfg.Name)
	c.record(ctx, history.EventStaleRecovered, pid, nil)
}

// waitGone polls until pid exits or the stop wait elapses.
func (c *Controller) waitGone(ctx context.Context, pid int, startUnix int64) error {
	deadline := time.Now().Add(c.cfg.StopWait)
	for time.Now().Before(deadline) {
		if !c.prober.AliveAt(pid, startUnix) {
			return nil
		}
		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if !c.prober.AliveAt(pid, startUnix) {
		return nil
	}
	return fmt.Errorf("pid %d did not exit within %s", pid, c.cfg.StopWait)
}

func (c *Controller) record(ctx context.Context, typ history.EventType, pid int, opErr error) {
	if c.sink == nil {
		return
	}
	e := history.Event{
		Type:       typ,
		OccurredAt: time.Now(),
		Name:       c.cfg.Name,
		PID:        pid,
	}
	if opErr != nil {
		e.Err = opErr.Error()
	}
	if err := c.sink.Send(ctx, e); err != nil {
		c.log.Warn("history sink write failed", "err", err)
	}
}
