package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Lakshya-serigor/droolsctl/internal/config"
	"github.com/Lakshya-serigor/droolsctl/internal/controller"
	"github.com/Lakshya-serigor/droolsctl/internal/env"
	"github.com/Lakshya-serigor/droolsctl/internal/history"
	"github.com/Lakshya-serigor/droolsctl/internal/history/factory"
	"github.com/Lakshya-serigor/droolsctl/internal/logger"
	"github.com/Lakshya-serigor/droolsctl/internal/metrics"
	"github.com/Lakshya-serigor/droolsctl/internal/setup"
)

// app wires the config, controller and bootstrapper behind each subcommand.
type app struct {
	cfg   *config.Config
	ctl   *controller.Controller
	setup *setup.Setup
	sink  history.Sink
	log   *slog.Logger
	out   io.Writer
}

func newApp(flags *GlobalFlags) (*app, error) {
	cfg, err := config.Load(config.ResolvePath(flags.ConfigPath))
	if err != nil {
		return nil, err
	}
	log := logger.NewCLI(flags.Debug)

	st := setup.New(cfg.SetupOptions(), setup.NewRunner(log), log)

	e := env.New()
	e.FromOS()
	if err := e.LoadFile(cfg.EnvFile); err != nil {
		log.Warn("env file ignored", "path", cfg.EnvFile, "error", err)
	}

	ctl := controller.New(controller.Config{
		Name:          cfg.Name,
		Command:       cfg.Command,
		WorkDir:       cfg.ProjectDir,
		Env:           e.Merge(nil),
		PIDFile:       cfg.PIDFile,
		StopWait:      cfg.StopWait,
		RestartSettle: cfg.RestartSettle,
		Log:           cfg.Log,
	})
	ctl.SetLogger(log)
	ctl.SetPreflight(st.Check)

	sink, err := factory.New(cfg.History)
	if err != nil {
		log.Warn("history sink disabled", "error", err)
	} else if sink != nil {
		ctl.SetSink(sink)
	}

	if err := metrics.RegisterDefault(); err != nil {
		log.Warn("metrics registration failed", "error", err)
	}

	return &app{cfg: cfg, ctl: ctl, setup: st, sink: sink, log: log, out: os.Stdout}, nil
}

func (a *app) Close() {
	if a.sink != nil {
		_ = a.sink.Close()
	}
}

// Start launches the service. A no-op outcome (already running) prints a
// message and succeeds; setup and spawn failures are fatal.
func (a *app) Start(ctx context.Context) error {
	err := a.ctl.Start(ctx)
	if err == nil {
		st := a.ctl.Status(ctx)
		_, _ = fmt.Fprintf(a.out, "%s started (pid %d)\n", a.cfg.Name, st.PID)
		return nil
	}
	if controller.IsNoop(err) {
		_, _ = fmt.Fprintln(a.out, err.Error())
		return nil
	}
	var se *setup.SetupError
	if errors.As(err, &se) {
		return fmt.Errorf("%s: %w", a.cfg.Name, se)
	}
	return err
}

// Stop is best effort: every outcome, including a stale or missing pid file
// and a process that ignores SIGTERM, is reported without failing.
func (a *app) Stop(ctx context.Context) error {
	err := a.ctl.Stop(ctx)
	switch {
	case err == nil:
		_, _ = fmt.Fprintf(a.out, "%s stopped\n", a.cfg.Name)
	case controller.IsNoop(err):
		_, _ = fmt.Fprintln(a.out, err.Error())
	default:
		a.log.Warn("stop incomplete", "name", a.cfg.Name, "error", err)
	}
	return nil
}

// Status prints the liveness report as JSON and always succeeds.
func (a *app) Status(ctx context.Context) error {
	printJSON(a.out, a.ctl.Status(ctx))
	return nil
}

func (a *app) Restart(ctx context.Context) error {
	err := a.ctl.Restart(ctx)
	if err == nil {
		st := a.ctl.Status(ctx)
		_, _ = fmt.Fprintf(a.out, "%s restarted (pid %d)\n", a.cfg.Name, st.PID)
		return nil
	}
	if controller.IsNoop(err) {
		_, _ = fmt.Fprintln(a.out, err.Error())
		return nil
	}
	return err
}

// Update refreshes the checkout. Failures are reported but never fatal, so a
// broken remote does not break an otherwise running deployment.
func (a *app) Update(ctx context.Context) error {
	if err := a.setup.Update(ctx); err != nil {
		a.log.Warn("update failed", "dir", a.cfg.ProjectDir, "error", err)
		return nil
	}
	_, _ = fmt.Fprintf(a.out, "%s checkout up to date\n", a.cfg.Name)
	return nil
}

func (a *app) Setup(ctx context.Context) error {
	if err := a.setup.Bootstrap(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.out, "%s setup complete\n", a.cfg.Name)
	return nil
}
