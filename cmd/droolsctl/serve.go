package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Lakshya-serigor/droolsctl/internal/metrics"
	"github.com/Lakshya-serigor/droolsctl/internal/server"
)

// runServe exposes the controller over HTTP until the context is cancelled
// (SIGINT/SIGTERM from main).
func runServe(ctx context.Context, globalFlags *GlobalFlags, serveFlags *ServeFlags) error {
	a, err := newApp(globalFlags)
	if err != nil {
		return err
	}
	defer a.Close()

	listen := serveFlags.Listen
	basePath := serveFlags.BasePath
	if a.cfg.Server != nil {
		if listen == "" {
			listen = a.cfg.Server.Listen
		}
		if basePath == "" {
			basePath = a.cfg.Server.BasePath
		}
	}
	if listen == "" {
		return fmt.Errorf("serve: no listen address (use --listen or the [server] config section)")
	}

	metricsListen := serveFlags.MetricsListen
	if metricsListen == "" && a.cfg.Metrics != nil && a.cfg.Metrics.Enabled {
		metricsListen = a.cfg.Metrics.Listen
	}
	if metricsListen != "" {
		go func() {
			if err := metrics.Serve(metricsListen); err != nil {
				a.log.Warn("metrics server stopped", "listen", metricsListen, "error", err)
			}
		}()
		a.log.Info("metrics listening", "listen", metricsListen)
	}

	srv := server.NewServer(listen, basePath, a.ctl)
	a.log.Info("control surface listening", "listen", listen, "base_path", basePath)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
