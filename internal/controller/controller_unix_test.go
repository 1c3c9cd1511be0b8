//go:build !windows

package controller

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Lakshya-serigor/droolsctl/internal/logger"
)

// End-to-end against a real detached process.
func TestRealProcessLifecycle(t *testing.T) {
	dir := t.TempDir()
	c := New(Config{
		Name:          "sleeper",
		Command:       "sleep 30",
		PIDFile:       filepath.Join(dir, "sleeper.pid"),
		StopWait:      3 * time.Second,
		RestartSettle: 50 * time.Millisecond,
	})
	ctx := context.Background()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	st := c.Status(ctx)
	if !st.Running || st.PID <= 0 {
		t.Fatalf("expected running status: %+v", st)
	}
	if err := c.Start(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("duplicate start: %v", err)
	}

	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if st := c.Status(ctx); st.Running {
		t.Fatalf("still running after stop: %+v", st)
	}
}

func TestRealProcessLogCapture(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	c := New(Config{
		Name:     "echoer",
		Command:  "sh -c 'echo captured-line; sleep 30'",
		PIDFile:  filepath.Join(dir, "echoer.pid"),
		StopWait: 3 * time.Second,
		Log:      logger.Config{Dir: logDir},
	})
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = c.Stop(ctx) }()

	logPath := filepath.Join(logDir, "echoer.log")
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if b, err := os.ReadFile(logPath); err == nil && strings.Contains(string(b), "captured-line") {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("service stdout never reached %s", logPath)
}
