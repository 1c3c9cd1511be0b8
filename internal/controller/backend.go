package controller

import (
	"context"
	"io"
	"os"

	"github.com/Lakshya-serigor/droolsctl/internal/logger"
)

// SpawnSpec describes the service process to launch.
type SpawnSpec struct {
	Name    string // service name, used for log file naming
	Command string // shell-style command line
	WorkDir string
	Env     []string
	Log     logger.Config
}

// Backend is the process-spawning and signaling capability injected into the
// Controller. The production backend talks to the OS; tests use a fake.
type Backend interface {
	// Spawn launches the service detached from the calling invocation and
	// returns its pid. The child outlives the caller entirely.
	Spawn(ctx context.Context, spec SpawnSpec) (int, error)
	// Terminate delivers a graceful termination signal to pid.
	Terminate(pid int) error
}

// OSBackend spawns real detached processes.
type OSBackend struct{}

func (OSBackend) Spawn(_ context.Context, spec SpawnSpec) (int, error) {
	cmd := buildCommand(spec.Command)
	if spec.WorkDir != "" {
		cmd.Dir = spec.WorkDir
	}
	if len(spec.Env) > 0 {
		cmd.Env = spec.Env
	}
	setDetachAttrs(cmd)

	var w io.WriteCloser
	if w = spec.Log.Writer(spec.Name); w != nil {
		cmd.Stdout = w
		cmd.Stderr = w
	} else {
		null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
		if err != nil {
			return 0, err
		}
		cmd.Stdout = null
		cmd.Stderr = null
		w = null
	}
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		_ = w.Close()
		return 0, err
	}
	pid := cmd.Process.Pid
	// Reap the child if this invocation outlives it (serve mode); a one-shot
	// CLI run exits first and the child is reparented to init.
	go func() {
		_ = cmd.Wait()
		_ = w.Close()
	}()
	return pid, nil
}
