package setup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes an external tool. Production uses os/exec; tests inject a
// recorder so no git/python/pip binaries are required.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) error
	// Output runs the tool and returns its combined output.
	Output(ctx context.Context, dir string, name string, args ...string) (string, error)
}

type execRunner struct {
	log *slog.Logger
}

// NewRunner returns the os/exec backed Runner.
func NewRunner(log *slog.Logger) Runner {
	if log == nil {
		log = slog.Default()
	}
	return &execRunner{log: log}
}

func (r *execRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	out, err := r.Output(ctx, dir, name, args...)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(out))
	}
	return nil
}

func (r *execRunner) Output(ctx context.Context, dir string, name string, args ...string) (string, error) {
	r.log.Debug("exec", "cmd", name, "args", args, "dir", dir)
	// #nosec G204 -- tool names and arguments come from our own config
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.String(), err
}
