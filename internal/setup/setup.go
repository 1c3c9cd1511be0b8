// Package setup prepares the service checkout before anything can be
// launched: git clone, virtualenv creation, dependency install and .env
// scaffolding. Start paths only call Check; the heavyweight operations run
// behind the explicit setup/update commands.
package setup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
)

// SetupError is a fatal precondition failure: the environment is not in a
// state where the service could be launched. Nothing is spawned after one.
type SetupError struct {
	What string // human description of the missing piece
	Path string
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup: %s missing at %s (run setup first)", e.What, e.Path)
}

// Options locates the pieces of the managed project.
type Options struct {
	ProjectDir   string
	RepoURL      string
	VenvDir      string // defaults to ProjectDir/venv
	Requirements string // defaults to ProjectDir/requirements.txt
	EnvFile      string // defaults to ProjectDir/.env
}

func (o *Options) venvDir() string {
	if o.VenvDir != "" {
		return o.VenvDir
	}
	return filepath.Join(o.ProjectDir, "venv")
}

func (o *Options) requirements() string {
	if o.Requirements != "" {
		return o.Requirements
	}
	return filepath.Join(o.ProjectDir, "requirements.txt")
}

func (o *Options) envFile() string {
	if o.EnvFile != "" {
		return o.EnvFile
	}
	return filepath.Join(o.ProjectDir, ".env")
}

// VenvPython returns the interpreter path inside a virtualenv directory.
func VenvPython(venvDir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venvDir, "Scripts", "python.exe")
	}
	return filepath.Join(venvDir, "bin", "python")
}

// Setup runs bootstrap and update operations for one project.
type Setup struct {
	opts   Options
	runner Runner
	log    *slog.Logger
}

func New(opts Options, runner Runner, log *slog.Logger) *Setup {
	if log == nil {
		log = slog.Default()
	}
	return &Setup{opts: opts, runner: runner, log: log}
}

// Python returns the project's virtualenv interpreter path.
func (s *Setup) Python() string { return VenvPython(s.opts.venvDir()) }

// Check verifies the start preconditions: virtualenv interpreter and
// dependency manifest must exist. Failures are fatal SetupErrors.
func (s *Setup) Check() error {
	py := s.Python()
	if _, err := os.Stat(py); err != nil {
		return &SetupError{What: "virtual environment", Path: py}
	}
	req := s.opts.requirements()
	if _, err := os.Stat(req); err != nil {
		return &SetupError{What: "requirements manifest", Path: req}
	}
	return nil
}

// defaultRequirements seeds a manifest for a fresh checkout that ships
// without one.
const defaultRequirements = `fastapi>=0.104.0
uvicorn[standard]
openai
faiss-cpu
python-dotenv
numpy
pydantic
python-multipart
`

// Bootstrap prepares everything Check requires: checkout, virtualenv,
// dependencies and a .env scaffold. Each step is idempotent.
func (s *Setup) Bootstrap(ctx context.Context) error {
	if err := s.ensureCheckout(ctx); err != nil {
		return err
	}
	venv := s.opts.venvDir()
	py := VenvPython(venv)
	if _, err := os.Stat(py); err != nil {
		s.log.Info("creating virtual environment", "dir", venv)
		if err := s.runner.Run(ctx, s.opts.ProjectDir, "python3", "-m", "venv", venv); err != nil {
			return fmt.Errorf("create venv: %w", err)
		}
	} else {
		s.log.Debug("virtual environment exists", "dir", venv)
	}

	req := s.opts.requirements()
	if _, err := os.Stat(req); err != nil {
		s.log.Info("writing default requirements", "path", req)
		if err := os.WriteFile(req, []byte(defaultRequirements), 0o644); err != nil {
			return fmt.Errorf("write requirements: %w", err)
		}
	}

	s.log.Info("installing requirements", "manifest", req)
	if err := s.runner.Run(ctx, s.opts.ProjectDir, py, "-m", "pip", "install", "--upgrade", "pip"); err != nil {
		return fmt.Errorf("upgrade pip: %w", err)
	}
	if err := s.runner.Run(ctx, s.opts.ProjectDir, py, "-m", "pip", "install", "-r", req); err != nil {
		return fmt.Errorf("install requirements: %w", err)
	}

	return s.ensureEnvFile()
}

// ensureEnvFile writes a placeholder .env when none exists so operators know
// which variables the service expects.
func (s *Setup) ensureEnvFile() error {
	path := s.opts.envFile()
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	s.log.Info("creating .env scaffold", "path", path)
	return os.WriteFile(path, []byte("OPENAI_API_KEY=your_api_key_here\n"), 0o600)
}
