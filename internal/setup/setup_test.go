package setup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and can simulate the side effects of the
// tools it replaces (venv creation in particular).
type fakeRunner struct {
	calls   []string
	failOn  string
	onVenv  func(dir string)
	outputs map[string]string
}

func (f *fakeRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	_, err := f.Output(ctx, dir, name, args...)
	return err
}

func (f *fakeRunner) Output(_ context.Context, _ string, name string, args ...string) (string, error) {
	call := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, call)
	if f.failOn != "" && strings.Contains(call, f.failOn) {
		return "", errors.New("boom")
	}
	if strings.Contains(call, "-m venv") && f.onVenv != nil {
		f.onVenv(args[len(args)-1])
	}
	if out, ok := f.outputs[call]; ok {
		return out, nil
	}
	return "", nil
}

func makeVenv(t *testing.T, venvDir string) {
	t.Helper()
	py := VenvPython(venvDir)
	require.NoError(t, os.MkdirAll(filepath.Dir(py), 0o750))
	require.NoError(t, os.WriteFile(py, []byte("#!/bin/true\n"), 0o755))
}

func TestCheckMissingVenv(t *testing.T) {
	dir := t.TempDir()
	s := New(Options{ProjectDir: dir}, &fakeRunner{}, nil)
	err := s.Check()
	var se *SetupError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "virtual environment", se.What)
}

func TestCheckMissingRequirements(t *testing.T) {
	dir := t.TempDir()
	makeVenv(t, filepath.Join(dir, "venv"))
	s := New(Options{ProjectDir: dir}, &fakeRunner{}, nil)
	err := s.Check()
	var se *SetupError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "requirements manifest", se.What)
}

func TestCheckOK(t *testing.T) {
	dir := t.TempDir()
	makeVenv(t, filepath.Join(dir, "venv"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("fastapi\n"), 0o644))
	s := New(Options{ProjectDir: dir}, &fakeRunner{}, nil)
	require.NoError(t, s.Check())
}

func TestBootstrapFreshProject(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{onVenv: func(venv string) { makeVenv(t, venv) }}
	s := New(Options{ProjectDir: dir}, r, nil)
	require.NoError(t, s.Bootstrap(context.Background()))

	// requirements seeded, .env scaffolded, pip driven through the venv python
	b, err := os.ReadFile(filepath.Join(dir, "requirements.txt"))
	require.NoError(t, err)
	require.Contains(t, string(b), "fastapi")
	envBytes, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	require.Contains(t, string(envBytes), "OPENAI_API_KEY")

	joined := strings.Join(r.calls, "\n")
	require.Contains(t, joined, "-m venv")
	require.Contains(t, joined, "pip install --upgrade pip")
	require.Contains(t, joined, "pip install -r")
	// existing dir: no clone attempted
	require.NotContains(t, joined, "git clone")

	// Bootstrap is idempotent and leaves an existing .env alone.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=real\n"), 0o600))
	require.NoError(t, s.Bootstrap(context.Background()))
	envBytes, err = os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	require.Contains(t, string(envBytes), "real")
}

func TestBootstrapClonesMissingCheckout(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "Drools-api")
	r := &fakeRunner{onVenv: func(venv string) { makeVenv(t, venv) }}
	// the fake clone has to create the directory
	r.outputs = map[string]string{}
	s := New(Options{ProjectDir: dir, RepoURL: "https://example.com/x.git"}, r, nil)
	// clone is recorded even though the fake does not materialize the checkout
	err := s.Bootstrap(context.Background())
	require.Contains(t, strings.Join(r.calls, "\n"), "git clone https://example.com/x.git "+dir)
	// venv creation then proceeds against the (still missing) dir; tolerate
	// either outcome from the fake, the clone call is what matters here
	_ = err
}

func TestBootstrapMissingCheckoutNoRepoURL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")
	s := New(Options{ProjectDir: dir}, &fakeRunner{}, nil)
	require.Error(t, s.Bootstrap(context.Background()))
}

func TestBootstrapPipFailure(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{failOn: "pip install -r", onVenv: func(venv string) { makeVenv(t, venv) }}
	s := New(Options{ProjectDir: dir}, r, nil)
	require.Error(t, s.Bootstrap(context.Background()))
}

func TestUpdatePullsExistingRepo(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o750))
	r := &fakeRunner{}
	s := New(Options{ProjectDir: dir, RepoURL: "https://example.com/x.git"}, r, nil)
	require.NoError(t, s.Update(context.Background()))
	require.Contains(t, strings.Join(r.calls, "\n"), "git pull --ff-only")
}

func TestUpdateClonesWhenNoCheckout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	r := &fakeRunner{}
	s := New(Options{ProjectDir: dir, RepoURL: "https://example.com/x.git"}, r, nil)
	require.NoError(t, s.Update(context.Background()))
	require.Contains(t, strings.Join(r.calls, "\n"), "git clone")
}

func TestUpdateSurfacesPullFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o750))
	r := &fakeRunner{failOn: "git pull"}
	s := New(Options{ProjectDir: dir}, r, nil)
	require.Error(t, s.Update(context.Background()))
}
