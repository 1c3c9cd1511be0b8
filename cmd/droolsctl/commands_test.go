package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lakshya-serigor/droolsctl/internal/config"
	"github.com/Lakshya-serigor/droolsctl/internal/controller"
	"github.com/Lakshya-serigor/droolsctl/internal/setup"
)

type fakeBackend struct {
	nextPID int
	alive   map[int]bool
	spawns  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextPID: 5000, alive: map[int]bool{}}
}

func (f *fakeBackend) Spawn(context.Context, controller.SpawnSpec) (int, error) {
	f.nextPID++
	f.spawns++
	f.alive[f.nextPID] = true
	return f.nextPID, nil
}

func (f *fakeBackend) Terminate(pid int) error {
	delete(f.alive, pid)
	return nil
}

func (f *fakeBackend) Alive(pid int) bool            { return f.alive[pid] }
func (f *fakeBackend) AliveAt(pid int, _ int64) bool { return f.alive[pid] }
func (f *fakeBackend) StartUnix(int) int64           { return 0 }

// testApp builds an app around a fake backend so no real process is spawned.
func testApp(t *testing.T) (*app, *fakeBackend, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.PIDFile = filepath.Join(dir, "drools-api.pid")

	ctl := controller.New(controller.Config{
		Name:    cfg.Name,
		Command: "true",
		PIDFile: cfg.PIDFile,
	})
	fb := newFakeBackend()
	ctl.SetBackend(fb)
	ctl.SetProber(fb)
	ctl.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	out := &bytes.Buffer{}
	return &app{cfg: cfg, ctl: ctl, log: slog.Default(), out: out}, fb, out
}

func TestStartThenStartIsNoop(t *testing.T) {
	a, fb, out := testApp(t)
	ctx := context.Background()

	require.NoError(t, a.Start(ctx))
	require.Contains(t, out.String(), "started")
	require.Equal(t, 1, fb.spawns)

	out.Reset()
	require.NoError(t, a.Start(ctx), "second start must exit zero")
	require.Equal(t, 1, fb.spawns, "second start must not spawn")
	require.Contains(t, out.String(), "already running")
}

func TestStopWithoutStartExitsZero(t *testing.T) {
	a, _, out := testApp(t)
	require.NoError(t, a.Stop(context.Background()))
	require.Contains(t, out.String(), "not running")
}

func TestStatusPrintsJSON(t *testing.T) {
	a, _, out := testApp(t)
	require.NoError(t, a.Status(context.Background()))
	require.Contains(t, out.String(), `"running": false`)
}

func TestRestartEndsRunning(t *testing.T) {
	a, fb, out := testApp(t)
	ctx := context.Background()

	require.NoError(t, a.Start(ctx))
	out.Reset()
	require.NoError(t, a.Restart(ctx))
	require.Contains(t, out.String(), "restarted")
	require.Equal(t, 2, fb.spawns)
	require.True(t, a.ctl.Status(ctx).Running)
}

func TestStartFailsOnMissingSetup(t *testing.T) {
	a, fb, _ := testApp(t)
	st := setup.New(setup.Options{ProjectDir: filepath.Join(t.TempDir(), "missing")}, nil, slog.Default())
	a.ctl.SetPreflight(st.Check)

	err := a.Start(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "run setup first")
	require.Zero(t, fb.spawns)
}

func TestUpdateNeverFails(t *testing.T) {
	a, _, _ := testApp(t)
	// point the bootstrapper at a directory with no checkout and no runner
	// that can succeed; Update must still return nil
	a.setup = setup.New(setup.Options{
		ProjectDir: filepath.Join(t.TempDir(), "co"),
		RepoURL:    "",
	}, setup.NewRunner(slog.Default()), slog.Default())
	require.NoError(t, a.Update(context.Background()))
}

func TestConfigPathFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "droolsctl.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"envsvc\"\n"), 0o644))
	t.Setenv(config.EnvConfigPath, path)

	a, err := newApp(&GlobalFlags{})
	require.NoError(t, err)
	defer a.Close()
	require.Equal(t, "envsvc", a.cfg.Name)
}

func TestBuildRootSubcommands(t *testing.T) {
	root := buildRoot()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	joined := strings.Join(names, " ")
	for _, want := range []string{"start", "stop", "status", "restart", "update", "setup", "serve"} {
		require.Contains(t, joined, want)
	}
}

func TestUnknownCommandFails(t *testing.T) {
	root := buildRoot()
	root.SetArgs([]string{"frobnicate"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	require.Error(t, root.Execute())
}

func TestNoCommandPrintsUsageAndFails(t *testing.T) {
	root := buildRoot()
	out := &bytes.Buffer{}
	root.SetArgs([]string{})
	root.SetOut(out)
	root.SetErr(out)
	require.Error(t, root.Execute())
	require.Contains(t, out.String(), "Usage:")
}
