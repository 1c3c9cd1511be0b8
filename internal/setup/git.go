package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ensureCheckout clones the repository when the project directory does not
// exist yet. An existing directory is left alone.
func (s *Setup) ensureCheckout(ctx context.Context) error {
	dir := s.opts.ProjectDir
	if _, err := os.Stat(dir); err == nil {
		s.log.Debug("checkout exists", "dir", dir)
		return nil
	}
	if s.opts.RepoURL == "" {
		return fmt.Errorf("setup: project dir %s missing and no repo_url configured", dir)
	}
	s.log.Info("cloning repository", "url", s.opts.RepoURL, "dir", dir)
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return err
	}
	if err := s.runner.Run(ctx, parent, "git", "clone", s.opts.RepoURL, dir); err != nil {
		return fmt.Errorf("git clone: %w", err)
	}
	return nil
}

// Update pulls the latest source, cloning first when the checkout is absent.
// Best-effort: callers report failures but do not treat them as fatal.
func (s *Setup) Update(ctx context.Context) error {
	dir := s.opts.ProjectDir
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return s.ensureCheckout(ctx)
	}
	s.log.Info("pulling latest source", "dir", dir)
	out, err := s.runner.Output(ctx, dir, "git", "pull", "--ff-only")
	if err != nil {
		return fmt.Errorf("git pull: %w: %s", err, strings.TrimSpace(out))
	}
	s.log.Info("update complete", "result", strings.TrimSpace(out))
	return nil
}
