// Package factory builds a history sink from configuration.
package factory

import (
	"fmt"
	"strings"

	"github.com/Lakshya-serigor/droolsctl/internal/history"
	"github.com/Lakshya-serigor/droolsctl/internal/history/postgres"
	"github.com/Lakshya-serigor/droolsctl/internal/history/sqlite"
)

// New returns the sink selected by cfg, or (nil, nil) when history is
// disabled (empty type).
func New(cfg history.Config) (history.Sink, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "":
		return nil, nil
	case "sqlite":
		return sqlite.New(cfg.DSN)
	case "postgres", "postgresql":
		return postgres.New(cfg.DSN)
	default:
		return nil, fmt.Errorf("history: unsupported sink type %q", cfg.Type)
	}
}
