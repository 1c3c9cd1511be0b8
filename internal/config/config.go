// Package config loads the controller's TOML configuration. Every key has a
// default derived from the project directory, so an empty file (or none at
// all) yields a working setup for the stock Drools API checkout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/Lakshya-serigor/droolsctl/internal/history"
	"github.com/Lakshya-serigor/droolsctl/internal/logger"
	"github.com/Lakshya-serigor/droolsctl/internal/setup"
)

// EnvConfigPath is consulted when no explicit config path is given.
const EnvConfigPath = "DROOLSCTL_CONFIG"

const (
	DefaultName    = "drools-api"
	DefaultRepoURL = "https://github.com/Lakshya-serigor/Drools-api.git"
	DefaultHost    = "0.0.0.0"
	DefaultPort    = 8503
	DefaultApp     = "api_main:app"
)

type ServerConfig struct {
	Listen   string `mapstructure:"listen"`
	BasePath string `mapstructure:"base_path"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// Config is the top-level TOML structure.
type Config struct {
	Name          string         `mapstructure:"name"`
	ProjectDir    string         `mapstructure:"project_dir"`
	RepoURL       string         `mapstructure:"repo_url"`
	VenvDir       string         `mapstructure:"venv_dir"`
	Requirements  string         `mapstructure:"requirements"`
	EnvFile       string         `mapstructure:"env_file"`
	Command       string         `mapstructure:"command"`
	Host          string         `mapstructure:"host"`
	Port          int            `mapstructure:"port"`
	App           string         `mapstructure:"app"` // uvicorn app reference
	PIDFile       string         `mapstructure:"pidfile"`
	StopWait      time.Duration  `mapstructure:"stop_wait"`
	RestartSettle time.Duration  `mapstructure:"restart_settle"`
	Log           logger.Config  `mapstructure:"log"`
	History       history.Config `mapstructure:"history"`
	Metrics       *MetricsConfig `mapstructure:"metrics"`
	Server        *ServerConfig  `mapstructure:"server"`
}

// ResolvePath returns the explicit config path when set, falling back to
// $DROOLSCTL_CONFIG. Empty means no config file.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(EnvConfigPath)
}

// Load reads a TOML config file. An empty path returns pure defaults rooted
// at ./Drools-api. Relative paths inside the file are resolved against the
// config file's directory.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := v.Unmarshal(&cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	base := "."
	if path != "" {
		base = filepath.Dir(path)
	}
	cfg.applyDefaults(base)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults(base string) {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.ProjectDir == "" {
		c.ProjectDir = "Drools-api"
	}
	if !filepath.IsAbs(c.ProjectDir) {
		c.ProjectDir = filepath.Join(base, c.ProjectDir)
	}
	if c.RepoURL == "" {
		c.RepoURL = DefaultRepoURL
	}
	if c.VenvDir == "" {
		c.VenvDir = filepath.Join(c.ProjectDir, "venv")
	} else if !filepath.IsAbs(c.VenvDir) {
		c.VenvDir = filepath.Join(base, c.VenvDir)
	}
	if c.Requirements == "" {
		c.Requirements = filepath.Join(c.ProjectDir, "requirements.txt")
	} else if !filepath.IsAbs(c.Requirements) {
		c.Requirements = filepath.Join(base, c.Requirements)
	}
	if c.EnvFile == "" {
		c.EnvFile = filepath.Join(c.ProjectDir, ".env")
	} else if !filepath.IsAbs(c.EnvFile) {
		c.EnvFile = filepath.Join(base, c.EnvFile)
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.App == "" {
		c.App = DefaultApp
	}
	if c.Command == "" {
		c.Command = setup.VenvPython(c.VenvDir) +
			" -m uvicorn " + c.App +
			" --host " + c.Host +
			" --port " + strconv.Itoa(c.Port)
	}
	if c.PIDFile == "" {
		c.PIDFile = filepath.Join(c.ProjectDir, c.Name+".pid")
	} else if !filepath.IsAbs(c.PIDFile) {
		c.PIDFile = filepath.Join(base, c.PIDFile)
	}
	switch {
	case c.Log.Path != "":
		if !filepath.IsAbs(c.Log.Path) {
			c.Log.Path = filepath.Join(base, c.Log.Path)
		}
	case c.Log.Dir != "":
		if !filepath.IsAbs(c.Log.Dir) {
			c.Log.Dir = filepath.Join(base, c.Log.Dir)
		}
	default:
		c.Log.Path = filepath.Join(c.ProjectDir, c.Name+".log")
	}
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.Metrics != nil && c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("config: metrics enabled but no listen address")
	}
	if c.Server != nil && c.Server.Listen == "" {
		return fmt.Errorf("config: server section present but no listen address")
	}
	return nil
}

// SetupOptions maps the config onto the bootstrap package.
func (c *Config) SetupOptions() setup.Options {
	return setup.Options{
		ProjectDir:   c.ProjectDir,
		RepoURL:      c.RepoURL,
		VenvDir:      c.VenvDir,
		Requirements: c.Requirements,
		EnvFile:      c.EnvFile,
	}
}
