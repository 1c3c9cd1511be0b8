package main

import (
	"errors"

	"github.com/spf13/cobra"
)

// GlobalFlags holds persistent flags shared by all subcommands.
type GlobalFlags struct {
	ConfigPath string
	Debug      bool
}

// ServeFlags holds flags for the serve command.
type ServeFlags struct {
	Listen        string
	BasePath      string
	MetricsListen string
}

// buildRoot assembles the root command and all subcommands.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	serveFlags := &ServeFlags{}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createStartCommand(globalFlags),
		createStopCommand(globalFlags),
		createStatusCommand(globalFlags),
		createRestartCommand(globalFlags),
		createUpdateCommand(globalFlags),
		createSetupCommand(globalFlags),
		createServeCommand(globalFlags, serveFlags),
	)
	return root
}

func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "droolsctl",
		Short: "Lifecycle controller for the Drools API service",
		Long: `Droolsctl starts, stops and monitors the Drools API web server
through its pid file, and keeps the checkout and virtualenv it runs in
up to date.

Examples:
  droolsctl setup                   # clone, create venv, install deps
  droolsctl start
  droolsctl status
  droolsctl restart
  droolsctl update                  # git pull the checkout
  droolsctl serve --listen :8080    # HTTP control surface`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// invoking with no command is an error, not a help screen
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errors.New("a command is required")
		},
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (falls back to $DROOLSCTL_CONFIG)")
	root.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "enable debug logging")

	return root
}

// createStartCommand creates the start subcommand
func createStartCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the service if it is not already running",
		Long: `Start the managed web server unless a live instance is recorded
in the pid file. Requires a completed setup (venv and requirements).

Examples:
  droolsctl start
  droolsctl start --config droolsctl.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(globalFlags)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Start(cmd.Context())
		},
	}
}

func createStopCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the service (best effort)",
		Long: `Send SIGTERM to the recorded pid and remove the pid file.
A stale or missing pid file is reported and cleaned up, never an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(globalFlags)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Stop(cmd.Context())
		},
	}
}

func createStatusCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the service is running",
		Long: `Read-only liveness probe: reads the pid file and checks the
process. Never mutates any state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(globalFlags)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Status(cmd.Context())
		},
	}
}

func createRestartCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Stop the service, wait briefly, start it again",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(globalFlags)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Restart(cmd.Context())
		},
	}
}

func createUpdateCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update the checkout (git pull, or clone if missing)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(globalFlags)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Update(cmd.Context())
		},
	}
}

func createSetupCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Bootstrap the checkout, virtualenv and dependencies",
		Long: `Clone the repository if needed, create the virtualenv, install
requirements and seed the environment file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(globalFlags)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Setup(cmd.Context())
		},
	}
}

func createServeCommand(globalFlags *GlobalFlags, serveFlags *ServeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP control surface until interrupted",
		Long: `Expose start/stop/restart/status over HTTP. The listen address
comes from the [server] config section or --listen.

Examples:
  droolsctl serve --listen :8080
  droolsctl serve --listen :8080 --metrics-listen :9100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), globalFlags, serveFlags)
		},
	}

	cmd.Flags().StringVar(&serveFlags.Listen, "listen", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&serveFlags.BasePath, "base-path", "", "base path for all endpoints")
	cmd.Flags().StringVar(&serveFlags.MetricsListen, "metrics-listen", "", "Prometheus listen address (overrides config)")

	return cmd
}
