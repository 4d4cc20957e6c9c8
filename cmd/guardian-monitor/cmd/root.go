package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/guardian/internal/config"
	"github.com/oshokin/guardian/internal/logger"
	"github.com/oshokin/guardian/internal/service/monitor"
	"github.com/oshokin/guardian/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// listenAddress overrides server_addr.
	listenAddress string
	// echoPrompts prints every prompt to stdout.
	echoPrompts bool
	// force skips the single instance check.
	force bool

	// rootCmd represents the base command for the monitor daemon.
	rootCmd = &cobra.Command{
		Use:   "guardian-monitor",
		Short: "Confirm detected falls by voice and escalate to an emergency contact.",
		Long: `Runs the fall confirmation and escalation engine.

A fall reported through the control API starts a session: the monitor asks
the user whether they are fine and listens for an answer, retrying a bounded
number of times. Without a positive answer it alerts the emergency contact
with a message and a call, or sounds the local siren when no usable contact
is configured. Answers are delivered with "guardian-ctl respond".

User settings (language, contact, voice confirmation) are reloaded when the
settings file changes; every finished session is written to the audit store.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			defer logger.Sync()

			opts := &monitor.Options{
				ConfigPath:    cfgPath,
				ListenAddress: listenAddress,
				Force:         force,
			}

			if echoPrompts {
				opts.PromptOutput = os.Stdout
			}

			return monitor.Run(ctx, opts)
		},
	}
)

// Execute runs the guardian-monitor CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&listenAddress, "listen", "l", "", "gRPC listen address, overrides server_addr")
	rootCmd.Flags().BoolVar(&echoPrompts, "echo-prompts", false, "print every prompt to stdout")

	// Hidden flag to run next to another instance, e.g. on a second port.
	rootCmd.Flags().BoolVarP(&force, "force", "f", false, "skip the single instance check")

	err := rootCmd.Flags().MarkHidden("force")
	if err != nil {
		panic(err)
	}
}
