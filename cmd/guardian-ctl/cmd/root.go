package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/guardian/internal/config"
	"github.com/oshokin/guardian/internal/service/control"
	"github.com/oshokin/guardian/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides server_addr.
	serverAddress string
	// verbose enables debug logs.
	verbose bool

	// rootCmd represents the base command for controlling the monitor.
	rootCmd = &cobra.Command{
		Use:   "guardian-ctl",
		Short: "Control a running guardian-monitor.",
		Long: `Reports falls, answers prompts, cancels sessions and inspects a running
guardian-monitor through its gRPC control API.

The server address is read from the configuration file unless --server is set.`,
		SilenceUsage: true,
	}
)

// Execute runs the guardian-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// options returns the shared control options from the root flags.
func options() *control.Options {
	return &control.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Out:           os.Stdout,
		Verbose:       verbose,
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "monitor address, overrides server_addr")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")

	rootCmd.AddCommand(
		newFallCommand(),
		newRespondCommand(),
		newCancelCommand(),
		newStatusCommand(),
		newHistoryCommand(),
		newClassifyCommand(),
	)
}
