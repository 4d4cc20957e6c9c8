package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/guardian/internal/service/control"
)

// defaultHistoryLimit is the number of sessions printed by history.
const defaultHistoryLimit = 20

func newFallCommand() *cobra.Command {
	var (
		source     string
		detectedAt string
	)

	cmd := &cobra.Command{
		Use:   "fall",
		Short: "Report a detected fall.",
		Long:  "Reports a fall to the monitor as the external detector would. Without --source the local user and host name the source.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var at time.Time

			if detectedAt != "" {
				parsed, err := time.Parse(time.RFC3339, detectedAt)
				if err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}

				at = parsed
			}

			ctx, stop := signalContext()
			defer stop()

			return control.Fall(ctx, options(), source, at)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "fall source identifier")
	cmd.Flags().StringVar(&detectedAt, "at", "", "detection time in RFC 3339, defaults to now")

	return cmd
}

func newRespondCommand() *cobra.Command {
	var failure string

	cmd := &cobra.Command{
		Use:   "respond [candidate...]",
		Short: "Answer the current prompt.",
		Long: `Delivers a spoken answer to the listening monitor. Each argument is one
transcription candidate, best first, e.g.

  guardian-ctl respond "main theek hoon" "main thik hu"

--failure reports a recognizer failure instead: no_speech, no_match,
audio_error, permission_denied, service_unavailable, network_error, timeout.`,
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return control.Respond(ctx, options(), args, failure)
		},
	}

	cmd.Flags().StringVar(&failure, "failure", "", "recognizer failure to report instead of an answer")

	return cmd
}

func newCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the active session without escalating.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return control.Cancel(ctx, options())
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the monitor state.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return control.Status(ctx, options())
		},
	}
}

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished sessions, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return control.History(ctx, options(), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "number of sessions to show")

	return cmd
}

func newClassifyCommand() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "classify candidate...",
		Short: "Classify an answer locally.",
		Long:  "Runs the intent classifier on the given transcription candidates with the keyword overrides of the configuration file, without contacting the monitor.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return control.Classify(cmd.Context(), options(), language, args)
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "voice language, defaults to the configured one")

	return cmd
}
