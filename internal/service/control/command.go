package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/oshokin/guardian/internal/config"
	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/intent"
	"github.com/oshokin/guardian/internal/logger"
	"github.com/oshokin/guardian/internal/service/common"
)

// Options are shared by every control command.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Out receives command output, os.Stdout when nil.
	Out io.Writer
	// Verbose enables debug logs; otherwise only warnings and errors are logged.
	Verbose bool
}

// ErrNoAnswer is returned by Respond without candidates or failure.
var ErrNoAnswer = errors.New("an answer or a failure is required")

// Fall reports a fall on behalf of sourceID, or of the local user when empty.
func Fall(ctx context.Context, opts *Options, sourceID string, detectedAt time.Time) error {
	client, ctx, err := connect(ctx, opts, "fall")
	if err != nil {
		return err
	}

	defer closeClient(ctx, client)

	if sourceID == "" {
		if sourceID, err = common.DetectSource(); err != nil {
			return err
		}
	}

	receipt, err := client.ReportFall(ctx, sourceID, detectedAt)
	if err != nil {
		return err
	}

	if !receipt.Accepted {
		printf(opts, "fall dropped: a confirmation session is already active\n")

		return nil
	}

	printf(opts, "fall accepted, session %s\n", receipt.SessionID)

	return nil
}

// Respond answers the listening monitor with candidates, best first,
// or with a recognizer failure name such as "no_match".
func Respond(ctx context.Context, opts *Options, candidates []string, failure string) error {
	res, err := answer(candidates, failure)
	if err != nil {
		return err
	}

	client, ctx, err := connect(ctx, opts, "respond")
	if err != nil {
		return err
	}

	defer closeClient(ctx, client)

	delivered, err := client.Respond(ctx, res)
	if err != nil {
		return err
	}

	if !delivered {
		printf(opts, "not delivered: the monitor is not listening\n")

		return nil
	}

	printf(opts, "answer delivered\n")

	return nil
}

// Cancel stops the active session without escalating.
func Cancel(ctx context.Context, opts *Options) error {
	client, ctx, err := connect(ctx, opts, "cancel")
	if err != nil {
		return err
	}

	defer closeClient(ctx, client)

	cancelled, err := client.Cancel(ctx)
	if err != nil {
		return err
	}

	if cancelled {
		printf(opts, "session cancelled\n")
	} else {
		printf(opts, "nothing to cancel\n")
	}

	return nil
}

// Status prints the monitor state and recent escalation errors.
func Status(ctx context.Context, opts *Options) error {
	client, ctx, err := connect(ctx, opts, "status")
	if err != nil {
		return err
	}

	defer closeClient(ctx, client)

	st, err := client.Status(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(output(opts), 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "state:\t%s\n", st.State)

	if st.SessionID != "" {
		fmt.Fprintf(w, "session:\t%s\n", st.SessionID)
		fmt.Fprintf(w, "source:\t%s\n", st.SourceID)
		fmt.Fprintf(w, "attempt:\t%d\n", st.Attempt)
		fmt.Fprintf(w, "language:\t%s\n", st.Language)
		fmt.Fprintf(w, "started:\t%s\n", formatTime(st.StartedAt))
		fmt.Fprintf(w, "listening:\t%t\n", st.Listening)
	}

	if st.Prompt != "" {
		fmt.Fprintf(w, "last prompt:\t%s\n", st.Prompt)
	}

	for _, e := range st.Errors {
		fmt.Fprintf(w, "error:\t%s %s\n", formatTime(e.At), e.Message)
	}

	return w.Flush()
}

// History prints up to limit session records, newest first.
func History(ctx context.Context, opts *Options, limit int) error {
	client, ctx, err := connect(ctx, opts, "history")
	if err != nil {
		return err
	}

	defer closeClient(ctx, client)

	records, err := client.ListOutcomes(ctx, limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		printf(opts, "no sessions recorded\n")

		return nil
	}

	w := tabwriter.NewWriter(output(opts), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ENDED\tSESSION\tRESULT\tREASON\tATTEMPTS\tLANGUAGE\tOUTCOME")

	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			formatTime(rec.EndedAt),
			rec.SessionID,
			rec.Result,
			rec.Reason,
			rec.Attempts,
			rec.Language,
			describeOutcome(rec.Outcome),
		)
	}

	return w.Flush()
}

// Classify runs the intent classifier on candidates without contacting the monitor.
// An empty language selects the configured voice language.
func Classify(ctx context.Context, opts *Options, language string, candidates []string) error {
	ctx = scope(ctx, opts, "classify")

	var (
		options []intent.Option
		lang    = domain.DefaultLanguage
	)

	cfg, err := config.Load(opts.ConfigPath)

	switch {
	case err == nil:
		options = cfg.KeywordOptions()
		lang = cfg.Settings.Language()
	case errors.Is(err, fs.ErrNotExist):
		logger.DebugKV(ctx, "No settings file, using built-in vocabulary", "path", opts.ConfigPath)
	default:
		return err
	}

	if language != "" {
		parsed, ok := domain.ParseLanguage(language)
		if !ok {
			return fmt.Errorf("%w: unknown language %q", config.ErrInvalid, language)
		}

		lang = parsed
	}

	verdict := intent.New(options...).Evaluate(candidates, lang)

	printf(opts, "intent: %s (language: %s, pass: %s", verdict.Intent, lang, verdict.Pass)

	if verdict.Keyword != "" {
		printf(opts, ", keyword: %q in %q", verdict.Keyword, verdict.Candidate)
	}

	printf(opts, ")\n")

	return nil
}

// connect loads the settings and dials the monitor.
func connect(ctx context.Context, opts *Options, name string) (*common.Client, context.Context, error) {
	ctx = scope(ctx, opts, name)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, ctx, err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	logger.DebugKV(ctx, "Connecting to monitor", "server_address", serverAddress)

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return nil, ctx, err
	}

	return client, ctx, nil
}

// scope names the command logger and applies the verbosity.
func scope(ctx context.Context, opts *Options, name string) context.Context {
	ctx = logger.WithName(ctx, "guardian-ctl."+name)

	if opts.Verbose {
		return logger.WithLevel(ctx, zapcore.DebugLevel)
	}

	return logger.WithLevel(ctx, zapcore.WarnLevel)
}

func closeClient(ctx context.Context, client *common.Client) {
	if err := client.Close(); err != nil {
		logger.WarnKV(ctx, "Failed to close connection", "error", err)
	}
}

// answer builds the recognition result of a Respond call.
func answer(candidates []string, failure string) (domain.RecognitionResult, error) {
	if failure != "" {
		reason, ok := domain.ParseFailureReason(failure)
		if !ok || reason == domain.FailureNone {
			return domain.RecognitionResult{}, fmt.Errorf("%w: unknown failure %q", ErrNoAnswer, failure)
		}

		return domain.Failed(reason), nil
	}

	var cleaned []string

	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}

	if len(cleaned) == 0 {
		return domain.RecognitionResult{}, ErrNoAnswer
	}

	return domain.Recognized(cleaned...), nil
}

func describeOutcome(o *domain.Outcome) string {
	if o == nil {
		return "-"
	}

	parts := []string{string(o.Kind)}

	if o.Delivered() {
		parts = append(parts, "delivered")
	}

	if o.SirenSounded {
		parts = append(parts, "siren")
	}

	if n := len(o.Failures()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}

	return strings.Join(parts, ", ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Local().Format(time.DateTime)
}

func output(opts *Options) io.Writer {
	if opts.Out == nil {
		return os.Stdout
	}

	return opts.Out
}

func printf(opts *Options, format string, args ...any) {
	//nolint:errcheck // Terminal output errors are not actionable.
	_, _ = fmt.Fprintf(output(opts), format, args...)
}
