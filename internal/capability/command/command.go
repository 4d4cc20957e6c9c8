package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/oshokin/guardian/internal/logger"
)

// DefaultTimeout bounds message and call commands.
const DefaultTimeout = 30 * time.Second

// maxOutputInError caps how much command output is quoted in an error.
const maxOutputInError = 256

// ErrNotConfigured is returned when no command is set for a capability.
var ErrNotConfigured = errors.New("command is not configured")

// Templates are argv templates, the program first.
type Templates struct {
	// Message sends the alert text.
	Message []string `yaml:"message"`
	// Call dials the contact.
	Call []string `yaml:"call"`
	// Siren raises the local alarm. It is started and not waited for.
	Siren []string `yaml:"siren"`
}

// Runner runs the configured commands.
type Runner struct {
	templates Templates
	timeout   time.Duration
}

// New creates a runner. A non-positive timeout selects DefaultTimeout.
func New(templates Templates, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Runner{
		templates: templates,
		timeout:   timeout,
	}
}

// SendMessage runs the message command.
func (r *Runner) SendMessage(ctx context.Context, contact, message string) error {
	return r.run(ctx, "message", r.templates.Message, map[string]string{
		"{contact}": contact,
		"{message}": message,
	})
}

// PlaceCall runs the call command.
func (r *Runner) PlaceCall(ctx context.Context, contact string) error {
	return r.run(ctx, "call", r.templates.Call, map[string]string{
		"{contact}": contact,
	})
}

// Sound starts the siren command and returns once it is running.
func (r *Runner) Sound(ctx context.Context) error {
	argv := r.templates.Siren
	if len(argv) == 0 {
		return fmt.Errorf("siren: %w", ErrNotConfigured)
	}

	cmd := exec.CommandContext(context.WithoutCancel(ctx), argv[0], argv[1:]...) //nolint:gosec // Operator-configured.
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start siren: %w", err)
	}

	logger.InfoKV(ctx, "Siren started", "pid", cmd.Process.Pid)

	go func() {
		//nolint:errcheck // The siren exit status is not actionable.
		_ = cmd.Wait()
	}()

	return nil
}

// run expands the template and waits for the command to finish.
func (r *Runner) run(ctx context.Context, name string, argv []string, vars map[string]string) error {
	if len(argv) == 0 {
		return fmt.Errorf("%s: %w", name, ErrNotConfigured)
	}

	args := Expand(argv, vars)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var output bytes.Buffer

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // Operator-configured.
	cmd.Stdout = &output
	cmd.Stderr = &output

	logger.DebugKV(ctx, "Running command", "capability", name, "program", args[0])

	if err := cmd.Run(); err != nil {
		text := strings.TrimSpace(output.String())
		if len(text) > maxOutputInError {
			text = text[:maxOutputInError]
		}

		if text != "" {
			return fmt.Errorf("%s command: %w: %s", name, err, text)
		}

		return fmt.Errorf("%s command: %w", name, err)
	}

	return nil
}

// Expand substitutes placeholders in every argument.
// Each argument stays one argv entry, so no shell quoting is involved.
func Expand(argv []string, vars map[string]string) []string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, k, v)
	}

	replacer := strings.NewReplacer(pairs...)

	out := make([]string, len(argv))
	for i, arg := range argv {
		out[i] = replacer.Replace(arg)
	}

	return out
}
