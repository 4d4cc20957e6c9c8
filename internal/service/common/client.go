//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/guardian/internal/api/grpc/monitor"
	"github.com/oshokin/guardian/internal/config"
	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/repository/audit"
	"github.com/oshokin/guardian/internal/service/escalation"
)

// Client wraps the gRPC MonitorService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the monitor daemon.
	conn *grpc.ClientConn
	// api is the MonitorService client.
	api *api.MonitorServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Receipt is the answer to ReportFall.
type Receipt struct {
	// Accepted is false when another session was already active.
	Accepted bool
	// SessionID is set for accepted falls.
	SessionID string
}

// Status is the decoded answer to GetStatus.
type Status struct {
	State     string
	Attempt   int
	Language  string
	SessionID string
	SourceID  string
	StartedAt time.Time
	Listening bool
	Prompt    string
	Errors    []escalation.ReportedError
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errNotConnected is returned by calls on a client without a connection.
	errNotConnected = errors.New("client is not connected")
)

// Dial establishes a gRPC connection to the monitor daemon.
// Note: this uses insecure transport credentials; the daemon is meant to
// listen on loopback or a trusted network.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial monitor: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewMonitorServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// ReportFall reports a fall detected by sourceID. A zero detectedAt lets the
// daemon use its own clock.
func (c *Client) ReportFall(ctx context.Context, sourceID string, detectedAt time.Time) (*Receipt, error) {
	if c == nil || c.api == nil {
		return nil, errNotConnected
	}

	fields := map[string]any{"source_id": sourceID}
	if !detectedAt.IsZero() {
		fields["detected_at"] = detectedAt.UTC().Format(time.RFC3339Nano)
	}

	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build fall request: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ReportFall(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("report fall: %w", err)
	}

	return &Receipt{
		Accepted:  resp.GetFields()["accepted"].GetBoolValue(),
		SessionID: resp.GetFields()["session_id"].GetStringValue(),
	}, nil
}

// Respond delivers a spoken answer or a recognizer failure to the daemon.
// It reports whether the daemon was listening.
func (c *Client) Respond(ctx context.Context, res domain.RecognitionResult) (bool, error) {
	if c == nil || c.api == nil {
		return false, errNotConnected
	}

	fields := make(map[string]any, 1)

	if res.Failure != domain.FailureNone {
		fields["failure"] = res.Failure.String()
	} else {
		candidates := make([]any, 0, len(res.Candidates))
		for _, text := range res.Candidates {
			candidates = append(candidates, text)
		}

		fields["candidates"] = candidates
	}

	req, err := structpb.NewStruct(fields)
	if err != nil {
		return false, fmt.Errorf("build respond request: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Respond(callCtx, req)
	if err != nil {
		return false, fmt.Errorf("respond: %w", err)
	}

	return resp.GetFields()["delivered"].GetBoolValue(), nil
}

// Cancel stops the active session. It reports whether a session was cancelled.
func (c *Client) Cancel(ctx context.Context) (bool, error) {
	if c == nil || c.api == nil {
		return false, errNotConnected
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Cancel(callCtx, &emptypb.Empty{})
	if err != nil {
		return false, fmt.Errorf("cancel session: %w", err)
	}

	return resp.GetFields()["cancelled"].GetBoolValue(), nil
}

// Status retrieves the engine state.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	if c == nil || c.api == nil {
		return nil, errNotConnected
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetStatus(callCtx, &emptypb.Empty{})
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return decodeStatus(resp), nil
}

// ListOutcomes retrieves up to limit session records, newest first.
func (c *Client) ListOutcomes(ctx context.Context, limit int) ([]*domain.Record, error) {
	if c == nil || c.api == nil {
		return nil, errNotConnected
	}

	req, err := structpb.NewStruct(map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ListOutcomes(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}

	values := resp.GetFields()["records"].GetListValue().GetValues()
	records := make([]*domain.Record, 0, len(values))

	for _, v := range values {
		rec, err := audit.Decode(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("decode outcome: %w", err)
		}

		records = append(records, rec)
	}

	return records, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

func decodeStatus(resp *structpb.Struct) *Status {
	fields := resp.GetFields()

	st := &Status{
		State:     fields["state"].GetStringValue(),
		Attempt:   int(fields["attempt"].GetNumberValue()),
		Language:  fields["language"].GetStringValue(),
		SessionID: fields["session_id"].GetStringValue(),
		SourceID:  fields["source_id"].GetStringValue(),
		Listening: fields["listening"].GetBoolValue(),
		Prompt:    fields["prompt"].GetStringValue(),
	}

	if raw := fields["started_at"].GetStringValue(); raw != "" {
		if startedAt, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			st.StartedAt = startedAt
		}
	}

	for _, v := range fields["errors"].GetListValue().GetValues() {
		entry := v.GetStructValue().GetFields()
		at, _ := time.Parse(time.RFC3339Nano, entry["at"].GetStringValue()) //nolint:errcheck // Zero time is fine.

		st.Errors = append(st.Errors, escalation.ReportedError{
			At:      at,
			Message: entry["message"].GetStringValue(),
		})
	}

	return st
}
