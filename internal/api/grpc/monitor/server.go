package monitor

import (
	"context"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/logger"
	"github.com/oshokin/guardian/internal/repository/audit"
	"github.com/oshokin/guardian/internal/service/confirmation"
	"github.com/oshokin/guardian/internal/service/escalation"
)

// Limits applied to ListOutcomes.
const (
	DefaultListLimit = 20
	MaxListLimit     = 500
)

// Status is the monitor view returned by GetStatus.
type Status struct {
	confirmation.Status

	// Listening is true while the adapter waits for an answer.
	Listening bool
	// Prompt is the text of the last played phrase.
	Prompt string
	// Errors are the most recent escalation errors, oldest first.
	Errors []escalation.ReportedError
}

// Service abstracts the monitor operations the transport layer depends on.
type Service interface {
	ReportFall(ctx context.Context, ev domain.FallEvent) (string, bool)
	Respond(ctx context.Context, res domain.RecognitionResult) bool
	Cancel(ctx context.Context) bool
	Status(ctx context.Context) *Status
	ListOutcomes(ctx context.Context, limit int) ([]*domain.Record, error)
}

// Server implements the MonitorService gRPC API.
type Server struct {
	UnimplementedMonitorServiceServer

	// service provides the monitor operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// ReportFall hands a detected fall to the engine.
func (s *Server) ReportFall(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	ev := domain.FallEvent{
		SourceID: stringField(req, "source_id"),
	}

	if raw := stringField(req, "detected_at"); raw != "" {
		detectedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "detected_at must be an RFC 3339 timestamp")
		}

		ev.DetectedAt = detectedAt
	}

	sessionID, accepted := s.service.ReportFall(ctx, ev)

	return newStruct(map[string]any{
		"accepted":   accepted,
		"session_id": sessionID,
	})
}

// Respond delivers a recognition result to the listening adapter.
func (s *Server) Respond(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	res, err := toRecognition(req)
	if err != nil {
		return nil, err
	}

	delivered := s.service.Respond(ctx, res)

	return newStruct(map[string]any{"delivered": delivered})
}

// Cancel stops the active session without escalating.
func (s *Server) Cancel(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	cancelled := s.service.Cancel(ctx)

	return newStruct(map[string]any{"cancelled": cancelled})
}

// GetStatus returns the engine state and recent escalation errors.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.service.Status(ctx)
	if st == nil {
		st = &Status{Status: confirmation.Status{State: domain.StateIdle}}
	}

	errs := make([]any, 0, len(st.Errors))
	for _, e := range st.Errors {
		errs = append(errs, map[string]any{
			"at":      e.At.UTC().Format(time.RFC3339Nano),
			"message": e.Message,
		})
	}

	fields := map[string]any{
		"state":      st.State.String(),
		"attempt":    st.Attempt,
		"language":   st.Language.String(),
		"session_id": st.SessionID,
		"source_id":  st.SourceID,
		"listening":  st.Listening,
		"prompt":     st.Prompt,
		"errors":     errs,
	}

	if !st.StartedAt.IsZero() {
		fields["started_at"] = st.StartedAt.UTC().Format(time.RFC3339Nano)
	}

	return newStruct(fields)
}

// ListOutcomes returns the newest session records.
func (s *Server) ListOutcomes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit := DefaultListLimit

	if v, ok := req.GetFields()["limit"]; ok {
		n := v.GetNumberValue()
		if n < 0 || n != float64(int(n)) {
			return nil, status.Error(codes.InvalidArgument, "limit must be a non-negative integer")
		}

		if n > 0 {
			limit = min(int(n), MaxListLimit)
		}
	}

	records, err := s.service.ListOutcomes(ctx, limit)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to list outcomes", "error", err)

		return nil, status.Error(codes.Internal, "unable to read outcome history")
	}

	list := make([]*structpb.Value, 0, len(records))

	for _, rec := range records {
		encoded, err := audit.Encode(rec)
		if err != nil {
			return nil, status.Error(codes.Internal, "unable to encode outcome")
		}

		list = append(list, structpb.NewStructValue(encoded))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"records": structpb.NewListValue(&structpb.ListValue{Values: list}),
		},
	}, nil
}

// toRecognition converts a Respond request to a recognition result.
func toRecognition(req *structpb.Struct) (domain.RecognitionResult, error) {
	if raw := stringField(req, "failure"); raw != "" {
		reason, ok := domain.ParseFailureReason(raw)
		if !ok {
			return domain.RecognitionResult{}, status.Errorf(codes.InvalidArgument, "unknown failure %q", raw)
		}

		if reason != domain.FailureNone {
			return domain.Failed(reason), nil
		}
	}

	var candidates []string

	for _, v := range req.GetFields()["candidates"].GetListValue().GetValues() {
		if text := strings.TrimSpace(v.GetStringValue()); text != "" {
			candidates = append(candidates, text)
		}
	}

	if len(candidates) == 0 {
		return domain.RecognitionResult{}, status.Error(codes.InvalidArgument, "candidates or failure are required")
	}

	return domain.Recognized(candidates...), nil
}

func stringField(s *structpb.Struct, key string) string {
	return strings.TrimSpace(s.GetFields()[key].GetStringValue())
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode response")
	}

	return out, nil
}
