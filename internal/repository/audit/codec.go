package audit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
)

// Encode converts a record to a protobuf Struct.
func Encode(rec *domain.Record) (*structpb.Struct, error) {
	if rec == nil {
		return nil, errRecordIsNotSet
	}

	fields := map[string]any{
		"session_id":  rec.SessionID,
		"source_id":   rec.SourceID,
		"language":    rec.Language.String(),
		"attempts":    rec.Attempts,
		"result":      string(rec.Result),
		"reason":      rec.Reason,
		"last_intent": rec.LastIntent.String(),
		"detected_at": formatTime(rec.DetectedAt),
		"started_at":  formatTime(rec.StartedAt),
		"ended_at":    formatTime(rec.EndedAt),
	}

	if o := rec.Outcome; o != nil {
		deliveries := make([]any, 0, len(o.Deliveries))
		for _, d := range o.Deliveries {
			deliveries = append(deliveries, map[string]any{
				"modality": string(d.Modality),
				"error":    errorText(d.Err),
			})
		}

		fields["outcome"] = map[string]any{
			"kind":          string(o.Kind),
			"contact":       o.Contact,
			"deliveries":    deliveries,
			"siren_sounded": o.SirenSounded,
			"siren_error":   errorText(o.SirenErr),
			"dispatched_at": formatTime(o.DispatchedAt),
		}
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	return s, nil
}

// Decode converts a protobuf Struct back to a record.
func Decode(s *structpb.Struct) (*domain.Record, error) {
	if s == nil {
		return nil, errRecordIsNotSet
	}

	f := s.GetFields()

	rec := &domain.Record{
		SessionID:  f["session_id"].GetStringValue(),
		SourceID:   f["source_id"].GetStringValue(),
		Language:   domain.Language(f["language"].GetStringValue()),
		Attempts:   int(f["attempts"].GetNumberValue()),
		Result:     domain.Result(f["result"].GetStringValue()),
		Reason:     f["reason"].GetStringValue(),
		LastIntent: domain.ParseIntent(f["last_intent"].GetStringValue()),
	}

	var err error

	if rec.DetectedAt, err = parseTime(f["detected_at"].GetStringValue()); err != nil {
		return nil, err
	}

	if rec.StartedAt, err = parseTime(f["started_at"].GetStringValue()); err != nil {
		return nil, err
	}

	if rec.EndedAt, err = parseTime(f["ended_at"].GetStringValue()); err != nil {
		return nil, err
	}

	if o := f["outcome"].GetStructValue(); o != nil {
		if rec.Outcome, err = decodeOutcome(o); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

// decodeOutcome converts the nested outcome struct.
func decodeOutcome(s *structpb.Struct) (*domain.Outcome, error) {
	f := s.GetFields()

	outcome := &domain.Outcome{
		Kind:         domain.OutcomeKind(f["kind"].GetStringValue()),
		Contact:      f["contact"].GetStringValue(),
		SirenSounded: f["siren_sounded"].GetBoolValue(),
		SirenErr:     textError(f["siren_error"].GetStringValue()),
	}

	for _, v := range f["deliveries"].GetListValue().GetValues() {
		d := v.GetStructValue().GetFields()
		outcome.Deliveries = append(outcome.Deliveries, domain.Delivery{
			Modality: domain.Modality(d["modality"].GetStringValue()),
			Err:      textError(d["error"].GetStringValue()),
		})
	}

	var err error
	if outcome.DispatchedAt, err = parseTime(f["dispatched_at"].GetStringValue()); err != nil {
		return nil, err
	}

	return outcome, nil
}

// formatTime renders t in the protobuf JSON form of a Timestamp, empty for zero.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	data, err := protojson.Marshal(timestamppb.New(t))
	if err != nil {
		return t.UTC().Format(time.RFC3339Nano)
	}

	return strings.Trim(string(data), `"`)
}

// parseTime reads a value written by formatTime.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	var ts timestamppb.Timestamp
	if err := protojson.Unmarshal([]byte(strconv.Quote(s)), &ts); err != nil {
		return time.Time{}, fmt.Errorf("decode timestamp %q: %w", s, err)
	}

	return ts.AsTime(), nil
}

// errorText is the message of err, empty for nil.
func errorText(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}

// textError restores an error from its message.
func textError(s string) error {
	if s == "" {
		return nil
	}

	return errors.New(s) //nolint:err113 // Restored from storage.
}
