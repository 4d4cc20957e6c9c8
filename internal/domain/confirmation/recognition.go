package confirmation

import "errors"

// FailureReason explains why a listen phase produced no candidates.
type FailureReason int

const (
	// FailureNone marks a successful recognition.
	FailureNone FailureReason = iota
	// FailureNoSpeech means the recognizer heard nothing.
	FailureNoSpeech
	// FailureNoMatch means speech was heard but not transcribed.
	FailureNoMatch
	// FailureAudioError means the microphone or audio pipeline failed.
	FailureAudioError
	// FailurePermissionDenied means recording permission was revoked.
	FailurePermissionDenied
	// FailureServiceUnavailable means no recognizer is available.
	FailureServiceUnavailable
	// FailureNetworkError means a networked recognizer could not be reached.
	FailureNetworkError
	// FailureTimeout means the listen window elapsed without a result.
	FailureTimeout
)

var (
	// ErrCapabilityUnavailable is wrapped by adapters when the audio or speech
	// engine cannot be used at all. The engine escalates without retrying.
	ErrCapabilityUnavailable = errors.New("voice capability unavailable")
	// ErrPermissionDenied is wrapped by adapters when the platform refuses
	// microphone or playback access. The engine escalates without retrying.
	ErrPermissionDenied = errors.New("voice permission denied")
)

//nolint:gochecknoglobals // Read-only lookup table.
var failureNames = map[FailureReason]string{
	FailureNone:               "none",
	FailureNoSpeech:           "no_speech",
	FailureNoMatch:            "no_match",
	FailureAudioError:         "audio_error",
	FailurePermissionDenied:   "permission_denied",
	FailureServiceUnavailable: "service_unavailable",
	FailureNetworkError:       "network_error",
	FailureTimeout:            "timeout",
}

// String implements fmt.Stringer.
func (r FailureReason) String() string {
	if name, ok := failureNames[r]; ok {
		return name
	}

	return "unknown"
}

// ParseFailureReason converts the textual form back into a FailureReason.
func ParseFailureReason(s string) (FailureReason, bool) {
	for reason, name := range failureNames {
		if name == s {
			return reason, true
		}
	}

	return FailureNone, false
}

// Unrecoverable reports whether the failure means the confirmation channel
// itself cannot work, so further attempts are pointless.
func (r FailureReason) Unrecoverable() bool {
	switch r {
	case FailureAudioError, FailurePermissionDenied, FailureServiceUnavailable:
		return true
	default:
		return false
	}
}

// RecognitionResult is the outcome of one listen phase: candidate
// transcriptions ordered best first, or a failure reason.
type RecognitionResult struct {
	// Candidates holds the transcriptions, best ranked first.
	Candidates []string
	// Failure is FailureNone when Candidates are meaningful.
	Failure FailureReason
}

// Recognized builds a successful result from candidates.
func Recognized(candidates ...string) RecognitionResult {
	return RecognitionResult{Candidates: candidates}
}

// Failed builds a failed result.
func Failed(reason FailureReason) RecognitionResult {
	return RecognitionResult{Failure: reason}
}

// Normalized returns the result with an empty success turned into NoSpeech.
func (r RecognitionResult) Normalized() RecognitionResult {
	if r.Failure == FailureNone && len(r.Candidates) == 0 {
		return Failed(FailureNoSpeech)
	}

	return r
}
