package confirmation

import "time"

// FallEvent is produced by the external fall detector. It is consumed once
// by the engine and never mutated.
type FallEvent struct {
	// DetectedAt is when the detector classified the fall.
	DetectedAt time.Time
	// SourceID optionally identifies the detector instance that fired.
	SourceID string
}
