// Package confirmation contains the core domain types of the fall
// confirmation flow.
//
// It defines the FallEvent that starts a session, the Session itself with its
// state and attempt counter, the RecognitionResult produced by the speech
// adapter, the classified Intent, the escalation Outcome and the audit Record
// written when a session ends. Clone helpers avoid leaking internal references
// across goroutines.
package confirmation
