// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// The monitor engine, the escalation dispatcher and the control commands all
// accept a context and extract the logger from it, so a session id attached
// once with WithKV shows up on every line that session produces.
package logger
