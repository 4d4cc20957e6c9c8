// Package monitor runs the guardian-monitor daemon.
//
// It wires the settings store, relay adapter, intent classifier, escalation
// dispatcher, audit repository and metrics around one confirmation engine, and
// serves the gRPC control API plus an optional Prometheus endpoint until the
// context is cancelled. On shutdown an unsent escalation is always delivered
// before Run returns.
package monitor
