// Package control implements the guardian-ctl commands.
//
// Every command except classify talks to a running guardian-monitor through
// the gRPC control API; classify runs the intent classifier locally with the
// keyword overrides of the settings file.
package control
