// Package integration runs the guardian-monitor daemon end to end over its
// gRPC control API.
package integration
