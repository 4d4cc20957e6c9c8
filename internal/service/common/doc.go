// Package common holds helpers shared by the control commands.
//
// It provides a lightweight gRPC client for the monitor daemon with call
// timeouts and a helper that names the local user as a fall source.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
