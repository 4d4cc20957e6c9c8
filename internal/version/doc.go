// Package version exposes build metadata for the guardian binaries.
//
// Version, Commit and BuildTime may be injected via Go ldflags; Commit and
// BuildTime otherwise come from the VCS stamp recorded by the Go toolchain.
package version
