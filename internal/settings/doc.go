// Package settings keeps the live user preferences and reloads them when the
// settings file changes on disk.
package settings
