// Package config defines the guardian settings file and provides helpers to
// load, validate and save it in YAML format.
//
// The file holds the daemon addresses, engine bounds, user preferences,
// audit storage, capability commands and vocabulary overrides.
package config
