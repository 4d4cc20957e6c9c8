// Package process inspects the host process table.
//
// The monitor daemon uses it to refuse starting while another instance of the
// same executable is already running, since two engines would race for the
// audio device and double-escalate a single fall.
package process
