// Package command implements the notify and alarm capabilities by running
// operator-configured programs, e.g. an SMS gateway CLI or a sound player.
//
// Arguments may contain the placeholders {contact} and {message}.
package command
