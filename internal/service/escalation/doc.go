// Package escalation notifies the emergency contact after an unconfirmed fall,
// falling back to the local siren when nobody can be reached.
package escalation
