// Package relay is a prompt and listen adapter for hosts without a local
// speech stack. Prompts are rendered as text for a companion device or the
// console, and answers are pushed back in as recognition results, e.g. by the
// Respond RPC.
package relay
