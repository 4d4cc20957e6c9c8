// Package confirmation implements the fall confirmation engine.
//
// The engine accepts one fall at a time. For each accepted fall it asks the
// user through an Adapter whether they are fine, classifies the spoken answer,
// retries a bounded number of times and hands an unconfirmed fall to the
// escalation Dispatcher. Every session ends with an audit Record.
//
// All session transitions happen on the session goroutine. Adapter calls run
// on helper goroutines whose results race the engine timers in a select; the
// first event observed wins and the other is discarded.
package confirmation
