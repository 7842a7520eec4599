// Package eventloop provides the single-threaded cooperative scheduler a
// station session runs on. All simulation state is owned by one loop and is
// only touched from callbacks the loop executes, one at a time.
//
// Two schedulers implement the same interface: Loop runs against the wall
// clock, Virtual runs against a manually advanced clock for tests and
// headless simulation.
package eventloop

import "time"

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or the timer was already stopped.
	Stop() bool
}

// Scheduler is the clock and timer source of a session.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// AfterFunc runs fn on the loop once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer

	// Post queues fn to run on the loop as soon as possible. It is the only
	// method that may be called from outside the loop.
	Post(fn func())
}
