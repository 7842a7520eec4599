package eventloop

import "time"

// Task is a repeat-forever callback: it waits an initial delay, runs, and then
// runs again every interval until cancelled. It must only be used from the
// loop that owns its Scheduler.
type Task struct {
	sched     Scheduler
	interval  time.Duration
	fn        func()
	timer     Timer
	cancelled bool
	onCancel  func()
}

// Every starts a Task.
func Every(s Scheduler, initial, interval time.Duration, fn func()) *Task {
	t := &Task{sched: s, interval: interval, fn: fn}
	t.timer = s.AfterFunc(initial, t.run)
	return t
}

func (t *Task) run() {
	if t.cancelled {
		return
	}
	t.fn()
	if t.cancelled {
		return
	}
	t.timer = t.sched.AfterFunc(t.interval, t.run)
}

// Cancel stops the task. Cancelling twice is a no-op.
func (t *Task) Cancel() {
	if t.cancelled {
		return
	}
	t.cancelled = true
	if t.timer != nil {
		t.timer.Stop()
	}
	if t.onCancel != nil {
		t.onCancel()
	}
}

// Cancelled reports whether Cancel has been called.
func (t *Task) Cancelled() bool {
	return t.cancelled
}

// Ticker runs fn every interval while started. It is the pausable tick
// source of a session.
type Ticker struct {
	sched    Scheduler
	interval time.Duration
	fn       func()
	task     *Task
}

// NewTicker creates a stopped Ticker.
func NewTicker(s Scheduler, interval time.Duration, fn func()) *Ticker {
	return &Ticker{sched: s, interval: interval, fn: fn}
}

// Start begins ticking. The first tick comes one interval after Start.
func (t *Ticker) Start() {
	if t.Running() {
		return
	}
	t.task = Every(t.sched, t.interval, t.interval, t.fn)
}

// Stop pauses ticking.
func (t *Ticker) Stop() {
	if t.task != nil {
		t.task.Cancel()
		t.task = nil
	}
}

// Running reports whether the ticker is started.
func (t *Ticker) Running() bool {
	return t.task != nil && !t.task.Cancelled()
}
