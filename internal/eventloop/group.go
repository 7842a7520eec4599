package eventloop

import "time"

// Group owns a set of timers and tasks so they can be torn down together.
// Like Task it is loop-bound.
type Group struct {
	sched  Scheduler
	timers map[*groupTimer]struct{}
	tasks  map[*Task]struct{}
}

// NewGroup creates an empty Group on s.
func NewGroup(s Scheduler) *Group {
	return &Group{
		sched:  s,
		timers: make(map[*groupTimer]struct{}),
		tasks:  make(map[*Task]struct{}),
	}
}

type groupTimer struct {
	group *Group
	inner Timer
}

func (t *groupTimer) Stop() bool {
	delete(t.group.timers, t)
	return t.inner.Stop()
}

// AfterFunc schedules a tracked one-shot timer. It stops being tracked once
// it fires or is stopped.
func (g *Group) AfterFunc(d time.Duration, fn func()) Timer {
	t := &groupTimer{group: g}
	g.timers[t] = struct{}{}
	t.inner = g.sched.AfterFunc(d, func() {
		delete(g.timers, t)
		fn()
	})
	return t
}

// Every starts a tracked Task. It stops being tracked once cancelled.
func (g *Group) Every(initial, interval time.Duration, fn func()) *Task {
	task := Every(g.sched, initial, interval, fn)
	g.tasks[task] = struct{}{}
	task.onCancel = func() { delete(g.tasks, task) }
	return task
}

// Len returns the number of outstanding timers and tasks.
func (g *Group) Len() int {
	return len(g.timers) + len(g.tasks)
}

// CancelAll stops every outstanding timer and task.
func (g *Group) CancelAll() {
	for t := range g.timers {
		t.inner.Stop()
		delete(g.timers, t)
	}
	for task := range g.tasks {
		task.Cancel()
	}
}
