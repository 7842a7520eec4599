package eventloop

import (
	"container/heap"
	"sync"
	"time"
)

// Virtual is a Scheduler whose clock only moves when Advance is called.
// Due timers fire in deadline order, ties in scheduling order.
type Virtual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers timerHeap
	posted []func()
}

// NewVirtual creates a Virtual clock starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

// Now returns the virtual time.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// AfterFunc schedules fn at Now()+d. Negative d is treated as zero.
func (v *Virtual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	t := &virtualTimer{owner: v, when: v.now.Add(d), seq: v.seq, fn: fn}
	heap.Push(&v.timers, t)
	return t
}

// Post queues fn to run at the start of the next Advance.
func (v *Virtual) Post(fn func()) {
	v.mu.Lock()
	v.posted = append(v.posted, fn)
	v.mu.Unlock()
}

// Advance moves the clock forward by d, running posted functions and every
// timer that falls due on the way, including timers those callbacks schedule.
// Advance(0) only flushes posted functions and already-due timers.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()

	for {
		v.drainPosted()

		v.mu.Lock()
		if len(v.timers) == 0 || v.timers[0].when.After(target) {
			v.now = target
			v.mu.Unlock()
			break
		}
		t := heap.Pop(&v.timers).(*virtualTimer)
		t.index = -1
		t.fired = true
		if t.when.After(v.now) {
			v.now = t.when
		}
		v.mu.Unlock()

		t.fn()
	}
	v.drainPosted()
}

// Pending returns the number of timers that have not fired or been stopped.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.timers)
}

// NextDeadline returns the earliest pending timer deadline.
func (v *Virtual) NextDeadline() (time.Time, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.timers) == 0 {
		return time.Time{}, false
	}
	return v.timers[0].when, true
}

func (v *Virtual) drainPosted() {
	for {
		v.mu.Lock()
		if len(v.posted) == 0 {
			v.mu.Unlock()
			return
		}
		fn := v.posted[0]
		v.posted = v.posted[1:]
		v.mu.Unlock()
		fn()
	}
}

type virtualTimer struct {
	owner *Virtual
	when  time.Time
	seq   uint64
	fn    func()
	index int
	fired bool
}

func (t *virtualTimer) Stop() bool {
	v := t.owner
	v.mu.Lock()
	defer v.mu.Unlock()
	if t.fired || t.index < 0 {
		return false
	}
	heap.Remove(&v.timers, t.index)
	t.index = -1
	return true
}

type timerHeap []*virtualTimer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*virtualTimer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
