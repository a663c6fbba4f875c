package schedule

import (
	"sync"
	"time"
)

// Manual is a Scheduler driven by explicit Advance calls. Callbacks run
// synchronously on the goroutine calling Advance.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

// NewManual returns a Manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

type manualTask struct {
	m        *Manual
	seq      int
	interval time.Duration
	next     time.Duration
	fn       func()
}

// Every implements Scheduler.
func (m *Manual) Every(interval time.Duration, fn func()) Task {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{m: m, seq: m.seq, interval: interval, next: m.now + interval, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

func (t *manualTask) Cancel() {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for i, other := range t.m.tasks {
		if other == t {
			t.m.tasks = append(t.m.tasks[:i], t.m.tasks[i+1:]...)
			return
		}
	}
}

// Advance moves virtual time forward by d, firing every run that falls due
// in deadline order. Ties fire in scheduling order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		var due *manualTask
		for _, t := range m.tasks {
			if t.next > target {
				continue
			}
			if due == nil || t.next < due.next || (t.next == due.next && t.seq < due.seq) {
				due = t
			}
		}
		if due == nil {
			break
		}
		m.now = due.next
		due.next += due.interval
		fn := due.fn
		m.mu.Unlock()
		fn()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of live tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
