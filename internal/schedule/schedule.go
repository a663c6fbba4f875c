// Package schedule runs cancellable periodic work.
package schedule

import (
	"sync"
	"time"
)

// Task is a handle to scheduled periodic work.
type Task interface {
	// Cancel stops future runs. It is safe to call more than once and from
	// inside the task's own callback.
	Cancel()
}

// Scheduler starts periodic work.
type Scheduler interface {
	// Every runs fn once per interval until the returned Task is cancelled.
	// The first run happens one interval after scheduling.
	Every(interval time.Duration, fn func()) Task
}

// Ticker schedules work on real time using time.Ticker.
type Ticker struct{}

// Every implements Scheduler.
func (Ticker) Every(interval time.Duration, fn func()) Task {
	t := &tickerTask{stop: make(chan struct{})}
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-tk.C:
				// A tick and a cancel can be ready together; cancel wins.
				select {
				case <-t.stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	return t
}

type tickerTask struct {
	stop chan struct{}
	once sync.Once
}

func (t *tickerTask) Cancel() {
	t.once.Do(func() { close(t.stop) })
}
