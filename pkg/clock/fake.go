package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock is a manually advanced Clock.
// AfterFunc callbacks run synchronously inside Advance, in deadline order.
// A callback that schedules a new task due before the Advance target
// fires within the same Advance call.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*fakeTask
}

type fakeTask struct {
	deadline time.Time
	seq      uint64
	fn       func()
	ch       chan time.Time
	interval time.Duration
	stopped  bool
	fired    bool
}

// NewFake creates a FakeClock starting at the given time
func NewFake(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake current time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f at now+d
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	task := c.addLocked(d, 0)
	task.fn = f
	return &Timer{stopFunc: c.stopper(task)}
}

// NewTicker creates a ticker whose channel receives on every elapsed interval
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	task := c.addLocked(d, d)
	task.ch = ch
	stop := c.stopper(task)
	return &Ticker{C: ch, stopFunc: func() { stop() }}
}

func (c *FakeClock) addLocked(d, interval time.Duration) *fakeTask {
	if d < 0 {
		d = 0
	}
	c.seq++
	task := &fakeTask{
		deadline: c.now.Add(d),
		seq:      c.seq,
		interval: interval,
	}
	c.pending = append(c.pending, task)
	return task
}

func (c *FakeClock) stopper(task *fakeTask) func() bool {
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if task.stopped || task.fired {
			return false
		}
		task.stopped = true
		return true
	}
}

// Advance moves time forward by d and runs everything that came due
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		task, fireAt, ok := c.nextDue(target)
		if !ok {
			break
		}
		if task.fn != nil {
			task.fn()
			continue
		}
		select {
		case task.ch <- fireAt:
		default:
		}
	}

	c.mu.Lock()
	c.now = target
	c.mu.Unlock()
}

// nextDue pops the earliest task due at or before target, moves the clock to its
// deadline and returns that deadline. Tickers are rescheduled one interval on.
func (c *FakeClock) nextDue(target time.Time) (*fakeTask, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.pending[:0]
	for _, task := range c.pending {
		if !task.stopped && !task.fired {
			live = append(live, task)
		}
	}
	c.pending = live

	sort.SliceStable(c.pending, func(i, j int) bool {
		if c.pending[i].deadline.Equal(c.pending[j].deadline) {
			return c.pending[i].seq < c.pending[j].seq
		}
		return c.pending[i].deadline.Before(c.pending[j].deadline)
	})

	if len(c.pending) == 0 || c.pending[0].deadline.After(target) {
		return nil, time.Time{}, false
	}

	task := c.pending[0]
	fireAt := task.deadline
	if task.deadline.After(c.now) {
		c.now = task.deadline
	}
	if task.interval > 0 {
		task.deadline = task.deadline.Add(task.interval)
	} else {
		task.fired = true
		c.pending = c.pending[1:]
	}
	return task, fireAt, true
}

// PendingCount returns the number of scheduled tasks that have not fired or been stopped
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, task := range c.pending {
		if !task.stopped && !task.fired {
			n++
		}
	}
	return n
}
