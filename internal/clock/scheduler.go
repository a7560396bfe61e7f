package clock

import (
	"sync"
	"time"
)

// DefaultFrame approximates one display refresh.
const DefaultFrame = 16 * time.Millisecond

// Scheduler hands out timers tagged with the epoch they were scheduled in.
// A callback whose epoch is no longer current when it fires does nothing.
//
// Every method must be called with the owner's lock held; callbacks run with
// that same lock held, so owners never see a callback interleave with their
// own state changes.
type Scheduler struct {
	clock Clock
	lock  sync.Locker
	frame time.Duration
	epoch uint64
	tasks map[*Task]struct{}
}

// Task is a scheduled callback.
type Task struct {
	s     *Scheduler
	epoch uint64
	timer Timer
	done  bool
}

// NewScheduler creates a Scheduler that runs callbacks under lock. A zero
// frame falls back to DefaultFrame.
func NewScheduler(c Clock, lock sync.Locker, frame time.Duration) *Scheduler {
	if frame <= 0 {
		frame = DefaultFrame
	}
	return &Scheduler{
		clock: c,
		lock:  lock,
		frame: frame,
		tasks: make(map[*Task]struct{}),
	}
}

// Clock returns the underlying clock.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Epoch returns the current epoch.
func (s *Scheduler) Epoch() uint64 {
	return s.epoch
}

// After runs f once after d, unless the epoch moves or the task is cancelled first.
func (s *Scheduler) After(d time.Duration, f func()) *Task {
	t := &Task{s: s, epoch: s.epoch}
	t.timer = s.clock.AfterFunc(d, func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		if !t.live() {
			return
		}
		t.finish()
		f()
	})
	s.tasks[t] = struct{}{}
	return t
}

// Frame runs f on the next frame.
func (s *Scheduler) Frame(f func()) *Task {
	return s.After(s.frame, f)
}

// Every runs f every d until cancelled or the epoch moves.
func (s *Scheduler) Every(d time.Duration, f func()) *Task {
	t := &Task{s: s, epoch: s.epoch}
	var arm func()
	arm = func() {
		t.timer = s.clock.AfterFunc(d, func() {
			s.lock.Lock()
			defer s.lock.Unlock()
			if !t.live() {
				return
			}
			f()
			if t.live() {
				arm()
			}
		})
	}
	arm()
	s.tasks[t] = struct{}{}
	return t
}

// Invalidate advances the epoch and stops every pending task. No callback
// scheduled before the call runs after it returns.
func (s *Scheduler) Invalidate() uint64 {
	s.epoch++
	for t := range s.tasks {
		t.done = true
		t.timer.Stop()
	}
	clear(s.tasks)
	return s.epoch
}

// Pending returns the number of tasks that can still fire.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Cancel stops the task. Safe to call more than once.
func (t *Task) Cancel() {
	if t == nil || t.done {
		return
	}
	t.finish()
	t.timer.Stop()
}

// Live reports whether the task can still fire.
func (t *Task) Live() bool {
	return t != nil && t.live()
}

func (t *Task) live() bool {
	return !t.done && t.epoch == t.s.epoch
}

func (t *Task) finish() {
	t.done = true
	delete(t.s.tasks, t)
}
