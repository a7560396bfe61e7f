package render

import (
	"sync"
	"sync/atomic"

	"github.com/abhisek/lessonplay/internal/lesson"
)

// Async wraps a renderer whose resources load in the background. Ready stays
// false until load has returned without error.
type Async struct {
	inner ChartRenderer
	ready atomic.Bool
	done  chan struct{}

	mu  sync.Mutex
	err error
}

var _ ChartRenderer = (*Async)(nil)

// NewAsync starts load on its own goroutine and returns immediately.
func NewAsync(inner ChartRenderer, load func() error) *Async {
	a := &Async{inner: inner, done: make(chan struct{})}
	go func() {
		defer close(a.done)
		err := load()
		a.mu.Lock()
		a.err = err
		a.mu.Unlock()
		if err == nil {
			a.ready.Store(true)
		}
	}()
	return a
}

func (a *Async) Ready() bool {
	return a.ready.Load() && a.inner.Ready()
}

func (a *Async) CreateChart(canvas Canvas, spec lesson.ChartSpec) (ChartHandle, error) {
	if !a.Ready() {
		return nil, ErrNotReady
	}
	return a.inner.CreateChart(canvas, spec)
}

// Wait blocks until load has finished and returns its error.
func (a *Async) Wait() error {
	<-a.done
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}
