package lesson

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/abhisek/lessonplay/internal/logger"
)

// Loader fetches lessons on demand. Each distinct id is fetched at most once
// per Loader; concurrent requests for the same id share one fetch. Every Load
// supersedes the previous one, and a superseded result is never applied.
type Loader struct {
	fetcher Fetcher
	log     *logger.Logger
	group   singleflight.Group

	mu      sync.Mutex
	cache   map[string]*Lesson
	gen     uint64
	fetches int
	wg      sync.WaitGroup
}

// NewLoader creates a Loader over fetcher.
func NewLoader(fetcher Fetcher, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		fetcher: fetcher,
		log:     log.With("component", "lesson-loader"),
		cache:   make(map[string]*Lesson),
	}
}

// Fetch returns the lesson for id, fetching it if it is not cached yet.
func (l *Loader) Fetch(ctx context.Context, id string) (*Lesson, error) {
	l.mu.Lock()
	if cached, ok := l.cache[id]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do(id, func() (any, error) {
		l.mu.Lock()
		if cached, ok := l.cache[id]; ok {
			l.mu.Unlock()
			return cached, nil
		}
		l.fetches++
		l.mu.Unlock()

		lesson, err := l.fetcher.FetchLesson(ctx, id)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[id] = lesson
		l.mu.Unlock()
		return lesson, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Lesson), nil
}

// Load fetches id in the background and calls apply with the outcome, unless
// another Load or Cancel happened in the meantime. apply runs while the
// Loader's lock is held and must not call back into the Loader.
func (l *Loader) Load(ctx context.Context, id string, apply func(*Lesson, error)) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		lesson, err := l.Fetch(ctx, id)

		l.mu.Lock()
		defer l.mu.Unlock()
		if gen != l.gen {
			l.log.Debug("dropping superseded lesson load", "lesson", id)
			return
		}
		if err != nil {
			l.log.Warn("lesson load failed", "lesson", id, "err", err)
		}
		apply(lesson, err)
	}()
}

// Cancel supersedes any in-flight Load.
func (l *Loader) Cancel() {
	l.mu.Lock()
	l.gen++
	l.mu.Unlock()
}

// Wait blocks until every background Load has finished.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// Fetches returns how many fetches reached the underlying Fetcher.
func (l *Loader) Fetches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fetches
}
