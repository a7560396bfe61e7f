package player

import (
	"context"
	"sync"
	"time"

	"github.com/abhisek/lessonplay/internal/logger"
	"github.com/abhisek/lessonplay/internal/playback"
	"github.com/abhisek/lessonplay/internal/store"
)

const recorderBuffer = 64

// recorder writes events off the caller's goroutine. Sequencer listeners run
// under the sequencer lock, so they only enqueue.
type recorder struct {
	events   store.EventRepo
	progress store.ProgressRepo
	session  string
	log      *logger.Logger

	mu     sync.Mutex
	closed bool
	queue  chan func(context.Context)
	done   chan struct{}
}

func newRecorder(events store.EventRepo, progress store.ProgressRepo, session string, log *logger.Logger) *recorder {
	r := &recorder{
		events:   events,
		progress: progress,
		session:  session,
		log:      log.With("component", "recorder"),
		queue:    make(chan func(context.Context), recorderBuffer),
		done:     make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *recorder) run() {
	defer close(r.done)
	for job := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		job(ctx)
		cancel()
	}
}

func (r *recorder) submit(job func(context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- job:
	default:
		r.log.Warn("event queue full, dropping event")
	}
}

// playback is a playback.Listener.
func (r *recorder) playback(ev playback.Event) {
	if r.events == nil && r.progress == nil {
		return
	}
	data := store.PlaybackEventData{
		SessionID: r.session,
		LessonID:  ev.LessonID,
		Kind:      string(ev.Kind),
		StepIndex: ev.Index,
		ElapsedMs: ev.Elapsed.Milliseconds(),
	}
	savePosition := ev.Kind == playback.EventStepChanged
	r.submit(func(ctx context.Context) {
		if r.events != nil {
			if err := r.events.AppendPlaybackEvent(ctx, data); err != nil {
				r.log.Warn("record playback event failed", "kind", data.Kind, "err", err)
			}
		}
		if savePosition && r.progress != nil {
			if err := r.progress.SavePosition(ctx, data.LessonID, data.StepIndex); err != nil {
				r.log.Warn("save position failed", "lesson", data.LessonID, "err", err)
			}
		}
	})
}

// hook records an authored Begin/Complete hook as a "hook:<name>" playback
// event.
func (r *recorder) hook(lessonID string, index int, at time.Duration, name string) {
	if r.events == nil {
		return
	}
	data := store.PlaybackEventData{
		SessionID: r.session,
		LessonID:  lessonID,
		Kind:      "hook:" + name,
		StepIndex: index,
		ElapsedMs: at.Milliseconds(),
	}
	r.submit(func(ctx context.Context) {
		if err := r.events.AppendPlaybackEvent(ctx, data); err != nil {
			r.log.Warn("record hook event failed", "hook", name, "err", err)
		}
	})
}

func (r *recorder) question(data store.QuestionEventData) {
	if r.events == nil {
		return
	}
	data.SessionID = r.session
	r.submit(func(ctx context.Context) {
		if err := r.events.AppendQuestionEvent(ctx, data); err != nil {
			r.log.Warn("record question event failed", "err", err)
		}
	})
}

// Close stops accepting events and waits for queued ones to be written.
func (r *recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()
	<-r.done
}
