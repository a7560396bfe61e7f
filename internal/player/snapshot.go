package player

import (
	"time"

	"github.com/abhisek/lessonplay/internal/playback"
	"github.com/abhisek/lessonplay/internal/scene"
	"github.com/abhisek/lessonplay/internal/timeline"
)

// Snapshot is a consistent view model of the player.
type Snapshot struct {
	LessonID    string
	LessonTitle string
	Loading     string
	Err         error

	State     playback.State
	Index     int
	StepCount int
	StepTitle string
	Elapsed   time.Duration
	Duration  time.Duration
	// Progress is the share of the current step played, in percent.
	Progress float64

	Lines []scene.Line

	Timeline      timeline.State
	TimelinePos   time.Duration
	TimelineTotal time.Duration

	// ResumeStep is the remembered step of this lesson, or -1.
	ResumeStep int

	Question QuestionView
}

// QuestionView is the question overlay.
type QuestionView struct {
	Open    bool
	Pending bool
	Text    string
	Answer  []scene.Line
	Err     error
}

// Playing reports whether playback is running.
func (s Snapshot) Playing() bool { return s.State == playback.Playing }

// Snapshot returns the current view model with step lines laid out for
// width columns. It also collects a finished answer, if one is waiting.
func (p *Player) Snapshot(width int) Snapshot {
	seq := p.seq.Snapshot()
	pos, total, tlState, _ := p.coord.Progress()

	p.view.Lock()
	defer p.view.Unlock()

	if p.question.pending && p.asker != nil {
		if res, ok := p.asker.Consume(); ok {
			p.answered(res)
		}
	}

	snap := Snapshot{
		Loading:       p.loading,
		Err:           p.loadErr,
		State:         seq.State,
		Index:         seq.Index,
		StepCount:     seq.StepCount,
		Elapsed:       seq.Elapsed,
		Duration:      seq.Duration,
		Progress:      progressPercent(seq.Elapsed, seq.Duration),
		Timeline:      tlState,
		TimelinePos:   pos,
		TimelineTotal: total,
		ResumeStep:    p.resume,
	}
	if seq.Lesson != nil {
		snap.LessonID = seq.Lesson.ID
		snap.LessonTitle = seq.Lesson.Title
		if step := seq.Lesson.Step(seq.Index); step != nil {
			snap.StepTitle = step.Title
		}
	}
	if p.doc != nil && p.doc.Connected() && p.index == seq.Index {
		snap.Lines = p.doc.Lines(width)
	}

	q := p.question
	snap.Question = QuestionView{Open: q.open, Pending: q.pending, Text: q.text, Err: q.err}
	if q.answer != nil {
		snap.Question.Answer = q.answer.Lines(width)
	}
	return snap
}

// progressPercent is min(100, elapsed/duration*100).
func progressPercent(elapsed, duration time.Duration) float64 {
	if duration <= 0 {
		return 0
	}
	return min(100, float64(elapsed)/float64(duration)*100)
}
