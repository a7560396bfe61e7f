package store

import (
	"context"
	"fmt"
	"time"
)

// SessionSummary condenses the events of one player session.
type SessionSummary struct {
	SessionID string
	LessonID  string
	Started   time.Time
	Ended     time.Time
	Events    int
	Plays     int
	LastStep  int
	Questions []QuestionEvent
}

// Duration is the time between the session's first and last event.
func (s SessionSummary) Duration() time.Duration {
	return s.Ended.Sub(s.Started)
}

// SessionSummaries groups the most recent limit playback events, and the
// questions asked alongside them, into sessions, newest first.
func SessionSummaries(ctx context.Context, repo EventRepo, limit int) ([]SessionSummary, error) {
	events, err := repo.QueryPlaybackEvents(ctx, "", QueryOpts{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("load playback events: %w", err)
	}

	var sessions []SessionSummary
	index := make(map[string]int)
	// Newest first: the first event seen for a session is its last.
	for _, e := range events {
		i, ok := index[e.SessionID]
		if !ok {
			i = len(sessions)
			index[e.SessionID] = i
			sessions = append(sessions, SessionSummary{
				SessionID: e.SessionID,
				LessonID:  e.LessonID,
				Ended:     e.Timestamp,
				LastStep:  e.StepIndex,
			})
		}
		s := &sessions[i]
		s.Started = e.Timestamp
		s.Events++
		if e.Kind == "play" {
			s.Plays++
		}
	}

	questions, err := repo.QueryQuestionEvents(ctx, QueryOpts{Limit: limit})
	if err != nil {
		return sessions, fmt.Errorf("load question events: %w", err)
	}
	for _, q := range questions {
		if i, ok := index[q.SessionID]; ok {
			sessions[i].Questions = append(sessions[i].Questions, q)
		}
	}
	return sessions, nil
}
