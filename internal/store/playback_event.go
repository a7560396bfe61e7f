package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendPlaybackEvent(ctx context.Context, data PlaybackEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	insert := sqlite.Insert(playbackTable).
		Columns("sequence", "timestamp", "session_id", "lesson_id", "kind", "step_index", "elapsed_ms").
		Values(seqNum, time.Now().UTC(), data.SessionID, data.LessonID, data.Kind, data.StepIndex, data.ElapsedMs)
	if err := exec(ctx, r.drv, insert); err != nil {
		return fmt.Errorf("save playback event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryPlaybackEvents(ctx context.Context, lessonID string, opts QueryOpts) ([]PlaybackEvent, error) {
	sel := sqlite.Select("id", "sequence", "timestamp", "session_id", "lesson_id", "kind", "step_index", "elapsed_ms").
		From(entsql.Table(playbackTable))
	if lessonID != "" {
		sel.Where(entsql.EQ("lesson_id", lessonID))
	}

	var events []PlaybackEvent
	err := scanRows(ctx, r.drv, opts.filter(sel), func(rows *entsql.Rows) error {
		var e PlaybackEvent
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &e.LessonID, &e.Kind, &e.StepIndex, &e.ElapsedMs); err != nil {
			return err
		}
		events = append(events, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query playback events: %w", err)
	}
	return events, nil
}
