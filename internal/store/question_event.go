package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendQuestionEvent(ctx context.Context, data QuestionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	insert := sqlite.Insert(questionTable).
		Columns("sequence", "timestamp", "session_id", "lesson_id", "step_index", "question", "answer", "success", "error_message").
		Values(seqNum, time.Now().UTC(), data.SessionID, data.LessonID, data.StepIndex,
			data.Question, data.Answer, data.Success, data.ErrorMessage)
	if err := exec(ctx, r.drv, insert); err != nil {
		return fmt.Errorf("save question event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryQuestionEvents(ctx context.Context, opts QueryOpts) ([]QuestionEvent, error) {
	sel := sqlite.Select("id", "sequence", "timestamp", "session_id", "lesson_id", "step_index",
		"question", "answer", "success", "error_message").
		From(entsql.Table(questionTable))

	var events []QuestionEvent
	err := scanRows(ctx, r.drv, opts.filter(sel), func(rows *entsql.Rows) error {
		var e QuestionEvent
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &e.LessonID, &e.StepIndex,
			&e.Question, &e.Answer, &e.Success, &e.ErrorMessage); err != nil {
			return err
		}
		events = append(events, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query question events: %w", err)
	}
	return events, nil
}
