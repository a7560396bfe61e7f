package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type progressRepo struct {
	drv *entsql.Driver
}

func (r *progressRepo) SavePosition(ctx context.Context, lessonID string, step int) error {
	upsert := sqlite.Insert(progressTable).
		Columns("lesson_id", "step_index", "updated_at").
		Values(lessonID, step, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("lesson_id"), entsql.ResolveWithNewValues())
	if err := exec(ctx, r.drv, upsert); err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

func (r *progressRepo) Position(ctx context.Context, lessonID string) (int, bool, error) {
	sel := sqlite.Select("step_index").From(entsql.Table(progressTable)).Where(entsql.EQ("lesson_id", lessonID))

	step, found := 0, false
	err := scanRows(ctx, r.drv, sel, func(rows *entsql.Rows) error {
		found = true
		return rows.Scan(&step)
	})
	if err != nil {
		return 0, false, fmt.Errorf("load position: %w", err)
	}
	return step, found, nil
}
