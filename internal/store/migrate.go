package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"entgo.io/ent"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/lessonplay/ent/schema"
)

// Table names, shared by the migration and the repositories.
const (
	playbackTable = "playback_events"
	questionTable = "question_events"
	llmTable      = "llm_request_events"
	progressTable = "lesson_progress"
)

var entities = []struct {
	table  string
	schema ent.Interface
}{
	{playbackTable, entschema.PlaybackEvent{}},
	{questionTable, entschema.QuestionEvent{}},
	{llmTable, entschema.LLMRequestEvent{}},
	{progressTable, entschema.LessonProgress{}},
}

// tables converts the ent schemas into migration tables. Every table gets
// an auto-increment integer id, mixin fields come first.
func tables() ([]*schema.Table, error) {
	out := make([]*schema.Table, 0, len(entities))
	for _, e := range entities {
		t, err := table(e.table, e.schema)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", e.table, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func table(name string, s ent.Interface) (*schema.Table, error) {
	var fields []ent.Field
	var indexes []ent.Index
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	id := &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	t := &schema.Table{
		Name:       name,
		Columns:    []*schema.Column{id},
		PrimaryKey: []*schema.Column{id},
	}
	byName := map[string]*schema.Column{"id": id}
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, d.Err
		}
		c := &schema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Unique:   d.Unique,
			Nullable: d.Optional || d.Nillable,
		}
		// Func defaults such as time.Now are applied by the repositories.
		if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
			c.Default = d.Default
		}
		t.Columns = append(t.Columns, c)
		byName[c.Name] = c
	}

	for _, idx := range indexes {
		d := idx.Descriptor()
		cols := make([]*schema.Column, 0, len(d.Fields))
		for _, f := range d.Fields {
			c, ok := byName[f]
			if !ok {
				return nil, fmt.Errorf("index on unknown field %q", f)
			}
			cols = append(cols, c)
		}
		t.Indexes = append(t.Indexes, &schema.Index{
			Name:    name + "_" + strings.Join(d.Fields, "_"),
			Unique:  d.Unique,
			Columns: cols,
		})
	}
	return t, nil
}

// migrate creates missing tables, columns and indexes. Existing data is
// kept; nothing is dropped.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	ts, err := tables()
	if err != nil {
		return err
	}
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, ts...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
