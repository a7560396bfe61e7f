package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// PlaybackEvent is one sequencer transition: play, pause, step change,
// scrub or finish.
type PlaybackEvent struct {
	ent.Schema
}

func (PlaybackEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (PlaybackEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("UUID of the player that emitted the event"),
		field.String("lesson_id").
			NotEmpty(),
		field.String("kind"),
		field.Int("step_index").
			Default(0),
		field.Int64("elapsed_ms").
			Default(0).
			Comment("Elapsed time inside the step when the event fired"),
	}
}

func (PlaybackEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("lesson_id", "sequence"),
		index.Fields("session_id"),
	}
}
