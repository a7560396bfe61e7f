package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// QuestionEvent records a question asked about a step and how it was
// answered.
type QuestionEvent struct {
	ent.Schema
}

func (QuestionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (QuestionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty(),
		field.String("lesson_id").
			NotEmpty(),
		field.Int("step_index").
			Default(0),
		field.Text("question"),
		field.Text("answer").
			Default(""),
		field.Bool("success"),
		field.String("error_message").
			Default(""),
	}
}

func (QuestionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "sequence"),
	}
}
