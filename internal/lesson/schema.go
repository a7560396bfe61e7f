package lesson

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// documentSchema describes a lesson document as served by the fetch contract
// and as stored in catalog fixtures.
var documentSchema = map[string]any{
	"type":     "object",
	"required": []any{"id", "title", "steps"},
	"properties": map[string]any{
		"id":          map[string]any{"type": "string", "minLength": 1},
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"steps": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "title", "content"},
				"properties": map[string]any{
					"id":       map[string]any{"type": "string"},
					"title":    map[string]any{"type": "string"},
					"content":  map[string]any{"type": "string"},
					"duration": map[string]any{"type": "integer", "minimum": 0},
					"charts": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"id", "type", "data"},
							"properties": map[string]any{
								"id": map[string]any{"type": "string", "minLength": 1},
								"type": map[string]any{
									"type": "string",
									"enum": []any{"line", "bar", "pie", "scatter", "radar", "doughnut"},
								},
								"data": map[string]any{
									"type":     "object",
									"required": []any{"labels", "datasets"},
									"properties": map[string]any{
										"labels": map[string]any{
											"type":  "array",
											"items": map[string]any{"type": "string"},
										},
										"datasets": map[string]any{
											"type": "array",
											"items": map[string]any{
												"type":     "object",
												"required": []any{"data"},
												"properties": map[string]any{
													"label": map[string]any{"type": "string"},
													"data": map[string]any{
														"type":  "array",
														"items": map[string]any{"type": "number"},
													},
												},
											},
										},
									},
								},
								"options": map[string]any{"type": "object"},
							},
						},
					},
					"animations": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"id", "targets"},
							"properties": map[string]any{
								"id":        map[string]any{"type": "string"},
								"duration":  map[string]any{"type": "integer", "minimum": 0},
								"startTime": map[string]any{"type": "integer", "minimum": 0},
								"targets": map[string]any{
									"type": "array",
									"items": map[string]any{
										"type":     "object",
										"required": []any{"target", "properties"},
										"properties": map[string]any{
											"target":     map[string]any{"type": "string", "minLength": 1},
											"properties": map[string]any{"type": "object"},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func lessonSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants plain decoded JSON values, not Go map literals
		// with []any of mixed origin, so round-trip through encoding/json.
		raw, err := json.Marshal(documentSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal lesson schema: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			compileErr = fmt.Errorf("parse lesson schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://lesson.json"
		if err := c.AddResource(url, doc); err != nil {
			compileErr = fmt.Errorf("add lesson schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}

// Decode validates raw JSON against the lesson document schema, decodes it,
// fills defaults and checks the playback invariants.
func Decode(raw []byte) (*Lesson, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	schema, err := lessonSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var l Lesson
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	l.Normalize()
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}
