package lesson

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLesson() *Lesson {
	return &Lesson{
		ID:    "l1",
		Title: "L1",
		Steps: []Step{
			{ID: "s1", Title: "One", Content: "<p>1</p>", Duration: 1000},
			{ID: "s2", Title: "Two", Content: "<p>2</p>", Duration: 2000,
				Charts: []ChartSpec{{ID: "c1", Type: ChartBar}}},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Lesson)
		ok     bool
	}{
		{"valid", func(*Lesson) {}, true},
		{"missing id", func(l *Lesson) { l.ID = "" }, false},
		{"no steps", func(l *Lesson) { l.Steps = nil }, false},
		{"negative duration", func(l *Lesson) { l.Steps[0].Duration = -5 }, false},
		{"zero duration", func(l *Lesson) { l.Steps[0].Duration = 0 }, false},
		{"duplicate chart id", func(l *Lesson) {
			l.Steps[1].Charts = append(l.Steps[1].Charts, ChartSpec{ID: "c1", Type: ChartPie})
		}, false},
		{"empty chart id", func(l *Lesson) { l.Steps[1].Charts[0].ID = "" }, false},
		{"unknown chart type", func(l *Lesson) { l.Steps[1].Charts[0].Type = "sankey" }, false},
		{"negative start time", func(l *Lesson) {
			l.Steps[0].Animations = []AnimationSequence{{ID: "a", StartTime: -1}}
		}, false},
		{"same chart id across steps", func(l *Lesson) {
			l.Steps[0].Charts = []ChartSpec{{ID: "c1", Type: ChartLine}}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLesson()
			tt.mutate(l)
			err := l.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestNormalize_FillsZeroDurationOnly(t *testing.T) {
	l := validLesson()
	l.Steps[0].Duration = 0
	l.Normalize()
	assert.Equal(t, DefaultStepDuration, l.Steps[0].Duration)
	assert.Equal(t, Millis(2000), l.Steps[1].Duration)
}

func TestLesson_StepAccess(t *testing.T) {
	l := validLesson()
	assert.Equal(t, 2, l.StepCount())
	assert.Equal(t, "s2", l.Step(1).ID)
	assert.Nil(t, l.Step(2))
	assert.Nil(t, l.Step(-1))
	assert.Equal(t, Millis(3000), l.TotalDuration())

	var none *Lesson
	assert.Nil(t, none.Step(0))
}

func TestDecode(t *testing.T) {
	raw := `{
		"id": "d1",
		"title": "Decoded",
		"steps": [
			{"id": "a", "title": "A", "content": "<p>a</p>", "duration": 1500,
			 "charts": [{"id": "c", "type": "radar", "data": {"labels": ["x"], "datasets": [{"label": "y", "data": [1.5]}]}}]}
		]
	}`
	l, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, Millis(1500), l.Steps[0].Duration)
	assert.Equal(t, ChartRadar, l.Steps[0].Charts[0].Type)
	assert.Equal(t, 1500*time.Millisecond, l.Steps[0].Duration.Std())
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"id":`},
		{"missing steps", `{"id": "x", "title": "X"}`},
		{"empty steps", `{"id": "x", "title": "X", "steps": []}`},
		{"negative duration", `{"id": "x", "title": "X", "steps": [{"id": "a", "title": "A", "content": "", "duration": -1}]}`},
		{"bad chart type", `{"id": "x", "title": "X", "steps": [{"id": "a", "title": "A", "content": "",
			"charts": [{"id": "c", "type": "gantt", "data": {"labels": [], "datasets": []}}]}]}`},
		{"string data point", `{"id": "x", "title": "X", "steps": [{"id": "a", "title": "A", "content": "",
			"charts": [{"id": "c", "type": "bar", "data": {"labels": [], "datasets": [{"data": ["3"]}]}}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
