// Package lesson holds the lesson data model, the embedded lesson catalog,
// and the fetch-by-id contract used by the player.
package lesson

import "time"

// Millis is a duration expressed in whole milliseconds on the wire.
type Millis int64

// Std converts m to a time.Duration.
func (m Millis) Std() time.Duration {
	return time.Duration(m) * time.Millisecond
}

// DefaultStepDuration is applied to steps that omit a duration.
const DefaultStepDuration Millis = 5000

// Lesson is an ordered sequence of steps. Lessons are immutable once fetched.
type Lesson struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`
}

// Step is one unit of lesson content. Steps are addressed by index for
// navigation; ID is presentational only.
type Step struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Content    string              `json:"content"`
	Duration   Millis              `json:"duration"`
	Charts     []ChartSpec         `json:"charts,omitempty"`
	Animations []AnimationSequence `json:"animations,omitempty"`
}

// ChartType enumerates the chart kinds a step may declare.
type ChartType string

const (
	ChartLine     ChartType = "line"
	ChartBar      ChartType = "bar"
	ChartPie      ChartType = "pie"
	ChartScatter  ChartType = "scatter"
	ChartRadar    ChartType = "radar"
	ChartDoughnut ChartType = "doughnut"
)

// Valid reports whether t is a known chart type.
func (t ChartType) Valid() bool {
	switch t {
	case ChartLine, ChartBar, ChartPie, ChartScatter, ChartRadar, ChartDoughnut:
		return true
	}
	return false
}

// ChartSpec declares one chart. ID doubles as the anchor of its canvas in the
// step markup and must be unique within the step.
type ChartSpec struct {
	ID      string         `json:"id"`
	Type    ChartType      `json:"type"`
	Data    ChartData      `json:"data"`
	Options map[string]any `json:"options,omitempty"`
}

// Title returns the chart title from options.plugins.title.text, if any.
func (c ChartSpec) Title() string {
	plugins, _ := c.Options["plugins"].(map[string]any)
	title, _ := plugins["title"].(map[string]any)
	text, _ := title["text"].(string)
	return text
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
}

// AnimationSequence is an author-declared group of animations. StartTime is
// relative to the start of the owning step.
type AnimationSequence struct {
	ID        string            `json:"id"`
	Targets   []AnimationTarget `json:"targets"`
	Duration  Millis            `json:"duration"`
	StartTime Millis            `json:"startTime"`
}

// AnimationTarget animates the elements matched by Target. Begin and Complete
// name hooks reported by the timeline when the animation starts and ends.
type AnimationTarget struct {
	Target     string             `json:"target"`
	Properties map[string]float64 `json:"properties"`
	Duration   Millis             `json:"duration,omitempty"`
	Delay      Millis             `json:"delay,omitempty"`
	Easing     string             `json:"easing,omitempty"`
	Begin      string             `json:"begin,omitempty"`
	Complete   string             `json:"complete,omitempty"`
}
