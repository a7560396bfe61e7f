package lesson

import (
	"errors"
	"fmt"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid lesson")

// Normalize fills defaults the original lesson format allowed authors to omit.
func (l *Lesson) Normalize() {
	for i := range l.Steps {
		if l.Steps[i].Duration == 0 {
			l.Steps[i].Duration = DefaultStepDuration
		}
	}
}

// Validate checks the structural invariants playback relies on.
func (l *Lesson) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalid)
	}
	if len(l.Steps) == 0 {
		return fmt.Errorf("%w: lesson %q has no steps", ErrInvalid, l.ID)
	}
	for i, s := range l.Steps {
		if s.Duration <= 0 {
			return fmt.Errorf("%w: step %d duration must be positive, got %d", ErrInvalid, i, s.Duration)
		}
		seen := make(map[string]bool, len(s.Charts))
		for _, c := range s.Charts {
			if c.ID == "" {
				return fmt.Errorf("%w: step %d has a chart without id", ErrInvalid, i)
			}
			if seen[c.ID] {
				return fmt.Errorf("%w: step %d chart id %q is not unique", ErrInvalid, i, c.ID)
			}
			seen[c.ID] = true
			if !c.Type.Valid() {
				return fmt.Errorf("%w: step %d chart %q has unknown type %q", ErrInvalid, i, c.ID, c.Type)
			}
		}
		for _, a := range s.Animations {
			if a.StartTime < 0 {
				return fmt.Errorf("%w: step %d animation %q starts before the step", ErrInvalid, i, a.ID)
			}
		}
	}
	return nil
}

// StepCount returns the number of steps.
func (l *Lesson) StepCount() int {
	return len(l.Steps)
}

// Step returns the step at index i, or nil when out of range.
func (l *Lesson) Step(i int) *Step {
	if l == nil || i < 0 || i >= len(l.Steps) {
		return nil
	}
	return &l.Steps[i]
}

// TotalDuration sums every step duration.
func (l *Lesson) TotalDuration() Millis {
	var total Millis
	for _, s := range l.Steps {
		total += s.Duration
	}
	return total
}
