// Package router keeps the stack of open screens. Screens navigate by
// returning one of the messages below as a command.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lessonplay/internal/screen"
)

// PushScreenMsg opens Screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg closes the top screen. The root screen is never popped.
type PopScreenMsg struct{}

// ReplaceScreenMsg closes the top screen and opens Screen in its place.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// HomeMsg closes everything above the root screen.
type HomeMsg struct{}

// Push, Pop, Replace and Home wrap the messages as commands.
func Push(s screen.Screen) tea.Cmd    { return func() tea.Msg { return PushScreenMsg{Screen: s} } }
func Pop() tea.Cmd                    { return func() tea.Msg { return PopScreenMsg{} } }
func Replace(s screen.Screen) tea.Cmd { return func() tea.Msg { return ReplaceScreenMsg{Screen: s} } }
func Home() tea.Cmd                   { return func() tea.Msg { return HomeMsg{} } }

// Router owns the screens on its stack and closes each one as it leaves.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) top() int { return len(r.stack) - 1 }

// Open pushes s and returns its Init command.
func (r *Router) Open(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// closeAbove closes and drops every screen above index keep.
func (r *Router) closeAbove(keep int) {
	for i := r.top(); i > keep; i-- {
		screen.Close(r.stack[i])
		r.stack[i] = nil
	}
	r.stack = r.stack[:keep+1]
}

// Close closes every screen, top first. The router is unusable afterwards.
func (r *Router) Close() {
	r.closeAbove(-1)
}

func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[r.top()]
}

func (r *Router) Depth() int {
	return len(r.stack)
}

// Trail returns the titles from the root to the active screen.
func (r *Router) Trail() []string {
	out := make([]string, 0, len(r.stack))
	for _, s := range r.stack {
		if t := s.Title(); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Update applies navigation messages and hands anything else to the active
// screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Open(msg.Screen)
	case PopScreenMsg:
		if len(r.stack) > 1 {
			r.closeAbove(r.top() - 1)
		}
		return nil
	case HomeMsg:
		if len(r.stack) > 1 {
			r.closeAbove(0)
		}
		return nil
	case ReplaceScreenMsg:
		if len(r.stack) > 0 {
			r.closeAbove(r.top() - 1)
		}
		return r.Open(msg.Screen)
	}

	active := r.Active()
	if active == nil {
		return nil
	}
	next, cmd := active.Update(msg)
	r.stack[r.top()] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	if active := r.Active(); active != nil {
		return active.View(width, height)
	}
	return ""
}
