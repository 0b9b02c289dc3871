package router

import (
	"github.com/abhisek/wordiz/internal/screen"

	tea "charm.land/bubbletea/v2"
)

// PushScreenMsg asks the router to stack a screen on top of the active one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg asks the router to drop the active screen.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the active screen, e.g. a finished drill for its
// summary, without growing the stack.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// Closer is implemented by screens holding resources that must be released
// when they leave the stack.
type Closer interface {
	Close()
}

// Router keeps the screen stack. The bottom screen is never removed.
type Router struct {
	stack []screen.Screen
}

// New creates a router rooted at initial.
func New(initial screen.Screen) *Router {
	return &Router{
		stack: []screen.Screen{initial},
	}
}

// Push stacks s and returns its Init command.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop removes the top screen and returns the Resume command of the screen
// it uncovers. It is a no-op on the root screen.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	top := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	release(top)
	if rs, ok := r.Active().(screen.Resumer); ok {
		return rs.Resume()
	}
	return nil
}

// Replace swaps the top screen for s and returns its Init command.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	top := r.stack[len(r.stack)-1]
	r.stack[len(r.stack)-1] = s
	if top != s {
		release(top)
	}
	return s.Init()
}

// Active returns the top screen.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the number of stacked screens.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update handles navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	}

	active := r.Active()
	if active == nil {
		return nil
	}

	updated, cmd := active.Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	active := r.Active()
	if active == nil {
		return ""
	}
	return active.View(width, height)
}

func release(s screen.Screen) {
	if c, ok := s.(Closer); ok {
		c.Close()
	}
}
