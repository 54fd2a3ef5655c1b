package gpu

import (
	"errors"
	"fmt"
)

// ErrStateStackEmpty is returned by PopState when nothing was pushed.
var ErrStateStackEmpty = errors.New("gpu: state stack empty")

// SavedState is the slice of pipeline state that off-screen targets
// replace while bound.
type SavedState struct {
	Framebuffer uint32
	DrawBuffer  uint32
	Viewport    Viewport
}

type stateEntry struct {
	owner any
	state SavedState
}

// Context couples a Device with the pipeline state stack.
// It belongs to the render thread and is not safe for concurrent use.
type Context struct {
	Device
	stack []stateEntry
}

// NewContext wraps a device.
func NewContext(dev Device) *Context {
	return &Context{Device: dev}
}

// PushState records the current framebuffer, draw buffer and viewport
// on behalf of owner.
func (c *Context) PushState(owner any) {
	c.stack = append(c.stack, stateEntry{
		owner: owner,
		state: SavedState{
			Framebuffer: c.CurrentFramebuffer(),
			DrawBuffer:  c.CurrentDrawBuffer(),
			Viewport:    c.CurrentViewport(),
		},
	})
}

// PopState restores the state pushed by owner. The top entry must belong
// to owner; otherwise nothing is restored and an error is returned.
func (c *Context) PopState(owner any) error {
	if len(c.stack) == 0 {
		return ErrStateStackEmpty
	}
	top := c.stack[len(c.stack)-1]
	if top.owner != owner {
		return fmt.Errorf("gpu: state stack top owned by %v", top.owner)
	}
	c.stack = c.stack[:len(c.stack)-1]

	s := top.state
	c.BindFramebuffer(Framebuffer, s.Framebuffer)
	c.DrawBuffer(s.DrawBuffer)
	c.Viewport(s.Viewport[0], s.Viewport[1], s.Viewport[2], s.Viewport[3])
	return nil
}

// DropState removes owner's entry from anywhere in the stack without
// restoring it. The entry pushed directly above it inherits its saved
// state, so unwinding the remaining entries still ends where owner began.
// If owner is on top, its state is restored as PopState would.
func (c *Context) DropState(owner any) error {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if c.stack[i].owner != owner {
			continue
		}
		if i == len(c.stack)-1 {
			return c.PopState(owner)
		}
		c.stack[i+1].state = c.stack[i].state
		c.stack = append(c.stack[:i], c.stack[i+1:]...)
		return nil
	}
	return fmt.Errorf("gpu: no saved state for %v", owner)
}

// Top returns the owner of the most recent push, or nil.
func (c *Context) Top() any {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1].owner
}

// Depth returns the number of saved states.
func (c *Context) Depth() int {
	return len(c.stack)
}
