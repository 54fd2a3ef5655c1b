// Package rendertarget provides off-screen render targets for render-to-texture passes.
package rendertarget

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/dragonview/internal/engine/gpu"
	"github.com/Faultbox/dragonview/internal/logger"
)

// State is the lifecycle state of a render target.
type State int

const (
	Unbound State = iota
	Bound
	Destroyed
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrInvalidSize  = errors.New("rendertarget: width and height must be positive")
	ErrAlreadyBound = errors.New("rendertarget: already bound")
	ErrNotBound     = errors.New("rendertarget: not bound")
	ErrUnbindOrder  = errors.New("rendertarget: unbind out of order, a target bound later is still bound")
	ErrDestroyed    = errors.New("rendertarget: used after destroy")
)

// IncompleteError reports a framebuffer the driver rejected at construction.
// It indicates a configuration defect, not a transient condition.
type IncompleteError struct {
	Status uint32
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("rendertarget: framebuffer incomplete: status 0x%X", e.Status)
}

// Depth is a depth-only render target: a depth texture attached to a
// framebuffer with no color attachment. Bind routes rendering into the
// texture; Texture exposes it for sampling in a later pass.
type Depth struct {
	ctx *gpu.Context

	texture     uint32
	fbo         uint32
	depthBuffer uint32 // never allocated here; released if set
	width       int32
	height      int32
	state       State
}

// NewDepth allocates the depth texture and framebuffer and checks completeness.
// Texture and framebuffer bindings in effect before the call are restored.
func NewDepth(ctx *gpu.Context, width, height int32) (*Depth, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}

	d := &Depth{
		ctx:    ctx,
		width:  width,
		height: height,
	}

	prevTexture := ctx.CurrentTexture2D()
	prevFBO := ctx.CurrentFramebuffer()

	d.texture = ctx.GenTexture()
	ctx.BindTexture(gpu.Texture2D, d.texture)
	ctx.TexParameteri(gpu.Texture2D, gpu.TextureMinFilter, gpu.Nearest)
	ctx.TexParameteri(gpu.Texture2D, gpu.TextureMagFilter, gpu.Nearest)
	ctx.TexParameteri(gpu.Texture2D, gpu.TextureWrapS, gpu.ClampToEdge)
	ctx.TexParameteri(gpu.Texture2D, gpu.TextureWrapT, gpu.ClampToEdge)
	ctx.TexImage2D(gpu.Texture2D, 0, gpu.DepthComponent24, width, height, gpu.DepthComponent, gpu.Float, nil)

	d.fbo = ctx.GenFramebuffer()
	ctx.BindFramebuffer(gpu.Framebuffer, d.fbo)
	ctx.FramebufferTexture2D(gpu.Framebuffer, gpu.DepthAttachment, gpu.Texture2D, d.texture, 0)

	// No color buffer
	ctx.DrawBuffer(gpu.None)
	ctx.ReadBuffer(gpu.None)

	status := ctx.CheckFramebufferStatus(gpu.Framebuffer)

	ctx.BindFramebuffer(gpu.Framebuffer, prevFBO)
	ctx.BindTexture(gpu.Texture2D, prevTexture)

	if status != gpu.FramebufferComplete {
		d.release()
		return nil, &IncompleteError{Status: status}
	}

	logger.Debug("depth target created",
		zap.Uint32("fbo", d.fbo),
		zap.Uint32("texture", d.texture),
		zap.Int32("width", width),
		zap.Int32("height", height),
	)
	return d, nil
}

// Bind saves the current framebuffer, draw buffer and viewport, then
// directs depth output into this target with color writes disabled.
// Every Bind must be matched by one Unbind, innermost target first.
func (d *Depth) Bind() error {
	switch d.state {
	case Bound:
		return ErrAlreadyBound
	case Destroyed:
		return ErrDestroyed
	}

	d.ctx.PushState(d)
	d.ctx.BindFramebuffer(gpu.Framebuffer, d.fbo)
	d.ctx.DrawBuffer(gpu.None)
	d.ctx.Viewport(0, 0, d.width, d.height)
	d.state = Bound
	return nil
}

// Unbind restores the state saved by the matching Bind.
func (d *Depth) Unbind() error {
	switch d.state {
	case Unbound:
		return ErrNotBound
	case Destroyed:
		return ErrDestroyed
	}
	if d.ctx.Top() != d {
		return ErrUnbindOrder
	}
	if err := d.ctx.PopState(d); err != nil {
		return fmt.Errorf("restoring pipeline state: %w", err)
	}
	d.state = Unbound
	return nil
}

// Texture returns the depth texture handle for sampling.
func (d *Depth) Texture() uint32 {
	return d.texture
}

// Size returns the target dimensions.
func (d *Depth) Size() (width, height int32) {
	return d.width, d.height
}

// State returns the current lifecycle state.
func (d *Depth) State() State {
	return d.state
}

// Destroy releases the framebuffer, any depth renderbuffer and the texture.
// A bound target is unbound first. If targets bound after it are still
// bound, its saved state passes to the next one so their Unbind restores
// what was current before this target. Calling Destroy again does nothing.
func (d *Depth) Destroy() {
	if d.state == Destroyed {
		return
	}
	if d.state == Bound {
		if err := d.ctx.DropState(d); err != nil {
			logger.Warn("destroying bound depth target", zap.Error(err))
		}
		d.state = Unbound
	}
	d.release()
}

func (d *Depth) release() {
	if d.fbo != 0 {
		d.ctx.DeleteFramebuffer(d.fbo)
		d.fbo = 0
	}
	if d.depthBuffer != 0 {
		d.ctx.DeleteRenderbuffer(d.depthBuffer)
		d.depthBuffer = 0
	}
	if d.texture != 0 {
		d.ctx.DeleteTexture(d.texture)
		d.texture = 0
	}
	d.state = Destroyed
}
