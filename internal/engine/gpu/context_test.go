package gpu_test

import (
	"errors"
	"testing"

	"github.com/Faultbox/dragonview/internal/engine/gpu"
	"github.com/Faultbox/dragonview/internal/engine/gpu/gputest"
)

func TestPushPopRestoresState(t *testing.T) {
	dev := gputest.New()
	ctx := gpu.NewContext(dev)
	before := dev.CurrentViewport()

	owner := new(int)
	ctx.PushState(owner)
	if ctx.Depth() != 1 || ctx.Top() != owner {
		t.Fatalf("expected one entry owned by pusher, depth=%d", ctx.Depth())
	}

	fbo := dev.GenFramebuffer()
	dev.BindFramebuffer(gpu.Framebuffer, fbo)
	dev.DrawBuffer(gpu.None)
	dev.Viewport(0, 0, 64, 64)

	if err := ctx.PopState(owner); err != nil {
		t.Fatalf("PopState: %v", err)
	}
	if got := dev.CurrentViewport(); got != before {
		t.Errorf("viewport = %v, want %v", got, before)
	}
	if got := dev.CurrentFramebuffer(); got != 0 {
		t.Errorf("framebuffer = %d, want 0", got)
	}
	if got := dev.CurrentDrawBuffer(); got != gpu.Back {
		t.Errorf("draw buffer = 0x%X, want BACK", got)
	}
	if ctx.Top() != nil {
		t.Error("expected empty stack after pop")
	}
}

func TestPopStateEmpty(t *testing.T) {
	ctx := gpu.NewContext(gputest.New())
	if err := ctx.PopState(new(int)); !errors.Is(err, gpu.ErrStateStackEmpty) {
		t.Errorf("expected ErrStateStackEmpty, got %v", err)
	}
}

func TestPopStateWrongOwner(t *testing.T) {
	ctx := gpu.NewContext(gputest.New())
	a, b := new(int), new(int)
	ctx.PushState(a)
	ctx.PushState(b)

	if err := ctx.PopState(a); err == nil {
		t.Fatal("expected error when popping out of order")
	}
	if ctx.Depth() != 2 {
		t.Errorf("failed pop must not change the stack, depth=%d", ctx.Depth())
	}
	if err := ctx.PopState(b); err != nil {
		t.Fatalf("PopState(b): %v", err)
	}
	if err := ctx.PopState(a); err != nil {
		t.Fatalf("PopState(a): %v", err)
	}
}

func TestDropStateHandsOffSavedState(t *testing.T) {
	dev := gputest.New()
	ctx := gpu.NewContext(dev)
	screen := dev.CurrentViewport()

	a, b := new(int), new(int)
	ctx.PushState(a)
	dev.BindFramebuffer(gpu.Framebuffer, dev.GenFramebuffer())
	dev.Viewport(0, 0, 128, 128)
	ctx.PushState(b)
	inner := dev.GenFramebuffer()
	dev.BindFramebuffer(gpu.Framebuffer, inner)
	dev.Viewport(0, 0, 32, 32)

	if err := ctx.DropState(a); err != nil {
		t.Fatalf("DropState: %v", err)
	}
	if ctx.Depth() != 1 || ctx.Top() != b {
		t.Fatalf("depth = %d, want only b", ctx.Depth())
	}
	if dev.CurrentFramebuffer() != inner {
		t.Error("dropping a buried entry must not touch current state")
	}

	if err := ctx.PopState(b); err != nil {
		t.Fatal(err)
	}
	if dev.CurrentFramebuffer() != 0 || dev.CurrentViewport() != screen {
		t.Errorf("after pop: fbo=%d viewport=%v, want state saved by a", dev.CurrentFramebuffer(), dev.CurrentViewport())
	}

	if err := ctx.DropState(a); err == nil {
		t.Error("expected error dropping an owner with no entry")
	}
}

func TestDropStateTopRestores(t *testing.T) {
	dev := gputest.New()
	ctx := gpu.NewContext(dev)
	screen := dev.CurrentViewport()

	a := new(int)
	ctx.PushState(a)
	dev.Viewport(0, 0, 16, 16)

	if err := ctx.DropState(a); err != nil {
		t.Fatal(err)
	}
	if dev.CurrentViewport() != screen || ctx.Depth() != 0 {
		t.Error("dropping the top entry should restore it")
	}
}
