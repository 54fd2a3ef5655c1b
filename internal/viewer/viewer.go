// Package viewer owns the window and runs the main loop around a demo session.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/dragonview/internal/assets"
	"github.com/Faultbox/dragonview/internal/config"
	"github.com/Faultbox/dragonview/internal/demo"
	"github.com/Faultbox/dragonview/internal/engine/capture"
	"github.com/Faultbox/dragonview/internal/engine/gpu"
	"github.com/Faultbox/dragonview/internal/engine/gpu/glcore"
	"github.com/Faultbox/dragonview/internal/engine/input"
	"github.com/Faultbox/dragonview/internal/engine/window"
	"github.com/Faultbox/dragonview/internal/logger"
)

// Viewer is the main application instance.
type Viewer struct {
	cfg        *config.Config
	running    bool
	window     *window.Window
	ctx        *gpu.Context
	assets     *assets.Manager
	session    *demo.Session
	input      *input.Input
	capturer   *capture.Capturer
	screenshot string // one-shot capture path
}

// New creates the window, the GL device and the render session.
// screenshot, when set, makes Run save the first frame there and return.
func New(cfg *config.Config, screenshot string) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.String("model", cfg.Assets.Model),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	v := &Viewer{
		cfg:        cfg,
		assets:     assets.NewManager(),
		input:      input.New(),
		capturer:   capture.New(cfg.Render.ScreenshotDir, "dragonview"),
		screenshot: screenshot,
	}

	for _, dir := range cfg.Assets.Dirs {
		if err := v.assets.AddDir(dir); err != nil {
			return nil, err
		}
	}

	// Window first, since it creates the OpenGL context
	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	dev, err := glcore.Init()
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	v.ctx = gpu.NewContext(dev)

	w, h := v.window.DrawableSize()
	v.session, err = demo.New(cfg, v.ctx, v.assets, w, h)
	if err != nil {
		v.Close()
		return nil, err
	}

	logger.Info("viewer initialized successfully")
	return v, nil
}

// Run starts the main loop and returns when the window is closed.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting render loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		shoot := v.handleEvents(v.input.Events())
		if !v.running {
			break
		}

		if err := v.session.Frame(float32(dt)); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		if v.screenshot != "" {
			// Read back before the swap invalidates the back buffer.
			w, h := v.window.DrawableSize()
			pixels := v.ctx.ReadPixels(0, 0, int32(w), int32(h))
			if err := capture.SaveTo(v.screenshot, pixels, w, h); err != nil {
				return fmt.Errorf("screenshot: %w", err)
			}
			return nil
		}
		if shoot {
			w, h := v.window.DrawableSize()
			if _, err := v.capturer.SaveFramebuffer(v.ctx, w, h); err != nil {
				logger.Error("screenshot failed", zap.Error(err))
			}
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			v.window.SetTitle(fmt.Sprintf("%s - %d fps", v.cfg.Window.Title, frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// handleEvents applies this frame's input. It reports whether a screenshot
// was requested. Events after Escape are dropped.
func (v *Viewer) handleEvents(events []input.Event) (shoot bool) {
	for _, event := range events {
		switch event.Type {
		case input.EventWindowResize:
			// Event sizes are in screen coordinates; the viewport needs pixels.
			v.session.Resize(v.window.DrawableSize())
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
				return false
			case sdl.SCANCODE_SPACE:
				v.session.TogglePause()
			case sdl.SCANCODE_F12:
				shoot = true
			}
		case input.EventMouseMove:
			if v.input.Dragging() {
				v.session.Orbit(float32(event.DeltaX), float32(event.DeltaY))
			}
		case input.EventMouseWheel:
			v.session.Zoom(event.Wheel)
		}
	}
	return shoot
}

// Close releases the session, then the window and its GL context.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.session != nil {
		v.session.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
	v.assets.Close()
}
