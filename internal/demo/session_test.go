package demo

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/fogleman/fauxgl"

	"github.com/Faultbox/dragonview/internal/assets"
	"github.com/Faultbox/dragonview/internal/config"
	"github.com/Faultbox/dragonview/internal/engine/gpu"
	"github.com/Faultbox/dragonview/internal/engine/gpu/gputest"
	"github.com/Faultbox/dragonview/internal/engine/model"
	"github.com/Faultbox/dragonview/internal/engine/rendertarget"
)

func testMesh(t *testing.T) *model.Mesh {
	t.Helper()
	m, err := model.Build([]*fauxgl.Triangle{{
		V1: fauxgl.Vertex{Position: fauxgl.Vector{X: -1, Y: 0, Z: 0}},
		V2: fauxgl.Vertex{Position: fauxgl.Vector{X: 1, Y: 0, Z: 0}},
		V3: fauxgl.Vertex{Position: fauxgl.Vector{X: 0, Y: 1, Z: 0}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Render.ShadowMapSize = 256
	cfg.Assets.DiffuseMap = ""
	cfg.Assets.SpecularMap = ""
	return cfg
}

func newSession(t *testing.T, cfg *config.Config) (*Session, *gputest.Device, *gpu.Context) {
	t.Helper()
	dev := gputest.New()
	ctx := gpu.NewContext(dev)
	s, err := NewWithMesh(cfg, ctx, assets.NewManager(), testMesh(t), 640, 480)
	if err != nil {
		t.Fatalf("NewWithMesh: %v", err)
	}
	t.Cleanup(s.Close)
	return s, dev, ctx
}

func TestFrameRendersDepthThenMainPass(t *testing.T) {
	s, dev, ctx := newSession(t, testConfig())

	if err := s.Frame(1.0 / 60); err != nil {
		t.Fatalf("Frame: %v", err)
	}

	if len(dev.Draws) != 2 {
		t.Fatalf("draws = %d, want depth pass and main pass", len(dev.Draws))
	}

	shadowPass, mainPass := dev.Draws[0], dev.Draws[1]
	if shadowPass.Framebuffer == 0 || shadowPass.Program != s.depth.ID() {
		t.Errorf("depth pass = %+v", shadowPass)
	}
	if shadowPass.Viewport != (gpu.Viewport{0, 0, 256, 256}) {
		t.Errorf("depth pass viewport = %v", shadowPass.Viewport)
	}
	if mainPass.Framebuffer != 0 || mainPass.Program != s.phong.ID() {
		t.Errorf("main pass = %+v", mainPass)
	}
	if mainPass.Viewport != (gpu.Viewport{0, 0, 640, 480}) {
		t.Errorf("main pass viewport = %v", mainPass.Viewport)
	}

	if ctx.Depth() != 0 {
		t.Errorf("state stack depth = %d after frame", ctx.Depth())
	}
	if dev.DrawBufferOf(0) != gpu.Back {
		t.Error("default framebuffer lost its draw buffer")
	}
	if s.shadows.State() != rendertarget.Unbound {
		t.Errorf("shadow target state = %v", s.shadows.State())
	}
}

func TestFrameUniforms(t *testing.T) {
	cfg := testConfig()
	cfg.Material.Alpha = 0
	s, dev, _ := newSession(t, cfg)

	if err := s.Frame(0); err != nil {
		t.Fatal(err)
	}

	prog := s.phong.ID()
	want := map[string]any{
		"diffuseMap":     int32(unitDiffuse),
		"specularMap":    int32(unitSpecular),
		"shadowMap":      int32(unitShadow),
		"shadowsEnabled": int32(1),
		"alpha":          float32(1),
		"Kd":             cfg.Material.Kd,
		"Ks":             cfg.Material.Ks,
		"Ka":             cfg.Material.Ka,
	}
	for name, w := range want {
		got, ok := dev.UniformValue(prog, name)
		if !ok {
			t.Errorf("uniform %s never set", name)
			continue
		}
		if got != w {
			t.Errorf("uniform %s = %v, want %v", name, got, w)
		}
	}
	for _, name := range []string{"model", "view", "projection", "lightSpace", "lightDir"} {
		if _, ok := dev.UniformValue(prog, name); !ok {
			t.Errorf("uniform %s never set", name)
		}
	}

	if got := dev.BoundTexture(unitShadow); got != s.shadows.Texture() {
		t.Errorf("unit %d holds texture %d, want shadow map %d", unitShadow, got, s.shadows.Texture())
	}
	if got := dev.BoundTexture(unitDiffuse); got != s.diffuse.ID() {
		t.Errorf("unit %d holds texture %d, want diffuse %d", unitDiffuse, got, s.diffuse.ID())
	}
}

func TestFrameWithoutShadows(t *testing.T) {
	cfg := testConfig()
	cfg.Render.Shadows = false
	s, dev, _ := newSession(t, cfg)

	if err := s.Frame(0); err != nil {
		t.Fatal(err)
	}
	if len(dev.Draws) != 1 || dev.Draws[0].Framebuffer != 0 {
		t.Errorf("draws = %+v, want only the main pass", dev.Draws)
	}
	if v, _ := dev.UniformValue(s.phong.ID(), "shadowsEnabled"); v != int32(0) {
		t.Errorf("shadowsEnabled = %v", v)
	}
	if len(dev.Framebuffers) != 0 {
		t.Errorf("%d framebuffers created with shadows off", len(dev.Framebuffers))
	}
}

func TestRotation(t *testing.T) {
	s, _, _ := newSession(t, testConfig())

	if err := s.Frame(0.5); err != nil {
		t.Fatal(err)
	}
	if s.Angle() != 10 {
		t.Errorf("angle = %f, want 10 after half a second at 20 deg/s", s.Angle())
	}

	s.TogglePause()
	if err := s.Frame(5); err != nil {
		t.Fatal(err)
	}
	if !s.Paused() || s.Angle() != 10 {
		t.Errorf("angle = %f while paused", s.Angle())
	}

	s.TogglePause()
	if err := s.Frame(18.5); err != nil {
		t.Fatal(err)
	}
	if s.Angle() != 20 {
		t.Errorf("angle = %f, want wrap to 20", s.Angle())
	}
}

func TestIncompleteShadowMap(t *testing.T) {
	dev := gputest.New()
	dev.FramebufferStatus = gpu.FramebufferUnsupported

	_, err := NewWithMesh(testConfig(), gpu.NewContext(dev), assets.NewManager(), testMesh(t), 640, 480)

	var incomplete *rendertarget.IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteError, got %v", err)
	}
	if incomplete.Status != gpu.FramebufferUnsupported {
		t.Errorf("status = %#x", incomplete.Status)
	}
	if dev.Count("DrawElements") != 0 {
		t.Error("nothing should be drawn")
	}
	if dev.Live() != 0 {
		t.Errorf("%d objects leaked after failed construction", dev.Live())
	}
}

func TestShaderFailure(t *testing.T) {
	dev := gputest.New()
	dev.CompileError = "0:1: syntax error"

	_, err := NewWithMesh(testConfig(), gpu.NewContext(dev), assets.NewManager(), testMesh(t), 640, 480)
	if err == nil {
		t.Fatal("expected shader error")
	}
	if dev.Live() != 0 {
		t.Errorf("%d objects leaked after failed construction", dev.Live())
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	dev := gputest.New()
	s, err := NewWithMesh(testConfig(), gpu.NewContext(dev), assets.NewManager(), testMesh(t), 640, 480)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Frame(0.016); err != nil {
			t.Fatal(err)
		}
	}

	s.Close()
	s.Close()

	if dev.Live() != 0 {
		t.Errorf("%d objects leaked", dev.Live())
	}
	if dev.Count("DeleteFramebuffer") != 1 {
		t.Errorf("DeleteFramebuffer called %d times", dev.Count("DeleteFramebuffer"))
	}
	if err := s.Frame(0.016); !errors.Is(err, ErrClosed) {
		t.Errorf("Frame after Close = %v, want ErrClosed", err)
	}
}

func TestResize(t *testing.T) {
	s, dev, ctx := newSession(t, testConfig())

	s.Resize(1920, 1080)
	if ctx.CurrentViewport() != (gpu.Viewport{0, 0, 1920, 1080}) {
		t.Errorf("viewport = %v", ctx.CurrentViewport())
	}
	if s.Aspect() != float32(1920)/1080 {
		t.Errorf("aspect = %f", s.Aspect())
	}

	// Minimized windows report zero sizes
	s.Resize(0, 0)
	if s.Aspect() != float32(1920)/1080 {
		t.Errorf("aspect changed to %f on zero resize", s.Aspect())
	}

	if err := s.Frame(0); err != nil {
		t.Fatal(err)
	}
	if last := dev.Draws[len(dev.Draws)-1]; last.Viewport != (gpu.Viewport{0, 0, 1920, 1080}) {
		t.Errorf("main pass viewport = %v", last.Viewport)
	}
}

func TestCameraControls(t *testing.T) {
	s, _, _ := newSession(t, testConfig())
	c := s.Camera()

	eye := c.Position()
	if eye.Sub([3]float32{0, 2, -12}).Len() > 1e-4 {
		t.Errorf("initial eye = %v", eye)
	}

	d := c.Distance
	s.Zoom(1)
	if c.Distance >= d {
		t.Errorf("zoom in did not move closer: %f -> %f", d, c.Distance)
	}

	yaw := c.Yaw
	s.Orbit(50, 0)
	if c.Yaw == yaw {
		t.Error("orbit did not change yaw")
	}
}

func TestNewImportsModelAndTextures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models", "tri.obj"), []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"))

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	f := filepath.Join(dir, "models", "diffuse.png")
	writeFile(t, f, nil)
	out, err := os.Create(f)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(out, img); err != nil {
		t.Fatal(err)
	}
	out.Close()

	am := assets.NewManager()
	if err := am.AddDir(dir); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Assets.Model = "models/tri.obj"
	cfg.Assets.DiffuseMap = "models/diffuse.png"

	dev := gputest.New()
	s, err := New(cfg, gpu.NewContext(dev), am, 640, 480)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if tex := dev.TexImages[s.diffuse.ID()]; tex.Width != 2 || tex.Height != 2 {
		t.Errorf("diffuse texture = %+v, want 2x2", tex)
	}
	if s.mesh.IndexCount() != 3 {
		t.Errorf("index count = %d", s.mesh.IndexCount())
	}
}

func TestNewMissingModel(t *testing.T) {
	cfg := testConfig()
	cfg.Assets.Model = "models/nope.obj"

	dev := gputest.New()
	_, err := New(cfg, gpu.NewContext(dev), assets.NewManager(), 640, 480)
	if !errors.Is(err, assets.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if dev.Live() != 0 {
		t.Errorf("%d objects created for a missing model", dev.Live())
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}
