// Package demo renders a textured, shadowed model that spins in place.
// A Session owns every GPU resource the scene needs and is driven one
// frame at a time by the caller's loop.
package demo

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/dragonview/internal/assets"
	"github.com/Faultbox/dragonview/internal/config"
	"github.com/Faultbox/dragonview/internal/engine/camera"
	"github.com/Faultbox/dragonview/internal/engine/gpu"
	"github.com/Faultbox/dragonview/internal/engine/lighting"
	"github.com/Faultbox/dragonview/internal/engine/model"
	"github.com/Faultbox/dragonview/internal/engine/rendertarget"
	"github.com/Faultbox/dragonview/internal/engine/shader"
	"github.com/Faultbox/dragonview/internal/engine/shadow"
	"github.com/Faultbox/dragonview/internal/engine/texture"
	"github.com/Faultbox/dragonview/internal/logger"
)

// Texture units used by the phong program.
const (
	unitDiffuse  = 0
	unitSpecular = 1
	unitShadow   = 2
)

// ErrClosed is returned by Frame after Close.
var ErrClosed = errors.New("demo: session closed")

// Session is the render state of the viewer.
type Session struct {
	cfg *config.Config
	ctx *gpu.Context

	phong    *shader.Program
	depth    *shader.Program
	diffuse  *texture.Texture
	specular *texture.Texture
	mesh     *model.GPUMesh
	bounds   shadow.AABB
	shadows  *rendertarget.Depth

	camera *camera.OrbitCamera

	width, height int32
	angle         float32 // degrees
	paused        bool
	closed        bool
}

// New imports the configured model through am and builds the session.
func New(cfg *config.Config, ctx *gpu.Context, am *assets.Manager, width, height int) (*Session, error) {
	path, err := am.Resolve(cfg.Assets.Model)
	if err != nil {
		return nil, fmt.Errorf("locating model: %w", err)
	}
	m, err := model.Import(path, cfg.Assets.Normalize)
	if err != nil {
		return nil, err
	}
	return NewWithMesh(cfg, ctx, am, m, width, height)
}

// NewWithMesh builds the session around an already imported mesh. On error
// everything created so far is released.
func NewWithMesh(cfg *config.Config, ctx *gpu.Context, am *assets.Manager, m *model.Mesh, width, height int) (*Session, error) {
	s := &Session{
		cfg:    cfg,
		ctx:    ctx,
		bounds: shadow.AABB{Min: m.Bounds.Min, Max: m.Bounds.Max},
		camera: camera.NewOrbitCamera(),
	}
	if err := s.load(am, m); err != nil {
		s.Close()
		return nil, err
	}

	s.camera.FovY = cfg.Render.FovY
	s.camera.Near = cfg.Render.Near
	s.camera.Far = cfg.Render.Far
	s.camera.LookFrom(mgl32.Vec3(cfg.Camera.Eye), mgl32.Vec3(cfg.Camera.Target))

	s.Resize(width, height)

	logger.Info("session ready",
		zap.Int("faces", m.Faces()),
		zap.Bool("shadows", s.shadows != nil),
	)
	return s, nil
}

func (s *Session) load(am *assets.Manager, m *model.Mesh) error {
	var err error
	if s.phong, err = shader.Load(s.ctx, am, "shaders/phong"); err != nil {
		return err
	}
	if s.depth, err = shader.Load(s.ctx, am, "shaders/depth"); err != nil {
		return err
	}

	s.diffuse = texture.LoadOrWhite(s.ctx, am, s.cfg.Assets.DiffuseMap)
	s.specular = texture.LoadOrWhite(s.ctx, am, s.cfg.Assets.SpecularMap)
	s.mesh = model.Upload(s.ctx, m)

	if s.cfg.Render.Shadows {
		size := int32(s.cfg.Render.ShadowMapSize)
		if s.shadows, err = rendertarget.NewDepth(s.ctx, size, size); err != nil {
			return fmt.Errorf("creating shadow map: %w", err)
		}
	}
	return nil
}

// Frame advances the animation by dt seconds and renders one frame into
// the currently bound framebuffer.
func (s *Session) Frame(dt float32) error {
	if s.closed {
		return ErrClosed
	}
	if !s.paused {
		s.angle = float32(math.Mod(float64(s.angle+s.cfg.Render.DegreesPerSecond*dt), 360))
	}

	modelMat := s.ModelMatrix()
	lightDir := lighting.SunDirection(s.cfg.Light.Azimuth, s.cfg.Light.Elevation)
	lightSpace := shadow.DirectionalLightMatrix(lightDir, s.bounds.Transform(modelMat))

	if s.shadows != nil {
		if err := s.depthPass(modelMat, lightSpace); err != nil {
			return err
		}
	}
	s.mainPass(modelMat, lightSpace, lightDir)
	return nil
}

func (s *Session) depthPass(modelMat, lightSpace mgl32.Mat4) error {
	if err := s.shadows.Bind(); err != nil {
		return fmt.Errorf("shadow pass: %w", err)
	}

	s.ctx.Enable(gpu.DepthTest)
	s.ctx.DepthFunc(gpu.Less)
	s.ctx.ClearDepth(1)
	s.ctx.Clear(gpu.DepthBufferBit)

	// Front-face culling keeps lit surfaces out of the map and reduces acne.
	s.ctx.Enable(gpu.CullFace)
	s.ctx.CullFace(gpu.Front)

	s.depth.Use()
	s.depth.SetMat4("lightSpace", lightSpace)
	s.depth.SetMat4("model", modelMat)
	s.mesh.Draw()

	s.ctx.CullFace(gpu.Back)

	if err := s.shadows.Unbind(); err != nil {
		return fmt.Errorf("shadow pass: %w", err)
	}
	return nil
}

func (s *Session) mainPass(modelMat, lightSpace mgl32.Mat4, lightDir mgl32.Vec3) {
	c := s.cfg.Render.ClearColor
	s.ctx.ClearColor(c[0], c[1], c[2], 1)
	s.ctx.ClearDepth(1)
	s.ctx.Clear(gpu.ColorBufferBit | gpu.DepthBufferBit)
	s.ctx.Enable(gpu.DepthTest)
	s.ctx.DepthFunc(gpu.LEqual)
	s.ctx.Enable(gpu.CullFace)
	s.ctx.CullFace(gpu.Back)

	view := s.camera.ViewMatrix()

	p := s.phong
	p.Use()
	p.SetMat4("model", modelMat)
	p.SetMat4("view", view)
	p.SetMat4("projection", s.camera.Projection(s.Aspect()))
	p.SetMat4("lightSpace", lightSpace)
	p.SetVec3("lightDir", lighting.EyeSpace(lightDir, view))

	mat := s.cfg.Material
	p.SetVec3("Kd", mgl32.Vec3(mat.Kd))
	p.SetVec3("Ks", mgl32.Vec3(mat.Ks))
	p.SetVec3("Ka", mgl32.Vec3(mat.Ka))
	alpha := mat.Alpha
	if alpha <= 0 {
		alpha = 1
	}
	p.SetFloat("alpha", alpha)

	p.SetInt("diffuseMap", unitDiffuse)
	s.diffuse.Bind(unitDiffuse)
	p.SetInt("specularMap", unitSpecular)
	s.specular.Bind(unitSpecular)

	p.SetInt("shadowMap", unitShadow)
	p.SetFloat("shadowBias", s.cfg.Render.ShadowBias)
	s.ctx.ActiveTexture(gpu.Texture0 + unitShadow)
	if s.shadows != nil {
		p.SetInt("shadowsEnabled", 1)
		s.ctx.BindTexture(gpu.Texture2D, s.shadows.Texture())
	} else {
		p.SetInt("shadowsEnabled", 0)
		s.ctx.BindTexture(gpu.Texture2D, 0)
	}
	s.ctx.ActiveTexture(gpu.Texture0)

	s.mesh.Draw()
}

// ModelMatrix returns the current model rotation about the Y axis.
func (s *Session) ModelMatrix() mgl32.Mat4 {
	return mgl32.HomogRotate3DY(mgl32.DegToRad(s.angle))
}

// Resize updates the viewport and projection aspect. Non-positive sizes,
// as reported for minimized windows, are ignored.
func (s *Session) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = int32(width), int32(height)
	s.ctx.Viewport(0, 0, s.width, s.height)
}

// Aspect returns the viewport aspect ratio.
func (s *Session) Aspect() float32 {
	if s.height == 0 {
		return 1
	}
	return float32(s.width) / float32(s.height)
}

// Angle returns the model rotation in degrees.
func (s *Session) Angle() float32 {
	return s.angle
}

// TogglePause stops or resumes the rotation.
func (s *Session) TogglePause() {
	s.paused = !s.paused
	logger.Debug("rotation toggled", zap.Bool("paused", s.paused))
}

// Paused reports whether the rotation is stopped.
func (s *Session) Paused() bool {
	return s.paused
}

// Orbit rotates the camera by a mouse drag delta in pixels.
func (s *Session) Orbit(dx, dy float32) {
	s.camera.HandleDrag(dx, dy)
}

// Zoom moves the camera by wheel steps.
func (s *Session) Zoom(steps float32) {
	s.camera.HandleZoom(steps)
}

// Camera exposes the orbit camera.
func (s *Session) Camera() *camera.OrbitCamera {
	return s.camera
}

// Close releases every GPU resource. Safe to call more than once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true

	if s.shadows != nil {
		s.shadows.Destroy()
	}
	if s.mesh != nil {
		s.mesh.Destroy()
	}
	if s.specular != nil {
		s.specular.Destroy()
	}
	if s.diffuse != nil {
		s.diffuse.Destroy()
	}
	if s.depth != nil {
		s.depth.Destroy()
	}
	if s.phong != nil {
		s.phong.Destroy()
	}
	logger.Debug("session closed")
}
