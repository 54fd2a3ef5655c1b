// Package shader provides GLSL program compilation and uniform helpers.
package shader

import (
	"fmt"
	"io/fs"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/dragonview/internal/engine/gpu"
	"github.com/Faultbox/dragonview/internal/logger"
)

// Program is a linked shader program. It owns the GPU handle until Destroy.
type Program struct {
	ctx      *gpu.Context
	id       uint32
	name     string
	uniforms map[string]int32
}

// Load reads name.vert and name.frag from fsys and links them.
func Load(ctx *gpu.Context, fsys fs.FS, name string) (*Program, error) {
	vert, err := fs.ReadFile(fsys, name+".vert")
	if err != nil {
		return nil, fmt.Errorf("reading vertex shader: %w", err)
	}
	frag, err := fs.ReadFile(fsys, name+".frag")
	if err != nil {
		return nil, fmt.Errorf("reading fragment shader: %w", err)
	}

	p, err := Compile(ctx, name, string(vert), string(frag))
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", name, err)
	}
	return p, nil
}

// Compile compiles vertex and fragment sources and links them into a program.
func Compile(ctx *gpu.Context, name, vertexSrc, fragmentSrc string) (*Program, error) {
	vert, err := compileShader(ctx, vertexSrc, gpu.VertexShader, "vertex")
	if err != nil {
		return nil, err
	}
	defer ctx.DeleteShader(vert)

	frag, err := compileShader(ctx, fragmentSrc, gpu.FragmentShader, "fragment")
	if err != nil {
		return nil, err
	}
	defer ctx.DeleteShader(frag)

	id := ctx.CreateProgram()
	ctx.AttachShader(id, vert)
	ctx.AttachShader(id, frag)
	if ok, log := ctx.LinkProgram(id); !ok {
		ctx.DeleteProgram(id)
		return nil, fmt.Errorf("link: %s", log)
	}

	logger.Debug("shader program linked", zap.String("name", name), zap.Uint32("program", id))
	return &Program{
		ctx:      ctx,
		id:       id,
		name:     name,
		uniforms: make(map[string]int32),
	}, nil
}

func compileShader(ctx *gpu.Context, source string, kind uint32, stage string) (uint32, error) {
	id := ctx.CreateShader(kind)
	if ok, log := ctx.CompileShader(id, source); !ok {
		ctx.DeleteShader(id)
		return 0, fmt.Errorf("%s shader: %s", stage, log)
	}
	return id, nil
}

// ID returns the program handle.
func (p *Program) ID() uint32 {
	return p.id
}

// Use makes this the active program.
func (p *Program) Use() {
	p.ctx.UseProgram(p.id)
}

// Uniform returns the cached location of a uniform, -1 if inactive.
func (p *Program) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := p.ctx.UniformLocation(p.id, name)
	if loc < 0 {
		logger.Debug("inactive uniform", zap.String("program", p.name), zap.String("uniform", name))
	}
	p.uniforms[name] = loc
	return loc
}

func (p *Program) SetInt(name string, v int32) {
	p.ctx.Uniform1i(p.Uniform(name), v)
}

func (p *Program) SetFloat(name string, v float32) {
	p.ctx.Uniform1f(p.Uniform(name), v)
}

func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	p.ctx.Uniform3f(p.Uniform(name), v[0], v[1], v[2])
}

func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	p.ctx.UniformMatrix4(p.Uniform(name), m)
}

// Destroy deletes the program. Safe to call more than once.
func (p *Program) Destroy() {
	if p.id != 0 {
		p.ctx.DeleteProgram(p.id)
		p.id = 0
	}
}
