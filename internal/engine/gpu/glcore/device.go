// Package glcore implements gpu.Device on OpenGL 4.1 core profile.
package glcore

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/dragonview/internal/engine/gpu"
	"github.com/Faultbox/dragonview/internal/logger"
)

// Device forwards gpu.Device calls to the current OpenGL context.
type Device struct{}

// Init loads OpenGL function pointers. It must run after a context is
// made current on the calling thread.
func Init() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl.Init: %w", err)
	}

	logger.Named("gl").Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)
	return &Device{}, nil
}

func (Device) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (Device) DeleteTexture(id uint32) { gl.DeleteTextures(1, &id) }
func (Device) BindTexture(target, id uint32) { gl.BindTexture(target, id) }
func (Device) ActiveTexture(unit uint32) { gl.ActiveTexture(unit) }

func (Device) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte) {
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(target, level, internalFormat, width, height, 0, format, xtype, ptr)
}

func (Device) TexParameteri(target, pname uint32, param int32) { gl.TexParameteri(target, pname, param) }
func (Device) GenerateMipmap(target uint32) { gl.GenerateMipmap(target) }

func (Device) GenFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (Device) DeleteFramebuffer(id uint32) { gl.DeleteFramebuffers(1, &id) }
func (Device) BindFramebuffer(target, id uint32) { gl.BindFramebuffer(target, id) }

func (Device) FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int32) {
	gl.FramebufferTexture2D(target, attachment, texTarget, texture, level)
}

func (Device) CheckFramebufferStatus(target uint32) uint32 { return gl.CheckFramebufferStatus(target) }
func (Device) DeleteRenderbuffer(id uint32) { gl.DeleteRenderbuffers(1, &id) }
func (Device) DrawBuffer(mode uint32) { gl.DrawBuffer(mode) }
func (Device) ReadBuffer(mode uint32) { gl.ReadBuffer(mode) }
func (Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }
func (Device) Enable(capability uint32) { gl.Enable(capability) }
func (Device) Disable(capability uint32) { gl.Disable(capability) }
func (Device) DepthFunc(fn uint32) { gl.DepthFunc(fn) }
func (Device) CullFace(mode uint32) { gl.CullFace(mode) }
func (Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }
func (Device) ClearDepth(depth float64) { gl.ClearDepth(depth) }
func (Device) Clear(mask uint32) { gl.Clear(mask) }

func (Device) CurrentViewport() gpu.Viewport {
	var vp gpu.Viewport
	gl.GetIntegerv(gl.VIEWPORT, &vp[0])
	return vp
}

func (Device) CurrentFramebuffer() uint32 { return getUint(gl.DRAW_FRAMEBUFFER_BINDING) }
func (Device) CurrentTexture2D() uint32 { return getUint(gl.TEXTURE_BINDING_2D) }

// GL_DRAW_BUFFER; the core profile headers only expose the indexed form.
const drawBufferQuery = 0x0C01

func (Device) CurrentDrawBuffer() uint32 { return getUint(drawBufferQuery) }

func getUint(pname uint32) uint32 {
	var v int32
	gl.GetIntegerv(pname, &v)
	return uint32(v)
}

func (Device) CreateShader(kind uint32) uint32 { return gl.CreateShader(kind) }

func (Device) CompileShader(id uint32, source string) (bool, string) {
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(id, 1, csource, nil)
	free()
	gl.CompileShader(id)

	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLen int32
	gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &logLen)
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetShaderInfoLog(id, logLen, nil, gl.Str(log))
	return false, strings.TrimRight(log, "\x00")
}

func (Device) DeleteShader(id uint32) { gl.DeleteShader(id) }
func (Device) CreateProgram() uint32 { return gl.CreateProgram() }
func (Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (Device) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
	return false, strings.TrimRight(log, "\x00")
}

func (Device) DeleteProgram(id uint32) { gl.DeleteProgram(id) }
func (Device) UseProgram(id uint32) { gl.UseProgram(id) }

func (Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (Device) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }
func (Device) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }
func (Device) Uniform3f(location int32, x, y, z float32) { gl.Uniform3f(location, x, y, z) }

func (Device) UniformMatrix4(location int32, m [16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (Device) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (Device) DeleteVertexArray(id uint32) { gl.DeleteVertexArrays(1, &id) }
func (Device) BindVertexArray(id uint32) { gl.BindVertexArray(id) }

func (Device) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (Device) DeleteBuffer(id uint32) { gl.DeleteBuffers(1, &id) }
func (Device) BindBuffer(target, id uint32) { gl.BindBuffer(target, id) }

func (Device) BufferFloat32(target uint32, data []float32, usage uint32) {
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, usage)
		return
	}
	gl.BufferData(target, len(data)*4, gl.Ptr(data), usage)
}

func (Device) BufferUint32(target uint32, data []uint32, usage uint32) {
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, usage)
		return
	}
	gl.BufferData(target, len(data)*4, gl.Ptr(data), usage)
}

func (Device) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (Device) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, uintptr(offset))
}

func (Device) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	gl.DrawElementsWithOffset(mode, count, xtype, uintptr(offset))
}

func (Device) ReadPixels(x, y, width, height int32) []byte {
	pixels := make([]byte, int(width)*int(height)*4)
	if len(pixels) == 0 {
		return pixels
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

var _ gpu.Device = Device{}
