// Package gputest provides an in-memory gpu.Device for tests.
package gputest

import (
	"sort"

	"github.com/Faultbox/dragonview/internal/engine/gpu"
)

// TexImage records the last storage allocation of a texture.
type TexImage struct {
	InternalFormat int32
	Width, Height  int32
	Format, Type   uint32
	Pixels         int
}

// DrawCall records one DrawElements call together with the state it ran under.
type DrawCall struct {
	Program     uint32
	VertexArray uint32
	Framebuffer uint32
	Viewport    gpu.Viewport
	Count       int32
}

// Device is a recording fake of gpu.Device. Handles are allocated from a
// single counter so every object gets a distinct non-zero id.
type Device struct {
	// FramebufferStatus is returned by CheckFramebufferStatus when non-zero.
	FramebufferStatus uint32
	// CompileError makes CompileShader fail with this log when non-empty.
	CompileError string
	// LinkError makes LinkProgram fail with this log when non-empty.
	LinkError string
	// Pixel fills every byte returned by ReadPixels.
	Pixel byte

	Calls  []string
	counts map[string]int
	nextID uint32

	Textures      map[uint32]bool
	Framebuffers  map[uint32]bool
	Renderbuffers map[uint32]bool
	Shaders       map[uint32]bool
	Programs      map[uint32]bool
	Buffers       map[uint32]bool
	VertexArrays  map[uint32]bool

	TexImages   map[uint32]TexImage
	TexParams   map[uint32]map[uint32]int32
	Attachments map[uint32]map[uint32]uint32
	BufferSizes map[uint32]int
	Uniforms    map[int32]any
	Enabled     map[uint32]bool
	Draws       []DrawCall

	framebuffer uint32
	viewport    gpu.Viewport
	drawBuffers map[uint32]uint32
	activeUnit  uint32
	unitTexture map[uint32]uint32
	program     uint32
	vertexArray uint32
	bound       map[uint32]uint32
	uniformLocs map[uint32]map[string]int32
	nextUniform int32
}

// New returns a fake device with a 800x600 default viewport and the
// default framebuffer drawing to the back buffer.
func New() *Device {
	return &Device{
		counts:        map[string]int{},
		Textures:      map[uint32]bool{},
		Framebuffers:  map[uint32]bool{},
		Renderbuffers: map[uint32]bool{},
		Shaders:       map[uint32]bool{},
		Programs:      map[uint32]bool{},
		Buffers:       map[uint32]bool{},
		VertexArrays:  map[uint32]bool{},
		TexImages:     map[uint32]TexImage{},
		TexParams:     map[uint32]map[uint32]int32{},
		Attachments:   map[uint32]map[uint32]uint32{},
		BufferSizes:   map[uint32]int{},
		Uniforms:      map[int32]any{},
		Enabled:       map[uint32]bool{},
		viewport:      gpu.Viewport{0, 0, 800, 600},
		drawBuffers:   map[uint32]uint32{0: gpu.Back},
		unitTexture:   map[uint32]uint32{},
		bound:         map[uint32]uint32{},
		uniformLocs:   map[uint32]map[string]int32{},
	}
}

func (d *Device) record(name string) {
	d.Calls = append(d.Calls, name)
	d.counts[name]++
}

func (d *Device) alloc(name string, live map[uint32]bool) uint32 {
	d.record(name)
	d.nextID++
	live[d.nextID] = true
	return d.nextID
}

func (d *Device) release(name string, live map[uint32]bool, id uint32) {
	d.record(name)
	delete(live, id)
}

// Count returns how many times the named primitive was called.
func (d *Device) Count(name string) int {
	return d.counts[name]
}

// Live returns the number of objects not yet released.
func (d *Device) Live() int {
	return len(d.Textures) + len(d.Framebuffers) + len(d.Renderbuffers) +
		len(d.Shaders) + len(d.Programs) + len(d.Buffers) + len(d.VertexArrays)
}

// ResetCalls clears the call log and counters but keeps object state.
func (d *Device) ResetCalls() {
	d.Calls = nil
	d.counts = map[string]int{}
}

// BoundTexture returns the texture bound to the given unit (0-based).
func (d *Device) BoundTexture(unit uint32) uint32 {
	return d.unitTexture[unit]
}

// BoundProgram returns the program in use.
func (d *Device) BoundProgram() uint32 {
	return d.program
}

// DrawBufferOf returns the draw buffer recorded for a framebuffer.
func (d *Device) DrawBufferOf(fbo uint32) uint32 {
	return d.drawBuffers[fbo]
}

// UniformNames returns the uniform names looked up on a program, sorted.
func (d *Device) UniformNames(program uint32) []string {
	var names []string
	for n := range d.uniformLocs[program] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// UniformValue returns the last value written to a named uniform.
func (d *Device) UniformValue(program uint32, name string) (any, bool) {
	loc, ok := d.uniformLocs[program][name]
	if !ok {
		return nil, false
	}
	v, ok := d.Uniforms[loc]
	return v, ok
}

func (d *Device) GenTexture() uint32 { return d.alloc("GenTexture", d.Textures) }

func (d *Device) DeleteTexture(id uint32) { d.release("DeleteTexture", d.Textures, id) }

func (d *Device) BindTexture(target, id uint32) {
	d.record("BindTexture")
	d.unitTexture[d.activeUnit] = id
}

func (d *Device) ActiveTexture(unit uint32) {
	d.record("ActiveTexture")
	d.activeUnit = unit - gpu.Texture0
}

func (d *Device) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte) {
	d.record("TexImage2D")
	d.TexImages[d.unitTexture[d.activeUnit]] = TexImage{
		InternalFormat: internalFormat,
		Width:          width,
		Height:         height,
		Format:         format,
		Type:           xtype,
		Pixels:         len(pixels),
	}
}

func (d *Device) TexParameteri(target, pname uint32, param int32) {
	d.record("TexParameteri")
	tex := d.unitTexture[d.activeUnit]
	if d.TexParams[tex] == nil {
		d.TexParams[tex] = map[uint32]int32{}
	}
	d.TexParams[tex][pname] = param
}

func (d *Device) GenerateMipmap(target uint32) { d.record("GenerateMipmap") }

func (d *Device) GenFramebuffer() uint32 {
	id := d.alloc("GenFramebuffer", d.Framebuffers)
	d.drawBuffers[id] = gpu.ColorAttachment0
	return id
}

func (d *Device) DeleteFramebuffer(id uint32) {
	d.release("DeleteFramebuffer", d.Framebuffers, id)
	if d.framebuffer == id {
		d.framebuffer = 0
	}
}

func (d *Device) BindFramebuffer(target, id uint32) {
	d.record("BindFramebuffer")
	d.framebuffer = id
}

func (d *Device) FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int32) {
	d.record("FramebufferTexture2D")
	if d.Attachments[d.framebuffer] == nil {
		d.Attachments[d.framebuffer] = map[uint32]uint32{}
	}
	d.Attachments[d.framebuffer][attachment] = texture
}

func (d *Device) CheckFramebufferStatus(target uint32) uint32 {
	d.record("CheckFramebufferStatus")
	if d.FramebufferStatus != 0 {
		return d.FramebufferStatus
	}
	return gpu.FramebufferComplete
}

func (d *Device) DeleteRenderbuffer(id uint32) { d.release("DeleteRenderbuffer", d.Renderbuffers, id) }

func (d *Device) DrawBuffer(mode uint32) {
	d.record("DrawBuffer")
	d.drawBuffers[d.framebuffer] = mode
}

func (d *Device) ReadBuffer(mode uint32) { d.record("ReadBuffer") }

func (d *Device) Viewport(x, y, width, height int32) {
	d.record("Viewport")
	d.viewport = gpu.Viewport{x, y, width, height}
}

func (d *Device) Enable(capability uint32) {
	d.record("Enable")
	d.Enabled[capability] = true
}

func (d *Device) Disable(capability uint32) {
	d.record("Disable")
	d.Enabled[capability] = false
}

func (d *Device) DepthFunc(fn uint32) { d.record("DepthFunc") }
func (d *Device) CullFace(mode uint32) { d.record("CullFace") }
func (d *Device) ClearColor(r, g, b, a float32) { d.record("ClearColor") }
func (d *Device) ClearDepth(depth float64) { d.record("ClearDepth") }
func (d *Device) Clear(mask uint32) { d.record("Clear") }
func (d *Device) CurrentViewport() gpu.Viewport { return d.viewport }
func (d *Device) CurrentFramebuffer() uint32 { return d.framebuffer }
func (d *Device) CurrentTexture2D() uint32 { return d.unitTexture[d.activeUnit] }
func (d *Device) CurrentDrawBuffer() uint32 { return d.drawBuffers[d.framebuffer] }
func (d *Device) CreateShader(kind uint32) uint32 { return d.alloc("CreateShader", d.Shaders) }

func (d *Device) CompileShader(id uint32, source string) (bool, string) {
	d.record("CompileShader")
	if d.CompileError != "" {
		return false, d.CompileError
	}
	return true, ""
}

func (d *Device) DeleteShader(id uint32) { d.release("DeleteShader", d.Shaders, id) }
func (d *Device) CreateProgram() uint32 { return d.alloc("CreateProgram", d.Programs) }
func (d *Device) AttachShader(p, s uint32) { d.record("AttachShader") }

func (d *Device) LinkProgram(program uint32) (bool, string) {
	d.record("LinkProgram")
	if d.LinkError != "" {
		return false, d.LinkError
	}
	return true, ""
}

func (d *Device) DeleteProgram(id uint32) {
	d.release("DeleteProgram", d.Programs, id)
	delete(d.uniformLocs, id)
}

func (d *Device) UseProgram(id uint32) {
	d.record("UseProgram")
	d.program = id
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	d.record("UniformLocation")
	if d.uniformLocs[program] == nil {
		d.uniformLocs[program] = map[string]int32{}
	}
	if loc, ok := d.uniformLocs[program][name]; ok {
		return loc
	}
	loc := d.nextUniform
	d.nextUniform++
	d.uniformLocs[program][name] = loc
	return loc
}

func (d *Device) Uniform1i(location int32, v int32) {
	d.record("Uniform1i")
	d.Uniforms[location] = v
}

func (d *Device) Uniform1f(location int32, v float32) {
	d.record("Uniform1f")
	d.Uniforms[location] = v
}

func (d *Device) Uniform3f(location int32, x, y, z float32) {
	d.record("Uniform3f")
	d.Uniforms[location] = [3]float32{x, y, z}
}

func (d *Device) UniformMatrix4(location int32, m [16]float32) {
	d.record("UniformMatrix4")
	d.Uniforms[location] = m
}

func (d *Device) GenVertexArray() uint32 { return d.alloc("GenVertexArray", d.VertexArrays) }

func (d *Device) DeleteVertexArray(id uint32) { d.release("DeleteVertexArray", d.VertexArrays, id) }

func (d *Device) BindVertexArray(id uint32) {
	d.record("BindVertexArray")
	d.vertexArray = id
}

func (d *Device) GenBuffer() uint32 { return d.alloc("GenBuffer", d.Buffers) }

func (d *Device) DeleteBuffer(id uint32) { d.release("DeleteBuffer", d.Buffers, id) }

func (d *Device) BindBuffer(target, id uint32) {
	d.record("BindBuffer")
	d.bound[target] = id
}

func (d *Device) BufferFloat32(target uint32, data []float32, usage uint32) {
	d.record("BufferFloat32")
	d.BufferSizes[d.bound[target]] = len(data) * 4
}

func (d *Device) BufferUint32(target uint32, data []uint32, usage uint32) {
	d.record("BufferUint32")
	d.BufferSizes[d.bound[target]] = len(data) * 4
}

func (d *Device) EnableVertexAttribArray(index uint32) { d.record("EnableVertexAttribArray") }

func (d *Device) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	d.record("VertexAttribPointer")
}

func (d *Device) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	d.record("DrawElements")
	d.Draws = append(d.Draws, DrawCall{
		Program:     d.program,
		VertexArray: d.vertexArray,
		Framebuffer: d.framebuffer,
		Viewport:    d.viewport,
		Count:       count,
	})
}

func (d *Device) ReadPixels(x, y, width, height int32) []byte {
	d.record("ReadPixels")
	px := make([]byte, int(width)*int(height)*4)
	for i := range px {
		px[i] = d.Pixel
	}
	return px
}

var _ gpu.Device = (*Device)(nil)
