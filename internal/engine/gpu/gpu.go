// Package gpu defines the graphics driver boundary used by the engine.
//
// Engine packages talk to a Device instead of calling OpenGL directly, so
// resource wrappers can be exercised without a window or a GL context.
// The enum values below match the OpenGL numeric constants and are passed
// through unchanged by the glcore implementation.
package gpu

// OpenGL enums used by the engine.
const (
	None = 0x0000

	// Bindings and targets
	Texture2D          = 0x0DE1
	Framebuffer        = 0x8D40
	ArrayBuffer        = 0x8892
	ElementArrayBuffer = 0x8893

	// Texture parameters
	TextureMinFilter     = 0x2801
	TextureMagFilter     = 0x2800
	TextureWrapS         = 0x2802
	TextureWrapT         = 0x2803
	Nearest              = 0x2600
	Linear               = 0x2601
	LinearMipmapLinear   = 0x2703
	ClampToEdge          = 0x812F
	Repeat               = 0x2901
	Texture0             = 0x84C0
	DepthComponent       = 0x1902
	DepthComponent24     = 0x81A6
	RGBA                 = 0x1908
	RGBA8                = 0x8058
	UnsignedByte         = 0x1401
	UnsignedInt          = 0x1405
	Float                = 0x1406
	DepthAttachment      = 0x8D00
	ColorAttachment0     = 0x8CE0
	FramebufferComplete  = 0x8CD5
	FramebufferUndefined = 0x8219

	// Framebuffer incomplete statuses
	FramebufferIncompleteAttachment        = 0x8CD6
	FramebufferIncompleteMissingAttachment = 0x8CD7
	FramebufferIncompleteDrawBuffer        = 0x8CDB
	FramebufferUnsupported                 = 0x8CDD

	// Draw buffers and faces
	Back  = 0x0405
	Front = 0x0404

	// Capabilities and functions
	DepthTest = 0x0B71
	CullFace  = 0x0B44
	Less      = 0x0201
	LEqual    = 0x0203

	// Clear masks
	ColorBufferBit = 0x00004000
	DepthBufferBit = 0x00000100

	// Shaders and buffers
	VertexShader   = 0x8B31
	FragmentShader = 0x8B30
	StaticDraw     = 0x88E4
	Triangles      = 0x0004
)

// Viewport is an x, y, width, height rectangle in window pixels.
type Viewport [4]int32

// Device is the set of driver primitives the engine relies on.
// Object handles are opaque non-zero integers; zero means "none".
type Device interface {
	// Textures
	GenTexture() uint32
	DeleteTexture(id uint32)
	BindTexture(target, id uint32)
	ActiveTexture(unit uint32)
	TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte)
	TexParameteri(target, pname uint32, param int32)
	GenerateMipmap(target uint32)

	// Framebuffers
	GenFramebuffer() uint32
	DeleteFramebuffer(id uint32)
	BindFramebuffer(target, id uint32)
	FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int32)
	CheckFramebufferStatus(target uint32) uint32
	DeleteRenderbuffer(id uint32)
	DrawBuffer(mode uint32)
	ReadBuffer(mode uint32)

	// Pipeline state
	Viewport(x, y, width, height int32)
	Enable(capability uint32)
	Disable(capability uint32)
	DepthFunc(fn uint32)
	CullFace(mode uint32)
	ClearColor(r, g, b, a float32)
	ClearDepth(depth float64)
	Clear(mask uint32)

	// State queries
	CurrentViewport() Viewport
	CurrentFramebuffer() uint32
	CurrentTexture2D() uint32
	CurrentDrawBuffer() uint32

	// Shaders
	CreateShader(kind uint32) uint32
	CompileShader(id uint32, source string) (ok bool, infoLog string)
	DeleteShader(id uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32) (ok bool, infoLog string)
	DeleteProgram(id uint32)
	UseProgram(id uint32)
	UniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform3f(location int32, x, y, z float32)
	UniformMatrix4(location int32, m [16]float32)

	// Geometry
	GenVertexArray() uint32
	DeleteVertexArray(id uint32)
	BindVertexArray(id uint32)
	GenBuffer() uint32
	DeleteBuffer(id uint32)
	BindBuffer(target, id uint32)
	BufferFloat32(target uint32, data []float32, usage uint32)
	BufferUint32(target uint32, data []uint32, usage uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int)
	DrawElements(mode uint32, count int32, xtype uint32, offset int)

	// ReadPixels returns the RGBA8 contents of the bound read framebuffer.
	ReadPixels(x, y, width, height int32) []byte
}
