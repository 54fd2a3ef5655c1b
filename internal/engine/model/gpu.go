package model

import (
	"go.uber.org/zap"

	"github.com/Faultbox/dragonview/internal/engine/gpu"
	"github.com/Faultbox/dragonview/internal/logger"
)

// Attribute locations bound by the shaders.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribTexCoord = 2
)

// GPUMesh is a mesh uploaded into a vertex array with vertex and index buffers.
type GPUMesh struct {
	ctx        *gpu.Context
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

// Upload copies the mesh into GPU buffers.
func Upload(ctx *gpu.Context, m *Mesh) *GPUMesh {
	g := &GPUMesh{
		ctx:        ctx,
		indexCount: int32(len(m.Indices)),
	}

	g.vao = ctx.GenVertexArray()
	ctx.BindVertexArray(g.vao)

	g.vbo = ctx.GenBuffer()
	ctx.BindBuffer(gpu.ArrayBuffer, g.vbo)
	ctx.BufferFloat32(gpu.ArrayBuffer, m.Interleaved(), gpu.StaticDraw)

	stride := int32(vertexFloats * 4)
	ctx.VertexAttribPointer(AttribPosition, 3, gpu.Float, false, stride, 0)
	ctx.EnableVertexAttribArray(AttribPosition)
	ctx.VertexAttribPointer(AttribNormal, 3, gpu.Float, false, stride, 3*4)
	ctx.EnableVertexAttribArray(AttribNormal)
	ctx.VertexAttribPointer(AttribTexCoord, 2, gpu.Float, false, stride, 6*4)
	ctx.EnableVertexAttribArray(AttribTexCoord)

	g.ebo = ctx.GenBuffer()
	ctx.BindBuffer(gpu.ElementArrayBuffer, g.ebo)
	ctx.BufferUint32(gpu.ElementArrayBuffer, m.Indices, gpu.StaticDraw)

	ctx.BindVertexArray(0)
	ctx.BindBuffer(gpu.ArrayBuffer, 0)

	logger.Debug("mesh uploaded",
		zap.Uint32("vao", g.vao),
		zap.Int32("indices", g.indexCount),
	)
	return g
}

// Draw issues one indexed draw call for the whole mesh.
func (g *GPUMesh) Draw() {
	g.ctx.BindVertexArray(g.vao)
	g.ctx.DrawElements(gpu.Triangles, g.indexCount, gpu.UnsignedInt, 0)
	g.ctx.BindVertexArray(0)
}

// IndexCount returns the number of indices drawn.
func (g *GPUMesh) IndexCount() int32 {
	return g.indexCount
}

// Destroy releases the vertex array and buffers. Safe to call more than once.
func (g *GPUMesh) Destroy() {
	if g.vao != 0 {
		g.ctx.DeleteVertexArray(g.vao)
		g.vao = 0
	}
	if g.vbo != 0 {
		g.ctx.DeleteBuffer(g.vbo)
		g.vbo = 0
	}
	if g.ebo != 0 {
		g.ctx.DeleteBuffer(g.ebo)
		g.ebo = 0
	}
}
