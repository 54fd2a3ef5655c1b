// Package model builds indexed triangle meshes from imported assets and
// uploads them to the GPU.
package model

import "github.com/go-gl/mathgl/mgl32"

// Vertex represents a mesh vertex with position, normal, and texture coordinates.
// The layout matches the interleaved vertex buffer.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// vertexFloats is the number of float32 values per interleaved vertex.
const vertexFloats = 8

// Mesh holds the complete mesh data ready for GPU upload.
// Indices is a flat triangle list: three entries per face.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Faces returns the number of triangles.
func (m *Mesh) Faces() int {
	return len(m.Indices) / 3
}

// Interleaved returns the vertex data as a flat float slice.
func (m *Mesh) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Vertices)*vertexFloats)
	for _, v := range m.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.TexCoord[0], v.TexCoord[1],
		)
	}
	return out
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the center point of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return mgl32.Vec3(b.Min).Add(mgl32.Vec3(b.Max)).Mul(0.5)
}

// Radius returns the distance from center to corner.
func (b Bounds) Radius() float32 {
	return mgl32.Vec3(b.Max).Sub(mgl32.Vec3(b.Min)).Len() / 2
}

func (b *Bounds) extend(p [3]float32) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}
