package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fogleman/fauxgl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/dragonview/internal/logger"
)

// ErrEmptyMesh is returned when an asset contains no triangles.
var ErrEmptyMesh = errors.New("mesh has no triangles")

// Import loads a mesh file. OBJ, STL and PLY are supported; polygon faces
// are triangulated by the importer. With normalize set, the mesh is scaled
// and centered into the [-1, 1] cube.
func Import(path string, normalize bool) (*Mesh, error) {
	var (
		src *fauxgl.Mesh
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		src, err = fauxgl.LoadOBJ(path)
	case ".stl":
		src, err = fauxgl.LoadSTL(path)
	case ".ply":
		src, err = fauxgl.LoadPLY(path)
	default:
		return nil, fmt.Errorf("unsupported mesh format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}

	if normalize {
		src.BiUnitCube()
	}

	m, err := Build(src.Triangles)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}

	logger.Info("mesh imported",
		zap.String("path", path),
		zap.Int("faces", m.Faces()),
		zap.Int("vertices", len(m.Vertices)),
	)
	return m, nil
}

// Build converts triangles into an indexed mesh. Identical vertices are
// joined. Vertices without a normal get the face normal.
func Build(triangles []*fauxgl.Triangle) (*Mesh, error) {
	if len(triangles) == 0 {
		return nil, ErrEmptyMesh
	}

	m := &Mesh{
		Indices: make([]uint32, 0, len(triangles)*3),
		Bounds: Bounds{
			Min: [3]float32{1e30, 1e30, 1e30},
			Max: [3]float32{-1e30, -1e30, -1e30},
		},
	}
	seen := make(map[Vertex]uint32, len(triangles)*3)

	for _, t := range triangles {
		p1, p2, p3 := vec3(t.V1.Position), vec3(t.V2.Position), vec3(t.V3.Position)
		face := p2.Sub(p1).Cross(p3.Sub(p1))
		if face.Len() > 0 {
			face = face.Normalize()
		} else {
			face = mgl32.Vec3{0, 1, 0}
		}

		for _, v := range [3]fauxgl.Vertex{t.V1, t.V2, t.V3} {
			n := vec3(v.Normal)
			if n.Len() == 0 {
				n = face
			} else {
				n = n.Normalize()
			}

			vert := Vertex{
				Position: vec3(v.Position),
				Normal:   n,
				TexCoord: [2]float32{float32(v.Texture.X), float32(v.Texture.Y)},
			}
			idx, ok := seen[vert]
			if !ok {
				idx = uint32(len(m.Vertices))
				seen[vert] = idx
				m.Vertices = append(m.Vertices, vert)
				m.Bounds.extend(vert.Position)
			}
			m.Indices = append(m.Indices, idx)
		}
	}

	return m, nil
}

func vec3(v fauxgl.Vector) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}
