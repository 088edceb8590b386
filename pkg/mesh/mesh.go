// Package mesh turns a dense voxel.Chunk into a renderable triangle mesh
// using greedy meshing, adapted from the teacher engine's chunk mesher to
// the new voxel.Kind palette and Size^3 chunk layout.
package mesh

import (
	"github.com/corvusvox/voxelcore/pkg/voxel"
	"github.com/go-gl/mathgl/mgl32"
)

// Direction is a cardinal face direction, ordered to match the VKDT/DDA
// face-index convention: axis*2 + (negative ? 1 : 0).
type Direction int

const (
	East Direction = iota // +X
	West                  // -X
	Up                    // +Y
	Down                  // -Y
	South                 // +Z
	North                 // -Z
)

// Vector returns the unit vector for a direction.
func (d Direction) Vector() mgl32.Vec3 {
	switch d {
	case East:
		return mgl32.Vec3{1, 0, 0}
	case West:
		return mgl32.Vec3{-1, 0, 0}
	case Up:
		return mgl32.Vec3{0, 1, 0}
	case Down:
		return mgl32.Vec3{0, -1, 0}
	case South:
		return mgl32.Vec3{0, 0, 1}
	case North:
		return mgl32.Vec3{0, 0, -1}
	default:
		return mgl32.Vec3{}
	}
}

// PackVertex packs vertex data into a single uint32, same bit layout as the
// teacher's vertex packer: 5 bits each for x/y/z, 1 bit each for u/v, 3 bits
// orientation, 8 bits texture/material id, 3 bits ambient occlusion.
func PackVertex(x, y, z, u, v, o, t, ao int) uint32 {
	return uint32(
		((x & 31) << 0) |
			((y & 31) << 5) |
			((z & 31) << 10) |
			((u & 1) << 15) |
			((v & 1) << 16) |
			((o & 7) << 17) |
			((t & 255) << 20) |
			((ao & 7) << 28))
}

// Vertex is an unpacked mesh vertex, kept alongside the packed form so CPU
// consumers (the path tracer's optional triangle-mesh intersector) don't
// need to unpack bits.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	TexCoords mgl32.Vec2
}

// Face is a quad, stored as two CCW triangles worth of vertices.
type Face struct {
	Vertices  [4]Vertex
	Kind      voxel.Kind
}

// Mesh holds both the classic vertex/index form and the packed-vertex form
// used by the GPU renderer.
type Mesh struct {
	Faces          []Face
	Vertices       []Vertex
	Indices        []uint32
	PackedVertices []uint32
}

// NewMesh returns an empty mesh.
func NewMesh() *Mesh {
	return &Mesh{}
}

// AddFace appends a quad face as two triangles.
func (m *Mesh) AddFace(face Face) {
	m.Faces = append(m.Faces, face)

	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, face.Vertices[:]...)
	m.Indices = append(m.Indices, base, base+1, base+2)
	m.Indices = append(m.Indices, base, base+2, base+3)
}

// AddPackedFace appends the four packed vertices of a quad.
func (m *Mesh) AddPackedFace(packed [4]uint32) {
	m.PackedVertices = append(m.PackedVertices, packed[:]...)
}

// MonoChunkMesh builds the six outer faces of a chunk that is known to be a
// single solid material, skipping the O(n^3) greedy scan entirely.
func MonoChunkMesh(c *voxel.Chunk, kind voxel.Kind) *Mesh {
	if kind.IsAir() {
		return NewMesh()
	}
	m := NewMesh()
	origin := c.WorldOrigin()
	for dim := Direction(0); dim < 6; dim++ {
		w0 := 0
		if dim == South || dim == East || dim == Up {
			w0 = voxel.Size - 1
		}
		addQuad(m, origin, dim, 0, 0, w0, voxel.Size, voxel.Size, kind)
	}
	return m
}

// GreedyMesh performs greedy meshing on a chunk, merging coplanar faces of
// equal material into the largest possible quads.
func GreedyMesh(c *voxel.Chunk) *Mesh {
	m := NewMesh()
	origin := c.WorldOrigin()
	const n = voxel.Size

	visited := make([]bool, n*n*n)
	visitedIdx := func(x, y, z int) int { return voxel.LocalIndex(x, y, z) }

	for dim := Direction(0); dim < 6; dim++ {
		for i := range visited {
			visited[i] = false
		}

		var u, v, w int
		var sizeU, sizeV, sizeW int
		switch dim {
		case North, South:
			u, v, w = 0, 1, 2
			sizeU, sizeV, sizeW = n, n, n
		case East, West:
			u, v, w = 2, 1, 0
			sizeU, sizeV, sizeW = n, n, n
		case Up, Down:
			u, v, w = 0, 2, 1
			sizeU, sizeV, sizeW = n, n, n
		}

		wStart, wEnd, wStep := 0, sizeW, 1
		if dim == South || dim == East || dim == Up {
			wStart, wEnd, wStep = sizeW-1, -1, -1
		}

		coordsFor := func(u0, v0, w0 int) (int, int, int) {
			switch dim {
			case North, South:
				return u0, v0, w0
			case East, West:
				return w0, v0, u0
			default: // Up, Down
				return u0, w0, v0
			}
		}

		for w0 := wStart; w0 != wEnd; w0 += wStep {
			mask := make([]voxel.Kind, sizeU*sizeV)
			maskAt := func(u0, v0 int) voxel.Kind { return mask[u0*sizeV+v0] }
			setMask := func(u0, v0 int, k voxel.Kind) { mask[u0*sizeV+v0] = k }

			for v0 := 0; v0 < sizeV; v0++ {
				for u0 := 0; u0 < sizeU; u0++ {
					x, y, z := coordsFor(u0, v0, w0)
					if visited[visitedIdx(x, y, z)] {
						continue
					}
					kind := c.At(x, y, z)
					if kind.IsAir() {
						continue
					}

					nx, ny, nz := x, y, z
					switch dim {
					case North:
						nz--
					case South:
						nz++
					case East:
						nx++
					case West:
						nx--
					case Up:
						ny++
					case Down:
						ny--
					}

					visible := nx < 0 || nx >= n || ny < 0 || ny >= n || nz < 0 || nz >= n
					if !visible {
						neighbor := c.At(nx, ny, nz)
						visible = neighbor.IsAir() || neighbor != kind
					}
					if visible {
						setMask(u0, v0, kind)
					}
				}
			}

			for v0 := 0; v0 < sizeV; v0++ {
				for u0 := 0; u0 < sizeU; u0++ {
					kind := maskAt(u0, v0)
					if kind.IsAir() {
						continue
					}
					x, y, z := coordsFor(u0, v0, w0)
					if visited[visitedIdx(x, y, z)] {
						continue
					}

					width := 1
					for u1 := u0 + 1; u1 < sizeU; u1++ {
						nx, ny, nz := coordsFor(u1, v0, w0)
						if maskAt(u1, v0) != kind || visited[visitedIdx(nx, ny, nz)] {
							break
						}
						width++
					}

					height := 1
					canExtend := true
					for v1 := v0 + 1; v1 < sizeV && canExtend; v1++ {
						for u1 := u0; u1 < u0+width; u1++ {
							nx, ny, nz := coordsFor(u1, v1, w0)
							if maskAt(u1, v1) != kind || visited[visitedIdx(nx, ny, nz)] {
								canExtend = false
								break
							}
						}
						if canExtend {
							height++
						}
					}

					for v1 := v0; v1 < v0+height; v1++ {
						for u1 := u0; u1 < u0+width; u1++ {
							x1, y1, z1 := coordsFor(u1, v1, w0)
							visited[visitedIdx(x1, y1, z1)] = true
						}
					}

					addQuad(m, origin, dim, u0, v0, w0, width, height, kind)
				}
			}
		}
	}
	return m
}

// addQuad emits one quad face, in both packed and unpacked vertex form, at
// the voxel layer w0 along dim's fixed axis, spanning
// [u0,u0+width) x [v0,v0+height).
func addQuad(m *Mesh, origin mgl32.Vec3, dim Direction, u0, v0, w0, width, height int, kind voxel.Kind) {
	var x0, y0, z0, x1, y1, z1, x2, y2, z2, x3, y3, z3 int
	switch dim {
	case North: // facing -Z
		x0, y0, z0 = u0, v0, w0
		x1, y1, z1 = u0+width, v0, w0
		x2, y2, z2 = u0+width, v0+height, w0
		x3, y3, z3 = u0, v0+height, w0
	case South: // facing +Z
		x0, y0, z0 = u0+width, v0, w0+1
		x1, y1, z1 = u0, v0, w0+1
		x2, y2, z2 = u0, v0+height, w0+1
		x3, y3, z3 = u0+width, v0+height, w0+1
	case East: // facing +X
		x0, y0, z0 = w0+1, v0, u0+width
		x1, y1, z1 = w0+1, v0, u0
		x2, y2, z2 = w0+1, v0+height, u0
		x3, y3, z3 = w0+1, v0+height, u0+width
	case West: // facing -X
		x0, y0, z0 = w0, v0, u0
		x1, y1, z1 = w0, v0, u0+width
		x2, y2, z2 = w0, v0+height, u0+width
		x3, y3, z3 = w0, v0+height, u0
	case Up: // facing +Y
		x0, y0, z0 = u0, w0+1, v0+height
		x1, y1, z1 = u0+width, w0+1, v0+height
		x2, y2, z2 = u0+width, w0+1, v0
		x3, y3, z3 = u0, w0+1, v0
	case Down: // facing -Y
		x0, y0, z0 = u0, w0, v0
		x1, y1, z1 = u0+width, w0, v0
		x2, y2, z2 = u0+width, w0, v0+height
		x3, y3, z3 = u0, w0, v0+height
	}

	textureID := int(kind)
	if textureID > 255 {
		textureID = 255
	}
	const ao = 7
	orientation := int(dim)

	packed := [4]uint32{
		PackVertex(x0%32, y0%32, z0%32, 0, 0, orientation, textureID, ao),
		PackVertex(x1%32, y1%32, z1%32, 1, 0, orientation, textureID, ao),
		PackVertex(x2%32, y2%32, z2%32, 1, 1, orientation, textureID, ao),
		PackVertex(x3%32, y3%32, z3%32, 0, 1, orientation, textureID, ao),
	}
	m.AddPackedFace(packed)

	normal := dim.Vector()
	p := [4]mgl32.Vec3{
		{float32(x0), float32(y0), float32(z0)},
		{float32(x1), float32(y1), float32(z1)},
		{float32(x2), float32(y2), float32(z2)},
		{float32(x3), float32(y3), float32(z3)},
	}
	t := [4]mgl32.Vec2{{0, 0}, {float32(width), 0}, {float32(width), float32(height)}, {0, float32(height)}}

	face := Face{Kind: kind}
	for i := 0; i < 4; i++ {
		face.Vertices[i] = Vertex{Position: p[i].Add(origin), Normal: normal, TexCoords: t[i]}
	}
	m.AddFace(face)
}
