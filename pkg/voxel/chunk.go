package voxel

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Size is the fixed edge length of every chunk.
const Size = 32

const cellsPerChunk = Size * Size * Size

// Chunk is a dense Size^3 cube of voxels in z-major, y-middle, x-minor
// layout: index = x + y*Size + z*Size*Size, so x is the fastest-varying
// component and z the slowest.
type Chunk struct {
	Coord  Coord
	Voxels [cellsPerChunk]Kind

	// Mesh is filled lazily by the ambient mesher (pkg/mesh) and left nil
	// until first requested.
	Mesh interface{}
}

// NewChunk creates an all-Empty chunk at the given chunk coordinate.
func NewChunk(coord Coord) *Chunk {
	return &Chunk{Coord: coord}
}

// NewChunkFromVoxels creates a chunk from existing dense voxel data. len(voxels)
// must equal Size^3; data that is short is zero-padded (Empty), not truncated.
func NewChunkFromVoxels(coord Coord, voxels []Kind) *Chunk {
	c := &Chunk{Coord: coord}
	n := len(voxels)
	if n > cellsPerChunk {
		n = cellsPerChunk
	}
	copy(c.Voxels[:n], voxels[:n])
	return c
}

// Fill sets every voxel in the chunk to kind.
func (c *Chunk) Fill(kind Kind) {
	for i := range c.Voxels {
		c.Voxels[i] = kind
	}
}

// LocalIndex converts in-range local coordinates to a flat Voxels index.
func LocalIndex(x, y, z int) int {
	return x + y*Size + z*Size*Size
}

// IndexToLocal is the inverse of LocalIndex.
func IndexToLocal(index int) (x, y, z int) {
	z = index / (Size * Size)
	rem := index % (Size * Size)
	y = rem / Size
	x = rem % Size
	return
}

func inChunkBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < Size && y < Size && z < Size
}

// At returns the voxel at local coordinates, or Air if out of bounds.
func (c *Chunk) At(x, y, z int) Kind {
	if !inChunkBounds(x, y, z) {
		return Air
	}
	return c.Voxels[LocalIndex(x, y, z)]
}

// Set writes the voxel at local coordinates. Out-of-bounds writes are
// ignored, matching the chunk manager's tolerance of caller-side sloppy
// neighbor queries.
func (c *Chunk) Set(x, y, z int, kind Kind) {
	if !inChunkBounds(x, y, z) {
		return
	}
	c.Voxels[LocalIndex(x, y, z)] = kind
}

// WorldOrigin returns the world voxel-space corner of this chunk.
func (c *Chunk) WorldOrigin() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.Coord.X * Size),
		float32(c.Coord.Y * Size),
		float32(c.Coord.Z * Size),
	}
}

// ForEachNeighbor calls fn for each of the 26 chunk coordinates adjacent to
// this chunk.
func (c *Chunk) ForEachNeighbor(fn func(Coord)) {
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				fn(Coord{c.Coord.X + dx, c.Coord.Y + dy, c.Coord.Z + dz})
			}
		}
	}
}
