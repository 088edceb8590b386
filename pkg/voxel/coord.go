package voxel

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Coord is the integer chunk-space coordinate of a chunk: world voxel
// coordinate = Coord*Size + local.
type Coord struct {
	X, Y, Z int32
}

// floorDiv32 divides with floor semantics, unlike Go's truncating /.
func floorDiv32(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod32(a, b int32) int32 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

// ChunkFromVoxel converts a world voxel coordinate to the chunk coordinate
// that contains it, with floor semantics for negative inputs.
func ChunkFromVoxel(x, y, z int32) Coord {
	return Coord{
		X: floorDiv32(x, Size),
		Y: floorDiv32(y, Size),
		Z: floorDiv32(z, Size),
	}
}

// LocalFromVoxel converts a world voxel coordinate to the local in-chunk
// coordinate, with floor (wrapping) semantics for negative inputs.
func LocalFromVoxel(x, y, z int32) (int, int, int) {
	return int(floorMod32(x, Size)), int(floorMod32(y, Size)), int(floorMod32(z, Size))
}

// WorldOrigin returns the world voxel-space corner of the chunk at c.
func (c Coord) WorldOrigin() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X * Size), float32(c.Y * Size), float32(c.Z * Size)}
}

// Add returns the component-wise sum of two chunk coordinates.
func (c Coord) Add(o Coord) Coord {
	return Coord{c.X + o.X, c.Y + o.Y, c.Z + o.Z}
}
