package pathtracer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/corvusvox/voxelcore/pkg/geom"
	"github.com/corvusvox/voxelcore/pkg/voxel"
)

// PathVertex records one segment's intersection along a traced path: the
// ray that produced it, what it hit, and (for a voxel hit) the material
// and surface normal needed to shade it later.
type PathVertex struct {
	SourceRay     geom.Ray
	Kind          geom.HitKind
	THit          float32
	MaterialIndex voxel.Kind
	HitNormal     mgl32.Vec3
}

// PathResult summarizes one traced path: how many vertices of the shared
// buffer belong to it, and whether it ended at a light (skylight or an
// emissive voxel) rather than being cut off mid-bounce.
type PathResult struct {
	NumFilled           int
	IsTerminatedAtLight bool
}

// PathBuffer is shared, reusable scratch for a tile's worth of path
// tracing: one flat vertex array all paths write into sequentially, and
// one result per path recording which slice of the vertex array is
// theirs. When CompressFailedPaths is set, a path that never reaches a
// light has its vertices overwritten by the next path instead of wasting
// buffer space and shading work on a dead end.
type PathBuffer struct {
	MaxPathLen          int
	CompressFailedPaths bool

	Vertices []PathVertex
	Results  []PathResult

	writeIndex int
}

// NewPathBuffer allocates a buffer sized for numPaths paths of at most
// maxPathLen vertices each.
func NewPathBuffer(maxPathLen, numPaths int, compressFailedPaths bool) *PathBuffer {
	return &PathBuffer{
		MaxPathLen:          maxPathLen,
		CompressFailedPaths: compressFailedPaths,
		Vertices:            make([]PathVertex, maxPathLen*numPaths),
		Results:              make([]PathResult, numPaths),
	}
}

// Reset rewinds the buffer for reuse by the next batch of rays, without
// reallocating.
func (b *PathBuffer) Reset() {
	b.writeIndex = 0
}
