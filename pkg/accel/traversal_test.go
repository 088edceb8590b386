package accel_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/corvusvox/voxelcore/pkg/accel"
	"github.com/corvusvox/voxelcore/pkg/geom"
	"github.com/corvusvox/voxelcore/pkg/voxel"
)

// buildSingleVoxelTree matches scenario A: one solid voxel at local (0,0,0)
// in an otherwise empty chunk at the origin.
func buildSingleVoxelTree(t *testing.T) *accel.TreeData {
	t.Helper()
	table := voxel.NewChunkTable()
	chunk := voxel.NewChunk(voxel.Coord{})
	chunk.Set(0, 0, 0, voxel.Stone)
	table.Set(chunk.Coord, chunk)

	bounds := accel.Box{Origin: [3]int32{0, 0, 0}, Extent: [3]int32{32, 32, 32}}
	tree, err := accel.Build(table, accel.BuildSettings{
		MaxDepth:            24,
		MandatoryLeafVolume: 1,
		PackNodes:           true,
		Bounds:              bounds,
	})
	require.NoError(t, err)
	return tree
}

func TestTraverse_RayOriginatingInsideBoundsHitsForwardVoxel(t *testing.T) {
	tree := buildSingleVoxelTree(t)
	stack := accel.NewTraversalStack(tree.CurrMaxDepth)

	// Origin sits inside the world AABB, as every bounce ray's origin does:
	// the unclamped slab tMin here is negative (the backward crossing of the
	// bounding box), which must not leak into the traversal as a negative
	// hit distance.
	ray := geom.Ray{Origin: mgl32.Vec3{16, 0.5, 0.5}, Dir: mgl32.Vec3{-1, 0, 0}}
	hit, err := accel.Traverse(tree, ray, stack)
	require.NoError(t, err)
	require.True(t, hit.Hit())
	require.GreaterOrEqual(t, hit.T, float32(0))
	require.InDelta(t, float32(15), hit.T, 1e-4)
}

func TestTraverse_RayExitingBehindOriginMisses(t *testing.T) {
	tree := buildSingleVoxelTree(t)
	stack := accel.NewTraversalStack(tree.CurrMaxDepth)

	// The whole world AABB lies behind this ray's origin, so boxHit.TMax is
	// negative; the traversal must report a miss rather than project the
	// box hit forward.
	ray := geom.Ray{Origin: mgl32.Vec3{100, 0.5, 0.5}, Dir: mgl32.Vec3{1, 0, 0}}
	hit, err := accel.Traverse(tree, ray, stack)
	require.NoError(t, err)
	require.False(t, hit.Hit())
}
