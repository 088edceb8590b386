package dda_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/corvusvox/voxelcore/pkg/dda"
	"github.com/corvusvox/voxelcore/pkg/geom"
	"github.com/corvusvox/voxelcore/pkg/voxel"
)

func TestTraverse_HitsSolidVoxelAhead(t *testing.T) {
	table := voxel.NewChunkTable()
	chunk := voxel.NewChunk(voxel.Coord{})
	chunk.Set(5, 0, 0, voxel.Stone)
	table.Set(chunk.Coord, chunk)
	lookup := voxel.NewVoxelLookup(table)

	ray := geom.Ray{Origin: mgl32.Vec3{0.5, 0.5, 0.5}, Dir: mgl32.Vec3{1, 0, 0}}
	hit := dda.Traverse(lookup, ray, 0, 20, geom.AxisX)

	require.True(t, hit.Hit())
	require.Equal(t, geom.HitChunkVoxel, hit.Kind)
	require.Equal(t, [3]int32{5, 0, 0}, hit.VoxelCoord)
	require.GreaterOrEqual(t, hit.T, float32(0))
	require.Equal(t, int32(voxel.Stone), hit.PaletteIdx)
}

func TestTraverse_MissesWhenPathAllAir(t *testing.T) {
	table := voxel.NewChunkTable()
	table.Set(voxel.Coord{}, voxel.NewChunk(voxel.Coord{}))
	lookup := voxel.NewVoxelLookup(table)

	ray := geom.Ray{Origin: mgl32.Vec3{0.5, 0.5, 0.5}, Dir: mgl32.Vec3{1, 0, 0}}
	hit := dda.Traverse(lookup, ray, 0, 10, geom.AxisX)

	require.False(t, hit.Hit())
}

func TestTraverse_NegativeDirectionSteps(t *testing.T) {
	table := voxel.NewChunkTable()
	chunk := voxel.NewChunk(voxel.Coord{})
	chunk.Set(2, 4, 4, voxel.Metal)
	table.Set(chunk.Coord, chunk)
	lookup := voxel.NewVoxelLookup(table)

	ray := geom.Ray{Origin: mgl32.Vec3{10.5, 4.5, 4.5}, Dir: mgl32.Vec3{-1, 0, 0}}
	hit := dda.Traverse(lookup, ray, 0, 20, geom.AxisX)

	require.True(t, hit.Hit())
	require.Equal(t, [3]int32{2, 4, 4}, hit.VoxelCoord)
}
