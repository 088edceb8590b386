package accel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusvox/voxelcore/pkg/accel"
	"github.com/corvusvox/voxelcore/pkg/voxel"
)

func newTableWithChunk(kind voxel.Kind) *voxel.ChunkTable {
	table := voxel.NewChunkTable()
	chunk := voxel.NewChunk(voxel.Coord{X: 0, Y: 0, Z: 0})
	chunk.Fill(kind)
	table.Set(chunk.Coord, chunk)
	return table
}

func defaultSettings(bounds accel.Box) accel.BuildSettings {
	return accel.BuildSettings{
		MaxDepth:            12,
		MandatoryLeafVolume: 1,
		PackNodes:           true,
		Bounds:              bounds,
	}
}

func TestBuild_AllEmptyRegionIsLeaves(t *testing.T) {
	table := voxel.NewChunkTable()
	table.Set(voxel.Coord{}, voxel.NewChunk(voxel.Coord{}))

	bounds := accel.Box{Origin: [3]int32{0, 0, 0}, Extent: [3]int32{8, 8, 8}}
	tree, err := accel.Build(table, defaultSettings(bounds))
	require.NoError(t, err)

	for _, node := range tree.Geometry {
		if node.IsLeaf() {
			require.True(t, node.IsEmptyLeaf())
		}
	}
}

func TestBuild_HomogeneousRegionIsHomogeneousLeaves(t *testing.T) {
	table := newTableWithChunk(voxel.Stone)

	bounds := accel.Box{Origin: [3]int32{0, 0, 0}, Extent: [3]int32{8, 8, 8}}
	tree, err := accel.Build(table, defaultSettings(bounds))
	require.NoError(t, err)

	sawLeaf := false
	for _, node := range tree.Geometry {
		if node.IsLeaf() {
			require.True(t, node.IsHomogeneousLeaf(), "expected every leaf homogeneous")
			require.Equal(t, uint8(voxel.Stone), node.PaletteIndex())
			sawLeaf = true
		}
	}
	require.True(t, sawLeaf)
}

func TestBuild_PackedChildrenAreContiguous(t *testing.T) {
	table := voxel.NewChunkTable()
	chunk := voxel.NewChunk(voxel.Coord{})
	// Half solid, half air: forces at least one real split with children on
	// both sides.
	for z := 0; z < voxel.Size; z++ {
		for y := 0; y < voxel.Size; y++ {
			for x := 0; x < voxel.Size; x++ {
				if x < 16 {
					chunk.Set(x, y, z, voxel.Stone)
				}
			}
		}
	}
	table.Set(chunk.Coord, chunk)

	bounds := accel.Box{Origin: [3]int32{0, 0, 0}, Extent: [3]int32{32, 32, 32}}
	tree, err := accel.Build(table, defaultSettings(bounds))
	require.NoError(t, err)

	for i := int32(0); i < int32(tree.NodeCount()); i++ {
		node := tree.Geometry[i]
		if node.IsLeaf() {
			continue
		}
		left := tree.LeftChild(i)
		right := tree.RightChild(i)
		require.Equal(t, left+1, right, "packed right child must immediately follow left")
		require.Less(t, int(right), tree.NodeCount())
	}
}

func TestBuild_NoUndersizedInternalNodes(t *testing.T) {
	table := voxel.NewChunkTable()
	chunk := voxel.NewChunk(voxel.Coord{})
	for z := 0; z < voxel.Size; z++ {
		for y := 0; y < voxel.Size; y++ {
			for x := 0; x < voxel.Size; x++ {
				if (x+y+z)%3 == 0 {
					chunk.Set(x, y, z, voxel.Dirt)
				}
			}
		}
	}
	table.Set(chunk.Coord, chunk)

	bounds := accel.Box{Origin: [3]int32{0, 0, 0}, Extent: [3]int32{16, 16, 16}}
	settings := defaultSettings(bounds)
	settings.MandatoryLeafVolume = 8
	tree, err := accel.Build(table, settings)
	require.NoError(t, err)
	require.NotZero(t, tree.NodeCount())
	require.LessOrEqual(t, tree.CurrMaxDepth, settings.MaxDepth)

	// Every internal node must be larger than the mandatory leaf volume;
	// each node's box is recomputed from the splits above it.
	type pending struct {
		idx int32
		box accel.Box
	}
	work := []pending{{0, bounds}}
	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]
		node := tree.Geometry[p.idx]
		if node.IsLeaf() {
			continue
		}
		require.Greater(t, p.box.Volume(), settings.MandatoryLeafVolume)
		axis := node.Axis()
		plane := bounds.Origin[axis] + int32(node.PlaneOffset())
		near, far := p.box, p.box
		near.Extent[axis] = plane - p.box.Origin[axis]
		far.Origin[axis] = plane
		far.Extent[axis] = p.box.Max()[axis] - plane
		work = append(work, pending{tree.LeftChild(p.idx), near}, pending{tree.RightChild(p.idx), far})
	}
}

func TestBuild_RejectsExcessiveDepth(t *testing.T) {
	table := voxel.NewChunkTable()
	bounds := accel.Box{Extent: [3]int32{8, 8, 8}}
	settings := defaultSettings(bounds)
	settings.MaxDepth = 1000
	_, err := accel.Build(table, settings)
	require.ErrorIs(t, err, accel.ErrInvalidInput)
}
