package accel_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusvox/voxelcore/pkg/accel"
	"github.com/corvusvox/voxelcore/pkg/voxel"
)

func buildSplitTree(t *testing.T) *accel.TreeData {
	t.Helper()
	table := voxel.NewChunkTable()
	chunk := voxel.NewChunk(voxel.Coord{})
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
	tree, err := accel.Build(table, accel.BuildSettings{
		MaxDepth:            12,
		MandatoryLeafVolume: 1,
		PackNodes:           true,
		Bounds:              bounds,
	})
	require.NoError(t, err)
	return tree
}

func TestSaveLoad_RoundTripsPackedTree(t *testing.T) {
	tree := buildSplitTree(t)

	var buf bytes.Buffer
	require.NoError(t, accel.Save(&buf, tree, 42))

	loaded, err := accel.Load(&buf)
	require.NoError(t, err)

	require.Equal(t, tree.Bounds, loaded.Bounds)
	require.Equal(t, tree.NodeCount(), loaded.NodeCount())
	require.Equal(t, tree.Geometry, loaded.Geometry)

	for i := int32(0); i < int32(tree.NodeCount()); i++ {
		if tree.Geometry[i].IsLeaf() {
			continue
		}
		require.Equal(t, tree.LeftChild(i), loaded.LeftChild(i))
		require.Equal(t, tree.RightChild(i), loaded.RightChild(i))
	}
}

func TestSaveLoad_EmptyTree(t *testing.T) {
	tree := &accel.TreeData{
		Bounds:   accel.Box{Extent: [3]int32{1, 1, 1}},
		Geometry: []accel.PackedData{},
		Packed:   true,
	}

	var buf bytes.Buffer
	require.NoError(t, accel.Save(&buf, tree, 1))

	loaded, err := accel.Load(&buf)
	require.NoError(t, err)
	require.Equal(t, 0, loaded.NodeCount())
}

func TestSaveLoad_SingleLeafTree(t *testing.T) {
	tree := &accel.TreeData{
		Bounds:      accel.Box{Extent: [3]int32{1, 1, 1}},
		Geometry:    []accel.PackedData{accel.MakeHomogeneousLeaf(7)},
		Descendants: []accel.DescendantNode{{LeftChildIndex: accel.InvalidNodeIndex}},
		Packed:      true,
	}

	var buf bytes.Buffer
	require.NoError(t, accel.Save(&buf, tree, 1))

	loaded, err := accel.Load(&buf)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.NodeCount())
	require.True(t, loaded.Geometry[0].IsHomogeneousLeaf())
	require.Equal(t, uint8(7), loaded.Geometry[0].PaletteIndex())
}

func TestSave_RejectsNonPackedTree(t *testing.T) {
	tree := &accel.TreeData{Packed: false, Geometry: []accel.PackedData{accel.MakeEmptyLeaf()}}

	var buf bytes.Buffer
	err := accel.Save(&buf, tree, 1)
	require.ErrorIs(t, err, accel.ErrUnsupported)
}

func TestLoad_RejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{9, 9, 9, 0})
	buf.Write([]byte{0, 0, 0, 1}) // tree id
	buf.Write([]byte{0, 0, 0, 0}) // node count
	buf.Write(make([]byte, 24))  // bounds (two [3]int32)

	_, err := accel.Load(&buf)
	require.ErrorIs(t, err, accel.ErrUnsupported)
}
