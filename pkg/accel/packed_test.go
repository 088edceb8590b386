package accel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusvox/voxelcore/pkg/accel"
	"github.com/corvusvox/voxelcore/pkg/geom"
)

func TestPackedData_InternalRoundTrip(t *testing.T) {
	for _, axis := range []geom.Axis{geom.AxisX, geom.AxisY, geom.AxisZ} {
		for _, offset := range []uint16{accel.MinPlaneOffset, 1000, accel.MaxPlaneOffset} {
			node := accel.MakeInternal(axis, offset)
			require.False(t, node.IsLeaf())
			require.Equal(t, axis, node.Axis())
			require.Equal(t, offset, node.PlaneOffset())
		}
	}
}

func TestPackedData_EmptyLeaf(t *testing.T) {
	node := accel.MakeEmptyLeaf()
	require.True(t, node.IsLeaf())
	require.True(t, node.IsEmptyLeaf())
	require.False(t, node.IsHomogeneousLeaf())
	require.False(t, node.IsSolidMixedLeaf())
	require.False(t, node.IsPartialMixedLeaf())
}

func TestPackedData_HomogeneousLeaf(t *testing.T) {
	node := accel.MakeHomogeneousLeaf(42)
	require.True(t, node.IsLeaf())
	require.True(t, node.IsHomogeneousLeaf())
	require.False(t, node.IsEmptyLeaf())
	require.Equal(t, uint8(42), node.PaletteIndex())
}

func TestPackedData_SolidMixedLeafIsDistinguished(t *testing.T) {
	solidMixed := accel.MakeSolidMixedLeaf()
	require.True(t, solidMixed.IsSolidMixedLeaf())
	require.False(t, solidMixed.IsPartialMixedLeaf())

	// A genuine partial mix can never reach percent=100, so it can never
	// collide with the solid-mixed sentinel.
	for percent := uint8(1); percent <= 99; percent++ {
		partial := accel.MakeMixedLeaf(percent)
		require.True(t, partial.IsPartialMixedLeaf())
		require.False(t, partial.IsSolidMixedLeaf())
		require.Equal(t, percent, partial.PercentSolid())
	}
}
