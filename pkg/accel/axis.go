package accel

import (
	"github.com/corvusvox/voxelcore/pkg/geom"
	"github.com/corvusvox/voxelcore/pkg/voxel"
)

// AxisSummary holds per-slice statistics of a sub-cuboid along one axis:
// how many solid voxels each slice contains, and whether each slice is a
// single material (Empty/Air representing "no common material").
type AxisSummary struct {
	Axis             geom.Axis
	OffsetFromOrigin int32
	PlanePerimeter   int64
	PlaneArea        int64
	TotalSolid       int64

	SolidsPerPlane            []int64
	HomogeneousMaterialPlanes []voxel.Kind
}

// otherAxes returns the two axes that are not axis, in a fixed order.
func otherAxes(axis geom.Axis) (geom.Axis, geom.Axis) {
	switch axis {
	case geom.AxisX:
		return geom.AxisY, geom.AxisZ
	case geom.AxisY:
		return geom.AxisX, geom.AxisZ
	default:
		return geom.AxisX, geom.AxisY
	}
}

// ComputeAxisSummary scans every slice of box (given in tree-local
// coordinates) along axis, summing solid counts and testing per-slice
// homogeneity. treeOrigin is added to tree-local coordinates to reach the
// world voxel coordinates the lookup cache indexes by.
func ComputeAxisSummary(lookup *voxel.VoxelLookup, treeOrigin [3]int32, box Box, axis geom.Axis) AxisSummary {
	uAxis, vAxis := otherAxes(axis)
	extentW := axisExtent(box, axis)
	extentU := axisExtent(box, uAxis)
	extentV := axisExtent(box, vAxis)

	summary := AxisSummary{
		Axis:                      axis,
		OffsetFromOrigin:          axisOrigin(box, axis),
		PlanePerimeter:            2 * (int64(extentU) + int64(extentV)),
		PlaneArea:                 int64(extentU) * int64(extentV),
		SolidsPerPlane:            make([]int64, extentW),
		HomogeneousMaterialPlanes: make([]voxel.Kind, extentW),
	}

	var local [3]int32
	for w := int32(0); w < extentW; w++ {
		local[axis] = axisOrigin(box, axis) + w

		var solidCount int64
		homogeneous := true
		var firstKind voxel.Kind
		first := true

		for u := int32(0); u < extentU; u++ {
			local[uAxis] = axisOrigin(box, uAxis) + u
			for v := int32(0); v < extentV; v++ {
				local[vAxis] = axisOrigin(box, vAxis) + v

				kind := lookup.VoxelAt(
					treeOrigin[0]+local[0],
					treeOrigin[1]+local[1],
					treeOrigin[2]+local[2],
				)
				if kind.IsSolid() {
					solidCount++
				}
				if first {
					firstKind = kind
					first = false
				} else if kind != firstKind {
					homogeneous = false
				}
			}
		}

		summary.SolidsPerPlane[w] = solidCount
		summary.TotalSolid += solidCount
		if homogeneous {
			summary.HomogeneousMaterialPlanes[w] = firstKind
		} else {
			summary.HomogeneousMaterialPlanes[w] = voxel.Empty
		}
	}

	return summary
}
