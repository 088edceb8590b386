package accel

import "github.com/corvusvox/voxelcore/pkg/geom"

// largeFloat mirrors the source's LARGE_FLOAT sentinel used to force an
// axis out of contention when it has too few slices to split meaningfully.
const largeFloat = 1e30

// SplitPlane names an axis and a plane offset relative to the tree origin.
type SplitPlane struct {
	Axis   geom.Axis
	Offset int32
}

// SplitRecommendation is the result of an offset-picker policy: a plane and
// a score used to compare candidates when evaluating multiple axes.
type SplitRecommendation struct {
	Plane SplitPlane
	Score float64
}

// BlindCenterOffset splits a summary's extent exactly down the middle,
// clamped to at least 1. Its score is always 0. The builder's split
// selection does not call it; it exists as the baseline policy named in
// spec §4.4.
func BlindCenterOffset(summary AxisSummary) SplitRecommendation {
	numPlanes := int32(len(summary.SolidsPerPlane))
	nodeOffset := numPlanes / 2
	if nodeOffset == 0 {
		nodeOffset = 1
	}
	return SplitRecommendation{
		Plane: SplitPlane{Axis: summary.Axis, Offset: summary.OffsetFromOrigin + nodeOffset},
		Score: 0,
	}
}

// LongestRunBiasOffset walks solids-per-plane looking for the longest run
// of equal solid counts and places the split at its boundary, intended to
// cut at the edge of a homogeneous volume rather than through its middle.
func LongestRunBiasOffset(summary AxisSummary) SplitRecommendation {
	solids := summary.SolidsPerPlane
	numPlanes := len(solids)
	if numPlanes < 2 {
		return SplitRecommendation{
			Plane: SplitPlane{Axis: summary.Axis, Offset: 0},
			Score: -largeFloat,
		}
	}

	bestRunLen := 0
	bestRunStart := 0
	currRunStart := 0
	currRunLen := 0
	currRunValue := solids[0]

	for i := 0; i < numPlanes; i++ {
		if solids[i] == currRunValue {
			currRunLen++
		} else {
			if currRunLen > bestRunLen {
				bestRunStart = currRunStart
				bestRunLen = currRunLen
			}
			currRunLen = 1
			currRunStart = i
			currRunValue = solids[i]
		}
	}
	if currRunLen > bestRunLen {
		bestRunStart = currRunStart
		bestRunLen = currRunLen
	}

	bestSplitPos := bestRunStart
	if bestRunStart == 0 {
		bestSplitPos = bestRunLen
	}

	if bestSplitPos < 1 {
		bestSplitPos = 1
	}
	if bestSplitPos > numPlanes-1 {
		bestSplitPos = numPlanes - 1
	}

	nodeOffset := int32(bestSplitPos)
	plane := SplitPlane{Axis: summary.Axis, Offset: summary.OffsetFromOrigin + nodeOffset}

	volume := float64(bestSplitPos) * float64(summary.PlaneArea)
	surfaceArea := float64(bestSplitPos) * float64(summary.PlanePerimeter)
	score := (volume * surfaceArea) * float64(bestRunLen)
	if bestRunLen == numPlanes {
		// The whole axis is one run: this axis cannot meaningfully cut the
		// volume, so its score is negated to push it out of contention
		// against any axis that can.
		score = -score
	}

	return SplitRecommendation{Plane: plane, Score: score}
}

// LongestAxis returns the axis of box with the greatest extent, with the
// lowest-index axis winning ties.
func LongestAxis(box Box) geom.Axis {
	best := geom.AxisX
	bestExtent := box.Extent[geom.AxisX]
	for _, axis := range []geom.Axis{geom.AxisY, geom.AxisZ} {
		if box.Extent[axis] > bestExtent {
			best = axis
			bestExtent = box.Extent[axis]
		}
	}
	return best
}
