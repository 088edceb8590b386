// Package dda implements the 3D-DDA chunk voxel raycaster used to resolve
// ambiguous VKDT leaf hits (solid-mixed and partial-mixed leaves) down to a
// single voxel and its material, and to walk rays that leave the tree's
// bounds entirely.
package dda

import (
	"math"

	"github.com/corvusvox/voxelcore/pkg/geom"
	"github.com/corvusvox/voxelcore/pkg/voxel"
)

// maxSteps bounds a single walk so a ray parallel to, or grazing, chunk
// boundaries with pathological floating point can't loop forever.
const maxSteps = 100000

// State is the per-ray precomputed incremental-stepping state: the voxel
// the ray currently occupies, which direction each axis steps, and the t
// increment needed to cross one voxel along each axis (tDelta), plus the t
// value at which the ray next crosses a boundary along each axis (tMax).
type State struct {
	ray    geom.Ray
	voxel  [3]int32
	step   [3]int32
	tDelta [3]float32
	tMax   [3]float32
	t      float32
}

// NewState builds the starting DDA state for ray at parameter tStart (the
// entry point into the region to be walked, typically a VKDT leaf's tHit).
func NewState(ray geom.Ray, tStart float32) *State {
	s := &State{ray: ray, t: tStart}
	entry := ray.At(tStart)

	for axis := 0; axis < 3; axis++ {
		s.voxel[axis] = int32(math.Floor(float64(entry[axis])))

		switch {
		case ray.Dir[axis] > 0:
			s.step[axis] = 1
			s.tDelta[axis] = 1 / ray.Dir[axis]
			voxelEdge := float32(s.voxel[axis] + 1)
			s.tMax[axis] = tStart + (voxelEdge-entry[axis])/ray.Dir[axis]
		case ray.Dir[axis] < 0:
			s.step[axis] = -1
			s.tDelta[axis] = -1 / ray.Dir[axis]
			voxelEdge := float32(s.voxel[axis])
			s.tMax[axis] = tStart + (voxelEdge-entry[axis])/ray.Dir[axis]
		default:
			s.step[axis] = 0
			s.tDelta[axis] = float32(math.Inf(1))
			s.tMax[axis] = float32(math.Inf(1))
		}
	}
	return s
}

// Voxel returns the world voxel coordinate currently occupied.
func (s *State) Voxel() [3]int32 { return s.voxel }

// T returns the parametric distance at which the ray entered the current
// voxel.
func (s *State) T() float32 { return s.t }

// Advance steps to the next voxel along whichever axis has the smallest
// tMax, and reports which face of the new voxel the ray entered through.
func (s *State) Advance() geom.Face {
	axis := geom.AxisX
	if s.tMax[geom.AxisY] < s.tMax[axis] {
		axis = geom.AxisY
	}
	if s.tMax[geom.AxisZ] < s.tMax[axis] {
		axis = geom.AxisZ
	}

	s.t = s.tMax[axis]
	s.voxel[axis] += s.step[axis]
	s.tMax[axis] += s.tDelta[axis]

	return geom.FaceIndex(axis, -float32(s.step[axis]))
}

// Traverse walks ray from tStart to tEnd one voxel at a time, querying
// lookup for each voxel's material, and returns the first solid voxel
// found. The entry face of the very first voxel is reported using
// lastAxis (the axis that governed tStart, supplied by the VKDT traversal
// that produced tStart), since no Advance has occurred yet to supply one.
func Traverse(lookup *voxel.VoxelLookup, ray geom.Ray, tStart, tEnd float32, lastAxis geom.Axis) geom.Intersection {
	if tEnd <= tStart {
		return geom.NewMiss()
	}

	s := NewState(ray, tStart)
	face := geom.FaceIndex(lastAxis, -ray.Dir[lastAxis])

	for step := 0; step < maxSteps; step++ {
		kind := lookup.VoxelAt(s.voxel[0], s.voxel[1], s.voxel[2])
		if kind.IsSolid() {
			return geom.Intersection{
				Kind:       geom.HitChunkVoxel,
				T:          s.t,
				VoxelCoord: s.voxel,
				Face:       face,
				PaletteIdx: int32(kind),
			}
		}

		face = s.Advance()
		if s.t > tEnd {
			return geom.NewMiss()
		}
	}
	return geom.NewMiss()
}
