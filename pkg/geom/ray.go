// Package geom holds the ray/intersection vocabulary shared by the VKDT
// traversal, the chunk DDA, and the path tracer so all three intersectors
// agree on one representation.
package geom

import "github.com/go-gl/mathgl/mgl32"

// Axis indexes the three spatial dimensions; it also doubles as the VKDT
// split-plane axis selector.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Face is one of the six cardinal face directions, ordered {+X,-X,+Y,-Y,+Z,-Z}
// to match FaceIndex's axis*2 + (dir<0) convention.
type Face int

const (
	FacePosX Face = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// Normals is the 6-entry face normal table in {+X,-X,+Y,-Y,+Z,-Z} order.
var Normals = [6]mgl32.Vec3{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// FaceIndex returns the face on axis whose outward normal has the sign of
// dirComponent. The face a ray strikes when axis last reduced t_min is the
// one facing back against the ray, so callers pass the negated direction
// component for it.
func FaceIndex(axis Axis, dirComponent float32) Face {
	idx := int(axis) * 2
	if dirComponent < 0 {
		idx++
	}
	return Face(idx)
}

// Normal returns the outward normal for f.
func (f Face) Normal() mgl32.Vec3 {
	return Normals[f]
}

// Ray is an origin/direction pair. Both the VKDT traversal and the chunk
// DDA assume Dir is already normalized.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// InvDir returns the component-wise reciprocal of Dir. Components may be
// signed infinity (preserving sign) when Dir has a zero component; callers
// treat that as "this axis is parallel to the ray".
func (r Ray) InvDir() mgl32.Vec3 {
	return mgl32.Vec3{1 / r.Dir[0], 1 / r.Dir[1], 1 / r.Dir[2]}
}

// HitKind tags the variant carried by a RayIntersection.
type HitKind int

const (
	Miss HitKind = iota
	HitChunkVoxel
	HitTriangle
	HitCollider
	InternalChunk
	InternalCollider
	HitChunkVoxelUnknownType
	PossibleChunkVoxel
)

// Intersection is the tagged result returned by every intersector in the
// core: VKDT traversal, chunk DDA, triangle test, and sphere/portal test.
type Intersection struct {
	Kind HitKind
	T    float32

	// Populated for voxel hits.
	VoxelCoord  [3]int32
	Face        Face
	PaletteIdx  int32 // -1 if unknown
}

// Hit reports whether this intersection represents any non-miss result.
func (i Intersection) Hit() bool {
	return i.Kind != Miss
}

// NewMiss returns the canonical miss intersection.
func NewMiss() Intersection {
	return Intersection{Kind: Miss, T: 0, PaletteIdx: -1}
}

// BoxHit is the result of a slab test against an axis-aligned cuboid.
type BoxHit struct {
	Hit         bool
	TMin, TMax  float32
	LastMinAxis Axis
}

// SlabIntersect performs the standard slab-method ray/AABB test, tracking
// the last axis that raised t_min (needed so a VKDT traversal that
// terminates on the outer bounding box still knows which face was struck).
func SlabIntersect(r Ray, boundsMin, boundsMax mgl32.Vec3) BoxHit {
	inv := r.InvDir()
	tMin := float32(-largeFloat)
	tMax := float32(largeFloat)
	lastMinAxis := AxisX

	for axis := 0; axis < 3; axis++ {
		t0 := (boundsMin[axis] - r.Origin[axis]) * inv[axis]
		t1 := (boundsMax[axis] - r.Origin[axis]) * inv[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		prevMin := tMin
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > prevMin {
			lastMinAxis = Axis(axis)
		}
		if tMax <= tMin {
			return BoxHit{Hit: false, TMin: tMin, TMax: tMax, LastMinAxis: lastMinAxis}
		}
	}

	return BoxHit{Hit: true, TMin: tMin, TMax: tMax, LastMinAxis: lastMinAxis}
}

const largeFloat = 1e30
