package accel

import (
	"fmt"

	"github.com/corvusvox/voxelcore/pkg/geom"
)

// StackFrame is one pending branch of an iterative VKDT descent: the node
// to resume at, the valid parametric range for that subtree, and the axis
// that governed tMin when this frame was pushed (needed to report the
// correct face if this branch turns out to contain the final hit).
type StackFrame struct {
	Node       int32
	TMin, TMax float32
	EntryAxis  geom.Axis
}

// NewTraversalStack allocates a scratch stack sized for a tree of the given
// max depth. Two pushes can occur per level in the worst case (split then
// immediately split again before any pop), so the stack is sized 2x depth
// plus 2.
func NewTraversalStack(maxDepth int) []StackFrame {
	return make([]StackFrame, 0, 2*maxDepth+2)
}

// Traverse walks tree along ray using an explicit stack (caller-owned scratch,
// reused across calls via NewTraversalStack, reset to length 0 here) and
// returns the first intersection found. A leaf classified Empty never
// produces a hit; a Homogeneous leaf resolves directly to HitChunkVoxel;
// a SolidMixed or PartialMixed leaf resolves to one of the two ambiguous
// kinds that require DDA follow-up to pin down the exact voxel and
// material. Returns ErrInvalidInput if stack's capacity is insufficient
// for tree's depth.
func Traverse(tree *TreeData, ray geom.Ray, stack []StackFrame) (geom.Intersection, error) {
	if cap(stack) < 2*tree.CurrMaxDepth+2 {
		return geom.NewMiss(), fmt.Errorf("%w: traversal stack capacity %d too small for depth %d", ErrInvalidInput, cap(stack), tree.CurrMaxDepth)
	}
	stack = stack[:0]

	worldMin := vec3FromInt32(tree.Bounds.Origin)
	worldMax := vec3FromInt32(tree.Bounds.Max())
	boxHit := geom.SlabIntersect(ray, worldMin, worldMax)
	if !boxHit.Hit || boxHit.TMax < 0 {
		return geom.NewMiss(), nil
	}

	nodeIdx := int32(0)
	tMin, tMax := maxFloat32(boxHit.TMin, 0), boxHit.TMax
	curAxis := boxHit.LastMinAxis
	invDir := ray.InvDir()

	for {
		node := tree.Geometry[nodeIdx]

		if node.IsLeaf() {
			if hit, ok := resolveLeaf(node, tMin, curAxis, ray); ok {
				return hit, nil
			}
			if len(stack) == 0 {
				return geom.NewMiss(), nil
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			nodeIdx = top.Node
			tMin, tMax = top.TMin, top.TMax
			curAxis = top.EntryAxis
			continue
		}

		axis := node.Axis()
		planeWorld := float32(tree.Bounds.Origin[axis]) + float32(node.PlaneOffset())
		tSplit := (planeWorld - ray.Origin[axis]) * invDir[axis]

		leftIdx := tree.LeftChild(nodeIdx)
		rightIdx := tree.RightChild(nodeIdx)

		var nearIdx, farIdx int32
		if ray.Dir[axis] >= 0 {
			nearIdx, farIdx = leftIdx, rightIdx
		} else {
			nearIdx, farIdx = rightIdx, leftIdx
		}

		switch {
		case tSplit >= tMax:
			nodeIdx = nearIdx
		case tSplit <= tMin:
			nodeIdx = farIdx
		default:
			stack = append(stack, StackFrame{Node: farIdx, TMin: tSplit, TMax: tMax, EntryAxis: axis})
			nodeIdx = nearIdx
			tMax = tSplit
		}
	}
}

// resolveLeaf reports whether leaf node at entry parameter tHit, entered
// along curAxis, constitutes a stopping intersection and what kind.
func resolveLeaf(node PackedData, tHit float32, curAxis geom.Axis, ray geom.Ray) (geom.Intersection, bool) {
	if node.IsEmptyLeaf() {
		return geom.Intersection{}, false
	}

	face := geom.FaceIndex(curAxis, -ray.Dir[curAxis])

	switch {
	case node.IsHomogeneousLeaf():
		return geom.Intersection{
			Kind:       geom.HitChunkVoxel,
			T:          tHit,
			Face:       face,
			PaletteIdx: int32(node.PaletteIndex()),
		}, true
	case node.IsSolidMixedLeaf():
		return geom.Intersection{
			Kind:       geom.HitChunkVoxelUnknownType,
			T:          tHit,
			Face:       face,
			PaletteIdx: -1,
		}, true
	default: // partial mixed
		return geom.Intersection{
			Kind:       geom.PossibleChunkVoxel,
			T:          tHit,
			Face:       face,
			PaletteIdx: -1,
		}, true
	}
}

func vec3FromInt32(v [3]int32) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

func maxFloat32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
