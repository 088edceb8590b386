package accel

import "github.com/corvusvox/voxelcore/pkg/geom"

// Box is an axis-aligned cuboid in integer voxel coordinates, used for both
// tree-local and world-space bounds.
type Box struct {
	Origin, Extent [3]int32
}

// Max returns the exclusive upper corner of the box.
func (b Box) Max() [3]int32 {
	return [3]int32{b.Origin[0] + b.Extent[0], b.Origin[1] + b.Extent[1], b.Origin[2] + b.Extent[2]}
}

// Volume returns the box's voxel count.
func (b Box) Volume() int64 {
	return int64(b.Extent[0]) * int64(b.Extent[1]) * int64(b.Extent[2])
}

// OptimizationLevel gates whether the builder evaluates one axis per node
// or all three. Only OptimizeExhaustive changes behavior; the other levels
// exist to mirror the source's enumerated surface (§6) without adding
// distinct behavior of their own.
type OptimizationLevel int

const (
	OptimizeNone OptimizationLevel = iota
	OptimizeLow
	OptimizeMedium
	OptimizeHigh
	OptimizeExhaustive
)

// BuildSettings configures a VKDT build. Every field here is the complete
// surface named in spec §6; unknown settings are a caller error, not
// silently ignored (there is no catch-all field to put them in).
type BuildSettings struct {
	OptimizationLevel OptimizationLevel

	// MaxDepth bounds tree depth; <=100, or <=30 when Preallocate is set.
	MaxDepth int

	// Preallocate sizes the geometry array for a full tree at MaxDepth up
	// front instead of growing it.
	Preallocate bool

	// MandatoryLeafVolume: a child at or below this volume is forced to be
	// a leaf regardless of content.
	MandatoryLeafVolume int64

	// PackNodes enables the dense child-pointer-free layout backed by a
	// parallel DescendantNode array; otherwise children sit at 2i+1, 2i+2.
	PackNodes bool

	// CalculateNonLeafProperties enables the optional PropertyNode array.
	CalculateNonLeafProperties bool

	// DifferentiateTypes is accepted for surface compatibility with the
	// source's settings struct; it has no distinct behavior from the
	// count-only heuristic (see DESIGN.md, open question).
	DifferentiateTypes bool

	Bounds Box
}

// DescendantNode holds the left child index of an internal node in a
// packed tree; the right child always occupies the next slot. Absent
// (nil slice) when the tree is not packed.
type DescendantNode struct {
	LeftChildIndex int32
}

// InvalidNodeIndex marks an unset DescendantNode.
const InvalidNodeIndex int32 = -1

// PropertyNode carries a per-internal-node subtree summary enabling early
// termination before a leaf is reached. Only DensityPercent is currently
// defined; population is gated by BuildSettings.CalculateNonLeafProperties
// and undefined otherwise.
type PropertyNode struct {
	DensityPercent uint8
}

// TreeData is an immutable-after-construction VKDT: a packed geometry array
// plus the optional property and descendant arrays, and the bounding box
// the tree covers in world voxel coordinates.
type TreeData struct {
	Bounds Box

	Geometry    []PackedData
	Descendants []DescendantNode // absent (nil) unless Packed
	Properties  []PropertyNode   // absent (nil) unless HasProperties

	Packed         bool
	HasProperties  bool
	CurrMaxDepth   int
}

// NodeCount returns the number of live nodes (distinct from cap(Geometry)).
func (t *TreeData) NodeCount() int {
	return len(t.Geometry)
}

// LeftChild returns the index of the left child of node i. In a packed
// tree this comes from the descendant array; otherwise it is 2i+1.
func (t *TreeData) LeftChild(i int32) int32 {
	if t.Packed {
		return t.Descendants[i].LeftChildIndex
	}
	return 2*i + 1
}

// RightChild returns the index of the right child of node i.
func (t *TreeData) RightChild(i int32) int32 {
	if t.Packed {
		return t.Descendants[i].LeftChildIndex + 1
	}
	return 2*i + 2
}

// axisExtent returns the box's extent along axis.
func axisExtent(b Box, axis geom.Axis) int32 {
	return b.Extent[axis]
}

func axisOrigin(b Box, axis geom.Axis) int32 {
	return b.Origin[axis]
}
