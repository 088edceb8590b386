package accel

import (
	"fmt"

	"github.com/corvusvox/voxelcore/pkg/geom"
	"github.com/corvusvox/voxelcore/pkg/voxel"
)

// maxNodeIndex is the ceiling the source places on any node index (§3
// invariants).
const maxNodeIndex = (1 << 31) - 1

func maxPossibleNodes(depth int) int64 {
	if depth > 30 {
		return maxNodeIndex
	}
	n := (int64(1) << uint(depth+1)) - 1
	if n > maxNodeIndex {
		return maxNodeIndex
	}
	return n
}

const initialCapacity = 64

// frame is one entry of the builder's explicit LIFO of pending internal
// nodes, replacing what would otherwise be call-stack recursion.
type frame struct {
	depth  int
	index  int32
	cuboid Box
}

// Build constructs a VKDT over table's current contents per settings. It
// returns ErrInvalidInput for an out-of-range MaxDepth, and ErrOutOfMemory
// if array growth would exceed the node-index ceiling derivable from
// MaxDepth; in both failure cases no partial tree is returned.
func Build(table *voxel.ChunkTable, settings BuildSettings) (*TreeData, error) {
	if settings.MaxDepth < 1 || settings.MaxDepth > 100 {
		return nil, fmt.Errorf("%w: max depth %d out of [1,100]", ErrInvalidInput, settings.MaxDepth)
	}
	if settings.Preallocate && settings.MaxDepth > 30 {
		return nil, fmt.Errorf("%w: preallocated max depth %d out of [1,30]", ErrInvalidInput, settings.MaxDepth)
	}

	lookup := voxel.NewVoxelLookup(table)
	treeOrigin := [3]int32{settings.Bounds.Origin[0], settings.Bounds.Origin[1], settings.Bounds.Origin[2]}

	capBound := maxPossibleNodes(settings.MaxDepth)
	cap0 := int64(initialCapacity)
	if settings.Preallocate || cap0 > capBound {
		cap0 = capBound
	}
	if cap0 < 1 {
		cap0 = 1
	}

	b := &builderState{
		settings:      settings,
		lookup:        lookup,
		treeOrigin:    treeOrigin,
		capBound:      capBound,
		geometry:      make([]PackedData, cap0),
		hasProperties: settings.CalculateNonLeafProperties,
	}
	if settings.PackNodes {
		b.descendants = make([]DescendantNode, cap0)
	}
	if b.hasProperties {
		b.properties = make([]PropertyNode, cap0)
	}
	b.count = 1 // root reserved at index 0

	rootBox := Box{Origin: [3]int32{0, 0, 0}, Extent: settings.Bounds.Extent}
	stack := []frame{{depth: 0, index: 0, cuboid: rootBox}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := b.splitNode(f)
		if err != nil {
			return nil, err
		}

		for _, c := range children {
			if c.depth > b.maxDepth {
				b.maxDepth = c.depth
			}
			if c.isLeaf {
				b.geometry[c.index] = c.leaf
				if b.settings.PackNodes {
					b.descendants[c.index] = DescendantNode{LeftChildIndex: InvalidNodeIndex}
				}
			} else {
				stack = append(stack, frame{depth: c.depth, index: c.index, cuboid: c.box})
			}
		}
	}

	geometry := b.geometry[:b.count]
	var descendants []DescendantNode
	var properties []PropertyNode
	if settings.PackNodes {
		descendants = b.descendants[:b.count]
	}
	if b.hasProperties {
		properties = b.properties[:b.count]
	}

	return &TreeData{
		Bounds:        settings.Bounds,
		Geometry:      geometry,
		Descendants:   descendants,
		Properties:    properties,
		Packed:        settings.PackNodes,
		HasProperties: b.hasProperties,
		CurrMaxDepth:  b.maxDepth,
	}, nil
}

type builderState struct {
	settings      BuildSettings
	lookup        *voxel.VoxelLookup
	treeOrigin    [3]int32
	capBound      int64
	geometry      []PackedData
	descendants   []DescendantNode
	properties    []PropertyNode
	hasProperties bool
	count         int
	maxDepth      int
}

type childResult struct {
	index  int32
	depth  int
	isLeaf bool
	leaf   PackedData
	box    Box
}

// grow ensures the geometry (and, when present, descendant/property)
// arrays have at least `target` slots, doubling capacity up to capBound.
// Returns ErrOutOfMemory if target exceeds capBound.
func (b *builderState) grow(target int) error {
	if int64(target) > b.capBound {
		return fmt.Errorf("%w: need %d nodes, bound is %d", ErrOutOfMemory, target, b.capBound)
	}
	if target <= len(b.geometry) {
		return nil
	}
	newCap := int64(len(b.geometry)) * 2
	if newCap < int64(target) {
		newCap = int64(target)
	}
	if newCap > b.capBound {
		newCap = b.capBound
	}

	grown := make([]PackedData, newCap)
	copy(grown, b.geometry)
	b.geometry = grown

	if b.settings.PackNodes {
		grownD := make([]DescendantNode, newCap)
		copy(grownD, b.descendants)
		b.descendants = grownD
	}
	if b.hasProperties {
		grownP := make([]PropertyNode, newCap)
		copy(grownP, b.properties)
		b.properties = grownP
	}
	return nil
}

// splitNode performs one iteration of the builder: choose a split for the
// node at f, write it, and return its two children (each either a fully
// resolved leaf or a not-yet-processed internal node to push back onto the
// stack).
func (b *builderState) splitNode(f frame) ([2]childResult, error) {
	var result [2]childResult

	rec, axis := b.chooseSplit(f.cuboid)
	offset := rec.Plane.Offset

	boxMax := f.cuboid.Max()
	if offset <= f.cuboid.Origin[axis] || offset >= boxMax[axis] {
		return result, fmt.Errorf("%w: split offset %d outside node extent [%d,%d)", ErrInvalidInput, offset, f.cuboid.Origin[axis], boxMax[axis])
	}
	if offset < MinPlaneOffset || offset > MaxPlaneOffset {
		return result, fmt.Errorf("%w: split offset %d outside packable range", ErrInvalidInput, offset)
	}

	nearBox, farBox := splitCuboid(f.cuboid, axis, offset)
	boxes := [2]Box{nearBox, farBox}

	if err := b.grow(int(f.index) + 1); err != nil {
		return result, err
	}
	b.geometry[f.index] = MakeInternal(axis, uint16(offset))

	var childIdx [2]int32
	if b.settings.PackNodes {
		childBase := b.count
		if err := b.grow(childBase + 2); err != nil {
			return result, err
		}
		b.count += 2
		b.descendants[f.index] = DescendantNode{LeftChildIndex: int32(childBase)}
		childIdx[0] = int32(childBase)
		childIdx[1] = int32(childBase + 1)
	} else {
		childIdx[0] = 2*f.index + 1
		childIdx[1] = 2*f.index + 2
		need := int(childIdx[1]) + 1
		if err := b.grow(need); err != nil {
			return result, err
		}
		if need > b.count {
			b.count = need
		}
	}

	for i := 0; i < 2; i++ {
		cls := ClassifyBox(b.lookup, b.treeOrigin, boxes[i])
		childDepth := f.depth + 1
		result[i] = childResult{index: childIdx[i], depth: childDepth, box: boxes[i]}
		if cls.ForcesLeaf(childDepth, b.settings.MaxDepth, b.settings.MandatoryLeafVolume) {
			result[i].isLeaf = true
			result[i].leaf = cls.PackedLeaf()
		}
	}

	return result, nil
}

// chooseSplit picks the axis and offset for box per the optimization
// level: exhaustive evaluates all three axes with longest-run-bias and
// keeps the best score; anything else picks the single longest axis.
func (b *builderState) chooseSplit(box Box) (SplitRecommendation, geom.Axis) {
	if b.settings.OptimizationLevel == OptimizeExhaustive {
		axes := [3]geom.Axis{geom.AxisX, geom.AxisY, geom.AxisZ}
		best := LongestRunBiasOffset(ComputeAxisSummary(b.lookup, b.treeOrigin, box, axes[0]))
		bestAxis := axes[0]
		for _, axis := range axes[1:] {
			rec := LongestRunBiasOffset(ComputeAxisSummary(b.lookup, b.treeOrigin, box, axis))
			if rec.Score > best.Score {
				best = rec
				bestAxis = axis
			}
		}
		return best, bestAxis
	}

	axis := LongestAxis(box)
	summary := ComputeAxisSummary(b.lookup, b.treeOrigin, box, axis)
	return LongestRunBiasOffset(summary), axis
}

// splitCuboid divides box along axis at offset (tree-local, same frame as
// box.Origin), producing the near (lower) and far (upper) children.
func splitCuboid(box Box, axis geom.Axis, offset int32) (near, far Box) {
	near = box
	far = box

	near.Extent[axis] = offset - box.Origin[axis]
	far.Origin[axis] = offset
	far.Extent[axis] = box.Max()[axis] - offset
	return near, far
}
