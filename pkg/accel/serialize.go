package accel

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxLoadableNodes bounds the node count accepted by Load, mirroring the
// source's ARBITRARY_TREE_SIZE_LIMIT sanity check against a corrupt or
// hostile header before any allocation happens.
const maxLoadableNodes = 1 << 25

// fileVersion is written into every header's Version field and checked on
// load; bumping it is a signal that the on-disk layout changed shape.
var fileVersion = [3]byte{1, 0, 0}

// header is the fixed-size preamble written ahead of the packed node
// stream: a version triple, one padding byte to align the following
// fields, a tree id, the node count, and the tree's world-space bounds.
// Every field is big-endian, matching the node stream that follows it.
type header struct {
	Version   [3]byte
	_         [1]byte
	TreeID    uint32
	NodeCount uint32
	Bounds    Box
}

// Save writes tree in the packed on-disk format: the header above followed
// by tree.NodeCount() PackedData values in depth-first stream order (each
// node followed by its left subtree, then its right subtree), which is not
// the order Build stores them in memory. Save only supports packed trees; the unpacked layout has no
// on-disk form (ErrUnsupported), same as Load.
func Save(w io.Writer, tree *TreeData, treeID uint32) error {
	if !tree.Packed {
		return fmt.Errorf("%w: cannot save a non-packed tree", ErrUnsupported)
	}
	if len(tree.Geometry) > maxLoadableNodes {
		return fmt.Errorf("%w: node count %d exceeds %d", ErrInvalidInput, len(tree.Geometry), maxLoadableNodes)
	}

	h := header{
		Version:   fileVersion,
		TreeID:    treeID,
		NodeCount: uint32(len(tree.Geometry)),
		Bounds:    tree.Bounds,
	}
	if err := binary.Write(w, binary.BigEndian, h); err != nil {
		return fmt.Errorf("accel: writing header: %w", err)
	}

	stream, err := streamOrder(tree)
	if err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, stream); err != nil {
		return fmt.Errorf("accel: writing node stream: %w", err)
	}
	return nil
}

// streamOrder reconstructs the depth-first, sibling-adjacent node stream
// Load expects from tree's random-access geometry/descendant arrays: a
// preorder walk where every internal node is immediately followed by its
// full left subtree and then its full right subtree. This is the inverse
// of Load's stack-pairing reconstruction.
func streamOrder(tree *TreeData) ([]PackedData, error) {
	out := make([]PackedData, 0, len(tree.Geometry))
	var walk func(idx int32) error
	walk = func(idx int32) error {
		if int(idx) >= len(tree.Geometry) {
			return fmt.Errorf("%w: node index %d out of range", ErrInvalidInput, idx)
		}
		node := tree.Geometry[idx]
		out = append(out, node)
		if node.IsLeaf() {
			return nil
		}
		if err := walk(tree.LeftChild(idx)); err != nil {
			return err
		}
		return walk(tree.RightChild(idx))
	}
	if len(tree.Geometry) > 0 {
		if err := walk(0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// streamNode is a node as seen mid-stream during Load, tagging it with
// enough bookkeeping to compute its final packed-array slot once its
// sibling has also arrived.
type streamNode struct {
	data           PackedData
	streamIndex    int32
	numPriorLeaves int32
	targetIndex    int32
}

// siblingPair accumulates up to two streamNodes that will land at adjacent
// output slots (2k, 2k+1). It mirrors the source's StackPair: a stream of
// nodes doesn't arrive pre-grouped by sibling, so pairs are assembled as
// members trickle in and resolved once both are present.
type siblingPair struct {
	members     [2]streamNode
	numFilled   int
	outputIndex int32
}

// Load reads a packed VKDT previously written by Save. It reconstructs the
// random-access Geometry/Descendants arrays from the depth-first stream
// using the same two-pass stack-pairing approach the writer's sibling
// grouping requires: a node's final array slot can only be computed once
// its sibling has also been read, so incomplete pairs are held on a stack
// until both members (and, transitively, their full subtrees) have
// arrived.
func Load(r io.Reader) (*TreeData, error) {
	var h header
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("accel: reading header: %w", err)
	}
	if h.Version != fileVersion {
		return nil, fmt.Errorf("%w: unsupported tree version %v", ErrUnsupported, h.Version)
	}
	if h.NodeCount > maxLoadableNodes {
		return nil, fmt.Errorf("%w: node count %d exceeds %d", ErrInvalidInput, h.NodeCount, maxLoadableNodes)
	}

	nodeCount := int(h.NodeCount)
	geometry := make([]PackedData, nodeCount)
	descendants := make([]DescendantNode, nodeCount)

	if nodeCount == 0 {
		return &TreeData{Bounds: h.Bounds, Geometry: geometry, Descendants: descendants, Packed: true}, nil
	}

	stack := []siblingPair{{}}
	maxDepth := 0
	numPriorLeaves := int32(0)

	for n := int32(0); n < int32(nodeCount); n++ {
		if len(stack) == 0 {
			return nil, fmt.Errorf("%w: node stream underflows its pairing stack", ErrInvalidInput)
		}

		var raw uint16
		if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
			return nil, fmt.Errorf("accel: reading node %d: %w", n, err)
		}
		data := PackedData(raw)

		targetIndex := int32(InvalidNodeIndex)
		if !data.IsLeaf() {
			targetIndex = 0 // filled in once its subtree resolves below
		}

		top := &stack[len(stack)-1]
		activeIndex := top.numFilled
		top.members[activeIndex] = streamNode{data: data, streamIndex: n, numPriorLeaves: numPriorLeaves, targetIndex: targetIndex}
		top.numFilled++
		if activeIndex == 0 {
			// Root never has a sibling, so this shift is always safe.
			lhs := top.members[0]
			top.outputIndex = (lhs.streamIndex-lhs.numPriorLeaves)*2 - 1
		}

		if data.IsLeaf() {
			numPriorLeaves++
		} else {
			stack = append(stack, siblingPair{})
			if len(stack) > maxDepth {
				maxDepth = len(stack)
			}
		}

		for len(stack) > 0 && stack[len(stack)-1].numFilled == 2 {
			filled := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			// The root's own pair never fills past 1 member (it has no
			// sibling), so this pop can never empty the stack.
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: node stream popped past the root pair", ErrInvalidInput)
			}

			parent := &stack[len(stack)-1]
			activeIndex = parent.numFilled - 1
			if activeIndex < 0 {
				return nil, fmt.Errorf("%w: pushed a pair over an empty pair", ErrInvalidInput)
			}
			active := &parent.members[activeIndex]
			if !active.data.IsLeaf() {
				active.targetIndex = filled.outputIndex
			}

			if int(filled.outputIndex)+1 >= nodeCount {
				return nil, fmt.Errorf("%w: pair output index %d out of range", ErrInvalidInput, filled.outputIndex)
			}
			for i := 0; i < 2; i++ {
				idx := filled.outputIndex + int32(i)
				geometry[idx] = filled.members[i].data
				descendants[idx] = DescendantNode{LeftChildIndex: filled.members[i].targetIndex}
			}
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: node stream left %d unresolved pairs", ErrInvalidInput, len(stack))
	}
	root := stack[0].members[0]
	geometry[0] = root.data
	descendants[0] = DescendantNode{LeftChildIndex: root.targetIndex}

	return &TreeData{
		Bounds:       h.Bounds,
		Geometry:     geometry,
		Descendants:  descendants,
		Packed:       true,
		CurrMaxDepth: maxDepth,
	}, nil
}
