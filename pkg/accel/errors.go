package accel

import "errors"

// Sentinel errors matching spec §7's error kinds for this package.
var (
	// ErrInvalidInput covers a build requested with MaxDepth above its
	// limit, or a traversal stack too small for the tree's depth.
	ErrInvalidInput = errors.New("accel: invalid input")

	// ErrOutOfMemory is returned when the builder's array growth would
	// exceed the maximum node count derivable from MaxDepth; the partial
	// tree is discarded.
	ErrOutOfMemory = errors.New("accel: geometry array growth exceeded capacity")

	// ErrUnsupported covers the unimplemented non-packed load path.
	ErrUnsupported = errors.New("accel: unsupported tree encoding")
)
