// Package accel implements the Voxel KD-Tree (VKDT): the packed geometry
// array, the heuristic builder, and the stack-based traversal.
package accel

import "github.com/corvusvox/voxelcore/pkg/geom"

// PackedData is the 16-bit storage unit of the VKDT geometry array. Its low
// two bits select one of four variants (three split axes, one leaf); the
// remaining 14 bits are interpreted differently depending on that variant,
// a classic tagged-union-of-bitfields packed into a single integer so no
// code path can read a leaf's palette index as a split offset or vice
// versa.
type PackedData uint16

const (
	maskNodeType    PackedData = 0b0000_0000_0000_0011
	maskPlaneOffset PackedData = 0b1111_1111_1111_1100
	flagLeafEmpty   PackedData = 0b0000_0000_0000_0100
	flagLeafMixed   PackedData = 0b0000_0000_0000_1000
	maskLeafDesc    PackedData = 0b0000_0000_0000_1111
	maskPercentFull PackedData = 0b0111_1111_0000_0000
	maskPaletteIdx  PackedData = 0b1111_1111_0000_0000

	shiftPlaneOffset = 2
	shiftPercentFull = 8
	shiftPaletteIdx  = 8
)

const (
	valuePlaneX PackedData = 0b00
	valuePlaneY PackedData = 0b01
	valuePlaneZ PackedData = 0b10
	valueLeaf   PackedData = 0b11

	// valueHomogeneousLeaf matches maskLeafDesc when a leaf has neither the
	// empty nor the mixed-type flag set: a solid leaf of one material.
	valueHomogeneousLeaf = valueLeaf
	// valueEmptyLeaf is leaf | empty.
	valueEmptyLeaf = valueLeaf | flagLeafEmpty
)

// ValueSolidMixedLeaf is the distinguished pattern for "completely solid,
// but more than one material": leaf | mixed, with PercentFull pinned to
// 100. A genuine air/solid mixed leaf can never reach 100 (its solid count
// is strictly less than the leaf's volume, so floor(solidFraction*100) caps
// at 99), which is what makes 100 safe to reserve here.
const ValueSolidMixedLeaf PackedData = valueLeaf | flagLeafMixed | (100 << shiftPercentFull)

// MinPlaneOffset and MaxPlaneOffset bound the valid tree-local split offset;
// 0 is reserved to mean "invalid".
const (
	InvalidPlaneOffset = 0
	MinPlaneOffset     = 1
	MaxPlaneOffset     = (1 << 14) - 1
)

// IsLeaf reports whether p is a leaf node.
func (p PackedData) IsLeaf() bool {
	return p&maskNodeType == valueLeaf
}

// Axis returns the split axis. Only meaningful when !IsLeaf().
func (p PackedData) Axis() geom.Axis {
	switch p & maskNodeType {
	case valuePlaneY:
		return geom.AxisY
	case valuePlaneZ:
		return geom.AxisZ
	default:
		return geom.AxisX
	}
}

// PlaneOffset returns the tree-local split offset. Only meaningful when
// !IsLeaf().
func (p PackedData) PlaneOffset() uint16 {
	return uint16((p & maskPlaneOffset) >> shiftPlaneOffset)
}

// IsEmptyLeaf reports whether p is a leaf with no solid voxels.
func (p PackedData) IsEmptyLeaf() bool {
	return p&maskLeafDesc == PackedData(valueEmptyLeaf)
}

// IsHomogeneousLeaf reports whether p is a leaf that is entirely one solid
// material.
func (p PackedData) IsHomogeneousLeaf() bool {
	return p&maskLeafDesc == PackedData(valueHomogeneousLeaf)
}

// IsSolidMixedLeaf reports whether p is the distinguished "fully solid, but
// mixed materials" leaf.
func (p PackedData) IsSolidMixedLeaf() bool {
	return p == ValueSolidMixedLeaf
}

// IsPartialMixedLeaf reports whether p is an ordinary solid/air mixed leaf
// (neither empty, homogeneous, nor the solid-mixed sentinel).
func (p PackedData) IsPartialMixedLeaf() bool {
	return p.IsLeaf() && p&flagLeafMixed != 0 && !p.IsSolidMixedLeaf()
}

// PaletteIndex returns the material index of a homogeneous leaf. Only
// meaningful when IsHomogeneousLeaf().
func (p PackedData) PaletteIndex() uint8 {
	return uint8((p & maskPaletteIdx) >> shiftPaletteIdx)
}

// PercentSolid returns the percent-solid field of a partial mixed leaf (in
// [1,99]). Only meaningful when IsPartialMixedLeaf().
func (p PackedData) PercentSolid() uint8 {
	return uint8((p & maskPercentFull) >> shiftPercentFull)
}

// MakeInternal packs an internal split node. offset must be in
// [MinPlaneOffset, MaxPlaneOffset].
func MakeInternal(axis geom.Axis, offset uint16) PackedData {
	var axisBits PackedData
	switch axis {
	case geom.AxisX:
		axisBits = valuePlaneX
	case geom.AxisY:
		axisBits = valuePlaneY
	case geom.AxisZ:
		axisBits = valuePlaneZ
	}
	return axisBits | (PackedData(offset) << shiftPlaneOffset)
}

// MakeEmptyLeaf packs a leaf containing no solid voxels.
func MakeEmptyLeaf() PackedData {
	return PackedData(valueEmptyLeaf)
}

// MakeHomogeneousLeaf packs a leaf that is entirely one solid material.
func MakeHomogeneousLeaf(paletteIndex uint8) PackedData {
	return PackedData(valueHomogeneousLeaf) | (PackedData(paletteIndex) << shiftPaletteIdx)
}

// MakeSolidMixedLeaf packs the distinguished "fully solid, mixed material"
// leaf.
func MakeSolidMixedLeaf() PackedData {
	return ValueSolidMixedLeaf
}

// MakeMixedLeaf packs an ordinary solid/air mixed leaf. percentSolid must
// be in [1,99].
func MakeMixedLeaf(percentSolid uint8) PackedData {
	return PackedData(valueLeaf) | flagLeafMixed | (PackedData(percentSolid) << shiftPercentFull)
}
