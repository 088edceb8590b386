package accel

import "github.com/corvusvox/voxelcore/pkg/voxel"

// LeafCategory names which of the four leaf shapes a candidate child falls
// into.
type LeafCategory int

const (
	CategoryEmpty LeafCategory = iota
	CategoryHomogeneousSolid
	CategorySolidMixed
	CategoryPartialMixed
)

// Classification is the result of scanning a candidate child's full
// content.
type Classification struct {
	Category     LeafCategory
	SolidCount   int64
	Volume       int64
	Material     voxel.Kind // valid when Category == CategoryHomogeneousSolid
	PercentSolid uint8      // valid when Category == CategoryPartialMixed
}

// ClassifyBox scans every voxel of box (tree-local) and determines which
// leaf shape it would become: empty (all air), homogeneous solid (all
// solid, one material), solid-mixed (all solid, several materials), or
// partial (a genuine mix of solid and air).
func ClassifyBox(lookup *voxel.VoxelLookup, treeOrigin [3]int32, box Box) Classification {
	volume := box.Volume()

	var solidCount int64
	allSameMaterial := true
	var firstMaterial voxel.Kind
	sawAnySolid := false

	ox, oy, oz := box.Origin[0], box.Origin[1], box.Origin[2]
	ex, ey, ez := box.Extent[0], box.Extent[1], box.Extent[2]

	for z := int32(0); z < ez; z++ {
		for y := int32(0); y < ey; y++ {
			for x := int32(0); x < ex; x++ {
				kind := lookup.VoxelAt(
					treeOrigin[0]+ox+x,
					treeOrigin[1]+oy+y,
					treeOrigin[2]+oz+z,
				)
				if kind.IsSolid() {
					solidCount++
					if !sawAnySolid {
						firstMaterial = kind
						sawAnySolid = true
					} else if kind != firstMaterial {
						allSameMaterial = false
					}
				}
			}
		}
	}

	c := Classification{SolidCount: solidCount, Volume: volume}
	switch {
	case solidCount == 0:
		c.Category = CategoryEmpty
	case solidCount == volume && allSameMaterial:
		c.Category = CategoryHomogeneousSolid
		c.Material = firstMaterial
	case solidCount == volume:
		c.Category = CategorySolidMixed
	default:
		c.Category = CategoryPartialMixed
		fraction := float64(solidCount) / float64(volume)
		percent := int(fraction * 100)
		if percent < 1 {
			percent = 1
		}
		if percent > 99 {
			percent = 99
		}
		c.PercentSolid = uint8(percent)
	}
	return c
}

// PackedLeaf converts a classification into its packed leaf encoding.
func (c Classification) PackedLeaf() PackedData {
	switch c.Category {
	case CategoryEmpty:
		return MakeEmptyLeaf()
	case CategoryHomogeneousSolid:
		return MakeHomogeneousLeaf(uint8(c.Material))
	case CategorySolidMixed:
		return MakeSolidMixedLeaf()
	default:
		return MakeMixedLeaf(c.PercentSolid)
	}
}

// ForcesLeaf reports whether a candidate child of this classification, at
// the given depth and with the given mandatory-leaf-volume setting, must
// terminate recursion rather than be split further.
func (c Classification) ForcesLeaf(depth, maxDepth int, mandatoryLeafVolume int64) bool {
	switch c.Category {
	case CategoryEmpty, CategoryHomogeneousSolid, CategorySolidMixed:
		return true
	}
	if c.Volume <= mandatoryLeafVolume {
		return true
	}
	return depth == maxDepth-1
}
