package pathtracer

import (
	"math/rand"

	"github.com/corvusvox/voxelcore/pkg/accel"
	"github.com/corvusvox/voxelcore/pkg/dda"
	"github.com/corvusvox/voxelcore/pkg/geom"
	"github.com/corvusvox/voxelcore/pkg/voxel"
)

const (
	tinyFloat    = 0.00001
	bounceOffset = 0.001

	// ddaFollowupRange bounds how far past an ambiguous VKDT leaf hit the
	// DDA follow-up walks looking for the actual solid voxel, measured in
	// world voxel units along the ray.
	ddaFollowupRange = 64
)

// faceAxis recovers the axis a Face was computed from (Face is axis*2 +
// sign).
func faceAxis(f geom.Face) geom.Axis {
	return geom.Axis(int(f) / 2)
}

// isLightTerminated reports whether hit ends a path: a miss (skylight), a
// light-emitting voxel, or an ambiguous hit that DDA follow-up could not
// resolve into either a concrete voxel or open air.
func isLightTerminated(hit geom.Intersection) bool {
	if hit.Kind == geom.Miss {
		return true
	}
	if hit.Kind == geom.HitChunkVoxel && voxel.Kind(hit.PaletteIdx) == voxel.LightEmitter {
		return true
	}
	return hit.Kind == geom.HitChunkVoxelUnknownType || hit.Kind == geom.PossibleChunkVoxel
}

// resolveAmbiguous follows up a SolidMixed or PartialMixed VKDT leaf hit
// with a DDA walk to find the exact voxel and material, starting from the
// leaf's entry point. If the DDA walk finds nothing solid before
// ddaFollowupRange is exhausted, the original ambiguous hit is returned
// unchanged so the caller can treat it as an unresolved termination.
func resolveAmbiguous(lookup *voxel.VoxelLookup, ray geom.Ray, ambiguous geom.Intersection) geom.Intersection {
	resolved := dda.Traverse(lookup, ray, ambiguous.T, ambiguous.T+ddaFollowupRange, faceAxis(ambiguous.Face))
	if resolved.Kind == geom.HitChunkVoxel {
		return resolved
	}
	return ambiguous
}

// nearestHit runs both the VKDT traversal and chunk DDA over the ray and
// keeps whichever reports the smaller T. The VKDT traversal handles the
// common case (chunks fully captured by the tree); the direct chunk DDA
// catches ray segments the tree's bounds don't cover.
func nearestHit(tree *accel.TreeData, lookup *voxel.VoxelLookup, stack []accel.StackFrame, ray geom.Ray) geom.Intersection {
	best := geom.NewMiss()

	if tree != nil {
		if hit, err := accel.Traverse(tree, ray, stack); err == nil {
			switch hit.Kind {
			case geom.HitChunkVoxel:
				best = hit
			case geom.HitChunkVoxelUnknownType, geom.PossibleChunkVoxel:
				best = resolveAmbiguous(lookup, ray, hit)
			}
		}
	}

	treeExit := float32(0)
	if tree != nil {
		treeExit = treeExitT(tree, ray)
	}
	ddaHit := dda.Traverse(lookup, ray, 0, maxFloat(treeExit, ddaFollowupRange), geom.AxisX)
	if ddaHit.Kind == geom.HitChunkVoxel && (!best.Hit() || ddaHit.T < best.T) {
		best = ddaHit
	}

	return best
}

func maxFloat(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func treeExitT(tree *accel.TreeData, ray geom.Ray) float32 {
	origin := [3]float32{float32(tree.Bounds.Origin[0]), float32(tree.Bounds.Origin[1]), float32(tree.Bounds.Origin[2])}
	max := tree.Bounds.Max()
	upper := [3]float32{float32(max[0]), float32(max[1]), float32(max[2])}
	hit := geom.SlabIntersect(ray, origin, upper)
	if !hit.Hit {
		return 0
	}
	return hit.TMax
}

// TracePaths traces one ray per entry of rays through the scene,
// bouncing according to each hit surface's roughness, and fills buffer
// with the resulting vertex data. portal may be nil to disable portal
// teleportation. stack is caller-owned VKDT traversal scratch (see
// accel.NewTraversalStack).
func TracePaths(tree *accel.TreeData, lookup *voxel.VoxelLookup, portal *Portal, rays []geom.Ray, buffer *PathBuffer, stack []accel.StackFrame, r *rand.Rand) {
	buffer.Reset()

	for rayIndex, initialRay := range rays {
		currRay := initialRay
		terminatedAtLight := false
		pathLen := 0
		pathStart := buffer.writeIndex

		for pathLen < buffer.MaxPathLen {
			var vertex PathVertex
			vertex.SourceRay = currRay

			hit := nearestHit(tree, lookup, stack, currRay)

			if portal != nil {
				if portalHit, site := FindPortalHit(currRay, *portal); site >= 0 {
					if !hit.Hit() || portalHit.tEnter < hit.T {
						vertex.Kind = geom.HitCollider
						vertex.THit = portalHit.tEnter
						vertex.HitNormal = currRay.At(portalHit.tEnter).Sub(portal.Locations[site]).Normalize()
						buffer.Vertices[buffer.writeIndex] = vertex
						buffer.writeIndex++
						currRay = Teleport(currRay, portalHit, *portal, site)
						pathLen++
						continue
					}
				}
			}

			vertex.Kind = hit.Kind
			vertex.THit = hit.T
			if hit.Kind == geom.HitChunkVoxel {
				vertex.MaterialIndex = voxel.Kind(hit.PaletteIdx)
			}

			if isLightTerminated(hit) {
				terminatedAtLight = true
				buffer.Vertices[buffer.writeIndex] = vertex
				buffer.writeIndex++
				pathLen++
				break
			}
			if hit.T < tinyFloat {
				break
			}

			normal := hit.Face.Normal()
			rough := Roughness(voxel.Kind(hit.PaletteIdx))
			newDir := BounceDir(r, currRay.Dir, normal, rough)

			vertex.HitNormal = normal
			buffer.Vertices[buffer.writeIndex] = vertex
			buffer.writeIndex++

			hitPos := currRay.At(hit.T)
			currRay = geom.Ray{Origin: hitPos.Add(normal.Mul(bounceOffset)), Dir: newDir}
			pathLen++
		}

		shouldRewind := !terminatedAtLight && buffer.CompressFailedPaths
		numFilled := pathLen
		if shouldRewind {
			buffer.writeIndex = pathStart
			numFilled = 0
		}

		buffer.Results[rayIndex] = PathResult{NumFilled: numFilled, IsTerminatedAtLight: terminatedAtLight}
	}
}
