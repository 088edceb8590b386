package pathtracer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/corvusvox/voxelcore/pkg/geom"
)

// Portal is a pair of linked spherical sites: a ray entering one site exits
// the other, offset by the vector between their centers but keeping its
// direction unchanged.
type Portal struct {
	Locations [2]mgl32.Vec3
	Radius    float32
}

// sphereHit is the two parametric crossing points of a ray through a
// sphere, if any.
type sphereHit struct {
	valid    bool
	tEnter   float32
	tExit    float32
}

// intersectSphere solves the ray/sphere quadratic directly rather than via
// the slab method used for AABBs, since a portal site has no axis-aligned
// structure to exploit.
func intersectSphere(r geom.Ray, center mgl32.Vec3, radius float32) sphereHit {
	oc := r.Origin.Sub(center)
	a := r.Dir.Dot(r.Dir)
	b := 2 * oc.Dot(r.Dir)
	c := oc.Dot(oc) - radius*radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return sphereHit{}
	}

	sqrtDisc := sqrt32(discriminant)
	t0 := (-b - sqrtDisc) / (2 * a)
	t1 := (-b + sqrtDisc) / (2 * a)
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return sphereHit{valid: true, tEnter: t0, tExit: t1}
}

// FindPortalHit checks both of portal's sites and returns the nearest
// valid crossing, plus which site index was struck (-1 if neither was).
func FindPortalHit(r geom.Ray, portal Portal) (sphereHit, int) {
	best := sphereHit{}
	bestSite := -1
	for site := 0; site < 2; site++ {
		hit := intersectSphere(r, portal.Locations[site], portal.Radius)
		if !hit.valid || hit.tEnter < 0 {
			continue
		}
		if bestSite == -1 || hit.tEnter < best.tEnter {
			best = hit
			bestSite = site
		}
	}
	return best, bestSite
}

// Teleport relocates a ray that entered site siteIndex of portal, exiting
// the opposite site with direction unchanged.
func Teleport(r geom.Ray, hit sphereHit, portal Portal, siteIndex int) geom.Ray {
	otherSite := 1 - siteIndex
	offset := portal.Locations[otherSite].Sub(portal.Locations[siteIndex])
	exitPoint := r.At(hit.tExit).Add(offset)
	return geom.Ray{Origin: exitPoint, Dir: r.Dir}
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
