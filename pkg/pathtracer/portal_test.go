package pathtracer_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/corvusvox/voxelcore/pkg/geom"
	"github.com/corvusvox/voxelcore/pkg/pathtracer"
)

func twoSitePortal() pathtracer.Portal {
	return pathtracer.Portal{
		Locations: [2]mgl32.Vec3{{0, 0, 0}, {100, 0, 0}},
		Radius:    5,
	}
}

// TestFindPortalHit_EntersNearestSite exercises the same two-site, radius-5
// portal configuration as the teleportation scenario, with a ray that
// approaches the first site from outside it (as a real bounce ray would,
// rather than starting already inside it).
func TestFindPortalHit_EntersNearestSite(t *testing.T) {
	portal := twoSitePortal()
	ray := geom.Ray{Origin: mgl32.Vec3{-10, 0, 0}, Dir: mgl32.Vec3{1, 0, 0}}

	_, site := pathtracer.FindPortalHit(ray, portal)
	require.Equal(t, 0, site)
}

// TestFindPortalHit_MissesWhenBothSitesAreBehind confirms a ray whose only
// crossings of either site lie at negative t (both sites behind the ray
// origin) reports no portal hit.
func TestFindPortalHit_MissesWhenBothSitesAreBehind(t *testing.T) {
	portal := twoSitePortal()
	ray := geom.Ray{Origin: mgl32.Vec3{-10, 0, 0}, Dir: mgl32.Vec3{-1, 0, 0}}

	_, site := pathtracer.FindPortalHit(ray, portal)
	require.Equal(t, -1, site)
}

// TestTeleport_RelocatesPastTheOtherSite models the portal transport step: a
// ray that entered site 0 and crossed all the way through it exits at the
// corresponding point beyond site 1, offset by the vector between the two
// sites, direction unchanged. The ray travels straight through both sphere
// centers (distance 100 apart along X, radius 5), so it crosses a full
// diameter inside site 0 before exiting at x=5, ten units past its entry.
func TestTeleport_RelocatesPastTheOtherSite(t *testing.T) {
	portal := twoSitePortal()
	ray := geom.Ray{Origin: mgl32.Vec3{-10, 0, 0}, Dir: mgl32.Vec3{1, 0, 0}}

	hit, site := pathtracer.FindPortalHit(ray, portal)
	require.Equal(t, 0, site)

	out := pathtracer.Teleport(ray, hit, portal, site)
	require.InDelta(t, 105, out.Origin.X(), 1e-3)
	require.InDelta(t, 0, out.Origin.Y(), 1e-6)
	require.InDelta(t, 0, out.Origin.Z(), 1e-6)
	require.Equal(t, ray.Dir, out.Dir)
}
