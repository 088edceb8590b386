package pathtracer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/corvusvox/voxelcore/pkg/voxel"
)

// LightColor is the color path transport reports when a path terminates on
// a voxel of Kind voxel.LightEmitter.
var LightColor = mgl32.Vec3{0.5000, 1.0000, 0.8000}

// roughness is how much a bounce off a material's surface is randomized
// versus mirror-reflected; 0 is a perfect mirror, 1 is fully diffuse.
var roughness = map[voxel.Kind]float32{
	voxel.Air:      0.00,
	voxel.Grass:    0.80,
	voxel.Dirt:     0.80,
	voxel.Stone:    0.85,
	voxel.Concrete: 0.95,
	voxel.Metal:    0.02,
}

// albedo is the diffuse reflectance of a material, applied once per bounce
// along a path that eventually reaches a light.
var albedo = map[voxel.Kind]mgl32.Vec3{
	voxel.Grass:    {0.25, 0.65, 0.20},
	voxel.Dirt:     {0.40, 0.28, 0.16},
	voxel.Stone:    {0.55, 0.55, 0.55},
	voxel.Concrete: {0.70, 0.70, 0.68},
	voxel.Metal:    {0.80, 0.80, 0.85},
}

// Roughness returns the surface roughness of kind, 1 (fully diffuse) for
// anything not explicitly tabulated.
func Roughness(kind voxel.Kind) float32 {
	if r, ok := roughness[kind]; ok {
		return r
	}
	return 1
}

// Albedo returns the diffuse color of kind, white for anything not
// explicitly tabulated.
func Albedo(kind voxel.Kind) mgl32.Vec3 {
	if c, ok := albedo[kind]; ok {
		return c
	}
	return mgl32.Vec3{1, 1, 1}
}
