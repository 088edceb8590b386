package pathtracer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/corvusvox/voxelcore/pkg/geom"
)

// RayGenerator produces a camera ray for any pixel of a fixed-size image,
// using a front/right/up basis like the interactive renderer's Camera, but
// derived from an origin and a look-at target (with +Y as world up) and
// frozen for the duration of a render rather than updated per frame.
type RayGenerator struct {
	origin mgl32.Vec3
	front  mgl32.Vec3
	right  mgl32.Vec3
	up     mgl32.Vec3

	imageWidth, imageHeight int
	halfHeightAtUnitDist    float32
	aspect                  float32
}

// NewRayGenerator builds a generator for a camera at origin looking toward
// target, with the given vertical field of view in degrees and output
// image dimensions.
func NewRayGenerator(origin, target mgl32.Vec3, fovDegrees float32, imageWidth, imageHeight int) RayGenerator {
	worldUp := mgl32.Vec3{0, 1, 0}
	front := target.Sub(origin).Normalize()
	right := front.Cross(worldUp).Normalize()
	up := right.Cross(front).Normalize()

	halfHeight := float32(math.Tan(float64(mgl32.DegToRad(fovDegrees)) / 2))

	return RayGenerator{
		origin:               origin,
		front:                front,
		right:                right,
		up:                   up,
		imageWidth:           imageWidth,
		imageHeight:          imageHeight,
		halfHeightAtUnitDist: halfHeight,
		aspect:               float32(imageWidth) / float32(imageHeight),
	}
}

// RayFromPixel returns the undistorted ray through the center of pixel
// (x,y), with (0,0) at the image's top-left corner.
func (g RayGenerator) RayFromPixel(x, y int) geom.Ray {
	ndcX := (float32(x)+0.5)/float32(g.imageWidth)*2 - 1
	ndcY := 1 - (float32(y)+0.5)/float32(g.imageHeight)*2

	halfWidth := g.halfHeightAtUnitDist * g.aspect
	dir := g.front.
		Add(g.right.Mul(ndcX * halfWidth)).
		Add(g.up.Mul(ndcY * g.halfHeightAtUnitDist))

	return geom.Ray{Origin: g.origin, Dir: dir.Normalize()}
}
