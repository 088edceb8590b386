package pathtracer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/corvusvox/voxelcore/pkg/geom"
)

var colorBlack = mgl32.Vec3{0, 0, 0}

// unresolvedHitColor marks a path that ended on an ambiguous hit DDA
// follow-up couldn't resolve, deliberately far outside the displayable
// 0-1 range so it stands out in a preview instead of blending in.
var unresolvedHitColor = mgl32.Vec3{1000, 0, 0}

// DetermineColors gathers the final color of every path recorded in
// buffer. Colors may exceed 1.0 (lights are allowed to be arbitrarily
// bright); clamping to a displayable range is the caller's job at the
// point color data is written out, not here.
func DetermineColors(buffer *PathBuffer, settings RenderSettings) []mgl32.Vec3 {
	colors := make([]mgl32.Vec3, len(buffer.Results))

	readStart := 0
	for pathIndex, result := range buffer.Results {
		color := colorBlack

		if result.IsTerminatedAtLight && result.NumFilled > 0 {
			path := buffer.Vertices[readStart : readStart+result.NumFilled]
			end := path[len(path)-1]

			switch {
			case end.Kind == geom.HitChunkVoxel:
				color = LightColor
			case end.Kind == geom.Miss:
				toSky := end.SourceRay.Dir
				alignment := clamp01(toSky.Dot(settings.SunDirection))
				color = settings.SkyBrightness.Add(settings.SunBrightness.Mul(float32(math.Pow(float64(alignment), 128))))
			default:
				color = unresolvedHitColor
			}

			for v := 0; v < len(path)-1; v++ {
				vertex := path[v]
				if vertex.Kind == geom.HitCollider {
					continue
				}
				color = hadamard(Albedo(vertex.MaterialIndex), color)
			}
		}

		readStart += result.NumFilled
		colors[pathIndex] = color
	}

	return colors
}

func hadamard(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

