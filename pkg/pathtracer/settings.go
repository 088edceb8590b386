package pathtracer

import "github.com/go-gl/mathgl/mgl32"

// RenderSettings configures a full-image render: sampling density, path
// length, tiling, and the fixed sky/sun lighting model.
type RenderSettings struct {
	ImageWidth, ImageHeight int
	TileWidth, TileHeight   int

	NumRaysPerPixel int
	MaxPathLen      int
	NumWorkers      int

	CompressFailedPaths bool

	SkyBrightness mgl32.Vec3
	SunBrightness mgl32.Vec3
	SunDirection  mgl32.Vec3 // must be normalized
}

// DefaultSettings returns a reasonable starting configuration for a single
// still-image render.
func DefaultSettings(width, height int) RenderSettings {
	return RenderSettings{
		ImageWidth:      width,
		ImageHeight:     height,
		TileWidth:       32,
		TileHeight:      32,
		NumRaysPerPixel: 16,
		MaxPathLen:      6,
		NumWorkers:      8,
		SkyBrightness:   mgl32.Vec3{0.40, 0.55, 0.75},
		SunBrightness:   mgl32.Vec3{1.6, 1.5, 1.2},
		SunDirection:    mgl32.Vec3{0.3, 0.8, 0.2}.Normalize(),
	}
}
