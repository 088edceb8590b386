package main

import (
	"flag"
	"log"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/corvusvox/voxelcore/pkg/accel"
	"github.com/corvusvox/voxelcore/pkg/image"
	"github.com/corvusvox/voxelcore/pkg/pathtracer"
	"github.com/corvusvox/voxelcore/pkg/sim"
	"github.com/corvusvox/voxelcore/pkg/voxel"
)

func main() {
	width := flag.Int("width", 640, "output image width")
	height := flag.Int("height", 480, "output image height")
	samples := flag.Int("samples", 16, "rays per pixel")
	maxDepth := flag.Int("pathlen", 6, "maximum path length")
	workers := flag.Int("workers", 8, "number of render workers")
	radius := flag.Int("radius", 3, "world radius in chunks")
	portalRadius := flag.Float64("portal-radius", 4, "radius of the teleporting portal sites")
	out := flag.String("out", "render.ppm", "output PPM path")
	flag.Parse()

	cache := sim.NewCache(accel.BuildSettings{
		MaxDepth:    24,
		Preallocate: false,
		PackNodes:   true,
	})

	log.Printf("generating world: radius %d chunks", *radius)
	for cx := -*radius; cx <= *radius; cx++ {
		for cz := -*radius; cz <= *radius; cz++ {
			coord := voxel.Coord{X: int32(cx), Y: 0, Z: int32(cz)}
			chunk := voxel.NewChunk(coord)
			fillChunk(chunk)
			cache.SetChunk(coord, chunk)
		}
	}

	log.Printf("building acceleration structure")
	start := time.Now()
	if err := cache.Rebuild(); err != nil {
		log.Fatalf("pathtrace: building tree: %v", err)
	}
	log.Printf("build took %s, %d nodes", time.Since(start), cache.Tree().NodeCount())

	eye := mgl32.Vec3{0, 30, 80}
	target := mgl32.Vec3{0, 10, 0}
	camera := pathtracer.NewRayGenerator(eye, target, 60, *width, *height)

	worldEdge := float32(*radius * voxel.Size)
	portal := &pathtracer.Portal{
		Locations: [2]mgl32.Vec3{
			{-worldEdge * 0.5, 14, 0},
			{worldEdge * 0.5, 14, 0},
		},
		Radius: float32(*portalRadius),
	}

	settings := pathtracer.DefaultSettings(*width, *height)
	settings.NumRaysPerPixel = *samples
	settings.MaxPathLen = *maxDepth
	settings.NumWorkers = *workers

	log.Printf("rendering %dx%d, %d spp, %d workers", *width, *height, settings.NumRaysPerPixel, settings.NumWorkers)
	start = time.Now()
	frame := pathtracer.RenderImage(cache.Tree(), cache.Table(), portal, camera, settings, reportProgress)
	log.Printf("render took %s", time.Since(start))

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("pathtrace: creating %s: %v", *out, err)
	}
	defer f.Close()

	if err := image.WritePPM(f, frame); err != nil {
		log.Fatalf("pathtrace: writing %s: %v", *out, err)
	}
	log.Printf("wrote %s", *out)
}

func reportProgress(frame *image.Frame, tilesDone, tilesTotal int) (abort bool) {
	log.Printf("tiles: %d/%d", tilesDone, tilesTotal)
	return false
}

// fillChunk generates the same sine-heightmap terrain as the interactive
// renderer's demo world, so both entry points agree on what "the default
// scene" looks like.
func fillChunk(chunk *voxel.Chunk) {
	originX := float64(chunk.Coord.X * voxel.Size)
	originZ := float64(chunk.Coord.Z * voxel.Size)

	for x := 0; x < voxel.Size; x++ {
		for z := 0; z < voxel.Size; z++ {
			worldX := originX + float64(x)
			worldZ := originZ + float64(z)
			height := int(math.Sin(worldX/5.0)*3.0 + math.Cos(worldZ/5.0)*3.0 + 8)

			if height < 0 {
				height = 0
			}
			if height >= voxel.Size {
				height = voxel.Size - 1
			}

			for y := 0; y < height; y++ {
				kind := voxel.Stone
				if y == height-1 {
					kind = voxel.Grass
				} else if y > height-4 {
					kind = voxel.Dirt
				}

				if y == height-1 && rand.Float64() < 0.05 {
					kind = voxel.Metal
				}

				chunk.Set(x, y, z, kind)
			}
		}
	}
}
