package pathtracer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/corvusvox/voxelcore/pkg/accel"
	"github.com/corvusvox/voxelcore/pkg/geom"
	"github.com/corvusvox/voxelcore/pkg/image"
	"github.com/corvusvox/voxelcore/pkg/voxel"
	"github.com/corvusvox/voxelcore/pkg/workgroup"
)

// tileScratch is the per-worker-slot reusable state a tile job needs: its
// own path buffer, VKDT traversal stack, and voxel lookup cache, none of
// which are safe to share across concurrently running tile jobs. The RNG is
// not kept here; each tile job creates its own.
type tileScratch struct {
	buffer *PathBuffer
	stack  []accel.StackFrame
	lookup *voxel.VoxelLookup
}

// Preview is invoked after every batch of tiles completes, with the frame
// as rendered so far and how many of the total tiles are done. Returning
// true aborts the render after the current batch; this is the render
// loop's only abort path, mirroring the source's poll-input-between-
// batches contract for an interactive preview window.
type Preview func(frame *image.Frame, tilesDone, tilesTotal int) (abort bool)

// RenderImage renders a full frame using tree for VKDT intersection,
// table for direct chunk DDA fallback, and portal (nilable) for
// teleportation, dispatching tiles across settings.NumWorkers workers in
// batches. preview may be nil to run without polling.
func RenderImage(tree *accel.TreeData, table *voxel.ChunkTable, portal *Portal, camera RayGenerator, settings RenderSettings, preview Preview) *image.Frame {
	frame := image.NewFrame(settings.ImageWidth, settings.ImageHeight)
	tiles := ComputeTiles(settings.ImageWidth, settings.ImageHeight, settings.TileWidth, settings.TileHeight)

	maxDepth := 1
	if tree != nil {
		maxDepth = tree.CurrMaxDepth
	}
	maxPixelsPerTile := settings.TileWidth * settings.TileHeight

	group := workgroup.New(settings.NumWorkers, func() tileScratch {
		return tileScratch{
			buffer: NewPathBuffer(settings.MaxPathLen, maxPixelsPerTile, settings.CompressFailedPaths),
			stack:  accel.NewTraversalStack(maxDepth),
			lookup: voxel.NewVoxelLookup(table),
		}
	})

	nextTile := 0
	done := 0
	aborted := false

	for nextTile < len(tiles) && !aborted {
		batchSize := min(group.Len(), len(tiles)-nextTile)
		launched := make([]int, 0, batchSize)

		for i := 0; i < batchSize; i++ {
			tileIndex := nextTile + i
			tile := tiles[tileIndex]
			slotIdx, ok := group.Launch(renderTileJob(tree, portal, tileIndex, tile, camera, settings, frame))
			if !ok {
				break
			}
			launched = append(launched, slotIdx)
		}

		for len(launched) > 0 {
			waiting := group.WaitingWorkers()
			for _, idx := range waiting {
				group.MarkAvailable(idx)
				for i, l := range launched {
					if l == idx {
						launched = append(launched[:i], launched[i+1:]...)
						break
					}
				}
			}
		}

		nextTile += batchSize
		done += batchSize

		if preview != nil && preview(frame, done, len(tiles)) {
			aborted = true
		}
	}

	return frame
}

// renderTileJob returns the job function one worker slot runs for tile,
// writing its samples directly into frame's pixels.
func renderTileJob(tree *accel.TreeData, portal *Portal, tileIndex int, tile Tile, camera RayGenerator, settings RenderSettings, frame *image.Frame) func(*tileScratch) {
	return func(scratch *tileScratch) {
		r := NewTileRand(tileIndex)
		numPixels := tile.Width * tile.Height
		sampleContribution := float32(1) / float32(settings.NumRaysPerPixel)

		colorBuffer := make([]mgl32.Vec3, numPixels)
		rays := make([]geom.Ray, numPixels)

		for s := 0; s < settings.NumRaysPerPixel; s++ {
			idx := 0
			for y := 0; y < tile.Height; y++ {
				for x := 0; x < tile.Width; x++ {
					ray := camera.RayFromPixel(tile.OriginX+x, tile.OriginY+y)
					jitter := RandomUnitVector(r)
					ray.Dir = ray.Dir.Add(jitter.Mul(0.003)).Normalize()
					rays[idx] = ray
					idx++
				}
			}

			TracePaths(tree, scratch.lookup, portal, rays, scratch.buffer, scratch.stack, r)
			batchColors := DetermineColors(scratch.buffer, settings)

			for i := 0; i < numPixels; i++ {
				colorBuffer[i] = colorBuffer[i].Add(batchColors[i].Mul(sampleContribution))
			}
		}

		idx := 0
		for y := 0; y < tile.Height; y++ {
			for x := 0; x < tile.Width; x++ {
				raw := colorBuffer[idx]
				idx++

				gr := gammaCorrect(raw[0])
				gg := gammaCorrect(raw[1])
				gb := gammaCorrect(raw[2])

				frame.Set(tile.OriginX+x, tile.OriginY+y,
					byte(gr*255), byte(gg*255), byte(gb*255), 255)
			}
		}
	}
}

func gammaCorrect(v float32) float32 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return float32(math.Sqrt(float64(v)))
}
