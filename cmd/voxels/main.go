package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/corvusvox/voxelcore/pkg/network"
	"github.com/corvusvox/voxelcore/pkg/render"
	"github.com/corvusvox/voxelcore/pkg/voxel"
)

func init() {
	// This is needed to ensure that OpenGL functions are called from the same thread
	runtime.LockOSThread()
}

func main() {
	fmt.Println("Starting voxelcore...")

	// Parse command line flags
	serverAddr := flag.String("server", "", "Server address (empty for singleplayer)")
	playerName := flag.String("name", "Player", "Player name")
	renderDist := flag.Int("renderdist", 8, "Render distance (in chunks)")
	flag.Parse()

	// Initialize the renderer
	renderer, err := render.NewRenderer(800, 600, "voxelcore")
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}

	// Position camera for a better view of the chunks
	renderer.SetCameraPosition(mgl32.Vec3{0, 25, 70})
	renderer.SetCameraLookAt(mgl32.Vec3{0, 0, 0})

	if *serverAddr != "" {
		table := runNetworkMode(renderer, *serverAddr, *playerName, uint8(*renderDist))
		_ = table
	} else {
		table := generateWorld()
		renderer.Run(table.Snapshot())
	}
}

// runNetworkMode connects to a server, mirrors received chunks into a
// ChunkTable, and drives the renderer from it as updates arrive.
func runNetworkMode(renderer *render.Renderer, serverAddr, playerName string, renderDist uint8) *voxel.ChunkTable {
	fmt.Println("Connecting to server:", serverAddr)

	client, err := network.NewClient(serverAddr)
	if err != nil {
		log.Fatalf("Failed to connect to server: %v", err)
	}
	fmt.Println("Connected to server")

	client.SetEntityName(playerName)
	client.SetRenderDistance(renderDist)
	if err := client.SendClientMetadata(); err != nil {
		log.Fatalf("Failed to send client metadata: %v", err)
	}

	table := voxel.NewChunkTable()
	var haveChunksChanged bool

	client.OnChunkReceive = func(x, y, z int32, blocks []voxel.Kind) {
		table.Set(voxel.Coord{X: x, Y: y, Z: z}, chunkFromWireBlocks(voxel.Coord{X: x, Y: y, Z: z}, blocks))
		haveChunksChanged = true
	}
	client.OnMonoChunk = func(x, y, z int32, blockType voxel.Kind) {
		chunk := voxel.NewChunk(voxel.Coord{X: x, Y: y, Z: z})
		chunk.Fill(blockType)
		table.Set(chunk.Coord, chunk)
		haveChunksChanged = true
	}

	go func() {
		if err := client.ProcessPackets(); err != nil {
			log.Printf("Network error: %v", err)
		}
	}()

	renderer.SetupOpenGL()

	var frameCount int
	lastStatsTime := time.Now()

	for !renderer.ShouldClose() {
		if haveChunksChanged {
			renderer.UpdateDrawCommands(table.Snapshot())
			haveChunksChanged = false
		}

		frameCount++
		if time.Since(lastStatsTime) >= time.Second {
			fmt.Printf("FPS: %d, Chunks: %d\n", frameCount, table.Len())
			lastStatsTime = time.Now()
			frameCount = 0
		}

		renderer.RenderFrame(table.Snapshot())
	}

	client.Close()
	renderer.Cleanup()
	return table
}

// chunkFromWireBlocks places the network protocol's network.ChunkSize^3
// voxels (a smaller cube than the engine's own voxel.Size^3 chunk) into the
// low octant of a full-size chunk. The wire format predates this engine's
// larger chunk size, so a received chunk only ever fills one corner of its
// local chunk; this is a known gap in the adapted protocol, not a general
// streaming solution.
func chunkFromWireBlocks(coord voxel.Coord, blocks []voxel.Kind) *voxel.Chunk {
	chunk := voxel.NewChunk(coord)
	for i, k := range blocks {
		x := i % network.ChunkSize
		y := (i / network.ChunkSize) % network.ChunkSize
		z := i / (network.ChunkSize * network.ChunkSize)
		chunk.Set(x, y, z, k)
	}
	return chunk
}

// generateWorld builds a small heightmap-based demo world directly into a
// ChunkTable, used when no server address is given.
func generateWorld() *voxel.ChunkTable {
	table := voxel.NewChunkTable()

	positions := []voxel.Coord{
		{X: -1, Y: 0, Z: -1}, {X: 0, Y: 0, Z: -1}, {X: 1, Y: 0, Z: -1},
		{X: -1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0},
		{X: -1, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1},
	}

	for _, pos := range positions {
		chunk := voxel.NewChunk(pos)
		fillChunk(chunk)
		table.Set(pos, chunk)
	}
	return table
}

// fillChunk fills a chunk with terrain according to a heightmap, local to
// the chunk's own column range.
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
