// Package sim owns the simulation-side state the path tracer reads from:
// the live chunk table and the VKDT built over it, kept consistent across
// a build/mutate/rebuild lifecycle mirroring the renderer's chunk manager.
package sim

import (
	"sync"

	"github.com/corvusvox/voxelcore/pkg/accel"
	"github.com/corvusvox/voxelcore/pkg/voxel"
)

// Cache owns a ChunkTable and the most recently built VKDT over it. Chunk
// mutations (SetChunk/EraseChunks) are cheap and only mark the tree stale;
// Rebuild does the expensive work of walking the table and is expected to
// run on its own schedule (e.g. once per render frame, or once before a
// batch of path-traced samples), not after every mutation.
type Cache struct {
	mu       sync.RWMutex
	table    *voxel.ChunkTable
	settings accel.BuildSettings

	tree  *accel.TreeData
	dirty bool
}

// NewCache creates an empty cache that will build trees with settings.
func NewCache(settings accel.BuildSettings) *Cache {
	return &Cache{
		table:    voxel.NewChunkTable(),
		settings: settings,
		dirty:    true,
	}
}

// Table returns the backing chunk table.
func (c *Cache) Table() *voxel.ChunkTable {
	return c.table
}

// SetChunk installs chunk at coord and marks the tree stale.
func (c *Cache) SetChunk(coord voxel.Coord, chunk *voxel.Chunk) {
	c.table.Set(coord, chunk)
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// EraseChunks removes the given chunk coordinates and marks the tree
// stale.
func (c *Cache) EraseChunks(coords []voxel.Coord) {
	c.table.Erase(coords)
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// Dirty reports whether the table has changed since the last Rebuild.
func (c *Cache) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// Rebuild walks the current table contents and builds a fresh VKDT,
// replacing the cached tree on success. If the table has no chunks yet
// (no bounds established), Rebuild clears the cached tree and returns nil
// without error. Readers of Tree see the old tree until Rebuild completes.
func (c *Cache) Rebuild() error {
	bounds, ok := c.table.Bounds()
	if !ok {
		c.mu.Lock()
		c.tree = nil
		c.dirty = false
		c.mu.Unlock()
		return nil
	}

	voxelBounds := bounds.VoxelBounds()
	settings := c.settings
	settings.Bounds = accel.Box{
		Origin: [3]int32{voxelBounds.Origin.X, voxelBounds.Origin.Y, voxelBounds.Origin.Z},
		Extent: [3]int32{voxelBounds.Extent.X, voxelBounds.Extent.Y, voxelBounds.Extent.Z},
	}

	tree, err := accel.Build(c.table, settings)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.tree = tree
	c.dirty = false
	c.mu.Unlock()
	return nil
}

// Tree returns the most recently built tree, or nil if Rebuild has never
// succeeded.
func (c *Cache) Tree() *accel.TreeData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree
}
