package voxel

import "sync"

// Cuboid is an axis-aligned integer box in chunk-space: origin plus extent.
type Cuboid struct {
	Origin, Extent Coord
}

// VoxelBounds returns this chunk-space cuboid scaled into world voxel
// coordinates.
func (c Cuboid) VoxelBounds() Cuboid {
	return Cuboid{
		Origin: Coord{c.Origin.X * Size, c.Origin.Y * Size, c.Origin.Z * Size},
		Extent: Coord{c.Extent.X * Size, c.Extent.Y * Size, c.Extent.Z * Size},
	}
}

// ChunkTable owns the sparse mapping from chunk coordinate to chunk and
// keeps a cached chunk-space bounding cuboid in sync under inserts and
// erases. The coarse mutex guards concurrent read/write during background
// meshing, generalizing the teacher's ChunkManager.chunksMutex.
type ChunkTable struct {
	mu     sync.RWMutex
	chunks map[Coord]*Chunk

	hasBounds bool
	bounds    Cuboid
}

// NewChunkTable returns an empty table.
func NewChunkTable() *ChunkTable {
	return &ChunkTable{chunks: make(map[Coord]*Chunk)}
}

// IsLoaded reports whether a chunk exists at coord.
func (t *ChunkTable) IsLoaded(coord Coord) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.chunks[coord]
	return ok
}

// Get returns the chunk at coord, or nil and false if unloaded. Never
// panics on a miss.
func (t *ChunkTable) Get(coord Coord) (*Chunk, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.chunks[coord]
	return c, ok
}

// Set inserts or replaces the chunk at coord and widens the cached bounds.
func (t *ChunkTable) Set(coord Coord, chunk *Chunk) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chunks[coord] = chunk
	t.widenBounds(coord)
}

// Erase removes each of the given coordinates. If any removed coordinate
// sat on the boundary of the cached bounds, the bounds are recomputed by
// scanning every remaining key; interior erases are O(1).
func (t *ChunkTable) Erase(coords []Coord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	onBoundary := false
	for _, coord := range coords {
		if _, ok := t.chunks[coord]; !ok {
			continue
		}
		if t.hasBounds && t.isOnBoundary(coord) {
			onBoundary = true
		}
		delete(t.chunks, coord)
	}
	if onBoundary {
		t.recomputeBounds()
	}
}

// Bounds returns the cached chunk-space bounding cuboid. The zero value is
// returned (with ok=false) when the table is empty.
func (t *ChunkTable) Bounds() (Cuboid, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.bounds, t.hasBounds
}

// Len reports the number of loaded chunks.
func (t *ChunkTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.chunks)
}

// Snapshot returns every currently loaded chunk, for callers (the rasterized
// preview renderer, mesh upload) that need a point-in-time slice rather than
// per-coordinate lookups.
func (t *ChunkTable) Snapshot() []*Chunk {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Chunk, 0, len(t.chunks))
	for _, c := range t.chunks {
		out = append(out, c)
	}
	return out
}

func (t *ChunkTable) widenBounds(coord Coord) {
	if !t.hasBounds {
		t.bounds = Cuboid{Origin: coord, Extent: Coord{1, 1, 1}}
		t.hasBounds = true
		return
	}

	minX, minY, minZ := t.bounds.Origin.X, t.bounds.Origin.Y, t.bounds.Origin.Z
	maxX := minX + t.bounds.Extent.X
	maxY := minY + t.bounds.Extent.Y
	maxZ := minZ + t.bounds.Extent.Z

	if coord.X < minX {
		minX = coord.X
	}
	if coord.Y < minY {
		minY = coord.Y
	}
	if coord.Z < minZ {
		minZ = coord.Z
	}
	if coord.X+1 > maxX {
		maxX = coord.X + 1
	}
	if coord.Y+1 > maxY {
		maxY = coord.Y + 1
	}
	if coord.Z+1 > maxZ {
		maxZ = coord.Z + 1
	}

	t.bounds = Cuboid{
		Origin: Coord{minX, minY, minZ},
		Extent: Coord{maxX - minX, maxY - minY, maxZ - minZ},
	}
}

func (t *ChunkTable) isOnBoundary(coord Coord) bool {
	o := t.bounds.Origin
	maxX := o.X + t.bounds.Extent.X - 1
	maxY := o.Y + t.bounds.Extent.Y - 1
	maxZ := o.Z + t.bounds.Extent.Z - 1
	return coord.X == o.X || coord.X == maxX ||
		coord.Y == o.Y || coord.Y == maxY ||
		coord.Z == o.Z || coord.Z == maxZ
}

func (t *ChunkTable) recomputeBounds() {
	if len(t.chunks) == 0 {
		t.hasBounds = false
		t.bounds = Cuboid{}
		return
	}

	first := true
	var minX, minY, minZ, maxX, maxY, maxZ int32
	for coord := range t.chunks {
		if first {
			minX, maxX = coord.X, coord.X+1
			minY, maxY = coord.Y, coord.Y+1
			minZ, maxZ = coord.Z, coord.Z+1
			first = false
			continue
		}
		if coord.X < minX {
			minX = coord.X
		}
		if coord.Y < minY {
			minY = coord.Y
		}
		if coord.Z < minZ {
			minZ = coord.Z
		}
		if coord.X+1 > maxX {
			maxX = coord.X + 1
		}
		if coord.Y+1 > maxY {
			maxY = coord.Y + 1
		}
		if coord.Z+1 > maxZ {
			maxZ = coord.Z + 1
		}
	}

	t.hasBounds = true
	t.bounds = Cuboid{
		Origin: Coord{minX, minY, minZ},
		Extent: Coord{maxX - minX, maxY - minY, maxZ - minZ},
	}
}
