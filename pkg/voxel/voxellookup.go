package voxel

// lookupCapacity bounds the number of resident chunk entries in a
// VoxelLookup cache.
const lookupCapacity = 16

type lookupEntry struct {
	coord     Coord
	chunk     *Chunk
	missCount int
}

// VoxelLookup is a small bounded-capacity cache of recently touched chunks,
// used for locality during VKDT construction. It is explicitly
// single-threaded: builder passes hold no lock on the backing ChunkTable
// while consulting it, so all table access during a build goes through one
// of these per worker.
type VoxelLookup struct {
	table   *ChunkTable
	entries [lookupCapacity]lookupEntry
	filled  int
}

// NewVoxelLookup creates a cache backed by table.
func NewVoxelLookup(table *ChunkTable) *VoxelLookup {
	return &VoxelLookup{table: table}
}

// VoxelAt returns the voxel kind at a world voxel coordinate, air if the
// owning chunk isn't loaded.
func (l *VoxelLookup) VoxelAt(x, y, z int32) Kind {
	coord := ChunkFromVoxel(x, y, z)
	lx, ly, lz := LocalFromVoxel(x, y, z)
	if !inChunkBounds(lx, ly, lz) {
		panic("voxel: local coordinate out of chunk range")
	}

	for i := 0; i < l.filled; i++ {
		if l.entries[i].coord == coord {
			chunk := l.entries[i].chunk
			if chunk == nil {
				return Air
			}
			return chunk.At(lx, ly, lz)
		}
	}

	chunk, _ := l.table.Get(coord)

	var slot int
	if l.filled < lookupCapacity {
		slot = l.filled
		l.filled++
	} else {
		evict := 0
		maxMisses := l.entries[0].missCount
		for i := 1; i < l.filled; i++ {
			if l.entries[i].missCount > maxMisses {
				maxMisses = l.entries[i].missCount
				evict = i
			}
		}
		for i := 0; i < l.filled; i++ {
			if i != evict {
				l.entries[i].missCount++
			}
		}
		slot = evict
	}
	l.entries[slot] = lookupEntry{coord: coord, chunk: chunk}

	if slot != 0 {
		l.entries[0], l.entries[slot] = l.entries[slot], l.entries[0]
		slot = 0
	}

	if chunk == nil {
		return Air
	}
	return chunk.At(lx, ly, lz)
}
