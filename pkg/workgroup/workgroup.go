// Package workgroup implements a fixed pool of worker slots, each carrying
// its own reusable scratch buffer, used by the path tracer to render tiles
// without allocating a fresh framebuffer per tile.
package workgroup

import "sync/atomic"

// Status is a slot's lifecycle state. A slot only ever moves
// Available -> Running -> AwaitingPickup -> Available; there is no
// transition directly from AwaitingPickup back to Running without an
// intervening MarkAvailable.
type Status int32

const (
	Available Status = iota
	Running
	AwaitingPickup
)

// slot owns one scratch buffer and the goroutine currently (or most
// recently) using it.
type slot[T any] struct {
	status  atomic.Int32
	scratch T
}

// Group is a fixed-size pool of worker slots sharing a scratch buffer type
// T (e.g. a tile's pixel accumulator). Workers are launched as detached
// goroutines: Launch never blocks waiting for a result, and a slot's
// result is recovered later via WaitingWorkers + MarkAvailable.
type Group[T any] struct {
	slots []slot[T]
}

// New creates a group of numWorkers slots, each scratch buffer built by
// newScratch.
func New[T any](numWorkers int, newScratch func() T) *Group[T] {
	g := &Group[T]{slots: make([]slot[T], numWorkers)}
	for i := range g.slots {
		g.slots[i].scratch = newScratch()
		g.slots[i].status.Store(int32(Available))
	}
	return g
}

// Len returns the number of slots in the group.
func (g *Group[T]) Len() int { return len(g.slots) }

// Scratch returns slot i's scratch buffer. Only safe to read/write from
// the job function running in that slot, or after MarkAvailable has
// reclaimed it for reuse.
func (g *Group[T]) Scratch(i int) *T { return &g.slots[i].scratch }

// NumAvailable returns the count of slots currently Available.
func (g *Group[T]) NumAvailable() int {
	n := 0
	for i := range g.slots {
		if Status(g.slots[i].status.Load()) == Available {
			n++
		}
	}
	return n
}

// WaitingWorkers returns the indices of every slot in AwaitingPickup,
// i.e. whose job has finished and is ready to be collected.
func (g *Group[T]) WaitingWorkers() []int {
	var out []int
	for i := range g.slots {
		if Status(g.slots[i].status.Load()) == AwaitingPickup {
			out = append(out, i)
		}
	}
	return out
}

// Launch finds the first Available slot, transitions it to Running, and
// starts job on a detached goroutine operating on that slot's scratch
// buffer. job must not retain the *T past its own return. Launch returns
// the slot index and true on success, or -1 and false if every slot is
// busy.
func (g *Group[T]) Launch(job func(scratch *T)) (int, bool) {
	for i := range g.slots {
		if g.slots[i].status.CompareAndSwap(int32(Available), int32(Running)) {
			idx := i
			go func() {
				job(&g.slots[idx].scratch)
				g.slots[idx].status.Store(int32(AwaitingPickup))
			}()
			return idx, true
		}
	}
	return -1, false
}

// MarkAvailable reclaims slot i, making its scratch buffer eligible for
// reuse by a future Launch. Calling it on a slot that is not currently
// AwaitingPickup is a no-op: it never moves a Running slot back to
// Available, since that would let a second Launch race the first job's
// in-flight write to the same scratch buffer.
func (g *Group[T]) MarkAvailable(i int) {
	g.slots[i].status.CompareAndSwap(int32(AwaitingPickup), int32(Available))
}
