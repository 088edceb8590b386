package workgroup_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corvusvox/voxelcore/pkg/workgroup"
)

func TestGroup_LaunchFillsAllSlots(t *testing.T) {
	g := workgroup.New(4, func() int { return 0 })
	require.Equal(t, 4, g.NumAvailable())

	var wg sync.WaitGroup
	wg.Add(4)
	for i := 0; i < 4; i++ {
		_, ok := g.Launch(func(scratch *int) {
			defer wg.Done()
			*scratch = 1
		})
		require.True(t, ok)
	}

	_, ok := g.Launch(func(scratch *int) {})
	require.False(t, ok, "fifth launch should find no available slot")

	wg.Wait()
}

func TestGroup_MarkAvailableReclaimsSlot(t *testing.T) {
	g := workgroup.New(1, func() int { return 0 })

	done := make(chan struct{})
	idx, ok := g.Launch(func(scratch *int) {
		*scratch = 7
		close(done)
	})
	require.True(t, ok)

	<-done
	require.Eventually(t, func() bool {
		return len(g.WaitingWorkers()) == 1
	}, time.Second, time.Millisecond)

	require.Equal(t, 0, g.NumAvailable())
	g.MarkAvailable(idx)
	require.Equal(t, 1, g.NumAvailable())
	require.Equal(t, 7, *g.Scratch(idx))
}

func TestGroup_MarkAvailableOnRunningSlotIsNoOp(t *testing.T) {
	g := workgroup.New(1, func() int { return 0 })

	release := make(chan struct{})
	idx, ok := g.Launch(func(scratch *int) {
		<-release
	})
	require.True(t, ok)

	// The slot is Running, not AwaitingPickup: MarkAvailable must not move
	// it straight to Available and let a second Launch race the in-flight
	// job's write to the same scratch buffer.
	g.MarkAvailable(idx)
	require.Equal(t, 0, g.NumAvailable())

	close(release)
}
