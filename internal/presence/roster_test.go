package presence

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryAddRemoveList(t *testing.T) {
	ctx := context.Background()
	roster := NewMemory()

	require.NoError(t, roster.Add(ctx, "general", "alice"))
	require.NoError(t, roster.Add(ctx, "general", "bob"))

	users, err := roster.List(ctx, "general")
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, users)

	require.NoError(t, roster.Remove(ctx, "general", "alice"))

	users, err = roster.List(ctx, "general")
	require.NoError(t, err)
	require.Equal(t, []string{"bob"}, users)
}

func TestMemoryAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	roster := NewMemory()

	require.NoError(t, roster.Add(ctx, "general", "alice"))
	require.NoError(t, roster.Add(ctx, "general", "alice"))

	users, err := roster.List(ctx, "general")
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, users)
}

func TestMemoryRemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	roster := NewMemory()

	require.NoError(t, roster.Remove(ctx, "general", "ghost"))
	require.NoError(t, roster.Add(ctx, "general", "alice"))
	require.NoError(t, roster.Remove(ctx, "general", "ghost"))

	users, err := roster.List(ctx, "general")
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, users)
}

func TestMemoryUnknownRoomIsEmpty(t *testing.T) {
	roster := NewMemory()
	users, err := roster.List(context.Background(), "nowhere")
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestMemoryRoomsAreIsolated(t *testing.T) {
	ctx := context.Background()
	roster := NewMemory()

	require.NoError(t, roster.Add(ctx, "general", "alice"))
	require.NoError(t, roster.Add(ctx, "random", "bob"))

	users, err := roster.List(ctx, "general")
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, users)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	roster := NewMemory()
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room := fmt.Sprintf("room%d", i%4)
			user := fmt.Sprintf("user%d", i)
			for j := 0; j < 100; j++ {
				_ = roster.Add(ctx, room, user)
				_, _ = roster.List(ctx, room)
				_ = roster.Remove(ctx, room, user)
			}
		}(i)
	}

	wg.Wait()

	for i := 0; i < 4; i++ {
		users, err := roster.List(ctx, fmt.Sprintf("room%d", i))
		require.NoError(t, err)
		require.Empty(t, users)
	}
}
