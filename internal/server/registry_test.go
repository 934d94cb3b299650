package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/game"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/roomcode"
)

// fixedSource replays values, then repeats the last one.
type fixedSource struct {
	values []int
}

func (f *fixedSource) IntN(n int) int {
	v := f.values[0]
	if len(f.values) > 1 {
		f.values = f.values[1:]
	}
	return v % n
}

func newTestRegistry(src roomcode.RandSource, maxRooms int) *Registry {
	return NewRegistry(roomcode.NewGenerator(src, 4), &scriptedRoller{}, maxRooms, testLogger())
}

func noopJoin(*roomEntry, *game.Player) {}

func TestRegistryRedrawsTakenCodes(t *testing.T) {
	// First room gets AAAA; the second draw repeats it and must be redrawn.
	src := &fixedSource{values: []int{10, 10, 10, 10, 10, 10, 10, 10, 11}}
	reg := newTestRegistry(src, 0)

	require.NoError(t, reg.CreateOrJoin("", "c1", "Alice", game.DefaultOptions(), noopJoin))
	require.NoError(t, reg.CreateOrJoin("", "c2", "Bob", game.DefaultOptions(), noopJoin))

	assert.Equal(t, "AAAA", reg.RoomCode("c1"))
	assert.Equal(t, "BBBB", reg.RoomCode("c2"))
	assert.Equal(t, 2, reg.Count())
}

func TestRegistryJoinAndRemove(t *testing.T) {
	reg := newTestRegistry(&fixedSource{values: []int{3}}, 0)

	var creator *game.Player
	require.NoError(t, reg.CreateOrJoin("", "c1", "Alice", game.DefaultOptions(), func(e *roomEntry, p *game.Player) {
		creator = p
	}))
	require.NotNil(t, creator)
	assert.True(t, creator.IsCreator)

	code := reg.RoomCode("c1")
	require.NoError(t, reg.CreateOrJoin(code, "c2", "Bob", game.DefaultOptions(), noopJoin))
	assert.Same(t, reg.Resolve("c1"), reg.Resolve("c2"))
	assert.Same(t, reg.Lookup(code), reg.Resolve("c1"))

	var res game.RemoveResult
	assert.True(t, reg.RemovePlayer("c1", func(e *roomEntry, r game.RemoveResult) { res = r }))
	assert.True(t, res.Removed)
	require.NotNil(t, res.NewCreator)
	assert.Equal(t, "c2", res.NewCreator.ID)
	assert.Nil(t, reg.Resolve("c1"))

	entry := reg.Resolve("c2")
	assert.True(t, reg.RemovePlayer("c2", func(e *roomEntry, r game.RemoveResult) { res = r }))
	assert.True(t, res.Empty)
	assert.True(t, entry.closed)
	assert.Zero(t, reg.Count())
	assert.Nil(t, reg.Lookup(code))

	assert.False(t, reg.RemovePlayer("c2", func(*roomEntry, game.RemoveResult) {
		t.Fatal("callback must not run for an unknown connection")
	}))
}

func TestRegistryRejectsJoinAfterStart(t *testing.T) {
	reg := newTestRegistry(&fixedSource{values: []int{5}}, 0)
	require.NoError(t, reg.CreateOrJoin("", "c1", "Alice", game.DefaultOptions(), noopJoin))
	code := reg.RoomCode("c1")
	require.NoError(t, reg.CreateOrJoin(code, "c2", "Bob", game.DefaultOptions(), noopJoin))

	e := reg.Lookup(code)
	e.mu.Lock()
	require.NoError(t, e.room.SetReady("c1", true))
	require.NoError(t, e.room.SetReady("c2", true))
	_, err := e.room.StartGame("c1")
	e.mu.Unlock()
	require.NoError(t, err)

	err = reg.CreateOrJoin(code, "c3", "Carol", game.DefaultOptions(), noopJoin)
	assert.ErrorIs(t, err, game.ErrGameInProgress)
	assert.Empty(t, reg.RoomCode("c3"))
}

func TestRegistryRoomFull(t *testing.T) {
	reg := newTestRegistry(&fixedSource{values: []int{7}}, 0)
	require.NoError(t, reg.CreateOrJoin("", "c0", "P0", game.DefaultOptions(), noopJoin))
	code := reg.RoomCode("c0")
	for i := 1; i < game.MaxPlayers; i++ {
		require.NoError(t, reg.CreateOrJoin(code, "c"+string(rune('0'+i)), "P", game.DefaultOptions(), noopJoin))
	}
	assert.ErrorIs(t, reg.CreateOrJoin(code, "cx", "Late", game.DefaultOptions(), noopJoin), game.ErrRoomFull)
}

func TestRegistryRoomsSorted(t *testing.T) {
	src := &fixedSource{values: []int{20, 20, 20, 20, 2, 2, 2, 2}}
	reg := newTestRegistry(src, 0)
	require.NoError(t, reg.CreateOrJoin("", "c1", "Alice", game.DefaultOptions(), noopJoin))
	require.NoError(t, reg.CreateOrJoin("", "c2", "Bob", game.Options{MaxPlayers: 3}, noopJoin))

	rooms := reg.Rooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, "2222", rooms[0].ID)
	assert.Equal(t, 3, rooms[0].MaxPlayers)
	assert.Equal(t, "MMMM", rooms[1].ID)
	assert.Equal(t, "lobby", rooms[1].Status)
}
