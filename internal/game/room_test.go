package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPlayer(t *testing.T) {
	r := NewRoom("ROOM1", &scriptedRoller{}, DefaultOptions())

	a, err := r.AddPlayer("a", "Alice")
	require.NoError(t, err)
	b, err := r.AddPlayer("b", "Bob")
	require.NoError(t, err)

	assert.True(t, a.IsCreator)
	assert.False(t, b.IsCreator)
	assert.Equal(t, StartingDice, a.DiceCount)
	assert.Equal(t, []string{"a", "b"}, []string{r.Players[0].ID, r.Players[1].ID})
	assert.Equal(t, StatusLobby, r.Status)
}

func TestAddPlayerRoomFull(t *testing.T) {
	r := newTestRoom(t, MaxPlayers, &scriptedRoller{})

	_, err := r.AddPlayer("late", "Late")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Len(t, r.Players, MaxPlayers)
}

func TestAddPlayerIgnoresAdvisoryMaxPlayers(t *testing.T) {
	r := NewRoom("ROOM1", &scriptedRoller{}, Options{MaxPlayers: 2})
	for i := 0; i < 3; i++ {
		_, err := r.AddPlayer(pid(i), "x")
		require.NoError(t, err)
	}
	assert.Len(t, r.Players, 3)
}

func TestAddPlayerGameInProgress(t *testing.T) {
	r := startedRoom(t, 2, &scriptedRoller{})

	_, err := r.AddPlayer("late", "Late")
	assert.ErrorIs(t, err, ErrGameInProgress)
}

func TestRemovePlayerTransfersCreator(t *testing.T) {
	r := newTestRoom(t, 3, &scriptedRoller{})

	res := r.RemovePlayer(pid(0))
	require.True(t, res.Removed)
	require.NotNil(t, res.NewCreator)
	assert.Equal(t, pid(1), res.NewCreator.ID)

	creators := 0
	for _, p := range r.Players {
		if p.IsCreator {
			creators++
		}
	}
	assert.Equal(t, 1, creators)
	assert.True(t, r.Players[0].IsCreator)
}

func TestRemovePlayerEmptiesRoom(t *testing.T) {
	r := newTestRoom(t, 1, &scriptedRoller{})

	res := r.RemovePlayer(pid(0))
	assert.True(t, res.Removed)
	assert.True(t, res.Empty)
	assert.Empty(t, r.Players)
}

func TestRemoveUnknownPlayer(t *testing.T) {
	r := newTestRoom(t, 2, &scriptedRoller{})
	res := r.RemovePlayer("ghost")
	assert.False(t, res.Removed)
	assert.Len(t, r.Players, 2)
}

func TestSetReady(t *testing.T) {
	r := newTestRoom(t, 2, &scriptedRoller{})

	require.NoError(t, r.SetReady(pid(1), true))
	assert.True(t, r.Players[1].Ready)
	require.NoError(t, r.SetReady(pid(1), false))
	assert.False(t, r.Players[1].Ready)

	assert.ErrorIs(t, r.SetReady("ghost", true), ErrPlayerNotFound)
}

func TestSetReadyOutsideLobby(t *testing.T) {
	r := startedRoom(t, 2, &scriptedRoller{})
	assert.ErrorIs(t, r.SetReady(pid(0), false), ErrNotInLobby)
}

func TestStartGameOnlyCreatorPresent(t *testing.T) {
	r := newTestRoom(t, 1, &scriptedRoller{})

	_, err := r.StartGame(pid(0))
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
	assert.Equal(t, StatusLobby, r.Status)
}

func TestStartGameRejections(t *testing.T) {
	r := newTestRoom(t, 3, &scriptedRoller{})
	require.NoError(t, r.SetReady(pid(0), true))
	require.NoError(t, r.SetReady(pid(1), true))

	_, err := r.StartGame(pid(1))
	assert.ErrorIs(t, err, ErrNotCreator)

	_, err = r.StartGame(pid(0))
	assert.ErrorIs(t, err, ErrPlayersNotReady)
	assert.Equal(t, StatusLobby, r.Status)

	require.NoError(t, r.SetReady(pid(2), true))
	start, err := r.StartGame(pid(0))
	require.NoError(t, err)
	assert.Equal(t, StatusPlaying, r.Status)
	assert.Equal(t, 0, r.CurrentTurn)
	assert.Equal(t, 1, start.Round)
	assert.Equal(t, pid(0), start.Starter.ID)

	_, err = r.StartGame(pid(0))
	assert.ErrorIs(t, err, ErrGameInProgress)
}

func TestStartGameDealsHands(t *testing.T) {
	roller := &scriptedRoller{}
	roller.queue([]int{1, 2, 3, 4, 5}, []int{2, 2, 2, 6, 6})
	r := startedRoom(t, 2, roller)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, r.HandFor(pid(0)))
	assert.Equal(t, []int{2, 2, 2, 6, 6}, r.HandFor(pid(1)))
	assert.Nil(t, r.CurrentBid)
}

func TestRequestRestart(t *testing.T) {
	r := startedRoom(t, 2, &scriptedRoller{})

	assert.ErrorIs(t, r.RequestRestart(pid(0)), ErrNotFinished)

	// Knock player 1 out.
	r.Players[1].DiceCount = 1
	_, err := r.MakeBid(pid(0), 1, 1)
	require.NoError(t, err)
	_, err = r.MakeBid(pid(1), 20, 6)
	require.NoError(t, err)
	c, err := r.CallBluff(pid(0))
	require.NoError(t, err)
	cont := r.ResolveChallenge(c)
	require.True(t, cont.Finished)
	require.Equal(t, StatusFinished, r.Status)

	require.NoError(t, r.RequestRestart(pid(1)))
	assert.Equal(t, StatusLobby, r.Status)
	assert.Nil(t, r.CurrentBid)
	assert.Empty(t, r.History)
	for _, p := range r.Players {
		assert.Equal(t, StartingDice, p.DiceCount)
		assert.False(t, p.Ready)
		assert.Empty(t, p.Dice)
	}
	assert.Equal(t, pid(0), r.Players[0].ID)
	assert.Equal(t, pid(1), r.Players[1].ID)

	// A second restart is rejected and changes nothing.
	assert.ErrorIs(t, r.RequestRestart(pid(0)), ErrNotFinished)
	assert.Equal(t, StatusLobby, r.Status)
}
