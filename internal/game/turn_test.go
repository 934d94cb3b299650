package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeBidAdvancesTurn(t *testing.T) {
	r := startedRoom(t, 3, &scriptedRoller{})

	placed, err := r.MakeBid(pid(0), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, Bid{Quantity: 2, FaceValue: 3, PlayerID: pid(0)}, *r.CurrentBid)
	assert.Equal(t, 1, r.CurrentTurn)
	assert.Equal(t, pid(1), placed.Next.ID)
	assert.Equal(t, "A bids 2×3", placed.Event)

	_, err = r.MakeBid(pid(1), 2, 4)
	require.NoError(t, err)
	_, err = r.MakeBid(pid(2), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, r.CurrentTurn, "turn wraps around")
}

func TestMakeBidOutOfTurnLeavesStateUntouched(t *testing.T) {
	r := startedRoom(t, 3, &scriptedRoller{})
	_, err := r.MakeBid(pid(0), 2, 3)
	require.NoError(t, err)

	beforeBid := *r.CurrentBid
	beforeTurn := r.CurrentTurn
	beforeHistory := len(r.History)

	_, err = r.MakeBid(pid(2), 5, 6)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, beforeBid, *r.CurrentBid)
	assert.Equal(t, beforeTurn, r.CurrentTurn)
	assert.Len(t, r.History, beforeHistory)
}

func TestMakeBidInvalid(t *testing.T) {
	r := startedRoom(t, 2, &scriptedRoller{})

	_, err := r.MakeBid(pid(0), 0, 3)
	assert.ErrorIs(t, err, ErrInvalidBid)
	_, err = r.MakeBid(pid(0), 2, 7)
	assert.ErrorIs(t, err, ErrInvalidBid)
	assert.Nil(t, r.CurrentBid)
	assert.Equal(t, 0, r.CurrentTurn)

	_, err = r.MakeBid(pid(0), 3, 4)
	require.NoError(t, err)
	_, err = r.MakeBid(pid(1), 3, 4)
	assert.ErrorIs(t, err, ErrInvalidBid)
	_, err = r.MakeBid(pid(1), 2, 6)
	assert.ErrorIs(t, err, ErrInvalidBid)
	assert.Equal(t, 1, r.CurrentTurn)
}

func TestMakeBidOutsideGame(t *testing.T) {
	r := newTestRoom(t, 2, &scriptedRoller{})
	_, err := r.MakeBid(pid(0), 1, 1)
	assert.ErrorIs(t, err, ErrNotPlaying)
}

func TestTurnSkipsEliminatedPlayers(t *testing.T) {
	r := startedRoom(t, 4, &scriptedRoller{})
	r.Players[1].DiceCount = 0
	r.Players[2].DiceCount = 0

	_, err := r.MakeBid(pid(0), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, r.CurrentTurn)

	_, err = r.MakeBid(pid(3), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, r.CurrentTurn)
}

func TestAcceptedBidsStrictlyDominate(t *testing.T) {
	r := startedRoom(t, 3, &scriptedRoller{})

	attempts := [][2]int{{1, 6}, {1, 5}, {2, 1}, {2, 1}, {2, 2}, {1, 6}, {3, 3}, {3, 2}, {4, 1}}
	var accepted []Bid
	for _, a := range attempts {
		turn := r.Players[r.CurrentTurn].ID
		if _, err := r.MakeBid(turn, a[0], a[1]); err == nil {
			accepted = append(accepted, *r.CurrentBid)
		}
	}

	require.Len(t, accepted, 5)
	for i := 1; i < len(accepted); i++ {
		assert.True(t, accepted[i].Dominates(&accepted[i-1]), "%s should dominate %s", accepted[i], accepted[i-1])
	}
}

func TestRemoveCurrentTurnPlayerMidGame(t *testing.T) {
	r := startedRoom(t, 4, &scriptedRoller{})
	_, err := r.MakeBid(pid(0), 1, 2)
	require.NoError(t, err)
	require.Equal(t, 1, r.CurrentTurn)

	res := r.RemovePlayer(pid(1))
	require.True(t, res.Removed)
	assert.False(t, res.Finished)
	assert.Equal(t, pid(2), r.TurnPlayer().ID)
	requireTurnOnSurvivor(t, r)
	assert.NotNil(t, r.CurrentBid, "bid by a player still seated survives")
}

func TestRemoveLastSeatWhileHoldingTurnWraps(t *testing.T) {
	r := startedRoom(t, 3, &scriptedRoller{})
	_, err := r.MakeBid(pid(0), 1, 2)
	require.NoError(t, err)
	_, err = r.MakeBid(pid(1), 1, 3)
	require.NoError(t, err)
	require.Equal(t, 2, r.CurrentTurn)

	r.RemovePlayer(pid(2))
	assert.Equal(t, pid(0), r.TurnPlayer().ID)
	requireTurnOnSurvivor(t, r)
}

func TestRemoveEarlierSeatKeepsTurnOwner(t *testing.T) {
	r := startedRoom(t, 4, &scriptedRoller{})
	_, err := r.MakeBid(pid(0), 1, 2)
	require.NoError(t, err)
	_, err = r.MakeBid(pid(1), 1, 3)
	require.NoError(t, err)
	require.Equal(t, pid(2), r.TurnPlayer().ID)

	r.RemovePlayer(pid(0))
	assert.Equal(t, pid(2), r.TurnPlayer().ID)
}

func TestRemoveBidOwnerWithdrawsBid(t *testing.T) {
	r := startedRoom(t, 3, &scriptedRoller{})
	_, err := r.MakeBid(pid(0), 2, 2)
	require.NoError(t, err)

	res := r.RemovePlayer(pid(0))
	assert.True(t, res.BidCleared)
	assert.Nil(t, r.CurrentBid)

	_, err = r.CallBluff(r.TurnPlayer().ID)
	assert.ErrorIs(t, err, ErrNoBid)
}

func TestRemoveLeavingSingleSurvivorFinishes(t *testing.T) {
	r := startedRoom(t, 3, &scriptedRoller{})
	r.Players[2].DiceCount = 0

	res := r.RemovePlayer(pid(1))
	require.True(t, res.Finished)
	require.NotNil(t, res.Winner)
	assert.Equal(t, pid(0), res.Winner.ID)
	assert.Equal(t, StatusFinished, r.Status)
}
