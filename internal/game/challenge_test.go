package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/dice"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/randutil"
)

func TestCallBluffTruthfulBidChallengerLoses(t *testing.T) {
	roller := &scriptedRoller{}
	roller.queue(
		[]int{1, 3, 4, 5, 6},
		[]int{2, 3, 4, 4, 6},
		[]int{1, 2, 3, 4, 5},
	)
	r := startedRoom(t, 3, roller)

	_, err := r.MakeBid(pid(0), 2, 3)
	require.NoError(t, err)
	_, err = r.MakeBid(pid(1), 2, 4)
	require.NoError(t, err)

	c, err := r.CallBluff(pid(2))
	require.NoError(t, err)

	assert.Equal(t, 4, c.Tally)
	assert.False(t, c.BluffCaught)
	assert.Equal(t, pid(2), c.Loser.ID)
	assert.Equal(t, pid(1), c.Bidder.ID)
	assert.Equal(t, pid(2), c.Challenger.ID)
	assert.Equal(t, 4, r.Players[2].DiceCount)
	assert.Equal(t, 5, r.Players[0].DiceCount)
	assert.Equal(t, 5, r.Players[1].DiceCount)
	require.Len(t, c.Hands, 3)
	assert.Equal(t, []int{2, 3, 4, 4, 6}, c.Hands[1].Dice)

	cont := r.ResolveChallenge(c)
	require.NotNil(t, cont.Next)
	assert.Nil(t, cont.Eliminated)
	assert.True(t, cont.Next.LoserStarts)
	assert.Equal(t, pid(2), r.TurnPlayer().ID, "the loser opens the next round")
	assert.Len(t, r.HandFor(pid(2)), 4)
	assert.Nil(t, r.CurrentBid)
	assert.Equal(t, 2, r.Round)
}

func TestCallBluffExactTallyFavoursBidder(t *testing.T) {
	roller := &scriptedRoller{}
	roller.queue([]int{2, 2, 3, 5, 6}, []int{1, 1, 1, 1, 2})
	r := startedRoom(t, 2, roller)

	_, err := r.MakeBid(pid(0), 3, 2)
	require.NoError(t, err)
	c, err := r.CallBluff(pid(1))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Tally)
	assert.Equal(t, pid(1), c.Loser.ID)
}

func TestCallBluffCaught(t *testing.T) {
	roller := &scriptedRoller{}
	roller.queue([]int{1, 1, 1, 1, 1}, []int{2, 2, 2, 2, 2})
	r := startedRoom(t, 2, roller)

	_, err := r.MakeBid(pid(0), 4, 6)
	require.NoError(t, err)
	c, err := r.CallBluff(pid(1))
	require.NoError(t, err)

	assert.True(t, c.BluffCaught)
	assert.Equal(t, 0, c.Tally)
	assert.Equal(t, pid(0), c.Loser.ID)
	assert.Equal(t, 4, r.Players[0].DiceCount)
}

func TestCallBluffGates(t *testing.T) {
	r := startedRoom(t, 3, &scriptedRoller{})

	_, err := r.CallBluff(pid(0))
	assert.ErrorIs(t, err, ErrNoBid)

	_, err = r.MakeBid(pid(0), 1, 1)
	require.NoError(t, err)

	_, err = r.CallBluff(pid(2))
	assert.ErrorIs(t, err, ErrNotYourTurn)

	c, err := r.CallBluff(pid(1))
	require.NoError(t, err)
	require.True(t, r.Resolving())

	_, err = r.CallBluff(pid(1))
	assert.ErrorIs(t, err, ErrRoundResolving)
	_, err = r.MakeBid(pid(1), 9, 6)
	assert.ErrorIs(t, err, ErrRoundResolving)

	r.ResolveChallenge(c)
	assert.False(t, r.Resolving())
}

func TestEliminationAndWinner(t *testing.T) {
	r := startedRoom(t, 2, &scriptedRoller{})
	r.Players[0].DiceCount = 1

	_, err := r.MakeBid(pid(0), 20, 6)
	require.NoError(t, err)
	c, err := r.CallBluff(pid(1))
	require.NoError(t, err)
	require.Equal(t, pid(0), c.Loser.ID)
	assert.Equal(t, StatusPlaying, r.Status, "game ends only after the pause")

	cont := r.ResolveChallenge(c)
	require.NotNil(t, cont.Eliminated)
	assert.Equal(t, pid(0), cont.Eliminated.ID)
	assert.True(t, cont.Finished)
	require.NotNil(t, cont.Winner)
	assert.Equal(t, pid(1), cont.Winner.ID)
	assert.Nil(t, cont.Next)
	assert.Equal(t, StatusFinished, r.Status)
}

func TestEliminatedLoserHandsTurnOn(t *testing.T) {
	r := startedRoom(t, 3, &scriptedRoller{})
	r.Players[1].DiceCount = 1

	_, err := r.MakeBid(pid(0), 1, 1)
	require.NoError(t, err)
	_, err = r.MakeBid(pid(1), 20, 6)
	require.NoError(t, err)
	c, err := r.CallBluff(pid(2))
	require.NoError(t, err)
	require.Equal(t, pid(1), c.Loser.ID)

	cont := r.ResolveChallenge(c)
	require.NotNil(t, cont.Eliminated)
	require.NotNil(t, cont.Next)
	assert.False(t, cont.Next.LoserStarts)
	assert.Equal(t, pid(0), r.TurnPlayer().ID, "next seat after the challenger")
	assert.Empty(t, r.HandFor(pid(1)))
	requireTurnOnSurvivor(t, r)
}

func TestDepartureDuringPauseFinishesGame(t *testing.T) {
	r := startedRoom(t, 2, &scriptedRoller{})
	_, err := r.MakeBid(pid(0), 1, 1)
	require.NoError(t, err)
	c, err := r.CallBluff(pid(1))
	require.NoError(t, err)

	res := r.RemovePlayer(pid(0))
	require.True(t, res.Finished)
	assert.Equal(t, StatusFinished, r.Status)

	cont := r.ResolveChallenge(c)
	assert.Nil(t, cont.Next)
	assert.False(t, cont.Finished)
	assert.Equal(t, StatusFinished, r.Status)
}

func TestChallengerLeavesDuringPause(t *testing.T) {
	r := startedRoom(t, 4, &scriptedRoller{})
	_, err := r.MakeBid(pid(0), 1, 1)
	require.NoError(t, err)
	_, err = r.MakeBid(pid(1), 30, 6)
	require.NoError(t, err)
	c, err := r.CallBluff(pid(2))
	require.NoError(t, err)
	require.Equal(t, pid(1), c.Loser.ID)

	r.RemovePlayer(pid(2))
	cont := r.ResolveChallenge(c)
	require.NotNil(t, cont.Next)
	assert.Equal(t, pid(1), r.TurnPlayer().ID, "surviving loser still opens")
	requireTurnOnSurvivor(t, r)
}

func TestLoserLeavesDuringPause(t *testing.T) {
	r := startedRoom(t, 4, &scriptedRoller{})
	_, err := r.MakeBid(pid(0), 1, 1)
	require.NoError(t, err)
	_, err = r.MakeBid(pid(1), 1, 2)
	require.NoError(t, err)
	c, err := r.CallBluff(pid(2))
	require.NoError(t, err)
	require.Equal(t, pid(1), c.Loser.ID, "nobody rolled a two")

	r.RemovePlayer(pid(1))
	cont := r.ResolveChallenge(c)
	require.NotNil(t, cont.Next)
	assert.False(t, cont.Next.LoserStarts)
	assert.Equal(t, pid(3), r.TurnPlayer().ID, "seat after the challenger opens")
}

// TestRandomPlayInvariants drives many seeded games with random bids, calls
// and departures and checks the engine's invariants after every step.
func TestRandomPlayInvariants(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		rng := randutil.New(seed)
		roller := dice.New(randutil.NewLocked(randutil.New(seed + 1000)))
		r := NewRoom("RAND1", roller, DefaultOptions())
		n := 2 + rng.IntN(MaxPlayers-1)
		for i := 0; i < n; i++ {
			_, err := r.AddPlayer(pid(i), pid(i))
			require.NoError(t, err)
			require.NoError(t, r.SetReady(pid(i), true))
		}
		_, err := r.StartGame(pid(0))
		require.NoError(t, err)

		for step := 0; step < 2000 && r.Status == StatusPlaying; step++ {
			requireTurnOnSurvivor(t, r)
			actor := r.TurnPlayer().ID

			switch roll := rng.IntN(100); {
			case roll < 2 && len(r.Players) > 2:
				r.RemovePlayer(r.Players[rng.IntN(len(r.Players))].ID)
			case roll < 30 && r.CurrentBid != nil:
				before := r.TotalDice()
				c, err := r.CallBluff(actor)
				require.NoError(t, err)
				require.Equal(t, before-1, r.TotalDice(), "exactly one die per challenge")
				if c.BluffCaught {
					require.Less(t, c.Tally, c.Bid.Quantity)
					require.Equal(t, c.Bidder.ID, c.Loser.ID)
				} else {
					require.GreaterOrEqual(t, c.Tally, c.Bid.Quantity)
					require.Equal(t, c.Challenger.ID, c.Loser.ID)
				}
				r.ResolveChallenge(c)
			default:
				prev := r.CurrentBid
				q, f := 1+rng.IntN(4), 1+rng.IntN(6)
				if prev != nil {
					q = prev.Quantity + rng.IntN(2)
				}
				if _, err := r.MakeBid(actor, q, f); err == nil && prev != nil {
					require.True(t, r.CurrentBid.Dominates(prev))
				}
			}

			if r.Status == StatusPlaying {
				require.Greater(t, len(r.Survivors()), 1)
			}
		}

		if r.Status == StatusFinished {
			require.LessOrEqual(t, len(r.Survivors()), 1)
		}
	}
}
