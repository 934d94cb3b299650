package game

import (
	"fmt"
	"slices"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/dice"
)

// RevealedHand is one survivor's hand made public at a challenge.
type RevealedHand struct {
	PlayerID string
	Name     string
	Dice     []int
}

// Challenge is the resolved outcome of a bluff call. The loser's die has
// already been taken; ResolveChallenge finishes the round after the pause.
type Challenge struct {
	Round       int
	Bid         Bid
	Challenger  *Player
	Bidder      *Player
	Loser       *Player
	Tally       int
	BluffCaught bool
	Hands       []RevealedHand
	Message     string
}

// Continuation is what happens once the post-challenge pause has elapsed.
type Continuation struct {
	Eliminated *Player
	Finished   bool
	Winner     *Player
	Next       *RoundStart
	Events     []string // elimination and game over; Next carries its own
}

// CallBluff challenges the standing bid. Only the player holding the turn
// may call, and only once a bid exists. Every survivor's hand is revealed,
// matching dice are tallied, and the loser gives up one die: the bidder when
// the tally falls short, otherwise the challenger.
func (r *Room) CallBluff(id string) (*Challenge, error) {
	if r.Status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	if r.resolving {
		return nil, ErrRoundResolving
	}
	idx := r.indexOf(id)
	if idx < 0 {
		return nil, ErrPlayerNotFound
	}
	if idx != r.CurrentTurn {
		return nil, ErrNotYourTurn
	}
	if r.CurrentBid == nil {
		return nil, ErrNoBid
	}

	bid := *r.CurrentBid
	bidder := r.PlayerByID(bid.PlayerID)
	if bidder == nil {
		// Bids are withdrawn when their owner leaves, so this is unreachable
		// unless the room was mutated outside the engine.
		return nil, ErrNoBid
	}
	challenger := r.Players[idx]

	c := &Challenge{
		Round:      r.Round,
		Bid:        bid,
		Challenger: challenger,
		Bidder:     bidder,
	}
	for _, p := range r.Survivors() {
		c.Tally += dice.Count(p.Dice, bid.FaceValue)
		c.Hands = append(c.Hands, RevealedHand{PlayerID: p.ID, Name: p.Name, Dice: slices.Clone(p.Dice)})
	}

	if c.Tally < bid.Quantity {
		c.BluffCaught = true
		c.Loser = bidder
		c.Message = fmt.Sprintf("%s called %s's bluff! Only %d %s(s) on the table, %s loses a die",
			challenger.Name, bidder.Name, c.Tally, faceName(bid.FaceValue), bidder.Name)
	} else {
		c.Loser = challenger
		c.Message = fmt.Sprintf("%s challenged %s, but there are %d %s(s) on the table. %s loses a die",
			challenger.Name, bidder.Name, c.Tally, faceName(bid.FaceValue), challenger.Name)
	}
	c.Loser.DiceCount--
	r.resolving = true
	r.logf("%s", c.Message)

	return c, nil
}

// ResolveChallenge runs after the pause: it announces an elimination, ends
// the game when one survivor is left, and otherwise deals the next round
// with the loser starting if they still have dice.
func (r *Room) ResolveChallenge(c *Challenge) *Continuation {
	cont := &Continuation{}
	if r.Status != StatusPlaying || !r.resolving {
		// Finished by a departure during the pause.
		return cont
	}
	r.resolving = false

	loser := r.PlayerByID(c.Loser.ID)
	if loser != nil && loser.Eliminated() {
		cont.Eliminated = loser
		cont.Events = append(cont.Events, r.logf("%s has been eliminated", loser.Name))
	}

	survivors := r.Survivors()
	if len(survivors) <= 1 {
		cont.Finished = true
		if len(survivors) == 1 {
			cont.Winner = survivors[0]
		}
		cont.Events = append(cont.Events, r.finish(cont.Winner))
		return cont
	}

	forced := -1
	if loser != nil && !loser.Eliminated() {
		forced = r.indexOf(loser.ID)
	}
	cont.Next = r.StartNewRound(false, forced)
	return cont
}

var faceNames = [...]string{"", "one", "two", "three", "four", "five", "six"}

func faceName(face int) string {
	if face < MinFace || face > MaxFace {
		return fmt.Sprint(face)
	}
	return faceNames[face]
}
