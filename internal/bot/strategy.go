package bot

import (
	"fmt"
	"math"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/dice"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/game"
)

// View is what a bot knows when it is asked to act.
type View struct {
	Hand      []int
	Current   *game.Bid // nil when opening the round
	TotalDice int
}

// Decision is either a bluff call or a new bid.
type Decision struct {
	Call      bool
	Bid       game.Bid
	Reasoning string
}

// Strategy picks an action for the player on turn.
type Strategy interface {
	Decide(v View) Decision
}

// Source is the randomness a strategy draws from.
type Source interface {
	IntN(n int) int
}

// Heuristic bids on the face it expects most of and calls when the standing
// bid exceeds its estimate by more than Tolerance dice. Unknown dice are
// assumed to show each face with probability 1/6.
type Heuristic struct {
	Tolerance float64
	// BluffPercent is the chance of opening on a random face instead of
	// the strongest one.
	BluffPercent int
	rng          Source
}

// NewHeuristic returns a Heuristic with moderate risk appetite.
func NewHeuristic(rng Source) *Heuristic {
	return &Heuristic{Tolerance: 0.5, BluffPercent: 15, rng: rng}
}

// Expected estimates how many dice on the table show face.
func Expected(hand []int, totalDice, face int) float64 {
	unknown := totalDice - len(hand)
	if unknown < 0 {
		unknown = 0
	}
	return float64(dice.Count(hand, face)) + float64(unknown)/dice.Faces
}

// Decide implements Strategy.
func (h *Heuristic) Decide(v View) Decision {
	if v.Current == nil {
		return h.open(v)
	}

	current := *v.Current
	expected := Expected(v.Hand, v.TotalDice, current.FaceValue)
	if float64(current.Quantity) > expected+h.Tolerance {
		return Decision{Call: true, Reasoning: fmt.Sprintf("%s looks high, expecting %.1f", current, expected)}
	}

	best, slack, ok := h.bestRaise(v)
	if !ok || slack < -h.Tolerance {
		return Decision{Call: true, Reasoning: fmt.Sprintf("no safe raise over %s", current)}
	}
	return Decision{Bid: best, Reasoning: fmt.Sprintf("raise to %s with slack %.1f", best, slack)}
}

func (h *Heuristic) open(v View) Decision {
	face := strongestFace(v.Hand)
	if h.rng != nil && h.BluffPercent > 0 && h.rng.IntN(100) < h.BluffPercent {
		face = h.rng.IntN(dice.Faces) + 1
	}
	qty := int(math.Floor(Expected(v.Hand, v.TotalDice, face)))
	if qty < 1 {
		qty = 1
	}
	bid := game.Bid{Quantity: qty, FaceValue: face}
	return Decision{Bid: bid, Reasoning: fmt.Sprintf("open with %s", bid)}
}

// bestRaise finds, for every face, the smallest bid that beats the current
// one and returns the one with the most room under its estimate.
func (h *Heuristic) bestRaise(v View) (game.Bid, float64, bool) {
	var (
		best  game.Bid
		slack = math.Inf(-1)
		found bool
	)
	for face := game.MinFace; face <= game.MaxFace; face++ {
		bid, ok := MinimumRaise(v.Current, face, v.TotalDice)
		if !ok {
			continue
		}
		s := Expected(v.Hand, v.TotalDice, face) - float64(bid.Quantity)
		if s > slack {
			best, slack, found = bid, s, true
		}
	}
	return best, slack, found
}

// MinimumRaise returns the smallest bid on face that beats current without
// claiming more dice than are on the table.
func MinimumRaise(current *game.Bid, face, totalDice int) (game.Bid, bool) {
	qty := 1
	if current != nil {
		qty = current.Quantity
		if face <= current.FaceValue {
			qty++
		}
	}
	bid := game.Bid{Quantity: qty, FaceValue: face}
	if qty > totalDice || !bid.Dominates(current) {
		return game.Bid{}, false
	}
	return bid, true
}

func strongestFace(hand []int) int {
	best, bestCount := game.MaxFace, -1
	for face := game.MaxFace; face >= game.MinFace; face-- {
		if c := dice.Count(hand, face); c > bestCount {
			best, bestCount = face, c
		}
	}
	return best
}

// Random makes uniformly random legal moves; useful for soak tests.
type Random struct {
	rng Source
}

// NewRandom creates a Random strategy.
func NewRandom(rng Source) *Random {
	return &Random{rng: rng}
}

// Decide implements Strategy.
func (r *Random) Decide(v View) Decision {
	var options []game.Bid
	for face := game.MinFace; face <= game.MaxFace; face++ {
		if bid, ok := MinimumRaise(v.Current, face, v.TotalDice); ok {
			options = append(options, bid)
		}
	}

	if v.Current != nil && (len(options) == 0 || r.rng.IntN(3) == 0) {
		return Decision{Call: true, Reasoning: "random call"}
	}
	if len(options) == 0 {
		return Decision{Bid: game.Bid{Quantity: 1, FaceValue: game.MaxFace}, Reasoning: "random fallback"}
	}
	return Decision{Bid: options[r.rng.IntN(len(options))], Reasoning: "random raise"}
}
