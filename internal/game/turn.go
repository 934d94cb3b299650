package game

// RoundStart is produced whenever a new round is dealt.
type RoundStart struct {
	Round       int
	Starter     *Player
	Hands       map[string][]int // player ID -> sorted hand, survivors only
	Event       string
	LoserStarts bool
}

// BidPlaced is the outcome of an accepted bid.
type BidPlaced struct {
	Bid    Bid
	Bidder *Player
	Next   *Player
	Event  string
}

// MakeBid places a bid for the player holding the turn and passes the turn
// to the next player who still has dice.
func (r *Room) MakeBid(id string, quantity, faceValue int) (*BidPlaced, error) {
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

	bid := Bid{Quantity: quantity, FaceValue: faceValue, PlayerID: id}
	if !bid.Dominates(r.CurrentBid) {
		return nil, ErrInvalidBid
	}

	bidder := r.Players[idx]
	r.CurrentBid = &bid
	r.CurrentTurn = r.nextActive(r.CurrentTurn)
	event := r.logf("%s bids %s", bidder.Name, bid)

	return &BidPlaced{
		Bid:    bid,
		Bidder: bidder,
		Next:   r.Players[r.CurrentTurn],
		Event:  event,
	}, nil
}

// StartNewRound deals fresh hands and seats the first turn. A non-negative
// forced index wins when that seat still has dice; otherwise the first round
// starts at seat 0 and later rounds at the seat after the previous turn.
func (r *Room) StartNewRound(first bool, forced int) *RoundStart {
	r.Status = StatusPlaying
	r.CurrentBid = nil
	r.resolving = false
	r.Round++

	hands := make(map[string][]int)
	for _, p := range r.Players {
		if p.Eliminated() {
			p.Dice = []int{}
			continue
		}
		p.Dice = r.roller.Roll(p.DiceCount)
		hands[p.ID] = p.Dice
	}

	start := &RoundStart{Round: r.Round, Hands: hands}
	switch {
	case forced >= 0 && forced < len(r.Players) && !r.Players[forced].Eliminated():
		r.CurrentTurn = forced
		start.LoserStarts = true
	case first:
		r.CurrentTurn = r.activeFrom(0)
	case r.seatVacated:
		r.CurrentTurn = r.activeFrom(r.CurrentTurn)
	default:
		r.CurrentTurn = r.nextActive(r.CurrentTurn)
	}
	r.seatVacated = false

	start.Starter = r.Players[r.CurrentTurn]
	start.Event = r.logf("Round %d: %d dice on the table, %s starts", r.Round, r.TotalDice(), start.Starter.Name)
	return start
}

// nextActive returns the first seat after from that still has dice,
// wrapping around. It returns from itself when it is the only survivor.
func (r *Room) nextActive(from int) int {
	n := len(r.Players)
	if n == 0 {
		return 0
	}
	for step := 1; step <= n; step++ {
		i := ((from+step)%n + n) % n
		if !r.Players[i].Eliminated() {
			return i
		}
	}
	return from
}

// activeFrom is nextActive including the starting seat.
func (r *Room) activeFrom(start int) int {
	n := len(r.Players)
	if n == 0 {
		return 0
	}
	return r.nextActive((start - 1 + n) % n)
}
