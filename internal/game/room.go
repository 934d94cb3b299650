package game

import (
	"fmt"
	"slices"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/dice"
)

// Room is the aggregate for one game: seating, status, turn pointer, the
// current bid and a human readable event log.
//
// Room is not safe for concurrent use; the registry serialises access.
type Room struct {
	ID          string
	Status      Status
	Players     []*Player
	CurrentTurn int
	CurrentBid  *Bid
	History     []string
	Options     Options
	Round       int

	roller dice.Roller

	// resolving is set between a resolved challenge and the start of the
	// next round. Bids and challenges are rejected while it is set.
	resolving bool

	// seatVacated is set when the player holding the turn leaves while a
	// challenge is resolving; CurrentTurn then already points at the next
	// seat and the next round starts there instead of one further on.
	seatVacated bool
}

// NewRoom creates an empty room in the lobby.
func NewRoom(id string, roller dice.Roller, opts Options) *Room {
	return &Room{
		ID:      id,
		Status:  StatusLobby,
		Options: opts.Normalize(),
		roller:  roller,
	}
}

// RemoveResult describes the side effects of removing a player.
type RemoveResult struct {
	Removed    bool
	Player     *Player
	Empty      bool
	NewCreator *Player
	BidCleared bool
	Finished   bool
	Winner     *Player
	Events     []string
}

// AddPlayer seats a new player at the end of the turn order. The first
// player seated becomes the creator.
func (r *Room) AddPlayer(id, name string) (*Player, error) {
	if r.Status != StatusLobby {
		return nil, ErrGameInProgress
	}
	if len(r.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	if existing := r.PlayerByID(id); existing != nil {
		return existing, nil
	}

	p := &Player{
		ID:        id,
		Name:      name,
		DiceCount: r.Options.StartingDice,
		Dice:      []int{},
		IsCreator: len(r.Players) == 0,
	}
	r.Players = append(r.Players, p)
	r.logf("%s joined the room", name)
	return p, nil
}

// RemovePlayer removes a player in any state. It keeps the room consistent:
// the creator flag moves to the first remaining seat, the turn pointer is
// re-derived, a bid owned by the leaver is withdrawn, and a game left with a
// single survivor is finished.
func (r *Room) RemovePlayer(id string) RemoveResult {
	idx := r.indexOf(id)
	if idx < 0 {
		return RemoveResult{}
	}

	p := r.Players[idx]
	r.Players = slices.Delete(r.Players, idx, idx+1)
	res := RemoveResult{Removed: true, Player: p}
	res.Events = append(res.Events, r.logf("%s left the room", p.Name))

	if len(r.Players) == 0 {
		res.Empty = true
		return res
	}

	if p.IsCreator {
		r.Players[0].IsCreator = true
		res.NewCreator = r.Players[0]
		res.Events = append(res.Events, r.logf("%s is now the room creator", r.Players[0].Name))
	}

	if r.Status != StatusPlaying {
		return res
	}

	if r.CurrentBid != nil && r.CurrentBid.PlayerID == id && !r.resolving {
		r.CurrentBid = nil
		res.BidCleared = true
		res.Events = append(res.Events, r.logf("%s's bid was withdrawn", p.Name))
	}

	survivors := r.Survivors()
	if len(survivors) <= 1 {
		var winner *Player
		if len(survivors) == 1 {
			winner = survivors[0]
		}
		res.Finished = true
		res.Winner = winner
		res.Events = append(res.Events, r.finish(winner))
		return res
	}

	switch {
	case idx < r.CurrentTurn:
		r.CurrentTurn--
	case idx == r.CurrentTurn:
		if r.CurrentTurn >= len(r.Players) {
			r.CurrentTurn = 0
		}
		r.CurrentTurn = r.activeFrom(r.CurrentTurn)
		if r.resolving {
			r.seatVacated = true
		}
	}

	return res
}

// SetReady toggles a player's ready flag in the lobby.
func (r *Room) SetReady(id string, ready bool) error {
	if r.Status != StatusLobby {
		return ErrNotInLobby
	}
	p := r.PlayerByID(id)
	if p == nil {
		return ErrPlayerNotFound
	}
	p.Ready = ready
	return nil
}

// StartGame moves the room from the lobby into its first round.
func (r *Room) StartGame(id string) (*RoundStart, error) {
	if r.Status != StatusLobby {
		return nil, ErrGameInProgress
	}
	p := r.PlayerByID(id)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if !p.IsCreator {
		return nil, ErrNotCreator
	}
	if len(r.Players) < MinPlayers {
		return nil, ErrInsufficientPlayers
	}
	for _, other := range r.Players {
		if !other.Ready {
			return nil, ErrPlayersNotReady
		}
	}

	for _, other := range r.Players {
		other.DiceCount = r.Options.StartingDice
	}
	r.Round = 0
	r.logf("Game started with %d players", len(r.Players))
	return r.StartNewRound(true, -1), nil
}

// RequestRestart returns a finished room to the lobby with full dice and
// unchanged seating.
func (r *Room) RequestRestart(id string) error {
	if r.Status != StatusFinished {
		return ErrNotFinished
	}
	if r.PlayerByID(id) == nil {
		return ErrPlayerNotFound
	}

	for _, p := range r.Players {
		p.DiceCount = r.Options.StartingDice
		p.Ready = false
		p.Dice = []int{}
	}
	r.Status = StatusLobby
	r.CurrentBid = nil
	r.CurrentTurn = 0
	r.Round = 0
	r.History = nil
	r.resolving = false
	r.seatVacated = false
	return nil
}

// PlayerByID returns the seated player with the given id, or nil.
func (r *Room) PlayerByID(id string) *Player {
	if idx := r.indexOf(id); idx >= 0 {
		return r.Players[idx]
	}
	return nil
}

// TurnPlayer returns the player whose turn it is, or nil outside a game.
func (r *Room) TurnPlayer() *Player {
	if r.Status != StatusPlaying || r.CurrentTurn < 0 || r.CurrentTurn >= len(r.Players) {
		return nil
	}
	return r.Players[r.CurrentTurn]
}

// Survivors returns players that still hold dice, in seat order.
func (r *Room) Survivors() []*Player {
	var out []*Player
	for _, p := range r.Players {
		if !p.Eliminated() {
			out = append(out, p)
		}
	}
	return out
}

// TotalDice is the number of dice on the table.
func (r *Room) TotalDice() int {
	total := 0
	for _, p := range r.Players {
		total += p.DiceCount
	}
	return total
}

// HandFor returns a copy of the player's current dice.
func (r *Room) HandFor(id string) []int {
	p := r.PlayerByID(id)
	if p == nil {
		return nil
	}
	return slices.Clone(p.Dice)
}

// Resolving reports whether a challenge is awaiting its continuation.
func (r *Room) Resolving() bool {
	return r.resolving
}

func (r *Room) indexOf(id string) int {
	return slices.IndexFunc(r.Players, func(p *Player) bool { return p.ID == id })
}

func (r *Room) finish(winner *Player) string {
	r.Status = StatusFinished
	r.CurrentBid = nil
	r.resolving = false
	r.seatVacated = false
	if winner == nil {
		return r.logf("Game over, nobody is left standing")
	}
	return r.logf("%s wins the game!", winner.Name)
}

// logf appends to the history and returns the formatted entry.
func (r *Room) logf(format string, args ...any) string {
	entry := fmt.Sprintf(format, args...)
	r.History = append(r.History, entry)
	return entry
}
