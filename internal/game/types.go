package game

import "fmt"

// Status is the room state machine: lobby -> playing -> finished, and back
// to lobby on restart.
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

const (
	StartingDice = 5
	MinPlayers   = 2
	MaxPlayers   = 10
	MinFace      = 1
	MaxFace      = 6
)

// Options are the rule settings a creator asks for. They are echoed back to
// clients, but the engine only enforces StartingDice (always 5) and the
// MaxPlayers seat cap of 10.
type Options struct {
	StartingDice int
	MaxPlayers   int
	TurnSeconds  int
	Jokers       bool
	SpotOn       bool
}

// DefaultOptions returns the base rule set.
func DefaultOptions() Options {
	return Options{
		StartingDice: StartingDice,
		MaxPlayers:   MaxPlayers,
	}
}

// Normalize pins the enforced values and clamps the advisory ones into a
// displayable range.
func (o Options) Normalize() Options {
	o.StartingDice = StartingDice
	if o.MaxPlayers < MinPlayers || o.MaxPlayers > MaxPlayers {
		o.MaxPlayers = MaxPlayers
	}
	if o.TurnSeconds < 0 {
		o.TurnSeconds = 0
	}
	return o
}

// Player is a seat in a room, bound to one connection.
type Player struct {
	ID        string
	Name      string
	DiceCount int
	Dice      []int
	Ready     bool
	IsCreator bool
}

// Eliminated reports whether the player has lost all their dice.
func (p *Player) Eliminated() bool {
	return p.DiceCount <= 0
}

// Bid claims at least Quantity dice across the table show FaceValue.
type Bid struct {
	Quantity  int
	FaceValue int
	PlayerID  string
}

// Valid checks the structural rules every bid must satisfy.
func (b Bid) Valid() bool {
	return b.Quantity > 0 && b.FaceValue >= MinFace && b.FaceValue <= MaxFace
}

// Dominates reports whether b may replace prev: a higher quantity, or the
// same quantity with a higher face. Any valid bid dominates no bid.
func (b Bid) Dominates(prev *Bid) bool {
	if !b.Valid() {
		return false
	}
	if prev == nil {
		return true
	}
	if b.Quantity != prev.Quantity {
		return b.Quantity > prev.Quantity
	}
	return b.FaceValue > prev.FaceValue
}

func (b Bid) String() string {
	return fmt.Sprintf("%d×%d", b.Quantity, b.FaceValue)
}
