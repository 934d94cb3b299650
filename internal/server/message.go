package server

import (
	"encoding/json"
	"time"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Decode unmarshals the payload into v.
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(m.Data, v)
}

// Client → Server Messages

type RoomOptions struct {
	Dice        int  `json:"dice,omitempty"`
	MaxPlayers  int  `json:"maxPlayers,omitempty"`
	TurnSeconds int  `json:"turnSeconds,omitempty"`
	Jokers      bool `json:"jokers,omitempty"`
	SpotOn      bool `json:"spotOn,omitempty"`
}

type JoinRoomData struct {
	RoomID  string       `json:"roomId,omitempty"` // empty creates a room
	Name    string       `json:"name"`
	Options *RoomOptions `json:"options,omitempty"`
}

type SetReadyData struct {
	Ready bool `json:"ready"`
}

type MakeBidData struct {
	Quantity  int `json:"quantity"`
	FaceValue int `json:"faceValue"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomJoinedData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Creator  bool   `json:"creator"`
}

type RoomLeftData struct {
	RoomID string `json:"roomId"`
}

type MemberState struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Ready     bool   `json:"ready"`
	IsCreator bool   `json:"isCreator"`
	DiceCount int    `json:"diceCount"`
}

type RoomUpdateData struct {
	RoomID  string        `json:"roomId"`
	Status  string        `json:"status"`
	Players []MemberState `json:"players"`
	Options RoomOptions   `json:"options"`
}

type PlayerState struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DiceCount  int    `json:"diceCount"`
	IsTurn     bool   `json:"isTurn"`
	Eliminated bool   `json:"eliminated"`
}

type BidInfo struct {
	Quantity   int    `json:"quantity"`
	FaceValue  int    `json:"faceValue"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type GameStateData struct {
	RoomID      string        `json:"roomId"`
	Status      string        `json:"status"`
	Round       int           `json:"round"`
	CurrentTurn string        `json:"currentTurn,omitempty"` // player ID
	Players     []PlayerState `json:"players"`
	CurrentBid  *BidInfo      `json:"currentBid"`
	TotalDice   int           `json:"totalDice"`
	TurnSeconds int           `json:"turnSeconds,omitempty"`
}

type YourDiceData struct {
	Round int   `json:"round"`
	Dice  []int `json:"dice"`
}

type EventData struct {
	Message string `json:"message"`
}

type RoundStartData struct {
	Round     int    `json:"round"`
	StarterID string `json:"starterId"`
	Starter   string `json:"starter"`
	TotalDice int    `json:"totalDice"`
}

type RevealedHand struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Dice     []int  `json:"dice"`
}

type RevealData struct {
	Round int            `json:"round"`
	Bid   BidInfo        `json:"bid"`
	Hands []RevealedHand `json:"hands"`
	Tally int            `json:"tally"`
}

type RoundResultData struct {
	Round        int    `json:"round"`
	ChallengerID string `json:"challengerId"`
	BidderID     string `json:"bidderId"`
	LoserID      string `json:"loserId"`
	Loser        string `json:"loser"`
	Tally        int    `json:"tally"`
	Quantity     int    `json:"quantity"`
	FaceValue    int    `json:"faceValue"`
	BluffCaught  bool   `json:"bluffCaught"`
	DiceLeft     int    `json:"diceLeft"`
	Message      string `json:"message"`
}

type GameOverData struct {
	WinnerID string `json:"winnerId,omitempty"`
	Winner   string `json:"winner,omitempty"`
}

type RoomInfo struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
}

// OptionsFromWire converts requested room options to engine options.
func OptionsFromWire(o *RoomOptions) game.Options {
	if o == nil {
		return game.DefaultOptions()
	}
	return game.Options{
		StartingDice: o.Dice,
		MaxPlayers:   o.MaxPlayers,
		TurnSeconds:  o.TurnSeconds,
		Jokers:       o.Jokers,
		SpotOn:       o.SpotOn,
	}.Normalize()
}

// OptionsToWire converts engine options for clients.
func OptionsToWire(o game.Options) RoomOptions {
	return RoomOptions{
		Dice:        o.StartingDice,
		MaxPlayers:  o.MaxPlayers,
		TurnSeconds: o.TurnSeconds,
		Jokers:      o.Jokers,
		SpotOn:      o.SpotOn,
	}
}

// BidInfoFromGame converts a bid, resolving the bidder's display name.
func BidInfoFromGame(room *game.Room, bid game.Bid) BidInfo {
	info := BidInfo{
		Quantity:  bid.Quantity,
		FaceValue: bid.FaceValue,
		PlayerID:  bid.PlayerID,
	}
	if p := room.PlayerByID(bid.PlayerID); p != nil {
		info.PlayerName = p.Name
	}
	return info
}

// RoomUpdateFromGame projects the lobby view of a room.
func RoomUpdateFromGame(room *game.Room) RoomUpdateData {
	players := make([]MemberState, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, MemberState{
			ID:        p.ID,
			Name:      p.Name,
			Ready:     p.Ready,
			IsCreator: p.IsCreator,
			DiceCount: p.DiceCount,
		})
	}
	return RoomUpdateData{
		RoomID:  room.ID,
		Status:  room.Status.String(),
		Players: players,
		Options: OptionsToWire(room.Options),
	}
}

// GameStateFromGame projects the public table view. It never carries dice.
func GameStateFromGame(room *game.Room) GameStateData {
	turn := room.TurnPlayer()
	players := make([]PlayerState, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, PlayerState{
			ID:         p.ID,
			Name:       p.Name,
			DiceCount:  p.DiceCount,
			IsTurn:     turn != nil && turn.ID == p.ID,
			Eliminated: p.Eliminated(),
		})
	}

	data := GameStateData{
		RoomID:      room.ID,
		Status:      room.Status.String(),
		Round:       room.Round,
		Players:     players,
		TotalDice:   room.TotalDice(),
		TurnSeconds: room.Options.TurnSeconds,
	}
	if turn != nil {
		data.CurrentTurn = turn.ID
	}
	if room.CurrentBid != nil {
		bid := BidInfoFromGame(room, *room.CurrentBid)
		data.CurrentBid = &bid
	}
	return data
}
