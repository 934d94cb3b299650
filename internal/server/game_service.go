package server

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/game"
)

const maxNameLength = 32

// Notifier delivers a message to one connection.
type Notifier interface {
	SendToConnection(connID string, msg *Message) error
}

// GameService applies inbound actions to rooms and publishes the results.
// Every action either fully applies and broadcasts, or returns an error for
// the acting connection and leaves the room untouched.
type GameService struct {
	registry *Registry
	notifier Notifier
	clock    quartz.Clock
	pause    time.Duration
	logger   *log.Logger
}

// NewGameService creates a new game service
func NewGameService(notifier Notifier, registry *Registry, clock quartz.Clock, pause time.Duration, logger *log.Logger) *GameService {
	return &GameService{
		registry: registry,
		notifier: notifier,
		clock:    clock,
		pause:    pause,
		logger:   logger.WithPrefix("game-service"),
	}
}

// Registry exposes the room registry.
func (gs *GameService) Registry() *Registry {
	return gs.registry
}

// Join creates a room (empty RoomID) or joins an existing one, leaving any
// room the connection currently sits in first.
func (gs *GameService) Join(connID string, data JoinRoomData) error {
	name := strings.TrimSpace(data.Name)
	if name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return ErrNameTooLong
	}

	gs.Leave(connID)

	return gs.registry.CreateOrJoin(data.RoomID, connID, name, OptionsFromWire(data.Options), func(e *roomEntry, p *game.Player) {
		gs.logger.Info("Player joined room", "room", e.room.ID, "player", name, "conn", connID)
		gs.sendTo(connID, MessageTypeRoomJoined, RoomJoinedData{
			RoomID:   e.room.ID,
			PlayerID: p.ID,
			Creator:  p.IsCreator,
		})
		gs.broadcastEvent(e.room, name+" joined the room")
		gs.broadcastRoomUpdate(e.room)
	})
}

// Leave removes the connection from its room. It is also the disconnect
// path and is safe in every room state, including mid-pause.
func (gs *GameService) Leave(connID string) bool {
	return gs.registry.RemovePlayer(connID, func(e *roomEntry, res game.RemoveResult) {
		if !res.Removed || res.Empty {
			return
		}
		gs.logger.Info("Player left room", "room", e.room.ID, "player", res.Player.Name, "status", e.room.Status)

		if res.Finished {
			e.cancelPause()
		}
		for _, ev := range res.Events {
			gs.broadcastEvent(e.room, ev)
		}
		if res.Finished {
			gs.broadcastGameOver(e.room, res.Winner)
		}
		gs.broadcastRoomUpdate(e.room)
		if e.room.Status != game.StatusLobby {
			gs.broadcastGameState(e.room)
		}
	})
}

// SetReady toggles the caller's ready flag in the lobby.
func (gs *GameService) SetReady(connID string, ready bool) error {
	return gs.withRoom(connID, func(e *roomEntry) error {
		if err := e.room.SetReady(connID, ready); err != nil {
			return err
		}
		gs.broadcastRoomUpdate(e.room)
		return nil
	})
}

// StartGame starts the first round; creator only.
func (gs *GameService) StartGame(connID string) error {
	return gs.withRoom(connID, func(e *roomEntry) error {
		start, err := e.room.StartGame(connID)
		if err != nil {
			return err
		}
		gs.logger.Info("Game started", "room", e.room.ID, "players", len(e.room.Players))
		gs.broadcastRoomUpdate(e.room)
		gs.publishRoundStart(e.room, start)
		return nil
	})
}

// MakeBid places a bid for the caller if it holds the turn.
func (gs *GameService) MakeBid(connID string, quantity, faceValue int) error {
	return gs.withRoom(connID, func(e *roomEntry) error {
		placed, err := e.room.MakeBid(connID, quantity, faceValue)
		if err != nil {
			return err
		}
		gs.logger.Debug("Bid placed", "room", e.room.ID, "player", placed.Bidder.Name, "bid", placed.Bid.String())
		gs.broadcastEvent(e.room, placed.Event)
		gs.broadcastGameState(e.room)
		return nil
	})
}

// CallBluff resolves a challenge, publishes the reveal and schedules the
// continuation after the pause.
func (gs *GameService) CallBluff(connID string) error {
	return gs.withRoom(connID, func(e *roomEntry) error {
		c, err := e.room.CallBluff(connID)
		if err != nil {
			return err
		}
		gs.logger.Info("Bluff called", "room", e.room.ID, "challenger", c.Challenger.Name,
			"bid", c.Bid.String(), "tally", c.Tally, "loser", c.Loser.Name)

		hands := make([]RevealedHand, len(c.Hands))
		for i, h := range c.Hands {
			hands[i] = RevealedHand{PlayerID: h.PlayerID, Name: h.Name, Dice: h.Dice}
		}
		gs.broadcast(e.room, MessageTypeReveal, RevealData{
			Round: c.Round,
			Bid:   BidInfoFromGame(e.room, c.Bid),
			Hands: hands,
			Tally: c.Tally,
		})
		gs.broadcast(e.room, MessageTypeRoundResult, RoundResultData{
			Round:        c.Round,
			ChallengerID: c.Challenger.ID,
			BidderID:     c.Bidder.ID,
			LoserID:      c.Loser.ID,
			Loser:        c.Loser.Name,
			Tally:        c.Tally,
			Quantity:     c.Bid.Quantity,
			FaceValue:    c.Bid.FaceValue,
			BluffCaught:  c.BluffCaught,
			DiceLeft:     c.Loser.DiceCount,
			Message:      c.Message,
		})
		gs.broadcastEvent(e.room, c.Message)
		gs.broadcastGameState(e.room)

		gs.schedulePause(e, c)
		return nil
	})
}

// RequestRestart returns a finished room to the lobby.
func (gs *GameService) RequestRestart(connID string) error {
	return gs.withRoom(connID, func(e *roomEntry) error {
		if err := e.room.RequestRestart(connID); err != nil {
			return err
		}
		e.cancelPause()
		gs.logger.Info("Room restarted", "room", e.room.ID)
		gs.broadcastRoomUpdate(e.room)
		return nil
	})
}

// withRoom runs fn with the caller's room locked.
func (gs *GameService) withRoom(connID string, fn func(e *roomEntry) error) error {
	e := gs.registry.Resolve(connID)
	if e == nil {
		return ErrNotInRoom
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return game.ErrRoomNotFound
	}
	return fn(e)
}

// schedulePause arms the continuation timer. Callers hold e.mu.
func (gs *GameService) schedulePause(e *roomEntry, c *game.Challenge) {
	e.cancelPause()
	gen := e.generation
	roomID := e.room.ID

	e.pause = gs.clock.AfterFunc(gs.pause, func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		if e.closed || e.generation != gen {
			gs.logger.Debug("Dropping stale continuation", "room", roomID)
			return
		}
		e.pause = nil

		cont := e.room.ResolveChallenge(c)
		gs.publishContinuation(e.room, cont)
	}, "pause", roomID)
}

func (gs *GameService) publishContinuation(room *game.Room, cont *game.Continuation) {
	for _, ev := range cont.Events {
		gs.broadcastEvent(room, ev)
	}

	if cont.Finished {
		gs.logger.Info("Game finished", "room", room.ID, "winner", playerName(cont.Winner))
		gs.broadcastGameOver(room, cont.Winner)
		gs.broadcastGameState(room)
		gs.broadcastRoomUpdate(room)
		return
	}

	if cont.Next != nil {
		gs.publishRoundStart(room, cont.Next)
	}
}

// publishRoundStart deals each survivor their own hand privately, then
// announces the round and the public state.
func (gs *GameService) publishRoundStart(room *game.Room, start *game.RoundStart) {
	for _, p := range room.Players {
		hand, ok := start.Hands[p.ID]
		if !ok {
			continue
		}
		gs.sendTo(p.ID, MessageTypeYourDice, YourDiceData{Round: start.Round, Dice: hand})
	}

	gs.broadcast(room, MessageTypeRoundStart, RoundStartData{
		Round:     start.Round,
		StarterID: start.Starter.ID,
		Starter:   start.Starter.Name,
		TotalDice: room.TotalDice(),
	})
	gs.broadcastEvent(room, start.Event)
	gs.broadcastGameState(room)
}

func (gs *GameService) broadcastRoomUpdate(room *game.Room) {
	gs.broadcast(room, MessageTypeRoomUpdate, RoomUpdateFromGame(room))
}

func (gs *GameService) broadcastGameState(room *game.Room) {
	gs.broadcast(room, MessageTypeGameState, GameStateFromGame(room))
}

func (gs *GameService) broadcastEvent(room *game.Room, text string) {
	gs.broadcast(room, MessageTypeEvent, EventData{Message: text})
}

func (gs *GameService) broadcastGameOver(room *game.Room, winner *game.Player) {
	data := GameOverData{}
	if winner != nil {
		data.WinnerID = winner.ID
		data.Winner = winner.Name
	}
	gs.broadcast(room, MessageTypeGameOver, data)
}

// broadcast sends to every member of the room. A failed recipient is logged
// and skipped.
func (gs *GameService) broadcast(room *game.Room, mt MessageType, data any) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		gs.logger.Error("Failed to create message", "type", mt, "error", err)
		return
	}

	count := 0
	for _, p := range room.Players {
		if err := gs.notifier.SendToConnection(p.ID, msg); err != nil {
			gs.logger.Debug("Failed to send to room member", "room", room.ID, "conn", p.ID, "type", mt, "error", err)
			continue
		}
		count++
	}
	gs.logger.Debug("Broadcasted message to room", "room", room.ID, "type", mt, "recipients", count)
}

func (gs *GameService) sendTo(connID string, mt MessageType, data any) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		gs.logger.Error("Failed to create message", "type", mt, "error", err)
		return
	}
	if err := gs.notifier.SendToConnection(connID, msg); err != nil {
		gs.logger.Debug("Failed to send message", "conn", connID, "type", mt, "error", err)
	}
}

func playerName(p *game.Player) string {
	if p == nil {
		return ""
	}
	return p.Name
}
