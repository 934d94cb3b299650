package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/client"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/game"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/server"
)

// Config controls how a Runner behaves at the table.
type Config struct {
	Name       string
	RoomCode   string // empty creates a room
	Options    *server.RoomOptions
	AutoStart  bool // start once MinPlayers are ready (creator only)
	MinPlayers int
	Rematch    bool // ask for a restart when a game ends
	ThinkTime  time.Duration
	OnGameOver func(winner server.GameOverData)
	OnJoined   func(code string)
}

// Runner plays one seat over a client connection.
type Runner struct {
	client   *client.Client
	strategy Strategy
	cfg      Config
	clock    quartz.Clock
	logger   *log.Logger

	mu        sync.Mutex
	playerID  string
	hand      []int
	state     *server.GameStateData
	lastActed string
}

// NewRunner wires a strategy to a connected client.
func NewRunner(c *client.Client, strategy Strategy, cfg Config, clock quartz.Clock, logger *log.Logger) *Runner {
	if cfg.MinPlayers < game.MinPlayers {
		cfg.MinPlayers = game.MinPlayers
	}
	return &Runner{
		client:   c,
		strategy: strategy,
		cfg:      cfg,
		clock:    clock,
		logger:   logger.WithPrefix("bot").With("name", cfg.Name),
	}
}

// Run joins the room and plays until ctx is cancelled or the connection
// drops. It leaves the room on the way out.
func (r *Runner) Run(ctx context.Context) error {
	r.client.AddEventHandler(server.MessageTypeRoomJoined, r.onRoomJoined)
	r.client.AddEventHandler(server.MessageTypeRoomUpdate, r.onRoomUpdate)
	r.client.AddEventHandler(server.MessageTypeYourDice, r.onYourDice)
	r.client.AddEventHandler(server.MessageTypeGameState, r.onGameState)
	r.client.AddEventHandler(server.MessageTypeGameOver, r.onGameOver)
	r.client.AddEventHandler(server.MessageTypeError, r.onError)

	var err error
	if r.cfg.RoomCode == "" {
		err = r.client.CreateRoom(r.cfg.Name, r.cfg.Options)
	} else {
		err = r.client.JoinRoom(r.cfg.RoomCode, r.cfg.Name)
	}
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}

	select {
	case <-ctx.Done():
		_ = r.client.LeaveRoom() // Best effort before hanging up
		return nil
	case <-r.client.Done():
		return fmt.Errorf("%s: connection closed", r.cfg.Name)
	}
}

func (r *Runner) onRoomJoined(msg *server.Message) {
	var data server.RoomJoinedData
	if err := msg.Decode(&data); err != nil {
		return
	}
	r.mu.Lock()
	r.playerID = data.PlayerID
	r.mu.Unlock()

	r.logger.Info("Joined room", "room", data.RoomID, "creator", data.Creator)
	if r.cfg.OnJoined != nil {
		r.cfg.OnJoined(data.RoomID)
	}
}

func (r *Runner) onRoomUpdate(msg *server.Message) {
	var data server.RoomUpdateData
	if err := msg.Decode(&data); err != nil || data.Status != game.StatusLobby.String() {
		return
	}

	r.mu.Lock()
	me := r.playerID
	r.mu.Unlock()

	var creator, ready bool
	allReady := true
	for _, p := range data.Players {
		if p.ID == me {
			creator, ready = p.IsCreator, p.Ready
		}
		allReady = allReady && p.Ready
	}

	if !ready {
		_ = r.client.SetReady(true)
		return
	}
	if creator && r.cfg.AutoStart && allReady && len(data.Players) >= r.cfg.MinPlayers {
		r.logger.Info("Starting game", "players", len(data.Players))
		_ = r.client.StartGame()
	}
}

func (r *Runner) onYourDice(msg *server.Message) {
	var data server.YourDiceData
	if err := msg.Decode(&data); err != nil {
		return
	}
	r.mu.Lock()
	r.hand = data.Dice
	r.mu.Unlock()
}

func (r *Runner) onGameState(msg *server.Message) {
	var data server.GameStateData
	if err := msg.Decode(&data); err != nil {
		return
	}

	r.mu.Lock()
	r.state = &data
	if data.Status != game.StatusPlaying.String() || data.CurrentTurn != r.playerID {
		r.mu.Unlock()
		return
	}
	key := stateKey(&data)
	if key == r.lastActed {
		r.mu.Unlock()
		return
	}
	r.lastActed = key
	view := View{Hand: append([]int(nil), r.hand...), TotalDice: data.TotalDice}
	if data.CurrentBid != nil {
		view.Current = &game.Bid{Quantity: data.CurrentBid.Quantity, FaceValue: data.CurrentBid.FaceValue, PlayerID: data.CurrentBid.PlayerID}
	}
	r.mu.Unlock()

	if r.cfg.ThinkTime <= 0 {
		r.act(view)
		return
	}
	r.clock.AfterFunc(r.cfg.ThinkTime, func() { r.act(view) }, "bot", "think")
}

func (r *Runner) act(v View) {
	d := r.strategy.Decide(v)
	r.logger.Debug("Decision", "call", d.Call, "bid", d.Bid.String(), "reasoning", d.Reasoning)

	var err error
	if d.Call {
		err = r.client.CallBluff()
	} else {
		err = r.client.MakeBid(d.Bid.Quantity, d.Bid.FaceValue)
	}
	if err != nil {
		r.logger.Warn("Failed to send action", "error", err)
	}
}

func (r *Runner) onGameOver(msg *server.Message) {
	var data server.GameOverData
	if err := msg.Decode(&data); err != nil {
		return
	}
	r.logger.Info("Game over", "winner", data.Winner)

	r.mu.Lock()
	r.lastActed = ""
	r.hand = nil
	r.mu.Unlock()

	if r.cfg.OnGameOver != nil {
		r.cfg.OnGameOver(data)
	}
	if r.cfg.Rematch {
		_ = r.client.RequestRestart()
	}
}

// onError falls back to calling when a bid is refused so the table never
// waits on this seat.
func (r *Runner) onError(msg *server.Message) {
	var data server.ErrorData
	if err := msg.Decode(&data); err != nil {
		return
	}
	r.logger.Debug("Server rejected action", "code", data.Code, "message", data.Message)

	if data.Code != "invalid_bid" {
		return
	}
	r.mu.Lock()
	canCall := r.state != nil && r.state.CurrentBid != nil && r.state.CurrentTurn == r.playerID
	r.mu.Unlock()
	if canCall {
		_ = r.client.CallBluff()
	}
}

// stateKey identifies a decision point so repeated game_state broadcasts do
// not trigger a second action.
func stateKey(s *server.GameStateData) string {
	if s.CurrentBid == nil {
		return fmt.Sprintf("%d/open", s.Round)
	}
	return fmt.Sprintf("%d/%s/%d/%d", s.Round, s.CurrentBid.PlayerID, s.CurrentBid.Quantity, s.CurrentBid.FaceValue)
}
