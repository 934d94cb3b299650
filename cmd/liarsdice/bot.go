package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/bot"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/client"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/randutil"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/server"
)

// BotCmd seats one or more bots at a table. Without --room the first bot
// creates a room and the rest join it.
type BotCmd struct {
	Server     string        `short:"s" default:"http://localhost:8080" help:"Server URL"`
	Room       string        `short:"r" help:"Room code to join; omit to create one"`
	Count      int           `short:"n" default:"1" help:"Number of bots to run"`
	Strategy   string        `default:"heuristic" enum:"heuristic,random" help:"Strategy: heuristic or random"`
	Prefix     string        `default:"bot" help:"Name prefix for bots"`
	MinPlayers int           `default:"2" help:"Players required before the creating bot starts the game"`
	Think      time.Duration `default:"750ms" help:"Delay before each action"`
	Rematch    bool          `help:"Request a restart after each game"`
	Seed       *int64        `help:"Deterministic RNG seed for strategies"`
	Debug      bool          `help:"Enable debug logging"`
}

func (c *BotCmd) Run() error {
	level := "info"
	if c.Debug {
		level = "debug"
	}
	logger := newLogger(os.Stderr, level)

	if c.Count < 1 {
		return errors.New("count must be at least 1")
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	code := c.Room
	start := 0
	g, gctx := errgroup.WithContext(ctx)

	if code == "" {
		joined := make(chan string, 1)
		creator, err := c.newRunner(gctx, 0, seed, "", logger, func(room string) {
			select {
			case joined <- room:
			default:
			}
		})
		if err != nil {
			return err
		}
		g.Go(func() error { return creator.Run(gctx) })

		select {
		case code = <-joined:
			logger.Info("Room created", "room", code)
		case <-gctx.Done():
			return g.Wait()
		case <-time.After(10 * time.Second):
			cancel()
			_ = g.Wait()
			return errors.New("timed out waiting for room creation")
		}
		start = 1
	}

	for i := start; i < c.Count; i++ {
		runner, err := c.newRunner(gctx, i, seed, code, logger, nil)
		if err != nil {
			cancel()
			_ = g.Wait()
			return err
		}
		g.Go(func() error { return runner.Run(gctx) })
	}

	return g.Wait()
}

func (c *BotCmd) newRunner(ctx context.Context, i int, seed int64, code string, logger *log.Logger, onJoined func(string)) (*bot.Runner, error) {
	name := fmt.Sprintf("%s-%d", c.Prefix, i+1)

	conn := client.NewClient(c.Server, logger)
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	rng := randutil.NewLocked(randutil.New(seed + int64(i)))
	var strategy bot.Strategy = bot.NewHeuristic(rng)
	if c.Strategy == "random" {
		strategy = bot.NewRandom(rng)
	}

	cfg := bot.Config{
		Name:       name,
		RoomCode:   code,
		AutoStart:  code == "",
		MinPlayers: c.MinPlayers,
		Rematch:    c.Rematch,
		ThinkTime:  c.Think,
		OnJoined:   onJoined,
		OnGameOver: func(result server.GameOverData) {
			logger.Info("Game finished", "bot", name, "winner", result.Winner)
		},
	}
	return bot.NewRunner(conn, strategy, cfg, quartz.NewReal(), logger), nil
}
