package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/dice"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/randutil"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/roomcode"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/server"
)

// ServerCmd runs the game server.
type ServerCmd struct {
	Config   string `short:"c" default:"liarsdice-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Address to bind to, host:port (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Pause    string `help:"Pause after a bluff call before the next round (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed for dice and room codes"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Pause != "" {
		cfg.Rules.ChallengePause = c.Pause
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger := newLogger(os.Stderr, cfg.Server.LogLevel)

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
		logger.Debug("Using random seed", "seed", seed)
	}
	// Separate streams: room codes never shift the dice sequence.
	roller := dice.New(randutil.NewLocked(randutil.New(seed)))
	codes := roomcode.NewGenerator(randutil.NewLocked(randutil.New(seed+1)), cfg.RoomCodeLength())

	wsServer := server.NewServer(addr, logger)
	registry := server.NewRegistry(codes, roller, cfg.MaxRooms(), logger)
	wsServer.SetGameService(server.NewGameService(wsServer, registry, quartz.NewReal(), cfg.ChallengePause(), logger))

	logger.Info("Starting Liar's Dice server",
		"addr", addr,
		"pause", cfg.ChallengePause(),
		"code_length", cfg.RoomCodeLength(),
		"max_rooms", cfg.MaxRooms())

	ctx, cancel := signalContext(logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(wsServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return wsServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
