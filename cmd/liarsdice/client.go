package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/client"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/server"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/tui"
)

// ClientCmd opens the terminal UI against a running server.
type ClientCmd struct {
	Config   string `short:"c" default:"liarsdice-client.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" help:"Server URL to connect to (overrides config)"`
	Player   string `short:"p" help:"Player name (overrides config, defaults to $USER)"`
	Room     string `short:"r" help:"Room code to join; omit to create a new room"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	LogFile  string `help:"Log file path (overrides config)"`
	Plain    bool   `help:"Disable colours"`

	MaxPlayers  int  `help:"Seat limit advertised when creating a room"`
	TurnSeconds int  `help:"Turn timer advertised when creating a room"`
	Jokers      bool `help:"Advertise ones as jokers when creating a room"`
	SpotOn      bool `help:"Advertise spot-on calls when creating a room"`
}

func (c *ClientCmd) Run() error {
	cfg, err := client.LoadClientConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.Server != "" {
		cfg.Server.URL = c.Server
	}
	if c.Player != "" {
		cfg.Player.Name = c.Player
	}
	if c.LogLevel != "" {
		cfg.UI.LogLevel = c.LogLevel
	}
	if c.LogFile != "" {
		cfg.UI.LogFile = c.LogFile
	}
	if cfg.Player.Name == "" {
		cfg.Player.Name = strings.TrimSpace(os.Getenv("USER"))
	}
	if cfg.Player.Name == "" {
		return errors.New("player name is required (--player or player.name)")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The terminal belongs to the UI, so logs go to a file (overwritten each run).
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger := newLogger(logFile, cfg.UI.LogLevel)
	logger.Info("Starting Liar's Dice client", "server", cfg.Server.URL, "player", cfg.Player.Name, "config", c.Config)

	tui.ConfigureColors(c.Plain)

	wsClient := client.NewClient(cfg.Server.URL, logger)
	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout())
	defer cancel()
	if err := wsClient.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.Server.URL, err)
	}
	defer func() { _ = wsClient.Disconnect() }()

	model := tui.NewModel(wsClient, cfg.Player.Name, c.Room, c.roomOptions(), logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	tui.Forward(wsClient, program.Send)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func (c *ClientCmd) roomOptions() *server.RoomOptions {
	if c.MaxPlayers == 0 && c.TurnSeconds == 0 && !c.Jokers && !c.SpotOn {
		return nil
	}
	return &server.RoomOptions{
		MaxPlayers:  c.MaxPlayers,
		TurnSeconds: c.TurnSeconds,
		Jokers:      c.Jokers,
		SpotOn:      c.SpotOn,
	}
}
