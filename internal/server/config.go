package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/roomcode"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Rules  *RulesConfig   `hcl:"rules,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// RulesConfig tunes room behaviour.
type RulesConfig struct {
	ChallengePause string `hcl:"challenge_pause,optional"` // Go duration, e.g. "4s"
	RoomCodeLength int    `hcl:"room_code_length,optional"`
	MaxRooms       int    `hcl:"max_rooms,optional"` // 0 means unlimited
}

const (
	defaultAddress        = "localhost"
	defaultPort           = 8080
	defaultLogLevel       = "info"
	defaultChallengePause = "4s"
)

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  defaultAddress,
			Port:     defaultPort,
			LogLevel: defaultLogLevel,
		},
		Rules: &RulesConfig{
			ChallengePause: defaultChallengePause,
			RoomCodeLength: roomcode.DefaultLength,
		},
	}
}

// LoadServerConfig loads server configuration from HCL file. A missing file
// yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}

	if c.Rules == nil {
		c.Rules = &RulesConfig{}
	}
	if c.Rules.ChallengePause == "" {
		c.Rules.ChallengePause = defaultChallengePause
	}
	if c.Rules.RoomCodeLength == 0 {
		c.Rules.RoomCodeLength = roomcode.DefaultLength
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Server.LogLevel)
	}

	if c.Rules == nil {
		return nil
	}
	pause, err := time.ParseDuration(c.Rules.ChallengePause)
	if err != nil {
		return fmt.Errorf("rules: invalid challenge_pause %q: %w", c.Rules.ChallengePause, err)
	}
	if pause < 0 {
		return fmt.Errorf("rules: challenge_pause must not be negative")
	}
	if c.Rules.RoomCodeLength < roomcode.MinLength || c.Rules.RoomCodeLength > roomcode.MaxLength {
		return fmt.Errorf("rules: room_code_length must be between %d and %d", roomcode.MinLength, roomcode.MaxLength)
	}
	if c.Rules.MaxRooms < 0 {
		return fmt.Errorf("rules: max_rooms must not be negative")
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// ChallengePause returns the parsed post-challenge pause, falling back to
// the default when unset or malformed.
func (c *ServerConfig) ChallengePause() time.Duration {
	raw := defaultChallengePause
	if c.Rules != nil && c.Rules.ChallengePause != "" {
		raw = c.Rules.ChallengePause
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		d, _ = time.ParseDuration(defaultChallengePause)
	}
	return d
}

// RoomCodeLength returns the configured room code length.
func (c *ServerConfig) RoomCodeLength() int {
	if c.Rules == nil || c.Rules.RoomCodeLength == 0 {
		return roomcode.DefaultLength
	}
	return c.Rules.RoomCodeLength
}

// MaxRooms returns the live room cap, 0 for unlimited.
func (c *ServerConfig) MaxRooms() int {
	if c.Rules == nil {
		return 0
	}
	return c.Rules.MaxRooms
}
