package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains transport-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains game and card pool configuration.
type GameSettings struct {
	HandSize      int    `hcl:"hand_size,optional"`
	PromptsFile   string `hcl:"prompts_file,optional"`
	ResponsesFile string `hcl:"responses_file,optional"`

	// Seed makes shuffles reproducible when non-zero.
	Seed int64 `hcl:"seed,optional"`

	// ReapIdleRooms enables the registry janitor: rooms empty longer than
	// IdleTimeoutMinutes are ended. Off by default; rooms otherwise persist
	// until an explicit end command.
	ReapIdleRooms      bool `hcl:"reap_idle_rooms,optional"`
	IdleTimeoutMinutes int  `hcl:"idle_timeout_minutes,optional"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			HandSize:           8,
			PromptsFile:        "resources/prompts.json",
			ResponsesFile:      "resources/responses.json",
			IdleTimeoutMinutes: 120,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to defaults
// when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(config *Config) {
	defaults := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.HandSize == 0 {
		config.Game.HandSize = defaults.Game.HandSize
	}
	if config.Game.PromptsFile == "" {
		config.Game.PromptsFile = defaults.Game.PromptsFile
	}
	if config.Game.ResponsesFile == "" {
		config.Game.ResponsesFile = defaults.Game.ResponsesFile
	}
	if config.Game.IdleTimeoutMinutes == 0 {
		config.Game.IdleTimeoutMinutes = defaults.Game.IdleTimeoutMinutes
	}
}

// Validate checks the configuration for operational mistakes.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.HandSize < 1 || c.Game.HandSize > 20 {
		return fmt.Errorf("hand size must be between 1 and 20, got %d", c.Game.HandSize)
	}
	if c.Game.PromptsFile == "" || c.Game.ResponsesFile == "" {
		return fmt.Errorf("prompts_file and responses_file must be set")
	}
	if c.Game.ReapIdleRooms && c.Game.IdleTimeoutMinutes < 1 {
		return fmt.Errorf("idle_timeout_minutes must be positive when reap_idle_rooms is set")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// IdleTimeout returns the janitor's idle threshold.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Game.IdleTimeoutMinutes) * time.Minute
}
