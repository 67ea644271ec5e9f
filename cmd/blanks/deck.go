package main

import (
	"fmt"

	"github.com/lox/blanks/internal/carddeck"
	"github.com/lox/blanks/internal/server"
)

// DeckCmd loads the configured card files and reports what a game would
// actually play with, including prompts dropped by the single-blank filter.
type DeckCmd struct {
	Config string `short:"c" default:"blanks.hcl" help:"Path to HCL config file"`
}

func (cmd *DeckCmd) Run() error {
	config, err := server.LoadConfig(cmd.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := carddeck.LoadPool(config.Game.PromptsFile, config.Game.ResponsesFile)
	if err != nil {
		return fmt.Errorf("load card pools: %w", err)
	}

	fmt.Printf("Prompts:   %d usable (%d filtered for not having exactly one blank)\n",
		len(pool.Prompts), pool.FilteredPrompts)
	fmt.Printf("Responses: %d\n", len(pool.Responses))

	// Starting hands bound the player count; each join deals hand_size
	// cards and they never come back.
	maxPlayers := len(pool.Responses) / config.Game.HandSize
	fmt.Printf("Supports up to %d players at hand size %d before the response deck runs dry on join.\n",
		maxPlayers, config.Game.HandSize)
	return nil
}
