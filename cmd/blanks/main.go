package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the game server"`
	Deck    DeckCmd          `cmd:"" help:"Inspect the configured card pools"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blanks"),
		kong.Description("Multi-room fill-in-the-blank party game server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
