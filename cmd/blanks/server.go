package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blanks/internal/carddeck"
	"github.com/lox/blanks/internal/randutil"
	"github.com/lox/blanks/internal/registry"
	"github.com/lox/blanks/internal/server"
)

// ServerCmd runs the WebSocket game server.
type ServerCmd struct {
	Config string `short:"c" default:"blanks.hcl" help:"Path to HCL config file"`
	Addr   string `help:"Override the listen address from config"`
	Debug  bool   `short:"d" help:"Enable debug logging"`
}

func (cmd *ServerCmd) Run() error {
	config, err := server.LoadConfig(cmd.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(config.Server.LogLevel, cmd.Debug)

	pool, err := carddeck.LoadPool(config.Game.PromptsFile, config.Game.ResponsesFile)
	if err != nil {
		return fmt.Errorf("load card pools: %w", err)
	}
	logger.Info("card pools loaded",
		"prompts", len(pool.Prompts),
		"responses", len(pool.Responses),
		"filtered_prompts", pool.FilteredPrompts)

	reg := registry.New(pool, randutil.FromSeed(config.Game.Seed), logger,
		registry.WithHandSize(config.Game.HandSize))

	addr := config.Addr()
	if cmd.Addr != "" {
		addr = cmd.Addr
	}
	srv := server.NewServer(addr, reg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(ctx)
	})
	if config.Game.ReapIdleRooms {
		g.Go(func() error {
			return reg.RunJanitor(ctx, time.Minute, config.IdleTimeout())
		})
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server shutdown complete")
	return nil
}

func setupLogger(level string, debug bool) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	if debug {
		lvl = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
	})
}
