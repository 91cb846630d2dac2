// skirmish runs a match locally in the terminal. Keys: n new map, m menu,
// f toggle fog, v cycle the watched player, arrows pan, q quit.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"skirmish/internal/config"
	"skirmish/internal/host"
	"skirmish/internal/match"
	"skirmish/internal/scout"
	"skirmish/internal/telemetry"

	"github.com/gdamore/tcell/v2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to tcell; logs go to a file beside the match log.
	logger, closeLog := fileLogger()
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, "skirmish", cfg.Telemetry)
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(flushCtx)
	}()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	mt := match.New(match.Options{
		Logger:    logger,
		Overrides: cfg.Generation,
		Seeder:    rng.Int63,
		OnOutcome: func(o match.Outcome) { match.SaveOutcome(o, logger) },
	})
	h := host.New(mt, scout.New(rand.New(rand.NewSource(rng.Int63())), logger), logger)
	h.Submit(match.StartMatch{Settings: cfg.Settings})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go h.Run(ctx)
	h.Attach(ctx, screen)
	return nil
}

func fileLogger() (*slog.Logger, func()) {
	discard := slog.New(slog.DiscardHandler)
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return discard, func() {}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	dir := filepath.Join(dataHome, "skirmish")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return discard, func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "skirmish.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return discard, func() {}
	}
	return slog.New(slog.NewTextHandler(f, nil)), func() { f.Close() }
}
