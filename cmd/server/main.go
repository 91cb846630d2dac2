// skirmish-server hosts one shared skirmish over SSH. Every connection
// spectates the same match and can cycle between players' fog of war.
// Build:
//
//	go build -o skirmish-server ./cmd/server
//
// Usage:
//
//	./skirmish-server [--port 2222] [--key server_host_key]
//
// Connect:
//
//	ssh -t -p 2222 localhost
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"flag"
	"fmt"
	"log/slog"
	mrand "math/rand"
	"os"
	"os/signal"
	"time"

	"skirmish/internal/config"
	"skirmish/internal/host"
	"skirmish/internal/match"
	"skirmish/internal/scout"
	internalssh "skirmish/internal/ssh"
	"skirmish/internal/telemetry"

	gossh "github.com/gliderlabs/ssh"
	xssh "golang.org/x/crypto/ssh"
)

func main() {
	port := flag.Int("port", 2222, "SSH server port")
	keyFile := flag.String("key", "server_host_key", "Path to the PEM-encoded host key (auto-generated if absent)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, "skirmish-server", cfg.Telemetry)
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(flushCtx)
	}()

	rng := mrand.New(mrand.NewSource(time.Now().UnixNano()))
	mt := match.New(match.Options{
		Logger:    logger,
		Overrides: cfg.Generation,
		Seeder:    rng.Int63,
		OnOutcome: func(o match.Outcome) { match.SaveOutcome(o, logger) },
	})
	h := host.New(mt, scout.New(mrand.New(mrand.NewSource(rng.Int63())), logger), logger)
	h.Submit(match.StartMatch{Settings: cfg.Settings})
	go h.Run(ctx)

	signer, err := loadOrCreateHostKey(*keyFile, logger)
	if err != nil {
		logger.Error("host key", "error", err)
		os.Exit(1)
	}
	srv := &gossh.Server{
		Addr: fmt.Sprintf(":%d", *port),
		Handler: func(s gossh.Session) {
			handleSession(ctx, h, s, *port)
		},
		// Accept PTY requests from any client.
		PtyCallback: func(_ gossh.Context, _ gossh.Pty) bool { return true },
		// Spectating needs no authentication; add gossh.PublicKeyAuth for
		// anything more.
		HostSigners: []gossh.Signer{signer},
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Info("skirmish SSH server listening", "port", *port)
	if err := srv.ListenAndServe(); err != nil && err != gossh.ErrServerClosed {
		logger.Error("serve", "error", err)
		os.Exit(1)
	}
}

// handleSession is the gliderlabs SSH handler for one connection. It blocks
// for the duration of the connection so the SSH session stays open.
func handleSession(ctx context.Context, h *host.Host, s gossh.Session, port int) {
	pty, winCh, hasPTY := s.Pty()
	if !hasPTY {
		fmt.Fprintf(s, "This viewer requires a PTY. Connect with: ssh -t -p %d <host>\n", port)
		return
	}
	screen, err := internalssh.NewScreen(s, pty, winCh)
	if err != nil {
		fmt.Fprintf(s, "%v\n", err)
		return
	}
	defer screen.Fini()
	h.Attach(ctx, screen)
}

// loadOrCreateHostKey loads a PEM private key from path, or generates and
// persists a new ed25519 key if the file is absent or unreadable.
func loadOrCreateHostKey(path string, logger *slog.Logger) (gossh.Signer, error) {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			logger.Info("loaded host key", "path", path)
			return signer, nil
		}
	}

	logger.Info("generating ed25519 host key", "path", path)
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	// Persist for next run (non-fatal if it fails).
	if pemBlock, err := xssh.MarshalPrivateKey(key, "skirmish server"); err == nil {
		if err := os.WriteFile(path, pem.EncodeToMemory(pemBlock), 0600); err != nil {
			logger.Warn("cannot persist host key", "path", path, "error", err)
		}
	}
	return signer, nil
}
