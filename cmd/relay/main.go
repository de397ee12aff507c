package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatekey/internal/app"
	"gatekey/internal/crypto"
	"gatekey/internal/failure"
	"gatekey/internal/logger"
	"gatekey/internal/network/memnode"
	"gatekey/internal/relay"
	"gatekey/internal/services/gateway"
)

const shutdownGrace = 5 * time.Second

func main() {
	cfg, err := app.LoadRelayConfig()
	if err != nil {
		slog.Error("load config", logger.Error(err))
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, log, nil); err != nil {
		log.Error("relay stopped", logger.Error(err))
		os.Exit(1)
	}
}

// buildServer assembles the dev key network, its local gateway and the HTTP
// server hosting the node, relay and PKP APIs.
func buildServer(ctx context.Context, cfg app.RelayConfig, log *slog.Logger) (*http.Server, error) {
	master, err := masterSecret(cfg.Secret, log)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(master)

	node, err := memnode.New(master, memnode.WithLogger(log.With(logger.Component("memnode"))))
	if err != nil {
		return nil, err
	}
	gw, err := gateway.NewLocal(node, gateway.WithLogger(log.With(logger.Component("gateway"))))
	if err != nil {
		return nil, err
	}
	gw.Start(ctx)

	pkp, err := relay.NewPKP(master,
		relay.WithPKPDomain(cfg.Domain),
		relay.WithPKPAppName(cfg.AppName),
		relay.WithPKPLogger(log.With(logger.Component("pkp"))),
	)
	if err != nil {
		return nil, err
	}
	srv, err := relay.NewServer(node, gw,
		relay.WithPKPIssuer(pkp),
		relay.WithNetworkName(cfg.Network),
		relay.WithServerLogger(log.With(logger.Component("http"))),
	)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}, nil
}

// run serves until ctx ends, then shuts down gracefully. listen defaults to
// ListenAndServe.
func run(ctx context.Context, cfg app.RelayConfig, log *slog.Logger, listen func(*http.Server) error) error {
	if listen == nil {
		listen = func(s *http.Server) error { return s.ListenAndServe() }
	}
	server, err := buildServer(ctx, cfg, log)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("relay listening", slog.String("addr", server.Addr), slog.String("network", cfg.Network))
		errCh <- listen(server)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	log.Info("relay shutting down")
	return server.Shutdown(shutdownCtx)
}

// masterSecret decodes the configured hex secret or, when empty, generates
// one for this process only.
func masterSecret(hexSecret string, log *slog.Logger) ([]byte, error) {
	const op = "relay.masterSecret"

	if hexSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, err
		}
		log.Warn("GATEKEY_RELAY_SECRET not set; payloads will not decrypt after restart")
		return b, nil
	}
	b, err := crypto.FromHex(hexSecret)
	if err != nil {
		return nil, failure.Wrap(err, failure.InvalidInput, op, "GATEKEY_RELAY_SECRET is not hex")
	}
	if len(b) < 16 {
		return nil, failure.New(failure.InvalidInput, op, "GATEKEY_RELAY_SECRET must be at least 16 bytes")
	}
	return b, nil
}
