package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"gatekey/internal/chain"
	"gatekey/internal/document"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
	"gatekey/internal/logger"
	"gatekey/internal/network/node"
	"gatekey/internal/relay"
	"gatekey/internal/services/content"
	"gatekey/internal/services/gateway"
	"gatekey/internal/services/session"
	"gatekey/internal/store"
)

// Wire bundles the stores, services and clients used by the CLI.
type Wire struct {
	Config    Config
	Log       *slog.Logger
	HTTP      *http.Client
	Store     domain.CredentialStore
	Documents *document.Memory
	Gateway   *gateway.Service
	Sessions  *session.Manager
	Content   *content.Service

	closers []func() error
}

// WireOption adjusts construction.
type WireOption func(*wireOptions)

type wireOptions struct {
	log   *slog.Logger
	http  *http.Client
	store domain.CredentialStore
	now   func() time.Time
}

// WithLogger overrides the logger built from LOG_LEVEL and LOG_FORMAT.
func WithLogger(l *slog.Logger) WireOption { return func(o *wireOptions) { o.log = l } }

// WithHTTPClient replaces the outbound HTTP client.
func WithHTTPClient(hc *http.Client) WireOption { return func(o *wireOptions) { o.http = hc } }

// WithStore skips backend selection and uses s.
func WithStore(s domain.CredentialStore) WireOption { return func(o *wireOptions) { o.store = s } }

// WithClock replaces time.Now in the session manager.
func WithClock(now func() time.Time) WireOption { return func(o *wireOptions) { o.now = now } }

// NewWire constructs the dependency graph from cfg and starts the gateway
// handshake in the background.
//
// Steps:
//  1. Open the configured credential store.
//  2. Build the gateway: a node client in local mode, a relay client in
//     delegated mode.
//  3. Open the document delegate, file-backed unless the store is memory.
//  4. Build the session manager with the PKP issuer at OAuthURL and the
//     most-followed chain policy over the document delegate, which also
//     records every identity that connects.
//  5. Build the content service on top.
func NewWire(ctx context.Context, cfg Config, opts ...WireOption) (*Wire, error) {
	const op = "app.NewWire"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := wireOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	w := &Wire{Config: cfg, Log: o.log, HTTP: o.http}
	if w.Log == nil {
		w.Log = logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	}
	if w.HTTP == nil {
		w.HTTP = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	w.Store = o.store
	if w.Store == nil {
		s, closer, err := openStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		w.Store = s
		if closer != nil {
			w.closers = append(w.closers, closer)
		}
	}

	gwOpts := []gateway.Option{
		gateway.WithReadyTimeout(cfg.ReadyTimeout),
		gateway.WithConnectRetries(cfg.ConnectRetries),
		gateway.WithLogger(w.Log.With(logger.Component("gateway"))),
	}
	var err error
	switch cfg.NetworkMode {
	case ModeDelegated:
		w.Gateway, err = gateway.NewDelegated(relay.NewClient(cfg.RelayURL, w.HTTP), gwOpts...)
	default:
		w.Gateway, err = gateway.NewLocal(node.New(cfg.NodeURL, w.HTTP), gwOpts...)
	}
	if err != nil {
		w.closeAll()
		return nil, failure.Wrap(err, failure.InvalidInput, op, "build gateway")
	}
	w.Gateway.Start(ctx)

	if path := cfg.DocumentsPath(); path != "" {
		if w.Documents, err = document.OpenFile(path); err != nil {
			w.closeAll()
			return nil, err
		}
	} else {
		w.Documents = document.NewMemory()
	}
	sessOpts := []session.Option{
		session.WithTTL(cfg.SessionTTL),
		session.WithDomain(cfg.Domain),
		session.WithAppName(cfg.AppName),
		session.WithProofGeneration(true),
		session.WithChainPolicy(chain.MostFollowed(w.Documents)),
		session.WithRegistrar(w.Documents),
		session.WithLogger(w.Log.With(logger.Component("session"))),
	}
	if cfg.OAuthURL != "" {
		sessOpts = append(sessOpts, session.WithPKPIssuer(relay.NewClient(cfg.OAuthURL, w.HTTP)))
	}
	if o.now != nil {
		sessOpts = append(sessOpts, session.WithClock(o.now))
	}
	if w.Sessions, err = session.New(w.Store, sessOpts...); err != nil {
		w.closeAll()
		return nil, err
	}

	w.Content, err = content.New(w.Sessions, w.Gateway, w.Documents,
		content.WithLogger(w.Log.With(logger.Component("content"))))
	if err != nil {
		w.closeAll()
		return nil, err
	}
	return w, nil
}

// openStore returns the configured backend and an optional closer.
func openStore(ctx context.Context, cfg Config) (domain.CredentialStore, func() error, error) {
	const op = "app.openStore"

	switch cfg.Store {
	case StoreMemory:
		return store.NewMemoryStore(), nil, nil
	case StoreRedis:
		client, err := store.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, failure.Wrap(err, failure.InvalidInput, op, "connect to redis")
		}
		s := store.NewRedisStore(client, "")
		return s, s.Close, nil
	case StorePostgres:
		s, err := store.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, failure.Wrap(err, failure.InvalidInput, op, "connect to postgres")
		}
		return s, func() error { s.Close(); return nil }, nil
	default:
		var fileOpts []store.FileOption
		if cfg.StorePassphrase != "" {
			fileOpts = append(fileOpts, store.WithPassphrase(cfg.StorePassphrase))
		}
		s, err := store.NewFileStore(cfg.Home, fileOpts...)
		if err != nil {
			return nil, nil, failure.Wrap(err, failure.InvalidInput, op, "open file store")
		}
		return s, nil, nil
	}
}

// Close releases backend connections.
func (w *Wire) Close() error { return w.closeAll() }

func (w *Wire) closeAll() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		errs = append(errs, w.closers[i]())
	}
	w.closers = nil
	return errors.Join(errs...)
}

var _ io.Closer = (*Wire)(nil)
