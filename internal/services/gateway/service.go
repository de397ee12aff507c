package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"gatekey/internal/conditions"
	"gatekey/internal/crypto"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
	"gatekey/internal/logger"
)

// Mode selects where key wrapping happens.
type Mode string

const (
	ModeLocal     Mode = "local"
	ModeDelegated Mode = "delegated"
)

// Defaults for the readiness gate.
const (
	DefaultReadyTimeout   = 1500 * time.Millisecond
	DefaultConnectRetries = 3
)

// Service encrypts and decrypts payloads through the key network.
type Service struct {
	mode    Mode
	network domain.KeyNetwork
	relay   domain.EncryptionRelay

	readyTimeout  time.Duration
	retries       uint64
	retryInterval time.Duration
	log           *slog.Logger

	startOnce sync.Once
	ready     chan struct{}
	failed    chan struct{}
	startErr  error
}

// Option configures a Service.
type Option func(*Service)

// WithReadyTimeout bounds how long calls wait for the network handshake.
func WithReadyTimeout(d time.Duration) Option { return func(s *Service) { s.readyTimeout = d } }

// WithConnectRetries sets how many times a failed handshake is retried.
func WithConnectRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.retries = uint64(n)
		}
	}
}

// WithRetryInterval sets the initial backoff between handshake attempts.
func WithRetryInterval(d time.Duration) Option { return func(s *Service) { s.retryInterval = d } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

// NewLocal returns a Service that talks to network directly.
func NewLocal(network domain.KeyNetwork, opts ...Option) (*Service, error) {
	if network == nil {
		return nil, failure.New(failure.InvalidInput, "gateway.NewLocal", "key network is required")
	}
	return newService(ModeLocal, network, nil, opts), nil
}

// NewDelegated returns a Service that forwards to relay.
func NewDelegated(relay domain.EncryptionRelay, opts ...Option) (*Service, error) {
	if relay == nil {
		return nil, failure.New(failure.InvalidInput, "gateway.NewDelegated", "relay is required")
	}
	return newService(ModeDelegated, nil, relay, opts), nil
}

func newService(mode Mode, network domain.KeyNetwork, relay domain.EncryptionRelay, opts []Option) *Service {
	s := &Service{
		mode:          mode,
		network:       network,
		relay:         relay,
		readyTimeout:  DefaultReadyTimeout,
		retries:       DefaultConnectRetries,
		retryInterval: 100 * time.Millisecond,
		log:           logger.Discard(),
		ready:         make(chan struct{}),
		failed:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode reports the deployment mode.
func (s *Service) Mode() Mode { return s.mode }

// Start begins the network handshake in the background and returns
// immediately. Later calls are no-ops. A delegated Service is ready at once.
func (s *Service) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		if s.mode == ModeDelegated {
			close(s.ready)
			return
		}
		go s.connect(ctx)
	})
}

func (s *Service) connect(ctx context.Context) {
	start := time.Now()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.retries), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := s.network.Connect(ctx)
		if err != nil {
			s.log.Warn("key network handshake failed", slog.Int("attempt", attempt), logger.Error(err))
		}
		return err
	}, policy)
	if err != nil {
		s.startErr = failure.Reclassify(err, failure.NetworkNotReady, "gateway.Start", "key network unreachable")
		s.log.Error("key network unavailable", logger.Error(err), logger.Elapsed(start))
		close(s.failed)
		return
	}
	s.log.Info("key network ready", slog.Int("attempts", attempt), logger.Elapsed(start))
	close(s.ready)
}

// Ready reports whether the handshake has completed.
func (s *Service) Ready() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// awaitReady blocks until the handshake completes, fails, the ready timeout
// passes or ctx ends.
func (s *Service) awaitReady(ctx context.Context) error {
	const op = "gateway.awaitReady"

	select {
	case <-s.ready:
		return nil
	default:
	}
	t := time.NewTimer(s.readyTimeout)
	defer t.Stop()
	select {
	case <-s.ready:
		return nil
	case <-s.failed:
		return s.startErr
	case <-t.C:
		return failure.New(failure.NetworkNotReady, op, "key network not ready after "+s.readyTimeout.String())
	case <-ctx.Done():
		return failure.Reclassify(ctx.Err(), failure.NetworkNotReady, op, "gave up waiting for key network")
	}
}

// Encrypt seals plaintext once per chain family present in forest.
//
// Steps:
//  1. Reject empty or malformed forests.
//  2. Delegated mode: hand forest and body to the relay.
//  3. Local mode: wait for the handshake, then for each family in parallel
//     generate a content key, seal the plaintext, and have the network wrap
//     the key under that family's serialized conditions.
func (s *Service) Encrypt(ctx context.Context, plaintext []byte, forest domain.Forest) (domain.EncryptedPayload, error) {
	const op = "gateway.Encrypt"

	if forest.IsEmpty() {
		return domain.EncryptedPayload{}, failure.New(failure.AccessControlInvalid, op, "no access control conditions")
	}
	if err := conditions.Validate(forest); err != nil {
		return domain.EncryptedPayload{}, err
	}

	if s.mode == ModeDelegated {
		payload, err := s.relay.Encrypt(ctx, forest, plaintext)
		if err != nil {
			return domain.EncryptedPayload{}, failure.Wrap(err, failure.RelayFailure, op, "relay encrypt failed")
		}
		return payload, nil
	}

	if err := s.awaitReady(ctx); err != nil {
		return domain.EncryptedPayload{}, err
	}

	var out domain.EncryptedPayload
	g, gctx := errgroup.WithContext(ctx)
	if len(forest.EVM) > 0 {
		g.Go(func() error {
			c, err := s.encryptFamily(gctx, plaintext, forest, domain.FamilyEVM)
			out.EVM = c
			return err
		})
	}
	if len(forest.Solana) > 0 {
		g.Go(func() error {
			c, err := s.encryptFamily(gctx, plaintext, forest, domain.FamilySolana)
			out.Solana = c
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return domain.EncryptedPayload{}, err
	}
	s.log.Debug("payload encrypted", slog.Int("families", len(forest.Families())))
	return out, nil
}

func (s *Service) encryptFamily(
	ctx context.Context,
	plaintext []byte,
	forest domain.Forest,
	family domain.Family,
) (*domain.EncryptedContent, error) {
	const op = "gateway.Encrypt"

	key, err := crypto.NewContentKey()
	if err != nil {
		return nil, failure.Wrap(err, failure.InvalidInput, op, "content key generation failed")
	}
	defer crypto.Wipe(key)

	sealed, err := crypto.Seal(key, plaintext, nil)
	if err != nil {
		return nil, failure.Wrap(err, failure.InvalidInput, op, "seal failed")
	}
	raw, err := conditions.Encode(forest, family)
	if err != nil {
		return nil, failure.Wrap(err, failure.AccessControlInvalid, op, "serialize conditions")
	}
	wrapped, err := s.network.SaveEncryptionKey(ctx, domain.SaveKeyRequest{
		Family:       family,
		Conditions:   raw,
		SymmetricKey: key,
	})
	if err != nil {
		return nil, failure.Wrap(err, failure.NetworkFailure, op, "key network refused to wrap key")
	}

	content := &domain.EncryptedContent{
		EncryptedSymmetricKey: crypto.Hex(wrapped),
		EncryptedString:       crypto.B64(sealed),
	}
	switch family {
	case domain.FamilyEVM:
		content.AccessControlConditions = string(raw)
	case domain.FamilySolana:
		content.SolRPCConditions = string(raw)
	}
	return content, nil
}

// Decrypt opens the part of payload gated for family using proof.
//
// Failures are distinguishable: NotGatedForChain when payload has nothing
// for family, ProofMissing without a proof, GateUnsatisfied when the network
// declines, and CiphertextCorrupt when the released key does not open the
// ciphertext.
func (s *Service) Decrypt(
	ctx context.Context,
	payload domain.EncryptedPayload,
	proof *domain.AuthProof,
	family domain.Family,
) ([]byte, error) {
	const op = "gateway.Decrypt"

	content := payload.For(family)
	if content == nil {
		return nil, failure.New(failure.NotGatedForChain, op, "content was never gated for "+string(family))
	}
	if proof == nil || !proof.Complete() {
		return nil, failure.New(failure.ProofMissing, op, "an auth proof is required to decrypt")
	}
	return s.DecryptContent(ctx, *content, *proof, family)
}

// DecryptContent opens a single family's content.
func (s *Service) DecryptContent(
	ctx context.Context,
	content domain.EncryptedContent,
	proof domain.AuthProof,
	family domain.Family,
) ([]byte, error) {
	const op = "gateway.DecryptContent"

	if s.mode == ModeDelegated {
		pt, err := s.relay.Decrypt(ctx, proof, family, content)
		if err != nil {
			return nil, failure.Wrap(err, failure.RelayFailure, op, "relay decrypt failed")
		}
		return pt, nil
	}

	if err := s.awaitReady(ctx); err != nil {
		return nil, err
	}

	wrapped, err := crypto.FromHex(content.EncryptedSymmetricKey)
	if err != nil {
		return nil, failure.Wrap(err, failure.CiphertextCorrupt, op, "wrapped key is not hex")
	}
	sealed, err := crypto.FromB64(content.EncryptedString)
	if err != nil {
		return nil, failure.Wrap(err, failure.CiphertextCorrupt, op, "ciphertext is not base64")
	}

	key, err := s.network.GetEncryptionKey(ctx, domain.GetKeyRequest{
		Family:     family,
		Conditions: []byte(content.Conditions()),
		WrappedKey: wrapped,
		Proof:      proof,
	})
	if err != nil {
		s.log.Info("key release failed", logger.Proof(&proof), logger.Chain(string(family)), logger.Error(err))
		return nil, failure.Wrap(err, failure.NetworkFailure, op, "key network did not release key")
	}
	defer crypto.Wipe(key)

	pt, err := crypto.Open(key, sealed, nil)
	if err != nil {
		return nil, failure.Wrap(err, failure.CiphertextCorrupt, op, "ciphertext does not open with released key")
	}
	return pt, nil
}

var _ domain.EncryptionService = (*Service)(nil)
