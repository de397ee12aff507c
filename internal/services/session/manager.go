package session

import (
	"context"
	"crypto/ed25519"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gatekey/internal/chain"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
	"gatekey/internal/logger"
	"gatekey/internal/store"
)

// State is the lifecycle position of a Manager.
type State string

const (
	Disconnected   State = "disconnected"
	Authenticating State = "authenticating"
	Authenticated  State = "authenticated"
	Expired        State = "expired"
)

// Defaults.
const (
	DefaultTTL       = 30 * 24 * time.Hour
	DefaultProofTTL  = 7 * 24 * time.Hour
	DefaultDomain    = "gatekey.local"
	DefaultAppName   = "gatekey"
	defaultStatement = "Give this application access to some of your data"
)

// Manager owns the single active session of a process.
type Manager struct {
	store  domain.CredentialStore
	now    func() time.Time
	log    *slog.Logger
	policy chain.DefaultChainPolicy
	issuer domain.PKPIssuer
	dir    Registrar

	ttl           time.Duration
	proofTTL      time.Duration
	domain        string
	appName       string
	generateProof bool

	mu     sync.Mutex
	state  State
	active *active
}

type active struct {
	blob    Blob
	info    domain.SessionInfo
	key     ed25519.PrivateKey
	adapter chain.Adapter
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// WithTTL sets how long wallet-authorized sessions last.
func WithTTL(d time.Duration) Option { return func(m *Manager) { m.ttl = d } }

// WithProofTTL sets the validity window of generated auth proofs.
func WithProofTTL(d time.Duration) Option { return func(m *Manager) { m.proofTTL = d } }

// WithDomain sets the domain named in capabilities.
func WithDomain(d string) Option { return func(m *Manager) { m.domain = d } }

// WithAppName sets the application named in auth proofs.
func WithAppName(name string) Option { return func(m *Manager) { m.appName = name } }

// WithLogger sets the logger for lifecycle events. The default discards.
func WithLogger(l *slog.Logger) Option { return func(m *Manager) { m.log = l } }

// WithChainPolicy sets how the EVM chain reference is chosen on connect.
func WithChainPolicy(p chain.DefaultChainPolicy) Option { return func(m *Manager) { m.policy = p } }

// WithPKPIssuer enables ConnectOAuth.
func WithPKPIssuer(i domain.PKPIssuer) Option { return func(m *Manager) { m.issuer = i } }

// Registrar records identities that connected, so that the chain policy can
// consult them on later connects.
type Registrar interface {
	Register(ctx context.Context, rec domain.IdentityRecord) error
}

// WithRegistrar records every wallet or OAuth identity that connects.
func WithRegistrar(r Registrar) Option { return func(m *Manager) { m.dir = r } }

// WithProofGeneration makes Connect sign an auth proof when none is cached.
func WithProofGeneration(on bool) Option { return func(m *Manager) { m.generateProof = on } }

// New returns a disconnected Manager persisting to s.
func New(s domain.CredentialStore, opts ...Option) (*Manager, error) {
	if s == nil {
		return nil, failure.New(failure.InvalidInput, "session.New", "credential store is required")
	}
	m := &Manager{
		store:    s,
		now:      time.Now,
		log:      logger.Discard(),
		policy:   chain.FixedChain(chain.ReferenceEthereum),
		ttl:      DefaultTTL,
		proofTTL: DefaultProofTTL,
		domain:   DefaultDomain,
		appName:  DefaultAppName,
		state:    Disconnected,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// State reports the lifecycle state, applying expiry lazily.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expireLocked()
	return m.state
}

// begin enters Authenticating. A second connect while one is running is
// rejected. The returned func restores the previous state on failure.
func (m *Manager) begin(op string) (rollback func(), err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Authenticating {
		return nil, failure.New(failure.ConnectInProgress, op, "another connect is in progress")
	}
	prevState, prevActive := m.state, m.active
	m.state = Authenticating
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.state == Authenticating {
			m.state, m.active = prevState, prevActive
		}
	}, nil
}

func (m *Manager) activate(b Blob, adapter chain.Adapter) (domain.SessionInfo, error) {
	key, err := b.signer()
	if err != nil {
		return domain.SessionInfo{}, failure.Wrap(err, failure.SessionNotFound, "session.activate", "session key is malformed")
	}
	info := b.Info()
	m.mu.Lock()
	m.state = Authenticated
	m.active = &active{blob: b, info: info, key: key, adapter: adapter}
	m.mu.Unlock()
	return info, nil
}

func (m *Manager) persist(ctx context.Context, op string, b Blob) error {
	encoded, err := b.Encode()
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, store.SessionKey, []byte(encoded)); err != nil {
		return failure.Wrap(err, failure.StorageFailure, op, "could not store session")
	}
	return nil
}

// Connect authorizes a session for the account behind adapter.
//
// Steps:
//  1. Enter Authenticating, rejecting a concurrent connect.
//  2. Resolve the account; EVM accounts get their chain from the policy.
//  3. Build the account's auth method and have it sign a capability for a
//     fresh session key.
//  4. Store the session and make it active.
//  5. Promote a cached auth proof to the current slot, or sign one when
//     proof generation is on.
func (m *Manager) Connect(ctx context.Context, adapter chain.Adapter) (domain.ConnectResult, error) {
	const op = "session.Connect"

	if adapter == nil {
		return domain.ConnectResult{}, failure.New(failure.InvalidInput, op, "adapter is required")
	}
	rollback, err := m.begin(op)
	if err != nil {
		return domain.ConnectResult{}, err
	}
	start := m.now()

	account, err := adapter.ResolveAccount(ctx)
	if err != nil {
		rollback()
		return domain.ConnectResult{}, failure.Wrap(err, failure.ProviderUnavailable, op, "error enabling provider")
	}
	if account.Namespace == domain.NamespaceEIP155 {
		account.Reference = m.chainReference(ctx, account)
	}

	method, err := adapter.AuthMethod(ctx, account)
	if err != nil {
		rollback()
		return domain.ConnectResult{}, failure.Wrap(err, failure.CredentialConstructionFailed, op, "error creating auth method")
	}

	blob, err := Issue(ctx, IssueParams{
		Account:   account,
		Method:    method,
		Domain:    m.domain,
		Statement: defaultStatement,
		IssuedAt:  start,
		TTL:       m.ttl,
	})
	if err != nil {
		rollback()
		return domain.ConnectResult{}, err
	}
	if err := m.persist(ctx, op, blob); err != nil {
		rollback()
		return domain.ConnectResult{}, err
	}
	info, err := m.activate(blob, adapter)
	if err != nil {
		rollback()
		return domain.ConnectResult{}, err
	}

	m.log.Info("session connected",
		logger.DID(string(info.DID)), logger.Chain(info.Account.Chain()), logger.Elapsed(start))
	m.register(ctx, info)

	signer, _ := adapter.(chain.ProofSigner)
	if _, err := m.promoteOrGenerateProof(ctx, signer, info.Account, m.generateProof); err != nil {
		m.log.Warn("auth proof not available after connect", logger.Address(info.Account.Address), logger.Error(err))
	}
	return domain.ConnectResult{Outcome: domain.OutcomeAuthenticated, DID: info.DID, Details: info}, nil
}

// register is best effort: a directory failure never fails the connect.
func (m *Manager) register(ctx context.Context, info domain.SessionInfo) {
	if m.dir == nil || info.Account.Address == "" {
		return
	}
	rec := domain.IdentityRecord{DID: info.DID, Address: info.Account.Address}
	if err := m.dir.Register(ctx, rec); err != nil {
		m.log.Warn("could not record identity", logger.DID(string(info.DID)), logger.Error(err))
	}
}

func (m *Manager) chainReference(ctx context.Context, account domain.AccountDescriptor) string {
	ref, err := m.policy(ctx, account.Address)
	if err != nil || ref == "" {
		m.log.Warn("default chain policy failed, using mainnet",
			logger.Address(account.Address), logger.Error(err))
		return chain.ReferenceEthereum
	}
	return ref
}

// ConnectWithSeed derives a did:key identity from a 32-byte seed. The same
// seed always yields the same identity. Seed sessions have no expiry.
func (m *Manager) ConnectWithSeed(ctx context.Context, seed []byte) (domain.ConnectResult, error) {
	const op = "session.ConnectWithSeed"

	key, err := chain.NewKey(seed)
	if err != nil {
		return domain.ConnectResult{}, err
	}
	rollback, err := m.begin(op)
	if err != nil {
		return domain.ConnectResult{}, err
	}

	blob := Blob{
		V:        blobVersion,
		DID:      key.DID(),
		Key:      hexSeed(key.PrivateKey()),
		IssuedAt: m.now().Unix(),
	}
	if err := m.persist(ctx, op, blob); err != nil {
		rollback()
		return domain.ConnectResult{}, err
	}
	info, err := m.activate(blob, key)
	if err != nil {
		rollback()
		return domain.ConnectResult{}, err
	}
	m.log.Info("seed session connected", logger.DID(string(info.DID)))
	return domain.ConnectResult{Outcome: domain.OutcomeAuthenticated, DID: info.DID, Details: info}, nil
}

// ConnectOAuth asks the PKP issuer for a network-custodied key. A pending
// verification is returned as an outcome, not an error.
//
// Steps:
//  1. Enter Authenticating, rejecting a concurrent connect.
//  2. Call the issuer.
//  3. On pending verification, restore the previous state and report it.
//  4. On success, adopt the issued session and cache its auth proof.
func (m *Manager) ConnectOAuth(ctx context.Context, req domain.OAuthRequest) (domain.ConnectResult, error) {
	const op = "session.ConnectOAuth"

	if m.issuer == nil {
		return domain.ConnectResult{}, failure.New(failure.InvalidInput, op, "no PKP issuer configured")
	}
	rollback, err := m.begin(op)
	if err != nil {
		return domain.ConnectResult{}, err
	}

	resp, err := m.issuer.Authenticate(ctx, req)
	if err != nil {
		rollback()
		return domain.ConnectResult{}, failure.Wrap(err, failure.RelayFailure, op, "PKP issuance failed")
	}

	switch resp.Status {
	case domain.PKPStatusPending:
		rollback()
		m.log.Info("oauth login pending verification", slog.String("type", req.Type))
		return domain.ConnectResult{Outcome: domain.OutcomePendingVerification, Message: resp.Message}, nil
	case domain.PKPStatusAuthenticated:
	default:
		rollback()
		msg := resp.Message
		if msg == "" {
			msg = "PKP issuer refused the login"
		}
		return domain.ConnectResult{}, failure.New(failure.SessionAuthorizationFailed, op, msg)
	}

	blob, err := DecodeBlob(resp.Session)
	if err != nil {
		rollback()
		return domain.ConnectResult{}, failure.Reclassify(err, failure.SessionAuthorizationFailed, op, "issued session is unusable")
	}
	if blob.Expired(m.now()) {
		rollback()
		return domain.ConnectResult{}, failure.New(failure.SessionAuthorizationFailed, op, "issued session is already expired")
	}
	if err := m.persist(ctx, op, blob); err != nil {
		rollback()
		return domain.ConnectResult{}, err
	}
	info, err := m.activate(blob, nil)
	if err != nil {
		rollback()
		return domain.ConnectResult{}, err
	}
	if resp.AuthProof != nil {
		if err := m.cacheProof(ctx, *resp.AuthProof); err != nil {
			m.log.Warn("could not cache issued auth proof", logger.Error(err))
		}
	}
	m.log.Info("oauth session connected", logger.DID(string(info.DID)))
	m.register(ctx, info)
	return domain.ConnectResult{Outcome: domain.OutcomeAuthenticated, DID: info.DID, Details: info}, nil
}

// Resume reinstates the stored session. The account is recomputed from the
// stored identity. Missing or unparsable sessions are SessionNotFound;
// expired ones are SessionExpired.
func (m *Manager) Resume(ctx context.Context) (domain.ConnectResult, error) {
	const op = "session.Resume"

	m.mu.Lock()
	busy := m.state == Authenticating
	m.mu.Unlock()
	if busy {
		return domain.ConnectResult{}, failure.New(failure.ConnectInProgress, op, "a connect is in progress")
	}

	raw, ok, err := m.store.Get(ctx, store.SessionKey)
	if err != nil {
		return domain.ConnectResult{}, failure.Wrap(err, failure.StorageFailure, op, "could not read session")
	}
	if !ok {
		return domain.ConnectResult{}, failure.New(failure.SessionNotFound, op, "not connected")
	}
	blob, err := DecodeBlob(string(raw))
	if err != nil {
		m.log.Warn("stored session is unusable", logger.Error(err))
		return domain.ConnectResult{}, err
	}
	if blob.Expired(m.now()) {
		m.mu.Lock()
		m.state, m.active = Expired, nil
		m.mu.Unlock()
		return domain.ConnectResult{}, failure.New(failure.SessionExpired, op, "session expired")
	}
	info, err := m.activate(blob, nil)
	if err != nil {
		return domain.ConnectResult{}, err
	}
	return domain.ConnectResult{Outcome: domain.OutcomeAuthenticated, DID: info.DID, Details: info}, nil
}

// Logout removes the stored session and cached proofs. It is idempotent.
func (m *Manager) Logout(ctx context.Context) error {
	const op = "session.Logout"

	m.mu.Lock()
	var address string
	if m.active != nil {
		address = m.active.info.Account.Address
	}
	m.mu.Unlock()

	if address == "" {
		if raw, ok, err := m.store.Get(ctx, store.SessionKey); err == nil && ok {
			if b, err := DecodeBlob(string(raw)); err == nil {
				address = b.Info().Account.Address
			}
		}
	}

	keys := []string{store.SessionKey, store.CurrentProofKey}
	if address != "" {
		keys = append(keys, store.ProofKey(address))
	}
	for _, k := range keys {
		if err := m.store.Remove(ctx, k); err != nil {
			return failure.Wrap(err, failure.StorageFailure, op, "could not remove "+k)
		}
	}

	m.mu.Lock()
	m.state, m.active = Disconnected, nil
	m.mu.Unlock()
	return nil
}

// expireLocked moves an authenticated session past its expiry to Expired.
func (m *Manager) expireLocked() {
	if m.state == Authenticated && m.active != nil && m.active.blob.Expired(m.now()) {
		m.state = Expired
		m.active = nil
	}
}

func (m *Manager) current(op string) (*active, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expireLocked()
	switch {
	case m.state == Expired:
		return nil, failure.New(failure.SessionExpired, op, "session expired")
	case m.active == nil:
		return nil, failure.New(failure.SessionNotFound, op, "not connected")
	}
	return m.active, nil
}

// Principal returns the active session or fails closed.
func (m *Manager) Principal(context.Context) (domain.SessionInfo, error) {
	a, err := m.current("session.Principal")
	if err != nil {
		return domain.SessionInfo{}, err
	}
	return a.info, nil
}

// Capability returns the signed capability of the active session, if any.
func (m *Manager) Capability(context.Context) (*domain.Capability, error) {
	a, err := m.current("session.Capability")
	if err != nil {
		return nil, err
	}
	if a.blob.Capability == nil {
		return nil, nil
	}
	c := *a.blob.Capability
	return &c, nil
}

// Sign signs payload with the session key and returns the hex signature.
func (m *Manager) Sign(_ context.Context, payload []byte) (string, error) {
	a, err := m.current("session.Sign")
	if err != nil {
		return "", err
	}
	return hexSig(a.key, payload), nil
}

// sameAddress ignores case only for hex EVM addresses.
func sameAddress(a, b string) bool {
	if strings.HasPrefix(a, "0x") {
		return strings.EqualFold(a, b)
	}
	return a == b
}

var _ domain.SessionService = (*Manager)(nil)
