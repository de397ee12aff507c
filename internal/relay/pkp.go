package relay

import (
	"context"
	"log/slog"
	"time"

	"gatekey/internal/chain"
	"gatekey/internal/crypto"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
	"gatekey/internal/logger"
	"gatekey/internal/services/session"
)

// PKP session defaults.
const (
	DefaultPKPSessionTTL = 90 * 24 * time.Hour
	DefaultPKPProofTTL   = 7 * 24 * time.Hour

	pkpKeyInfo    = "gatekey/pkp/secp256k1"
	pkpEmailLogin = "email"
)

// PKP issues network-custodied EVM keys for OAuth logins. Each (type, userId)
// pair maps to the same key on every login.
type PKP struct {
	master   []byte
	domain   string
	appName  string
	ttl      time.Duration
	proofTTL time.Duration
	now      func() time.Time
	log      *slog.Logger
}

var _ domain.PKPIssuer = (*PKP)(nil)

// PKPOption configures a PKP issuer.
type PKPOption func(*PKP)

// WithPKPDomain sets the domain named in issued capabilities.
func WithPKPDomain(d string) PKPOption { return func(p *PKP) { p.domain = d } }

// WithPKPAppName sets the application named in issued auth proofs.
func WithPKPAppName(n string) PKPOption { return func(p *PKP) { p.appName = n } }

// WithPKPTTL sets how long issued sessions last.
func WithPKPTTL(d time.Duration) PKPOption { return func(p *PKP) { p.ttl = d } }

// WithPKPClock replaces time.Now.
func WithPKPClock(f func() time.Time) PKPOption { return func(p *PKP) { p.now = f } }

// WithPKPLogger sets the logger for issuance events.
func WithPKPLogger(l *slog.Logger) PKPOption { return func(p *PKP) { p.log = l } }

// NewPKP returns an issuer deriving keys from master, which must be at least
// 16 bytes.
func NewPKP(master []byte, opts ...PKPOption) (*PKP, error) {
	if len(master) < 16 {
		return nil, failure.New(failure.InvalidInput, "relay.NewPKP", "master secret must be at least 16 bytes")
	}
	p := &PKP{
		master:   append([]byte(nil), master...),
		domain:   session.DefaultDomain,
		appName:  session.DefaultAppName,
		ttl:      DefaultPKPSessionTTL,
		proofTTL: DefaultPKPProofTTL,
		now:      time.Now,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Authenticate answers an OAuth login.
//
// Steps:
//  1. Refuse requests without a login type, user id or access token.
//  2. Email logins stay pending until a verification code is presented.
//  3. Derive the user's custodied key and sign a session capability with it.
//  4. Sign an auth proof so the caller can decrypt straight away.
func (p *PKP) Authenticate(ctx context.Context, req domain.OAuthRequest) (domain.PKPResponse, error) {
	const op = "relay.PKP.Authenticate"

	if req.Type == "" || req.UserID == "" || req.AccessToken == "" {
		return domain.PKPResponse{Status: domain.PKPStatusError, Message: "type, userId and accessToken are required"}, nil
	}
	if req.Type == pkpEmailLogin {
		if req.Email == "" {
			return domain.PKPResponse{Status: domain.PKPStatusError, Message: "email is required"}, nil
		}
		if req.Code == "" {
			p.log.Info("email login awaiting verification", slog.String("user", req.UserID))
			return domain.PKPResponse{Status: domain.PKPStatusPending, Message: "verification code sent to " + req.Email}, nil
		}
	}

	d, err := crypto.DeriveKey(p.master, []byte(req.Type+":"+req.UserID), pkpKeyInfo)
	if err != nil {
		return domain.PKPResponse{}, failure.Wrap(err, failure.SessionAuthorizationFailed, op, "key derivation failed")
	}
	wallet, err := chain.LocalEVMWalletFromBytes(d)
	crypto.Wipe(d)
	if err != nil {
		return domain.PKPResponse{}, failure.Wrap(err, failure.SessionAuthorizationFailed, op, "derived key is unusable")
	}

	adapter := chain.NewEVM(wallet)
	account, err := adapter.ResolveAccount(ctx)
	if err != nil {
		return domain.PKPResponse{}, err
	}
	method, err := adapter.AuthMethod(ctx, account)
	if err != nil {
		return domain.PKPResponse{}, err
	}

	now := p.now()
	blob, err := session.Issue(ctx, session.IssueParams{
		Account:   account,
		Method:    method,
		Domain:    p.domain,
		Statement: "Sign in with " + req.Type,
		IssuedAt:  now,
		TTL:       p.ttl,
	})
	if err != nil {
		return domain.PKPResponse{}, err
	}
	encoded, err := blob.Encode()
	if err != nil {
		return domain.PKPResponse{}, err
	}

	expires := now.Add(p.proofTTL)
	proof, err := adapter.SignProof(ctx, account, chain.ProofMessage(p.appName, now, expires))
	if err != nil {
		return domain.PKPResponse{}, err
	}
	proof.ExpiresAt = expires.Unix()

	p.log.Info("pkp session issued", slog.String("type", req.Type), logger.Address(account.Address))
	return domain.PKPResponse{Status: domain.PKPStatusAuthenticated, Session: encoded, AuthProof: &proof}, nil
}
