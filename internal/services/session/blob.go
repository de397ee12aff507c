package session

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"gatekey/internal/chain"
	"gatekey/internal/crypto"
	"gatekey/internal/did"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

const blobVersion = 1

// Blob is the serialized form of a session. Key is the hex ed25519 seed of
// the session key; it never leaves this package in any other form.
type Blob struct {
	V          int                `json:"v"`
	DID        domain.DID         `json:"did"`
	Key        string             `json:"key"`
	Capability *domain.Capability `json:"capability,omitempty"`
	IssuedAt   int64              `json:"issuedAt"`
	ExpiresAt  int64              `json:"expiresAt,omitempty"`
}

// Expired reports whether b is past its expiry at now. A blob without an
// expiry never expires.
func (b Blob) Expired(now time.Time) bool {
	return b.ExpiresAt != 0 && !now.Before(time.Unix(b.ExpiresAt, 0))
}

// Info returns the public view of b. The account is recomputed from DID.
func (b Blob) Info() domain.SessionInfo {
	info := domain.SessionInfo{
		DID:      b.DID,
		Account:  did.ParseAccount(b.DID),
		IssuedAt: time.Unix(b.IssuedAt, 0).UTC(),
	}
	if b.ExpiresAt != 0 {
		info.ExpiresAt = time.Unix(b.ExpiresAt, 0).UTC()
	}
	if b.Capability != nil {
		info.Resources = append([]string(nil), b.Capability.Resources...)
	}
	return info
}

// Encode returns base64url(JSON(b)).
func (b Blob) Encode() (string, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return "", failure.Wrap(err, failure.InvalidInput, "session.Blob.Encode", "marshal session")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeBlob parses s and checks that it describes a usable session.
func DecodeBlob(s string) (Blob, error) {
	const op = "session.DecodeBlob"

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Blob{}, failure.Wrap(err, failure.SessionNotFound, op, "session is not base64url")
	}
	var b Blob
	if err := json.Unmarshal(raw, &b); err != nil {
		return Blob{}, failure.Wrap(err, failure.SessionNotFound, op, "session is not valid JSON")
	}
	if b.V != blobVersion {
		return Blob{}, failure.New(failure.SessionNotFound, op, "unsupported session version")
	}
	if did.ParseAccount(b.DID).IsZero() {
		return Blob{}, failure.New(failure.SessionNotFound, op, "session identity is malformed")
	}
	if _, err := b.signer(); err != nil {
		return Blob{}, failure.Wrap(err, failure.SessionNotFound, op, "session key is malformed")
	}
	if c := b.Capability; c != nil && !sameAddress(c.Address, did.ParseAccount(b.DID).Address) {
		return Blob{}, failure.New(failure.SessionNotFound, op, "capability was issued to another account")
	}
	return b, nil
}

func (b Blob) signer() (ed25519.PrivateKey, error) {
	seed, err := crypto.FromHex(b.Key)
	if err != nil {
		return nil, err
	}
	priv, _, err := crypto.Ed25519FromSeed(seed)
	crypto.Wipe(seed)
	return priv, err
}

// IssueParams describes a session to authorize.
type IssueParams struct {
	Account   domain.AccountDescriptor
	Method    chain.AuthMethod
	Domain    string
	Statement string
	IssuedAt  time.Time
	TTL       time.Duration
	Resources []string
}

// Issue mints a session key, has p.Method sign a capability delegating
// p.Resources to it, and verifies the signature where the scheme allows.
//
// Steps:
//  1. Generate an ephemeral ed25519 session key and its did:key.
//  2. Lay out the capability with a fresh nonce and the expiry window.
//  3. Ask the account's auth method to sign it.
//  4. Verify the signature locally for eip155 and solana accounts.
func Issue(ctx context.Context, p IssueParams) (Blob, error) {
	const op = "session.Issue"

	if p.Method == nil || p.Account.IsZero() {
		return Blob{}, failure.New(failure.InvalidInput, op, "account and auth method are required")
	}
	priv, pub, err := crypto.GenerateEd25519()
	if err != nil {
		return Blob{}, failure.Wrap(err, failure.SessionAuthorizationFailed, op, "session key generation failed")
	}

	issued := p.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	var expires time.Time
	if p.TTL > 0 {
		expires = issued.Add(p.TTL)
	}

	unsigned := chain.NewCapability(chain.CapabilityParams{
		Domain:     p.Domain,
		Statement:  p.Statement,
		Account:    p.Account,
		SessionDID: did.KeyFromEd25519(pub),
		Nonce:      uuid.NewString(),
		IssuedAt:   issued,
		ExpiresAt:  expires,
		Resources:  p.Resources,
	})
	signed, err := chain.SignCapability(ctx, p.Method, unsigned)
	if err != nil {
		return Blob{}, failure.Wrap(err, failure.SessionAuthorizationFailed, op, "capability signing failed")
	}
	if err := chain.VerifyCapability(signed); err != nil && !errors.Is(err, chain.ErrNoVerifier) {
		return Blob{}, failure.Wrap(err, failure.SessionAuthorizationFailed, op, "capability signature does not verify")
	}

	b := Blob{
		V:          blobVersion,
		DID:        did.FromAccount(p.Account),
		Key:        crypto.Hex(priv.Seed()),
		Capability: &signed,
		IssuedAt:   issued.Unix(),
	}
	if !expires.IsZero() {
		b.ExpiresAt = expires.Unix()
	}
	return b, nil
}
