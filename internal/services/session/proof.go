package session

import (
	"context"
	"crypto/ed25519"
	"encoding/json"

	"gatekey/internal/chain"
	"gatekey/internal/crypto"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
	"gatekey/internal/logger"
	"gatekey/internal/store"
)

// AuthProof returns the current auth proof of the active session's account.
// A missing, expired or foreign proof is ProofMissing; remediation is to
// generate a new one.
func (m *Manager) AuthProof(ctx context.Context) (domain.AuthProof, error) {
	const op = "session.AuthProof"

	a, err := m.current(op)
	if err != nil {
		return domain.AuthProof{}, err
	}
	p, ok, err := m.loadProof(ctx, store.CurrentProofKey)
	if err != nil {
		return domain.AuthProof{}, err
	}
	if !ok || !m.usable(p, a.info.Account.Address) {
		return domain.AuthProof{}, failure.New(failure.ProofMissing, op, "no valid auth proof for "+a.info.Account.Address)
	}
	return p, nil
}

// GenerateAuthProof returns a valid auth proof for the active account,
// signing one with signer only when the per-address cache has none. A nil
// signer falls back to the adapter the session was connected with.
func (m *Manager) GenerateAuthProof(ctx context.Context, signer chain.ProofSigner) (domain.AuthProof, error) {
	const op = "session.GenerateAuthProof"

	a, err := m.current(op)
	if err != nil {
		return domain.AuthProof{}, err
	}
	if signer == nil {
		signer, _ = a.adapter.(chain.ProofSigner)
	}
	return m.promoteOrGenerateProof(ctx, signer, a.info.Account, true)
}

// promoteOrGenerateProof copies a valid cached proof for account into the
// current slot. Otherwise, when sign is set, signer produces a fresh one.
func (m *Manager) promoteOrGenerateProof(
	ctx context.Context,
	signer chain.ProofSigner,
	account domain.AccountDescriptor,
	sign bool,
) (domain.AuthProof, error) {
	const op = "session.GenerateAuthProof"

	cached, ok, err := m.loadProof(ctx, store.ProofKey(account.Address))
	if err != nil {
		return domain.AuthProof{}, err
	}
	if ok && m.usable(cached, account.Address) {
		if err := m.setProof(ctx, store.CurrentProofKey, cached); err != nil {
			return domain.AuthProof{}, err
		}
		return cached, nil
	}

	if !sign {
		return domain.AuthProof{}, failure.New(failure.ProofMissing, op, "no cached auth proof")
	}
	if signer == nil {
		return domain.AuthProof{}, failure.New(failure.ProofMissing, op, "account cannot sign auth proofs for the key network")
	}

	now := m.now()
	expires := now.Add(m.proofTTL)
	p, err := signer.SignProof(ctx, account, chain.ProofMessage(m.appName, now, expires))
	if err != nil {
		return domain.AuthProof{}, failure.Wrap(err, failure.SessionAuthorizationFailed, op, "error generating auth proof")
	}
	p.ExpiresAt = expires.Unix()
	if err := m.cacheProof(ctx, p); err != nil {
		return domain.AuthProof{}, err
	}
	m.log.Info("auth proof generated", logger.Proof(&p))
	return p, nil
}

func (m *Manager) usable(p domain.AuthProof, address string) bool {
	if !p.Complete() || !sameAddress(p.Address, address) {
		return false
	}
	if exp, ok := chain.ProofExpiry(p.SignedMessage); ok && !m.now().Before(exp) {
		return false
	}
	return !p.Expired(m.now())
}

func (m *Manager) cacheProof(ctx context.Context, p domain.AuthProof) error {
	if err := m.setProof(ctx, store.ProofKey(p.Address), p); err != nil {
		return err
	}
	return m.setProof(ctx, store.CurrentProofKey, p)
}

func (m *Manager) loadProof(ctx context.Context, key string) (domain.AuthProof, bool, error) {
	raw, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return domain.AuthProof{}, false, failure.Wrap(err, failure.StorageFailure, "session.loadProof", "could not read auth proof")
	}
	if !ok {
		return domain.AuthProof{}, false, nil
	}
	var p domain.AuthProof
	if err := json.Unmarshal(raw, &p); err != nil {
		m.log.Warn("discarding unreadable auth proof", logger.Error(err))
		return domain.AuthProof{}, false, nil
	}
	return p, true, nil
}

func (m *Manager) setProof(ctx context.Context, key string, p domain.AuthProof) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return failure.Wrap(err, failure.InvalidInput, "session.setProof", "marshal auth proof")
	}
	if err := m.store.Set(ctx, key, raw); err != nil {
		return failure.Wrap(err, failure.StorageFailure, "session.setProof", "could not store auth proof")
	}
	return nil
}

func hexSeed(priv ed25519.PrivateKey) string { return crypto.Hex(priv.Seed()) }

func hexSig(priv ed25519.PrivateKey, payload []byte) string {
	return crypto.Hex(crypto.SignEd25519(priv, payload))
}
