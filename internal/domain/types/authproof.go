package types

import "time"

// Derivation schemes for AuthProof signatures.
const (
	DerivedViaPersonalSign = "web3.eth.personal.sign"
	DerivedViaSolanaSign   = "solana.signMessage"
	DerivedViaTezosSign    = "tezos.signPayload"
	DerivedViaStacksSign   = "stacks.signMessage"
)

// AuthProof is a time-bounded signature proving control of Address.
// It is presented to the key network and must never be logged verbatim.
type AuthProof struct {
	Sig           string `json:"sig"`
	DerivedVia    string `json:"derivedVia"`
	SignedMessage string `json:"signedMessage"`
	Address       string `json:"address"`
	// ExpiresAt is a Unix timestamp; 0 means the network applies its own bound.
	ExpiresAt int64 `json:"expiresAt,omitempty"`
}

// Expired reports whether the proof's validity window has passed at now.
func (p AuthProof) Expired(now time.Time) bool {
	return p.ExpiresAt != 0 && !now.Before(time.Unix(p.ExpiresAt, 0))
}

// Complete reports whether every required field is present.
func (p AuthProof) Complete() bool {
	return p.Sig != "" && p.DerivedVia != "" && p.SignedMessage != "" && p.Address != ""
}
