package chain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gatekey/internal/domain"
)

const (
	proofBody      = "I am creating an account to use the private features of %s at %s"
	proofExpiryTag = "Expiration Time: "
)

// Proof verification failures.
var (
	ErrProofIncomplete = errors.New("chain: auth proof is incomplete")
	ErrProofExpired    = errors.New("chain: auth proof expired")
	ErrProofScheme     = errors.New("chain: unsupported auth proof derivation")
)

// ProofMessage renders the statement an account signs to obtain an AuthProof.
func ProofMessage(app string, issuedAt, expiresAt time.Time) string {
	msg := fmt.Sprintf(proofBody, app, issuedAt.UTC().Format(time.RFC3339))
	if !expiresAt.IsZero() {
		msg += "\n" + proofExpiryTag + expiresAt.UTC().Format(time.RFC3339)
	}
	return msg
}

// ProofExpiry reads the signed expiration line of a proof message.
func ProofExpiry(message string) (time.Time, bool) {
	for _, line := range strings.Split(message, "\n") {
		if v, ok := strings.CutPrefix(line, proofExpiryTag); ok {
			t, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
			if err != nil {
				return time.Time{}, false
			}
			return t, true
		}
	}
	return time.Time{}, false
}

// VerifyProof checks p's signature and signed expiry at now. The unsigned
// ExpiresAt field is not trusted.
func VerifyProof(p domain.AuthProof, now time.Time) error {
	if !p.Complete() {
		return ErrProofIncomplete
	}
	if exp, ok := ProofExpiry(p.SignedMessage); ok && !now.Before(exp) {
		return ErrProofExpired
	}
	msg := []byte(p.SignedMessage)
	switch p.DerivedVia {
	case domain.DerivedViaPersonalSign:
		return VerifyPersonalSign(p.Address, msg, p.Sig)
	case domain.DerivedViaSolanaSign:
		return VerifySolana(p.Address, msg, p.Sig)
	default:
		return ErrProofScheme
	}
}

// ProofFamily returns the condition family a proof can satisfy.
func ProofFamily(p domain.AuthProof) domain.Family {
	switch p.DerivedVia {
	case domain.DerivedViaPersonalSign:
		return domain.FamilyEVM
	case domain.DerivedViaSolanaSign:
		return domain.FamilySolana
	default:
		return domain.FamilyNone
	}
}
