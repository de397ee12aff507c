package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gatekey/internal/domain"
)

// DefaultResource is the delegated resource scope of a session.
const DefaultResource = "ceramic://*"

const capabilityVersion = "1"

// ErrNoVerifier is returned by VerifyCapability for schemes that cannot be
// checked locally.
var ErrNoVerifier = errors.New("chain: no local verifier for scheme")

// CapabilityParams describes a sign-in capability before signing.
type CapabilityParams struct {
	Domain     string
	Statement  string
	Account    domain.AccountDescriptor
	SessionDID domain.DID
	Nonce      string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Resources  []string
}

// NewCapability lays out an unsigned capability.
func NewCapability(p CapabilityParams) domain.Capability {
	resources := p.Resources
	if len(resources) == 0 {
		resources = []string{DefaultResource}
	}
	c := domain.Capability{
		Domain:    p.Domain,
		Address:   p.Account.Address,
		Statement: p.Statement,
		URI:       string(p.SessionDID),
		Version:   capabilityVersion,
		Namespace: p.Account.Namespace,
		ChainID:   p.Account.Reference,
		Nonce:     p.Nonce,
		IssuedAt:  p.IssuedAt.UTC().Format(time.RFC3339),
		Resources: resources,
	}
	if !p.ExpiresAt.IsZero() {
		c.ExpirationTime = p.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return c
}

// CapabilityMessage renders c in the EIP-4361 text layout that wallets sign.
func CapabilityMessage(c domain.Capability) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s wants you to sign in with your %s account:\n", c.Domain, chainLabel(c.Namespace))
	b.WriteString(c.Address)
	b.WriteString("\n\n")
	if c.Statement != "" {
		b.WriteString(c.Statement)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "URI: %s\n", c.URI)
	fmt.Fprintf(&b, "Version: %s\n", c.Version)
	fmt.Fprintf(&b, "Chain ID: %s\n", c.ChainID)
	fmt.Fprintf(&b, "Nonce: %s\n", c.Nonce)
	fmt.Fprintf(&b, "Issued At: %s", c.IssuedAt)
	if c.ExpirationTime != "" {
		fmt.Fprintf(&b, "\nExpiration Time: %s", c.ExpirationTime)
	}
	if len(c.Resources) > 0 {
		b.WriteString("\nResources:")
		for _, r := range c.Resources {
			b.WriteString("\n- ")
			b.WriteString(r)
		}
	}
	return b.String()
}

// SignCapability has method sign c and returns the signed copy.
func SignCapability(ctx context.Context, method AuthMethod, c domain.Capability) (domain.Capability, error) {
	sig, err := method.Sign(ctx, []byte(CapabilityMessage(c)))
	if err != nil {
		return domain.Capability{}, err
	}
	c.Scheme = method.Scheme()
	c.Signature = sig
	return c, nil
}

// VerifyCapability checks c's signature against its address.
func VerifyCapability(c domain.Capability) error {
	msg := []byte(CapabilityMessage(c))
	switch c.Scheme {
	case SchemeEIP191:
		return VerifyPersonalSign(c.Address, msg, c.Signature)
	case SchemeSolana:
		return VerifySolana(c.Address, msg, c.Signature)
	case "":
		return errors.New("chain: capability is unsigned")
	default:
		return ErrNoVerifier
	}
}

// CapabilityExpiry parses c's expiration; ok is false when it has none.
func CapabilityExpiry(c domain.Capability) (t time.Time, ok bool, err error) {
	if c.ExpirationTime == "" {
		return time.Time{}, false, nil
	}
	t, err = time.Parse(time.RFC3339, c.ExpirationTime)
	return t, err == nil, err
}

func chainLabel(ns domain.Namespace) string {
	switch ns {
	case domain.NamespaceEIP155:
		return "Ethereum"
	case domain.NamespaceSolana:
		return "Solana"
	case domain.NamespaceTezos:
		return "Tezos"
	case domain.NamespaceStacks:
		return "Stacks"
	default:
		return string(ns)
	}
}
