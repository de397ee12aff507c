package did

import (
	"crypto/ed25519"
	"errors"
	"strings"

	"github.com/mr-tron/base58"

	"gatekey/internal/domain"
)

const (
	prefixPKH = "did:pkh:"
	prefixKey = "did:key:"

	// multibase prefix for base58btc
	multibaseBase58 = "z"
)

// ed25519-pub multicodec, varint encoded.
var ed25519Codec = []byte{0xed, 0x01}

// ParseAccount decomposes an identity into its account descriptor.
//
// did:pkh:<namespace>:<reference>:<address> must have exactly five
// colon-separated parts. did:key:<multibase> maps to namespace and reference
// "key". Anything else yields the zero descriptor.
func ParseAccount(id domain.DID) domain.AccountDescriptor {
	s := string(id)
	switch {
	case strings.HasPrefix(s, prefixPKH):
		parts := strings.Split(s, ":")
		if len(parts) != 5 {
			return domain.AccountDescriptor{}
		}
		ns, ref, addr := parts[2], parts[3], parts[4]
		if ns == "" || ref == "" || addr == "" {
			return domain.AccountDescriptor{}
		}
		return domain.AccountDescriptor{
			Address:   addr,
			Namespace: domain.Namespace(ns),
			Reference: ref,
		}
	case strings.HasPrefix(s, prefixKey):
		mb := strings.TrimPrefix(s, prefixKey)
		if mb == "" || strings.Contains(mb, ":") {
			return domain.AccountDescriptor{}
		}
		return domain.AccountDescriptor{
			Address:   mb,
			Namespace: domain.NamespaceKey,
			Reference: string(domain.NamespaceKey),
		}
	default:
		return domain.AccountDescriptor{}
	}
}

// PKH mints a did:pkh identity for an account.
func PKH(ns domain.Namespace, reference, address string) domain.DID {
	return domain.DID(prefixPKH + string(ns) + ":" + reference + ":" + address)
}

// FromAccount is PKH for a descriptor; did:key descriptors round-trip too.
func FromAccount(a domain.AccountDescriptor) domain.DID {
	if a.IsZero() {
		return ""
	}
	if a.Namespace == domain.NamespaceKey {
		return domain.DID(prefixKey + a.Address)
	}
	return PKH(a.Namespace, a.Reference, a.Address)
}

// KeyFromEd25519 mints the did:key identity for an ed25519 public key.
func KeyFromEd25519(pub ed25519.PublicKey) domain.DID {
	buf := make([]byte, 0, len(ed25519Codec)+len(pub))
	buf = append(buf, ed25519Codec...)
	buf = append(buf, pub...)
	return domain.DID(prefixKey + multibaseBase58 + base58.Encode(buf))
}

// Ed25519FromKey recovers the public key from a did:key identity.
func Ed25519FromKey(id domain.DID) (ed25519.PublicKey, error) {
	s := string(id)
	if !strings.HasPrefix(s, prefixKey+multibaseBase58) {
		return nil, errors.New("did: not a base58btc did:key")
	}
	raw, err := base58.Decode(strings.TrimPrefix(s, prefixKey+multibaseBase58))
	if err != nil {
		return nil, err
	}
	if len(raw) != len(ed25519Codec)+ed25519.PublicKeySize ||
		raw[0] != ed25519Codec[0] || raw[1] != ed25519Codec[1] {
		return nil, errors.New("did: not an ed25519 did:key")
	}
	return ed25519.PublicKey(raw[len(ed25519Codec):]), nil
}
