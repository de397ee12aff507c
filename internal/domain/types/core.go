package types

import "strings"

// DID is a decentralized identifier; the authorization principal for writes.
type DID string

// String returns the string form of the identifier.
func (d DID) String() string { return string(d) }

// Namespace is a CAIP-2 chain namespace, or "key" for did:key identities.
type Namespace string

const (
	NamespaceEIP155 Namespace = "eip155"
	NamespaceSolana Namespace = "solana"
	NamespaceTezos  Namespace = "tezos"
	NamespaceStacks Namespace = "stacks"
	NamespaceKey    Namespace = "key"
)

// String returns the string form of the namespace.
func (n Namespace) String() string { return string(n) }

// Family groups chains that share one condition-evaluation dialect.
type Family string

const (
	FamilyNone   Family = ""
	FamilyEVM    Family = "ethereum"
	FamilySolana Family = "solana"
)

// String returns the string form of the family.
func (f Family) String() string { return string(f) }

// Family returns the condition family for the namespace, or FamilyNone.
func (n Namespace) Family() Family {
	switch n {
	case NamespaceEIP155:
		return FamilyEVM
	case NamespaceSolana:
		return FamilySolana
	default:
		return FamilyNone
	}
}

// ParseFamily accepts the chain names used on the wire ("ethereum", "evm",
// "eip155", "solana").
func ParseFamily(s string) (Family, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ethereum", "evm", "eip155":
		return FamilyEVM, true
	case "solana":
		return FamilySolana, true
	default:
		return FamilyNone, false
	}
}
