package types

// AccountDescriptor is the structural decomposition of an identity.
// The zero value is the null descriptor returned for malformed identities.
type AccountDescriptor struct {
	Address   string    `json:"address"`
	Namespace Namespace `json:"network"`
	Reference string    `json:"reference"`
}

// IsZero reports whether d is the null descriptor.
func (d AccountDescriptor) IsZero() bool {
	return d.Address == "" && d.Namespace == "" && d.Reference == ""
}

// Chain returns the CAIP-2 chain id ("eip155:1"), or "key" for did:key.
func (d AccountDescriptor) Chain() string {
	if d.IsZero() {
		return ""
	}
	if d.Namespace == NamespaceKey {
		return string(NamespaceKey)
	}
	return string(d.Namespace) + ":" + d.Reference
}

// Family returns the condition family the account's chain belongs to.
func (d AccountDescriptor) Family() Family { return d.Namespace.Family() }

// IdentityRecord is a known identity as reported by an identity directory.
type IdentityRecord struct {
	DID       DID    `json:"did"`
	Address   string `json:"address"`
	Followers int    `json:"count_followers"`
}
