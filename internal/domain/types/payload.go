package types

// EncryptedContent is the ciphertext and wrapped key for one chain family.
// Exactly one of AccessControlConditions and SolRPCConditions is set; both
// hold the serialized forest needed to prove eligibility.
type EncryptedContent struct {
	AccessControlConditions string `json:"accessControlConditions,omitempty"`
	SolRPCConditions        string `json:"solRpcConditions,omitempty"`
	EncryptedSymmetricKey   string `json:"encryptedSymmetricKey"`
	EncryptedString         string `json:"encryptedString"`
}

// Family reports which family c was gated for.
func (c EncryptedContent) Family() Family {
	switch {
	case c.AccessControlConditions != "":
		return FamilyEVM
	case c.SolRPCConditions != "":
		return FamilySolana
	default:
		return FamilyNone
	}
}

// Conditions returns the serialized forest.
func (c EncryptedContent) Conditions() string {
	if c.AccessControlConditions != "" {
		return c.AccessControlConditions
	}
	return c.SolRPCConditions
}

// EncryptedPayload holds one EncryptedContent per gated family. A family
// without recipients is nil, never an unused ciphertext.
type EncryptedPayload struct {
	EVM    *EncryptedContent `json:"encryptedMessage"`
	Solana *EncryptedContent `json:"encryptedMessageSolana"`
}

// For returns the content gated for family, or nil.
func (p EncryptedPayload) For(family Family) *EncryptedContent {
	switch family {
	case FamilyEVM:
		return p.EVM
	case FamilySolana:
		return p.Solana
	default:
		return nil
	}
}

// IsEmpty reports whether no family was gated.
func (p EncryptedPayload) IsEmpty() bool { return p.EVM == nil && p.Solana == nil }
