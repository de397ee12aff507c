package types

import "encoding/json"

// SaveKeyRequest asks the key network to wrap SymmetricKey under Conditions.
type SaveKeyRequest struct {
	Family       Family          `json:"chain"`
	Conditions   json.RawMessage `json:"conditions"`
	SymmetricKey []byte          `json:"symmetricKey"`
	Proof        *AuthProof      `json:"authSig,omitempty"`
}

// GetKeyRequest asks the key network to unwrap WrappedKey for the holder of Proof.
type GetKeyRequest struct {
	Family     Family          `json:"chain"`
	Conditions json.RawMessage `json:"conditions"`
	WrappedKey []byte          `json:"toDecrypt"`
	Proof      AuthProof       `json:"authSig"`
}
