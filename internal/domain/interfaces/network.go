package interfaces

import (
	"context"

	domaintypes "gatekey/internal/domain/types"
)

// KeyNetwork is a stateful client of the threshold key-management network.
type KeyNetwork interface {
	Connect(ctx context.Context) error
	SaveEncryptionKey(ctx context.Context, req domaintypes.SaveKeyRequest) ([]byte, error)
	GetEncryptionKey(ctx context.Context, req domaintypes.GetKeyRequest) ([]byte, error)
}

// EncryptionRelay performs encryption and decryption on behalf of constrained clients.
type EncryptionRelay interface {
	Encrypt(
		ctx context.Context,
		forest domaintypes.Forest,
		body []byte,
	) (domaintypes.EncryptedPayload, error)
	Decrypt(
		ctx context.Context,
		proof domaintypes.AuthProof,
		family domaintypes.Family,
		content domaintypes.EncryptedContent,
	) ([]byte, error)
}

// PKPIssuer authenticates OAuth users against a network-custodied key.
type PKPIssuer interface {
	Authenticate(ctx context.Context, req domaintypes.OAuthRequest) (domaintypes.PKPResponse, error)
}

// IdentityDirectory answers which identities already exist for an address.
type IdentityDirectory interface {
	IdentitiesByAddress(ctx context.Context, address string) ([]domaintypes.IdentityRecord, error)
}
