package interfaces

import (
	"context"

	domaintypes "gatekey/internal/domain/types"
)

// SessionService exposes the active identity to content operations.
type SessionService interface {
	// Principal returns the active session or a SessionNotFound/SessionExpired failure.
	Principal(ctx context.Context) (domaintypes.SessionInfo, error)
	// AuthProof returns the cached proof for the current account.
	AuthProof(ctx context.Context) (domaintypes.AuthProof, error)
}

// EncryptionService wraps and unwraps content behind a condition forest.
type EncryptionService interface {
	Encrypt(
		ctx context.Context,
		plaintext []byte,
		forest domaintypes.Forest,
	) (domaintypes.EncryptedPayload, error)
	Decrypt(
		ctx context.Context,
		payload domaintypes.EncryptedPayload,
		proof *domaintypes.AuthProof,
		family domaintypes.Family,
	) ([]byte, error)
}
