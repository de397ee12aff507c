package interfaces

import (
	"context"

	domaintypes "gatekey/internal/domain/types"
)

// CredentialStore is key/value persistence for sessions and auth proofs.
// Get reports ok=false for missing keys; Remove of a missing key is not an error.
type CredentialStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// DocumentStore persists opaque signed content on behalf of a principal.
type DocumentStore interface {
	Create(
		ctx context.Context,
		content any,
		principal domaintypes.DID,
		tags []string,
		schema string,
	) (string, error)
	Update(
		ctx context.Context,
		documentID string,
		content any,
		principal domaintypes.DID,
		tags []string,
		schema string,
	) error
	// Deterministic creates or updates the single document keyed by principal and tags.
	Deterministic(
		ctx context.Context,
		content any,
		principal domaintypes.DID,
		tags []string,
	) (string, error)
	Load(ctx context.Context, documentID string) (domaintypes.Document, error)
}
