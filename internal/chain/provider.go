package chain

import (
	"context"
	"errors"
)

// ErrUserRejected is returned by providers when the user declines a request.
var ErrUserRejected = errors.New("chain: user rejected the request")

// EVMProvider is an EIP-1193 style wallet.
type EVMProvider interface {
	Enable(ctx context.Context) ([]string, error)
	// PersonalSign returns a 65-byte secp256k1 signature over the EIP-191
	// hash of message.
	PersonalSign(ctx context.Context, message []byte, address string) ([]byte, error)
}

// SolanaProvider is a Solana wallet adapter.
type SolanaProvider interface {
	Connect(ctx context.Context) (publicKey string, err error)
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}

// TezosProvider is a Beacon-style Tezos wallet.
type TezosProvider interface {
	ActiveAccount(ctx context.Context) (address string, ok bool, err error)
	RequestPermissions(ctx context.Context) (address string, err error)
	SignPayload(ctx context.Context, payload []byte) (string, error)
}

// StacksProvider is a Stacks Connect wallet.
type StacksProvider interface {
	Address(ctx context.Context) (string, error)
	SignMessage(ctx context.Context, message string) (string, error)
}
