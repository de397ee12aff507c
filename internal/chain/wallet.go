package chain

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"

	"gatekey/internal/crypto"
)

// LocalEVMWallet is a software EVM wallet holding a secp256k1 key in memory.
// It serves the CLI, the relay's PKP issuance and tests.
type LocalEVMWallet struct {
	key *ecdsa.PrivateKey
}

var _ EVMProvider = (*LocalEVMWallet)(nil)

// NewLocalEVMWallet loads a hex private key, or generates one when hexKey is empty.
func NewLocalEVMWallet(hexKey string) (*LocalEVMWallet, error) {
	if hexKey == "" {
		key, err := ethcrypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		return &LocalEVMWallet{key: key}, nil
	}
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("evm key: %w", err)
	}
	return &LocalEVMWallet{key: key}, nil
}

// LocalEVMWalletFromBytes uses d as the raw 32-byte private scalar.
func LocalEVMWalletFromBytes(d []byte) (*LocalEVMWallet, error) {
	key, err := ethcrypto.ToECDSA(d)
	if err != nil {
		return nil, fmt.Errorf("evm key: %w", err)
	}
	return &LocalEVMWallet{key: key}, nil
}

// Address returns the EIP-55 checksummed address.
func (w *LocalEVMWallet) Address() string {
	return ethcrypto.PubkeyToAddress(w.key.PublicKey).Hex()
}

func (w *LocalEVMWallet) Enable(context.Context) ([]string, error) {
	return []string{w.Address()}, nil
}

func (w *LocalEVMWallet) PersonalSign(_ context.Context, message []byte, address string) ([]byte, error) {
	if !strings.EqualFold(address, w.Address()) {
		return nil, fmt.Errorf("wallet does not hold %s", address)
	}
	sig, err := ethcrypto.Sign(accounts.TextHash(message), w.key)
	if err != nil {
		return nil, err
	}
	sig[ethcrypto.RecoveryIDOffset] += 27
	return sig, nil
}

// LocalSolanaWallet is a software Solana wallet holding an ed25519 key.
type LocalSolanaWallet struct {
	priv ed25519.PrivateKey
}

var _ SolanaProvider = (*LocalSolanaWallet)(nil)

// NewLocalSolanaWallet derives a wallet from a 32-byte seed, or generates one
// when seed is nil.
func NewLocalSolanaWallet(seed []byte) (*LocalSolanaWallet, error) {
	if seed == nil {
		priv, _, err := crypto.GenerateEd25519()
		if err != nil {
			return nil, err
		}
		return &LocalSolanaWallet{priv: priv}, nil
	}
	priv, _, err := crypto.Ed25519FromSeed(seed)
	if err != nil {
		return nil, err
	}
	return &LocalSolanaWallet{priv: priv}, nil
}

// Address returns the base58 public key.
func (w *LocalSolanaWallet) Address() string {
	return base58.Encode(w.priv.Public().(ed25519.PublicKey))
}

func (w *LocalSolanaWallet) Connect(context.Context) (string, error) {
	return w.Address(), nil
}

func (w *LocalSolanaWallet) SignMessage(_ context.Context, message []byte) ([]byte, error) {
	return crypto.SignEd25519(w.priv, message), nil
}

// Rejecting is an EVM and Solana provider that refuses every request the way
// a user dismissing the wallet prompt would.
type Rejecting struct{}

var errRejected = fmt.Errorf("wallet: %w", ErrUserRejected)

func (Rejecting) Enable(context.Context) ([]string, error) { return nil, errRejected }

func (Rejecting) PersonalSign(context.Context, []byte, string) ([]byte, error) {
	return nil, errRejected
}

func (Rejecting) Connect(context.Context) (string, error) { return "", errRejected }

func (Rejecting) SignMessage(context.Context, []byte) ([]byte, error) { return nil, errRejected }

var errInvalidSolanaAddress = errors.New("chain: solana address is not a 32-byte public key")
