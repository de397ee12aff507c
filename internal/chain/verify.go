package chain

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"gatekey/internal/crypto"
)

// ErrBadSignature is returned when a signature does not match its signer.
var ErrBadSignature = errors.New("chain: signature does not match signer")

// VerifyPersonalSign checks a hex 65-byte EIP-191 signature against address.
func VerifyPersonalSign(address string, message []byte, sigHex string) error {
	sig, err := crypto.FromHex(sigHex)
	if err != nil || len(sig) != ethcrypto.SignatureLength {
		return ErrBadSignature
	}
	if sig[ethcrypto.RecoveryIDOffset] >= 27 {
		sig[ethcrypto.RecoveryIDOffset] -= 27
	}
	pub, err := ethcrypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return ErrBadSignature
	}
	if !strings.EqualFold(ethcrypto.PubkeyToAddress(*pub).Hex(), address) {
		return ErrBadSignature
	}
	return nil
}

// VerifySolana checks a hex ed25519 signature against a base58 address.
func VerifySolana(address string, message []byte, sigHex string) error {
	pub, err := solanaKey(address)
	if err != nil {
		return err
	}
	sig, err := crypto.FromHex(sigHex)
	if err != nil {
		return ErrBadSignature
	}
	if !crypto.VerifyEd25519(pub, message, sig) {
		return ErrBadSignature
	}
	return nil
}
