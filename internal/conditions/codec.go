package conditions

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"gatekey/internal/domain"
)

// Encode serializes the family's condition list. The result is what the
// payload carries as accessControlConditions or solRpcConditions.
func Encode(f domain.Forest, family domain.Family) (json.RawMessage, error) {
	switch family {
	case domain.FamilyEVM:
		return domain.MarshalPlain(f.EVM)
	case domain.FamilySolana:
		return domain.MarshalPlain(f.Solana)
	default:
		return nil, fmt.Errorf("conditions: no dialect for family %q", family)
	}
}

// Decode parses one family's serialized condition list into a forest.
func Decode(raw []byte, family domain.Family) (domain.Forest, error) {
	var f domain.Forest
	var err error
	switch family {
	case domain.FamilyEVM:
		err = json.Unmarshal(raw, &f.EVM)
	case domain.FamilySolana:
		err = json.Unmarshal(raw, &f.Solana)
	default:
		err = fmt.Errorf("conditions: no dialect for family %q", family)
	}
	return f, err
}

// Canonical returns the RFC 8785 form of serialized conditions.
func Canonical(raw []byte) ([]byte, error) {
	return jcs.Transform(raw)
}

// Digest canonicalizes serialized conditions and returns a sha256 hex digest.
func Digest(raw []byte) (string, error) {
	canonical, err := Canonical(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
