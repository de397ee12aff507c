package store

import "strings"

// Fixed key layout shared by every backend.
const (
	SessionKey      = "gatekey-session"
	CurrentProofKey = "gatekey-auth-proof"
	proofKeyPrefix  = CurrentProofKey + ":"
)

// ProofKey is where the auth proof for address is cached. Addresses are
// lowercased so EVM checksum casing does not split the cache.
func ProofKey(address string) string {
	return proofKeyPrefix + strings.ToLower(address)
}
