package chain

import (
	"context"
	"sort"

	"gatekey/internal/did"
	"gatekey/internal/domain"
)

// DefaultChainPolicy picks the EVM chain reference an address connects on.
//
// Which chain an address "belongs" to is a product decision, not a protocol
// requirement, so it is injected rather than fixed.
type DefaultChainPolicy func(ctx context.Context, address string) (reference string, err error)

// FixedChain always answers reference.
func FixedChain(reference string) DefaultChainPolicy {
	return func(context.Context, string) (string, error) { return reference, nil }
}

// MostFollowed prefers the chain of the address's most-followed existing
// identity, falling back to mainnet when there is none or it is not EVM.
func MostFollowed(dir domain.IdentityDirectory) DefaultChainPolicy {
	return func(ctx context.Context, address string) (string, error) {
		records, err := dir.IdentitiesByAddress(ctx, address)
		if err != nil {
			return "", err
		}
		if len(records) == 0 {
			return ReferenceEthereum, nil
		}
		sorted := append([]domain.IdentityRecord(nil), records...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Followers > sorted[j].Followers
		})
		top := did.ParseAccount(sorted[0].DID)
		if top.Namespace == domain.NamespaceEIP155 && top.Reference != "" {
			return top.Reference, nil
		}
		return ReferenceEthereum, nil
	}
}
