// Package chain turns wallet providers into accounts and signing methods.
//
// Each supported chain has an Adapter: EVM, Solana, Tezos, Stacks and a
// seed-backed did:key adapter. Select picks one from an explicit chain tag at
// the call boundary; callers then use it through the interface.
//
// Adapters classify failures: problems reaching or enabling the wallet are
// ProviderUnavailable, a user refusal is ProviderRejected, and anything that
// goes wrong while assembling a signing method is
// CredentialConstructionFailed.
//
// The package also renders and verifies the two signed messages the system
// relies on: the sign-in capability that authorizes a session key, and the
// AuthProof presented to the key network.
package chain
