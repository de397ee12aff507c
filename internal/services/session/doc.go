// Package session authenticates a wallet-controlled account into a
// time-boxed, resumable identity session.
//
// A Manager owns at most one active session. Connect paths (wallet, seed,
// OAuth) serialize a Blob into the credential store; Resume reinstates it,
// recomputing the account from the stored identity. Expiry is checked lazily
// on every privileged call. Auth proofs for the key network are cached per
// address and under a "current" slot, and are only re-signed when the cache
// has nothing valid.
package session
