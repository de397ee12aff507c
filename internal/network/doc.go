// Package network holds the JSON-over-HTTP plumbing shared by the key
// network node client, the delegated relay client and the relay server.
//
// Errors cross the wire as {"error": "...", "kind": "..."} with a status
// code derived from the failure kind, so a classified error raised on the
// server surfaces with the same kind on the client. Transport failures are
// classified with the caller's fallback kind (NetworkFailure for the key
// network, RelayFailure for the delegated relay).
package network
