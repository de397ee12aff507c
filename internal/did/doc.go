// Package did parses and mints the decentralized identifiers gatekey uses as
// authorization principals.
//
// Two methods are understood: did:pkh (a chain account, CAIP-10 style) and
// did:key (an ed25519 key). Parsing never fails; malformed input yields the
// zero AccountDescriptor.
package did
