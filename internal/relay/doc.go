// Package relay speaks the delegated relay API and serves it.
//
// Client implements domain.EncryptionRelay and domain.PKPIssuer over HTTP
// for runtimes that cannot embed the key network client. Server is the
// development relay: a chi router hosting the node API over any
// domain.KeyNetwork, the /encrypt and /decrypt relay endpoints backed by a
// local gateway, and OAuth PKP issuance.
//
// All bodies are JSON. Failures are {error, kind} with a status derived from
// the kind, so a Client reconstructs the same failure.Kind the server saw.
package relay
