// Package store provides the CredentialStore backends that hold gatekey's
// serialized session and cached auth proofs.
//
// Backends:
//   - MemoryStore: process-local map, for tests and ephemeral CLIs
//   - FileStore: one file per key under the configured home directory,
//     optionally sealed with a passphrase (scrypt + ChaCha20-Poly1305)
//   - RedisStore: a shared Redis instance, keys under a prefix
//   - PostgresStore: a single key/value table in PostgreSQL
//
// Backends hold bytes and apply no policy. Every method is safe for
// concurrent use. The fixed key layout lives in keys.go.
package store
