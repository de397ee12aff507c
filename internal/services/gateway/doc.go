// Package gateway wraps and unwraps content behind access control
// conditions.
//
// A Service runs in one of two modes. In local mode it owns a KeyNetwork
// client: it generates a fresh content key per chain family, seals the
// plaintext with AES-256-GCM, and asks the network to wrap the key under
// that family's conditions. In delegated mode it forwards the same requests
// to a trusted relay over HTTPS. Both modes produce the same
// EncryptedPayload shape, so content moves freely between them.
//
// The network handshake runs in the background after Start. Encrypt and
// Decrypt wait for it for at most the configured ready timeout and then
// fail with NetworkNotReady; they never proceed without a connected client.
package gateway
