// Package main runs the gatekey development relay. It hosts an in-memory key
// network, a delegated encryption relay backed by it, and PKP issuance for
// OAuth logins, all on one HTTP listener.
//
// HTTP API
//
//	GET  /healthz
//	    Liveness probe.
//
//	GET  /v1/handshake
//	    Node handshake: {"ready": bool, "network": name}.
//
//	POST /v1/keys/save
//	    Wrap a symmetric key under serialized conditions; returns the
//	    wrapped key as hex.
//
//	POST /v1/keys/get
//	    Unwrap a key for the holder of an auth proof that satisfies the
//	    conditions. 403 when it does not, 422 when the wrapped key is corrupt.
//
//	POST /encrypt
//	    {accessControlConditions, solRpcConditions, body} ->
//	    {encryptedMessage, encryptedMessageSolana}.
//
//	POST /decrypt
//	    {authSig, chain, encryptedContent} -> {result}.
//
//	POST /pkp/authenticate
//	    {type, userId, accessToken, email?, code?} ->
//	    {status, session, authProof, message}. Email logins stay
//	    pending_verification until a code is sent.
//
// Behaviour
//
//   - Errors are JSON {"error", "kind"} where kind names the failure class.
//   - Wrapping keys and PKP keys derive from GATEKEY_RELAY_SECRET (hex). When
//     it is unset a random secret is used and nothing survives a restart.
//   - A structured access log records method, path, status, bytes, request
//     id and duration for each request.
//   - The default listen address is :8080 (GATEKEY_RELAY_ADDR).
//
// Balance-gated conditions are evaluated against an empty balance table, so
// only recipient conditions can be satisfied. It is meant for local use.
package main
