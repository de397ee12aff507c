// Package node is the HTTP client for a key network node.
//
// The node API is three JSON endpoints:
//
//	GET  /v1/handshake  -> {"ready": true, "network": "..."}
//	POST /v1/keys/save  SaveKeyRequest -> {"encryptedSymmetricKey": "<hex>"}
//	POST /v1/keys/get   GetKeyRequest  -> {"symmetricKey": "<base64>"}
//
// A 403 means the proof does not satisfy the conditions, 422 that the
// wrapped key does not open under them, and 400 that the request is invalid.
package node
